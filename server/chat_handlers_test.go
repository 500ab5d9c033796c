package server

import (
	"net/http"
	"testing"

	"github.com/techieroshan/studentsupport/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatFlow(t *testing.T) {
	env := newTestEnv(t)
	donor := env.register(t, models.RoleDonor, "chatdonor")
	seeker := env.register(t, models.RoleSeeker, "chatseeker")
	outsider := env.register(t, models.RoleSeeker, "chatoutsider")
	offerID := env.createOffer(t, donor)

	resp, err := env.app.Test(jsonReq(t, http.MethodPost,
		"/chats/matches/"+offerID+"/accept", map[string]string{}, seeker.Token), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var accepted acceptResponse
	decodeBody(t, resp, &accepted)

	t.Run("both parties see the thread", func(t *testing.T) {
		for _, u := range []authUser{seeker, donor} {
			resp, err := env.app.Test(jsonReq(t, http.MethodGet, "/chats/", nil, u.Token), -1)
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			var threads []models.ChatThread
			decodeBody(t, resp, &threads)
			require.Len(t, threads, 1)
			assert.Equal(t, accepted.ThreadID, threads[0].ID)
		}
	})

	t.Run("outsider has no threads", func(t *testing.T) {
		resp, err := env.app.Test(jsonReq(t, http.MethodGet, "/chats/", nil, outsider.Token), -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		var threads []models.ChatThread
		decodeBody(t, resp, &threads)
		assert.Empty(t, threads)
	})

	t.Run("outsider cannot read the thread", func(t *testing.T) {
		resp, err := env.app.Test(jsonReq(t, http.MethodGet, "/chats/"+accepted.ThreadID, nil, outsider.Token), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("send and read messages in order", func(t *testing.T) {
		for _, text := range []string{"Hi, when works for you?", "6pm at the student center?"} {
			resp, err := env.app.Test(jsonReq(t, http.MethodPost,
				"/chats/"+accepted.ThreadID+"/messages",
				map[string]string{"text": text}, seeker.Token), -1)
			require.NoError(t, err)
			require.Equal(t, http.StatusCreated, resp.StatusCode)
		}

		resp, err := env.app.Test(jsonReq(t, http.MethodGet, "/chats/"+accepted.ThreadID, nil, donor.Token), -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body struct {
			Thread   models.ChatThread `json:"thread"`
			Messages []models.Message  `json:"messages"`
		}
		decodeBody(t, resp, &body)

		// Accept posts one system message, then the two above.
		require.Len(t, body.Messages, 3)
		assert.True(t, body.Messages[0].IsSystem)
		assert.Equal(t, "Hi, when works for you?", body.Messages[1].Text)
		assert.Equal(t, "6pm at the student center?", body.Messages[2].Text)
	})

	t.Run("outsider cannot post", func(t *testing.T) {
		resp, err := env.app.Test(jsonReq(t, http.MethodPost,
			"/chats/"+accepted.ThreadID+"/messages",
			map[string]string{"text": "let me in"}, outsider.Token), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("empty message rejected", func(t *testing.T) {
		resp, err := env.app.Test(jsonReq(t, http.MethodPost,
			"/chats/"+accepted.ThreadID+"/messages",
			map[string]string{"text": ""}, seeker.Token), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
