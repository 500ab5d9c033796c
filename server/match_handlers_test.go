package server

import (
	"net/http"
	"regexp"
	"testing"

	"github.com/techieroshan/studentsupport/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pinPattern = regexp.MustCompile(`^[1-9]\d{3}$`)

type acceptResponse struct {
	ThreadID      string `json:"thread_id"`
	CompletionPIN string `json:"completion_pin"`
	Status        string `json:"status"`
}

type verifyResponse struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

func TestAcceptOffer(t *testing.T) {
	env := newTestEnv(t)
	donor := env.register(t, models.RoleDonor, "offerdonor")
	seeker := env.register(t, models.RoleSeeker, "offerseeker")
	offerID := env.createOffer(t, donor)

	t.Run("donor cannot accept own offer", func(t *testing.T) {
		resp, err := env.app.Test(jsonReq(t, http.MethodPost,
			"/chats/matches/"+offerID+"/accept", map[string]string{}, donor.Token), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	var first acceptResponse
	t.Run("seeker accept issues PIN and starts handshake", func(t *testing.T) {
		resp, err := env.app.Test(jsonReq(t, http.MethodPost,
			"/chats/matches/"+offerID+"/accept", map[string]string{}, seeker.Token), -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		decodeBody(t, resp, &first)

		assert.NotEmpty(t, first.ThreadID)
		assert.Regexp(t, pinPattern, first.CompletionPIN)
		assert.Equal(t, string(models.OfferStatusInProgress), first.Status)
	})

	t.Run("repeat accept reuses the thread", func(t *testing.T) {
		resp, err := env.app.Test(jsonReq(t, http.MethodPost,
			"/chats/matches/"+offerID+"/accept", map[string]string{}, seeker.Token), -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var second acceptResponse
		decodeBody(t, resp, &second)
		assert.Equal(t, first.ThreadID, second.ThreadID)
		assert.Equal(t, first.CompletionPIN, second.CompletionPIN)
	})

	t.Run("accept unknown listing is 404", func(t *testing.T) {
		resp, err := env.app.Test(jsonReq(t, http.MethodPost,
			"/chats/matches/does-not-exist/accept", map[string]string{}, seeker.Token), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestAcceptRequest(t *testing.T) {
	env := newTestEnv(t)
	seeker := env.register(t, models.RoleSeeker, "reqseeker")
	donor := env.register(t, models.RoleDonor, "reqdonor")
	requestID := env.createRequest(t, seeker)

	t.Run("seeker cannot accept own request", func(t *testing.T) {
		resp, err := env.app.Test(jsonReq(t, http.MethodPost,
			"/chats/matches/"+requestID+"/accept", map[string]string{}, seeker.Token), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("donor accept moves request in progress", func(t *testing.T) {
		resp, err := env.app.Test(jsonReq(t, http.MethodPost,
			"/chats/matches/"+requestID+"/accept", map[string]string{}, donor.Token), -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body acceptResponse
		decodeBody(t, resp, &body)
		assert.Regexp(t, pinPattern, body.CompletionPIN)

		var stored models.MealRequest
		require.NoError(t, env.db.First(&stored, "id = ?", requestID).Error)
		assert.Equal(t, models.RequestStatusInProgress, stored.Status)
		require.NotNil(t, stored.CompletionPIN)
		assert.Equal(t, body.CompletionPIN, *stored.CompletionPIN)
	})
}

func TestVerifyPIN(t *testing.T) {
	env := newTestEnv(t)
	donor := env.register(t, models.RoleDonor, "pindonor")
	seeker := env.register(t, models.RoleSeeker, "pinseeker")
	outsider := env.register(t, models.RoleSeeker, "pinoutsider")
	offerID := env.createOffer(t, donor)

	resp, err := env.app.Test(jsonReq(t, http.MethodPost,
		"/chats/matches/"+offerID+"/accept", map[string]string{}, seeker.Token), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var accepted acceptResponse
	decodeBody(t, resp, &accepted)

	wrongPIN := "0000"
	if accepted.CompletionPIN == wrongPIN {
		wrongPIN = "0001"
	}

	t.Run("outsider is forbidden", func(t *testing.T) {
		resp, err := env.app.Test(jsonReq(t, http.MethodPost,
			"/chats/matches/"+offerID+"/verify-pin",
			map[string]string{"pin": accepted.CompletionPIN}, outsider.Token), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("wrong PIN reports failure without state change", func(t *testing.T) {
		resp, err := env.app.Test(jsonReq(t, http.MethodPost,
			"/chats/matches/"+offerID+"/verify-pin",
			map[string]string{"pin": wrongPIN}, donor.Token), -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body verifyResponse
		decodeBody(t, resp, &body)
		assert.False(t, body.Success)
		assert.Equal(t, "Invalid PIN", body.Message)
		assert.Equal(t, string(models.OfferStatusInProgress), body.Status)

		var stored models.MealOffer
		require.NoError(t, env.db.First(&stored, "id = ?", offerID).Error)
		assert.Equal(t, models.OfferStatusInProgress, stored.Status)
		assert.NotNil(t, stored.CompletionPIN)
	})

	t.Run("correct PIN completes the transaction", func(t *testing.T) {
		resp, err := env.app.Test(jsonReq(t, http.MethodPost,
			"/chats/matches/"+offerID+"/verify-pin",
			map[string]string{"pin": accepted.CompletionPIN}, donor.Token), -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body verifyResponse
		decodeBody(t, resp, &body)
		assert.True(t, body.Success)
		assert.Equal(t, string(models.OfferStatusClaimed), body.Status)

		var stored models.MealOffer
		require.NoError(t, env.db.First(&stored, "id = ?", offerID).Error)
		assert.Equal(t, models.OfferStatusClaimed, stored.Status)
		assert.Nil(t, stored.CompletionPIN)

		var thread models.ChatThread
		require.NoError(t, env.db.First(&thread, "id = ?", accepted.ThreadID).Error)
		assert.Equal(t, models.ThreadStatusCompleted, thread.Status)
	})

	t.Run("replaying the PIN fails after completion", func(t *testing.T) {
		resp, err := env.app.Test(jsonReq(t, http.MethodPost,
			"/chats/matches/"+offerID+"/verify-pin",
			map[string]string{"pin": accepted.CompletionPIN}, donor.Token), -1)
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var body verifyResponse
		decodeBody(t, resp, &body)
		assert.False(t, body.Success)
	})
}

func TestGeneratePIN(t *testing.T) {
	for i := 0; i < 200; i++ {
		pin, err := generatePIN()
		require.NoError(t, err)
		assert.Regexp(t, pinPattern, pin)
	}
}
