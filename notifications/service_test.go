package notifications

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/techieroshan/studentsupport/config"
	"github.com/techieroshan/studentsupport/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	// "api" backend with no key makes email a logged no-op.
	return &config.Config{
		AppName:      "Student Support",
		AppDomain:    "studentsupport.test",
		OrgName:      "Test Foundation",
		EmailBackend: "api",
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func TestWelcomePublishesEvent(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc := NewService(testConfig(), rdb, testLogger())

	ctx := context.Background()
	user := &models.User{ID: "user-1", Email: "u@example.com", DisplayName: "Jordan", City: "Fort Worth"}

	sub := rdb.Subscribe(ctx, "notifications:user:user-1")
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	svc.Welcome(ctx, user)

	select {
	case msg := <-sub.Channel():
		var payload map[string]any
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &payload))
		assert.Equal(t, "welcome", payload["event"])
		assert.Equal(t, "user-1", payload["user_id"])
	case <-time.After(2 * time.Second):
		t.Fatal("no event received on user channel")
	}
}

func TestNilRedisDisablesEvents(t *testing.T) {
	svc := NewService(testConfig(), nil, testLogger())

	// Must not panic with the event stream disabled.
	svc.Welcome(context.Background(), &models.User{ID: "user-2", Email: "u2@example.com"})
	svc.TransactionCompleted(context.Background(), "a", "b", nil)
}

func TestSMSWithoutKeyLogsOnly(t *testing.T) {
	sender := NewSMSSender(testConfig(), testLogger())
	assert.NoError(t, sender.SendOTP("+1 817 555 0100", "123456"))
}

func TestMailerAPIWithoutKeySkips(t *testing.T) {
	m := NewMailer(testConfig(), testLogger())
	assert.NoError(t, m.Send("to@example.com", "subject", "<p>hi</p>", "hi"))
}
