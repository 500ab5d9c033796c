package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/techieroshan/studentsupport/config"
	"github.com/techieroshan/studentsupport/database"
	"github.com/techieroshan/studentsupport/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	app *fiber.App
	srv *Server
	db  *gorm.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	cfg := &config.Config{
		JWTSecret: "test-secret",
		AppName:   "Student Support",
		AppDomain: "studentsupport.test",
		OrgName:   "Test Foundation",
	}

	srv := NewServerWithDeps(cfg, db, nil)
	app := fiber.New()
	srv.SetupRoutes(app)

	return &testEnv{app: app, srv: srv, db: db}
}

func jsonReq(t *testing.T, method, path string, payload any, token string) *http.Request {
	t.Helper()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

type authUser struct {
	ID    string
	Token string
	Email string
}

func (e *testEnv) register(t *testing.T, role models.UserRole, prefix string) authUser {
	t.Helper()

	email := fmt.Sprintf("%s_%d@example.com", prefix, time.Now().UnixNano())
	payload := map[string]any{
		"email":        email,
		"password":     "TestPass123!@#",
		"role":         role,
		"display_name": prefix + " Person",
		"city":         "Fort Worth",
		"state":        "TX",
		"zip":          "76131",
	}

	resp, err := e.app.Test(jsonReq(t, http.MethodPost, "/auth/register", payload, ""), -1)
	if err != nil {
		t.Fatalf("register app.Test: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("register expected 201 got %d: %s", resp.StatusCode, b)
	}

	var body struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decodeBody(t, resp, &body)
	if body.Token == "" || body.User.ID == "" {
		t.Fatalf("invalid register response: %+v", body)
	}

	return authUser{ID: body.User.ID, Token: body.Token, Email: email}
}

func (e *testEnv) makeAdmin(t *testing.T, userID string) {
	t.Helper()
	if err := e.db.Model(&models.User{}).Where("id = ?", userID).
		Update("role", models.RoleAdmin).Error; err != nil {
		t.Fatalf("promote admin: %v", err)
	}
}

func (e *testEnv) createOffer(t *testing.T, donor authUser) string {
	t.Helper()
	payload := map[string]any{
		"description":  "Big batch of vegetable curry, portioned",
		"frequency":    "ONE_TIME",
		"dietary_tags": []string{"vegetarian"},
	}
	resp, err := e.app.Test(jsonReq(t, http.MethodPost, "/offers/", payload, donor.Token), -1)
	if err != nil {
		t.Fatalf("create offer: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("create offer expected 201 got %d: %s", resp.StatusCode, b)
	}
	var offer models.MealOffer
	decodeBody(t, resp, &offer)
	return offer.ID
}

func (e *testEnv) createRequest(t *testing.T, seeker authUser) string {
	t.Helper()
	payload := map[string]any{
		"description":   "Meal plan ran out before finals, any dinner helps",
		"frequency":     "ONE_TIME",
		"dietary_needs": []string{"halal"},
	}
	resp, err := e.app.Test(jsonReq(t, http.MethodPost, "/requests/", payload, seeker.Token), -1)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("create request expected 201 got %d: %s", resp.StatusCode, b)
	}
	var request models.MealRequest
	decodeBody(t, resp, &request)
	return request.ID
}
