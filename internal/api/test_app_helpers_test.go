package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/clarity/internal/db"
)

func newTestApp(t *testing.T) (*fiber.App, *db.Store) {
	t.Helper()

	store, err := db.Open(db.MemoryPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	handler := NewHandler(store, time.UTC)
	handler.now = func() time.Time {
		return time.Date(2025, time.January, 10, 12, 0, 0, 0, time.UTC)
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return app, store
}

func sendJSON(t *testing.T, app *fiber.App, method string, path string, payload any) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, body)
	if payload != nil {
		request.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	}
	response, err := app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() {
		_ = response.Body.Close()
	})
	return response
}

func expectStatus(t *testing.T, response *http.Response, status int) {
	t.Helper()

	if response.StatusCode != status {
		raw, _ := io.ReadAll(response.Body)
		t.Fatalf("expected status %d, got %d: %s", status, response.StatusCode, string(raw))
	}
}

func decodeBody(t *testing.T, response *http.Response, target any) {
	t.Helper()

	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

type apiErrorBody struct {
	Error string `json:"error"`
	Field string `json:"field"`
}

func readAPIError(t *testing.T, response *http.Response) apiErrorBody {
	t.Helper()

	payload := apiErrorBody{}
	decodeBody(t, response, &payload)
	return payload
}
