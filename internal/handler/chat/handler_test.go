package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/zhouzirui/z-tavern/chatwidget/internal/service/backend"
)

func setupRouter(responder Responder) *chi.Mux {
	handler := New(responder)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func postChat(r http.Handler, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestChatEchoesMessage(t *testing.T) {
	r := setupRouter(nil)
	payload, _ := json.Marshal(map[string]string{"message": "  hello  "})

	resp := postChat(r, payload)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var body backend.ChatResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Response == nil || *body.Response != "hello" {
		t.Fatalf("unexpected response: %+v", body)
	}
}

func TestChatMissingMessage(t *testing.T) {
	r := setupRouter(nil)

	resp := postChat(r, []byte(`{"message":"   "}`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestChatInvalidBody(t *testing.T) {
	r := setupRouter(nil)

	resp := postChat(r, []byte(`not json`))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestChatResponderFailure(t *testing.T) {
	r := setupRouter(ResponderFunc(func(context.Context, string) (string, error) {
		return "", errors.New("model offline")
	}))

	resp := postChat(r, []byte(`{"message":"hi"}`))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}

	var body backend.ChatResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Error == "" || body.Response != nil {
		t.Fatalf("expected error body, got %+v", body)
	}
}
