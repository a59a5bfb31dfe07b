package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/beeconnect/server/internal/config"
	"github.com/beeconnect/server/internal/domain/models"
)

func TestSendTextsRecipient(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v20.0/12345/messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer tok" {
			t.Errorf("authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"messages": [{"id": "wamid.1"}]}`))
	}))
	defer srv.Close()

	client := NewClient(config.WhatsAppConfig{
		AccessToken:   "tok",
		PhoneNumberID: "12345",
		BaseURL:       srv.URL + "/",
		APIVersion:    "v20.0",
		Recipient:     "351910000000",
	})
	err := client.Send(context.Background(), models.Notification{Title: "Inspeção Programada", Body: "Está na hora de visitar a colmeia C1"})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}

	if got["to"] != "351910000000" || got["messaging_product"] != "whatsapp" {
		t.Errorf("payload = %v", got)
	}
	text, _ := got["text"].(map[string]any)
	if text["body"] != "*Inspeção Programada*\nEstá na hora de visitar a colmeia C1" {
		t.Errorf("body = %q", text["body"])
	}
}

func TestSendTextReportsAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "Invalid parameter", "code": 100}}`))
	}))
	defer srv.Close()

	client := NewClient(config.WhatsAppConfig{AccessToken: "tok", PhoneNumberID: "1", BaseURL: srv.URL, APIVersion: "v20.0"})
	_, err := client.SendText(context.Background(), "x", "hello")
	if err == nil || !strings.Contains(err.Error(), "code=100") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestFormatTextWithoutTitle(t *testing.T) {
	if got := FormatText(models.Notification{Body: "só corpo"}); got != "só corpo" {
		t.Errorf("FormatText = %q", got)
	}
}
