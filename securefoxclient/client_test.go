package securefoxclient_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/securefoxd/securefox/securefoxclient"
)

func TestUnlockDecodesSnakeCaseResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/unlock" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token":      "tok-123",
			"expires_at": "2026-01-01T00:00:00Z",
			"vault_summary": map[string]int{
				"item_count":   3,
				"folder_count": 1,
			},
		})
	}))
	defer ts.Close()

	c := securefoxclient.New(strings.TrimPrefix(ts.URL, "http://"), "")

	result, err := c.Unlock(t.Context(), "hunter2")
	if err != nil {
		t.Fatalf("Unlock: %v", err)
	}

	if result.Token != "tok-123" {
		t.Fatalf("expected token tok-123, got %q", result.Token)
	}

	if result.VaultSummary.ItemCount != 3 || result.VaultSummary.FolderCount != 1 {
		t.Fatalf("unexpected summary: %+v", result.VaultSummary)
	}
}

func TestErrorResponseBecomesAPIError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":   "invalid_password",
			"message": "incorrect password",
		})
	}))
	defer ts.Close()

	c := securefoxclient.New(strings.TrimPrefix(ts.URL, "http://"), "")

	_, err := c.Unlock(t.Context(), "wrong")
	if err == nil {
		t.Fatal("expected an error")
	}

	apiErr, ok := err.(*securefoxclient.APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T", err)
	}

	if apiErr.Status != http.StatusUnauthorized || apiErr.Kind != "invalid_password" {
		t.Fatalf("unexpected APIError: %+v", apiErr)
	}
}
