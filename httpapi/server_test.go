package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/securefoxd/securefox/httpapi"
	"github.com/securefoxd/securefox/vaultmodel"
	"github.com/securefoxd/securefox/vaultsession"
	"github.com/securefoxd/securefox/vaultstorage"
)

func newTestServer(t *testing.T) (*httptest.Server, []byte) {
	t.Helper()

	dir := t.TempDir()
	storage := vaultstorage.WithPath(filepath.Join(dir, vaultstorage.VaultFileName))

	password := []byte("correct horse battery staple")
	if err := storage.Save(vaultmodel.NewVault(), password); err != nil {
		t.Fatalf("seed Save: %v", err)
	}

	manager := vaultsession.New(storage, time.Minute, nil)
	srv := httpapi.New(manager, nil, nil)

	return httptest.NewServer(srv), password
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var reader *bytes.Reader

	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}

		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Do: %v", err)
	}

	return resp
}

func TestUnlockAddItemPersistFlow(t *testing.T) {
	ts, password := newTestServer(t)
	defer ts.Close()

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/unlock", "", map[string]string{"password": string(password)})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unlock: got status %d", resp.StatusCode)
	}

	var unlockBody struct {
		Token string `json:"token"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&unlockBody); err != nil {
		t.Fatalf("decode unlock response: %v", err)
	}
	resp.Body.Close()

	username := "alice"
	loginPassword := "hunter2"

	item := vaultmodel.Item{
		Name: "GitHub",
		Type: vaultmodel.ItemTypeLogin,
		Login: &vaultmodel.LoginData{
			Username: &username,
			Password: &loginPassword,
			Uris:     []vaultmodel.LoginUri{{Uri: "https://github.com"}},
		},
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/items", unlockBody.Token, item)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create item: got status %d", resp.StatusCode)
	}

	var created vaultmodel.Item
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode created item: %v", err)
	}
	resp.Body.Close()

	if created.ID == "" {
		t.Fatal("expected a generated id")
	}

	if !created.CreationDate.Equal(created.RevisionDate) {
		t.Fatal("expected creation date to equal revision date on create")
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/items/"+created.ID, unlockBody.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get item: got status %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestUnlockWrongPasswordReturns401(t *testing.T) {
	ts, _ := newTestServer(t)
	defer ts.Close()

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/unlock", "", map[string]string{"password": "wrong"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestItemsRequiresBearerToken(t *testing.T) {
	ts, _ := newTestServer(t)
	defer ts.Close()

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/items", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a bearer token, got %d", resp.StatusCode)
	}
}

func TestHealthAndStatusAreUnauthenticated(t *testing.T) {
	ts, _ := newTestServer(t)
	defer ts.Close()

	resp := doJSON(t, http.MethodGet, ts.URL+"/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/status", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from /api/status, got %d", resp.StatusCode)
	}
}
