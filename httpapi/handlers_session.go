package httpapi

import (
	"net/http"

	"github.com/securefoxd/securefox/vaultmodel"
)

type unlockRequest struct {
	Password string `json:"password"`
}

type unlockResponse struct {
	Token       string      `json:"token"`
	ExpiresAt   string      `json:"expires_at"`
	VaultSummary vaultSummary `json:"vault_summary"`
}

// vaultSummary is a lightweight, password-free snapshot returned on
// unlock so a client can render without a follow-up /api/items call.
type vaultSummary struct {
	ItemCount   int `json:"item_count"`
	FolderCount int `json:"folder_count"`
}

func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	var req unlockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	session, err := s.manager.Unlock([]byte(req.Password))
	if err != nil {
		writeErrorForErr(w, err)
		return
	}

	summary := vaultSummary{}

	_ = s.manager.ReadVault(session.Token, func(v *vaultmodel.Vault) error {
		summary.ItemCount = len(v.Items)
		summary.FolderCount = len(v.Folders)
		return nil
	})

	writeJSON(w, http.StatusOK, unlockResponse{
		Token:        session.Token,
		ExpiresAt:    session.ExpiresAt.Format(statusTimeFormat),
		VaultSummary: summary,
	})
}

type lockResponse struct {
	Locked       bool `json:"locked"`
	SessionValid bool `json:"session_valid"`
	VaultExists  bool `json:"vault_exists"`
}

func (s *Server) handleLock(w http.ResponseWriter, r *http.Request, token string) {
	s.manager.Lock(token)

	writeJSON(w, http.StatusOK, lockResponse{
		Locked:       true,
		SessionValid: false,
		VaultExists:  s.manager.VaultExists(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)

	sessionValid := false
	if token != "" {
		if _, err := s.manager.GetSession(token); err == nil {
			sessionValid = true
		}
	}

	writeJSON(w, http.StatusOK, lockResponse{
		Locked:       !s.manager.Unlocked(),
		SessionValid: sessionValid,
		VaultExists:  s.manager.VaultExists(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
