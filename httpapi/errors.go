package httpapi

import (
	"errors"
	"net/http"

	"github.com/securefoxd/securefox/vaulterrors"
)

// errorResponse is the wire shape for every non-2xx response, per
// spec.md §6: "the HTTP surface returns {error, message} JSON".
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// writeError writes a {error, message} body with the given kind and
// human-readable message at status.
func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorResponse{Error: kind, Message: message})
}

// writeErrorForErr maps err onto spec.md §7's status-code table via
// the vaulterrors sentinel it wraps, falling back to 500 with a
// generic message for anything unrecognised (full detail is logged by
// the caller, never echoed to the client per spec.md §7).
func writeErrorForErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, vaulterrors.ErrInvalidPassword):
		writeError(w, http.StatusUnauthorized, "invalid_password", "invalid password")
	case errors.Is(err, vaulterrors.ErrSessionExpired):
		writeError(w, http.StatusUnauthorized, "session_expired", "session expired")
	case errors.Is(err, vaulterrors.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized", "unauthorized")
	case errors.Is(err, vaulterrors.ErrVaultLocked):
		writeError(w, http.StatusForbidden, "vault_locked", "vault is locked")
	case errors.Is(err, vaulterrors.ErrVaultNotFound):
		writeError(w, http.StatusNotFound, "vault_not_found", "vault not found")
	case errors.Is(err, vaulterrors.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, vaulterrors.ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, vaulterrors.ErrInvalidTotp):
		writeError(w, http.StatusBadRequest, "invalid_totp", err.Error())
	case errors.Is(err, vaulterrors.ErrGit):
		writeError(w, http.StatusInternalServerError, "git_error", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
