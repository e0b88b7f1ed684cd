package httpapi

import (
	"net/http"

	"github.com/securefoxd/securefox/vaultmodel"
	"github.com/securefoxd/securefox/vaulterrors"
	"github.com/securefoxd/securefox/vaulttotp"
)

type totpResponse struct {
	Code string `json:"code"`
	TTL  int    `json:"ttl"`
}

func (s *Server) handleItemTOTP(w http.ResponseWriter, r *http.Request, token string) {
	id := r.PathValue("id")

	var item *vaultmodel.Item

	err := s.manager.ReadVault(token, func(v *vaultmodel.Vault) error {
		item = v.FindItem(id)
		return nil
	})
	if err != nil {
		writeErrorForErr(w, err)
		return
	}

	if item == nil {
		writeError(w, http.StatusNotFound, "not_found", "item not found")
		return
	}

	if item.Login == nil || item.Login.Totp == nil || *item.Login.Totp == "" {
		writeErrorForErr(w, vaulterrors.ErrInvalidTotp)
		return
	}

	cfg, err := vaulttotp.ParseSecret(*item.Login.Totp)
	if err != nil {
		writeErrorForErr(w, err)
		return
	}

	code, err := cfg.Generate()
	if err != nil {
		writeErrorForErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, totpResponse{Code: code, TTL: int(cfg.TTL().Seconds())})
}

type generatePasswordResponse struct {
	Password string `json:"password"`
	Strength int    `json:"strength"`
}

func (s *Server) handleGeneratePassword(w http.ResponseWriter, r *http.Request, token string) {
	var opts passwordOptions
	if err := decodeJSON(r, &opts); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	password, err := generatePassword(opts)
	if err != nil {
		writeErrorForErr(w, vaulterrors.ErrInternal)
		return
	}

	writeJSON(w, http.StatusOK, generatePasswordResponse{
		Password: password,
		Strength: passwordStrength(password),
	})
}
