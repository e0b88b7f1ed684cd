package httpapi

import (
	"net/http"

	"github.com/securefoxd/securefox/vaultmodel"
	"github.com/securefoxd/securefox/vaulterrors"
)

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request, token string) {
	filter := vaultmodel.ItemFilter{
		Search:   r.URL.Query().Get("search"),
		FolderID: r.URL.Query().Get("folder_id"),
	}

	var items []vaultmodel.Item

	err := s.manager.ReadVault(token, func(v *vaultmodel.Vault) error {
		items = v.ListItems(filter)
		return nil
	})
	if err != nil {
		writeErrorForErr(w, err)
		return
	}

	if items == nil {
		items = []vaultmodel.Item{}
	}

	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request, token string) {
	var item vaultmodel.Item
	if err := decodeJSON(r, &item); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	var created vaultmodel.Item

	err := s.manager.UpdateVault(token, func(v *vaultmodel.Vault) error {
		var addErr error
		created, addErr = v.AddItem(item)
		return addErr
	})
	if err != nil {
		writeErrorForErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, created)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request, token string) {
	id := r.PathValue("id")

	var found *vaultmodel.Item

	err := s.manager.ReadVault(token, func(v *vaultmodel.Vault) error {
		found = v.FindItem(id)
		return nil
	})
	if err != nil {
		writeErrorForErr(w, err)
		return
	}

	if found == nil {
		writeError(w, http.StatusNotFound, "not_found", "item not found")
		return
	}

	writeJSON(w, http.StatusOK, *found)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request, token string) {
	id := r.PathValue("id")

	var patch vaultmodel.Item
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	var updated vaultmodel.Item

	err := s.manager.UpdateVault(token, func(v *vaultmodel.Vault) error {
		var updateErr error
		updated, updateErr = v.UpdateItem(id, patch)
		return updateErr
	})
	if err != nil {
		writeErrorForErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request, token string) {
	id := r.PathValue("id")

	err := s.manager.UpdateVault(token, func(v *vaultmodel.Vault) error {
		if !v.DeleteItem(id) {
			return vaulterrors.ErrNotFound
		}

		return nil
	})
	if err != nil {
		writeErrorForErr(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
