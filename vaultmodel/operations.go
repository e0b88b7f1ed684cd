package vaultmodel

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/securefoxd/securefox/vaulterrors"
)

// FindItem returns the item with the given id, or nil if none exists.
func (v *Vault) FindItem(id string) *Item {
	for i := range v.Items {
		if v.Items[i].ID == id {
			return &v.Items[i]
		}
	}

	return nil
}

// FindFolder returns the folder with the given id, or nil if none exists.
func (v *Vault) FindFolder(id string) *Folder {
	for i := range v.Folders {
		if v.Folders[i].ID == id {
			return &v.Folders[i]
		}
	}

	return nil
}

// ValidateFolderRef returns an error if folderID is non-nil and does
// not reference an existing folder, enforcing the invariant in
// spec.md §3 that every item.folder_id must resolve.
func (v *Vault) ValidateFolderRef(folderID *string) error {
	if folderID == nil {
		return nil
	}

	if v.FindFolder(*folderID) == nil {
		return fmt.Errorf("%w: folder %q does not exist", vaulterrors.ErrBadRequest, *folderID)
	}

	return nil
}

// DuplicateLogin finds an existing login item whose first URI,
// username, and password all match item's, implementing the
// duplicate-suppression rule from spec.md §8 scenario 4. It only
// considers item.Type == ItemTypeLogin entries with a populated Login
// payload and at least one URI.
func (v *Vault) DuplicateLogin(candidate *LoginData) *Item {
	if candidate == nil || len(candidate.Uris) == 0 {
		return nil
	}

	candidateURI := candidate.Uris[0].Uri
	candidateUser := stringValue(candidate.Username)
	candidatePass := stringValue(candidate.Password)

	for i := range v.Items {
		item := &v.Items[i]
		if item.Type != ItemTypeLogin || item.Login == nil || len(item.Login.Uris) == 0 {
			continue
		}

		if item.Login.Uris[0].Uri != candidateURI {
			continue
		}

		if stringValue(item.Login.Username) != candidateUser {
			continue
		}

		if stringValue(item.Login.Password) != candidatePass {
			continue
		}

		return item
	}

	return nil
}

// AddItem assigns a fresh id and timestamps to item and appends it to
// v, unless item is a duplicate login (per DuplicateLogin), in which
// case the existing item is returned unchanged and v is not modified.
func (v *Vault) AddItem(item Item) (Item, error) {
	if item.Type == ItemTypeLogin {
		if existing := v.DuplicateLogin(item.Login); existing != nil {
			return *existing, nil
		}
	}

	if err := v.ValidateFolderRef(item.FolderID); err != nil {
		return Item{}, err
	}

	now := time.Now().UTC()

	item.ID = uuid.NewString()
	item.CreationDate = now
	item.RevisionDate = now

	v.Items = append(v.Items, item)

	return item, nil
}

// UpdateItem replaces the fields of the item identified by id with
// those of patch, preserving id and CreationDate, and advancing
// RevisionDate. It returns the updated item, or an error if id is
// unknown.
func (v *Vault) UpdateItem(id string, patch Item) (Item, error) {
	existing := v.FindItem(id)
	if existing == nil {
		return Item{}, fmt.Errorf("%w: item %q", vaulterrors.ErrNotFound, id)
	}

	if err := v.ValidateFolderRef(patch.FolderID); err != nil {
		return Item{}, err
	}

	patch.ID = existing.ID
	patch.CreationDate = existing.CreationDate
	patch.RevisionDate = time.Now().UTC()
	if !patch.RevisionDate.After(existing.RevisionDate) {
		patch.RevisionDate = existing.RevisionDate.Add(time.Nanosecond)
	}

	*existing = patch

	return *existing, nil
}

// DeleteItem removes the item identified by id. It reports whether an
// item was actually removed.
func (v *Vault) DeleteItem(id string) bool {
	for i := range v.Items {
		if v.Items[i].ID == id {
			v.Items = append(v.Items[:i], v.Items[i+1:]...)
			return true
		}
	}

	return false
}

// ItemFilter narrows a listing by free-text search over name/username
// and/or folder membership. Zero values mean "no filter".
type ItemFilter struct {
	Search   string
	FolderID string
}

// ListItems returns the items matching filter, preserving vault order.
func (v *Vault) ListItems(filter ItemFilter) []Item {
	results := make([]Item, 0, len(v.Items))

	for _, item := range v.Items {
		if filter.FolderID != "" {
			if item.FolderID == nil || *item.FolderID != filter.FolderID {
				continue
			}
		}

		if filter.Search != "" && !matchesSearch(item, filter.Search) {
			continue
		}

		results = append(results, item)
	}

	return results
}

func matchesSearch(item Item, query string) bool {
	if containsFold(item.Name, query) {
		return true
	}

	if item.Login != nil && item.Login.Username != nil && containsFold(*item.Login.Username, query) {
		return true
	}

	return false
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
