package vaultmodel_test

import (
	"testing"

	"github.com/securefoxd/securefox/vaultmodel"
)

func ptr(s string) *string { return &s }

func loginItem(name, uri, username, password string) vaultmodel.Item {
	return vaultmodel.Item{
		Name: name,
		Type: vaultmodel.ItemTypeLogin,
		Login: &vaultmodel.LoginData{
			Username: ptr(username),
			Password: ptr(password),
			Uris:     []vaultmodel.LoginUri{{Uri: uri}},
		},
	}
}

func TestAddItemAssignsIDAndTimestamps(t *testing.T) {
	v := vaultmodel.NewVault()

	item, err := v.AddItem(loginItem("GitHub", "https://github.com", "alice", "hunter2"))
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	if item.ID == "" {
		t.Fatal("expected a generated id")
	}

	if !item.CreationDate.Equal(item.RevisionDate) {
		t.Fatalf("creation and revision date should match on create: %v != %v", item.CreationDate, item.RevisionDate)
	}

	if len(v.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(v.Items))
	}
}

func TestAddItemSuppressesDuplicateLogin(t *testing.T) {
	v := vaultmodel.NewVault()

	first, err := v.AddItem(loginItem("GitHub", "https://x", "u", "p"))
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	second, err := v.AddItem(loginItem("GitHub Again", "https://x", "u", "p"))
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("expected duplicate suppression to return the original item, got a new id")
	}

	if len(v.Items) != 1 {
		t.Fatalf("expected vault to still contain 1 item, got %d", len(v.Items))
	}

	third, err := v.AddItem(loginItem("GitHub", "https://x", "u", "different-password"))
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	if third.ID == first.ID {
		t.Fatal("a different password should not be suppressed as a duplicate")
	}

	if len(v.Items) != 2 {
		t.Fatalf("expected vault to contain 2 items, got %d", len(v.Items))
	}
}

func TestUpdateItemAdvancesRevisionDate(t *testing.T) {
	v := vaultmodel.NewVault()

	created, err := v.AddItem(loginItem("GitHub", "https://github.com", "alice", "hunter2"))
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	patch := created
	patch.Name = "GitHub Updated"

	updated, err := v.UpdateItem(created.ID, patch)
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	if !updated.RevisionDate.After(updated.CreationDate) {
		t.Fatal("expected revision date to advance past creation date")
	}

	if updated.Name != "GitHub Updated" {
		t.Fatalf("expected updated name, got %q", updated.Name)
	}
}

func TestUpdateItemRejectsUnknownFolder(t *testing.T) {
	v := vaultmodel.NewVault()

	created, err := v.AddItem(loginItem("GitHub", "https://github.com", "alice", "hunter2"))
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	patch := created
	bogus := "no-such-folder"
	patch.FolderID = &bogus

	if _, err := v.UpdateItem(created.ID, patch); err == nil {
		t.Fatal("expected an error referencing a non-existent folder")
	}
}

func TestDeleteItem(t *testing.T) {
	v := vaultmodel.NewVault()

	created, _ := v.AddItem(loginItem("GitHub", "https://github.com", "alice", "hunter2"))

	if !v.DeleteItem(created.ID) {
		t.Fatal("expected DeleteItem to report success")
	}

	if len(v.Items) != 0 {
		t.Fatalf("expected 0 items after delete, got %d", len(v.Items))
	}

	if v.DeleteItem(created.ID) {
		t.Fatal("expected second delete of the same id to report failure")
	}
}

func TestListItemsFiltersBySearch(t *testing.T) {
	v := vaultmodel.NewVault()

	v.AddItem(loginItem("GitHub", "https://github.com", "alice", "hunter2"))
	v.AddItem(loginItem("GitLab", "https://gitlab.com", "bob", "hunter3"))

	results := v.ListItems(vaultmodel.ItemFilter{Search: "hub"})
	if len(results) != 1 || results[0].Name != "GitHub" {
		t.Fatalf("expected one match for %q, got %v", "hub", results)
	}
}
