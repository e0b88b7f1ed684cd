// Package vaultmodel defines the decrypted vault's data shape: the
// plaintext JSON document that lives inside the envelope once a
// master password has unlocked it. Field names and item-type codes
// follow the Bitwarden-compatible wire format the original SecureFox
// implementation emits, so an exported vault can be read by tooling
// that already understands that shape.
package vaultmodel

import "time"

// Vault is the root decrypted document.
type Vault struct {
	Version    int         `json:"version"`
	Folders    []Folder    `json:"folders"`
	Items      []Item      `json:"items"`
	SyncTime   *time.Time  `json:"syncTime,omitempty"`
	SyncConfig *SyncConfig `json:"syncConfig,omitempty"`
}

// NewVault returns an empty vault at the current wire version.
func NewVault() *Vault {
	return &Vault{
		Version: CurrentVersion,
		Folders: []Folder{},
		Items:   []Item{},
	}
}

// CurrentVersion is the wire-format version written into new vaults.
const CurrentVersion = 1

// Folder groups items for display purposes; it carries no other
// semantics (no nesting, no permissions).
type Folder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ItemType identifies which of Item's optional payload fields is
// populated.
type ItemType uint8

const (
	ItemTypeLogin      ItemType = 1
	ItemTypeSecureNote ItemType = 2
	ItemTypeCard       ItemType = 3
	ItemTypeIdentity   ItemType = 4
)

// Item is a single vault entry. Exactly one of Login, Card, Identity,
// or SecureNote is populated, selected by Type.
type Item struct {
	ID           string         `json:"id"`
	Type         ItemType       `json:"type"`
	Name         string         `json:"name"`
	FolderID     *string        `json:"folderId,omitempty"`
	Favorite     bool           `json:"favorite"`
	Notes        *string        `json:"notes,omitempty"`
	Login        *LoginData     `json:"login,omitempty"`
	Card         *CardData      `json:"card,omitempty"`
	Identity     *IdentityData  `json:"identity,omitempty"`
	SecureNote   *SecureNoteData `json:"secureNote,omitempty"`
	Fields       []CustomField  `json:"fields,omitempty"`
	Reprompt     bool           `json:"reprompt,omitempty"`
	CreationDate time.Time      `json:"creationDate"`
	RevisionDate time.Time      `json:"revisionDate"`
}

// LoginData holds the fields specific to an ItemTypeLogin item.
type LoginData struct {
	Username *string    `json:"username,omitempty"`
	Password *string    `json:"password,omitempty"`
	Totp     *string    `json:"totp,omitempty"`
	Uris     []LoginUri `json:"uris,omitempty"`
}

// LoginUri is one URI associated with a login, along with how it
// should be matched against a page the user is visiting.
type LoginUri struct {
	Uri       string         `json:"uri"`
	MatchType *UriMatchType `json:"match,omitempty"`
}

// UriMatchType controls how a LoginUri matches a browsed URL.
type UriMatchType uint8

const (
	UriMatchBaseDomain UriMatchType = 0
	UriMatchHost       UriMatchType = 1
	UriMatchStartsWith UriMatchType = 2
	UriMatchExact      UriMatchType = 3
	UriMatchRegex      UriMatchType = 4
	UriMatchNever      UriMatchType = 5
)

// CardData holds the fields specific to an ItemTypeCard item.
type CardData struct {
	CardholderName *string `json:"cardholderName,omitempty"`
	Brand          *string `json:"brand,omitempty"`
	Number         *string `json:"number,omitempty"`
	ExpMonth       *string `json:"expMonth,omitempty"`
	ExpYear        *string `json:"expYear,omitempty"`
	Code           *string `json:"code,omitempty"`
}

// IdentityData holds the fields specific to an ItemTypeIdentity item.
type IdentityData struct {
	Title      *string `json:"title,omitempty"`
	FirstName  *string `json:"firstName,omitempty"`
	MiddleName *string `json:"middleName,omitempty"`
	LastName   *string `json:"lastName,omitempty"`
	Email      *string `json:"email,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Address1   *string `json:"address1,omitempty"`
	City       *string `json:"city,omitempty"`
	State      *string `json:"state,omitempty"`
	PostalCode *string `json:"postalCode,omitempty"`
	Country    *string `json:"country,omitempty"`
}

// SecureNoteData holds the fields specific to an ItemTypeSecureNote item.
type SecureNoteData struct {
	Type SecureNoteType `json:"type"`
}

// SecureNoteType distinguishes secure-note subtypes. Only Generic
// exists today but the field is kept for forward compatibility with
// the wire format.
type SecureNoteType uint8

const SecureNoteGeneric SecureNoteType = 0

// CustomField is a user-defined name/value pair attached to an item,
// independent of its type-specific payload.
type CustomField struct {
	Name      string    `json:"name"`
	Value     *string   `json:"value,omitempty"`
	FieldType FieldType `json:"type"`
}

// FieldType controls how a CustomField's value should be displayed
// and stored.
type FieldType uint8

const (
	FieldTypeText    FieldType = 0
	FieldTypeHidden  FieldType = 1
	FieldTypeBoolean FieldType = 2
)

// SyncConfig records how this vault should be kept in sync with a git
// remote. It appears both in the decrypted document, where it travels
// with the vault across machines, and in the plaintext config file
// (vaultconfig.Config), whose copy is the one securefoxd reads.
type SyncConfig struct {
	Enabled bool     `json:"enabled"`
	Mode    SyncMode `json:"mode"`
}

// SyncModeKind discriminates SyncMode's two variants. The original
// source's four-variant enum (Manual/AutoPull/PushOnChange/Full) is
// folded into these two per spec.md §9: push-on-change is not a
// separate mode, it is a property of Auto.
type SyncModeKind string

const (
	SyncModeManual SyncModeKind = "manual"
	SyncModeAuto   SyncModeKind = "auto"
)

// SyncMode is Manual (no scheduled pulls, no push-on-change) or Auto
// with a pull interval (scheduled pulls via C8, and every mutation
// pushes via C6's update_vault pipeline).
type SyncMode struct {
	Type            SyncModeKind `json:"type"`
	IntervalSeconds uint64       `json:"intervalSeconds,omitempty"`
}

// IsAuto reports whether m periodically pulls from the remote and
// pushes on every local mutation.
func (m SyncMode) IsAuto() bool {
	return m.Type == SyncModeAuto
}

// Interval returns the configured pull interval and whether m has one.
func (m SyncMode) Interval() (time.Duration, bool) {
	if !m.IsAuto() || m.IntervalSeconds == 0 {
		return 0, false
	}

	return time.Duration(m.IntervalSeconds) * time.Second, true
}
