package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/securefoxd/securefox/vaultstorage"
)

// sessionFileName is where the CLI remembers the bearer token handed out
// by the last successful unlock, so subsequent commands in the same
// shell don't need to re-enter the master password. It is CLI runtime
// state, not part of the vault or the plaintext sync config, so it
// lives alongside them rather than inside either.
const sessionFileName = "session"

type persistedSession struct {
	Token string `json:"token"`
}

func sessionFilePath() (string, error) {
	dir, err := vaultstorage.DefaultDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, sessionFileName), nil
}

func saveSessionToken(token string) error {
	path, err := sessionFilePath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	out, err := json.Marshal(persistedSession{Token: token})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return os.WriteFile(path, out, 0o600)
}

func loadSessionToken() string {
	path, err := sessionFilePath()
	if err != nil {
		return ""
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	var s persistedSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}

	return s.Token
}

func clearSessionToken() {
	path, err := sessionFilePath()
	if err != nil {
		return
	}

	_ = os.Remove(path)
}
