// Package gitsync implements the Git synchronisation state machine of
// spec.md §4.4-§4.5: repository discovery, credential resolution,
// fetch/push, fast-forward and three-way merge with a "prefer theirs"
// conflict policy, and ahead/behind detection. It is built on
// go-git/go-git/v5, the pure-Go git implementation; no example in the
// pack covers Git sync, so this is grounded directly on the behaviour
// of original_source/core/src/git_sync.rs (the Rust reference this
// specification was distilled from), translated from libgit2 idioms
// to go-git idioms.
package gitsync

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"golang.org/x/crypto/ssh"

	"github.com/securefoxd/securefox/vaulterrors"
)

// DefaultRemoteName and DefaultBranchName are used unless overridden
// by SECUREFOX_REMOTE / SECUREFOX_BRANCH.
const (
	DefaultRemoteName = "origin"
	DefaultBranchName = "main"
)

// Engine drives Git synchronisation for a single vault directory.
type Engine struct {
	repoPath   string
	repo       *git.Repository
	remoteName string
	branchName string

	// Resolver picks the winning side for a path changed on both
	// branches during a three-way merge. Nil means PreferTheirs.
	Resolver ConflictResolver
}

// Open discovers or initialises a repository at path: if a .git
// subtree is present it is opened, otherwise a fresh repository is
// initialised in place.
func Open(path string) (*Engine, error) {
	repoPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve repo path: %v", vaulterrors.ErrGit, err)
	}

	var repo *git.Repository

	if _, statErr := os.Stat(filepath.Join(repoPath, ".git")); statErr == nil {
		repo, err = git.PlainOpen(repoPath)
	} else {
		repo, err = git.PlainInit(repoPath, false)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: open or init repository: %v", vaulterrors.ErrGit, err)
	}

	return &Engine{
		repoPath:   repoPath,
		repo:       repo,
		remoteName: envOr("SECUREFOX_REMOTE", DefaultRemoteName),
		branchName: envOr("SECUREFOX_BRANCH", DefaultBranchName),
	}, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

// SetRemote creates or updates the engine's configured remote to
// point at url.
func (e *Engine) SetRemote(url string) error {
	cfg, err := e.repo.Config()
	if err != nil {
		return fmt.Errorf("%w: read config: %v", vaulterrors.ErrGit, err)
	}

	if remote, ok := cfg.Remotes[e.remoteName]; ok {
		remote.URLs = []string{url}
	} else {
		cfg.Remotes[e.remoteName] = &config.RemoteConfig{Name: e.remoteName, URLs: []string{url}}
	}

	if err := e.repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("%w: write config: %v", vaulterrors.ErrGit, err)
	}

	return nil
}

// GetRemote returns the configured remote's URL, or "", false if no
// such remote exists.
func (e *Engine) GetRemote() (string, bool) {
	remote, err := e.repo.Remote(e.remoteName)
	if err != nil || len(remote.Config().URLs) == 0 {
		return "", false
	}

	return remote.Config().URLs[0], true
}

// getSignature builds the commit author/committer identity from
// GIT_AUTHOR_NAME/EMAIL, falling back to $USER and a fixed email, per
// the original's get_signature.
func (e *Engine) getSignature() *object.Signature {
	name := os.Getenv("GIT_AUTHOR_NAME")
	if name == "" {
		if u, err := user.Current(); err == nil && u.Username != "" {
			name = u.Username
		} else {
			name = "SecureFox"
		}
	}

	email := os.Getenv("GIT_AUTHOR_EMAIL")
	if email == "" {
		email = "securefox@localhost"
	}

	return &object.Signature{Name: name, Email: email, When: time.Now()}
}

// auth resolves transport credentials per spec.md §4.4's order: SSH
// keys (ed25519, rsa, ecdsa) then the SSH agent for SSH remotes;
// GIT_USERNAME/GIT_PASSWORD for HTTP(S) remotes; no credentials
// otherwise. Host key verification is intentionally permissive
// (accept-all) -- a known, deliberate gap, see DESIGN.md and spec.md
// §4.4/§9.
func (e *Engine) auth(remoteURL string) (transport.AuthMethod, error) {
	ep, err := transport.NewEndpoint(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse remote url: %v", vaulterrors.ErrGit, err)
	}

	switch ep.Protocol {
	case "ssh":
		return sshAuth(ep.User)
	case "http", "https":
		user := os.Getenv("GIT_USERNAME")
		pass := os.Getenv("GIT_PASSWORD")

		if user == "" && pass == "" {
			return nil, nil
		}

		return &githttp.BasicAuth{Username: user, Password: pass}, nil
	default:
		return nil, nil
	}
}

func sshAuth(user string) (transport.AuthMethod, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("%w: resolve home directory: %v", vaulterrors.ErrGit, err)
	}

	for _, name := range []string{"id_ed25519", "id_rsa", "id_ecdsa"} {
		keyPath := filepath.Join(home, ".ssh", name)
		if _, err := os.Stat(keyPath); err != nil {
			continue
		}

		auth, err := gitssh.NewPublicKeysFromFile(user, keyPath, "")
		if err != nil {
			continue
		}

		auth.HostKeyCallback = ssh.InsecureIgnoreHostKey()

		return auth, nil
	}

	agentAuth, err := gitssh.NewSSHAgentAuth(user)
	if err != nil {
		return nil, fmt.Errorf("%w: no usable SSH key and no agent available: %v", vaulterrors.ErrGit, err)
	}

	agentAuth.HostKeyCallback = ssh.InsecureIgnoreHostKey()

	return agentAuth, nil
}
