// Package auth resolves credentials for remote operations.
//
// A [Policy] is created per fetch and owns an explicit attempt counter. It
// answers username requests with the configured user and SSH key requests
// with the ssh-agent first, then with conventional key files under ~/.ssh.
// After [MaxAttempts] answered requests it refuses with
// [vcs.ErrAuthExhausted] so a remote that keeps rejecting credentials cannot
// make the backend loop forever.
package auth

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/raphi011/gitls/internal/vcs"
)

// MaxAttempts is the number of credential requests a single fetch may have
// answered.
const MaxAttempts = 3

// DefaultUser is used when neither the remote URL nor the config names one.
const DefaultUser = "git"

// KeyNames are the private key file names tried, in priority order.
var KeyNames = []string{"id_ed25519", "id_ecdsa", "id_rsa"}

// Options configures a Policy.
type Options struct {
	// User answers username requests when the URL carries none.
	User string
	// SSHDir holds the key files. Empty disables key file lookup.
	SSHDir string
	// AgentAvailable enables the ssh-agent candidate.
	AgentAvailable bool
}

// OptionsFromEnv builds Options from HOME and SSH_AUTH_SOCK.
func OptionsFromEnv(user string) Options {
	opts := Options{
		User:           user,
		AgentAvailable: os.Getenv("SSH_AUTH_SOCK") != "",
	}
	if home, err := os.UserHomeDir(); err == nil {
		opts.SSHDir = filepath.Join(home, ".ssh")
	}
	return opts
}

// Policy is a stateful credential resolver for one fetch.
// It is not safe for concurrent use; each fetch gets its own.
type Policy struct {
	opts     Options
	attempts int
	// next index into sshCandidates
	cursor        int
	sshCandidates []vcs.Credential
	resolved      bool

	readable func(path string) bool
}

// NewPolicy creates a Policy with a fresh attempt counter.
func NewPolicy(opts Options) *Policy {
	if opts.User == "" {
		opts.User = DefaultUser
	}
	return &Policy{opts: opts, readable: isReadable}
}

// Attempts returns how many requests were answered so far.
func (p *Policy) Attempts() int {
	return p.attempts
}

// Exhausted reports whether the next request will be refused.
func (p *Policy) Exhausted() bool {
	return p.attempts >= MaxAttempts
}

// Credential answers a backend credential request.
func (p *Policy) Credential(req vcs.CredentialRequest) (vcs.Credential, error) {
	if p.Exhausted() {
		return vcs.Credential{}, fmt.Errorf("%w after %d attempts", vcs.ErrAuthExhausted, p.attempts)
	}

	user := req.UsernameFromURL
	if user == "" {
		user = p.opts.User
	}

	switch {
	case req.AllowUsername:
		p.attempts++
		return vcs.Credential{Kind: vcs.UsernameCredential, Username: user}, nil

	case req.AllowSSHKey:
		if !p.resolved {
			p.sshCandidates = p.candidates(user)
			p.resolved = true
		}
		if p.cursor >= len(p.sshCandidates) {
			return vcs.Credential{}, fmt.Errorf("%w: no usable ssh key", vcs.ErrAuthExhausted)
		}
		cred := p.sshCandidates[p.cursor]
		p.cursor++
		p.attempts++
		return cred, nil
	}

	return vcs.Credential{}, fmt.Errorf("%w: unsupported credential type for %s", vcs.ErrAuthExhausted, req.URL)
}

// candidates lists SSH credentials in priority order: agent, then every
// readable key file.
func (p *Policy) candidates(user string) []vcs.Credential {
	var creds []vcs.Credential
	if p.opts.AgentAvailable {
		creds = append(creds, vcs.Credential{Kind: vcs.SSHAgentCredential, Username: user})
	}
	if p.opts.SSHDir == "" {
		return creds
	}
	for _, name := range KeyNames {
		priv := filepath.Join(p.opts.SSHDir, name)
		if !p.readable(priv) {
			continue
		}
		creds = append(creds, vcs.Credential{
			Kind:       vcs.SSHKeyCredential,
			Username:   user,
			PrivateKey: priv,
			PublicKey:  priv + ".pub",
		})
	}
	return creds
}

func isReadable(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	f.Close()
	return true
}
