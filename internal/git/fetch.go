package git

import (
	"context"
	"errors"
	"fmt"

	git2go "github.com/libgit2/git2go/v31"

	"github.com/raphi011/gitls/internal/vcs"
)

// Fetch fetches remote with its configured refspecs.
func (r *Repo) Fetch(ctx context.Context, remote string, creds vcs.CredentialProvider) error {
	rm, err := r.repo.Remotes.Lookup(remote)
	if git2go.IsErrorCode(err, git2go.ErrorCodeNotFound) || git2go.IsErrorCode(err, git2go.ErrorCodeInvalidSpec) {
		return fmt.Errorf("%s: %w", remote, vcs.ErrRemoteNotFound)
	}
	if err != nil {
		return fmt.Errorf("lookup remote %s: %w", remote, err)
	}
	defer rm.Free()

	// credErr keeps the provider's refusal; libgit2 reports its own error.
	var credErr error
	opts := &git2go.FetchOptions{
		RemoteCallbacks: git2go.RemoteCallbacks{
			CredentialsCallback: func(url, usernameFromURL string, allowed git2go.CredentialType) (*git2go.Credential, error) {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				cred, err := credential(creds, url, usernameFromURL, allowed)
				if err != nil {
					credErr = err
				}
				return cred, err
			},
			TransferProgressCallback: func(git2go.TransferProgress) error {
				return ctx.Err()
			},
			SidebandProgressCallback: func(string) error {
				return ctx.Err()
			},
		},
	}

	if err := rm.Fetch(nil, opts, ""); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("fetch %s: %w", remote, ctxErr)
		}
		if credErr != nil {
			return fmt.Errorf("fetch %s: %w", remote, credErr)
		}
		return fmt.Errorf("fetch %s: %w", remote, err)
	}
	return nil
}

// credential translates a libgit2 credential request into a provider call
// and the provider's answer back into a libgit2 credential.
func credential(creds vcs.CredentialProvider, url, usernameFromURL string, allowed git2go.CredentialType) (*git2go.Credential, error) {
	if creds == nil {
		return nil, vcs.ErrAuthExhausted
	}

	c, err := creds.Credential(credentialRequest(url, usernameFromURL, allowed))
	if err != nil {
		return nil, err
	}

	switch c.Kind {
	case vcs.UsernameCredential:
		return git2go.NewCredentialUsername(c.Username)
	case vcs.SSHAgentCredential:
		return git2go.NewCredentialSSHKeyFromAgent(c.Username)
	case vcs.SSHKeyCredential:
		return git2go.NewCredentialSSHKey(c.Username, c.PublicKey, c.PrivateKey, "")
	default:
		return nil, errors.New("unsupported credential kind " + c.Kind.String())
	}
}

func credentialRequest(url, usernameFromURL string, allowed git2go.CredentialType) vcs.CredentialRequest {
	return vcs.CredentialRequest{
		URL:             url,
		UsernameFromURL: usernameFromURL,
		AllowUsername:   allowed&git2go.CredentialTypeUsername != 0,
		AllowSSHKey:     allowed&git2go.CredentialTypeSSHKey != 0,
	}
}
