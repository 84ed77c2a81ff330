package vcs

// CredentialKind is the form of credential handed back to the backend.
type CredentialKind int

const (
	// UsernameCredential answers a request for just a user name.
	UsernameCredential CredentialKind = iota
	// SSHAgentCredential asks the backend to use the running ssh-agent.
	SSHAgentCredential
	// SSHKeyCredential points at a key pair on disk.
	SSHKeyCredential
)

func (k CredentialKind) String() string {
	switch k {
	case UsernameCredential:
		return "username"
	case SSHAgentCredential:
		return "ssh-agent"
	case SSHKeyCredential:
		return "ssh-key"
	default:
		return "unknown"
	}
}

// CredentialRequest is what the backend knows when a remote asks for
// authentication.
type CredentialRequest struct {
	URL string
	// UsernameFromURL is the user embedded in the remote URL, if any.
	UsernameFromURL string
	// AllowUsername is set when the transport only wants a user name.
	AllowUsername bool
	// AllowSSHKey is set when the transport accepts an SSH key.
	AllowSSHKey bool
}

// Credential is the answer to a CredentialRequest.
type Credential struct {
	Kind       CredentialKind
	Username   string
	PublicKey  string
	PrivateKey string
}

// CredentialProvider resolves credentials during a single fetch. It returns
// ErrAuthExhausted once it refuses to answer further requests.
type CredentialProvider interface {
	Credential(req CredentialRequest) (Credential, error)
}
