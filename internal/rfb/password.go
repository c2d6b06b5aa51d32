package rfb

import "os"

// PasswordSource supplies the VNC password bytes used in DES
// challenge-response authentication. The core never prompts a user
// itself: spec.md §1 scopes the prompting UI out as a pluggable
// collaborator, here expressed as this narrow interface.
type PasswordSource interface {
	Password() ([]byte, error)
}

// StaticPassword is a PasswordSource holding an already-known password,
// e.g. cached from a previous successful handshake.
type StaticPassword []byte

// Password returns the cached bytes.
func (p StaticPassword) Password() ([]byte, error) {
	return []byte(p), nil
}

// FilePassword reads an obfuscated password blob (as written by
// vncpasswd-compatible tools) from disk and decodes it on demand.
type FilePassword struct {
	Path string
}

// Password reads and decodes the stored password file.
func (p FilePassword) Password() ([]byte, error) {
	blob, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, err
	}
	return DecodeStoredPassword(blob)
}

// PromptPassword calls a user-supplied callback to obtain the password,
// e.g. wired to a GUI dialog by an integrator. The callback is invoked
// at most once per handshake.
type PromptPassword func() ([]byte, error)

// Password invokes the prompt callback.
func (p PromptPassword) Password() ([]byte, error) {
	return p()
}
