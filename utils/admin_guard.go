package utils

import (
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// AdminGuard decides whether a presented admin credential matches the
// configured secret. A guard with no secret denies everything.
type AdminGuard struct {
	digest [sha256.Size]byte
	hash   []byte
	ok     bool
}

// NewAdminGuard builds a guard from a plaintext secret or, when hash is
// set, from a bcrypt hash of it.
func NewAdminGuard(secret, hash string) *AdminGuard {
	g := &AdminGuard{}
	switch {
	case hash != "":
		g.hash = []byte(hash)
		g.ok = true
	case secret != "":
		g.digest = sha256.Sum256([]byte(secret))
		g.ok = true
	}
	return g
}

func (g *AdminGuard) Configured() bool {
	return g != nil && g.ok
}

// Check compares fixed-size digests so the time taken does not depend on
// how many bytes of the presented value match or on either length.
func (g *AdminGuard) Check(presented string) bool {
	if !g.Configured() || presented == "" {
		return false
	}
	if g.hash != nil {
		return bcrypt.CompareHashAndPassword(g.hash, []byte(presented)) == nil
	}
	got := sha256.Sum256([]byte(presented))
	return subtle.ConstantTimeCompare(got[:], g.digest[:]) == 1
}
