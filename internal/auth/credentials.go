package auth

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/sachin-security/sachin-security-sub000/internal/model"
)

// CredentialStore is the fixed list of admin identities loaded at start-up.
type CredentialStore struct {
	identities []model.Identity
}

// NewCredentialStore copies identities into a new store.
func NewCredentialStore(identities []model.Identity) *CredentialStore {
	return &CredentialStore{identities: append([]model.Identity(nil), identities...)}
}

// Authenticate returns the identity matching userID and password.
// Unknown users and wrong passwords are indistinguishable to the caller.
func (s *CredentialStore) Authenticate(userID, password string) (model.Identity, bool) {
	for _, id := range s.identities {
		if id.UserID != userID {
			continue
		}
		if passwordMatches(id.Password, password) {
			return id, true
		}
		return model.Identity{}, false
	}
	return model.Identity{}, false
}

func passwordMatches(stored, given string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}
