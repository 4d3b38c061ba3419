package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost matches the work factor the service ships with
const DefaultCost = 10

// Hasher hashes and verifies passwords with bcrypt at a fixed cost
type Hasher struct {
	cost  int
	dummy []byte
}

// NewHasher creates a hasher with the given bcrypt cost
func NewHasher(cost int) (*Hasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range", cost)
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("worqhub-timing-equaliser"), cost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &Hasher{cost: cost, dummy: dummy}, nil
}

// Hash returns a salted one-way hash of the password
func (h *Hasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// Verify reports whether password matches hash
func (h *Hasher) Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Burn runs a comparison against a dummy hash so that a login for an unknown
// email costs the same as one with a wrong password.
func (h *Hasher) Burn(password string) {
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
}
