package password

import (
	"fmt"
	"strings"

	domain "github.com/Miraines/MindHaven/auth-service/internal/domain/auth/password"
	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

const (
	KindBcrypt   = "bcrypt"
	KindArgon2id = "argon2id"

	// DefaultBcryptCost matches the cost the existing user base was hashed with.
	DefaultBcryptCost = 10

	// MaxBcryptBytes is the longest input bcrypt accepts.
	MaxBcryptBytes = 72
)

var argonParams = &argon2id.Params{
	Memory:      64 * 1024, // 64 MiB
	Iterations:  2,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

type bcryptHasher struct {
	cost int
}

func NewBcrypt(cost int) domain.Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return bcryptHasher{cost: cost}
}

func (b bcryptHasher) Hash(plaintext string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), b.cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b bcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

type argonHasher struct {
	params *argon2id.Params
}

func NewArgon2id(params *argon2id.Params) domain.Hasher {
	if params == nil {
		params = argonParams
	}
	return argonHasher{params: params}
}

func (a argonHasher) Hash(plaintext string) (string, error) {
	return argon2id.CreateHash(plaintext, a.params)
}

func (a argonHasher) Verify(plaintext, hash string) bool {
	ok, err := argon2id.ComparePasswordAndHash(plaintext, hash)
	return err == nil && ok
}

// multiHasher hashes with the configured algorithm and verifies any hash
// format it knows, so switching PASSWORD_HASHER does not lock out accounts
// hashed under the previous setting.
type multiHasher struct {
	primary domain.Hasher
	bcrypt  domain.Hasher
	argon   domain.Hasher
}

func New(kind string, bcryptCost int) (domain.Hasher, error) {
	m := multiHasher{
		bcrypt: NewBcrypt(bcryptCost),
		argon:  NewArgon2id(nil),
	}
	switch kind {
	case "", KindBcrypt:
		m.primary = m.bcrypt
	case KindArgon2id:
		m.primary = m.argon
	default:
		return nil, fmt.Errorf("unknown password hasher %q", kind)
	}
	return m, nil
}

func (m multiHasher) Hash(plaintext string) (string, error) {
	return m.primary.Hash(plaintext)
}

func (m multiHasher) Verify(plaintext, hash string) bool {
	if strings.HasPrefix(hash, "$argon2id$") {
		return m.argon.Verify(plaintext, hash)
	}
	return m.bcrypt.Verify(plaintext, hash)
}
