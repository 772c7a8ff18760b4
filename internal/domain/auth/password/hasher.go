package password

// Hasher produces self-describing salted hashes. Verify reports false for a
// mismatch and for a hash it cannot parse.
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}
