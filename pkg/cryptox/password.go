package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Scheme selects how passwords are hashed.
type Scheme string

const (
	// SchemeSHA256 is the deterministic unsalted SHA-256 hex digest the
	// mobile backend has always stored. Kept as the default so existing
	// credential records keep verifying.
	SchemeSHA256 Scheme = "sha256"

	// SchemeArgon2id emits salted PHC-format argon2id hashes. Opt-in via
	// configuration; verification auto-detects either format, so a
	// deployment can switch schemes without migrating stored digests.
	SchemeArgon2id Scheme = "argon2id"
)

// Argon2id parameters, applied only under SchemeArgon2id.
const (
	argonMemory      = 19 * 1024 // KiB
	argonIterations  = 2
	argonParallelism = 1
	argonKeyLength   = 32
	argonSaltLength  = 16
)

const argonPrefix = "$argon2id$"

// Hasher hashes and verifies passwords under a configured scheme.
type Hasher struct {
	Scheme Scheme
}

// Hash digests a plaintext password. Under the default scheme the result is
// deterministic: the same input always yields the same digest, and the empty
// string hashes to the fixed digest of "".
func (h Hasher) Hash(password string) (string, error) {
	switch h.Scheme {
	case SchemeArgon2id:
		return hashArgon2id(password)
	default:
		sum := sha256.Sum256([]byte(password))
		return hex.EncodeToString(sum[:]), nil
	}
}

// Verify reports whether password matches the stored digest, detecting the
// digest's scheme from its shape.
func (h Hasher) Verify(password, digest string) bool {
	if strings.HasPrefix(digest, argonPrefix) {
		return verifyArgon2id(password, digest) == nil
	}
	sum := sha256.Sum256([]byte(password))
	computed := hex.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}

func hashArgon2id(password string) (string, error) {
	salt := make([]byte, argonSaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, argonIterations, argonMemory, argonParallelism, argonKeyLength)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		argonMemory,
		argonIterations,
		argonParallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func verifyArgon2id(password, encoded string) error {
	parts := strings.Split(encoded, "$")
	// ["", "argon2id", "v=19", "m=X,t=Y,p=Z", salt, hash]
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != "v=19" {
		return errors.New("cryptox: malformed argon2id hash")
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return fmt.Errorf("cryptox: bad argon2id parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("cryptox: bad argon2id salt: %w", err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("cryptox: bad argon2id hash: %w", err)
	}

	got := argon2.IDKey([]byte(password), salt, iters, mem, par, uint32(len(want)))
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return errors.New("cryptox: password does not match")
	}
	return nil
}
