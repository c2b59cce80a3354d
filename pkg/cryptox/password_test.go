package cryptox

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSHA256HashIsDeterministic(t *testing.T) {
	t.Parallel()
	h := Hasher{Scheme: SchemeSHA256}

	first, err := h.Hash("Secret123")
	require.NoError(t, err)
	second, err := h.Hash("Secret123")
	require.NoError(t, err)
	require.Equal(t, first, second)

	// 32 bytes hex encoded.
	require.Len(t, first, 64)
}

func TestSHA256EmptyStringHasFixedDigest(t *testing.T) {
	t.Parallel()
	h := Hasher{}

	digest, err := h.Hash("")
	require.NoError(t, err)
	require.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", digest)
}

func TestVerifySHA256(t *testing.T) {
	t.Parallel()
	h := Hasher{}

	tests := []struct {
		name     string
		password string
	}{
		{"simple", "password123"},
		{"symbols", "P@ssw0rd!#$%"},
		{"long", strings.Repeat("a", 100)},
		{"empty", ""},
		{"unicode", "пароль密码"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digest, err := h.Hash(tt.password)
			require.NoError(t, err)
			require.True(t, h.Verify(tt.password, digest))
			require.False(t, h.Verify(tt.password+"x", digest))
		})
	}
}

func TestArgon2idRoundTrip(t *testing.T) {
	t.Parallel()
	h := Hasher{Scheme: SchemeArgon2id}

	digest, err := h.Hash("Secret123")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(digest, "$argon2id$v=19$"))

	require.True(t, h.Verify("Secret123", digest))
	require.False(t, h.Verify("wrong", digest))

	// Salted: two hashes of the same input differ.
	other, err := h.Hash("Secret123")
	require.NoError(t, err)
	require.NotEqual(t, digest, other)
}

func TestVerifyDetectsSchemeFromDigest(t *testing.T) {
	t.Parallel()

	// A hasher configured for sha256 still verifies argon2id digests, so a
	// scheme switch does not invalidate previously stored credentials.
	argonDigest, err := Hasher{Scheme: SchemeArgon2id}.Hash("Secret123")
	require.NoError(t, err)

	legacy := Hasher{Scheme: SchemeSHA256}
	require.True(t, legacy.Verify("Secret123", argonDigest))
	require.False(t, legacy.Verify("wrong", argonDigest))
}

func TestVerifyRejectsMalformedArgonDigest(t *testing.T) {
	t.Parallel()
	h := Hasher{}

	require.False(t, h.Verify("x", "$argon2id$v=19$garbage"))
	require.False(t, h.Verify("x", "$argon2id$v=19$m=1,t=1,p=1$!!!$!!!"))
}
