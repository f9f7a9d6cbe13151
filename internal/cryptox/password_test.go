package cryptox

import (
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testParams = Params{MemoryKB: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 16}

func newTestHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := NewHasher(testParams)
	require.NoError(t, err)
	return h
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestHasher_RoundTrip(t *testing.T) {
	h := newTestHasher(t)

	for _, pw := range []string{"secret123", "", "пароль-с-юникодом", strings.Repeat("x", 1024)} {
		encoded, err := h.Hash(pw)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=8192,t=1,p=1$"), encoded)
		assert.True(t, h.Verify(pw, encoded), "verify(%q, hash(%q))", pw, pw)
	}
}

func TestHasher_Mismatch(t *testing.T) {
	h := newTestHasher(t)

	encoded, err := h.Hash("secret123")
	require.NoError(t, err)

	assert.False(t, h.Verify("secret124", encoded))
	assert.False(t, h.Verify("Secret123", encoded))
	assert.False(t, h.Verify("", encoded))
}

func TestHasher_SaltedOutput(t *testing.T) {
	h := newTestHasher(t)

	a, err := h.Hash("secret123")
	require.NoError(t, err)
	b, err := h.Hash("secret123")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("secret123", a))
	assert.True(t, h.Verify("secret123", b))
}

func TestHasher_VerifyUsesEmbeddedParams(t *testing.T) {
	strong, err := NewHasher(Params{MemoryKB: 16 * 1024, Time: 2, Parallelism: 2, SaltLength: 16, KeyLength: 32})
	require.NoError(t, err)
	weak := newTestHasher(t)

	encoded, err := strong.Hash("secret123")
	require.NoError(t, err)

	assert.True(t, weak.Verify("secret123", encoded))
}

func TestHasher_MalformedHash(t *testing.T) {
	h := newTestHasher(t)

	tests := []struct {
		name    string
		encoded string
	}{
		{name: "empty", encoded: ""},
		{name: "bcrypt", encoded: "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"},
		{name: "wrong version", encoded: "$argon2id$v=16$m=8192,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5aw"},
		{name: "weak memory", encoded: "$argon2id$v=19$m=8,t=1,p=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5aw"},
		{name: "bad salt", encoded: "$argon2id$v=19$m=8192,t=1,p=1$!!!$a2V5a2V5a2V5a2V5a2V5aw"},
		{name: "unknown param", encoded: "$argon2id$v=19$m=8192,t=1,x=1$c2FsdHNhbHRzYWx0c2FsdA$a2V5a2V5a2V5a2V5a2V5aw"},
		{name: "plaintext", encoded: "secret123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, h.Verify("secret123", tt.encoded))
			})
		})
	}
}

func TestHasher_EntropyFailure(t *testing.T) {
	h := &Hasher{params: testParams, rand: failingReader{}}

	_, err := h.Hash("secret123")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrHash))
	assert.Equal(t, "internal error", err.Error())
}

func TestHasher_VerifyDummy(t *testing.T) {
	h := newTestHasher(t)
	require.NotEmpty(t, h.dummy)
	assert.NotPanics(t, func() { h.VerifyDummy("anything") })
}

func TestNewHasher_RejectsWeakParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *Params)
	}{
		{name: "memory", mutate: func(p *Params) { p.MemoryKB = 1024 }},
		{name: "time", mutate: func(p *Params) { p.Time = 0 }},
		{name: "parallelism", mutate: func(p *Params) { p.Parallelism = 0 }},
		{name: "salt", mutate: func(p *Params) { p.SaltLength = 8 }},
		{name: "key", mutate: func(p *Params) { p.KeyLength = 4 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams
			tt.mutate(&p)
			_, err := NewHasher(p)
			assert.Error(t, err)
		})
	}
}

func TestDefaultParams_Valid(t *testing.T) {
	assert.NoError(t, DefaultParams().validate())
}
