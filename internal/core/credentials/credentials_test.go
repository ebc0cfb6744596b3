package credentials

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func neverTaken(string) bool { return false }

func TestDeriveHandle(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Budi Santoso", "bsantoso"},
		{"Sri", "sri"},
		{"Agus Dwi Prasetyo", "adprasetyo"},
		{"  Budi   Santoso  ", "bsantoso"},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DeriveHandle(c.name, neverTaken), "DeriveHandle(%q)", c.name)
	}
}

func TestDeriveHandleCollisionSuffix(t *testing.T) {
	old := randInt
	randInt = func(n int) int { return 42 }
	defer func() { randInt = old }()

	got := DeriveHandle("Budi Santoso", func(h string) bool { return h == "bsantoso" })
	assert.Equal(t, "bsantoso42", got)
}

func TestDeriveHandleNilPredicate(t *testing.T) {
	assert.Equal(t, "bsantoso", DeriveHandle("Budi Santoso", nil))
}

func TestDerivePassword(t *testing.T) {
	assert.Equal(t, "0b51a4f9", DerivePassword("0b51a4f9-8a94-4a91-9f2b-000000000000"))
	assert.Equal(t, "abc", DerivePassword("abc"))
}

func TestHashAndVerify(t *testing.T) {
	h, err := Hash("0b51a4f9")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(h, "$2"), "expected a bcrypt hash, got %q", h)
	assert.True(t, Verify(h, "0b51a4f9"))
	assert.False(t, Verify(h, "wrong"))
}
