// Package credentials derives login credentials for newly accepted members.
package credentials

import (
	"math/rand"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// randInt is swappable in tests to pin the disambiguation suffix.
var randInt = rand.Intn

// DeriveHandle builds a login handle from a person's full name: the first
// letter of every word except the last, then the last word in full, all
// lower-cased. A single-word name is used whole. When taken reports the
// base handle as in use, a random suffix in [0,999] is appended once; the
// suffixed handle is not re-checked here, so callers persisting it should
// back the write with a uniqueness constraint.
func DeriveHandle(fullName string, taken func(string) bool) string {
	words := strings.Fields(fullName)
	var handle string
	switch len(words) {
	case 0:
		handle = ""
	case 1:
		handle = strings.ToLower(words[0])
	default:
		var b strings.Builder
		for _, w := range words[:len(words)-1] {
			for _, r := range w {
				b.WriteRune(r)
				break
			}
		}
		b.WriteString(words[len(words)-1])
		handle = strings.ToLower(b.String())
	}
	if handle != "" && taken != nil && taken(handle) {
		handle += strconv.Itoa(randInt(1000))
	}
	return handle
}

// DerivePassword returns the initial plaintext password for a member: the
// first 8 characters of the seed (the person's stable identifier). The
// plaintext must be hashed before storage and is disclosed exactly once,
// in the acceptance notification.
func DerivePassword(seed string) string {
	if len(seed) > 8 {
		return seed[:8]
	}
	return seed
}

// Hash runs the plaintext through bcrypt with the default cost.
func Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify reports whether plain matches the stored bcrypt hash.
func Verify(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
