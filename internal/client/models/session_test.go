package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAndSplitToken(t *testing.T) {
	f := FormatToken("abc.def", "bearer")
	assert.Equal(t, "bearer abc.def", f)

	typ, tok, ok := SplitToken(f)
	assert.True(t, ok)
	assert.Equal(t, "bearer", typ)
	assert.Equal(t, "abc.def", tok)

	_, _, ok = SplitToken("abc")
	assert.False(t, ok)
	_, _, ok = SplitToken(" abc")
	assert.False(t, ok)
}

func TestSession_IsAuthenticated(t *testing.T) {
	assert.False(t, Session{}.IsAuthenticated())
	assert.False(t, Session{Token: "bearer t"}.IsAuthenticated(), "token alone is not a login")
	assert.True(t, Session{User: &User{Email: "a@b.com"}}.IsAuthenticated())
}
