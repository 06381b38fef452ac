package shortener_test

import (
	"strings"
	"testing"

	"github.com/serroba/shortlink/internal/shortener"
	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	t.Run("matches reference vectors", func(t *testing.T) {
		assert.Equal(t, "6JvlOnj0", shortener.Generate("https://example.com", "", 8))
		assert.Equal(t, "6Xldem53", shortener.Generate("https://example.com", "example", 8))
	})

	t.Run("matches reference vectors at max length", func(t *testing.T) {
		assert.Equal(t, "6JvlOnj0zwzEkoet", shortener.Generate("https://example.com", "", 16))
		assert.Equal(t, "6Xldem53PpadFu7K", shortener.Generate("https://example.com", "example", 16))
	})

	t.Run("is deterministic", func(t *testing.T) {
		first := shortener.Generate("https://example.com/some/path", "", 8)

		for range 10 {
			assert.Equal(t, first, shortener.Generate("https://example.com/some/path", "", 8))
		}
	})

	t.Run("different salts change the code", func(t *testing.T) {
		a := shortener.Generate("https://example.com", "salt-a", 8)
		b := shortener.Generate("https://example.com", "salt-b", 8)

		assert.NotEqual(t, a, b)
	})

	t.Run("output length equals requested length", func(t *testing.T) {
		for length := shortener.MinCodeLength; length <= shortener.MaxCodeLength; length++ {
			code := shortener.Generate("https://example.com", "", length)

			assert.Len(t, code, length)
			assert.True(t, shortener.ValidCode(code), "code %q", code)
		}
	})

	t.Run("shorter codes are prefixes of longer ones", func(t *testing.T) {
		full := shortener.Generate("https://example.com", "", 16)

		for length := 1; length < 16; length++ {
			assert.True(t, strings.HasPrefix(full, shortener.Generate("https://example.com", "", length)))
		}
	})

	t.Run("clamps length", func(t *testing.T) {
		assert.Len(t, shortener.Generate("https://example.com", "", 0), 1)
		assert.Len(t, shortener.Generate("https://example.com", "", -3), 1)
		assert.Len(t, shortener.Generate("https://example.com", "", 40), 16)
	})
}

func TestValidCode(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		valid bool
	}{
		{name: "alphanumeric", code: "6JvlOnj0", valid: true},
		{name: "single character", code: "a", valid: true},
		{name: "max length", code: "6JvlOnj0zwzEkoet", valid: true},
		{name: "empty", code: "", valid: false},
		{name: "too long", code: "6JvlOnj0zwzEkoetX", valid: false},
		{name: "dash", code: "abc-def", valid: false},
		{name: "path traversal", code: "..", valid: false},
		{name: "unicode", code: "héllo", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, shortener.ValidCode(tt.code))
		})
	}
}
