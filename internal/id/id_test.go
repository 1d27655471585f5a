package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for range count {
		v, err := Generate(PrefixReadingSession)
		require.NoError(t, err)
		assert.False(t, ids[v], "ID should be unique: %s", v)
		ids[v] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	prefixes := []string{PrefixUser, PrefixCategory, PrefixBook, PrefixReadingSession, PrefixNote}

	for _, prefix := range prefixes {
		t.Run(prefix, func(t *testing.T) {
			v, err := Generate(prefix)
			require.NoError(t, err)

			require.True(t, strings.HasPrefix(v, prefix+"-"))

			// NanoID default is 21 characters.
			nanoidPart := strings.TrimPrefix(v, prefix+"-")
			assert.Len(t, nanoidPart, 21)

			for _, c := range nanoidPart {
				ok := (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') ||
					(c >= '0' && c <= '9') || c == '_' || c == '-'
				assert.True(t, ok, "invalid character %q in %s", c, v)
			}
		})
	}
}
