package app

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomCodeShape(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		code := RandomCode()
		assert.Len(t, code, codeLen)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(CodeAlphabet, r), "unexpected rune %q", r)
		}
		_, err := ValidateCode(code)
		assert.NoError(t, err)
		seen[code] = struct{}{}
	}
	// 36^6 possible codes: 200 draws colliding more than once is practically impossible
	assert.GreaterOrEqual(t, len(seen), 199)
}
