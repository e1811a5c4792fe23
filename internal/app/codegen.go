package app

import (
	"crypto/rand"
	"math/big"
)

// CodeAlphabet is the alphabet room codes are drawn from.
const CodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeGenerator returns a candidate room code. Uniqueness is enforced by the registry.
type CodeGenerator func() string

// RandomCode draws codeLen characters uniformly from CodeAlphabet.
func RandomCode() string {
	max := big.NewInt(int64(len(CodeAlphabet)))
	code := make([]byte, codeLen)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic(err)
		}
		code[i] = CodeAlphabet[n.Int64()]
	}
	return string(code)
}
