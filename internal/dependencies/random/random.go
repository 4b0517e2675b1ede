package random

import (
	"crypto/rand"
	"math/big"

	"github.com/mcoot/chesspie/internal/model"
)

// GameIDAlphabet leaves out characters that are easy to misread (I, O, 0, 1)
const GameIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GameIDLength is the number of characters in a generated game ID
const GameIDLength = 12

// Random produces identifiers and can be replaced in tests
type Random interface {
	// String returns length characters drawn from alphabet
	String(length int, alphabet string) string
}

// GameID draws a new game identifier from r
func GameID(r Random) model.GameID {
	return model.GameID(r.String(GameIDLength, GameIDAlphabet))
}

// CryptoRandom draws from crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// String returns length characters drawn uniformly from alphabet
func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	n := big.NewInt(int64(len(alphabet)))
	result := make([]byte, length)
	for i := range result {
		idx, err := rand.Int(rand.Reader, n)
		if err != nil {
			// crypto/rand does not fail on supported platforms
			panic(err)
		}
		result[i] = alphabet[idx.Int64()]
	}
	return string(result)
}
