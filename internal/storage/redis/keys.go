package redis

import (
	"fmt"

	"github.com/mcoot/chesspie/internal/model"
)

// Key prefix for all chesspie data
const keyPrefix = "chesspie"

// gameKey returns the Redis key for a GameRecord
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// gamesIndexKey returns the Redis key for the SET of known game keys
func gamesIndexKey() string {
	return fmt.Sprintf("%s:idx:games", keyPrefix)
}

// piecesKey returns the Redis key for the HASH of piece definitions,
// keyed by model.PieceKey
func piecesKey() string {
	return fmt.Sprintf("%s:pieces", keyPrefix)
}
