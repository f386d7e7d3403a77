package db

import "errors"

// Business-rule sentinels. Handlers match these with errors.Is to
// tell a rule violation (relay the message verbatim, no retry) from a
// storage failure (log, generic "try again later").
var (
	// ErrPlayerNotFound means the player row does not exist.
	ErrPlayerNotFound = errors.New("player not found")

	// ErrPromotionBlocked wraps every unmet promotion gate.
	ErrPromotionBlocked = errors.New("promotion requirements not met")

	// ErrHighestRank means there is no next bracket to promote into.
	ErrHighestRank = errors.New("already at highest rank")

	// ErrUnknownRank means an adminAdjust named a rank key that does
	// not exist in the ladder.
	ErrUnknownRank = errors.New("unknown rank key")
)
