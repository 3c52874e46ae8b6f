package table

import "errors"

var (
	ErrTableNotFound     = errors.New("table not found")
	ErrNotPlaying        = errors.New("no round in play")
	ErrRoundInProgress   = errors.New("round already in play")
	ErrEmptySelection    = errors.New("select at least one card")
	ErrCardNotFound      = errors.New("card not in hand")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
)
