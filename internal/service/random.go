package service

import "math/rand/v2"

// Random is the source of every chance-based decision of the engine.
type Random interface {
	IntN(n int) int
}

type defaultRandom struct{}

func NewRandom() Random {
	return defaultRandom{}
}

func (defaultRandom) IntN(n int) int {
	return rand.IntN(n) //nolint: gosec // game events, not secrets
}
