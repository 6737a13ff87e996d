package service

import "time"

// Clock is threaded into services instead of calling time.Now directly so
// issuance timestamps and certificate numbers are deterministic in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func NewSystemClock() Clock {
	return systemClock{}
}
