package providers

import "time"

// ClockInterface supplies "now" so scheduled computation stays testable.
type ClockInterface interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func NewClock() ClockInterface {
	return systemClock{}
}
