package givehub

import (
	"errors"
	"math"
	"time"

	"golang.org/x/time/rate"
)

// ReconnectPolicy controls how the notification channel re-establishes a
// dropped connection.
//
// Delays grow exponentially from InitialDelay by Multiplier and are capped at
// MaxDelay. MaxAttempts bounds the number of consecutive failed attempts
// (0 means unlimited). AttemptsPerMinute caps the attempt rate regardless of
// the computed delay (0 disables the cap).
type ReconnectPolicy struct {
	InitialDelay      time.Duration
	MaxDelay          time.Duration
	Multiplier        float64
	MaxAttempts       int
	AttemptsPerMinute int
}

func DefaultReconnectPolicy() ReconnectPolicy {
	return ReconnectPolicy{
		InitialDelay:      500 * time.Millisecond,
		MaxDelay:          30 * time.Second,
		Multiplier:        2,
		MaxAttempts:       0,
		AttemptsPerMinute: 30,
	}
}

func (p ReconnectPolicy) Validate() error {
	if p.InitialDelay <= 0 {
		return errors.New("initial delay must be positive")
	}

	if p.MaxDelay < p.InitialDelay {
		return errors.New("max delay must be greater than or equal to initial delay")
	}

	if p.Multiplier < 1 {
		return errors.New("multiplier must be at least 1")
	}

	if p.MaxAttempts < 0 {
		return errors.New("max attempts must be non-negative")
	}

	if p.AttemptsPerMinute < 0 {
		return errors.New("attempts per minute must be non-negative")
	}

	return nil
}

// Delay returns the wait before the given 1-based attempt.
func (p ReconnectPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	d := float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if d > float64(p.MaxDelay) || math.IsInf(d, 0) || math.IsNaN(d) {
		return p.MaxDelay
	}

	return time.Duration(d)
}

// Exhausted reports whether attempt exceeds MaxAttempts.
func (p ReconnectPolicy) Exhausted(attempt int) bool {
	return p.MaxAttempts > 0 && attempt > p.MaxAttempts
}

func (p ReconnectPolicy) limiter() *rate.Limiter {
	if p.AttemptsPerMinute == 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}

	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(p.AttemptsPerMinute)), p.AttemptsPerMinute)
}
