package resilience

import (
	"time"

	"github.com/sells-group/retreat-leads/internal/config"
)

// FromConfig builds a Backoff from the retry section, keeping defaults for
// unset values.
func FromConfig(c config.RetryConfig) Backoff {
	b := DefaultBackoff()
	if c.MaxAttempts > 0 {
		b.MaxAttempts = c.MaxAttempts
	}
	if c.InitialBackoff > 0 {
		b.Initial = time.Duration(c.InitialBackoff) * time.Millisecond
	}
	if c.MaxBackoff > 0 {
		b.Max = time.Duration(c.MaxBackoff) * time.Millisecond
	}
	if c.Multiplier > 0 {
		b.Multiplier = c.Multiplier
	}
	if c.JitterFraction >= 0 {
		b.Jitter = c.JitterFraction
	}
	return b
}
