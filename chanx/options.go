package chanx

import (
	"time"

	"github.com/baxromumarov/csp"
	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

type config struct {
	size     int
	overflow csp.Overflow
	logger   *logiface.Logger[logiface.Event]
	dropRate map[time.Duration]int
}

// Option configures a combinator.
type Option func(*config)

// defaultDropRate bounds how often a [Multiple] or [Publication] reports
// dropped items, per reason.
var defaultDropRate = map[time.Duration]int{
	time.Second: 5,
	time.Minute: 60,
}

func newConfig(opts []Option) config {
	cfg := config{
		size:     1,
		overflow: csp.Block,
		dropRate: defaultDropRate,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithSize sets the buffer size of the channels a combinator creates.
// It panics if n < 1.
func WithSize(n int) Option {
	if n < 1 {
		panic("chanx: WithSize requires n > 0")
	}
	return func(c *config) {
		c.size = n
	}
}

// WithBuffer sets the overflow policy of the channels a combinator creates.
func WithBuffer(o csp.Overflow) Option {
	return func(c *config) {
		c.overflow = o
	}
}

// WithLogger sets the logger, overriding [csp.Logger].
func WithLogger(l *logiface.Logger[logiface.Event]) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithDropLogRate sets the windows limiting drop reports, in the form
// accepted by [catrate.NewLimiter]. A nil map disables the limit.
func WithDropLogRate(rates map[time.Duration]int) Option {
	return func(c *config) {
		c.dropRate = rates
	}
}

func (c config) log() *logiface.Logger[logiface.Event] {
	if c.logger != nil {
		return c.logger
	}
	return csp.Logger()
}

func (c config) limiter() *catrate.Limiter {
	if len(c.dropRate) == 0 {
		return nil
	}
	return catrate.NewLimiter(c.dropRate)
}

// newChannel creates an output channel as configured.
func newChannel[T any](c config) *csp.Channel[T] {
	switch c.overflow {
	case csp.Drop:
		return csp.NewChannelWithBuffer(csp.NewDroppingBuffer[T](c.size))
	case csp.Slide:
		return csp.NewChannelWithBuffer(csp.NewSlidingBuffer[T](c.size))
	default:
		return csp.NewChannel[T](c.size)
	}
}
