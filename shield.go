package csp

import "context"

type shieldConfig struct {
	silent bool
}

// ShieldOption configures a shield built by [ShieldFromClose],
// [ShieldFromRead] or [ShieldFromWrite].
type ShieldOption func(*shieldConfig)

// Silent makes the shield's blocked operations do nothing and return false
// or the zero value, instead of panicking.
func Silent() ShieldOption {
	return func(c *shieldConfig) {
		c.silent = true
	}
}

func newShieldConfig(opts []ShieldOption) shieldConfig {
	var cfg shieldConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// prohibit panics with a [*ProhibitedOperationError] naming op unless the
// shield is silent.
func (c shieldConfig) prohibit(op string) {
	if !c.silent {
		panic(&ProhibitedOperationError{Op: op})
	}
}

// closeShield hides Close, so the holder can use the channel but not end it.
type closeShield[T any] struct {
	Chan[T]
	cfg shieldConfig
}

// ShieldFromClose wraps ch so that Close is blocked. Everything else is
// passed through to ch.
func ShieldFromClose[T any](ch Chan[T], opts ...ShieldOption) Chan[T] {
	return &closeShield[T]{Chan: ch, cfg: newShieldConfig(opts)}
}

func (s *closeShield[T]) Close() {
	s.cfg.prohibit("close")
}

// readShield hides every way of consuming items.
type readShield[T any] struct {
	Chan[T]
	cfg shieldConfig
}

// ShieldFromRead wraps ch so that Item, Poll and Take are blocked, leaving
// a write-only channel.
func ShieldFromRead[T any](ch Chan[T], opts ...ShieldOption) Chan[T] {
	return &readShield[T]{Chan: ch, cfg: newShieldConfig(opts)}
}

func (s *readShield[T]) Item(context.Context) bool {
	s.cfg.prohibit("item")
	return false
}

func (s *readShield[T]) Poll() (T, bool) {
	s.cfg.prohibit("poll")
	var zero T
	return zero, false
}

func (s *readShield[T]) Take(context.Context) (T, bool) {
	s.cfg.prohibit("take")
	var zero T
	return zero, false
}

// writeShield hides every way of adding items.
type writeShield[T any] struct {
	Chan[T]
	cfg shieldConfig
}

// ShieldFromWrite wraps ch so that Capacity, Offer and Put are blocked,
// leaving a read-only channel.
func ShieldFromWrite[T any](ch Chan[T], opts ...ShieldOption) Chan[T] {
	return &writeShield[T]{Chan: ch, cfg: newShieldConfig(opts)}
}

func (s *writeShield[T]) Capacity(context.Context) bool {
	s.cfg.prohibit("capacity")
	return false
}

func (s *writeShield[T]) Offer(T) bool {
	s.cfg.prohibit("offer")
	return false
}

func (s *writeShield[T]) Put(context.Context, T) bool {
	s.cfg.prohibit("put")
	return false
}
