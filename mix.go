package csp

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/joeycumines/logiface"
)

// Flag keys understood by a [Mix].
const (
	// FlagPriority marks an input that keeps flowing under [PriorityMute]
	// and [PriorityPause].
	FlagPriority = "priority"

	// FlagMute makes the mix consume an input's items and discard them.
	FlagMute = "mute"

	// FlagPause makes the mix leave an input's items where they are.
	FlagPause = "pause"
)

// Flags is the flag set of one mix input, keyed by [FlagPriority],
// [FlagMute] and [FlagPause]. Missing keys are false.
type Flags map[string]bool

func (f Flags) validate() error {
	for k := range f {
		switch k {
		case FlagPriority, FlagMute, FlagPause:
		default:
			return fmt.Errorf("%w: %q", ErrUnknownFlag, k)
		}
	}
	return nil
}

// PriorityMode decides how the priority flag of mix inputs is applied.
type PriorityMode int

const (
	// PriorityOff ignores the priority flag: paused inputs are skipped,
	// muted inputs are drained and all others are forwarded.
	PriorityOff PriorityMode = iota

	// PriorityMute forwards priority inputs, whatever their other flags,
	// and drains every other input that is not paused.
	PriorityMute

	// PriorityPause forwards priority inputs and leaves all others alone.
	PriorityPause
)

func (p PriorityMode) String() string {
	switch p {
	case PriorityOff:
		return "off"
	case PriorityMute:
		return "mute"
	case PriorityPause:
		return "pause"
	default:
		return fmt.Sprintf("PriorityMode(%d)", int(p))
	}
}

func (p PriorityMode) valid() bool {
	return p >= PriorityOff && p <= PriorityPause
}

type mixConfig struct {
	mode   PriorityMode
	logger *logiface.Logger[logiface.Event]
}

// MixOption configures a [Mix].
type MixOption func(*mixConfig)

// WithPriorityMode sets the initial priority mode. It panics with
// [ErrInvalidPriorityMode] if mode is not a known value.
func WithPriorityMode(mode PriorityMode) MixOption {
	if !mode.valid() {
		panic(fmt.Errorf("%w: %v", ErrInvalidPriorityMode, mode))
	}
	return func(c *mixConfig) {
		c.mode = mode
	}
}

// WithMixLogger sets the logger for the mix, overriding the package logger.
func WithMixLogger(l *logiface.Logger[logiface.Event]) MixOption {
	return func(c *mixConfig) {
		c.logger = l
	}
}

// Mix routes items from any number of input channels into one output
// channel. Each input carries [Flags]; together with the [PriorityMode]
// they split the inputs into a forward set, whose items are moved to the
// output, and a drain set, whose items are consumed and discarded. Inputs
// in neither set are left untouched.
//
// Forward inputs are served round-robin, starting after the last input
// served. Every mutation interrupts both loops before they consume
// anything, so an input removed from the mix is never read afterwards.
//
// The mix is done once its output closes, or the context passed to
// [NewMix] ends. It then forgets every input and ignores further
// mutations. Inputs and output are shared, never owned: the mix closes
// none of them.
type Mix[T any] struct {
	out Chan[T]
	log *logiface.Logger[logiface.Event]
	sc  *Scope

	mu      sync.Mutex
	inputs  []Chan[T]
	flags   map[Chan[T]]Flags
	mode    PriorityMode
	done    bool
	forward []Chan[T]
	drain   []Chan[T]

	// Fired by every mutation, reset by the loop at the top of each pass.
	restartForward signal
	restartDrain   signal
}

// NewMix starts a mix writing to out. Its loops run until out closes or
// ctx ends; [Mix.Wait] waits for them.
func NewMix[T any](ctx context.Context, out Chan[T], opts ...MixOption) *Mix[T] {
	if out == nil {
		panic(fmt.Errorf("%w: mix requires an output channel", ErrInvalidArgument))
	}

	var cfg mixConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Mix[T]{
		out:            out,
		log:            resolveLogger(cfg.logger),
		flags:          make(map[Chan[T]]Flags),
		mode:           cfg.mode,
		restartForward: newSignal(),
		restartDrain:   newSignal(),
	}

	sc, sp := NewScope(ctx,
		WithLogger(m.log),
		WithOnStart(func(info TaskInfo) {
			m.log.Trace().
				Str("task", info.Name).
				Log("mix: loop started")
		}),
		WithOnDone(func(info TaskInfo, _ error, d time.Duration) {
			m.log.Debug().
				Str("task", info.Name).
				Dur("ran", d).
				Log("mix: loop exited")
		}),
	)
	m.sc = sc
	sp.Go("mix-forward", m.forwardLoop)
	sp.Go("mix-drain", m.drainLoop)

	m.log.Debug().
		Stringer("mode", cfg.mode).
		Log("mix: started")

	return m
}

// AddInput adds ch to the mix with no flags set. Adding a channel that is
// already an input clears its flags.
func (m *Mix[T]) AddInput(ch Chan[T]) {
	if !IsValue(ch) {
		panic(fmt.Errorf("%w: nil mix input", ErrInvalidArgument))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done {
		return
	}
	m.setLocked(ch, Flags{})
	m.recomputeLocked()
}

// RemoveInput removes ch from the mix. Items still on ch stay there.
func (m *Mix[T]) RemoveInput(ch Chan[T]) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done {
		return
	}
	if _, ok := m.flags[ch]; !ok {
		return
	}
	delete(m.flags, ch)
	m.inputs = slices.DeleteFunc(m.inputs, func(in Chan[T]) bool {
		return in == ch
	})
	m.recomputeLocked()
}

// RemoveAllInputs removes every input from the mix.
func (m *Mix[T]) RemoveAllInputs() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done {
		return
	}
	m.inputs = nil
	clear(m.flags)
	m.recomputeLocked()
}

// Toggle merges flags into inputs. args alternate between a channel and
// its [Flags] (a plain map[string]bool is accepted too): only the keys
// present are changed, and a channel that is not an input yet is added.
// Inputs not named keep their flags.
//
// Nothing is changed unless every argument is valid. The failures are
// [ErrNoArguments], [ErrOddArguments], [ErrNotChannel], [ErrNotFlags] and
// [ErrUnknownFlag], all wrapping [ErrInvalidArgument].
func (m *Mix[T]) Toggle(args ...any) error {
	if len(args) == 0 {
		return ErrNoArguments
	}
	if len(args)%2 != 0 {
		return fmt.Errorf("%w: got %d", ErrOddArguments, len(args))
	}

	type pair struct {
		ch    Chan[T]
		flags Flags
	}
	pairs := make([]pair, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		ch, ok := args[i].(Chan[T])
		if !ok || !IsValue(ch) {
			return fmt.Errorf("%w: argument %d is %T", ErrNotChannel, i, args[i])
		}
		var flags Flags
		switch f := args[i+1].(type) {
		case Flags:
			flags = f
		case map[string]bool:
			flags = f
		default:
			return fmt.Errorf("%w: argument %d is %T", ErrNotFlags, i+1, args[i+1])
		}
		if err := flags.validate(); err != nil {
			return err
		}
		pairs = append(pairs, pair{ch: ch, flags: flags})
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done {
		return nil
	}
	for _, p := range pairs {
		merged := Flags{}
		maps.Copy(merged, m.flags[p.ch])
		maps.Copy(merged, p.flags)
		m.setLocked(p.ch, merged)
	}
	m.recomputeLocked()
	return nil
}

// SetFlags replaces the flags of ch, adding it to the mix if needed.
func (m *Mix[T]) SetFlags(ch Chan[T], flags Flags) error {
	if !IsValue(ch) {
		return fmt.Errorf("%w: nil", ErrNotChannel)
	}
	if err := flags.validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done {
		return nil
	}
	m.setLocked(ch, maps.Clone(flags))
	m.recomputeLocked()
	return nil
}

// Flags returns a copy of the flags of ch, and whether ch is an input.
func (m *Mix[T]) Flags(ch Chan[T]) (Flags, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.flags[ch]
	if !ok {
		return nil, false
	}
	return maps.Clone(f), true
}

// SetPriorityMode changes the priority mode. It returns
// [ErrInvalidPriorityMode] for an unknown mode.
func (m *Mix[T]) SetPriorityMode(mode PriorityMode) error {
	if !mode.valid() {
		return fmt.Errorf("%w: %v", ErrInvalidPriorityMode, mode)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done {
		return nil
	}
	m.mode = mode
	m.recomputeLocked()
	return nil
}

// PriorityMode returns the current priority mode.
func (m *Mix[T]) PriorityMode() PriorityMode {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mode
}

// Inputs returns the inputs in the order they were added.
func (m *Mix[T]) Inputs() []Chan[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.inputs)
}

// IsDone reports whether the mix has shut down.
func (m *Mix[T]) IsDone() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done
}

// Wait blocks until the mix has shut down. It returns the context's error
// if the mix was stopped by the context passed to [NewMix], and nil if it
// stopped because its output closed.
func (m *Mix[T]) Wait() error {
	err := m.sc.Wait()
	// The loops never start if ctx ended before they were scheduled.
	m.teardown()
	return err
}

func (m *Mix[T]) String() string {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := "active"
	if m.done {
		state = "done"
	}
	return fmt.Sprintf("Mix(%s inputs=%d mode=%v)", state, len(m.inputs), m.mode)
}

func (m *Mix[T]) setLocked(ch Chan[T], flags Flags) {
	if _, ok := m.flags[ch]; !ok {
		m.inputs = append(m.inputs, ch)
	}
	m.flags[ch] = flags
}

// recomputeLocked derives both sets and interrupts both loops. The sets are
// replaced, never modified, so loops may keep the slices they were given.
func (m *Mix[T]) recomputeLocked() {
	var forward, drain []Chan[T]
	for _, ch := range m.inputs {
		f := m.flags[ch]
		switch m.mode {
		case PriorityOff:
			switch {
			case f[FlagPause]:
			case f[FlagMute]:
				drain = append(drain, ch)
			default:
				forward = append(forward, ch)
			}
		case PriorityMute:
			switch {
			case f[FlagPriority]:
				forward = append(forward, ch)
			case f[FlagPause]:
			default:
				drain = append(drain, ch)
			}
		case PriorityPause:
			if f[FlagPriority] {
				forward = append(forward, ch)
			}
		}
	}
	m.forward, m.drain = forward, drain
	m.restartForward.update(true)
	m.restartDrain.update(true)
}

type mixWake int

const (
	mixReady mixWake = iota
	mixRestart
	mixStop
)

// mixPass is one iteration of a mix loop: the set to serve, and the restart
// trigger armed for it.
type mixPass[T any] struct {
	set     []Chan[T]
	restart <-chan struct{}
}

func (m *Mix[T]) begin(restart *signal, set func() []Chan[T]) (mixPass[T], bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done {
		return mixPass[T]{}, false
	}
	restart.update(false)
	return mixPass[T]{set: set(), restart: restart.wait()}, true
}

// await waits for the pass to become servable. If gated, the output must
// also have room, and its closing stops the loop.
func (m *Mix[T]) await(ctx context.Context, p mixPass[T], gated bool) mixWake {
	items := make([]waitFunc, len(p.set))
	for i, ch := range p.set {
		items[i] = ch.Item
	}

	var closed <-chan struct{}
	ready := make(chan struct{})
	sc, sp := NewScope(ctx)
	if gated {
		closed = m.out.Done()
		sp.Go("mix-wait-forward", func(ctx context.Context) error {
			if waitAll(ctx, m.out.Capacity, func(ctx context.Context) bool {
				return waitAny(ctx, items...)
			}) {
				close(ready)
			}
			return nil
		})
	} else {
		sp.Go("mix-wait-drain", func(ctx context.Context) error {
			if waitAny(ctx, items...) {
				close(ready)
			}
			return nil
		})
	}

	var wake mixWake
	select {
	case <-p.restart:
		wake = mixRestart
	case <-closed:
		wake = mixStop
	case <-ctx.Done():
		wake = mixStop
	case <-ready:
		wake = mixReady
	}
	if wake == mixReady && ctx.Err() != nil {
		wake = mixStop
	}

	sc.Cancel(nil)
	_ = sc.Wait()
	return wake
}

// next polls the first non-empty channel of the pass, scanning round-robin
// from just after last. It gives up if the pass was restarted, which is
// checked under m.mu so that no mutation can slip in before the poll, or
// if gated and out has closed since the wake.
func (m *Mix[T]) next(p mixPass[T], last int, gated bool) (T, int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero T
	select {
	case <-p.restart:
		return zero, last, false
	default:
	}
	if gated && m.out.IsClosed() {
		return zero, last, false
	}

	n := len(p.set)
	for k := 1; k <= n; k++ {
		i := (last + k) % n
		if v, ok := p.set[i].Poll(); ok {
			return v, i, true
		}
	}
	return zero, last, false
}

func (m *Mix[T]) forwardLoop(ctx context.Context) error {
	defer m.teardown()

	last := -1
	for {
		p, ok := m.begin(&m.restartForward, func() []Chan[T] { return m.forward })
		if !ok {
			return nil
		}

		switch m.await(ctx, p, true) {
		case mixStop:
			return nil
		case mixRestart:
			m.log.Trace().
				Str("loop", "forward").
				Log("mix: restart")
			last = -1
			continue
		}

		v, i, ok := m.next(p, last, true)
		if !ok {
			continue
		}
		last = i

		if m.out.Offer(v) {
			continue
		}
		// Someone else filled out since the capacity wait.
		if !m.out.Put(ctx, v) {
			m.log.Warning().
				Int("input", i).
				Log("mix: item dropped")
		}
	}
}

func (m *Mix[T]) drainLoop(ctx context.Context) error {
	last := -1
	for {
		p, ok := m.begin(&m.restartDrain, func() []Chan[T] { return m.drain })
		if !ok {
			return nil
		}

		switch m.await(ctx, p, false) {
		case mixStop:
			return nil
		case mixRestart:
			m.log.Trace().
				Str("loop", "drain").
				Log("mix: restart")
			last = -1
			continue
		}

		if _, i, ok := m.next(p, last, false); ok {
			last = i
		}
	}
}

// teardown marks the mix done and stops the drain loop.
func (m *Mix[T]) teardown() {
	m.mu.Lock()
	if m.done {
		m.mu.Unlock()
		return
	}
	m.done = true
	m.inputs = nil
	clear(m.flags)
	m.forward, m.drain = nil, nil
	m.restartForward.update(true)
	m.restartDrain.update(true)
	m.mu.Unlock()

	m.sc.Cancel(nil)

	m.log.Debug().Log("mix: stopped")
}
