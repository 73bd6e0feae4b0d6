package chanx

import (
	"context"
	"fmt"
	"sync"

	"github.com/baxromumarov/csp"
	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
)

type topic[T any] struct {
	src  *csp.Channel[T]
	mult *Multiple[T]
}

// Publication routes the items of a source channel to subscribers by
// topic. Each item's topic is computed by a key function; the item is
// then copied to every channel subscribed to that topic, through a
// per-topic [Multiple]. Items of a topic nobody subscribed to are dropped.
type Publication[T any, K comparable] struct {
	ctx     context.Context
	src     csp.Chan[T]
	topicFn func(T) K
	cfg     config
	log     *logiface.Logger[logiface.Event]
	limiter *catrate.Limiter

	mu     sync.Mutex
	topics map[K]*topic[T]
	done   bool

	finished chan struct{}
}

// NewPublication starts routing the items of src by topicFn. It stops
// when src is closed and drained, or ctx ends; the per-topic channels are
// then closed, and with them the subscribers that asked for it.
//
// The options also size the per-topic channels. NewPublication panics if
// topicFn is nil.
func NewPublication[T any, K comparable](
	ctx context.Context,
	src csp.Chan[T],
	topicFn func(T) K,
	opts ...Option,
) *Publication[T, K] {
	if topicFn == nil {
		panic("chanx: NewPublication requires non-nil topic function")
	}

	cfg := newConfig(opts)
	p := &Publication[T, K]{
		ctx:      ctx,
		src:      src,
		topicFn:  topicFn,
		cfg:      cfg,
		log:      cfg.log(),
		limiter:  cfg.limiter(),
		topics:   make(map[K]*topic[T]),
		finished: make(chan struct{}),
	}
	go p.run()
	return p
}

// Subscribe copies the items of topic key to ch. If closeOnDone is set, ch
// is closed when the publication stops. It returns false if the
// publication is done.
func (p *Publication[T, K]) Subscribe(key K, ch csp.Chan[T], closeOnDone bool) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.done {
		return false
	}
	t, ok := p.topics[key]
	if !ok {
		src := newChannel[T](p.cfg)
		t = &topic[T]{
			src:  src,
			mult: NewMultiple(p.ctx, csp.Chan[T](src), WithLogger(p.log), WithDropLogRate(p.cfg.dropRate)),
		}
		p.topics[key] = t
	}
	return t.mult.AddOutput(ch, closeOnDone)
}

// Unsubscribe stops copying the items of topic key to ch.
func (p *Publication[T, K]) Unsubscribe(key K, ch csp.Chan[T]) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t, ok := p.topics[key]; ok {
		t.mult.RemoveOutput(ch)
	}
}

// UnsubscribeTopic removes every subscriber of topic key.
func (p *Publication[T, K]) UnsubscribeTopic(key K) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if t, ok := p.topics[key]; ok {
		t.mult.RemoveAllOutputs()
	}
}

// UnsubscribeAll removes every subscriber of every topic.
func (p *Publication[T, K]) UnsubscribeAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, t := range p.topics {
		t.mult.RemoveAllOutputs()
	}
}

// IsDone reports whether the publication has stopped.
func (p *Publication[T, K]) IsDone() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Done returns a channel that is closed once the publication has stopped
// and closed its per-topic channels.
func (p *Publication[T, K]) Done() <-chan struct{} {
	return p.finished
}

func (p *Publication[T, K]) String() string {
	state := "active"
	if p.IsDone() {
		state = "done"
	}
	return fmt.Sprintf("Publication(%s)", state)
}

func (p *Publication[T, K]) lookup(key K) *topic[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.topics[key]
}

func (p *Publication[T, K]) run() {
	defer close(p.finished)

	for {
		v, ok := p.src.Take(p.ctx)
		if !ok {
			break
		}
		t := p.lookup(p.topicFn(v))
		if t == nil {
			dropped(p.log, p.limiter, "no subscribers")
			continue
		}
		if !t.src.Put(p.ctx, v) {
			break
		}
	}

	p.mu.Lock()
	p.done = true
	topics := p.topics
	p.topics = nil
	p.mu.Unlock()

	for _, t := range topics {
		t.src.Close()
	}
}
