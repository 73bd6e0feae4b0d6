// Package csp provides channels in the style of communicating sequential
// processes: bounded queues that producers and consumers share by
// reference, with explicit closing, plus a multi-way [Select] and a
// flag-driven multiplexer, [Mix].
//
// # Channels
//
// A [Channel] wraps a [Buffer] whose [Overflow] policy decides what happens
// to an item added while it is full: [NewBlockingBuffer] makes the producer
// wait, [NewDroppingBuffer] discards the new item and [NewSlidingBuffer]
// evicts the oldest one.
//
//	ch := csp.NewChannel[string](8)
//	ch.Offer("ping")        // never waits
//	ch.Put(ctx, "pong")     // waits for room
//	v, ok := ch.Take(ctx)   // waits for an item
//
// Offer and Poll never wait. Put, Take, Capacity and Item wait, and give
// up when the context ends: a deadline is a timeout, and being out of time
// is reported as "not ready" (false), never as an error. Closing a channel
// rejects new items but keeps buffered ones available; [Iterate] and [All]
// consume a channel until it is closed and drained.
//
// nil is never a valid item. Offering one panics with [ErrInvalidValue].
//
// Waits are broadcast: when an item or some room appears, every waiter
// wakes and re-checks, and only those that still find what they waited for
// proceed. There is no FIFO ordering among waiters, only the guarantee
// that someone proceeds.
//
// # Select
//
// [Select] executes at most one of a list of [Read] and [Write]
// operations, preferring any that can complete at once, optionally falling
// back to a default ([WithDefault]) and optionally breaking ties by list
// order ([WithPriority]).
//
// # Mix
//
// [Mix] moves items from any number of inputs into one output. Per-input
// [Flags] (priority, mute, pause) and a global [PriorityMode] decide which
// inputs are forwarded, which are drained, and which are left alone.
//
// # Shields
//
// [ShieldFromClose], [ShieldFromRead] and [ShieldFromWrite] hand out a
// channel with part of its capabilities removed. Calling a removed
// operation panics with a [*ProhibitedOperationError], or does nothing in
// [Silent] mode.
//
// # Scopes
//
// Every composite wait in this package runs its branches as tasks of a
// short-lived [Scope], and cancels and joins them before returning. The
// same machinery is exported: [Run] and [NewScope] start tasks through a
// [Spawner], apply an error [Policy] ([FailFast] or [Collect]), wrap task
// errors in [*TaskError] and capture panics as [*PanicError].
//
// # Logging
//
// The package logs through [github.com/joeycumines/logiface]. Install a
// logger with [SetLogger], or per value with [WithLogger], [WithMixLogger]
// and [WithSelectLogger]. Without one nothing is logged.
//
// The [github.com/baxromumarov/csp/chanx] subpackage builds combinators
// (merge, zip, map, reduce, split, pipe, fan-out, publish/subscribe) on
// top of [Chan].
package csp
