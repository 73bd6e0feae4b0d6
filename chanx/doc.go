// Package chanx provides combinators built on [csp.Chan]: fan-in, zipping,
// mapping, folding, splitting and piping channels, bridging to and from
// native Go channels, and the fan-out [Multiple] and topic-routed
// [Publication].
//
// Every combinator only uses the public channel operations: it never
// reaches into a channel's buffer, and it works the same on shielded
// channels.
//
//   - [Merge] and [IterMerge]: fan-in from many channels, closed once all
//     inputs are closed and drained.
//   - [Map] and [IterZip]: index-aligned tuples from several channels,
//     ending when any input closes.
//   - [Filter], [Reduce] and [Split]: single-input pipelines.
//   - [Pipe]: forward items between two existing channels.
//   - [OntoChannel] and [ToChannel]: feed a sequence onto a channel.
//   - [PutBatch], [TakeBatch] and [Drain]: bulk operations.
//   - [FromChan] and [ToChan]: bridges to native Go channels.
//   - [Multiple]: copy every item to a changing set of outputs.
//   - [Publication]: route items to per-topic subscribers.
//
// Background goroutines are tied to the [context.Context] passed in and
// exit when it ends, or when their input is closed and drained.
// Functions returning a new channel build it with a blocking buffer of
// size 1 unless [WithSize] or [WithBuffer] says otherwise.
package chanx
