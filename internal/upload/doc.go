// Package upload implements the simulated image upload flow.
//
// The flow is built from four pieces, leaves first:
//
//   - [Validate] checks a candidate file's declared media type against an
//     allow-list and its byte size against a ceiling.
//   - [PreviewReader] turns the file's content into a data URI on its own
//     goroutine and reports back exactly once.
//   - [Simulator] advances a percentage from 0 to 100 over a fixed duration.
//     It never reads or transmits bytes; time comes from an injected clock.
//   - [Uploader] composes the three into the states Idle, Active and Complete.
//
// # State Machine
//
//	Idle --SelectFile(accepted)--> Active --simulator done--> Complete
//	  ^                              |                           |
//	  +-----------Reset()------------+-----------Reset()---------+
//
// SelectFile is rejected with [ErrUploadInProgress] while Active. A rejected
// file (see [ValidationError]) leaves the state untouched. A preview read
// failure ([ReadError]) abandons the attempt and returns to Idle.
//
// # Concurrency
//
// Timer ticks and preview completions arrive on their own goroutines. Each
// accepted selection gets a generation number; completions are applied under
// the uploader's mutex only while their generation is current, so nothing
// from a reset attempt is observable afterwards.
package upload
