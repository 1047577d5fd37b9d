// Package progress implements the overlay's single progress indicator.
//
// A Machine owns one Run at a time and moves it through three states:
//
//	Idle --Start--> Running --(100% + settle delay | Cancel)--> Completing --exit--> Idle
//
// Elapsed fraction is recomputed from the clock on every tick. Once the run
// is hidden, the exit transition plays and hands control back through a
// continuation; only then is the host told "progressComplete", exactly once
// per hidden run.
//
// # Event loop
//
// A Machine is not safe for concurrent use. Start, Cancel and Teardown must
// run on the loop passed in Config; Mount arranges that for bridge events, and
// timers armed by the Machine deliver through the same loop.
//
// # Observation
//
// Implement Observer to follow run lifecycles (metrics, tracing, headless
// rendering). MultiObserver fans out to several observers.
package progress
