// Package timers implements the host's timer queue: a min-heap of pending
// deferred callbacks ordered by fire time, with the timer id breaking ties so
// that callbacks scheduled for the same instant fire in scheduling order.
//
// The queue is shared between the script thread (which schedules, cancels and
// pops entries) and host bookkeeping (the control plane reads snapshots), so
// every operation holds the queue mutex only for the heap update itself.
// Callbacks are never invoked while the lock is held; the queue does not
// invoke callbacks at all.
package timers
