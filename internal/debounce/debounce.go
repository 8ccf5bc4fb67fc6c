// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package debounce provides a cancellable trailing-edge timer.
//
// Each Trigger arms the timer with the latest value and cancels any earlier
// arming, so a burst of triggers produces one callback carrying the last
// value once the input has been quiet for the configured delay.
package debounce

import (
	"sync"
	"time"
)

// Debouncer delays calls to fn until Trigger has not been called for delay.
type Debouncer[T any] struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func(T)
	timer   *time.Timer
	gen     uint64
	pending bool
	value   T
}

// New creates a debouncer. fn runs on its own goroutine when the timer fires.
func New[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Trigger arms the timer with v, replacing any pending value.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	d.value = v
	d.pending = true
	if d.timer != nil {
		d.timer.Stop()
	}
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Cancel disarms the timer without calling fn.
func (d *Debouncer[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.disarm()
}

// Flush calls fn immediately with the pending value, if any, and reports
// whether it did.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if !d.pending {
		d.mu.Unlock()
		return false
	}
	v := d.value
	d.disarm()
	d.mu.Unlock()

	d.fn(v)
	return true
}

// Pending reports whether a call is armed.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// disarm must be called with mu held.
func (d *Debouncer[T]) disarm() {
	d.gen++
	d.pending = false
	var zero T
	d.value = zero
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	// A timer that lost the race with Stop still fires; the generation
	// tells it apart from the current arming.
	if gen != d.gen || !d.pending {
		d.mu.Unlock()
		return
	}
	v := d.value
	d.pending = false
	d.timer = nil
	d.mu.Unlock()

	d.fn(v)
}
