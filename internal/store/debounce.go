package store

import (
	"context"
	"sync"
	"time"
)

// Debouncer coalesces bursts of save requests into a single write after a
// quiet interval. Commands that mutate the book several times in a row
// call Trigger after each mutation and Flush once before exiting; only
// the final state reaches the store.
type Debouncer struct {
	save  func(context.Context) error
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
	dirty bool
	err   error // first error from a timer-driven save, surfaced by Flush
}

// NewDebouncer wraps a save function with the given quiet interval.
func NewDebouncer(delay time.Duration, save func(context.Context) error) *Debouncer {
	return &Debouncer{save: save, delay: delay}
}

// Trigger records that the book changed and (re)starts the quiet timer.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.dirty = true
	if d.timer == nil {
		d.timer = time.AfterFunc(d.delay, d.fire)
	} else {
		d.timer.Reset(d.delay)
	}
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.dirty {
		return
	}
	d.dirty = false
	if err := d.save(context.Background()); err != nil && d.err == nil {
		d.err = err
	}
}

// Flush cancels the timer, performs any pending save immediately, and
// returns the first error from either that save or an earlier
// timer-driven one. After Flush the debouncer is clean.
func (d *Debouncer) Flush(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	err := d.err
	d.err = nil

	if d.dirty {
		d.dirty = false
		if serr := d.save(ctx); serr != nil && err == nil {
			err = serr
		}
	}
	return err
}
