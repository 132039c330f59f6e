// Package observe watches a live page for mutations that can change its
// application form.
package observe

import (
	"context"
	"time"
)

// MinQuiet is the shortest quiet period accepted.
const MinQuiet = 300 * time.Millisecond

// DebounceConfig controls batching.
type DebounceConfig struct {
	// Quiet is how long the page must stay unchanged before a flush.
	Quiet time.Duration `mapstructure:"quiet"`
	// MaxBuffer caps the buffered records. Past it the oldest irrelevant
	// record is dropped, or the oldest record when all are relevant.
	MaxBuffer int `mapstructure:"max-buffer"`
}

func (c *DebounceConfig) defaults() {
	if c.Quiet < MinQuiet {
		c.Quiet = MinQuiet
	}
	if c.MaxBuffer <= 0 {
		c.MaxBuffer = 1000
	}
}

// Debouncer buffers records and hands them over once the page went quiet. A
// batch without a single relevant record is dropped. It is not safe for
// concurrent use: one goroutine owns it, normally through Run.
type Debouncer struct {
	cfg     DebounceConfig
	records []Record
	timer   *time.Timer
	timerCh <-chan time.Time
	flushFn func([]Record)
}

func NewDebouncer(cfg DebounceConfig, flushFn func([]Record)) *Debouncer {
	cfg.defaults()
	return &Debouncer{
		cfg:     cfg,
		records: make([]Record, 0, 64),
		flushFn: flushFn,
	}
}

// Add buffers a record and restarts the quiet period. It reports whether the
// buffer was full and a record was dropped to make room.
func (d *Debouncer) Add(r Record) bool {
	d.records = append(d.records, r)
	trimmed := false
	if len(d.records) > d.cfg.MaxBuffer {
		d.trim()
		trimmed = true
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.NewTimer(d.cfg.Quiet)
	d.timerCh = d.timer.C
	return trimmed
}

func (d *Debouncer) trim() {
	drop := 0
	for i, r := range d.records {
		if !Relevant(r) {
			drop = i
			break
		}
	}
	d.records = append(d.records[:drop], d.records[drop+1:]...)
}

// C fires when the quiet period ends. It is nil while nothing is buffered.
func (d *Debouncer) C() <-chan time.Time {
	return d.timerCh
}

// Pending returns the number of buffered records.
func (d *Debouncer) Pending() int {
	return len(d.records)
}

// Flush hands the buffered records over when at least one is relevant, then
// resets.
func (d *Debouncer) Flush() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
		d.timerCh = nil
	}
	if len(d.records) == 0 {
		return
	}

	batch := make([]Record, len(d.records))
	copy(batch, d.records)
	d.records = d.records[:0]

	for _, r := range batch {
		if Relevant(r) {
			d.flushFn(batch)
			return
		}
	}
}

// Run feeds records from in until ctx ends or in is closed. Records still
// buffered when in closes are flushed.
func (d *Debouncer) Run(ctx context.Context, in <-chan Record) {
	for {
		select {
		case <-ctx.Done():
			return
		case r, ok := <-in:
			if !ok {
				d.Flush()
				return
			}
			d.Add(r)
		case <-d.C():
			d.Flush()
		}
	}
}
