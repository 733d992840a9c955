package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	BufferSize int
	DropIfFull bool
}

// ObserveFunc receives the outcome of every delivery attempt: batch size,
// wall-clock append duration, and the sink error (nil on success).
type ObserveFunc func(records int, d time.Duration, err error)

type batch struct {
	sink    Sink
	records []Record
}

// Dispatcher asynchronously forwards audit record batches to their sinks.
// Delivery is detached from the enqueueing caller: a batch handed to Emit is
// appended by the worker goroutine with a background context, so the caller
// completes independently of whether the append has finished, succeeded, or
// failed.
type Dispatcher struct {
	cfg       Config
	observe   ObserveFunc
	ch        chan batch
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func NewDispatcher(cfg Config, observe ObserveFunc) *Dispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}

	d := &Dispatcher{
		cfg:     cfg,
		observe: observe,
		ch:      make(chan batch, cfg.BufferSize),
		done:    make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case b := <-d.ch:
			d.deliver(b)
		case <-d.done:
			for {
				select {
				case b := <-d.ch:
					d.deliver(b)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(b batch) {
	if b.sink == nil || len(b.records) == 0 {
		return
	}

	start := time.Now()
	var err error
	if len(b.records) == 1 {
		err = b.sink.Append(context.Background(), b.records[0])
	} else {
		err = b.sink.AppendBatch(context.Background(), b.records)
	}

	if d.observe != nil {
		d.observe(len(b.records), time.Since(start), err)
	}
	if err != nil {
		log.Printf("goAudit: audit append failed: %v payload=%s", err, PayloadString(b.records))
	}
}

// Emit hands a batch and its sink handle to the worker. Emit never blocks
// when DropIfFull is set; otherwise it blocks until buffer space frees, ctx
// is done, or the dispatcher closes. Emit on a nil or closed dispatcher is a
// no-op.
func (d *Dispatcher) Emit(ctx context.Context, sink Sink, records []Record) {
	if d == nil || d.closed.Load() {
		return
	}
	if len(records) == 0 {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	b := batch{sink: sink, records: records}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- b:
		case <-d.done:
		default:
			d.dropped.Add(uint64(len(records)))
		}
		return
	}

	select {
	case d.ch <- b:
	case <-ctx.Done():
	case <-d.done:
	}
}

// Close stops intake, drains buffered batches through their sinks, and joins
// the worker. Close is idempotent and safe on a nil dispatcher.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped reports how many records were discarded because the buffer was
// full while DropIfFull was set.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// PayloadString renders records for diagnostic log lines so failed
// deliveries stay recoverable by hand.
func PayloadString(records []Record) string {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Sprintf("%+v", records)
	}
	return string(data)
}
