package observe

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/spigell/applyfill/internal/utils"
)

//go:embed observer.js
var observerJS string

const binding = "__applyfill_mutations"

// Observer reports debounced, form-relevant mutations of a live page.
type Observer struct {
	page     *rod.Page
	cfg      DebounceConfig
	onChange func([]Record)
	logger   *zap.Logger

	in     chan Record
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New prepares an observer. onChange runs on the observer goroutine, one
// batch at a time.
func New(page *rod.Page, cfg DebounceConfig, onChange func([]Record), logger *zap.Logger) *Observer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Observer{
		page:     page,
		cfg:      cfg,
		onChange: onChange,
		logger:   logger,
		in:       make(chan Record, 1024),
	}
}

// Start installs the page script, also for later navigations, and starts
// delivering batches until ctx ends or Stop is called.
func (o *Observer) Start(ctx context.Context) error {
	ctx, o.cancel = context.WithCancel(ctx)

	if err := (proto.RuntimeAddBinding{Name: binding}).Call(o.page); err != nil {
		o.cancel()
		return fmt.Errorf("observe: add binding: %w", err)
	}

	wait := o.page.Context(ctx).EachEvent(func(e *proto.RuntimeBindingCalled) {
		if e.Name != binding {
			return
		}
		o.receive(ctx, e.Payload)
	})

	if _, err := o.page.EvalOnNewDocument(observerJS); err != nil {
		o.cancel()
		return fmt.Errorf("observe: register script: %w", err)
	}
	if _, err := o.page.Eval(`function() {` + observerJS + `}`); err != nil {
		o.cancel()
		return fmt.Errorf("observe: inject script: %w", err)
	}

	d := NewDebouncer(o.cfg, o.onChange)
	o.wg.Add(2)
	go func() {
		defer o.wg.Done()
		wait()
	}()
	go func() {
		defer o.wg.Done()
		d.Run(ctx, o.in)
	}()

	o.logger.Debug("observing page mutations")
	return nil
}

func (o *Observer) receive(ctx context.Context, payload string) {
	var records []Record
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		o.logger.Warn("bad mutation payload",
			zap.String("payload", utils.TruncateForLog(payload, 200)),
			zap.Error(err),
		)
		return
	}
	for _, r := range records {
		select {
		case o.in <- r:
		case <-ctx.Done():
			return
		}
	}
}

// Stop ends observation and waits for the observer goroutines.
func (o *Observer) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}
