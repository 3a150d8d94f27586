// Package pipeline implements the forecast dashboard workflow: it records the
// selected input files, submits them to the forecasting backend in a single
// request, and renders the returned forecast into chart sections.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/medipredict/forecast-dashboard/internal/chart"
	"github.com/medipredict/forecast-dashboard/internal/result"
	"github.com/medipredict/forecast-dashboard/pkg/constants"
	"go.uber.org/zap"
)

// Processor sends the selected files to the forecasting backend.
type Processor interface {
	Process(ctx context.Context, files []NamedFile) (*result.ForecastResult, error)
}

// Pipeline owns the file slots, the result area and the live chart handles of
// one page session. It is safe for concurrent use; the lock is not held while
// waiting for the backend.
type Pipeline struct {
	mu        sync.Mutex
	processor Processor
	renderer  chart.Renderer
	logger    *zap.Logger
	now       func() time.Time

	slots   fileSlots
	display Display
	charts  chart.HandleSet
	result  *result.ForecastResult
	closed  bool
}

// New creates a pipeline in the Idle state with all slots empty.
func New(processor Processor, renderer chart.Renderer, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Pipeline{
		processor: processor,
		renderer:  renderer,
		logger:    logger,
		now:       time.Now,
		slots:     make(fileSlots),
	}
	p.display = Display{State: StateIdle, UpdatedAt: p.now()}
	return p
}

// RecordFile overwrites the file held by slot. A nil file clears the slot.
func (p *Pipeline) RecordFile(slot Slot, file *File) error {
	if _, err := ParseSlot(string(slot)); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.slots.set(slot, file)

	if file == nil {
		p.logger.Debug("file slot cleared",
			zap.String("op", "pipeline.RecordFile"),
			zap.String("slot", string(slot)),
		)
	} else {
		p.logger.Debug("file slot recorded",
			zap.String("op", "pipeline.RecordFile"),
			zap.String("slot", string(slot)),
			zap.String("file", file.Name),
			zap.Int("bytes", len(file.Data)),
		)
	}
	return nil
}

// Submit validates the required slots and sends every non-empty slot to the
// backend in one request, then renders the response.
//
// A *ValidationError is returned without any request or display change when a
// required slot is empty, and ErrSubmitInProgress while an earlier submit is
// still waiting. Otherwise the result area enters Loading and ends in
// Rendered, or in Error when the returned error is a *TransportError or
// *ServerReportedError. File slots are never modified.
func (p *Pipeline) Submit(ctx context.Context) error {
	p.mu.Lock()
	if missing := p.slots.missing(); len(missing) > 0 {
		p.mu.Unlock()
		err := &ValidationError{Missing: missing}
		p.logger.Info("submit rejected",
			zap.String("op", "pipeline.Submit"),
			zap.Error(err),
		)
		return err
	}
	if p.display.State == StateLoading {
		p.mu.Unlock()
		return ErrSubmitInProgress
	}
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}

	files := p.slots.snapshot()
	p.enterLoading()
	p.mu.Unlock()

	start := time.Now()
	res, err := p.processor.Process(ctx, files)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		// The session ended while waiting; nothing may hold charts any more.
		p.fail(constants.SessionClosedMessage)
		p.logger.Info("forecast dropped for closed pipeline",
			zap.String("op", "pipeline.Submit"),
			zap.Int("files", len(files)),
			zap.Duration("duration", time.Since(start)),
		)
		return ErrClosed
	}

	if err != nil {
		var serverErr *ServerReportedError
		if errors.As(err, &serverErr) {
			p.fail(serverErr.Message)
		} else {
			var transportErr *TransportError
			if !errors.As(err, &transportErr) {
				err = &TransportError{Err: err}
			}
			p.fail(constants.TransportFailureMessage)
		}
		p.logger.Warn("forecast request failed",
			zap.String("op", "pipeline.Submit"),
			zap.Int("files", len(files)),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return err
	}

	p.render(res)
	p.logger.Info("forecast rendered",
		zap.String("op", "pipeline.Submit"),
		zap.Int("files", len(files)),
		zap.Int("sections", len(p.display.Sections)),
		zap.Int("charts", p.charts.Len()),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// Render replaces the result area with the sections of res. Every chart of
// the previous pass is released before any new chart is created.
// A closed pipeline ignores the call.
func (p *Pipeline) Render(res *result.ForecastResult) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.render(res)
}

// Display returns a snapshot of the result area.
func (p *Pipeline) Display() Display {
	p.mu.Lock()
	defer p.mu.Unlock()

	d := p.display
	d.Sections = make([]Section, len(p.display.Sections))
	for i, s := range p.display.Sections {
		s.Charts = append([]ChartSlot(nil), s.Charts...)
		d.Sections[i] = s
	}
	return d
}

// State returns the current display state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.display.State
}

// Slots returns the status of every slot in picker order.
func (p *Pipeline) Slots() []SlotStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.slots.status()
}

// Ready reports whether every required slot holds a file.
func (p *Pipeline) Ready() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.slots.missing()) == 0
}

// HandleCount returns the number of live chart handles.
func (p *Pipeline) HandleCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.charts.Len()
}

// Chart returns the live chart handle with the given canvas id.
func (p *Pipeline) Chart(id string) (chart.Handle, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.charts.Get(id)
}

// Result returns the last rendered forecast, or nil.
func (p *Pipeline) Result() *result.ForecastResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.display.State != StateRendered {
		return nil
	}
	return p.result
}

// Close releases every chart handle and returns the result area to Idle.
// File slots are kept. A submit still waiting for the backend keeps the area
// in Loading; it ends in Error without creating charts, and later submits
// fail with ErrClosed.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	released := p.charts.ReleaseAll()
	p.result = nil
	if p.display.State != StateLoading {
		p.setDisplay(Display{State: StateIdle})
	}
	p.logger.Debug("pipeline closed",
		zap.String("op", "pipeline.Close"),
		zap.Int("released", released),
	)
}

func (p *Pipeline) setDisplay(d Display) {
	d.Generation = p.display.Generation + 1
	d.UpdatedAt = p.now()
	p.display = d
}

// enterLoading drops the previous content. Its charts are no longer shown, so
// their handles are released here as well.
func (p *Pipeline) enterLoading() {
	p.charts.ReleaseAll()
	p.result = nil
	p.setDisplay(Display{State: StateLoading, Message: constants.LoadingMessage})
}

func (p *Pipeline) fail(message string) {
	p.setDisplay(Display{State: StateError, Message: message})
}

func (p *Pipeline) render(res *result.ForecastResult) {
	if res == nil {
		res = &result.ForecastResult{
			Admissions: result.SeriesResult{Err: result.ReasonMissing},
			LOS:        result.LOSResult{Err: result.ReasonMissing},
			Resources:  result.ResourcesResult{Err: result.ReasonMissing},
			ICU:        result.SeriesGroup{Err: result.ReasonMissing},
		}
	}

	released := p.charts.ReleaseAll()

	sections := buildSections(res)
	for i := range sections {
		for j := range sections[i].Charts {
			slot := &sections[i].Charts[j]
			slot.spec.ID = slot.CanvasID
			h, err := p.renderer.Render(slot.spec)
			if err != nil {
				slot.Err = fmt.Sprintf("chart could not be drawn: %v", err)
				p.logger.Error("failed to create chart",
					zap.String("op", "pipeline.Render"),
					zap.String("chart", slot.CanvasID),
					zap.Error(err),
				)
				continue
			}
			slot.Handle = h
			p.charts.Add(h)
		}
	}

	for _, gap := range res.Gaps() {
		p.logger.Info("forecast series unavailable",
			zap.String("op", "pipeline.Render"),
			zap.String("gap", gap),
		)
	}

	p.result = res
	p.setDisplay(Display{State: StateRendered, Sections: sections})
	p.logger.Debug("result area rendered",
		zap.String("op", "pipeline.Render"),
		zap.Int("released", released),
		zap.Int("charts", p.charts.Len()),
	)
}
