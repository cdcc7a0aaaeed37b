// Package report queues registration verification reports for rendering.
//
// Filing must never block on report generation, so events are buffered and
// delivered by a background worker. Delivery is best-effort: a full buffer
// drops the event with a warning, and the renderer regenerates missing
// reports from the registration record on demand.
package report

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"mhregistry/pkg/domain"
)

// Event describes one registration whose verification report should be
// rendered and delivered.
type Event struct {
	MhrNumber        domain.MhrNumber  `json:"mhrNumber"`
	RegistrationID   int64             `json:"registrationId"`
	DocumentID       domain.DocumentID `json:"documentId"`
	RegistrationType string            `json:"registrationType"`
	AccountID        domain.AccountID  `json:"accountId"`
	Username         string            `json:"username,omitempty"`
	SubmittedTs      time.Time         `json:"submittedDateTime"`
	Registration     json.RawMessage   `json:"registration"`
}

// Sink delivers report events to the rendering pipeline.
type Sink interface {
	Send(ctx context.Context, event Event) error
	Close() error
}

// Enqueuer buffers report events and delivers them asynchronously.
type Enqueuer struct {
	sink   Sink
	events chan Event
	logger *slog.Logger

	wg       sync.WaitGroup
	closeMu  sync.Mutex
	isClosed bool
}

// NewEnqueuer starts the delivery worker. bufferSize bounds the number of
// pending events; zero selects a default.
func NewEnqueuer(sink Sink, bufferSize int, logger *slog.Logger) *Enqueuer {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	e := &Enqueuer{
		sink:   sink,
		events: make(chan Event, bufferSize),
		logger: logger,
	}
	e.wg.Add(1)
	go e.run()
	return e
}

func (e *Enqueuer) run() {
	defer e.wg.Done()
	for event := range e.events {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := e.sink.Send(ctx, event); err != nil {
			e.logger.Error("report delivery failed",
				"mhr_number", event.MhrNumber,
				"document_id", event.DocumentID,
				"error", err)
		}
		cancel()
	}
}

// Enqueue queues an event for delivery without blocking. Events offered
// after Close, or when the buffer is full, are dropped with a warning.
// The mutex serializes the buffered send against Close's channel close;
// the send itself never blocks, so the critical section stays short.
func (e *Enqueuer) Enqueue(event Event) {
	e.closeMu.Lock()
	defer e.closeMu.Unlock()
	if e.isClosed {
		e.logger.Warn("report event dropped, enqueuer closed",
			"mhr_number", event.MhrNumber)
		return
	}

	select {
	case e.events <- event:
	default:
		e.logger.Warn("report event dropped, buffer full",
			"mhr_number", event.MhrNumber,
			"document_id", event.DocumentID)
	}
}

// Close drains buffered events and shuts the sink. Safe to call once.
func (e *Enqueuer) Close() error {
	e.closeMu.Lock()
	if e.isClosed {
		e.closeMu.Unlock()
		return nil
	}
	e.isClosed = true
	close(e.events)
	e.closeMu.Unlock()

	e.wg.Wait()
	return e.sink.Close()
}
