// Package pipeline wires classification, alert presentation, and
// persistence for each inbound capture event.
package pipeline

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"scamwatch/internal/alert"
	"scamwatch/internal/capture"
	"scamwatch/internal/classify"
	"scamwatch/internal/store"
	"scamwatch/internal/util"
)

// Feed receives persisted alerts for the observable store stream.
type Feed interface {
	AlertSaved(alert store.Alert)
}

// Pipeline runs the classify-and-alert flow off the control goroutine and
// hands surface work back to the alert manager.
type Pipeline struct {
	backend  classify.Backend
	manager  *alert.Manager
	db       *store.Database
	feed     Feed
	deepLink string
	wg       sync.WaitGroup
}

// New constructs the pipeline. backend may be nil when no classifier could
// be bound; events are then dropped with a log line.
func New(backend classify.Backend, manager *alert.Manager, db *store.Database, feed Feed, deepLink string) *Pipeline {
	return &Pipeline{
		backend:  backend,
		manager:  manager,
		db:       db,
		feed:     feed,
		deepLink: deepLink,
	}
}

// Push accepts one capture event and processes it in the background. It
// never blocks the caller on inference or persistence.
func (p *Pipeline) Push(event capture.Event) error {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.process(event)
	}()
	return nil
}

func (p *Pipeline) process(event capture.Event) {
	log := logrus.WithFields(logrus.Fields{
		"event_id":   event.EventID,
		"source_app": event.SourceApp,
	})

	if p.backend == nil || !p.backend.Available() {
		log.Warn("classifier unavailable, event skipped")
		return
	}

	timer := util.StartTimer()
	result := p.backend.Analyze(context.Background(), event.Request())
	if result == nil {
		log.WithField("elapsed_ms", timer.ElapsedMs()).Info("classification produced no result")
		return
	}
	log.WithFields(logrus.Fields{
		"elapsed_ms": timer.ElapsedMs(),
		"scam_type":  result.ScamType,
		"confidence": result.Confidence,
	}).Info("message classified")

	// Presentation and persistence start together; neither waits for the
	// other and a persistence failure never retracts the shown alert.
	view := alert.NewView(event, *result, p.deepLink)
	p.manager.Present(view)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.persist(event, *result)
	}()
}

func (p *Pipeline) persist(event capture.Event, result classify.Result) {
	record := &store.Alert{
		EventID:         event.EventID,
		Message:         result.WarningMessage,
		Confidence:      result.Confidence,
		ScamType:        string(result.ScamType),
		DetectionMethod: string(result.DetectionMethod),
		SourceApp:       event.SourceApp,
		Timestamp:       event.Timestamp,
	}
	record.SetDetectedKeywords(result.DetectedKeywords)
	record.SetReasons(result.Reasons)
	record.SetSuspiciousParts(result.SuspiciousParts)

	if err := p.db.SaveAlert(record); err != nil {
		logrus.WithError(err).WithField("event_id", event.EventID).Warn("alert persist failed")
		return
	}
	if p.feed != nil {
		p.feed.AlertSaved(*record)
	}
}

// Wait blocks until all in-flight events have finished processing.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}
