// Package worker drains the classification queue. Each job is classified,
// persisted onto its report document and announced via webhook and event
// bus. Persistence is the commit point: once the document update succeeds
// the job is done, even if notification fails afterwards.
package worker

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/apex/log"

	"civic-ml-pipeline/metrics"
	"civic-ml-pipeline/models"
	"civic-ml-pipeline/queue"
	"civic-ml-pipeline/store"
	"civic-ml-pipeline/webhook"
)

const (
	// DefaultDequeueTimeout bounds each blocking pop so shutdown is prompt.
	DefaultDequeueTimeout = 5 * time.Second

	// DefaultErrorBackoff is the pause after an infrastructure error.
	DefaultErrorBackoff = 5 * time.Second

	simpleTitleWords = 4
)

// Queue yields classification jobs. A nil job with nil error means the
// queue stayed empty for the timeout window.
type Queue interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*models.ClassificationJob, error)
}

// Classifier turns a classification request into a result.
type Classifier interface {
	Classify(ctx context.Context, req models.ClassificationRequest) (models.ClassificationResponse, error)
}

// Store persists classification results and reads reports back.
type Store interface {
	SaveClassification(ctx context.Context, reportID string, update store.ClassificationUpdate) error
	GetReport(ctx context.Context, reportID string) (*store.ReportProjection, error)
}

// Notifier delivers result webhooks. Best-effort.
type Notifier interface {
	Notify(ctx context.Context, notification webhook.Notification) error
}

// Publisher announces classified reports on the event bus. Best-effort.
type Publisher interface {
	PublishClassified(reportID string, result models.ClassificationResponse) error
}

type Worker struct {
	queue      Queue
	classifier Classifier
	store      Store
	notifier   Notifier
	publisher  Publisher

	dequeueTimeout time.Duration
	errorBackoff   time.Duration
}

// New creates a worker. notifier and publisher may be nil, which disables
// the respective notification.
func New(q Queue, classifier Classifier, st Store, notifier Notifier, publisher Publisher) *Worker {
	return &Worker{
		queue:          q,
		classifier:     classifier,
		store:          st,
		notifier:       notifier,
		publisher:      publisher,
		dequeueTimeout: DefaultDequeueTimeout,
		errorBackoff:   DefaultErrorBackoff,
	}
}

// Run drains the queue until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	log.Info("classification worker started")

	for {
		select {
		case <-ctx.Done():
			log.Info("classification worker stopped")
			return
		default:
		}

		job, err := w.queue.Dequeue(ctx, w.dequeueTimeout)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("classification worker stopped")
				return
			}
			if errors.Is(err, queue.ErrBadPayload) {
				// Job is consumed; nothing to retry.
				log.WithError(err).Error("discarding malformed job")
				metrics.JobsProcessedTotal.WithLabelValues("invalid").Inc()
				continue
			}
			log.WithError(err).Error("failed to dequeue job")
			w.sleep(ctx, w.errorBackoff)
			continue
		}
		if job == nil {
			continue
		}

		metrics.LastJobSeconds.Set(metrics.NowUnixSeconds())
		w.process(ctx, *job)
	}
}

func (w *Worker) process(ctx context.Context, job models.ClassificationJob) {
	start := time.Now()
	metrics.JobsInFlight.Inc()
	defer metrics.JobsInFlight.Dec()

	result := "ok"
	defer func() {
		metrics.JobsProcessedTotal.WithLabelValues(result).Inc()
		metrics.JobDurationSeconds.WithLabelValues(result).Observe(time.Since(start).Seconds())
	}()

	logger := log.WithField("report_id", job.ReportID)
	logger.Info("processing classification job")

	req := models.ClassificationRequest{
		Text:     strings.TrimSpace(job.Description),
		ImageURL: job.ImageURL,
	}
	if req.Text == "" && req.ImageURL == "" {
		logger.Warn("job has no classifiable input, skipping")
		result = "skipped"
		return
	}

	resp, err := w.classifier.Classify(ctx, req)
	if err != nil {
		logger.WithError(err).Error("classification failed")
		result = "classify_error"
		return
	}

	update := store.ClassificationUpdate{
		Result: resp,
		Title:  reportTitle(job, resp),
	}
	if err := w.store.SaveClassification(ctx, job.ReportID, update); err != nil {
		if errors.Is(err, store.ErrReportNotFound) {
			logger.Warn("report no longer exists, abandoning job")
			result = "abandoned"
			return
		}
		logger.WithError(err).Error("failed to persist classification")
		result = "store_error"
		return
	}

	logger.Infof("classified report: severity=%s department=%s title=%q",
		resp.Severity, resp.Department, resp.Title)

	// The job is committed; notifications below must not fail it.
	if w.notifier != nil {
		report, err := w.store.GetReport(ctx, job.ReportID)
		if err != nil {
			logger.WithError(err).Warn("failed to read back report for webhook")
		}
		notification := webhook.Notification{
			ReportID:       job.ReportID,
			Classification: resp,
			UpdatedReport:  report,
		}
		if err := w.notifier.Notify(ctx, notification); err != nil {
			logger.WithError(err).Warn("failed to deliver webhook")
			metrics.WebhookErrorTotal.Inc()
		}
	}

	if w.publisher != nil {
		if err := w.publisher.PublishClassified(job.ReportID, resp); err != nil {
			logger.WithError(err).Warn("failed to publish classified event")
			metrics.PublishErrorTotal.Inc()
		}
	}
}

// reportTitle decides the display title written back to the report. A real
// classifier title always wins; otherwise reports still carrying a
// placeholder get a stub built from the description.
func reportTitle(job models.ClassificationJob, resp models.ClassificationResponse) string {
	ml := resp.Title
	if ml != "" && ml != models.NoTitle && !strings.HasPrefix(ml, "Processing") {
		return ml
	}

	if job.Description != "" && (job.Title == "" || job.Title == models.PlaceholderTitle) {
		words := strings.Fields(job.Description)
		if len(words) > simpleTitleWords {
			words = words[:simpleTitleWords]
		}
		return strings.Join(words, " ") + "..."
	}

	return ""
}

func (w *Worker) sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
