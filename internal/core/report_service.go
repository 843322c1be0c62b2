package core

import (
	"bytes"
	"context"
	"errors"
	"time"

	"fieldops.service/internal/core/model"
	"fieldops.service/internal/export"
	"fieldops.service/internal/ports/backend"
	"fieldops.service/internal/ports/messaging"
	"fieldops.service/internal/ports/storage"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// reportPrefix is where exported report files live in the file store.
const reportPrefix = "reports/"

// ErrReportNotReady is returned when a report is downloaded before it has
// been generated.
var ErrReportNotReady = &ValidationError{Field: "status", Message: "This report has not been generated yet"}

type ReportService struct {
	docs     backend.Documents
	producer messaging.EventProducer
	files    storage.FileStore
	now      func() time.Time
}

// NewReportService wires the backend, the producer that hands generation to
// the report worker, and the store exported files are uploaded to. files may
// be nil, in which case exports are rendered on demand.
func NewReportService(docs backend.Documents, p messaging.EventProducer, files storage.FileStore) *ReportService {
	if p == nil {
		p = messaging.NewProducer(nil, "", "")
	}
	return &ReportService{docs: docs, producer: p, files: files, now: now}
}

func (s *ReportService) List(ctx context.Context) ([]model.Report, error) {
	reports, err := listAll[model.Report](ctx, s.docs, backend.Reports, backend.NewQuery().OrderDesc(backend.FieldCreatedAt))
	if err != nil {
		return nil, fail(ctx, "load reports", err)
	}
	return reports, nil
}

func (s *ReportService) Get(ctx context.Context, id string) (model.Report, error) {
	r, err := get[model.Report](ctx, s.docs, backend.Reports, id)
	if err != nil {
		return model.Report{}, fail(ctx, "load report", err)
	}
	return r, nil
}

// Request saves a pending report and queues it for generation. Without a
// report queue the report is generated before Request returns.
func (s *ReportService) Request(ctx context.Context, d *ReportDraft) (model.Report, error) {
	if err := d.Validate(); err != nil {
		return model.Report{}, err
	}

	r, err := create(ctx, s.docs, backend.Reports, model.Report{
		Name:          d.Name,
		Type:          d.Type,
		DateRange:     d.DateRange,
		Fields:        append([]string(nil), d.Fields...),
		IncludeCharts: d.IncludeCharts,
		Format:        d.Format,
		Status:        model.ReportPending,
		CreatedAt:     s.now(),
	})
	if err != nil {
		return model.Report{}, fail(ctx, "generate report", err)
	}
	log.Ctx(ctx).Info().Str("reportId", r.ID).Str("type", string(r.Type)).Msg("Report requested")

	err = s.producer.PublishReport(ctx, messaging.ReportRequestedEvent{ReportID: r.ID, RequestedAt: r.CreatedAt})
	switch {
	case err == nil:
		return r, nil
	case errors.Is(err, messaging.ErrQueueNotConfigured):
		generated, perr := s.Process(ctx, r.ID)
		if perr != nil {
			if _, merr := s.MarkFailed(ctx, r.ID, 1); merr != nil {
				log.Ctx(ctx).Warn().Err(merr).Str("reportId", r.ID).Msg("Failed to mark report as failed")
			}
			return r, perr
		}
		return generated, nil
	default:
		log.Ctx(ctx).Error().Err(err).Str("reportId", r.ID).Msg("Failed to publish report request to queue")
		return r, fail(ctx, "generate report", err)
	}
}

// Generate computes the content of r from the current data.
func (s *ReportService) Generate(ctx context.Context, r model.Report) (model.ReportContent, error) {
	var data ReportData
	var err error
	switch r.Type {
	case model.ReportWorker:
		if data.Workers, err = listAll[model.Worker](ctx, s.docs, backend.Workers, backend.NewQuery().OrderAsc("name")); err != nil {
			return model.ReportContent{}, err
		}
		data.CheckIns, err = s.checkIns(ctx)
	case model.ReportCheckIn:
		data.CheckIns, err = s.checkIns(ctx)
	case model.ReportCustomer:
		data.Customers, err = listAll[model.Customer](ctx, s.docs, backend.Customers, backend.NewQuery().OrderAsc("name"))
	case model.ReportSurvey:
		if data.Surveys, err = listAll[model.Survey](ctx, s.docs, backend.Surveys, backend.NewQuery().OrderDesc(backend.FieldCreatedAt)); err != nil {
			return model.ReportContent{}, err
		}
		data.Responses, err = listAll[model.SurveyResponse](ctx, s.docs, backend.SurveyResponses, backend.NewQuery().OrderAsc("submittedAt"))
	}
	if err != nil {
		return model.ReportContent{}, err
	}
	return BuildReportContent(r, data)
}

func (s *ReportService) checkIns(ctx context.Context) ([]model.CheckIn, error) {
	return listAll[model.CheckIn](ctx, s.docs, backend.CheckIns, backend.NewQuery().OrderAsc("timestamp").OrderAsc(backend.FieldCreatedAt))
}

// Process generates a report, exports it and stores the result. A report
// that is already completed is returned as is.
func (s *ReportService) Process(ctx context.Context, id string) (model.Report, error) {
	trace.SpanFromContext(ctx).SetAttributes(attribute.String("app.reportId", id))

	r, err := get[model.Report](ctx, s.docs, backend.Reports, id)
	if err != nil {
		return model.Report{}, fail(ctx, "load report", err)
	}
	if r.Status == model.ReportCompleted {
		log.Ctx(ctx).Info().Str("reportId", id).Msg("Report already generated. Skipping.")
		return r, nil
	}

	r, err = update(ctx, s.docs, backend.Reports, id, r, map[string]any{"status": model.ReportGenerating})
	if err != nil {
		return r, fail(ctx, "generate report", err)
	}

	content, err := s.Generate(ctx, r)
	if err != nil {
		return r, fail(ctx, "generate report", err)
	}
	generatedAt := s.now()
	r.Content = &content
	r.GeneratedAt = &generatedAt

	changes := map[string]any{
		"status":      model.ReportCompleted,
		"content":     content,
		"generatedAt": generatedAt,
	}
	if s.files != nil {
		file, err := export.Render(r)
		if err != nil {
			return r, fail(ctx, "export report", err)
		}
		key := reportPrefix + file.Name
		if err := s.files.Put(ctx, key, file.ContentType, file.Data); err != nil {
			return r, fail(ctx, "upload report", err)
		}
		changes["fileKey"] = key
	}

	r, err = update(ctx, s.docs, backend.Reports, id, r, changes)
	if err != nil {
		return r, fail(ctx, "generate report", err)
	}
	log.Ctx(ctx).Info().Str("reportId", id).Int("rows", len(content.Rows)).Msg("Report generated")
	return r, nil
}

// RecordRetry puts a report back to pending after a failed attempt.
func (s *ReportService) RecordRetry(ctx context.Context, id string, retryCount int) error {
	_, err := s.docs.UpdateDocument(ctx, backend.Reports, id, map[string]any{
		"status":     model.ReportPending,
		"retryCount": retryCount,
	})
	return err
}

// MarkFailed records that a report will not be retried.
func (s *ReportService) MarkFailed(ctx context.Context, id string, retryCount int) (model.Report, error) {
	doc, err := s.docs.UpdateDocument(ctx, backend.Reports, id, map[string]any{
		"status":     model.ReportFailed,
		"retryCount": retryCount,
	})
	if err != nil {
		return model.Report{}, err
	}
	var r model.Report
	err = backend.Decode(doc, &r)
	return r, err
}

// Download returns the exported file of a completed report, from the file
// store when it was uploaded and rendered from its content otherwise.
func (s *ReportService) Download(ctx context.Context, id string) (export.File, error) {
	r, err := s.Get(ctx, id)
	if err != nil {
		return export.File{}, err
	}
	if r.Status != model.ReportCompleted || r.Content == nil {
		return export.File{}, ErrReportNotReady
	}

	file, err := export.Render(r)
	if err != nil {
		if errors.Is(err, export.ErrUnsupportedFormat) {
			return export.File{}, invalid("format", "PDF export is not supported. Choose Excel or CSV")
		}
		return export.File{}, fail(ctx, "export report", err)
	}
	if r.FileKey == "" || s.files == nil {
		return file, nil
	}

	var buf bytes.Buffer
	if err := s.files.Get(ctx, r.FileKey, &buf); err != nil {
		return export.File{}, fail(ctx, "download report", err)
	}
	file.Data = buf.Bytes()
	return file, nil
}
