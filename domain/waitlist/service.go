package waitlist

import (
	"context"
	"time"

	"github.com/akeren/trustlink-waitlist/internal/log"
	"github.com/akeren/trustlink-waitlist/internal/models"
	"github.com/akeren/trustlink-waitlist/pkg/constants"
	apperrors "github.com/akeren/trustlink-waitlist/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/akeren/trustlink-waitlist/domain/waitlist")

type WaitlistService interface {
	// Signup validates, normalizes and stores a public submission.
	Signup(ctx context.Context, req *SignupRequest) (*SignupResponse, error)

	// List returns a filtered page plus the unfiltered total.
	List(ctx context.Context, query ListQuery) (*ListResponse, error)

	// Stats reads the aggregate views and the total on every call.
	Stats(ctx context.Context) (*StatsResponse, error)

	// MarkNotified flags an entry as notified and optionally replaces its notes.
	MarkNotified(ctx context.Context, id uint, req *NotifyRequest) (*models.WaitlistEntry, error)

	// Export renders matching entries as a CSV download.
	Export(ctx context.Context, actorType string) (*ExportFile, error)
}

type waitlistService struct {
	logger     *log.Logger
	repository WaitlistRepository
	validator  *signupValidator
	metrics    *Metrics
	now        func() time.Time
}

func NewWaitlistService(logger *log.Logger, repository WaitlistRepository, metrics *Metrics) WaitlistService {
	return &waitlistService{
		logger:     logger,
		repository: repository,
		validator:  newSignupValidator(),
		metrics:    metrics,
		now:        time.Now,
	}
}

func (s *waitlistService) Signup(ctx context.Context, req *SignupRequest) (*SignupResponse, error) {
	ctx, span := tracer.Start(ctx, "waitlist.Signup")
	defer span.End()

	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		req = &SignupRequest{}
	}

	normalized := *req
	normalized.Email = NormalizeEmail(req.Email)

	actorLabel := normalized.ActorType
	if !models.IsValidActorType(actorLabel) {
		actorLabel = "unknown"
	}
	span.SetAttributes(attribute.String("waitlist.actor_type", actorLabel))

	if err := s.validator.Validate(&normalized, req.Email); err != nil {
		logger.Warn("Rejected waitlist signup",
			"reason", apperrors.GetHumanReadableMessage(err, ""),
			"fields", apperrors.FormatValidationErrors(err, &normalized),
			"actor_type", actorLabel,
		)
		s.metrics.observeSignup(actorLabel, outcomeInvalid)
		return nil, err
	}

	entry, err := s.repository.CreateEntry(ctx, ToWaitlistEntryModel(&normalized))
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeConflict) {
			logger.Info("Duplicate waitlist signup", "actor_type", actorLabel)
			s.metrics.observeSignup(actorLabel, outcomeDuplicate)
			return nil, apperrors.NewConflictError(msgEmailRegistered, err).
				WithDetail("message", msgAlreadyOnWaitlist)
		}

		logger.Error("Failed to create waitlist entry", "error", err)
		s.metrics.observeSignup(actorLabel, outcomeError)
		recordSpanError(span, err)
		return nil, err
	}

	logger.Info("New waitlist signup", "id", entry.ID, "actor_type", entry.ActorType)
	s.metrics.observeSignup(actorLabel, outcomeSuccess)

	response := ToSignupResponse(entry)
	return &response, nil
}

func (s *waitlistService) List(ctx context.Context, query ListQuery) (*ListResponse, error) {
	ctx, span := tracer.Start(ctx, "waitlist.List")
	defer span.End()

	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)
	span.SetAttributes(
		attribute.Int("waitlist.limit", query.Page.Limit),
		attribute.Int("waitlist.offset", query.Page.Offset),
	)

	entries, err := s.repository.ListEntries(ctx, query.Filter, query.Page)
	if err != nil {
		logger.Error("Failed to list waitlist entries", "error", err)
		recordSpanError(span, err)
		return nil, err
	}

	total, err := s.repository.CountEntries(ctx)
	if err != nil {
		logger.Error("Failed to count waitlist entries", "error", err)
		recordSpanError(span, err)
		return nil, err
	}

	return &ListResponse{
		Total:  total,
		Count:  len(entries),
		Limit:  query.Page.Limit,
		Offset: query.Page.Offset,
		Data:   emptyIfNil(entries),
	}, nil
}

func (s *waitlistService) Stats(ctx context.Context) (*StatsResponse, error) {
	ctx, span := tracer.Start(ctx, "waitlist.Stats")
	defer span.End()

	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	byActorType, err := s.repository.CountByActorType(ctx)
	if err != nil {
		logger.Error("Failed to read actor type stats", "error", err)
		recordSpanError(span, err)
		return nil, err
	}

	topCities, err := s.repository.TopCities(ctx, constants.TopCitiesLimit)
	if err != nil {
		logger.Error("Failed to read city stats", "error", err)
		recordSpanError(span, err)
		return nil, err
	}

	total, err := s.repository.CountEntries(ctx)
	if err != nil {
		logger.Error("Failed to count waitlist entries", "error", err)
		recordSpanError(span, err)
		return nil, err
	}

	return &StatsResponse{
		Total:       total,
		ByActorType: emptyIfNil(byActorType),
		TopCities:   emptyIfNil(topCities),
	}, nil
}

func (s *waitlistService) MarkNotified(ctx context.Context, id uint, req *NotifyRequest) (*models.WaitlistEntry, error) {
	ctx, span := tracer.Start(ctx, "waitlist.MarkNotified", trace.WithAttributes(attribute.Int64("waitlist.id", int64(id))))
	defer span.End()

	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if id == 0 {
		logger.Warn("MarkNotified received invalid ID")
		return nil, apperrors.NewInvalidRequestError("Invalid ID parameter", nil)
	}

	var notes *string
	if req != nil {
		notes = req.Notes
	}

	entry, err := s.repository.MarkNotified(ctx, id, notes)
	if err != nil {
		if apperrors.IsType(err, apperrors.ErrorTypeNotFound) {
			logger.Info("Notify target not found", "id", id)
			s.metrics.observeNotify(outcomeNotFound)
			return nil, err
		}

		logger.Error("Failed to mark waitlist entry notified", "id", id, "error", err)
		s.metrics.observeNotify(outcomeError)
		recordSpanError(span, err)
		return nil, err
	}

	logger.Info("Waitlist entry marked notified", "id", id, "notes_updated", notes != nil)
	s.metrics.observeNotify(outcomeSuccess)

	return entry, nil
}

func (s *waitlistService) Export(ctx context.Context, actorType string) (*ExportFile, error) {
	ctx, span := tracer.Start(ctx, "waitlist.Export", trace.WithAttributes(attribute.String("waitlist.actor_type", actorType)))
	defer span.End()

	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	entries, err := s.repository.ExportEntries(ctx, actorType)
	if err != nil {
		logger.Error("Failed to export waitlist entries", "error", err)
		s.metrics.observeExport(outcomeError, 0)
		recordSpanError(span, err)
		return nil, err
	}

	file := &ExportFile{
		Filename:    exportFilename(s.now()),
		ContentType: csvContentType,
		Content:     renderCSV(entries),
		Rows:        len(entries),
	}

	logger.Info("Waitlist exported", "rows", file.Rows, "actor_type", actorType)
	s.metrics.observeExport(outcomeSuccess, file.Rows)

	return file, nil
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, apperrors.GetErrorType(err))
}
