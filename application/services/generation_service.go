package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"journeymap/application/assembler"
	"journeymap/application/extraction"
	"journeymap/application/ports"
	"journeymap/domain/core/aggregates"
	"journeymap/domain/core/valueobjects"
	pkgerrors "journeymap/pkg/errors"
	"go.uber.org/zap"
)

// Progress event types sent to a streaming client. Category events use
// the category name, e.g. "actors" or "edges".
const (
	EventStart    = "start"
	EventLayout   = "layout"
	EventComplete = "complete"
	EventError    = "error"
)

// GenerationRequest describes one journey to generate
type GenerationRequest struct {
	JourneyID valueobjects.JourneyID
	OwnerID   string
	Title     string
	Scenario  string
}

// StartPayload is the data of the start event
type StartPayload struct {
	JourneyID string `json:"journeyId"`
	Title     string `json:"title"`
}

// ErrorPayload is the data of the error event
type ErrorPayload struct {
	Message string `json:"message"`
}

// GenerationService runs the extraction pipeline for a scenario and stores
// the resulting journey
type GenerationService struct {
	source    ports.ExtractionSource
	extractor *extraction.Extractor
	assembler *assembler.Assembler
	repo      ports.JourneyRepository
	publisher ports.EventPublisher
	metrics   ports.Metrics
	logger    *zap.Logger
}

// NewGenerationService creates a new generation service
func NewGenerationService(
	source ports.ExtractionSource,
	extractor *extraction.Extractor,
	asm *assembler.Assembler,
	repo ports.JourneyRepository,
	publisher ports.EventPublisher,
	metrics ports.Metrics,
	logger *zap.Logger,
) *GenerationService {
	return &GenerationService{
		source:    source,
		extractor: extractor,
		assembler: asm,
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

// Generate extracts the whole answer, then assembles and saves the journey
func (s *GenerationService) Generate(ctx context.Context, req GenerationRequest) (*aggregates.Journey, assembler.Report, error) {
	start := time.Now()

	journey, report, err := s.generate(ctx, req)
	s.recordGeneration("oneshot", err, time.Since(start))
	if err != nil {
		return nil, report, err
	}
	return journey, report, nil
}

func (s *GenerationService) generate(ctx context.Context, req GenerationRequest) (*aggregates.Journey, assembler.Report, error) {
	stream, err := s.source.Open(ctx, ports.ExtractionRequest{Scenario: req.Scenario, Title: req.Title})
	if err != nil {
		return nil, assembler.Report{}, fmt.Errorf("failed to open extraction stream: %w", err)
	}

	result, err := s.extractor.Collect(ctx, stream)
	if err != nil {
		return nil, assembler.Report{}, fmt.Errorf("extraction failed: %w", err)
	}

	journey, report, err := s.assembler.Assemble(s.meta(req), result)
	if err != nil {
		return nil, report, fmt.Errorf("failed to assemble journey: %w", err)
	}
	s.logReport(journey, report)

	if err := s.persist(ctx, journey); err != nil {
		return nil, report, err
	}
	return journey, report, nil
}

// Stream generates a journey while pushing every category to sink as soon
// as it is laid out. The sink sees start, category events and then either
// complete with the saved journey or a single error. A failing sink stops
// the extraction.
func (s *GenerationService) Stream(ctx context.Context, req GenerationRequest, sink ports.EventSink) (*aggregates.Journey, error) {
	start := time.Now()

	journey, err := s.stream(ctx, req, sink)
	s.recordGeneration("stream", err, time.Since(start))
	return journey, err
}

func (s *GenerationService) stream(ctx context.Context, req GenerationRequest, sink ports.EventSink) (*aggregates.Journey, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	session := s.assembler.NewSession(s.meta(req))
	logger := s.logger.With(zap.String("journeyID", session.JourneyID().String()))

	if err := sink.Send(ctx, EventStart, StartPayload{JourneyID: session.JourneyID().String(), Title: req.Title}); err != nil {
		return nil, fmt.Errorf("failed to send start event: %w", err)
	}

	stream, err := s.source.Open(ctx, ports.ExtractionRequest{Scenario: req.Scenario, Title: req.Title})
	if err != nil {
		s.sendError(ctx, sink, err, logger)
		return nil, fmt.Errorf("failed to open extraction stream: %w", err)
	}

	var sinkErr error
	runErr := s.extractor.Run(ctx, stream, func(ev extraction.Event) {
		if sinkErr != nil {
			return
		}
		updates, err := session.Apply(ev)
		if err != nil {
			// Failed events surface through Run's return value
			return
		}
		for _, u := range updates {
			if err := s.sendUpdate(ctx, sink, u); err != nil {
				sinkErr = err
				cancel()
				return
			}
		}
	})

	if sinkErr != nil {
		logger.Info("Client went away, generation stopped", zap.Error(sinkErr))
		return nil, fmt.Errorf("failed to send progress: %w", sinkErr)
	}
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
			logger.Info("Generation cancelled", zap.Error(runErr))
			return nil, runErr
		}
		s.sendError(ctx, sink, runErr, logger)
		return nil, fmt.Errorf("extraction failed: %w", runErr)
	}

	journey, report, err := session.Finish()
	if err != nil {
		s.sendError(ctx, sink, err, logger)
		return nil, fmt.Errorf("failed to assemble journey: %w", err)
	}
	s.logReport(journey, report)

	if err := s.persist(ctx, journey); err != nil {
		s.sendError(ctx, sink, err, logger)
		return nil, err
	}

	if err := sink.Send(ctx, EventComplete, journey); err != nil {
		logger.Warn("Failed to send complete event", zap.Error(err))
	}
	return journey, nil
}

func (s *GenerationService) sendUpdate(ctx context.Context, sink ports.EventSink, u assembler.Update) error {
	if err := sink.Send(ctx, u.Category.String(), u.Items); err != nil {
		return err
	}
	if u.Grid != nil {
		return sink.Send(ctx, EventLayout, u.Grid)
	}
	return nil
}

func (s *GenerationService) sendError(ctx context.Context, sink ports.EventSink, err error, logger *zap.Logger) {
	if sendErr := sink.Send(ctx, EventError, ErrorPayload{Message: UserMessage(err)}); sendErr != nil {
		logger.Warn("Failed to send error event", zap.Error(sendErr))
	}
}

// UserMessage turns a pipeline error into one human-readable sentence
func UserMessage(err error) string {
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		return appErr.Message
	}
	if domainErr := pkgerrors.GetDomainError(err); domainErr != nil {
		return domainErr.Message
	}
	return "Journey generation failed, please try again"
}

func (s *GenerationService) persist(ctx context.Context, journey *aggregates.Journey) error {
	if err := s.repo.Save(ctx, journey); err != nil {
		return fmt.Errorf("failed to save journey: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishBatch(ctx, journey.GetUncommittedEvents()); err != nil {
			s.logger.Warn("Failed to publish journey events",
				zap.String("journeyID", journey.ID().String()),
				zap.Error(err),
			)
		}
	}
	journey.MarkEventsAsCommitted()
	return nil
}

func (s *GenerationService) meta(req GenerationRequest) assembler.Meta {
	return assembler.Meta{
		JourneyID: req.JourneyID,
		OwnerID:   req.OwnerID,
		Title:     req.Title,
		Scenario:  req.Scenario,
		Now:       time.Now().UTC(),
	}
}

func (s *GenerationService) logReport(journey *aggregates.Journey, report assembler.Report) {
	if report.Clean() {
		return
	}
	s.logger.Warn("Journey assembled with low-confidence references",
		zap.String("journeyID", journey.ID().String()),
		zap.Int("fallbacks", report.Fallbacks()),
		zap.Int("dropped", len(report.Dropped)),
	)
}

func (s *GenerationService) recordGeneration(mode string, err error, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		outcome = "cancelled"
	default:
		outcome = "error"
	}
	s.metrics.RecordGeneration(mode, outcome, elapsed.Seconds())
}
