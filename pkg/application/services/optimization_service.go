package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vsinha/prodplan/pkg/domain/entities"
	"github.com/vsinha/prodplan/pkg/domain/repositories"
	domainservices "github.com/vsinha/prodplan/pkg/domain/services"
	"github.com/vsinha/prodplan/pkg/infrastructure/events"
	"github.com/vsinha/prodplan/pkg/infrastructure/metrics"
	"github.com/vsinha/prodplan/pkg/optimizer"
	"go.uber.org/zap"
)

// OptimizationRequest describes one optimization run
type OptimizationRequest struct {
	// SourceName labels the catalog source in events and logs
	SourceName  string
	Reservation map[entities.RawMaterialID]decimal.Decimal
	DemandCaps  map[entities.ProductID]entities.Quantity
	// SavePlan hands the plan to the plan repository, when one is configured
	SavePlan bool
}

// OptimizationRun is the outcome of a successful run
type OptimizationRun struct {
	RunID    string
	Result   *entities.OptimizationResult
	Duration time.Duration
	Saved    bool
}

// Option configures an OptimizationService
type Option func(*OptimizationService)

// WithEngine replaces the default engine
func WithEngine(engine *optimizer.Engine) Option {
	return func(s *OptimizationService) { s.engine = engine }
}

// WithPlanRepository sets the sink for saved plans
func WithPlanRepository(plans repositories.PlanRepository) Option {
	return func(s *OptimizationService) { s.plans = plans }
}

// WithEventStore publishes run events to store
func WithEventStore(store events.EventStore) Option {
	return func(s *OptimizationService) { s.eventStore = store }
}

// WithRecorder records run metrics
func WithRecorder(recorder *metrics.Recorder) Option {
	return func(s *OptimizationService) { s.recorder = recorder }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *OptimizationService) { s.logger = logger }
}

// WithRunIDGenerator overrides how run ids are minted
func WithRunIDGenerator(next func() string) Option {
	return func(s *OptimizationService) { s.newRunID = next }
}

// OptimizationService reads a catalog snapshot, runs the optimizer and
// reports the run through events, metrics and the plan repository
type OptimizationService struct {
	source     repositories.CatalogSource
	engine     *optimizer.Engine
	plans      repositories.PlanRepository
	eventStore events.EventStore
	recorder   *metrics.Recorder
	logger     *zap.Logger
	newRunID   func() string
}

// NewOptimizationService creates a service reading from source
func NewOptimizationService(source repositories.CatalogSource, opts ...Option) *OptimizationService {
	s := &OptimizationService{
		source:   source,
		logger:   zap.NewNop(),
		newRunID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = optimizer.NewEngineWithConfig(optimizer.EngineConfig{Logger: s.logger})
	}
	return s
}

// Optimize runs one optimization. Validation failures are returned as
// *domainservices.ValidationError and leave nothing saved.
func (s *OptimizationService) Optimize(ctx context.Context, req OptimizationRequest) (*OptimizationRun, error) {
	start := time.Now()
	runID := s.newRunID()
	logger := s.logger.With(zap.String("run_id", runID))

	snapshot, err := s.source.Snapshot(ctx)
	if err != nil {
		s.reject(runID, start, metrics.OutcomeError, err)
		logger.Error("failed to read catalog", zap.String("source", req.SourceName), zap.Error(err))
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	s.publish(runID, events.OptimizationStartedEvent, events.OptimizationStarted{
		Source:       req.SourceName,
		RawMaterials: len(snapshot.RawMaterials),
		Products:     len(snapshot.Products),
	})
	logger.Debug("catalog loaded",
		zap.String("source", req.SourceName),
		zap.Int("raw_materials", len(snapshot.RawMaterials)),
		zap.Int("products", len(snapshot.Products)))

	result, err := s.engine.Optimize(ctx, snapshot, optimizer.Request{
		Reservation: req.Reservation,
		DemandCaps:  req.DemandCaps,
	})
	if err != nil {
		outcome := metrics.OutcomeError
		var validationErr *domainservices.ValidationError
		if errors.As(err, &validationErr) {
			outcome = metrics.OutcomeRejected
		}
		s.reject(runID, start, outcome, err)
		logger.Warn("optimization rejected", zap.String("outcome", outcome), zap.Error(err))
		return nil, err
	}

	run := &OptimizationRun{RunID: runID, Result: result}

	if req.SavePlan && s.plans != nil {
		if err := s.plans.SavePlan(ctx, runID, result); err != nil {
			s.reject(runID, start, metrics.OutcomeError, err)
			logger.Error("failed to save plan", zap.Error(err))
			return nil, fmt.Errorf("failed to save plan: %w", err)
		}
		run.Saved = true
	}

	for _, entry := range result.Entries {
		s.publish(runID, events.ProductionPlannedEvent, events.ProductionPlanned{Entry: entry})
	}
	s.publish(runID, events.OptimizationCompletedEvent, events.OptimizationCompleted{
		GrandTotal:    result.GrandTotal,
		TotalProducts: result.TotalProducts,
		TotalUnits:    result.TotalUnits,
		UpperBound:    result.UpperBound,
	})

	run.Duration = time.Since(start)
	if s.recorder != nil {
		s.recorder.ObservePlan(run.Duration, result)
	}

	fields := []zap.Field{
		zap.Int("products", result.TotalProducts),
		zap.Int64("units", int64(result.TotalUnits)),
		zap.String("grand_total", result.GrandTotal.String()),
		zap.Duration("duration", run.Duration),
		zap.Bool("saved", run.Saved),
	}
	if result.UpperBound != nil {
		fields = append(fields, zap.String("upper_bound", result.UpperBound.String()))
	}
	logger.Info("optimization completed", fields...)

	return run, nil
}

func (s *OptimizationService) reject(runID string, start time.Time, outcome string, err error) {
	if s.recorder != nil {
		s.recorder.ObserveFailure(time.Since(start), outcome)
	}

	payload := events.OptimizationRejected{Reason: err.Error()}
	var validationErr *domainservices.ValidationError
	if errors.As(err, &validationErr) {
		payload.Reason = "invalid catalog"
		payload.Errors = append(payload.Errors, validationErr.Errors...)
	}
	s.publish(runID, events.OptimizationRejectedEvent, payload)
}

func (s *OptimizationService) publish(runID, eventType string, data interface{}) {
	if s.eventStore == nil {
		return
	}
	if err := s.eventStore.AppendEvent(runID, events.NewEvent(eventType, runID, data)); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("run_id", runID),
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}
