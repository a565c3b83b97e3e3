package cards

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/graduation-masterpiece/demo-repository/internal/observability"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/apierr"
	"github.com/graduation-masterpiece/demo-repository/internal/platform/logger"
)

// sagaStep is one fallible stage of card generation. compensate, when set,
// undoes the step's external side effect and runs only if a later step fails.
type sagaStep struct {
	name       string
	run        func(ctx context.Context) error
	compensate func(ctx context.Context) error
}

// saga runs steps in order and stops at the first failure. There are no
// retries; the caller resubmits.
type saga struct {
	log    *logger.Logger
	tracer trace.Tracer
	attrs  []attribute.KeyValue
	done   []sagaStep
}

func newSaga(log *logger.Logger, tracer trace.Tracer, attrs ...attribute.KeyValue) *saga {
	return &saga{log: log, tracer: tracer, attrs: attrs}
}

// execute returns the failing step's error tagged with its stage.
func (s *saga) execute(ctx context.Context, steps ...sagaStep) error {
	for _, st := range steps {
		if err := s.runStep(ctx, st); err != nil {
			s.compensate(ctx)
			return err
		}
		s.done = append(s.done, st)
	}
	return nil
}

func (s *saga) runStep(ctx context.Context, st sagaStep) error {
	ctx, span := s.tracer.Start(ctx, "cards."+st.name, trace.WithAttributes(s.attrs...))
	defer span.End()

	start := time.Now()
	err := st.run(ctx)
	if err == nil {
		observability.Current().ObserveCardStage(st.name, "ok", time.Since(start))
		return nil
	}
	ae := apierr.As(err).WithStage(st.name)
	observability.Current().ObserveCardStage(st.name, string(ae.Code), time.Since(start))
	span.RecordError(err)
	span.SetStatus(codes.Error, string(ae.Code))
	return ae
}

func (s *saga) compensate(ctx context.Context) {
	// Compensation must run even when the request was cancelled.
	ctx = context.WithoutCancel(ctx)
	for i := len(s.done) - 1; i >= 0; i-- {
		st := s.done[i]
		if st.compensate == nil {
			continue
		}
		if err := st.compensate(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Warn("saga compensation failed (ignored)", "step", st.name, "error", err)
			continue
		}
		s.log.Debug("saga step compensated", "step", st.name)
	}
	s.done = nil
}
