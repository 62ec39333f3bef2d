// Package recommendation implements the AI-assisted use cases: meal
// recommendations, nutrition analysis, custom menus, explanations and
// delivery route ordering. Each capability tries the generative gateway first
// and degrades silently to a deterministic fallback on any failure.
package recommendation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/deliveria/api/internal/domain/delivery"
	"github.com/deliveria/api/internal/domain/meal"
	"github.com/deliveria/api/internal/ports/inbound"
	"github.com/deliveria/api/internal/ports/outbound"
	apperrors "github.com/deliveria/api/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Capability names one generative use case.
type Capability string

const (
	CapabilityRecommendation Capability = "meal_recommendation"
	CapabilityExplanation    Capability = "explanation"
	CapabilityNutrition      Capability = "nutrition_analysis"
	CapabilityMenu           Capability = "custom_menu"
	CapabilityRoute          Capability = "route_ordering"
)

// Outcome records which path produced a capability's result.
type Outcome string

const (
	OutcomeGenerative       Outcome = "generative"
	OutcomeTransportFailure Outcome = "transport_failure"
	OutcomeEnvelopeFailure  Outcome = "envelope_failure"
	OutcomeBypassed         Outcome = "bypassed"
)

// Token budgets per capability; zero keeps the gateway default.
const (
	explanationMaxTokens = 100
	menuMaxTokens        = 2000
)

// Observer is notified of every capability outcome.
type Observer interface {
	ObserveGeneration(capability, outcome string)
}

type nopObserver struct{}

func (nopObserver) ObserveGeneration(string, string) {}

// Service is the recommendation orchestrator.
type Service struct {
	gateway  outbound.TextGenerator
	engine   *Engine
	enrich   enricher
	observer Observer
	tracer   trace.Tracer
	logger   *zap.Logger

	rnd RandomSource
	now func() time.Time
}

var _ inbound.Advisor = (*Service)(nil)

// Option customises a Service.
type Option func(*Service)

// WithRandomSource replaces the time-seeded random source.
func WithRandomSource(r RandomSource) Option {
	return func(s *Service) { s.rnd = r }
}

// WithClock replaces time.Now for route arrival times.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithObserver registers an outcome observer, typically the metrics collector.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// NewService wires an orchestrator. A nil gateway disables the generative
// path entirely: every capability goes straight to its fallback.
func NewService(gateway outbound.TextGenerator, knowledge *meal.Knowledge, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		gateway:  gateway,
		observer: nopObserver{},
		tracer:   otel.Tracer("github.com/deliveria/api/recommendation"),
		logger:   logger.Named("recommendation"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rnd == nil {
		s.rnd = NewTimeSeededSource()
	}
	s.engine = NewEngine(knowledge, s.rnd, s.now)
	s.enrich = enricher{rnd: s.rnd}

	if gateway == nil {
		s.logger.Warn("Generative gateway disabled, all capabilities will use deterministic fallbacks")
	}
	return s
}

// attempt runs one capability: gateway, then decode, falling back on any failure.
func attempt[T any](
	ctx context.Context,
	s *Service,
	capability Capability,
	prompt string,
	opts outbound.GenerateOptions,
	decode func(text string) (T, error),
	fallback func(ctx context.Context) T,
) T {
	ctx, span := s.tracer.Start(ctx, "recommendation."+string(capability))
	defer span.End()

	if s.gateway == nil {
		s.record(span, capability, OutcomeBypassed, nil)
		return fallback(ctx)
	}

	text, err := s.gateway.Generate(ctx, prompt, opts)
	if err != nil {
		outcome := OutcomeTransportFailure
		if errors.Is(err, outbound.ErrMalformedEnvelope) {
			outcome = OutcomeEnvelopeFailure
		}
		s.record(span, capability, outcome, err)
		return fallback(ctx)
	}

	value, err := decode(text)
	if err != nil {
		s.record(span, capability, OutcomeEnvelopeFailure, err)
		return fallback(ctx)
	}

	s.record(span, capability, OutcomeGenerative, nil)
	return value
}

func (s *Service) record(span trace.Span, capability Capability, outcome Outcome, cause error) {
	span.SetAttributes(
		attribute.String("recommendation.capability", string(capability)),
		attribute.String("recommendation.outcome", string(outcome)),
	)
	s.observer.ObserveGeneration(string(capability), string(outcome))

	if cause != nil {
		span.RecordError(cause)
		span.SetStatus(codes.Error, string(outcome))
		s.logger.Warn("Generative path failed, using fallback",
			zap.String("capability", string(capability)),
			zap.String("outcome", string(outcome)),
			zap.Error(cause),
		)
	}
}

// Recommend returns meals matching the request.
func (s *Service) Recommend(ctx context.Context, req meal.RecommendationRequest) ([]meal.Recommendation, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	recs := attempt(ctx, s, CapabilityRecommendation, recommendationPrompt(req), outbound.GenerateOptions{},
		func(text string) ([]meal.Recommendation, error) {
			var items []generatedItem
			if err := DecodePayload(text, ShapeArray, &items); err != nil {
				return nil, err
			}
			return s.enrich.recommendations(items)
		},
		func(ctx context.Context) []meal.Recommendation {
			recs := s.engine.RankMeals(req)
			for i := range recs {
				recs[i].Explanation = s.explain(ctx, recs[i])
			}
			s.enrich.finishRecommendations(recs)
			return recs
		},
	)

	if recs == nil {
		recs = []meal.Recommendation{}
	}
	return recs, nil
}

// explain produces a one-line reason for recommending rec.
func (s *Service) explain(ctx context.Context, rec meal.Recommendation) string {
	return attempt(ctx, s, CapabilityExplanation, explanationPrompt(rec),
		outbound.GenerateOptions{MaxTokens: explanationMaxTokens},
		func(text string) (string, error) {
			text = strings.TrimSpace(text)
			if text == "" {
				return "", ErrNoPayload
			}
			return text, nil
		},
		func(context.Context) string {
			return s.engine.TemplateExplanation(rec.Nutrition)
		},
	)
}

// AnalyzeNutrition estimates the totals for a list of ingredients.
func (s *Service) AnalyzeNutrition(ctx context.Context, ingredients []string) (meal.Nutrition, error) {
	n := attempt(ctx, s, CapabilityNutrition, nutritionPrompt(ingredients), outbound.GenerateOptions{},
		func(text string) (meal.Nutrition, error) {
			var n meal.Nutrition
			if err := DecodePayload(text, ShapeObject, &n); err != nil {
				return meal.Nutrition{}, err
			}
			if err := n.Validate(); err != nil {
				return meal.Nutrition{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
			}
			return n, nil
		},
		func(context.Context) meal.Nutrition {
			return s.engine.SumNutrition(ingredients)
		},
	)
	return n, nil
}

// OptimizeRoute orders the delivery points.
func (s *Service) OptimizeRoute(ctx context.Context, start delivery.Coordinates, points []delivery.Point) (*delivery.Route, error) {
	if err := start.Validate(); err != nil {
		return nil, apperrors.NewValidationError("starting_point: " + err.Error())
	}
	for i, p := range points {
		if err := p.Validate(); err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("delivery_points[%d]: %v", i, err))
		}
	}

	route := &delivery.Route{StartingPoint: start}
	if len(points) == 0 {
		route.OptimizedRoute = []delivery.Stop{}
		return route, nil
	}

	route.OptimizedRoute = attempt(ctx, s, CapabilityRoute, routePrompt(start, points), outbound.GenerateOptions{},
		func(text string) ([]delivery.Stop, error) {
			var stops []delivery.Stop
			if err := DecodePayload(text, ShapeArray, &stops); err != nil {
				return nil, err
			}
			for i, stop := range stops {
				if stop.TravelTimeMinutes < 0 {
					return nil, fmt.Errorf("%w: stop %d has negative travel time", ErrMalformedPayload, i)
				}
			}
			return stops, nil
		},
		func(context.Context) []delivery.Stop {
			return s.engine.RouteFallback(points)
		},
	)
	return route, nil
}

// CustomMenu builds a personalised menu from free-text preferences.
func (s *Service) CustomMenu(ctx context.Context, req meal.MenuRequest) ([]meal.MenuItem, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	items := attempt(ctx, s, CapabilityMenu, menuPrompt(req), outbound.GenerateOptions{MaxTokens: menuMaxTokens},
		func(text string) ([]meal.MenuItem, error) {
			var generated []generatedItem
			if err := DecodePayload(text, ShapeArray, &generated); err != nil {
				return nil, err
			}
			return s.enrich.menu(generated)
		},
		func(context.Context) []meal.MenuItem {
			return s.engine.StaticMenu(req.Preferences, req.ItemCount)
		},
	)

	if len(items) == 0 {
		return nil, apperrors.NewInternalError("Não foi possível gerar cardápio personalizado")
	}
	s.enrich.finishMenu(items)
	return items, nil
}

// Passthrough forwards a raw prompt to the gateway for diagnostics.
func (s *Service) Passthrough(ctx context.Context, prompt string, opts outbound.GenerateOptions) (string, error) {
	if s.gateway == nil {
		return "", apperrors.NewGatewayUnconfiguredError()
	}

	text, err := s.gateway.Generate(ctx, prompt, opts)
	if err != nil {
		s.logger.Warn("Gateway passthrough failed", zap.Error(err))
		return "", apperrors.NewInternalError("Sem resposta da API do Groq").WithCause(err)
	}
	if strings.TrimSpace(text) == "" {
		return "", apperrors.NewInternalError("Sem resposta da API do Groq")
	}
	return text, nil
}
