package guardian

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/trogers1052/trademind/internal/clock"
	"github.com/trogers1052/trademind/internal/metrics"
	"github.com/trogers1052/trademind/internal/models"
)

// Backend supplies the user state drafts are evaluated against and persists
// approved trades.
type Backend interface {
	TradeCreator
	AssessmentContext(ctx context.Context, userID string) (Context, error)
}

// View is a wizard together with its evaluation
type View struct {
	*Wizard
	Evaluation Evaluation `json:"evaluation"`
	Context    Context    `json:"context"`
}

// Service drives per-user assessments
type Service struct {
	drafts  *DraftStore
	backend Backend
	now     clock.Clock
	logger  zerolog.Logger
}

// NewService creates a guardian service
func NewService(drafts *DraftStore, backend Backend, now clock.Clock, logger zerolog.Logger) *Service {
	return &Service{
		drafts:  drafts,
		backend: backend,
		now:     now,
		logger:  logger.With().Str("component", "guardian").Logger(),
	}
}

// Start begins a new assessment, discarding any previous draft of the user
func (s *Service) Start(ctx context.Context, userID string) (*View, error) {
	w, err := s.drafts.Create(userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, w)
}

// Current returns the user's in-progress assessment
func (s *Service) Current(ctx context.Context, userID string) (*View, error) {
	w, err := s.drafts.Current(userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, w)
}

// Get returns one assessment
func (s *Service) Get(ctx context.Context, userID, id string) (*View, error) {
	w, err := s.drafts.Get(userID, id)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, w)
}

// Update replaces the draft payload
func (s *Service) Update(ctx context.Context, userID, id string, d Draft) (*View, error) {
	w, err := s.drafts.Mutate(userID, id, func(w *Wizard) error {
		return w.Update(d, s.now())
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, w)
}

// Next advances the assessment one step
func (s *Service) Next(ctx context.Context, userID, id string) (*View, error) {
	c, err := s.backend.AssessmentContext(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assessment context: %w", err)
	}
	w, err := s.drafts.Mutate(userID, id, func(w *Wizard) error {
		step := w.Step
		err := w.Next(c, s.now())
		metrics.ObserveGate(int(step), err == nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.viewWith(w, c), nil
}

// Back moves the assessment one step back
func (s *Service) Back(ctx context.Context, userID, id string) (*View, error) {
	w, err := s.drafts.Mutate(userID, id, func(w *Wizard) error {
		return w.Back(s.now())
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, w)
}

// Reset clears the draft and returns it to step 1
func (s *Service) Reset(ctx context.Context, userID, id string) (*View, error) {
	w, err := s.drafts.Mutate(userID, id, func(w *Wizard) error {
		w.Reset(s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(ctx, w)
}

// Discard drops the user's draft
func (s *Service) Discard(userID string) {
	s.drafts.Delete(userID)
}

// Commit adds the approved draft to the journal as an OPEN trade. On failure
// the draft is kept so the user can retry.
func (s *Service) Commit(ctx context.Context, userID, id string) (*models.Trade, error) {
	c, err := s.backend.AssessmentContext(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assessment context: %w", err)
	}

	w, err := s.drafts.Take(userID, id)
	if err != nil {
		return nil, err
	}
	trade, err := w.Commit(ctx, c, s.backend)
	if err != nil {
		s.drafts.Restore(w)
		metrics.GuardianCommits.WithLabelValues("failed").Inc()
		s.logger.Error().Err(err).Str("user_id", userID).Str("draft_id", id).Msg("assessment commit failed")
		return nil, err
	}

	metrics.GuardianCommits.WithLabelValues("committed").Inc()
	s.logger.Info().Str("user_id", userID).Str("draft_id", id).Str("trade_id", trade.ID).
		Str("symbol", trade.Symbol).Msg("assessed trade added to journal")
	return trade, nil
}

func (s *Service) view(ctx context.Context, w *Wizard) (*View, error) {
	c, err := s.backend.AssessmentContext(ctx, w.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assessment context: %w", err)
	}
	return s.viewWith(w, c), nil
}

func (s *Service) viewWith(w *Wizard, c Context) *View {
	return &View{Wizard: w, Evaluation: w.Evaluate(c), Context: c}
}
