// Package guardian implements the Trade Guardian: a five step assessment a
// planned trade must pass before it is added to the journal.
package guardian

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/trogers1052/trademind/internal/models"
	"github.com/trogers1052/trademind/internal/risk"
)

// Step is a position in the assessment sequence
type Step int

const (
	StepTradeDetails Step = iota + 1
	StepRiskAck
	StepSetupValidation
	StepEmotionCheck
	StepRulesAck
	StepApproved
)

var stepNames = map[Step]string{
	StepTradeDetails:    "Trade Details",
	StepRiskAck:         "Risk Assessment",
	StepSetupValidation: "Setup Validation",
	StepEmotionCheck:    "Emotion Check",
	StepRulesAck:        "Rules Check",
	StepApproved:        "Approved",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

// MinReasonLength is the minimum length, in characters, of the trade rationale
const MinReasonLength = 20

// SetupTypes are the selectable trade setups
var SetupTypes = []string{
	"Breakout",
	"Breakdown",
	"Pullback",
	"Reversal",
	"Trend Following",
	"Range Trade",
	"News Based",
	"Other",
}

// RiskAck is step 2
type RiskAck struct {
	RiskUnderstood         bool `json:"risk_understood"`
	AffordabilityConfirmed bool `json:"affordability_confirmed"`
	WithinLimitConfirmed   bool `json:"within_limit_confirmed"`
}

// SetupCheck is step 3
type SetupCheck struct {
	SetupType        string `json:"setup_type"`
	ChartAnalyzed    bool   `json:"chart_analyzed"`
	LevelsIdentified bool   `json:"levels_identified"`
	ValidReason      bool   `json:"valid_reason"`
	MatchesPlan      bool   `json:"matches_plan"`
	WouldRepeat      bool   `json:"would_repeat"`
	TradeReason      string `json:"trade_reason"`
}

// EmotionCheck is step 4
type EmotionCheck struct {
	Emotion         models.Emotion `json:"emotion"`
	NotFOMO         bool           `json:"not_fomo"`
	NotRevenge      bool           `json:"not_revenge"`
	NotGreedy       bool           `json:"not_greedy"`
	CalmState       bool           `json:"calm_state"`
	WillRespectStop bool           `json:"will_respect_stop"`
}

// Draft is the user-entered payload of an assessment
type Draft struct {
	Symbol            string              `json:"symbol"`
	TradeType         models.TradeType    `json:"trade_type"`
	Direction         models.Direction    `json:"direction"`
	Quantity          decimal.NullDecimal `json:"quantity"`
	EntryPrice        decimal.NullDecimal `json:"entry_price"`
	StopLoss          decimal.NullDecimal `json:"stop_loss"`
	TargetPrice       decimal.NullDecimal `json:"target_price"`
	Risk              RiskAck             `json:"risk"`
	Setup             SetupCheck          `json:"setup"`
	Emotion           EmotionCheck        `json:"emotion"`
	AcknowledgedRules []string            `json:"acknowledged_rules"`
}

// NewDraft returns an empty draft with the default trade type and direction
func NewDraft() Draft {
	return Draft{TradeType: models.TradeTypeEquity, Direction: models.Long}
}

func (d Draft) clone() Draft {
	c := d
	c.AcknowledgedRules = append([]string(nil), d.AcknowledgedRules...)
	return c
}

// Context is the user state a draft is evaluated against
type Context struct {
	ActiveRuleIDs     []string        `json:"active_rule_ids"`
	PerTradeRiskLimit decimal.Decimal `json:"per_trade_risk_limit"`
	DailyLossLimit    decimal.Decimal `json:"daily_loss_limit"`
	TodayRealizedLoss decimal.Decimal `json:"today_realized_loss"`
}

// Wizard is the assessment state machine. The zero value is not usable; use New.
type Wizard struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Step      Step      `json:"step"`
	Draft     Draft     `json:"draft"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// New creates a wizard at step 1 with an empty draft
func New(id, userID string, now time.Time) *Wizard {
	return &Wizard{
		ID:        id,
		UserID:    userID,
		Step:      StepTradeDetails,
		Draft:     NewDraft(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (w *Wizard) clone() *Wizard {
	c := *w
	c.Draft = w.Draft.clone()
	return &c
}

// Complete reports whether the predicate of step holds for the draft
func (d Draft) Complete(step Step, c Context) bool {
	switch step {
	case StepTradeDetails:
		return strings.TrimSpace(d.Symbol) != "" &&
			d.TradeType.Valid() && d.Direction.Valid() &&
			positive(d.Quantity) && positive(d.EntryPrice) &&
			positive(d.StopLoss) && positive(d.TargetPrice)
	case StepRiskAck:
		r := d.Risk
		return r.RiskUnderstood && r.AffordabilityConfirmed && r.WithinLimitConfirmed
	case StepSetupValidation:
		s := d.Setup
		return validSetup(s.SetupType) &&
			s.ChartAnalyzed && s.LevelsIdentified && s.ValidReason && s.MatchesPlan && s.WouldRepeat &&
			utf8.RuneCountInString(s.TradeReason) >= MinReasonLength
	case StepEmotionCheck:
		e := d.Emotion
		return e.Emotion.Valid() &&
			e.NotFOMO && e.NotRevenge && e.NotGreedy && e.CalmState && e.WillRespectStop
	case StepRulesAck:
		acked := make(map[string]struct{}, len(d.AcknowledgedRules))
		for _, id := range d.AcknowledgedRules {
			acked[id] = struct{}{}
		}
		for _, id := range c.ActiveRuleIDs {
			if _, ok := acked[id]; !ok {
				return false
			}
		}
		return true
	}
	return false
}

func positive(v decimal.NullDecimal) bool {
	return v.Valid && v.Decimal.IsPositive()
}

func validSetup(s string) bool {
	for _, t := range SetupTypes {
		if t == s {
			return true
		}
	}
	return false
}

// Approved reports whether the wizard reached the terminal step
func (w *Wizard) Approved() bool {
	return w.Step == StepApproved
}

// Next advances one step. Every step up to and including the current one must
// be complete, so edits to an earlier step cannot be carried forward unchecked.
func (w *Wizard) Next(c Context, now time.Time) error {
	if w.Approved() {
		return fmt.Errorf("next from %s: %w", w.Step, models.ErrTransition)
	}
	for s := StepTradeDetails; s <= w.Step; s++ {
		if !w.Draft.Complete(s, c) {
			return fmt.Errorf("%s: %w", s, models.ErrStepIncomplete)
		}
	}
	w.Step++
	w.UpdatedAt = now
	return nil
}

// Back returns to the previous step. It is refused on step 1 and once approved.
func (w *Wizard) Back(now time.Time) error {
	if w.Step == StepTradeDetails || w.Approved() {
		return fmt.Errorf("back from %s: %w", w.Step, models.ErrTransition)
	}
	w.Step--
	w.UpdatedAt = now
	return nil
}

// Reset discards the draft and returns to step 1
func (w *Wizard) Reset(now time.Time) {
	w.Step = StepTradeDetails
	w.Draft = NewDraft()
	w.UpdatedAt = now
}

// Update replaces the draft payload. An approved draft is frozen.
func (w *Wizard) Update(d Draft, now time.Time) error {
	if w.Approved() {
		return fmt.Errorf("edit approved draft: %w", models.ErrTransition)
	}
	w.Draft = d.clone()
	w.UpdatedAt = now
	return nil
}

// TradeCreator persists an assessed trade
type TradeCreator interface {
	NewTrade(ctx context.Context, userID string, in models.TradeInput) (*models.Trade, error)
}

// TradeInput builds the journal entry for an approved draft
func (w *Wizard) TradeInput() models.TradeInput {
	d := w.Draft
	setup := d.Setup.SetupType
	emotion := d.Emotion.Emotion
	notes := "Trade Reason: " + d.Setup.TradeReason
	return models.TradeInput{
		Symbol:       d.Symbol,
		TradeType:    d.TradeType,
		Direction:    d.Direction,
		Quantity:     d.Quantity.Decimal,
		EntryPrice:   d.EntryPrice.Decimal,
		StopLoss:     d.StopLoss,
		TargetPrice:  d.TargetPrice,
		SetupType:    &setup,
		EmotionEntry: &emotion,
		Notes:        &notes,
	}
}

// Commit persists the approved draft as a new OPEN trade. All predicates are
// checked again against c. The wizard is not modified, so a failed commit
// leaves the draft as it was.
func (w *Wizard) Commit(ctx context.Context, c Context, creator TradeCreator) (*models.Trade, error) {
	if !w.Approved() {
		return nil, fmt.Errorf("commit from %s: %w", w.Step, models.ErrTransition)
	}
	for s := StepTradeDetails; s < StepApproved; s++ {
		if !w.Draft.Complete(s, c) {
			return nil, fmt.Errorf("%s: %w", s, models.ErrStepIncomplete)
		}
	}
	trade, err := creator.NewTrade(ctx, w.UserID, w.TradeInput())
	if err != nil {
		return nil, fmt.Errorf("failed to commit assessment %s: %w", w.ID, err)
	}
	return trade, nil
}

// StepStatus is the completion state of one step
type StepStatus struct {
	Step     Step   `json:"step"`
	Name     string `json:"name"`
	Complete bool   `json:"complete"`
}

// Evaluation is the derived view of a wizard: per-step validity, the risk
// figures once trade details are complete, and advisory warnings.
type Evaluation struct {
	Steps      []StepStatus     `json:"steps"`
	CanProceed bool             `json:"can_proceed"`
	CanGoBack  bool             `json:"can_go_back"`
	Risk       *risk.Assessment `json:"risk,omitempty"`
	RiskError  string           `json:"risk_error,omitempty"`
	Warnings   []string         `json:"warnings"`
	Remaining  []string         `json:"unacknowledged_rules"`
}

// Evaluate computes the evaluation of w under c
func (w *Wizard) Evaluate(c Context) Evaluation {
	ev := Evaluation{
		CanGoBack: w.Step > StepTradeDetails && !w.Approved(),
		Warnings:  []string{},
		Remaining: []string{},
	}
	allPrior := true
	for s := StepTradeDetails; s < StepApproved; s++ {
		ok := w.Draft.Complete(s, c)
		ev.Steps = append(ev.Steps, StepStatus{Step: s, Name: s.String(), Complete: ok})
		if s <= w.Step && !ok {
			allPrior = false
		}
	}
	ev.CanProceed = !w.Approved() && allPrior

	if w.Draft.Complete(StepTradeDetails, c) {
		a, err := risk.Calculate(risk.Inputs{
			Direction:         w.Draft.Direction,
			Quantity:          w.Draft.Quantity.Decimal,
			EntryPrice:        w.Draft.EntryPrice.Decimal,
			StopLoss:          w.Draft.StopLoss.Decimal,
			TargetPrice:       w.Draft.TargetPrice.Decimal,
			PerTradeRiskLimit: c.PerTradeRiskLimit,
			DailyLossLimit:    c.DailyLossLimit,
			TodayRealizedLoss: c.TodayRealizedLoss,
		})
		if err != nil {
			ev.RiskError = err.Error()
		} else {
			ev.Risk = &a
			ev.Warnings = append(ev.Warnings, a.Warnings()...)
		}
	}

	switch w.Draft.Emotion.Emotion {
	case models.EmotionGreedy, models.EmotionFOMO, models.EmotionRevenge:
		ev.Warnings = append(ev.Warnings, fmt.Sprintf(
			"trading while feeling %s often leads to losses, consider stepping away",
			strings.ToLower(string(w.Draft.Emotion.Emotion))))
	}

	acked := make(map[string]bool, len(w.Draft.AcknowledgedRules))
	for _, id := range w.Draft.AcknowledgedRules {
		acked[id] = true
	}
	for _, id := range c.ActiveRuleIDs {
		if !acked[id] {
			ev.Remaining = append(ev.Remaining, id)
		}
	}
	return ev
}
