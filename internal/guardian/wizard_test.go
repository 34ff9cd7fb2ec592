package guardian

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/trademind/internal/models"
)

var t0 = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func num(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(v))
}

func testContext() Context {
	return Context{
		ActiveRuleIDs:     []string{"r1", "r2"},
		PerTradeRiskLimit: decimal.NewFromInt(5000),
		DailyLossLimit:    decimal.NewFromInt(10000),
	}
}

func completeDraft() Draft {
	d := NewDraft()
	d.Symbol = "nifty"
	d.Quantity = num("50")
	d.EntryPrice = num("24500")
	d.StopLoss = num("24400")
	d.TargetPrice = num("24700")
	d.Risk = RiskAck{RiskUnderstood: true, AffordabilityConfirmed: true, WithinLimitConfirmed: true}
	d.Setup = SetupCheck{
		SetupType:        "Breakout",
		ChartAnalyzed:    true,
		LevelsIdentified: true,
		ValidReason:      true,
		MatchesPlan:      true,
		WouldRepeat:      true,
		TradeReason:      "Clean breakout above prior day high",
	}
	d.Emotion = EmotionCheck{
		Emotion:         models.EmotionCalm,
		NotFOMO:         true,
		NotRevenge:      true,
		NotGreedy:       true,
		CalmState:       true,
		WillRespectStop: true,
	}
	d.AcknowledgedRules = []string{"r1", "r2"}
	return d
}

func advanceTo(t *testing.T, w *Wizard, c Context, step Step) {
	t.Helper()
	for w.Step < step {
		require.NoError(t, w.Next(c, t0))
	}
}

func TestWizard_StartsAtStepOne(t *testing.T) {
	w := New("d1", "u1", t0)
	assert.Equal(t, StepTradeDetails, w.Step)
	assert.Equal(t, models.TradeTypeEquity, w.Draft.TradeType)
	assert.Equal(t, models.Long, w.Draft.Direction)
	assert.False(t, w.Approved())
}

func TestWizard_Step1RequiresAllNumbers(t *testing.T) {
	c := testContext()
	d := completeDraft()
	assert.True(t, d.Complete(StepTradeDetails, c))

	d.Symbol = "   "
	assert.False(t, d.Complete(StepTradeDetails, c))

	d = completeDraft()
	d.TargetPrice = decimal.NullDecimal{}
	assert.False(t, d.Complete(StepTradeDetails, c))

	d = completeDraft()
	d.Quantity = num("0")
	assert.False(t, d.Complete(StepTradeDetails, c))
}

func TestWizard_NextBlockedUntilStepComplete(t *testing.T) {
	c := testContext()
	w := New("d1", "u1", t0)

	err := w.Next(c, t0)
	assert.ErrorIs(t, err, models.ErrStepIncomplete)
	assert.Equal(t, StepTradeDetails, w.Step)

	d := NewDraft()
	d.Symbol = "NIFTY"
	d.Quantity, d.EntryPrice, d.StopLoss, d.TargetPrice = num("50"), num("24500"), num("24400"), num("24700")
	require.NoError(t, w.Update(d, t0))
	require.NoError(t, w.Next(c, t0))
	assert.Equal(t, StepRiskAck, w.Step)

	assert.ErrorIs(t, w.Next(c, t0), models.ErrStepIncomplete)
}

func TestWizard_ReasonLengthBoundary(t *testing.T) {
	c := testContext()
	w := New("d1", "u1", t0)
	d := completeDraft()
	d.Setup.TradeReason = strings.Repeat("x", 19)
	require.NoError(t, w.Update(d, t0))
	advanceTo(t, w, c, StepSetupValidation)

	assert.ErrorIs(t, w.Next(c, t0), models.ErrStepIncomplete)
	assert.Equal(t, StepSetupValidation, w.Step)

	d.Setup.TradeReason = strings.Repeat("x", 20)
	require.NoError(t, w.Update(d, t0))
	require.NoError(t, w.Next(c, t0))
	assert.Equal(t, StepEmotionCheck, w.Step)
}

func TestWizard_ReasonCountsCharactersNotBytes(t *testing.T) {
	d := completeDraft()
	d.Setup.TradeReason = strings.Repeat("₹", 19)
	assert.False(t, d.Complete(StepSetupValidation, testContext()))
	d.Setup.TradeReason = strings.Repeat("₹", 20)
	assert.True(t, d.Complete(StepSetupValidation, testContext()))
}

func TestWizard_SetupTypeMustBeKnown(t *testing.T) {
	d := completeDraft()
	d.Setup.SetupType = "Gut Feeling"
	assert.False(t, d.Complete(StepSetupValidation, testContext()))
}

func TestWizard_EmotionCheck(t *testing.T) {
	c := testContext()
	d := completeDraft()
	assert.True(t, d.Complete(StepEmotionCheck, c))

	d.Emotion.Emotion = ""
	assert.False(t, d.Complete(StepEmotionCheck, c))

	d = completeDraft()
	d.Emotion.WillRespectStop = false
	assert.False(t, d.Complete(StepEmotionCheck, c))
}

func TestWizard_RulesAckSuperset(t *testing.T) {
	c := testContext()
	d := completeDraft()

	d.AcknowledgedRules = []string{"r1"}
	assert.False(t, d.Complete(StepRulesAck, c))

	d.AcknowledgedRules = []string{"r2", "r1"}
	assert.True(t, d.Complete(StepRulesAck, c))

	// acknowledgements for rules that are no longer active do not block
	d.AcknowledgedRules = []string{"r1", "r2", "retired"}
	assert.True(t, d.Complete(StepRulesAck, c))

	d.AcknowledgedRules = nil
	assert.True(t, d.Complete(StepRulesAck, Context{}))
}

func TestWizard_FullRunToApproved(t *testing.T) {
	c := testContext()
	w := New("d1", "u1", t0)
	require.NoError(t, w.Update(completeDraft(), t0))

	advanceTo(t, w, c, StepApproved)
	assert.True(t, w.Approved())

	assert.ErrorIs(t, w.Next(c, t0), models.ErrTransition)
	assert.ErrorIs(t, w.Back(t0), models.ErrTransition)
	assert.ErrorIs(t, w.Update(completeDraft(), t0), models.ErrTransition)
}

func TestWizard_NextRechecksEarlierSteps(t *testing.T) {
	c := testContext()
	w := New("d1", "u1", t0)
	require.NoError(t, w.Update(completeDraft(), t0))
	advanceTo(t, w, c, StepSetupValidation)

	d := completeDraft()
	d.Risk.WithinLimitConfirmed = false
	require.NoError(t, w.Update(d, t0))
	assert.ErrorIs(t, w.Next(c, t0), models.ErrStepIncomplete)
}

func TestWizard_Back(t *testing.T) {
	c := testContext()
	w := New("d1", "u1", t0)
	assert.ErrorIs(t, w.Back(t0), models.ErrTransition)

	require.NoError(t, w.Update(completeDraft(), t0))
	advanceTo(t, w, c, StepEmotionCheck)
	require.NoError(t, w.Back(t0))
	assert.Equal(t, StepSetupValidation, w.Step)
}

func TestWizard_Reset(t *testing.T) {
	c := testContext()
	w := New("d1", "u1", t0)
	require.NoError(t, w.Update(completeDraft(), t0))
	advanceTo(t, w, c, StepApproved)

	w.Reset(t0)
	assert.Equal(t, StepTradeDetails, w.Step)
	assert.Equal(t, NewDraft(), w.Draft)
}

func TestWizard_EvaluateAdvisoryBreach(t *testing.T) {
	c := testContext()
	c.PerTradeRiskLimit = decimal.NewFromInt(1000)

	w := New("d1", "u1", t0)
	require.NoError(t, w.Update(completeDraft(), t0))
	ev := w.Evaluate(c)

	require.NotNil(t, ev.Risk)
	assert.True(t, ev.Risk.RiskAmount.Equal(decimal.NewFromInt(5000)))
	assert.True(t, ev.Risk.ExceedsPerTradeRisk)
	assert.NotEmpty(t, ev.Warnings)
	assert.True(t, ev.CanProceed)

	// a breach never blocks the risk acknowledgment step
	advanceTo(t, w, c, StepSetupValidation)
}

func TestWizard_EvaluateZeroLimit(t *testing.T) {
	c := testContext()
	c.DailyLossLimit = decimal.Zero
	w := New("d1", "u1", t0)
	require.NoError(t, w.Update(completeDraft(), t0))

	ev := w.Evaluate(c)
	assert.Nil(t, ev.Risk)
	assert.NotEmpty(t, ev.RiskError)
}

func TestWizard_EvaluateStepsAndRemainingRules(t *testing.T) {
	c := testContext()
	w := New("d1", "u1", t0)
	d := completeDraft()
	d.AcknowledgedRules = []string{"r2"}
	d.Emotion.Emotion = models.EmotionFOMO
	require.NoError(t, w.Update(d, t0))

	ev := w.Evaluate(c)
	require.Len(t, ev.Steps, 5)
	assert.True(t, ev.Steps[0].Complete)
	assert.False(t, ev.Steps[4].Complete)
	assert.Equal(t, []string{"r1"}, ev.Remaining)
	assert.False(t, ev.CanGoBack)
	assert.Contains(t, strings.Join(ev.Warnings, "\n"), "fomo")
}

type mockCreator struct {
	mu     sync.Mutex
	inputs []models.TradeInput
	err    error
}

func (m *mockCreator) NewTrade(_ context.Context, userID string, in models.TradeInput) (*models.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.inputs = append(m.inputs, in)
	return &models.Trade{ID: "t1", UserID: userID, Symbol: strings.ToUpper(in.Symbol), Status: models.StatusOpen}, nil
}

func TestWizard_Commit(t *testing.T) {
	c := testContext()
	w := New("d1", "u1", t0)
	require.NoError(t, w.Update(completeDraft(), t0))

	creator := &mockCreator{}
	_, err := w.Commit(context.Background(), c, creator)
	assert.ErrorIs(t, err, models.ErrTransition)

	advanceTo(t, w, c, StepApproved)
	trade, err := w.Commit(context.Background(), c, creator)
	require.NoError(t, err)
	assert.Equal(t, "NIFTY", trade.Symbol)

	require.Len(t, creator.inputs, 1)
	in := creator.inputs[0]
	assert.Equal(t, "Trade Reason: Clean breakout above prior day high", *in.Notes)
	assert.Equal(t, "Breakout", *in.SetupType)
	assert.Equal(t, models.EmotionCalm, *in.EmotionEntry)
	assert.True(t, in.StopLoss.Decimal.Equal(decimal.NewFromInt(24400)))
}

func TestWizard_CommitFailureKeepsDraft(t *testing.T) {
	c := testContext()
	w := New("d1", "u1", t0)
	require.NoError(t, w.Update(completeDraft(), t0))
	advanceTo(t, w, c, StepApproved)
	before := *w

	_, err := w.Commit(context.Background(), c, &mockCreator{err: errors.New("db down")})
	require.Error(t, err)
	assert.Equal(t, before.Step, w.Step)
	assert.Equal(t, before.Draft, w.Draft)
}

func TestWizard_CommitRechecksRules(t *testing.T) {
	c := testContext()
	w := New("d1", "u1", t0)
	require.NoError(t, w.Update(completeDraft(), t0))
	advanceTo(t, w, c, StepApproved)

	c.ActiveRuleIDs = append(c.ActiveRuleIDs, "r3")
	_, err := w.Commit(context.Background(), c, &mockCreator{})
	assert.ErrorIs(t, err, models.ErrStepIncomplete)
}
