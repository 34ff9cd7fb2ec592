package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trogers1052/trademind/internal/models"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCalcRisk(t *testing.T) {
	out, err := run(t, "calc", "risk", "--qty", "100", "--entry", "500", "--stop", "450", "--target", "600")
	require.NoError(t, err)

	assert.Contains(t, out, "Position size:   ₹50,000")
	assert.Contains(t, out, "Risk:            ₹5,000 (100.0% of per-trade limit)")
	assert.Contains(t, out, "Reward:          ₹10,000")
	assert.Contains(t, out, "Risk:reward:     1:2.00")
	assert.NotContains(t, out, "WARNING")
}

func TestCalcRiskWarnsWhenDailyAllowanceExceeded(t *testing.T) {
	out, err := run(t, "calc", "risk", "--qty", "100", "--entry", "500", "--stop", "450",
		"--target", "600", "--loss-today", "6000")
	require.NoError(t, err)

	assert.Contains(t, out, "Daily loss used: ₹6,000 of ₹10,000 (60.0%)")
	assert.Contains(t, out, "WARNING: risk 5000.00 exceeds remaining daily loss allowance 4000.00")
}

func TestCalcRiskRejectsZeroLimit(t *testing.T) {
	_, err := run(t, "calc", "risk", "--qty", "1", "--entry", "10", "--per-trade-limit", "0")
	assert.ErrorIs(t, err, models.ErrInvalidLimit)
}

func TestCalcRiskRejectsBadNumber(t *testing.T) {
	_, err := run(t, "calc", "risk", "--qty", "ten")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --qty")
}

func TestCalcRiskRequiresQuantity(t *testing.T) {
	_, err := run(t, "calc", "risk", "--entry", "10")
	assert.Error(t, err)
}

func TestCalcPnL(t *testing.T) {
	out, err := run(t, "calc", "pnl", "-d", "short", "--qty", "10", "--entry", "200", "--exit", "210")
	require.NoError(t, err)
	assert.Equal(t, "P&L: -₹100 (-5.00%)\n", out)

	out, err = run(t, "calc", "pnl", "--qty", "10", "--entry", "200", "--exit", "230")
	require.NoError(t, err)
	assert.Equal(t, "P&L: +₹300 (+15.00%)\n", out)
}

func TestFormatINR(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"format", "inr", "1234567"}, "₹12,34,567\n"},
		{[]string{"format", "inr", "1234567", "-c"}, "₹12.35L\n"},
		{[]string{"format", "inr", "--decimals", "2", "--", "-999.5"}, "-₹999.50\n"},
		{[]string{"format", "inr", "250", "-s"}, "+₹250\n"},
	}
	for _, tt := range tests {
		out, err := run(t, tt.args...)
		require.NoError(t, err, tt.args)
		assert.Equal(t, tt.want, out, tt.args)
	}
}

func TestRulesList(t *testing.T) {
	out, err := run(t, "rules", "list")
	require.NoError(t, err)
	assert.Contains(t, out, " 1. [Risk Management] Never risk more than my per-trade limit on a single trade\n")
}

func TestRulesSeedValidatesUser(t *testing.T) {
	_, err := run(t, "rules", "seed", "--user", "not-a-uuid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --user")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "trademind version "+version+"\n", out)
}
