package cli

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sats-budget/internal/model"
)

func TestFiat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{12.346, "$12.35"},
		{1234567.891, "$1,234,567.89"},
		{-999.5, "-$999.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fiat(tt.in))
	}
}

func TestAmount(t *testing.T) {
	assert.Contains(t, Amount(1_234), "1,234 sats")
	assert.Contains(t, Amount(-20_000), "20,000")
	assert.Contains(t, AmountWithBTC(100_000_000), "1.00000000 BTC")
}

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	tbl := NewTable(&buf)
	tbl.Row("Groceries", "10,000 sats")
	tbl.Row("Rent", "5 sats")
	require.NoError(t, tbl.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Index(lines[0], "10,000"), strings.Index(lines[1], "5 sats"))
}

func TestConfirm(t *testing.T) {
	never := func(string, string) (bool, error) {
		t.Fatal("prompt should be skipped")
		return false, nil
	}
	assert.NoError(t, Confirm(never, true, "Delete?", ""))

	yes := func(string, string) (bool, error) { return true, nil }
	no := func(string, string) (bool, error) { return false, nil }
	broken := func(string, string) (bool, error) { return false, errors.New("no tty") }

	assert.NoError(t, Confirm(yes, false, "Delete?", ""))
	assert.ErrorIs(t, Confirm(no, false, "Delete?", ""), ErrAborted)
	assert.EqualError(t, Confirm(broken, false, "Delete?", ""), "no tty")
}

func TestNewProgress(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgress(&buf, 3, "Importing")
	for range 3 {
		require.NoError(t, bar.Add(1))
	}
	assert.Contains(t, buf.String(), "Importing")
}

func TestFormatHelpers(t *testing.T) {
	assert.Contains(t, FormatSuccess("saved"), "saved")
	assert.Contains(t, FormatTitle("June"), "June")
	assert.Contains(t, FormatInfo(model.FormatSats(5)), "5 sats")
}
