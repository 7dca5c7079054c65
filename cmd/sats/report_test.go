package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sats-budget/internal/report"
)

func TestReportCommands(t *testing.T) {
	setupCLI(t)

	mustExecute(t, "category", "add", "Food")
	mustExecute(t, "category", "add", "Rent")
	mustExecute(t, "income", "add", "400,000", "pay", "--date", "2025-05-01")
	mustExecute(t, "income", "add", "400,000", "pay", "--date", "2025-06-01")
	mustExecute(t, "expense", "add", "100,000", "Food", "groceries", "--date", "2025-05-10")
	mustExecute(t, "expense", "add", "300,000", "Rent", "june rent", "--date", "2025-06-01")

	out := mustExecute(t, "report", "spending", "--month", "2025-06")
	assert.Contains(t, out, "Spending 2025-06-01 to 2025-06-30")
	assert.Contains(t, out, "Rent")
	assert.NotContains(t, out, "Food")
	assert.Contains(t, out, "100.0%")

	out = mustExecute(t, "report", "spending", "--month", "2025-06", "--period", string(report.LastMonths3))
	assert.Contains(t, out, "2025-04-01 to 2025-06-30")
	assert.Contains(t, out, "75.0%")
	assert.Contains(t, out, "25.0%")
	assert.Contains(t, out, "400,000 sats")

	out = mustExecute(t, "report", "flow", "--month", "2025-06", "-p", "last_6_months")
	assert.Contains(t, out, "2025-05")
	assert.Contains(t, out, "300,000 sats")
	assert.Contains(t, out, "400,000 sats")

	out = mustExecute(t, "report", "spending", "--month", "2024-01")
	assert.Contains(t, out, "No spending in this period")

	_, err := execute(t, "report", "flow", "--period", "fortnight")
	require.Error(t, err)
	assert.ErrorIs(t, err, report.ErrInvalidPeriod)
}
