package tui

import (
	"github.com/Veraticus/sats-budget/internal/ledger"
	"github.com/Veraticus/sats-budget/internal/model"
)

// summaryLoadedMsg carries a finished load. month identifies the request so
// stale responses can be dropped.
type summaryLoadedMsg struct {
	err     error
	summary *ledger.Summary
	month   model.Month
}
