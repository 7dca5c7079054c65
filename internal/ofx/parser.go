// Package ofx reads OFX/QFX statements into budget entries.
package ofx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aclindsa/ofxgo"

	"github.com/Veraticus/sats-budget/internal/model"
)

// Unit is the denomination of statement amounts.
type Unit string

// Supported units.
const (
	UnitBTC  Unit = "btc"
	UnitSats Unit = "sats"
)

// ErrUnknownUnit is returned for an unsupported amount unit.
var ErrUnknownUnit = errors.New("unknown amount unit")

// ParseUnit validates a configured unit name.
func ParseUnit(s string) (Unit, error) {
	switch u := Unit(strings.ToLower(strings.TrimSpace(s))); u {
	case UnitBTC, UnitSats:
		return u, nil
	case "":
		return UnitBTC, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
	}
}

func (u Unit) scale() *big.Rat {
	if u == UnitSats {
		return big.NewRat(1, 1)
	}
	return big.NewRat(int64(model.SatsPerBTC), 1)
}

// Entry is one statement line ready to be recorded.
type Entry struct {
	Date        time.Time
	FITID       string
	Description string
	Kind        model.Kind
	Amount      model.Sats
}

// Parser implements OFX/QFX file parsing.
type Parser struct {
	unit Unit
}

// NewParser creates a parser reading amounts in unit.
func NewParser(unit Unit) *Parser {
	if unit == "" {
		unit = UnitBTC
	}
	return &Parser{unit: unit}
}

var (
	severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	tagFixRegex   = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
)

// preprocessOFX fixes common formatting issues in OFX files.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")

	// SEVERITY must be upper case.
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)

	// SGML files sometimes drop the closing bracket of a bare tag.
	return tagFixRegex.ReplaceAllString(content, "$1>")
}

func parse(reader io.Reader) (*ofxgo.Response, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}
	return resp, nil
}

// ParseFile parses an OFX/QFX file and returns its entries oldest first.
// Credits become income and debits become expenses.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader) ([]Entry, error) {
	resp, err := parse(reader)
	if err != nil {
		return nil, err
	}

	var entries []Entry
	var bankStmts, ccStmts int

	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			bankStmts++
			entries = append(entries, p.convert(stmt.BankTranList.Transactions)...)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			ccStmts++
			entries = append(entries, p.convert(stmt.BankTranList.Transactions)...)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date.Before(entries[j].Date) })

	slog.Info("Parsed OFX file",
		"entries", len(entries),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts,
		"unit", p.unit)
	return entries, nil
}

func (p *Parser) convert(txns []ofxgo.Transaction) []Entry {
	entries := make([]Entry, 0, len(txns))
	for _, tx := range txns {
		entry, ok := p.convertTransaction(tx)
		if ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

// convertTransaction maps one statement line. Zero amounts are dropped.
func (p *Parser) convertTransaction(tx ofxgo.Transaction) (Entry, bool) {
	scaled := new(big.Rat).Mul(&tx.TrnAmt.Rat, p.unit.scale())
	// Quo truncates toward zero; sub-sat precision cannot be recorded.
	whole := new(big.Int).Quo(scaled.Num(), scaled.Denom())
	if !scaled.IsInt() {
		slog.Warn("Truncated sub-sat amount", "fitid", tx.FiTID.String(), "amount", tx.TrnAmt.String())
	}
	if !whole.IsInt64() {
		slog.Warn("Skipping transaction with out of range amount", "fitid", tx.FiTID.String())
		return Entry{}, false
	}

	amount := model.Sats(whole.Int64())
	if amount == 0 {
		return Entry{}, false
	}

	kind := model.KindIncome
	if amount < 0 {
		kind = model.KindExpense
		amount = -amount
	}

	date := tx.DtPosted.Time
	if date.IsZero() {
		date = tx.DtUser.Time
	}

	return Entry{
		Date:        model.Day(date),
		FITID:       tx.FiTID.String(),
		Description: describe(tx),
		Kind:        kind,
		Amount:      amount,
	}, true
}

var descriptionPrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"ACH CREDIT ",
	"CHECK CARD ",
	"DEBIT PURCHASE ",
}

// describe picks the cleanest description the statement offers.
func describe(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(tx.Payee.Name.String())
	}

	name := strings.TrimSpace(tx.Name.String())
	if tx.Memo != "" && (name == "" || isGenericDescription(name)) {
		name = strings.TrimSpace(tx.Memo.String())
	}

	for _, prefix := range descriptionPrefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	// "MM/DD " date stamps
	if len(name) > 5 && name[2] == '/' && name[5] == ' ' {
		name = strings.TrimSpace(name[6:])
	}

	if name == "" {
		return fmt.Sprintf("%v %s", tx.TrnType, tx.FiTID.String())
	}
	return name
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "DEPOSIT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	}
	return false
}

// GetAccounts extracts unique account IDs from the OFX file, sorted.
func (p *Parser) GetAccounts(_ context.Context, reader io.Reader) ([]string, error) {
	resp, err := parse(reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankAcctFrom.AcctID != "" {
			seen[stmt.BankAcctFrom.AcctID.String()] = true
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.CCAcctFrom.AcctID != "" {
			seen[stmt.CCAcctFrom.AcctID.String()] = true
		}
	}

	accounts := make([]string, 0, len(seen))
	for acct := range seen {
		accounts = append(accounts, acct)
	}
	sort.Strings(accounts)
	return accounts, nil
}
