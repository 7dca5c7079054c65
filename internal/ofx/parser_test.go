package ofx

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sats-budget/internal/model"
)

const ofxHeader = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
`

func stmtTrn(kind, posted, amount, fitid, name string) string {
	return fmt.Sprintf(`<STMTTRN>
<TRNTYPE>%s
<DTPOSTED>%s120000[0:GMT]
<TRNAMT>%s
<FITID>%s
<NAME>%s
</STMTTRN>
`, kind, posted, amount, fitid, name)
}

func bankOFX(txns ...string) string {
	return ofxHeader + `<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
` + strings.Join(txns, "") + `</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`
}

var sampleBankOFX = bankOFX(
	stmtTrn("DEBIT", "20240120", "-0.00125000", "2024012001", "Whole Foods Market"),
	stmtTrn("DEBIT", "20240115", "-0.000255", "2024011501", "POS PURCHASE STARBUCKS STORE #1234"),
	stmtTrn("CREDIT", "20240101", "0.05", "2024010101", "PAYROLL"),
	stmtTrn("DEBIT", "20240125", "0.00", "2024012501", "ZERO"),
)

const sampleCreditCardOFX = ofxHeader + `<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45990
<FITID>CC2024011001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15000
<FITID>CC2024011501
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseUnit(t *testing.T) {
	tests := []struct {
		in      string
		want    Unit
		wantErr bool
	}{
		{"btc", UnitBTC, false},
		{" BTC ", UnitBTC, false},
		{"sats", UnitSats, false},
		{"", UnitBTC, false},
		{"usd", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseUnit(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownUnit)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFile(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		unit          Unit
		expectedCount int
		expectedError bool
	}{
		{"bank statement in btc", sampleBankOFX, UnitBTC, 3, false},
		{"credit card statement in sats", sampleCreditCardOFX, UnitSats, 2, false},
		{"invalid OFX data", "not valid OFX", UnitBTC, 0, true},
		{"empty OFX", "", UnitBTC, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := NewParser(tt.unit).ParseFile(context.Background(), strings.NewReader(tt.ofxData))
			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, entries, tt.expectedCount)
		})
	}
}

func TestParseBankEntries(t *testing.T) {
	entries, err := NewParser(UnitBTC).ParseFile(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// oldest first
	payroll := entries[0]
	assert.Equal(t, "2024010101", payroll.FITID)
	assert.Equal(t, model.KindIncome, payroll.Kind)
	assert.Equal(t, model.Sats(5_000_000), payroll.Amount)
	assert.Equal(t, "PAYROLL", payroll.Description)
	assert.Equal(t, time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC), payroll.Date)

	coffee := entries[1]
	assert.Equal(t, model.KindExpense, coffee.Kind)
	assert.Equal(t, model.Sats(25_500), coffee.Amount)
	assert.Equal(t, "STARBUCKS STORE #1234", coffee.Description)

	groceries := entries[2]
	assert.Equal(t, model.Sats(125_000), groceries.Amount)
	assert.Equal(t, "Whole Foods Market", groceries.Description)
}

func TestParseCreditCardEntries(t *testing.T) {
	entries, err := NewParser(UnitSats).ParseFile(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "CC2024011001", entries[0].FITID)
	assert.Equal(t, model.Sats(45_990), entries[0].Amount)
	assert.Equal(t, model.KindExpense, entries[0].Kind)
	assert.Equal(t, "NETFLIX.COM", entries[1].Description)
	assert.Equal(t, model.Sats(15_000), entries[1].Amount)
}

func TestSubSatAmountsTruncate(t *testing.T) {
	data := bankOFX(stmtTrn("DEBIT", "20240120", "-0.000000019", "X1", "DUST"))
	entries, err := NewParser(UnitBTC).ParseFile(context.Background(), strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.Sats(1), entries[0].Amount)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name     string
		tx       ofxgo.Transaction
		expected string
	}{
		{"remove POS prefix", ofxgo.Transaction{Name: "POS PURCHASE STARBUCKS"}, "STARBUCKS"},
		{"remove DEBIT CARD prefix", ofxgo.Transaction{Name: "DEBIT CARD PURCHASE WHOLE FOODS"}, "WHOLE FOODS"},
		{"keep clean name", ofxgo.Transaction{Name: "NETFLIX.COM"}, "NETFLIX.COM"},
		{"trim whitespace", ofxgo.Transaction{Name: "  AMAZON.COM  "}, "AMAZON.COM"},
		{"strip date stamp", ofxgo.Transaction{Name: "01/15 SHELL OIL"}, "SHELL OIL"},
		{"memo for generic name", ofxgo.Transaction{Name: "PAYMENT", Memo: "CITY WATER"}, "CITY WATER"},
		{"payee wins", ofxgo.Transaction{Name: "X", Payee: &ofxgo.Payee{Name: "Landlord"}}, "Landlord"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, describe(tt.tx))
		})
	}
}

func TestPreprocessOFX(t *testing.T) {
	in := "\n\n  <SEVERITY>Info</SEVERITY>\n<BANKTRANLIST\n"
	out := preprocessOFX(in)
	assert.True(t, strings.HasPrefix(out, "<SEVERITY>INFO</SEVERITY>"))
	assert.Contains(t, out, "<BANKTRANLIST>\n")
}

func TestGetAccounts(t *testing.T) {
	parser := NewParser(UnitBTC)

	accounts, err := parser.GetAccounts(context.Background(), strings.NewReader(sampleBankOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"1234567890"}, accounts)

	accounts, err = parser.GetAccounts(context.Background(), strings.NewReader(sampleCreditCardOFX))
	require.NoError(t, err)
	assert.Equal(t, []string{"4111111111111111"}, accounts)
}
