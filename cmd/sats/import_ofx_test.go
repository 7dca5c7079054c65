package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const walletOFX = `OFXHEADER:100
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
<DTSERVER>20250701120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>000000000
<ACCTID>wallet
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20250601120000[0:GMT]
<DTEND>20250630120000[0:GMT]
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20250601120000[0:GMT]
<TRNAMT>0.01
<FITID>W-0001
<NAME>PAYROLL
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20250612120000[0:GMT]
<TRNAMT>-0.0005
<FITID>W-0002
<NAME>Coffee Roasters
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>0.0095
<DTASOF>20250630120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func writeStatement(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestImportOFX(t *testing.T) {
	setupCLI(t)
	path := writeStatement(t, "wallet.ofx", walletOFX)
	mustExecute(t, "category", "add", "Spending")

	_, err := execute(t, "import", "ofx", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "need a category")

	out := mustExecute(t, "import", "ofx", path, "--category", "Spending", "--dry-run")
	assert.Contains(t, out, "Found 1 income entries (1,000,000 sats) and 1 expenses (50,000 sats) in 1 files")
	assert.Contains(t, out, "Coffee Roasters")
	assert.Contains(t, out, "Dry run")
	assert.Contains(t, mustExecute(t, "tx", "list", "--all"), "No transactions found")

	out = mustExecute(t, "import", "ofx", path, "--category", "Spending")
	assert.Contains(t, out, "Imported 2 entries")
	assert.Contains(t, out, "Saved checkpoint auto-import")

	out = mustExecute(t, "tx", "list", "--month", "2025-06")
	assert.Contains(t, out, "PAYROLL")
	assert.Contains(t, out, "-50,000 sats")
	assert.Contains(t, out, "Spending")
}

func TestImportOFX_Units(t *testing.T) {
	setupCLI(t)
	content := strings.NewReplacer("<TRNAMT>0.01", "<TRNAMT>21000", "<TRNAMT>-0.0005", "<TRNAMT>-500").Replace(walletOFX)
	path := writeStatement(t, "sats.ofx", content)

	out := mustExecute(t, "import", "ofx", path, "--unit", "sats", "--skip-expenses", "--no-checkpoint")
	assert.Contains(t, out, "Imported 1 entries")
	assert.Contains(t, mustExecute(t, "month", "2025-06"), "21,000 sats")

	_, err := execute(t, "import", "ofx", path, "--unit", "usd", "--skip-expenses")
	assert.Error(t, err)
}

func TestImportOFX_DeduplicatesAcrossFiles(t *testing.T) {
	setupCLI(t)
	dir := t.TempDir()
	for _, name := range []string{"a.ofx", "b.ofx"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(walletOFX), 0o600))
	}

	out := mustExecute(t, "import", "ofx", filepath.Join(dir, "*.ofx"), "--skip-expenses", "--no-checkpoint")
	assert.Contains(t, out, "in 2 files")
	assert.Contains(t, out, "Imported 1 entries")
}

func TestImportOFX_NoFiles(t *testing.T) {
	setupCLI(t)
	_, err := execute(t, "import", "ofx", filepath.Join(t.TempDir(), "*.qfx"))
	assert.Error(t, err)
}
