package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Sats is an amount in the minor unit of the tracked asset.
type Sats int64

// SatsPerBTC is the number of sats in one whole coin.
const SatsPerBTC Sats = 100_000_000

// btcDecimals is the number of fractional digits in a whole-coin amount.
const btcDecimals = 8

// ErrInvalidAmount is returned for malformed, zero, negative or overflowing amounts.
var ErrInvalidAmount = errors.New("invalid amount")

// BTC returns the amount in whole coins for display and projection purposes.
// Ledger arithmetic always stays in sats.
func (s Sats) BTC() float64 {
	return float64(s) / float64(SatsPerBTC)
}

// SatsFromBTC converts a whole-coin float to sats, truncating toward zero.
func SatsFromBTC(btc float64) Sats {
	return Sats(btc * float64(SatsPerBTC))
}

// ParseAmount converts user input to sats.
//
// Accepted forms are a bare integer in sats ("150000", "150,000") or a decimal
// followed by a BTC suffix ("0.0015 BTC", "0.0015btc"). Whitespace and
// thousands separators are stripped before parsing. The result is always
// positive.
//
// Examples:
//
//	ParseAmount("21,000")     -> 21000, nil
//	ParseAmount("0.5 BTC")    -> 50000000, nil
//	ParseAmount("1.23456789btc") -> 123456789, nil
func ParseAmount(text string) (Sats, error) {
	return parseAmount(text, false)
}

// ParseAllocation is ParseAmount that also accepts zero in any form ("0", "0 BTC", "0,000").
func ParseAllocation(text string) (Sats, error) {
	return parseAmount(text, true)
}

func parseAmount(text string, allowZero bool) (Sats, error) {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.NewReplacer(" ", "", "\t", "", ",", "", "_", "").Replace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty input", ErrInvalidAmount)
	}

	if strings.HasSuffix(s, "btc") {
		return parseBTC(strings.TrimSuffix(s, "btc"), allowZero)
	}

	for _, r := range s {
		if !unicode.IsDigit(r) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, text)
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, text)
	}
	if v < 0 || (v == 0 && !allowZero) {
		return 0, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	return Sats(v), nil
}

// parseBTC converts a decimal coin string to sats without going through float.
func parseBTC(s string, allowZero bool) (Sats, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: missing BTC value", ErrInvalidAmount)
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > btcDecimals {
		return 0, fmt.Errorf("%w: more than %d decimal places", ErrInvalidAmount, btcDecimals)
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}

	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	const maxWhole = int64(1<<63-1) / int64(SatsPerBTC)
	if whole > maxWhole {
		return 0, fmt.Errorf("%w: amount too large", ErrInvalidAmount)
	}

	var frac int64
	if fracPart != "" {
		padded := fracPart + strings.Repeat("0", btcDecimals-len(fracPart))
		frac, err = strconv.ParseInt(padded, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}

	base := whole * int64(SatsPerBTC)
	if frac > math.MaxInt64-base {
		return 0, fmt.Errorf("%w: amount too large", ErrInvalidAmount)
	}
	total := base + frac
	if total < 0 || (total == 0 && !allowZero) {
		return 0, fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	return Sats(total), nil
}

// FormatSats renders an amount with thousands separators, e.g. "1,234 sats".
func FormatSats(s Sats) string {
	return groupThousands(int64(s)) + " sats"
}

// FormatBTC renders an amount in whole coins with eight decimals.
func FormatBTC(s Sats) string {
	sign := ""
	v := int64(s)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%08d BTC", sign, v/int64(SatsPerBTC), v%int64(SatsPerBTC))
}

func groupThousands(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
	}
	digits := strconv.FormatInt(v, 10)
	digits = strings.TrimPrefix(digits, "-")

	var b strings.Builder
	b.WriteString(sign)
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > len(sign) {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
