package cli

import (
	"fmt"
	"time"

	"github.com/Veraticus/sats-budget/internal/model"
)

// Amount renders sats with thousands separators, red when negative.
func Amount(s model.Sats) string {
	text := model.FormatSats(s)
	if s < 0 {
		return ErrorStyle.Render(text)
	}
	return text
}

// AmountWithBTC renders sats followed by the BTC value in subtle text.
func AmountWithBTC(s model.Sats) string {
	return Amount(s) + " " + SubtleStyle.Render("("+model.FormatBTC(s)+")")
}

// Fiat renders a fiat value with two decimals and thousands separators.
func Fiat(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	cents := int64(v*100 + 0.5)
	return fmt.Sprintf("%s$%s.%02d", sign, groupDigits(cents/100), cents%100)
}

// Percent renders a percentage with one decimal.
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// Date renders a calendar date.
func Date(t time.Time) string {
	return t.Format(model.DateLayout)
}

func groupDigits(v int64) string {
	s := fmt.Sprintf("%d", v)
	if len(s) <= 3 {
		return s
	}
	out := make([]byte, 0, len(s)+len(s)/3)
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}
