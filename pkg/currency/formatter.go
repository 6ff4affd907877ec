package currency

import (
	"fmt"
	"math"
	"strings"
)

// Format renders an amount with thousands separators and the currency's
// symbol. Unknown codes fall back to the upper-cased code and two decimals.
func (t *Table) Format(amount float64, code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	rate, ok := t.rates[code]
	if !ok {
		rate = Rate{Code: code, Symbol: code, Decimals: 2}
	}
	return formatAmount(amount, rate.Symbol, rate.Decimals)
}

func formatAmount(amount float64, symbol string, decimals int) string {
	scale := math.Pow10(decimals)
	rounded := math.Round(amount*scale) / scale

	negative := rounded < 0
	if negative {
		rounded = -rounded
	}

	str := fmt.Sprintf("%.*f", decimals, rounded)
	intPart, fracPart := str, ""
	if i := strings.IndexByte(str, '.'); i >= 0 {
		intPart, fracPart = str[:i], str[i:]
	}

	result := symbol + " " + addThousandsSeparator(intPart, ",") + fracPart
	if negative {
		result = "-" + result
	}

	return result
}

func addThousandsSeparator(s string, sep string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	numSeps := (n - 1) / 3
	result := make([]byte, n+numSeps)

	j := len(result) - 1
	for i := n - 1; i >= 0; i-- {
		result[j] = s[i]
		j--

		pos := n - i
		if pos%3 == 0 && i > 0 {
			result[j] = sep[0]
			j--
		}
	}

	return string(result)
}
