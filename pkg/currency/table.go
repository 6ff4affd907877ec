package currency

import (
	"math"
	"sort"
	"strings"
)

// Rate is how many units of Code buy one unit of the base currency.
type Rate struct {
	Code     string  `json:"code"`
	Symbol   string  `json:"symbol"`
	PerBase  float64 `json:"per_base"`
	Decimals int     `json:"decimals"`
}

type Table struct {
	base  string
	rates map[string]Rate
}

func NewTable(base string, rates []Rate) *Table {
	t := &Table{
		base:  strings.ToUpper(base),
		rates: make(map[string]Rate, len(rates)+1),
	}
	for _, r := range rates {
		r.Code = strings.ToUpper(r.Code)
		if r.PerBase <= 0 {
			continue
		}
		t.rates[r.Code] = r
	}
	if _, ok := t.rates[t.base]; !ok {
		t.rates[t.base] = Rate{Code: t.base, Symbol: t.base, PerBase: 1, Decimals: 2}
	}
	return t
}

// DefaultTable uses USD as the base unit with fixed rates for the markets the
// packages are sold in.
func DefaultTable() *Table {
	return NewTable("USD", []Rate{
		{Code: "USD", Symbol: "$", PerBase: 1, Decimals: 2},
		{Code: "SAR", Symbol: "SAR", PerBase: 3.75, Decimals: 2},
		{Code: "AED", Symbol: "AED", PerBase: 3.67, Decimals: 2},
		{Code: "QAR", Symbol: "QAR", PerBase: 3.64, Decimals: 2},
		{Code: "KWD", Symbol: "KWD", PerBase: 0.31, Decimals: 3},
		{Code: "BHD", Symbol: "BHD", PerBase: 0.376, Decimals: 3},
		{Code: "OMR", Symbol: "OMR", PerBase: 0.385, Decimals: 3},
		{Code: "EUR", Symbol: "€", PerBase: 0.92, Decimals: 2},
		{Code: "GEL", Symbol: "GEL", PerBase: 2.7, Decimals: 2},
	})
}

func (t *Table) Base() string {
	return t.base
}

func (t *Table) Has(code string) bool {
	_, ok := t.rates[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// Convert turns a base-unit amount into code. An unknown code returns the
// amount unchanged with ok=false.
func (t *Table) Convert(amount float64, code string) (float64, bool) {
	rate, ok := t.rates[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return amount, false
	}
	scale := math.Pow10(rate.Decimals)
	return math.Round(amount*rate.PerBase*scale) / scale, true
}

func (t *Table) Rates() []Rate {
	out := make([]Rate, 0, len(t.rates))
	for _, r := range t.rates {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Code == t.base {
			return true
		}
		if out[j].Code == t.base {
			return false
		}
		return out[i].Code < out[j].Code
	})
	return out
}
