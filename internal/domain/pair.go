package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// CurrencyPair is an ordered (from, to) currency tuple identifying one
// exchange-rate series.
type CurrencyPair struct {
	ID           int64
	FromCurrency string
	ToCurrency   string
}

func (p CurrencyPair) Code() PairCode {
	return PairCode{From: p.FromCurrency, To: p.ToCurrency}
}

// PairCode is a currency pair that has not necessarily been persisted yet.
type PairCode struct {
	From string
	To   string
}

func (c PairCode) String() string { return c.From + "/" + c.To }

// Symbol is the source quote symbol, e.g. GBPINR=X.
func (c PairCode) Symbol() string { return c.From + c.To + "=X" }

var pairRe = regexp.MustCompile(`^[A-Z]{3}/[A-Z]{3}$`)

// ParsePairCode parses "GBP/INR" style pairs.
func ParsePairCode(s string) (PairCode, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if !pairRe.MatchString(s) {
		return PairCode{}, fmt.Errorf("invalid pair %q", s)
	}
	return PairCode{From: s[:3], To: s[4:]}, nil
}

// ParsePairCodes parses a comma separated pair list, ignoring blanks.
func ParsePairCodes(s string) ([]PairCode, error) {
	var out []PairCode
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := ParsePairCode(part)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// ValidateCurrencyCode reports whether code is exactly three characters long.
func ValidateCurrencyCode(code string) bool {
	return len(code) == 3
}
