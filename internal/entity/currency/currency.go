package currency

import "time"

const (
	JPY = "JPY"
	USD = "USD"
	EUR = "EUR"
	GBP = "GBP"
	CNY = "CNY"
)

var Currencies = []string{JPY, USD, EUR, GBP, CNY}

// Rate is one cached conversion rate towards the local currency.
// Timestamp is epoch milliseconds of the moment the rate was fetched.
type Rate struct {
	Value     float64 `json:"value"`
	Timestamp int64   `json:"timestamp"`
}

func NewRate(value float64, at time.Time) Rate {
	return Rate{Value: value, Timestamp: at.UnixMilli()}
}

// FreshAt reports whether the rate is younger than ttl at time t.
func (r Rate) FreshAt(t time.Time, ttl time.Duration) bool {
	return t.Sub(time.UnixMilli(r.Timestamp)) < ttl
}

// IsCode reports whether s looks like an ISO 4217 currency code.
func IsCode(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, c := range s {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}
