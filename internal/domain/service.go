package domain

import "strings"

// Currency identifies a supported payment currency.
type Currency string

const (
	CurrencyUSD Currency = "usd"
	CurrencyBTC Currency = "btc"
	// CurrencyStars is the operator-settled channel: no wallet is published
	// and the payment is reconciled manually by an operator.
	CurrencyStars Currency = "stars"
	CurrencyEUR Currency = "eur"
	CurrencyUAH Currency = "uah"
)

// Currencies lists every supported currency in display order.
var Currencies = []Currency{CurrencyUSD, CurrencyBTC, CurrencyStars, CurrencyEUR, CurrencyUAH}

// ParseCurrency maps a raw string to a known Currency.
func ParseCurrency(raw string) (Currency, bool) {
	c := Currency(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Currencies {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// OperatorSettled reports whether the currency is settled manually by an
// operator instead of against a published wallet.
func (c Currency) OperatorSettled() bool {
	return c == CurrencyStars
}

// PaymentMethod is the currency a user chose to pay an order with.
type PaymentMethod = Currency

// Service is a catalog entry. Prices are kept per currency and may be unset:
// an unset price makes that currency unavailable for the service.
type Service struct {
	ID          int64    `db:"service_id"`
	Name        string   `db:"name"`
	Description string   `db:"description"`
	PriceUSD    *float64 `db:"price_usd"`
	PriceBTC    *float64 `db:"price_btc"`
	PriceStars  *int64   `db:"price_stars"`
	PriceEUR    *float64 `db:"price_eur"`
	PriceUAH    *float64 `db:"price_uah"`
	Active      bool     `db:"is_active"`
}

// Price returns the service price in the given currency and whether it is set.
// Star amounts are returned as a whole-number float.
func (s Service) Price(c Currency) (float64, bool) {
	switch c {
	case CurrencyUSD:
		if s.PriceUSD != nil {
			return *s.PriceUSD, true
		}
	case CurrencyBTC:
		if s.PriceBTC != nil {
			return *s.PriceBTC, true
		}
	case CurrencyStars:
		if s.PriceStars != nil {
			return float64(*s.PriceStars), true
		}
	case CurrencyEUR:
		if s.PriceEUR != nil {
			return *s.PriceEUR, true
		}
	case CurrencyUAH:
		if s.PriceUAH != nil {
			return *s.PriceUAH, true
		}
	}
	return 0, false
}

// SupportsMethod reports whether the service can be paid with the method.
// Operator-settled methods are always allowed; the rest require a set price.
func (s Service) SupportsMethod(m PaymentMethod) bool {
	if m.OperatorSettled() {
		return true
	}
	_, ok := s.Price(m)
	return ok
}

// PaymentMethods returns the methods available for this service.
func (s Service) PaymentMethods() []PaymentMethod {
	out := make([]PaymentMethod, 0, len(Currencies))
	for _, c := range Currencies {
		if s.SupportsMethod(c) {
			out = append(out, c)
		}
	}
	return out
}
