package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code. Only the two currencies the comparison deals with are valid.
type Currency string

const (
	JMD Currency = "JMD"
	USD Currency = "USD"
)

var (
	ErrCurrencyMismatch = errors.New("currency mismatch")
	ErrUnknownCurrency  = errors.New("unknown currency")
	ErrNonPositiveRate  = errors.New("exchange rate must be strictly positive")
)

// Amount is a monetary value tagged with its currency.
type Amount struct {
	Value    decimal.Decimal `json:"value" yaml:"value"`
	Currency Currency        `json:"currency" yaml:"currency"`
}

func NewJMD(v decimal.Decimal) Amount { return Amount{Value: v, Currency: JMD} }
func NewUSD(v decimal.Decimal) Amount { return Amount{Value: v, Currency: USD} }

// Add returns a+b. Both must carry the same currency.
func (a Amount) Add(b Amount) (Amount, error) {
	if a.Currency != b.Currency {
		return Amount{}, fmt.Errorf("%w: %s + %s", ErrCurrencyMismatch, a.Currency, b.Currency)
	}
	return Amount{Value: a.Value.Add(b.Value), Currency: a.Currency}, nil
}

// Sub returns a-b. Both must carry the same currency.
func (a Amount) Sub(b Amount) (Amount, error) {
	if a.Currency != b.Currency {
		return Amount{}, fmt.Errorf("%w: %s - %s", ErrCurrencyMismatch, a.Currency, b.Currency)
	}
	return Amount{Value: a.Value.Sub(b.Value), Currency: a.Currency}, nil
}

func (a Amount) IsZero() bool { return a.Value.IsZero() }

// String renders the amount the way reports print money: "JMD 1234567.89".
func (a Amount) String() string {
	return fmt.Sprintf("%s %s", a.Currency, a.Value.StringFixed(2))
}

// ConvertToUSD converts a JMD amount into USD using usdToJmd JMD per USD.
// USD amounts are returned unchanged.
func ConvertToUSD(a Amount, usdToJmd decimal.Decimal) (Amount, error) {
	if !usdToJmd.IsPositive() {
		return Amount{}, ErrNonPositiveRate
	}
	switch a.Currency {
	case USD:
		return a, nil
	case JMD:
		return NewUSD(a.Value.Div(usdToJmd)), nil
	default:
		return Amount{}, fmt.Errorf("%w: %q", ErrUnknownCurrency, a.Currency)
	}
}
