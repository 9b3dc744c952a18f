package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want Currency
		err  error
	}{
		{"RUB", CurrencyRUB, nil},
		{"", Default, nil},
		{"rub", "", ErrInvalidCurrency},
		{"USD", "", ErrInvalidCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCurrency(tt.in)
			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, tt.want, got)
		})
	}
}
