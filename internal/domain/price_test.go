package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Price
		wantErr error
	}{
		{name: "two decimals", input: "99.75", want: 9975},
		{name: "integer", input: "13", want: 1300},
		{name: "one decimal", input: "0.5", want: 50},
		{name: "leading dot", input: ".5", want: 50},
		{name: "trailing dot", input: "5.", want: 500},
		{name: "negative", input: "-3.10", want: -310},
		{name: "explicit plus", input: "+1.01", want: 101},
		{name: "zero", input: "0.00", want: 0},
		{name: "leading zeros ignored", input: "000012.30", want: 1230},
		{name: "max value", input: "99999999.99", want: 9999999999},
		{name: "surrounding spaces", input: " 7.25 ", want: 725},
		{name: "empty", input: "", wantErr: ErrPriceInvalid},
		{name: "sign only", input: "-", wantErr: ErrPriceInvalid},
		{name: "dot only", input: ".", wantErr: ErrPriceInvalid},
		{name: "letters", input: "abc", wantErr: ErrPriceInvalid},
		{name: "exponent", input: "1e3", wantErr: ErrPriceInvalid},
		{name: "thousands separator", input: "1,000", wantErr: ErrPriceInvalid},
		{name: "two dots", input: "1.2.3", wantErr: ErrPriceInvalid},
		{name: "too many places", input: "1.234", wantErr: ErrPriceTooManyPlaces},
		{name: "too many digits", input: "12345678901", wantErr: ErrPriceTooManyDigits},
		{name: "too many whole digits", input: "123456789", wantErr: ErrPriceTooManyWhole},
		{name: "too many digits with places", input: "123456789.123", wantErr: ErrPriceTooManyDigits},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePrice(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrice_String(t *testing.T) {
	assert.Equal(t, "99.75", Price(9975).String())
	assert.Equal(t, "0.00", Price(0).String())
	assert.Equal(t, "0.05", Price(5).String())
	assert.Equal(t, "13.00", Price(1300).String())
	assert.Equal(t, "-3.10", Price(-310).String())
	assert.Equal(t, "-0.01", Price(-1).String())
}

func TestPrice_RoundTrip(t *testing.T) {
	for _, s := range []string{"99.75", "0.00", "1.05", "-42.10", "99999999.99"} {
		assert.Equal(t, s, MustParsePrice(s).String())
	}
}

func TestMustParsePrice_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParsePrice("nope") })
}
