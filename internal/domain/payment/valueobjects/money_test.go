package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	m, err := NewMoney(150000, "idr")
	require.NoError(t, err)
	assert.Equal(t, "IDR", m.Currency())
	assert.Equal(t, int64(150000), m.Amount())

	_, err = NewMoney(0, "IDR")
	assert.Error(t, err)
	_, err = NewMoney(100, "ZZZ1")
	assert.Error(t, err)
}

func TestParseMoney(t *testing.T) {
	tests := []struct {
		name     string
		decimal  string
		currency string
		want     int64
		wantErr  bool
	}{
		{"usd cents", "9.99", "USD", 999, false},
		{"usd whole", "10", "USD", 1000, false},
		{"idr uses two iso digits", "150000", "IDR", 15000000, false},
		{"jpy zero scale", "500", "JPY", 500, false},
		{"jpy fraction rejected", "500.5", "JPY", 0, true},
		{"usd sub-cent rejected", "1.005", "USD", 0, true},
		{"negative", "-1", "USD", 0, true},
		{"garbage", "ten", "USD", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := ParseMoney(tt.decimal, tt.currency)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Amount())
		})
	}
}

func TestMoney_Decimal(t *testing.T) {
	usd, err := NewMoney(999, "USD")
	require.NoError(t, err)
	assert.Equal(t, "9.99", usd.Decimal())
	assert.Equal(t, "9.99 USD", usd.String())

	jpy, err := NewMoney(500, "JPY")
	require.NoError(t, err)
	assert.Equal(t, "500", jpy.Decimal())
}

func TestMoney_ScaleFollowsISO4217(t *testing.T) {
	tests := []struct {
		currency string
		scale    int
	}{
		{"USD", 2},
		{"JPY", 0},
		{"IDR", 2},
		{"HUF", 2},
		{"IQD", 3},
		{"KWD", 3},
	}

	for _, tt := range tests {
		t.Run(tt.currency, func(t *testing.T) {
			m, err := NewMoney(1, tt.currency)
			require.NoError(t, err)
			assert.Equal(t, tt.scale, m.Scale())
		})
	}
}

func TestMoney_IDRRoundTrip(t *testing.T) {
	m, err := NewMoney(15000000, "IDR")
	require.NoError(t, err)
	assert.Equal(t, "150000.00", m.Decimal())

	parsed, err := ParseMoney(m.Decimal(), "IDR")
	require.NoError(t, err)
	assert.True(t, parsed.Equals(m))
}
