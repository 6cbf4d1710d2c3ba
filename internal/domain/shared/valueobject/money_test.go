package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.RequireFromString("100.50"), EGP)
		require.NoError(t, err)
		assert.Equal(t, EGP, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.RequireFromString("100.50")))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})

	t.Run("returns error for unsupported currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "USD")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported currency")
	})

	t.Run("rounds half up to two places", func(t *testing.T) {
		m, err := NewMoney(decimal.RequireFromString("10.005"), GBP)
		require.NoError(t, err)
		assert.Equal(t, "10.01", m.StringFixed(2))
	})

	t.Run("rejects amounts beyond numeric(12,2)", func(t *testing.T) {
		_, err := NewMoney(decimal.RequireFromString("10000000000"), EGP)
		assert.Error(t, err)

		m, err := NewMoney(decimal.RequireFromString("9999999999.99"), EGP)
		require.NoError(t, err)
		assert.Equal(t, "9999999999.99", m.StringFixed(2))
	})
}

func TestNewPositiveMoney(t *testing.T) {
	_, err := NewPositiveMoney(decimal.Zero, EGP)
	assert.Error(t, err)

	_, err = NewPositiveMoney(decimal.NewFromInt(-5), EGP)
	assert.Error(t, err)

	// rounds to zero
	_, err = NewPositiveMoney(decimal.RequireFromString("0.004"), EGP)
	assert.Error(t, err)

	m, err := NewPositiveMoney(decimal.RequireFromString("0.01"), GBP)
	require.NoError(t, err)
	assert.True(t, m.IsPositive())
}

func TestParseCurrency(t *testing.T) {
	c, err := ParseCurrency(" egp ")
	require.NoError(t, err)
	assert.Equal(t, EGP, c)

	c, err = ParseCurrency("GBP")
	require.NoError(t, err)
	assert.Equal(t, GBP, c)

	_, err = ParseCurrency("EUR")
	assert.Error(t, err)
	_, err = ParseCurrency("")
	assert.Error(t, err)
}

func TestSupportedCurrencies(t *testing.T) {
	assert.Equal(t, []Currency{EGP, GBP}, SupportedCurrencies())
}

func TestNewMoneyFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyFromString("123.45", EGP)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.RequireFromString("123.45")))
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", EGP)
		assert.Error(t, err)
	})
}

func TestZero(t *testing.T) {
	m := Zero(GBP)
	assert.True(t, m.IsZero())
	assert.Equal(t, GBP, m.Currency())
}

func TestMoneyIsPositiveNegativeZero(t *testing.T) {
	positive := MustMoney("100", EGP)
	negative := MustMoney("-100", EGP)
	zero := Zero(EGP)

	assert.True(t, positive.IsPositive())
	assert.False(t, positive.IsNegative())
	assert.False(t, positive.IsZero())

	assert.False(t, negative.IsPositive())
	assert.True(t, negative.IsNegative())
	assert.False(t, negative.IsZero())

	assert.False(t, zero.IsPositive())
	assert.False(t, zero.IsNegative())
	assert.True(t, zero.IsZero())
}

func TestMoneyAdd(t *testing.T) {
	t.Run("adds same currency", func(t *testing.T) {
		result, err := MustMoney("100.50", EGP).Add(MustMoney("50.25", EGP))
		require.NoError(t, err)
		assert.True(t, result.Amount().Equal(decimal.RequireFromString("150.75")))
	})

	t.Run("fails for different currencies", func(t *testing.T) {
		_, err := MustMoney("100", EGP).Add(MustMoney("50", GBP))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "different currencies")
	})
}

func TestMoneySubtract(t *testing.T) {
	t.Run("subtracts same currency", func(t *testing.T) {
		result, err := MustMoney("1200", EGP).Subtract(MustMoney("5000", EGP))
		require.NoError(t, err)
		assert.Equal(t, "-3800.00", result.StringFixed(2))
	})

	t.Run("fails for different currencies", func(t *testing.T) {
		_, err := MustMoney("100", GBP).Subtract(MustMoney("50", EGP))
		assert.Error(t, err)
	})
}

func TestMoneyNegateAndEquals(t *testing.T) {
	m := MustMoney("42.10", GBP)
	assert.True(t, m.Negate().Equals(MustMoney("-42.10", GBP)))
	assert.False(t, m.Equals(MustMoney("42.10", EGP)))
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "123.45 EGP", MustMoney("123.45", EGP).String())
	assert.Equal(t, "7.00 GBP", MustMoney("7", GBP).String())
}

func TestMoneyJSON(t *testing.T) {
	original := MustMoney("99.9", GBP)

	t.Run("marshal", func(t *testing.T) {
		data, err := json.Marshal(original)
		require.NoError(t, err)
		assert.JSONEq(t, `{"amount":"99.90","currency":"GBP"}`, string(data))
	})

	t.Run("unmarshal", func(t *testing.T) {
		var m Money
		err := json.Unmarshal([]byte(`{"amount":"123.45","currency":"EGP"}`), &m)
		require.NoError(t, err)
		assert.Equal(t, EGP, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.RequireFromString("123.45")))
	})

	t.Run("unmarshal rejects unknown currency", func(t *testing.T) {
		var m Money
		err := json.Unmarshal([]byte(`{"amount":"1","currency":"JPY"}`), &m)
		assert.Error(t, err)
	})
}

func TestMoneyValue(t *testing.T) {
	v, err := MustMoney("5", EGP).Value()
	require.NoError(t, err)
	assert.Equal(t, "5.00", v)
}
