package bank

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCalculateInterBankFee(t *testing.T) {
	cases := []struct {
		name   string
		fee    InterBankFee
		amount string
		want   string
	}{
		{"fixed", FixedFee{Amount: dec("1.0")}, "9.0", "1"},
		{"fixed ignores amount", FixedFee{Amount: dec("2.5")}, "10000", "2.5"},
		{"no fee", NoFee, "50", "0"},
		{"percentage", PercentageFee{Percent: dec("5")}, "10.0", "0.5"},
		{"fractional percentage", PercentageFee{Percent: dec("0.1")}, "250", "0.25"},
		{"zero amount", PercentageFee{Percent: dec("5")}, "0", "0"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CalculateInterBankFee(tc.fee, dec(tc.amount))
			assert.Truef(t, dec(tc.want).Equal(got), "fee=%s want=%s", got, tc.want)
		})
	}
}

func TestFeeKinds(t *testing.T) {
	assert.Equal(t, FeeKindFixed, FixedFee{Amount: decimal.NewFromInt(1)}.Kind())
	assert.Equal(t, FeeKindPercentage, PercentageFee{Percent: decimal.NewFromInt(5)}.Kind())
	assert.True(t, decimal.NewFromInt(5).Equal(PercentageFee{Percent: decimal.NewFromInt(5)}.Value()))
}
