package bank

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// InterBankFee 是某銀行匯款到指定他行時收取的手續費政策。
// 只有 FixedFee 與 PercentageFee 兩種實作。
type InterBankFee interface {
	// Kind 回傳政策種類，供 HTTP 層輸出 rateType。
	Kind() string
	// Value 回傳政策參數（固定金額或百分比）。
	Value() decimal.Decimal

	interBankFee()
}

// FixedFee 每筆收取固定金額。
type FixedFee struct {
	Amount decimal.Decimal
}

// PercentageFee 依匯款金額收取百分比。
type PercentageFee struct {
	Percent decimal.Decimal
}

// NoFee 為零手續費。
var NoFee InterBankFee = FixedFee{Amount: decimal.Zero}

const (
	FeeKindFixed      = "fixed"
	FeeKindPercentage = "percentage"
)

func (f FixedFee) Kind() string { return FeeKindFixed }
func (f FixedFee) Value() decimal.Decimal { return f.Amount }
func (FixedFee) interBankFee() {}

func (f PercentageFee) Kind() string { return FeeKindPercentage }
func (f PercentageFee) Value() decimal.Decimal { return f.Percent }
func (PercentageFee) interBankFee() {}

// CalculateInterBankFee 依手續費政策計算 amount 對應的手續費，無副作用。
func CalculateInterBankFee(fee InterBankFee, amount decimal.Decimal) decimal.Decimal {
	switch f := fee.(type) {
	case FixedFee:
		return f.Amount
	case PercentageFee:
		return amount.Mul(f.Percent).Div(hundred)
	default:
		return decimal.Zero
	}
}
