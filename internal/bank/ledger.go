// Package bank 定義核心領域模型與業務規則。
// 本檔定義銀行的交易總帳（Ledger）與帳務動作（AccountAction），不含任何 HTTP 或儲存細節。

package bank

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ActionKind 標示帳務動作的種類。
type ActionKind string

const (
	ActionCreateAccount ActionKind = "create_account"
	ActionAddMoney      ActionKind = "add_money"
	ActionRemoveMoney   ActionKind = "remove_money"
)

// AccountAction represents a committed ledger entry.
// 建立帳戶時 Amount 為初始餘額。
type AccountAction struct {
	ID            uuid.UUID       `json:"id"`
	Kind          ActionKind      `json:"kind"`
	AccountNumber string          `json:"account_number"`
	Amount        decimal.Decimal `json:"amount"`
	Time          time.Time       `json:"time"`
}

// Ledger 為單一銀行的 append-only 總帳。
// append 只會在持有帳戶鎖的交易單元內呼叫，因此帳目與餘額變更一起提交。
type Ledger struct {
	mu      sync.Mutex
	entries []AccountAction
}

func newLedger() *Ledger {
	return &Ledger{}
}

func (l *Ledger) append(actions ...AccountAction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, actions...)
}

// Len 回傳目前已提交的帳目筆數。
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Entries 回傳帳目的值拷貝，避免外部修改內部切片。
func (l *Ledger) Entries() []AccountAction {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]AccountAction, len(l.entries))
	copy(out, l.entries)
	return out
}
