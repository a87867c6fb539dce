// internal/bank/unit.go
//
// 交易單元（atomic unit）：所有餘額變更皆在 unit 內完成。
// 上鎖順序固定：先依銀行名稱取各銀行 state 讀鎖，再依 (銀行名稱, 帳號) 取帳戶互斥鎖。
// 全域一致的順序保證反向的跨行轉帳不會互相死結；不共用帳戶的轉帳可並行。
// 變更先寫入 unit 的暫存區（writes / pending），fn 成功後才一次套用到帳戶與總帳，
// 失敗則整批捨棄，外部永遠看不到半套交易。

package bank

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type unit struct {
	banks    []*Bank
	accounts []*Account
	writes   map[*Account]decimal.Decimal
	pending  map[*Bank][]AccountAction
}

// atomically 鎖定 accts 涉及的所有銀行與帳戶後執行 fn；fn 回傳 nil 時提交。
func atomically(fn func(u *unit) error, accts ...*Account) error {
	u := lockUnit(accts...)
	defer u.unlock()
	if err := fn(u); err != nil {
		return err
	}
	u.commit()
	return nil
}

func lockUnit(accts ...*Account) *unit {
	u := &unit{
		writes:  make(map[*Account]decimal.Decimal, len(accts)),
		pending: make(map[*Bank][]AccountAction, 2),
	}
	seenAcct := make(map[*Account]bool, len(accts))
	seenBank := make(map[*Bank]bool, 2)
	for _, a := range accts {
		if !seenAcct[a] {
			seenAcct[a] = true
			u.accounts = append(u.accounts, a)
		}
		if !seenBank[a.bank] {
			seenBank[a.bank] = true
			u.banks = append(u.banks, a.bank)
		}
	}
	sort.Slice(u.banks, func(i, j int) bool { return u.banks[i].name < u.banks[j].name })
	sort.Slice(u.accounts, func(i, j int) bool { return u.accounts[i].lockKey() < u.accounts[j].lockKey() })

	for _, b := range u.banks {
		b.state.RLock()
	}
	for _, a := range u.accounts {
		a.mu.Lock()
	}
	return u
}

func (u *unit) unlock() {
	for i := len(u.accounts) - 1; i >= 0; i-- {
		u.accounts[i].mu.Unlock()
	}
	for i := len(u.banks) - 1; i >= 0; i-- {
		u.banks[i].state.RUnlock()
	}
}

// balance 回傳 unit 內可見的餘額（含尚未提交的暫存變更）。
func (u *unit) balance(a *Account) decimal.Decimal {
	if v, ok := u.writes[a]; ok {
		return v
	}
	return a.balance
}

func (u *unit) add(a *Account, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	next := u.balance(a).Add(amount)
	u.writes[a] = next
	u.record(a, ActionAddMoney, amount)
	return next, nil
}

func (u *unit) remove(a *Account, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	cur := u.balance(a)
	if cur.LessThan(amount) {
		return decimal.Zero, ErrInsufficientFunds
	}
	next := cur.Sub(amount)
	u.writes[a] = next
	u.record(a, ActionRemoveMoney, amount)
	return next, nil
}

func (u *unit) record(a *Account, kind ActionKind, amount decimal.Decimal) {
	b := a.bank
	u.pending[b] = append(u.pending[b], AccountAction{
		ID:            uuid.New(),
		Kind:          kind,
		AccountNumber: a.number,
		Amount:        amount,
		Time:          b.now(),
	})
}

func (u *unit) commit() {
	for a, v := range u.writes {
		a.balance = v
	}
	for b, actions := range u.pending {
		b.ledger.append(actions...)
	}
}
