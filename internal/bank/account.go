// Package bank 定義核心領域模型與業務規則。
// 本檔定義 Account 與其原子操作（存款、提款、行內轉帳、跨行轉帳），不含任何 HTTP 或儲存細節。

package bank

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// AccountDetails 為帳戶持有人資料，建立後不可變。
type AccountDetails struct {
	FullName string `json:"fullName"`
}

// Operations 為帳戶對外提供的操作集合；*Account 為唯一實作。
type Operations interface {
	AddMoney(amount decimal.Decimal) (decimal.Decimal, error)
	RemoveMoney(amount decimal.Decimal) (decimal.Decimal, error)
	TransferTo(other *Account, amount decimal.Decimal) error
	TransferToForeignBank(bankName, otherAccountNumber string, amount decimal.Decimal) error
	Balance() decimal.Decimal
}

var _ Operations = (*Account)(nil)

// Account represents a bank account.
// 只有 balance 可變，且只能在交易單元（unit）內修改。
type Account struct {
	mu      sync.Mutex
	number  string
	details AccountDetails
	balance decimal.Decimal
	bank    *Bank
}

// AccountSummary 為帳戶的值拷貝，供上層輸出使用。
type AccountSummary struct {
	Bank           string          `json:"bank"`
	AccountNumber  string          `json:"accountNumber"`
	AccountDetails AccountDetails  `json:"accountDetails"`
	Balance        decimal.Decimal `json:"balance"`
}

// TransferReceipt 為轉帳成功後的確認資訊；餘額皆為提交當下的值。
type TransferReceipt struct {
	FromBank    string          `json:"fromBank"`
	From        string          `json:"from"`
	ToBank      string          `json:"toBank"`
	To          string          `json:"to"`
	Amount      decimal.Decimal `json:"amount"`
	Fee         decimal.Decimal `json:"fee"`
	FromBalance decimal.Decimal `json:"fromBalance"`
	ToBalance   decimal.Decimal `json:"toBalance"`
}

func (a *Account) Number() string { return a.number }
func (a *Account) Details() AccountDetails { return a.details }
func (a *Account) Bank() *Bank { return a.bank }

func (a *Account) lockKey() string {
	return a.bank.name + "\x00" + a.number
}

// Balance 回傳目前餘額快照，不參與交易。
func (a *Account) Balance() decimal.Decimal {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.balance
}

// Summary 回傳帳戶資訊的值拷貝。
func (a *Account) Summary() AccountSummary {
	return AccountSummary{
		Bank:           a.bank.name,
		AccountNumber:  a.number,
		AccountDetails: a.details,
		Balance:        a.Balance(),
	}
}

// AddMoney 存款：金額不得為負；於同一交易單元內更新餘額並追加 AddMoney 帳目。
func (a *Account) AddMoney(amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := atomically(func(u *unit) error {
		var err error
		balance, err = u.add(a, amount)
		return err
	}, a)
	a.bank.observe(opAddMoney, err)
	return balance, err
}

// RemoveMoney 提款：金額不得為負且不得超過餘額；
// 餘額檢查與扣款在同一把鎖內完成，失敗時不會有任何變更或帳目。
func (a *Account) RemoveMoney(amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := atomically(func(u *unit) error {
		var err error
		balance, err = u.remove(a, amount)
		return err
	}, a)
	a.bank.observe(opRemoveMoney, err)
	return balance, err
}

// TransferTo 將 amount 從本帳戶轉到 other（同行或他行帳戶皆可），不收手續費。
// 扣款與入帳（以及雙方總帳）一起提交或一起失敗。
func (a *Account) TransferTo(other *Account, amount decimal.Decimal) error {
	_, err := a.transfer(other, amount)
	return err
}

func (a *Account) transfer(other *Account, amount decimal.Decimal) (TransferReceipt, error) {
	r := TransferReceipt{
		FromBank: a.bank.name, From: a.number,
		ToBank: other.bank.name, To: other.number,
		Amount: amount, Fee: decimal.Zero,
	}
	err := atomically(func(u *unit) error {
		var err error
		if r.FromBalance, err = u.remove(a, amount); err != nil {
			return err
		}
		if r.ToBalance, err = u.add(other, amount); err != nil {
			return err
		}
		// 轉給自己時兩段都作用在同一帳戶，扣款後的暫存餘額已被入帳覆蓋。
		if other == a {
			r.FromBalance = r.ToBalance
		}
		return nil
	}, a, other)
	a.bank.observe(opTransfer, err)
	if err != nil {
		a.bank.log.WithError(err).WithField("from", a.number).WithField("to", other.number).Debug("transfer rejected")
		return TransferReceipt{}, err
	}
	return r, nil
}

// TransferToForeignBank 跨行轉帳：
// 1) 檢核金額 → 2) 查詢對他行的手續費政策 → 3) 查詢他行目的帳戶 → 4) 計算手續費
// → 5) 單一交易單元內扣款 amount+fee 並入帳 amount。手續費留在本行。
func (a *Account) TransferToForeignBank(bankName, otherAccountNumber string, amount decimal.Decimal) error {
	_, err := a.transferForeign(bankName, otherAccountNumber, amount)
	return err
}

func (a *Account) transferForeign(bankName, otherAccountNumber string, amount decimal.Decimal) (TransferReceipt, error) {
	r, err := a.doTransferForeign(bankName, otherAccountNumber, amount)
	a.bank.observe(opTransferInterbank, err)
	if err != nil {
		a.bank.log.WithError(err).WithField("from", a.number).WithField("foreign_bank", bankName).Debug("interbank transfer rejected")
		return TransferReceipt{}, err
	}
	return r, nil
}

func (a *Account) doTransferForeign(bankName, otherAccountNumber string, amount decimal.Decimal) (TransferReceipt, error) {
	if amount.IsNegative() {
		return TransferReceipt{}, ErrInvalidAmount
	}
	link, ok := a.bank.foreignLink(bankName)
	if !ok {
		return TransferReceipt{}, fmt.Errorf("%w: %s", ErrForeignFeeNotFound, bankName)
	}
	other, ok := link.bank.GetAccount(otherAccountNumber)
	if !ok {
		return TransferReceipt{}, fmt.Errorf("%w: %s/%s", ErrForeignAccountNotFound, bankName, otherAccountNumber)
	}
	fee := CalculateInterBankFee(link.fee, amount)
	r := TransferReceipt{
		FromBank: a.bank.name, From: a.number,
		ToBank: other.bank.name, To: other.number,
		Amount: amount, Fee: fee,
	}
	err := atomically(func(u *unit) error {
		var err error
		if r.FromBalance, err = u.remove(a, amount.Add(fee)); err != nil {
			return err
		}
		r.ToBalance, err = u.add(other, amount)
		return err
	}, a, other)
	if err != nil {
		return TransferReceipt{}, err
	}
	return r, nil
}
