// internal/bank/bank.go

// Package bank 定義核心商業邏輯：帳號配發、帳戶建立、存提款、行內與跨行轉帳、交易總帳。
// 每個 Bank 擁有自己的帳號計數器、帳戶表、他行手續費目錄與總帳；
// 餘額變更透過 unit（見 unit.go）以固定順序上鎖，確保原子性且無死結。
// 金額以 shopspring/decimal 表示，避免浮點誤差。
package bank

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// DefaultMaxAccounts 為每家銀行預設的帳戶上限。
const DefaultMaxAccounts = 1000

type foreignLink struct {
	bank *Bank
	fee  InterBankFee
}

// Bank 為聚合根 (Aggregate Root)：管理單一銀行的所有帳戶。
//   - state：交易單元持有讀鎖，Snapshot 持有寫鎖，報表因此不會看到半套交易。
//   - accountsMu：保護 accounts 與 accountCounter；帳號配發與插入在同一臨界區。
//   - feesMu：保護 foreignBankFees（只增不改）。
type Bank struct {
	name        string
	maxAccounts int

	state sync.RWMutex

	accountsMu     sync.RWMutex
	accounts       map[string]*Account
	accountCounter int

	feesMu          sync.RWMutex
	foreignBankFees map[string]foreignLink

	ledger   *Ledger
	log      *logrus.Entry
	observer Observer
	now      func() time.Time
}

// Option 調整 NewBank 的預設值。
type Option func(*Bank)

// WithMaxAccounts 設定帳戶上限。
func WithMaxAccounts(n int) Option {
	return func(b *Bank) { b.maxAccounts = n }
}

// WithLogger 指定 logger；預設使用 logrus 標準 logger。
func WithLogger(l *logrus.Logger) Option {
	return func(b *Bank) { b.log = l.WithField("bank", b.name) }
}

// WithObserver 註冊操作結果的觀察者（例如 Prometheus 指標）。
func WithObserver(o Observer) Option {
	return func(b *Bank) { b.observer = o }
}

// WithClock 替換帳目時間來源，方便測試。
func WithClock(now func() time.Time) Option {
	return func(b *Bank) { b.now = now }
}

// NewBank 建立空白銀行實例（僅就緒的 in-memory 狀態，無外部依賴）。
func NewBank(name string, opts ...Option) *Bank {
	b := &Bank{
		name:            name,
		maxAccounts:     DefaultMaxAccounts,
		accounts:        make(map[string]*Account),
		accountCounter:  -1,
		foreignBankFees: make(map[string]foreignLink),
		ledger:          newLedger(),
		observer:        nopObserver{},
		now:             time.Now,
	}
	b.log = logrus.StandardLogger().WithField("bank", name)
	for _, opt := range opts {
		opt(b)
	}
	b.observer.AccountsAvailable(b.name, b.maxAccounts)
	return b
}

func (b *Bank) Name() string { return b.name }
func (b *Bank) MaxAccounts() int { return b.maxAccounts }
func (b *Bank) Ledger() *Ledger { return b.ledger }

func (b *Bank) observe(op string, err error) {
	b.observer.OperationCompleted(b.name, op, err)
}

// FormatAccountNumber 將計數值格式化為 4 位數補零的帳號。
func FormatAccountNumber(n int) string {
	return fmt.Sprintf("%04d", n)
}

// generateAccountNumber 配發下一個帳號；呼叫端必須持有 accountsMu 寫鎖。
// 達上限時不推進計數器，不會留下幽靈配發。
func (b *Bank) generateAccountNumber() (string, error) {
	next := b.accountCounter + 1
	if next >= b.maxAccounts {
		return "", ErrAccountCapacityExceeded
	}
	b.accountCounter = next
	return FormatAccountNumber(next), nil
}

// CreateAccount 以持有人資料與初始餘額建立帳戶，回傳帳號。
// 配發帳號、插入帳戶表、追加 CreateAccount 帳目為同一原子單元；失敗時皆不發生。
func (b *Bank) CreateAccount(details AccountDetails, initialBalance decimal.Decimal) (string, error) {
	number, err := b.createAccount(details, initialBalance)
	b.observe(opCreateAccount, err)
	return number, err
}

func (b *Bank) createAccount(details AccountDetails, initialBalance decimal.Decimal) (string, error) {
	if initialBalance.IsNegative() {
		return "", ErrInvalidAmount
	}
	b.state.RLock()
	defer b.state.RUnlock()
	b.accountsMu.Lock()
	defer b.accountsMu.Unlock()

	number, err := b.generateAccountNumber()
	if err != nil {
		return "", err
	}
	b.accounts[number] = &Account{
		number:  number,
		details: details,
		balance: initialBalance,
		bank:    b,
	}
	b.ledger.append(AccountAction{
		ID:            uuid.New(),
		Kind:          ActionCreateAccount,
		AccountNumber: number,
		Amount:        initialBalance,
		Time:          b.now(),
	})

	available := b.maxAccounts - len(b.accounts)
	b.observer.AccountsAvailable(b.name, available)
	if available == 0 {
		b.log.WithField("accounts", len(b.accounts)).Warn("bank reached account capacity")
	}
	return number, nil
}

// GetAccount 依帳號查詢帳戶；純查詢，不做任何變更。
func (b *Bank) GetAccount(number string) (*Account, bool) {
	b.accountsMu.RLock()
	defer b.accountsMu.RUnlock()
	a, ok := b.accounts[number]
	return a, ok
}

// Accounts 回傳依帳號排序的帳戶清單。
func (b *Bank) Accounts() []*Account {
	b.accountsMu.RLock()
	out := make([]*Account, 0, len(b.accounts))
	for _, a := range b.accounts {
		out = append(out, a)
	}
	b.accountsMu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].number < out[j].number })
	return out
}

// AccountsAvailable 回傳尚可建立的帳戶數。
func (b *Bank) AccountsAvailable() int {
	b.accountsMu.RLock()
	defer b.accountsMu.RUnlock()
	return b.maxAccounts - len(b.accounts)
}

// IsFull 表示已進入 Full 狀態（不可逆）。
func (b *Bank) IsFull() bool {
	return b.AccountsAvailable() == 0
}

// AddForeignBank 登記本行匯款到 other 時採用的手續費政策。
// 同名他行只接受第一次登記，之後的呼叫不生效。
func (b *Bank) AddForeignBank(other *Bank, fee InterBankFee) {
	b.feesMu.Lock()
	defer b.feesMu.Unlock()
	if _, ok := b.foreignBankFees[other.name]; ok {
		return
	}
	b.foreignBankFees[other.name] = foreignLink{bank: other, fee: fee}
	b.log.WithField("foreign_bank", other.name).WithField("fee_kind", fee.Kind()).
		WithField("fee_value", fee.Value().String()).Info("foreign bank registered")
}

// GetForeignBankFee 查詢對指定他行的手續費政策。
func (b *Bank) GetForeignBankFee(name string) (InterBankFee, bool) {
	link, ok := b.foreignLink(name)
	if !ok {
		return nil, false
	}
	return link.fee, true
}

func (b *Bank) foreignLink(name string) (foreignLink, bool) {
	b.feesMu.RLock()
	defer b.feesMu.RUnlock()
	link, ok := b.foreignBankFees[name]
	return link, ok
}

// ForeignBanks 回傳已登記他行名稱（排序後）。
func (b *Bank) ForeignBanks() []string {
	b.feesMu.RLock()
	defer b.feesMu.RUnlock()
	out := make([]string, 0, len(b.foreignBankFees))
	for name := range b.foreignBankFees {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ────────────────
// 以帳號為參數的操作，供 HTTP 層使用
// ────────────────

// AddMoney 依帳號存款。
func (b *Bank) AddMoney(number string, amount decimal.Decimal) (decimal.Decimal, error) {
	a, ok := b.GetAccount(number)
	if !ok {
		b.observe(opAddMoney, ErrAccountNotFound)
		return decimal.Zero, ErrAccountNotFound
	}
	return a.AddMoney(amount)
}

// RemoveMoney 依帳號提款。
func (b *Bank) RemoveMoney(number string, amount decimal.Decimal) (decimal.Decimal, error) {
	a, ok := b.GetAccount(number)
	if !ok {
		b.observe(opRemoveMoney, ErrAccountNotFound)
		return decimal.Zero, ErrAccountNotFound
	}
	return a.RemoveMoney(amount)
}

// Transfer 行內轉帳，回傳提交當下雙方餘額。
func (b *Bank) Transfer(from, to string, amount decimal.Decimal) (TransferReceipt, error) {
	src, ok1 := b.GetAccount(from)
	dst, ok2 := b.GetAccount(to)
	if !ok1 || !ok2 {
		b.observe(opTransfer, ErrAccountNotFound)
		return TransferReceipt{}, ErrAccountNotFound
	}
	return src.transfer(dst, amount)
}

// TransferInterbank 從本行帳戶 from 轉到 foreignBank 的帳戶 to，並收取跨行手續費。
func (b *Bank) TransferInterbank(from, foreignBank, to string, amount decimal.Decimal) (TransferReceipt, error) {
	src, ok := b.GetAccount(from)
	if !ok {
		b.observe(opTransferInterbank, ErrAccountNotFound)
		return TransferReceipt{}, ErrAccountNotFound
	}
	return src.transferForeign(foreignBank, to, amount)
}

// Snapshot 為一致性報表快照：持有 state 寫鎖，等待進行中的交易單元完成，
// 因此餘額與總帳必定互相對應。
type Snapshot struct {
	Bank        string           `json:"bank"`
	MaxAccounts int              `json:"maxAccounts"`
	TakenAt     time.Time        `json:"takenAt"`
	Accounts    []AccountSummary `json:"accounts"`
	Ledger      []AccountAction  `json:"ledger"`
}

// Snapshot 匯出目前銀行狀態。
func (b *Bank) Snapshot() Snapshot {
	b.state.Lock()
	defer b.state.Unlock()

	s := Snapshot{Bank: b.name, MaxAccounts: b.maxAccounts, TakenAt: b.now()}
	for _, a := range b.Accounts() {
		s.Accounts = append(s.Accounts, a.Summary())
	}
	s.Ledger = b.ledger.Entries()
	return s
}
