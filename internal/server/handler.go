// internal/server/handler.go
//
// Package server
// ─────────────────────────────────────────────
// 提供 HTTP RESTful 介面，作為 bank 模組的應用層 (Application Layer)。
// 每個 handler 僅負責：
//  1. 接收與驗證 HTTP 請求
//  2. 呼叫 bank 層執行商業邏輯
//  3. 回傳標準化 JSON 回應
//
// 分層：
//   - bank：純商業邏輯（帳戶、總帳、跨行手續費），與 HTTP 無關。
//   - server：處理傳輸層（Transport Layer）。
//   - storage：負責總帳報表輸出。
package server

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"ledgerbank/internal/bank"
	"ledgerbank/internal/metrics"
	"ledgerbank/internal/storage"
)

// Server 為 HTTP 層核心結構：
// - Registry：注入商業邏輯層（程序內所有銀行）。
// - metrics：可為 nil；非 nil 時掛上指標中介層與 /metrics。
// - limiter：可為 nil；非 nil 時依來源位址限流。
type Server struct {
	Registry *bank.Registry
	metrics  *metrics.Metrics
	log      *logrus.Logger
	limiter  *rateLimiter
}

// NewServer 建立新的 HTTP 伺服器。log 為 nil 時使用 logrus 預設 logger。
func NewServer(reg *bank.Registry, m *metrics.Metrics, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{Registry: reg, metrics: m, log: log}
}

// WithRateLimit 啟用每個來源位址的限流；rps <= 0 代表不限流。
func (s *Server) WithRateLimit(rps float64, burst int) *Server {
	if rps > 0 {
		s.limiter = newRateLimiter(rps, burst, s.log)
	}
	return s
}

// bankFromPath 取得路徑中的 {bank}；不存在時回 404。
func (s *Server) bankFromPath(w http.ResponseWriter, r *http.Request) (*bank.Bank, bool) {
	name := mux.Vars(r)["bank"]
	b, ok := s.Registry.Get(name)
	if !ok {
		writeBankErr(w, fmt.Errorf("%w: %s", bank.ErrBankNotFound, name))
		return nil, false
	}
	return b, true
}

type bankInfo struct {
	Name              string   `json:"name"`
	MaxAccounts       int      `json:"maxAccounts"`
	AccountsAvailable int      `json:"accountsAvailable"`
	Full              bool     `json:"full"`
	ForeignBanks      []string `json:"foreignBanks"`
}

// bankDetails 處理 GET /banks/{bank}。
func (s *Server) bankDetails(w http.ResponseWriter, r *http.Request) {
	b, ok := s.bankFromPath(w, r)
	if !ok {
		return
	}
	foreign := b.ForeignBanks()
	if foreign == nil {
		foreign = []string{}
	}
	writeJSON(w, http.StatusOK, bankInfo{
		Name:              b.Name(),
		MaxAccounts:       b.MaxAccounts(),
		AccountsAvailable: b.AccountsAvailable(),
		Full:              b.IsFull(),
		ForeignBanks:      foreign,
	})
}

// accountsLeft 處理 GET /banks/{bank}/accounts-left。
func (s *Server) accountsLeft(w http.ResponseWriter, r *http.Request) {
	b, ok := s.bankFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"accountsAvailable": b.AccountsAvailable()})
}

// listAccounts 處理 GET /banks/{bank}/accounts，依帳號排序。
func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	b, ok := s.bankFromPath(w, r)
	if !ok {
		return
	}
	accts := b.Accounts()
	out := make([]bank.AccountSummary, 0, len(accts))
	for _, a := range accts {
		out = append(out, a.Summary())
	}
	writeJSON(w, http.StatusOK, out)
}

// createAccount 處理 POST /banks/{bank}/accounts。
func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	b, ok := s.bankFromPath(w, r)
	if !ok {
		return
	}
	var req struct {
		AccountDetails bank.AccountDetails `json:"accountDetails"`
		Balance        decimal.Decimal     `json:"balance"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	number, err := b.CreateAccount(req.AccountDetails, req.Balance)
	if err != nil {
		writeBankErr(w, err)
		return
	}
	a, _ := b.GetAccount(number)
	// 建立成功 → 回傳 201 Created
	writeJSON(w, http.StatusCreated, a.Summary())
}

// getAccount 處理 GET /banks/{bank}/accounts/{number}。
func (s *Server) getAccount(w http.ResponseWriter, r *http.Request) {
	b, ok := s.bankFromPath(w, r)
	if !ok {
		return
	}
	a, ok := b.GetAccount(mux.Vars(r)["number"])
	if !ok {
		writeBankErr(w, bank.ErrAccountNotFound)
		return
	}
	writeJSON(w, http.StatusOK, a.Summary())
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type balanceResponse struct {
	AccountNumber string          `json:"accountNumber"`
	Balance       decimal.Decimal `json:"balance"`
}

// addMoney 處理 POST /banks/{bank}/accounts/{number}/add。
func (s *Server) addMoney(w http.ResponseWriter, r *http.Request) {
	s.changeBalance(w, r, (*bank.Bank).AddMoney)
}

// removeMoney 處理 POST /banks/{bank}/accounts/{number}/remove。
func (s *Server) removeMoney(w http.ResponseWriter, r *http.Request) {
	s.changeBalance(w, r, (*bank.Bank).RemoveMoney)
}

func (s *Server) changeBalance(w http.ResponseWriter, r *http.Request,
	op func(*bank.Bank, string, decimal.Decimal) (decimal.Decimal, error)) {
	b, ok := s.bankFromPath(w, r)
	if !ok {
		return
	}
	var req amountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	number := mux.Vars(r)["number"]
	bal, err := op(b, number, req.Amount)
	if err != nil {
		writeBankErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{AccountNumber: number, Balance: bal})
}

// ledger 處理 GET /banks/{bank}/ledger，依提交順序列出所有分錄。
func (s *Server) ledger(w http.ResponseWriter, r *http.Request) {
	b, ok := s.bankFromPath(w, r)
	if !ok {
		return
	}
	entries := b.Ledger().Entries()
	if entries == nil {
		entries = []bank.AccountAction{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// report 處理 GET /banks/{bank}/report：一致性快照，格式與關機時寫出的報表相同。
func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	b, ok := s.bankFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, storage.NewReport(b.Snapshot()))
}

// foreignFee 處理 GET /banks/{bank}/fees/{otherBank}。
func (s *Server) foreignFee(w http.ResponseWriter, r *http.Request) {
	b, ok := s.bankFromPath(w, r)
	if !ok {
		return
	}
	other := mux.Vars(r)["otherBank"]
	fee, ok := b.GetForeignBankFee(other)
	if !ok {
		writeBankErr(w, fmt.Errorf("%w: %s", bank.ErrForeignFeeNotFound, other))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rateType": fee.Kind(),
		"value":    fee.Value(),
	})
}

// transfer 處理行內轉帳：
//
//	POST /banks/{bank}/transfer  → JSON {from, to, amount}
//
// 成功後回傳提交當下兩帳戶的餘額。
func (s *Server) transfer(w http.ResponseWriter, r *http.Request) {
	b, ok := s.bankFromPath(w, r)
	if !ok {
		return
	}
	var req struct {
		From   string          `json:"from"`
		To     string          `json:"to"`
		Amount decimal.Decimal `json:"amount"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	receipt, err := b.Transfer(req.From, req.To, req.Amount)
	if err != nil {
		writeBankErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// transferInterbank 處理跨行轉帳：
//
//	POST /banks/{bank}/transfer-interbank  → JSON {from, foreignBank, to, amount}
//
// 來源帳戶扣除 amount 加手續費，目的帳戶收到 amount。
func (s *Server) transferInterbank(w http.ResponseWriter, r *http.Request) {
	b, ok := s.bankFromPath(w, r)
	if !ok {
		return
	}
	var req struct {
		From        string          `json:"from"`
		ForeignBank string          `json:"foreignBank"`
		To          string          `json:"to"`
		Amount      decimal.Decimal `json:"amount"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	receipt, err := b.TransferInterbank(req.From, req.ForeignBank, req.To, req.Amount)
	if err != nil {
		writeBankErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, receipt)
}

// health 提供健康檢查端點：GET /health。
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "banks": s.Registry.Names()})
}
