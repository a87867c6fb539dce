// internal/server/router.go
//
// 本檔負責 HTTP 路由註冊，與 handler.go 分離：
//   - handler.go 定義「如何處理請求」
//   - router.go 定義「請求如何被導向」與中介層順序
//   - main.go 組裝整體應用（注入 Registry、Metrics、Logger）
package server

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// Router 建立並回傳整個 HTTP 處理鏈。
// 所有端點同時掛在 /api/v1 與根路徑下。
func (s *Server) Router() http.Handler {
	root := mux.NewRouter()

	// 中介層順序：trace/log → 限流 → 指標
	root.Use(s.logRequests)
	if s.limiter != nil {
		root.Use(s.limiter.Handler)
	}
	if s.metrics != nil {
		root.Use(s.metrics.Middleware)
		root.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	s.routes(root.PathPrefix("/api/v1").Subrouter())
	s.routes(root)

	root.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, fmt.Errorf("no route for %s %s", r.Method, r.URL.Path), http.StatusNotFound)
	})
	return root
}

// routes 註冊 API 路由。
func (s *Server) routes(r *mux.Router) {
	// 健康檢查：可供監控或 Docker liveness probe 使用。
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)

	// 銀行資訊與帳號配額
	r.HandleFunc("/banks/{bank}", s.bankDetails).Methods(http.MethodGet)
	r.HandleFunc("/banks/{bank}/accounts-left", s.accountsLeft).Methods(http.MethodGet)

	// 帳戶操作
	r.HandleFunc("/banks/{bank}/accounts", s.listAccounts).Methods(http.MethodGet)
	r.HandleFunc("/banks/{bank}/accounts", s.createAccount).Methods(http.MethodPost)
	r.HandleFunc("/banks/{bank}/accounts/{number}", s.getAccount).Methods(http.MethodGet)
	r.HandleFunc("/banks/{bank}/accounts/{number}/add", s.addMoney).Methods(http.MethodPost)
	r.HandleFunc("/banks/{bank}/accounts/{number}/remove", s.removeMoney).Methods(http.MethodPost)

	// 總帳與報表
	r.HandleFunc("/banks/{bank}/ledger", s.ledger).Methods(http.MethodGet)
	r.HandleFunc("/banks/{bank}/report", s.report).Methods(http.MethodGet)

	// 跨行手續費與轉帳
	r.HandleFunc("/banks/{bank}/fees/{otherBank}", s.foreignFee).Methods(http.MethodGet)
	r.HandleFunc("/banks/{bank}/transfer", s.transfer).Methods(http.MethodPost)
	r.HandleFunc("/banks/{bank}/transfer-interbank", s.transferInterbank).Methods(http.MethodPost)
}
