// internal/server/server_test.go
//
// 本檔為 server 層的整合測試 (Integration Test)。
// 以 httptest.Server 模擬完整 HTTP 請求流程，驗證 REST API 與 bank 層之間的整合、
// 狀態正確性、錯誤代碼映射與中介層行為。
package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerbank/internal/bank"
	"ledgerbank/internal/metrics"
	"ledgerbank/internal/storage"
)

// doJSON 封裝 HTTP JSON 請求邏輯並驗證回傳狀態碼；out 非 nil 時解析回應。
func doJSON(t *testing.T, c *http.Client, method, url string, body any, wantCode int, out any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, wantCode, resp.StatusCode, "%s %s", method, url)
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// newTestRegistry 建立 ABC（容量 3）與 XYZ 兩家銀行：ABC→XYZ 固定 1.0，XYZ→ABC 5%。
func newTestRegistry(t *testing.T, opts ...bank.Option) *bank.Registry {
	t.Helper()
	reg := bank.NewRegistry()
	require.NoError(t, reg.Add(bank.NewBank("ABC", append([]bank.Option{bank.WithMaxAccounts(3)}, opts...)...)))
	require.NoError(t, reg.Add(bank.NewBank("XYZ", opts...)))
	require.NoError(t, reg.Link("ABC", "XYZ", bank.FixedFee{Amount: dec("1.0")}))
	require.NoError(t, reg.Link("XYZ", "ABC", bank.PercentageFee{Percent: dec("5")}))
	return reg
}

func newTestServer(t *testing.T) (*httptest.Server, *metrics.Metrics) {
	t.Helper()
	m := metrics.New()
	log, _ := test.NewNullLogger()
	reg := newTestRegistry(t, bank.WithObserver(m), bank.WithLogger(log))
	ts := httptest.NewServer(NewServer(reg, m, log).Router())
	t.Cleanup(ts.Close)
	return ts, m
}

func TestHTTPAccountFlow(t *testing.T) {
	ts, _ := newTestServer(t)
	cli := ts.Client()
	base := ts.URL + "/banks/ABC"

	var health map[string]any
	doJSON(t, cli, "GET", ts.URL+"/health", nil, 200, &health)
	assert.Equal(t, "ok", health["status"])

	// 建立帳戶
	var a1, a2 bank.AccountSummary
	doJSON(t, cli, "POST", base+"/accounts", map[string]any{"accountDetails": map[string]string{"fullName": "A"}, "balance": "1000"}, 201, &a1)
	doJSON(t, cli, "POST", base+"/accounts", map[string]any{"accountDetails": map[string]string{"fullName": "B"}, "balance": 500}, 201, &a2)
	assert.Equal(t, "0000", a1.AccountNumber)
	assert.Equal(t, "0001", a2.AccountNumber)
	assert.Equal(t, "A", a1.AccountDetails.FullName)
	assert.True(t, dec("1000").Equal(a1.Balance))

	var left map[string]int
	doJSON(t, cli, "GET", base+"/accounts-left", nil, 200, &left)
	assert.Equal(t, 1, left["accountsAvailable"])

	// 存款、提款
	var bal balanceResponse
	doJSON(t, cli, "POST", base+"/accounts/0000/add", map[string]string{"amount": "200.5"}, 200, &bal)
	assert.True(t, dec("1200.5").Equal(bal.Balance))
	doJSON(t, cli, "POST", base+"/accounts/0000/remove", map[string]string{"amount": "0.5"}, 200, &bal)
	assert.True(t, dec("1200").Equal(bal.Balance))

	// 行內轉帳
	var receipt bank.TransferReceipt
	doJSON(t, cli, "POST", base+"/transfer", map[string]string{"from": "0000", "to": "0001", "amount": "300"}, 200, &receipt)
	assert.True(t, dec("900").Equal(receipt.FromBalance))
	assert.True(t, dec("800").Equal(receipt.ToBalance))

	var got bank.AccountSummary
	doJSON(t, cli, "GET", base+"/accounts/0001", nil, 200, &got)
	assert.True(t, dec("800").Equal(got.Balance))

	var list []bank.AccountSummary
	doJSON(t, cli, "GET", base+"/accounts", nil, 200, &list)
	require.Len(t, list, 2)
	assert.Equal(t, "0000", list[0].AccountNumber)

	// 總帳：2 筆開戶 + 1 存 + 1 提 + 2 轉帳
	var entries []bank.AccountAction
	doJSON(t, cli, "GET", base+"/ledger", nil, 200, &entries)
	assert.Len(t, entries, 6)

	var rep storage.Report
	doJSON(t, cli, "GET", base+"/report", nil, 200, &rep)
	assert.Equal(t, "ABC", rep.Bank)
	assert.Len(t, rep.Accounts, 2)
	assert.Len(t, rep.Ledger, 6)
}

func TestHTTPInterbankTransfer(t *testing.T) {
	ts, _ := newTestServer(t)
	cli := ts.Client()

	var src, dst bank.AccountSummary
	doJSON(t, cli, "POST", ts.URL+"/api/v1/banks/ABC/accounts", map[string]any{"accountDetails": map[string]string{"fullName": "A"}, "balance": "1000"}, 201, &src)
	doJSON(t, cli, "POST", ts.URL+"/api/v1/banks/XYZ/accounts", map[string]any{"accountDetails": map[string]string{"fullName": "X"}, "balance": "1000"}, 201, &dst)

	var fee struct {
		RateType string          `json:"rateType"`
		Value    decimal.Decimal `json:"value"`
	}
	doJSON(t, cli, "GET", ts.URL+"/api/v1/banks/ABC/fees/XYZ", nil, 200, &fee)
	assert.Equal(t, bank.FeeKindFixed, fee.RateType)
	assert.True(t, dec("1").Equal(fee.Value))

	var receipt bank.TransferReceipt
	doJSON(t, cli, "POST", ts.URL+"/api/v1/banks/ABC/transfer-interbank",
		map[string]string{"from": src.AccountNumber, "foreignBank": "XYZ", "to": dst.AccountNumber, "amount": "9.0"}, 200, &receipt)
	assert.True(t, dec("990").Equal(receipt.FromBalance))
	assert.True(t, dec("1009").Equal(receipt.ToBalance))
	assert.True(t, dec("1").Equal(receipt.Fee))

	// 百分比手續費：XYZ→ABC 5%，10 元 → 1009-10.5 / 990+10
	doJSON(t, cli, "POST", ts.URL+"/banks/XYZ/transfer-interbank",
		map[string]string{"from": dst.AccountNumber, "foreignBank": "ABC", "to": src.AccountNumber, "amount": "10"}, 200, &receipt)
	assert.True(t, dec("998.5").Equal(receipt.FromBalance))
	assert.True(t, dec("1000").Equal(receipt.ToBalance))

	// 找不到對方帳戶：兩邊都不變
	doJSON(t, cli, "POST", ts.URL+"/banks/ABC/transfer-interbank",
		map[string]string{"from": src.AccountNumber, "foreignBank": "XYZ", "to": "9999", "amount": "1"}, 404, nil)
	var got bank.AccountSummary
	doJSON(t, cli, "GET", ts.URL+"/banks/ABC/accounts/"+src.AccountNumber, nil, 200, &got)
	assert.True(t, dec("1000").Equal(got.Balance))
}

func TestHTTPErrorMapping(t *testing.T) {
	ts, _ := newTestServer(t)
	cli := ts.Client()
	base := ts.URL + "/banks/ABC"

	for i := 0; i < 3; i++ {
		doJSON(t, cli, "POST", base+"/accounts", map[string]any{"accountDetails": map[string]string{"fullName": "A"}, "balance": "10"}, 201, nil)
	}

	var body map[string]string
	cases := []struct {
		name   string
		method string
		url    string
		body   any
		code   int
	}{
		{"capacity exceeded", "POST", base + "/accounts", map[string]any{"balance": "1"}, 409},
		{"negative amount", "POST", base + "/accounts/0000/add", map[string]string{"amount": "-1"}, 400},
		{"overdraft", "POST", base + "/accounts/0000/remove", map[string]string{"amount": "11"}, 409},
		{"unknown account", "GET", base + "/accounts/0042", nil, 404},
		{"unknown bank", "GET", ts.URL + "/banks/NOPE", nil, 404},
		{"unknown fee", "GET", base + "/fees/NOPE", nil, 404},
		{"fee not registered", "POST", base + "/transfer-interbank", map[string]string{"from": "0000", "foreignBank": "NOPE", "to": "0000", "amount": "1"}, 404},
		{"transfer overdraft", "POST", base + "/transfer", map[string]string{"from": "0000", "to": "0001", "amount": "100"}, 409},
		{"unknown route", "GET", ts.URL + "/nope", nil, 404},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body = nil
			doJSON(t, cli, tc.method, tc.url, tc.body, tc.code, &body)
			assert.NotEmpty(t, body["error"])
		})
	}

	// 壞 JSON → 400
	resp, err := cli.Post(base+"/accounts/0000/add", "application/json", strings.NewReader("{bad"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// 方法錯誤 → 405
	resp, err = cli.Post(base+"/ledger", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	// 失敗的操作不會寫入總帳
	var entries []bank.AccountAction
	doJSON(t, cli, "GET", base+"/ledger", nil, 200, &entries)
	assert.Len(t, entries, 3)
}

func TestTraceIDAndMetrics(t *testing.T) {
	ts, _ := newTestServer(t)
	cli := ts.Client()

	req, err := http.NewRequest("GET", ts.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set(traceHeader, "trace-123")
	resp, err := cli.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "trace-123", resp.Header.Get(traceHeader))

	resp = doJSON(t, cli, "GET", ts.URL+"/banks/ABC", nil, 200, nil)
	assert.NotEmpty(t, resp.Header.Get(traceHeader))

	resp, err = cli.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `ledgerbank_http_requests_total{method="GET",path="/banks/{bank}",status="200"} 1`)
	assert.Contains(t, buf.String(), `ledgerbank_bank_accounts_available{bank="ABC"} 3`)
}

func TestRateLimit(t *testing.T) {
	log, hook := test.NewNullLogger()
	h := NewServer(newTestRegistry(t), nil, log).WithRateLimit(0.001, 2).Router()

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	// 不同來源不受影響
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.RemoteAddr = "10.0.0.2:5000"
	h.ServeHTTP(rec, req)
	assert.Equal(t, 200, rec.Code)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}
