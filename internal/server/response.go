// internal/server/response.go
//
// 本檔負責統一 HTTP 回應格式。
// 透過集中管理 JSON 與錯誤輸出，可確保整個 REST API 的一致性。
//   - 「成功回應」使用標準 JSON 編碼（Content-Type: application/json）。
//   - 「錯誤回應」統一由 writeErr 輸出為 {"error": "..."}。
//   - 業務錯誤到 HTTP 狀態碼的對應集中在 statusFor。
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"ledgerbank/internal/bank"
)

// writeJSON 統一輸出成功回應。
// - code：HTTP 狀態碼（例如 200, 201）
// - v：可被 JSON 序列化的物件（map、struct、slice 皆可）
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr 統一輸出錯誤回應。
func writeErr(w http.ResponseWriter, err error, code int) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// writeBankErr 依錯誤種類決定狀態碼後輸出。
func writeBankErr(w http.ResponseWriter, err error) {
	writeErr(w, err, statusFor(err))
}

// statusFor 將 bank 層的哨兵錯誤對應到 HTTP 狀態碼：
//
//	金額不合法                 → 400
//	銀行、帳戶、手續費不存在     → 404
//	餘額不足、帳號已用盡         → 409
func statusFor(err error) int {
	switch {
	case errors.Is(err, bank.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, bank.ErrBankNotFound),
		errors.Is(err, bank.ErrAccountNotFound),
		errors.Is(err, bank.ErrForeignAccountNotFound),
		errors.Is(err, bank.ErrForeignFeeNotFound):
		return http.StatusNotFound
	case errors.Is(err, bank.ErrInsufficientFunds),
		errors.Is(err, bank.ErrAccountCapacityExceeded):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON 解析請求內容；失敗時直接回 400 並回傳 false。
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErr(w, err, http.StatusBadRequest)
		return false
	}
	return true
}
