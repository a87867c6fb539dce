// internal/bank/errors.go
//
// 本檔集中定義「領域錯誤（domain errors）」。
// 這些錯誤屬於商業邏輯層級（非系統錯誤），會由上層 HTTP handler 轉換成適當的 HTTP 狀態碼。
// 每個操作要嘛完整提交，要嘛以下列其中一個錯誤失敗，不存在部分成功。

package bank

import "errors"

var (
	// ErrInvalidAmount 代表金額為負數（存款、提款、轉帳或初始餘額）。
	// 對應 HTTP 狀態碼 400 Bad Request。
	ErrInvalidAmount = errors.New("amount cannot be negative")

	// ErrInsufficientFunds 代表提款或轉帳會讓餘額變成負數。
	// 對應 HTTP 狀態碼 409 Conflict。
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountCapacityExceeded 代表銀行已達帳戶上限，無法再配發帳號。
	// 對應 HTTP 狀態碼 409 Conflict。
	ErrAccountCapacityExceeded = errors.New("account capacity exceeded")

	// ErrAccountNotFound 代表本行帳戶不存在。
	// 對應 HTTP 狀態碼 404 Not Found。
	ErrAccountNotFound = errors.New("account not found")

	// ErrForeignAccountNotFound 代表他行（目的銀行）帳戶不存在。
	ErrForeignAccountNotFound = errors.New("foreign account not found")

	// ErrForeignFeeNotFound 代表尚未登記對該他行的跨行手續費。
	ErrForeignFeeNotFound = errors.New("foreign bank fee not found")

	// ErrBankNotFound 代表 Registry 中找不到指定名稱的銀行。
	ErrBankNotFound = errors.New("bank not found")

	// ErrDuplicateBank 代表 Registry 中已有同名銀行。
	ErrDuplicateBank = errors.New("bank already registered")
)
