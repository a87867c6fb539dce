// internal/storage/model.go
//
// 定義「報表層 (report layer)」的結構模型。
// 該層的責任是提供銀行總帳報表的序列化格式（目前為 JSON），
// 並保存必要的中繼資訊 (Meta)，以便版本控制與追溯報表來源。
// 報表只供稽核與對帳使用；程序重啟時不會從報表還原狀態。
package storage

import (
	"time"

	"ledgerbank/internal/bank"
)

// Meta 為所有報表的中繼資料 (metadata)。
type Meta struct {
	Storage   string    `json:"storage"`        // 儲存類型，例如 "json_report"
	Version   int       `json:"version"`        // 結構版本號，用於未來升級時比對
	Timestamp time.Time `json:"timestamp"`      // 報表寫出時間
	Note      string    `json:"note,omitempty"` // 備註欄，可選
}

// Report 為單一銀行的完整報表：帳戶餘額與總帳來自同一份一致性快照。
type Report struct {
	Meta        Meta                  `json:"_meta"`
	Bank        string                `json:"bank"`
	MaxAccounts int                   `json:"max_accounts"`
	TakenAt     time.Time             `json:"taken_at"`
	Accounts    []bank.AccountSummary `json:"accounts"`
	Ledger      []bank.AccountAction  `json:"ledger"`
}

// NewReport 由 bank.Snapshot 建立報表。
func NewReport(s bank.Snapshot) Report {
	return Report{
		Meta:        Meta{Storage: storageKind, Version: 1},
		Bank:        s.Bank,
		MaxAccounts: s.MaxAccounts,
		TakenAt:     s.TakenAt,
		Accounts:    s.Accounts,
		Ledger:      s.Ledger,
	}
}
