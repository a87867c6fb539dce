// internal/storage/jsonstore.go
//
// 提供 JSON 報表的寫出與讀回。
// 採「原子寫入」策略 (atomic write)：先寫入 .tmp 檔，再以 rename() 取代原檔，
// 可避免中途寫入失敗導致檔案損壞。
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ledgerbank/internal/bank"
)

const storageKind = "json_report"

// LoadReport 讀取指定路徑的 JSON 報表。
func LoadReport(path string) (Report, error) {
	var r Report
	f, err := os.Open(path)
	if err != nil {
		return r, err
	}
	defer f.Close()
	err = json.NewDecoder(f).Decode(&r)
	return r, err
}

// SaveReport 將報表序列化為 JSON 檔案，並採原子方式寫入。
// 流程：
//  1. 設定 Meta.Storage 與當前時間戳。
//  2. 寫入 path+".tmp" 暫存檔。
//  3. 寫入完成後使用 os.Rename() 取代正式檔案。
func SaveReport(path string, r Report) error {
	r.Meta.Storage = storageKind
	r.Meta.Timestamp = time.Now()
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}

	// 使用縮排格式輸出，方便人工檢視
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, path)
}

// ReportPath 回傳銀行報表在 dir 下的檔名。
func ReportPath(dir, bankName string) string {
	return filepath.Join(dir, fmt.Sprintf("ledger-%s.json", bankName))
}

// SaveRegistry 為 Registry 中每家銀行寫出一份報表，回傳已寫出的路徑。
func SaveRegistry(dir string, reg *bank.Registry) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var paths []string
	for _, name := range reg.Names() {
		b, ok := reg.Get(name)
		if !ok {
			continue
		}
		path := ReportPath(dir, name)
		if err := SaveReport(path, NewReport(b.Snapshot())); err != nil {
			return paths, fmt.Errorf("save report %s: %w", name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
