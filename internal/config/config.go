// internal/config/config.go
//
// 讀取服務設定：先以 godotenv 載入 .env（不存在則略過），再讀環境變數。
// 銀行拓樸（銀行、容量、跨行手續費、種子帳戶）另由 YAML 檔描述，見 topology.go。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config 為伺服器啟動所需設定。
type Config struct {
	Addr         string       // HTTP 監聽位址，BANK_ADDR
	LogLevel     logrus.Level // BANK_LOG_LEVEL
	LogFormat    string       // "text" 或 "json"，BANK_LOG_FORMAT
	TopologyPath string       // 空字串代表使用內建的兩家範例銀行，BANK_TOPOLOGY
	ReportDir    string       // 關閉時寫出總帳報表的目錄；空字串代表不寫，BANK_REPORT_DIR
	RateLimit    float64      // 每個來源每秒請求數；0 代表不限流，BANK_RATE_LIMIT
	RateBurst    int          // BANK_RATE_BURST
}

// Default 回傳預設設定。
func Default() Config {
	return Config{
		Addr:      ":8080",
		LogLevel:  logrus.InfoLevel,
		LogFormat: "text",
		RateLimit: 0,
		RateBurst: 20,
	}
}

// Load 載入 envFile（可為空）後由環境變數覆寫預設值。
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := Default()
	if v := os.Getenv("BANK_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("BANK_LOG_LEVEL"); v != "" {
		lvl, err := logrus.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("BANK_LOG_LEVEL: %w", err)
		}
		cfg.LogLevel = lvl
	}
	if v := os.Getenv("BANK_LOG_FORMAT"); v != "" {
		if v != "text" && v != "json" {
			return Config{}, fmt.Errorf("BANK_LOG_FORMAT: unsupported format %q", v)
		}
		cfg.LogFormat = v
	}
	cfg.TopologyPath = os.Getenv("BANK_TOPOLOGY")
	cfg.ReportDir = os.Getenv("BANK_REPORT_DIR")
	if v := os.Getenv("BANK_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return Config{}, fmt.Errorf("BANK_RATE_LIMIT: invalid value %q", v)
		}
		cfg.RateLimit = f
	}
	if v := os.Getenv("BANK_RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("BANK_RATE_BURST: invalid value %q", v)
		}
		cfg.RateBurst = n
	}
	return cfg, nil
}

// NewLogger 依設定建立 logrus logger。
func (c Config) NewLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(c.LogLevel)
	if c.LogFormat == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}
