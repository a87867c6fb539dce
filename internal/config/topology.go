package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"ledgerbank/internal/bank"
)

// Topology 描述程序內的銀行、跨行手續費與種子帳戶。
type Topology struct {
	Banks []BankSpec `yaml:"banks"`
	Fees  []FeeSpec  `yaml:"fees"`
}

// BankSpec 為單一銀行設定；MaxAccounts 為 0 時採用 bank.DefaultMaxAccounts。
type BankSpec struct {
	Name        string        `yaml:"name"`
	MaxAccounts int           `yaml:"maxAccounts"`
	Accounts    []AccountSpec `yaml:"accounts"`
}

// AccountSpec 為啟動時建立的種子帳戶。
type AccountSpec struct {
	FullName string `yaml:"fullName"`
	Balance  string `yaml:"balance"`
}

// FeeSpec 為 From 匯款到 To 的手續費政策；Type 為 fixed 或 percentage。
type FeeSpec struct {
	From  string `yaml:"from"`
	To    string `yaml:"to"`
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
}

// DefaultTopology 回傳兩家範例銀行：ABC→XYZ 收固定 1.0，XYZ→ABC 收 5%。
func DefaultTopology() Topology {
	seed := func(prefix string) []AccountSpec {
		out := make([]AccountSpec, 10)
		for i := range out {
			out[i] = AccountSpec{FullName: fmt.Sprintf("%s customer %d", prefix, i+1), Balance: "100"}
		}
		return out
	}
	return Topology{
		Banks: []BankSpec{
			{Name: "ABC", Accounts: seed("ABC")},
			{Name: "XYZ", Accounts: seed("XYZ")},
		},
		Fees: []FeeSpec{
			{From: "ABC", To: "XYZ", Type: bank.FeeKindFixed, Value: "1.0"},
			{From: "XYZ", To: "ABC", Type: bank.FeeKindPercentage, Value: "5.0"},
		},
	}
}

// LoadTopology 讀取 YAML 拓樸檔；path 為空時回傳 DefaultTopology。
func LoadTopology(path string) (Topology, error) {
	if path == "" {
		return DefaultTopology(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Topology{}, fmt.Errorf("failed to read topology: %w", err)
	}
	var t Topology
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Topology{}, fmt.Errorf("failed to parse topology: %w", err)
	}
	if len(t.Banks) == 0 {
		return Topology{}, fmt.Errorf("topology %s: no banks defined", path)
	}
	return t, nil
}

// ParseFee 將 FeeSpec 轉為 bank.InterBankFee。
func (f FeeSpec) ParseFee() (bank.InterBankFee, error) {
	v, err := decimal.NewFromString(f.Value)
	if err != nil {
		return nil, fmt.Errorf("fee %s->%s: %w", f.From, f.To, err)
	}
	if v.IsNegative() {
		return nil, fmt.Errorf("fee %s->%s: value cannot be negative", f.From, f.To)
	}
	switch f.Type {
	case bank.FeeKindFixed:
		return bank.FixedFee{Amount: v}, nil
	case bank.FeeKindPercentage:
		return bank.PercentageFee{Percent: v}, nil
	default:
		return nil, fmt.Errorf("fee %s->%s: unknown type %q", f.From, f.To, f.Type)
	}
}

// Build 依拓樸建立 Registry：建立銀行、種子帳戶，最後登記跨行手續費。
func (t Topology) Build(opts ...bank.Option) (*bank.Registry, error) {
	reg := bank.NewRegistry()
	for _, spec := range t.Banks {
		bankOpts := opts
		if spec.MaxAccounts > 0 {
			bankOpts = append(append([]bank.Option{}, opts...), bank.WithMaxAccounts(spec.MaxAccounts))
		}
		b := bank.NewBank(spec.Name, bankOpts...)
		if err := reg.Add(b); err != nil {
			return nil, err
		}
		for _, a := range spec.Accounts {
			bal, err := decimal.NewFromString(a.Balance)
			if err != nil {
				return nil, fmt.Errorf("bank %s account %q: %w", spec.Name, a.FullName, err)
			}
			if _, err := b.CreateAccount(bank.AccountDetails{FullName: a.FullName}, bal); err != nil {
				return nil, fmt.Errorf("bank %s account %q: %w", spec.Name, a.FullName, err)
			}
		}
	}
	for _, f := range t.Fees {
		fee, err := f.ParseFee()
		if err != nil {
			return nil, err
		}
		if err := reg.Link(f.From, f.To, fee); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
