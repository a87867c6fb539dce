package bank

import (
	"fmt"
	"sort"
	"sync"
)

// Registry 持有同一程序內所有具名銀行。
// 以明確傳遞的物件取代全域狀態，測試可各自建立獨立實例。
type Registry struct {
	mu    sync.RWMutex
	banks map[string]*Bank
}

// NewRegistry 建立空的 Registry。
func NewRegistry() *Registry {
	return &Registry{banks: make(map[string]*Bank)}
}

// Add 登記銀行；同名銀行只能登記一次。
func (r *Registry) Add(b *Bank) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.banks[b.name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateBank, b.name)
	}
	r.banks[b.name] = b
	return nil
}

// Get 依名稱取得銀行。
func (r *Registry) Get(name string) (*Bank, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.banks[name]
	return b, ok
}

// Names 回傳排序後的銀行名稱。
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.banks))
	for name := range r.banks {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Link 讓 from 以 fee 匯款到 to。
func (r *Registry) Link(from, to string, fee InterBankFee) error {
	src, ok := r.Get(from)
	if !ok {
		return fmt.Errorf("%w: %s", ErrBankNotFound, from)
	}
	dst, ok := r.Get(to)
	if !ok {
		return fmt.Errorf("%w: %s", ErrBankNotFound, to)
	}
	src.AddForeignBank(dst, fee)
	return nil
}
