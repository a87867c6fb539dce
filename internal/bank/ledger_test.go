package bank

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLedgerEntriesAreCopies 驗證 Entries 回傳拷貝，外部修改不影響總帳。
func TestLedgerEntriesAreCopies(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	b := NewBank("abc", WithClock(func() time.Time { return fixed }))
	n, err := b.CreateAccount(AccountDetails{FullName: "A"}, dec("10"))
	require.NoError(t, err)

	entries := b.Ledger().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, fixed, entries[0].Time)
	assert.Equal(t, n, entries[0].AccountNumber)

	entries[0].AccountNumber = "tampered"
	assert.Equal(t, n, b.Ledger().Entries()[0].AccountNumber)
}
