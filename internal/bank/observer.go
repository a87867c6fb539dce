package bank

// 操作名稱，作為 Observer 與指標的標籤。
const (
	opCreateAccount     = "create_account"
	opAddMoney          = "add_money"
	opRemoveMoney       = "remove_money"
	opTransfer          = "transfer"
	opTransferInterbank = "transfer_interbank"
)

// Observer 接收每次操作的結果；實作必須可被並行呼叫且不得阻塞。
type Observer interface {
	OperationCompleted(bank, op string, err error)
	AccountsAvailable(bank string, available int)
}

type nopObserver struct{}

func (nopObserver) OperationCompleted(string, string, error) {}
func (nopObserver) AccountsAvailable(string, int) {}
