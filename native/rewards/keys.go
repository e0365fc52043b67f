package rewards

// State keys. Per-account keys carry the account identifier as a suffix;
// index keys enumerate the accounts and options the per-entry keys cover.
var (
	keySupply      = []byte("rewards/supply")
	keyPolicy      = []byte("rewards/policy")
	keyAccountsIdx = []byte("rewards/accounts")
	keyOptionsIdx  = []byte("rewards/options")
)

func balanceKey(account string) []byte {
	return append([]byte("rewards/balance/"), account...)
}

func historyKey(account string) []byte {
	return append([]byte("rewards/history/"), account...)
}

func optionKey(id string) []byte {
	return append([]byte("rewards/option/"), id...)
}

// State describes the persistence the reward engines need from the
// surrounding state manager.
type State interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
	KVAppend(key []byte, member string) error
	KVGetList(key []byte, out interface{}) error
}
