package trie

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
)

// AccountRecord is the hashed-accounts table's value.
type AccountRecord struct {
	Nonce       uint64
	Balance     *uint256.Int
	StorageRoot [32]byte
	CodeHash    [32]byte
}

// EmptyAccountRecord is the zero-value account: nonce 0, balance 0, and
// all-zero StorageRoot and CodeHash. It does not carry the empty-trie root
// or the empty-code hash; only the numeric fields are fixed.
var EmptyAccountRecord = AccountRecord{Balance: uint256.NewInt(0)}

type accountRLP struct {
	Nonce       uint64
	Balance     *uint256.Int
	StorageRoot [32]byte
	CodeHash    [32]byte
}

// EncodeAccountRecord RLP-encodes a, matching the codec contract
// `compress: V -> bytes`.
func EncodeAccountRecord(a AccountRecord) []byte {
	balance := a.Balance
	if balance == nil {
		balance = uint256.NewInt(0)
	}
	out, err := rlp.EncodeToBytes(accountRLP{
		Nonce:       a.Nonce,
		Balance:     balance,
		StorageRoot: a.StorageRoot,
		CodeHash:    a.CodeHash,
	})
	if err != nil {
		panic("trie: account record RLP encoding failed: " + err.Error())
	}
	return out
}

// DecodeAccountRecord reverses EncodeAccountRecord.
func DecodeAccountRecord(b []byte) (AccountRecord, error) {
	var a accountRLP
	if err := rlp.DecodeBytes(b, &a); err != nil {
		return AccountRecord{}, &decodeErr{typ: "account-record", err: err}
	}
	return AccountRecord{
		Nonce:       a.Nonce,
		Balance:     a.Balance,
		StorageRoot: a.StorageRoot,
		CodeHash:    a.CodeHash,
	}, nil
}

type decodeErr struct {
	typ string
	err error
}

func (e *decodeErr) Error() string { return "trie: decode " + e.typ + ": " + e.err.Error() }
func (e *decodeErr) Unwrap() error { return e.err }
