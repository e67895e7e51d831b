package trie

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/tclemos/triekv/kv"
)

// AccountUpdate is one account-level change in a post-state diff: either a
// new/updated account record, or a deletion.
type AccountUpdate struct {
	Address kv.Hash32
	Deleted bool
	Account AccountRecord
}

// StorageUpdate is one storage-slot change in a post-state diff.
type StorageUpdate struct {
	Address kv.Hash32
	Slot    kv.Hash32
	Deleted bool
	Value   kv.Hash32
}

// PostStateDiff is the set of per-address account and storage changes
// produced by executing a block, indexed by hashed keys.
type PostStateDiff struct {
	Accounts []AccountUpdate
	Storages []StorageUpdate
}

// StateRootError wraps a storage failure encountered while computing a
// state root; any codec or
// structural error from the trie build itself is surfaced verbatim.
type StateRootError struct {
	Err error
}

func (e *StateRootError) Error() string { return "trie: state root: " + e.Err.Error() }
func (e *StateRootError) Unwrap() error { return e.Err }

func wrapStorageErr(err error) error {
	if err == nil {
		return nil
	}
	return &StateRootError{Err: err}
}

// CalculateStateRoot computes the Merkle root of tx's hashed state
// overlaid with diff, without persisting anything.
func CalculateStateRoot(tx kv.Tx, diff PostStateDiff) ([32]byte, error) {
	root, _, err := calculateStateRoot(tx, diff, false)
	return root, err
}

// CalculateStateRootWithUpdates computes the same root as
// CalculateStateRoot and additionally persists every updated branch node
// through writeTx: account-trie and raw-trie nodes for the account trie,
// and raw-trie nodes (by hash) for each touched account's storage trie.
// StorageTrie entries are written only for storage branch updates whose
// prefix is a full 64-nibble path; the hash builder never emits a branch at
// that depth, so no StorageTrie entry is written. If the diff is non-empty and
// well-formed but produces no branch nodes (a single-account trie has none
// by construction), a minimal root node is still persisted so the root
// remains locatable.
func CalculateStateRootWithUpdates(tx kv.Tx, writeTx kv.MutTx, diff PostStateDiff) ([32]byte, error) {
	root, updates, err := calculateStateRoot(tx, diff, true)
	if err != nil {
		return root, err
	}
	for _, u := range updates.account {
		if err := kv.Put(writeTx, AccountTrie, u.prefix, u.record); err != nil {
			return root, wrapStorageErr(err)
		}
		if err := kv.Put(writeTx, TrieNodes, kv.Hash32(u.rawHash), kv.RawBytes(u.rawEnc)); err != nil {
			return root, wrapStorageErr(err)
		}
	}
	for addr, list := range updates.storage {
		c := kv.CursorDupWrite(writeTx, StorageTrie)
		for _, u := range list {
			if err := kv.Put(writeTx, TrieNodes, kv.Hash32(u.rawHash), kv.RawBytes(u.rawEnc)); err != nil {
				c.Close()
				return root, wrapStorageErr(err)
			}
			// StorageTrie's sub-key is a fixed 64-nibble path; every branch
			// or extension node sits above the leaf level with a shorter
			// prefix, so it is addressable only through TrieNodes by its
			// hash and this check skips it.
			if len(u.prefix) != 64 {
				continue
			}
			node := StorageTrieNode{Path: u.prefix, NodeHash: u.rawHash}
			if err := c.Upsert(addr, u.prefix, node); err != nil {
				c.Close()
				return root, wrapStorageErr(err)
			}
		}
		c.Close()
	}
	if (len(diff.Accounts) > 0 || len(diff.Storages) > 0) && len(updates.account) == 0 {
		rootRecord := BranchNodeRecord{RootHash: &root}
		if err := kv.Put(writeTx, AccountTrie, Nibbles{}, rootRecord); err != nil {
			return root, wrapStorageErr(err)
		}
	}
	return root, nil
}

type stateRootUpdates struct {
	account []branchUpdate
	storage map[kv.Hash32][]branchUpdate
}

func calculateStateRoot(tx kv.Tx, diff PostStateDiff, collect bool) ([32]byte, stateRootUpdates, error) {
	prefixes := NewPrefixSet(diff)

	storageRoots := make(map[kv.Hash32][32]byte)
	storageUpdates := make(map[kv.Hash32][]branchUpdate)
	for _, addr := range prefixes.StorageAddresses() {
		root, updates, err := calculateStorageRoot(tx, addr, diff, collect)
		if err != nil {
			return [32]byte{}, stateRootUpdates{}, wrapStorageErr(err)
		}
		storageRoots[addr] = root
		if collect {
			storageUpdates[addr] = updates
		}
	}

	accounts, err := mergedAccounts(tx, diff, storageRoots)
	if err != nil {
		return [32]byte{}, stateRootUpdates{}, wrapStorageErr(err)
	}

	leaves := make([]hashLeaf, 0, len(accounts))
	for addr, rec := range accounts {
		leaves = append(leaves, hashLeaf{path: FromBytes(addr[:]), value: EncodeAccountRecord(rec)})
	}
	sortLeaves(leaves)

	var collected []branchUpdate
	var collectPtr *[]branchUpdate
	if collect {
		collectPtr = &collected
	}
	root := buildHashTrie(leaves, collectPtr)

	return root, stateRootUpdates{account: collected, storage: storageUpdates}, nil
}

// mergedAccounts overlays diff.Accounts onto the on-disk HashedAccounts
// table, applying any freshly computed per-account storage roots, and
// returns the resulting live account set.
func mergedAccounts(tx kv.Tx, diff PostStateDiff, storageRoots map[kv.Hash32][32]byte) (map[kv.Hash32]AccountRecord, error) {
	out := make(map[kv.Hash32]AccountRecord)
	c := kv.CursorRead(tx, HashedAccounts)
	defer c.Close()
	for addr, rec := range c.Walk(nil) {
		out[addr] = rec
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	for _, u := range diff.Accounts {
		if u.Deleted {
			delete(out, u.Address)
			continue
		}
		out[u.Address] = u.Account
	}
	for addr, root := range storageRoots {
		rec, ok := out[addr]
		if !ok {
			continue
		}
		rec.StorageRoot = root
		out[addr] = rec
	}
	return out, nil
}

// calculateStorageRoot overlays addr's storage updates onto its on-disk
// slots and runs the hash builder over the merged (hashed slot -> value)
// set, returning addr's new storage-trie root.
func calculateStorageRoot(tx kv.Tx, addr kv.Hash32, diff PostStateDiff, collect bool) ([32]byte, []branchUpdate, error) {
	slots := make(map[kv.Hash32]kv.Hash32)
	c := kv.CursorDupRead(tx, HashedStorages)
	defer c.Close()
	for key, dv := range c.WalkDup(&addr, nil) {
		if key != addr {
			break
		}
		slots[dv.Sub] = dv.Value
	}
	if err := errFromWalkDup(c); err != nil {
		return [32]byte{}, nil, err
	}

	for _, u := range diff.Storages {
		if u.Address != addr {
			continue
		}
		if u.Deleted {
			delete(slots, u.Slot)
			continue
		}
		slots[u.Slot] = u.Value
	}

	leaves := make([]hashLeaf, 0, len(slots))
	for slot, value := range slots {
		leaves = append(leaves, hashLeaf{path: FromBytes(slot[:]), value: encodeStorageValue(value)})
	}
	sortLeaves(leaves)

	var collected []branchUpdate
	var collectPtr *[]branchUpdate
	if collect {
		collectPtr = &collected
	}
	root := buildHashTrie(leaves, collectPtr)
	return root, collected, nil
}

// dupCursorErrer is satisfied by kv.DupCursor, exposing the deferred error
// from its most recent WalkDup.
type dupCursorErrer interface {
	Err() error
}

func errFromWalkDup(c dupCursorErrer) error { return c.Err() }

func encodeStorageValue(v kv.Hash32) []byte {
	trimmed := v[:]
	for len(trimmed) > 0 && trimmed[0] == 0 {
		trimmed = trimmed[1:]
	}
	out, err := rlp.EncodeToBytes(trimmed)
	if err != nil {
		panic("trie: rlp encoding of storage value failed: " + err.Error())
	}
	return out
}
