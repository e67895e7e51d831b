package trie

import "github.com/tclemos/triekv/kv"

// Table IDs for the trie-indexing layer's tables. 0 is reserved by kv.Default; these follow in registration
// order.
const (
	tableIDAccountTrie    kv.TableID = 1
	tableIDStorageTrie    kv.TableID = 2
	tableIDTrieNodes      kv.TableID = 3
	tableIDHashedAccounts kv.TableID = 4
	tableIDHashedStorages kv.TableID = 5
)

// AccountTrie maps a nibble path (<=64 nibbles) to the persisted
// branch-node record at that path in the account trie.
var AccountTrie = kv.Table[Nibbles, BranchNodeRecord]{
	Name:            "AccountTrie",
	ID:              tableIDAccountTrie,
	EncodeKey:       EncodeNibbles,
	DecodeKey:       DecodeNibbles,
	CompressValue:   EncodeBranchNode,
	DecompressValue: DecodeBranchNode,
}

// StorageTrie is a dup-sort table: hashed account address -> (path within
// that account's storage trie -> node). The sub-key is the node's full
// 64-nibble path so dup-sort ordering matches nibble order directly.
var StorageTrie = kv.DupTable[kv.Hash32, Nibbles, StorageTrieNode]{
	Name:            "StorageTrie",
	ID:              tableIDStorageTrie,
	EncodeKey:       kv.EncodeHash32,
	DecodeKey:       kv.DecodeHash32,
	EncodeSubKey:    EncodeNibblesFixed64,
	DecodeSubKey:    DecodeNibblesFixed64,
	CompressValue:   EncodeStorageTrieNode,
	DecompressValue: DecodeStorageTrieNode,
	DupKeyLen:       32,
}

// TrieNodes is the raw-trie table: node hash -> opaque encoded node bytes,
// written alongside branch-node updates so nodes can also be fetched by
// hash.
var TrieNodes = kv.Table[kv.Hash32, kv.RawBytes]{
	Name:            "TrieNodes",
	ID:              tableIDTrieNodes,
	EncodeKey:       kv.EncodeHash32,
	DecodeKey:       kv.DecodeHash32,
	CompressValue:   kv.CompressRawBytes,
	DecompressValue: kv.DecompressRawBytes,
}

// HashedAccounts maps a hashed address to its account record.
var HashedAccounts = kv.Table[kv.Hash32, AccountRecord]{
	Name:            "HashedAccounts",
	ID:              tableIDHashedAccounts,
	EncodeKey:       kv.EncodeHash32,
	DecodeKey:       kv.DecodeHash32,
	CompressValue:   EncodeAccountRecord,
	DecompressValue: DecodeAccountRecord,
}

// HashedStorages is a dup-sort table: hashed address -> (hashed slot ->
// slot value).
var HashedStorages = kv.DupTable[kv.Hash32, kv.Hash32, kv.Hash32]{
	Name:            "HashedStorages",
	ID:              tableIDHashedStorages,
	EncodeKey:       kv.EncodeHash32,
	DecodeKey:       kv.DecodeHash32,
	EncodeSubKey:    kv.EncodeHash32,
	DecodeSubKey:    kv.DecodeHash32,
	CompressValue:   kv.EncodeHash32,
	DecompressValue: kv.DecodeHash32,
	DupKeyLen:       32,
}

func init() {
	kv.RegisterTable(AccountTrie.Meta())
	kv.RegisterTable(StorageTrie.Meta())
	kv.RegisterTable(TrieNodes.Meta())
	kv.RegisterTable(HashedAccounts.Meta())
	kv.RegisterTable(HashedStorages.Meta())
}
