package trie

import "github.com/tclemos/triekv/kv"

// PrefixSet is the set of trie paths a post-state diff touches, consumed by
// the trie walk to prune unaffected subtrees. This module's walk is account-granular: a touched
// address is enough to mark its account leaf and, if it also has storage
// changes, its entire per-account storage subtrie as needing
// recomputation.
type PrefixSet struct {
	accounts map[kv.Hash32]struct{}
	storages map[kv.Hash32]struct{}
}

// NewPrefixSet builds a PrefixSet from a post-state diff.
func NewPrefixSet(diff PostStateDiff) *PrefixSet {
	p := &PrefixSet{
		accounts: make(map[kv.Hash32]struct{}, len(diff.Accounts)),
		storages: make(map[kv.Hash32]struct{}),
	}
	for _, u := range diff.Accounts {
		p.accounts[u.Address] = struct{}{}
	}
	for _, u := range diff.Storages {
		p.accounts[u.Address] = struct{}{}
		p.storages[u.Address] = struct{}{}
	}
	return p
}

// TouchesAccount reports whether addr's account leaf needs recomputation.
func (p *PrefixSet) TouchesAccount(addr kv.Hash32) bool {
	_, ok := p.accounts[addr]
	return ok
}

// TouchesStorage reports whether addr's storage subtrie needs
// recomputation.
func (p *PrefixSet) TouchesStorage(addr kv.Hash32) bool {
	_, ok := p.storages[addr]
	return ok
}

// StorageAddresses returns every address with at least one storage update,
// in no particular order.
func (p *PrefixSet) StorageAddresses() []kv.Hash32 {
	out := make([]kv.Hash32, 0, len(p.storages))
	for a := range p.storages {
		out = append(out, a)
	}
	return out
}
