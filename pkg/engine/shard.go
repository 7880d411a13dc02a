package engine

import (
	"fmt"
	"sync"
)

// Shard holds the accounts bound to one shard id and a derived root cache
// refreshed by the Driver.
type Shard struct {
	id        uint64
	accounts  map[Address]*Account
	stateRoot StateRoot
	hasRoot   bool
}

// ShardIndex is the fixed-size [0, NumShards) array of Shards. Accounts
// register into it at construction time and it is never resized.
type ShardIndex struct {
	mu     sync.RWMutex
	shards [NumShards]*Shard
}

// NewShardIndex creates an index with all NumShards shards empty.
func NewShardIndex() *ShardIndex {
	idx := &ShardIndex{}
	for i := range idx.shards {
		idx.shards[i] = &Shard{id: uint64(i), accounts: make(map[Address]*Account)}
	}
	return idx
}

// bind registers account into shard shardID. Fails with ErrShardOutOfRange
// or ErrDuplicateAccountInShard.
func (idx *ShardIndex) bind(shardID uint64, account *Account) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if shardID >= NumShards {
		return fmt.Errorf("%w: %d", ErrShardOutOfRange, shardID)
	}
	shard := idx.shards[shardID]
	if _, exists := shard.accounts[account.address]; exists {
		return fmt.Errorf("%w: shard %d, address %s", ErrDuplicateAccountInShard, shardID, account.address)
	}
	shard.accounts[account.address] = account
	return nil
}

// Refresh recomputes the derived state root for every shard that has
// exactly one bound account. Shards with zero or multiple accounts keep
// whatever root they last had and remain unreadable via GetRoot
// regardless.
func (idx *ShardIndex) Refresh() {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for _, shard := range idx.shards {
		if len(shard.accounts) != 1 {
			continue
		}
		for _, acct := range shard.accounts {
			shard.stateRoot = acct.StateRoot()
			shard.hasRoot = true
		}
	}
}

// GetRoot returns the cached derived root for shardID and true, but only
// when that shard currently has exactly one bound account; otherwise it
// returns the zero value and false.
func (idx *ShardIndex) GetRoot(shardID uint64) (StateRoot, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if shardID >= NumShards {
		return StateRoot{}, false
	}
	shard := idx.shards[shardID]
	if len(shard.accounts) != 1 || !shard.hasRoot {
		return StateRoot{}, false
	}
	return shard.stateRoot, true
}

// AccountCount returns the number of accounts bound to shardID, or 0 if
// shardID is out of range.
func (idx *ShardIndex) AccountCount(shardID uint64) int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if shardID >= NumShards {
		return 0
	}
	return len(idx.shards[shardID].accounts)
}
