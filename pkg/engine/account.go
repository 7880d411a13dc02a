package engine

// NumShards is the fixed shard domain size: valid shard ids are
// [0, NumShards).
const NumShards = 64

// Account is one execution-environment instance: immutable code and
// identity, a mutable state root, and transient per-call bindings that are
// only valid while an exec is in flight.
type Account struct {
	address   Address
	shardID   uint64
	bytecode  []byte
	stateRoot StateRoot

	// Transient, valid only during an active Exec call. Owned and
	// cleared by pkg/hostabi's Exec, which is the only writer.
	CalldataRef  []byte
	ActiveMemory ActiveMemory
}

// ActiveMemory is the narrow slice of a wazero module's linear memory that
// host callbacks are allowed to touch during one Exec call. Defined here,
// rather than importing wazero, so that pkg/engine has no dependency on the
// Wasm engine — pkg/hostabi supplies the concrete implementation.
type ActiveMemory interface {
	Read(offset, length uint32) ([]byte, bool)
	Write(offset uint32, data []byte) bool
}

// NewAccount constructs an Account and registers it into the shard index.
// Fails with ErrShardOutOfRange or ErrDuplicateAccountInShard.
// bytecode and stateRoot are copied; the caller's slices may be reused.
func NewAccount(shards *ShardIndex, address Address, shardID uint64, bytecode []byte, stateRoot StateRoot) (*Account, error) {
	code := make([]byte, len(bytecode))
	copy(code, bytecode)

	a := &Account{
		address:   address,
		shardID:   shardID,
		bytecode:  code,
		stateRoot: stateRoot,
	}

	if err := shards.bind(shardID, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Account) Address() Address     { return a.address }
func (a *Account) ShardID() uint64      { return a.shardID }
func (a *Account) Bytecode() []byte     { return a.bytecode }
func (a *Account) StateRoot() StateRoot { return a.stateRoot }

// SetStateRoot overwrites the mutable state root. Called only by the host
// callback behind eth2_savePostStateRoot.
func (a *Account) SetStateRoot(r StateRoot) { a.stateRoot = r }

// InExec reports whether transient per-call fields are currently bound.
func (a *Account) InExec() bool {
	return a.CalldataRef != nil || a.ActiveMemory != nil
}
