package hostabi

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/tetratelabs/wazero/api"
)

// loadPreStateRoot: eth2_loadPreStateRoot(offset i32) -> (). Copies the
// account's current state root into guest memory at offset.
func (e *env) loadPreStateRoot(_ context.Context, mod api.Module, offset uint32) {
	root := e.acct.StateRoot()
	if !mod.Memory().Write(offset, root[:]) {
		panic(fmt.Errorf("eth2_loadPreStateRoot: write out of bounds at offset %d", offset))
	}
}

// savePostStateRoot: eth2_savePostStateRoot(offset i32) -> (). Copies 32
// bytes from guest memory at offset into the account's state root. This
// is the only way an Account's state root mutates during a run.
func (e *env) savePostStateRoot(_ context.Context, mod api.Module, offset uint32) {
	data, ok := mod.Memory().Read(offset, 32)
	if !ok {
		panic(fmt.Errorf("eth2_savePostStateRoot: read out of bounds at offset %d", offset))
	}
	var root [32]byte
	copy(root[:], data)
	e.acct.SetStateRoot(root)
}

// blockDataSize: eth2_blockDataSize() -> (i32). Returns len(calldata) for
// the current call.
func (e *env) blockDataSize(_ context.Context, _ api.Module) uint32 {
	return uint32(len(e.acct.CalldataRef))
}

// blockDataCopy: eth2_blockDataCopy(memOff, srcOff, len i32) -> (). Copies
// len bytes of calldata[srcOff:srcOff+len] into guest memory at memOff.
func (e *env) blockDataCopy(_ context.Context, mod api.Module, memOff, srcOff, length uint32) {
	calldata := e.acct.CalldataRef
	if uint64(srcOff)+uint64(length) > uint64(len(calldata)) {
		panic(fmt.Errorf("eth2_blockDataCopy: source range [%d:%d) exceeds calldata length %d", srcOff, srcOff+length, len(calldata)))
	}
	if !mod.Memory().Write(memOff, calldata[srcOff:srcOff+length]) {
		panic(fmt.Errorf("eth2_blockDataCopy: write out of bounds at offset %d len %d", memOff, length))
	}
}

// pushNewDeposit: eth2_pushNewDeposit(offset, len i32) -> (). Reserved;
// accepted and a no-op beyond a debug log line.
func (e *env) pushNewDeposit(_ context.Context, _ api.Module, offset, length uint32) {
	e.log.Debug("eth2_pushNewDeposit (no-op): offset=%d len=%d", offset, length)
}

// getShardID: eth2_getShardId() -> (i64). Returns the invoking account's
// shard id.
func (e *env) getShardID(_ context.Context, _ api.Module) uint64 {
	return e.acct.ShardID()
}

// getShardStateRoot: eth2_getShardStateRoot(shardID i64, offset i32) ->
// (i32). Writes the derived root for shardID and returns 0 only if
// shardID is in range and that shard currently has exactly one bound
// account; otherwise writes nothing and returns 1.
func (e *env) getShardStateRoot(_ context.Context, mod api.Module, shardID uint64, offset uint32) uint32 {
	root, ok := e.shards.GetRoot(shardID)
	if !ok {
		return 1
	}
	if !mod.Memory().Write(offset, root[:]) {
		panic(fmt.Errorf("eth2_getShardStateRoot: write out of bounds at offset %d", offset))
	}
	return 0
}

// debugPrintMem: eth2_debugPrintMem(offset, len i32) -> (). Best-effort
// debug dump; a no-op with respect to state.
func (e *env) debugPrintMem(_ context.Context, mod api.Module, offset, length uint32) {
	data, ok := mod.Memory().Read(offset, length)
	if !ok {
		e.log.Debug("eth2_debugPrintMem: out of bounds read at offset=%d len=%d", offset, length)
		return
	}
	e.log.Debug("eth2_debugPrintMem: offset=%d len=%d data=%s", offset, length, hex.EncodeToString(data))
}
