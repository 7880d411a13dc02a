// Package hostabi implements the fixed "env" host module that every guest
// Wasm module may import, and the per-call exec sequence that
// instantiates a fresh wazero module instance around one Account. It is
// the synchronous, reentrant boundary between the Wasm engine and host
// state.
package hostabi

import (
	"context"
	"errors"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/gochain/scout/pkg/engine"
	"github.com/gochain/scout/pkg/scoutlog"
)

// Errors surfaced by Compile (ErrDecode) and Exec (the others). These are
// reported and handled by the Driver, not fatal to the overall run.
var (
	ErrDecode        = errors.New("failed to decode guest module")
	ErrNoGuestMemory = errors.New("guest module declares no memory")
	ErrMissingMain   = errors.New("guest module has no \"main\" export")
)

// GuestTrap wraps a trap raised while running the guest's main export. It
// is reported and logged, but does not abort the Driver.
type GuestTrap struct {
	Err error
}

func (t *GuestTrap) Error() string { return fmt.Sprintf("guest trap: %v", t.Err) }
func (t *GuestTrap) Unwrap() error { return t.Err }

// ExecResult is the host-observable outcome of one Exec call:
// whether the guest's main export trapped, and its returned values.
type ExecResult struct {
	Trapped bool
	Values  []uint64
}

// env is the invocation-scoped closure state for one Exec call: the
// account being executed and the shared ShardIndex it may read
// cross-shard roots from. A fresh env is built for every call, which is
// what makes recursive exec impossible to express here — there is no
// handle by which a callback could reach a second env.
type env struct {
	shards *engine.ShardIndex
	acct   *engine.Account
	log    *scoutlog.Logger
}

// Exec runs acct's bytecode against calldata on rt: registers a fresh
// "env" host module instance closed over acct, instantiates compiled
// (the guest's code, already decoded via Compile), runs the guest's
// init (data/elem segments, start function — wazero performs both as
// part of InstantiateModule) and then invokes the zero-argument "main"
// export.
//
// rt is shared across calls for the life of a run, holding the one
// compiled module per Account (decoding is pure given immutable
// bytecode, so compiling once is safe). What is fresh on every call —
// the actual isolation boundary between one exec and the next — is the
// module instance itself: its own linear memory, globals, and "env"
// host-function closure, created here and torn down via defer before
// Exec returns.
func Exec(ctx context.Context, rt wazero.Runtime, shards *engine.ShardIndex, acct *engine.Account, compiled wazero.CompiledModule, calldata []byte, log *scoutlog.Logger) (ExecResult, error) {
	acct.CalldataRef = calldata
	defer func() {
		acct.CalldataRef = nil
		acct.ActiveMemory = nil
	}()

	e := &env{shards: shards, acct: acct, log: log}
	envMod, err := registerEnvModule(ctx, rt, e)
	if err != nil {
		return ExecResult{}, fmt.Errorf("registering env module: %w", err)
	}
	defer envMod.Close(ctx)

	mod, err := rt.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(""))
	if err != nil {
		return ExecResult{}, &GuestTrap{Err: fmt.Errorf("instantiating guest: %w", err)}
	}
	defer mod.Close(ctx)

	mem := mod.Memory()
	if mem == nil {
		return ExecResult{}, ErrNoGuestMemory
	}
	acct.ActiveMemory = mem

	main := mod.ExportedFunction("main")
	if main == nil {
		return ExecResult{}, ErrMissingMain
	}

	values, err := main.Call(ctx)
	if err != nil {
		return ExecResult{Trapped: true}, &GuestTrap{Err: err}
	}

	return ExecResult{Values: values}, nil
}

// Compile decodes code once via rt.CompileModule. A non-nil error wraps
// ErrDecode with wazero's formatted diagnostics.
func Compile(ctx context.Context, rt wazero.Runtime, code []byte) (wazero.CompiledModule, error) {
	compiled, err := rt.CompileModule(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return compiled, nil
}

// registerEnvModule exports the host function table under module name
// "env", each function closing over e. i32 parameters are Go uint32,
// i64 results are Go uint64, following wazero's own
// NewHostModuleBuilder(...).NewFunctionBuilder().WithFunc(...).Export(...)
// chaining idiom.
func registerEnvModule(ctx context.Context, rt wazero.Runtime, e *env) (api.Module, error) {
	mod, err := rt.NewHostModuleBuilder("env").
		NewFunctionBuilder().WithFunc(e.loadPreStateRoot).Export("eth2_loadPreStateRoot").
		NewFunctionBuilder().WithFunc(e.savePostStateRoot).Export("eth2_savePostStateRoot").
		NewFunctionBuilder().WithFunc(e.blockDataSize).Export("eth2_blockDataSize").
		NewFunctionBuilder().WithFunc(e.blockDataCopy).Export("eth2_blockDataCopy").
		NewFunctionBuilder().WithFunc(e.pushNewDeposit).Export("eth2_pushNewDeposit").
		NewFunctionBuilder().WithFunc(e.getShardID).Export("eth2_getShardId").
		NewFunctionBuilder().WithFunc(e.getShardStateRoot).Export("eth2_getShardStateRoot").
		NewFunctionBuilder().WithFunc(e.debugPrintMem).Export("eth2_debugPrintMem").
		Instantiate(ctx)
	return mod, err
}
