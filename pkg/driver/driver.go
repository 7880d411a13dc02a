// Package driver orchestrates the four phases of a scenario run: load
// prestates, initialize shard roots, replay timeslots with per-slot root
// refresh, and verify poststates.
package driver

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/tetratelabs/wazero"

	"github.com/gochain/scout/pkg/engine"
	"github.com/gochain/scout/pkg/hostabi"
	"github.com/gochain/scout/pkg/scenario"
	"github.com/gochain/scout/pkg/scoutlog"
)

// ErrScenarioParse and ErrBytecodeRead are fatal load-time errors.
var (
	ErrScenarioParse = errors.New("scenario parse error")
	ErrBytecodeRead  = errors.New("bytecode read error")
)

// Mismatch records one poststate comparison that failed.
type Mismatch struct {
	EnvID engine.Address
	Got   engine.StateRoot
	Want  engine.StateRoot
}

func (m Mismatch) String() string {
	return fmt.Sprintf("envid %s: got %s, want %s", m.EnvID, m.Got, m.Want)
}

// Driver holds the run's World/ShardIndex and orchestrates phased
// execution over one parsed Scenario.
type Driver struct {
	World  *engine.World
	Shards *engine.ShardIndex

	log         *scoutlog.Logger
	runtime     wazero.Runtime
	compiled    map[engine.Address]wazero.CompiledModule
	scenarioDir string
}

// New builds a Driver with a fresh World and ShardIndex. scenarioDir is
// the directory bytecode paths in the scenario's "code" field are
// resolved relative to.
func New(log *scoutlog.Logger, scenarioDir string) *Driver {
	return &Driver{
		World:       engine.NewWorld(),
		Shards:      engine.NewShardIndex(),
		log:         log,
		runtime:     wazero.NewRuntime(context.Background()),
		compiled:    make(map[engine.Address]wazero.CompiledModule),
		scenarioDir: scenarioDir,
	}
}

// Close releases the Driver's shared wazero runtime and any compiled
// modules cached for repeated Exec calls.
func (d *Driver) Close(ctx context.Context) error {
	return d.runtime.Close(ctx)
}

// LoadPrestates is phase P1: read each prestate's bytecode, construct its
// Account, and insert it into the World store. A bytecode decode failure
// for one account is reported and that account is left with no compiled
// module — its execs are skipped later, so its state root stays at its
// prestate value (a poststate expecting any other root is reported as a
// mismatch) rather than aborting the run for every other account.
func (d *Driver) LoadPrestates(ctx context.Context, prestates []scenario.Prestate) error {
	for _, p := range prestates {
		address := engine.Address(p.EnvID)

		path := p.Code
		if !filepath.IsAbs(path) {
			path = filepath.Join(d.scenarioDir, path)
		}
		code, err := readBytecode(path)
		if err != nil {
			return fmt.Errorf("%w: envid %s: %v", ErrBytecodeRead, address, err)
		}

		acct, err := engine.NewAccount(d.Shards, address, p.ShardID, code, engine.StateRoot(p.StateRoot))
		if err != nil {
			return fmt.Errorf("loading prestate envid %s: %w", address, err)
		}
		if err := d.World.Insert(address, acct); err != nil {
			return fmt.Errorf("loading prestate envid %s: %w", address, err)
		}

		compiled, err := hostabi.Compile(ctx, d.runtime, code)
		if err != nil {
			d.log.Error("envid %s: %v", address, err)
			continue
		}
		d.compiled[address] = compiled

		d.log.Debug("loaded prestate envid=%s shard=%d stateroot=%s", address, p.ShardID, engine.StateRoot(p.StateRoot))
	}
	return nil
}

// InitShardRoots is phase P2: set every single-account shard's derived
// root from its account's current state root.
func (d *Driver) InitShardRoots() {
	d.Shards.Refresh()
}

// ReplayTimeslots is phase P3: run each timeslot's entries in order,
// then refresh shard roots once per timeslot, not per entry. That
// refresh granularity is observable from the guest side via
// eth2_getShardStateRoot.
func (d *Driver) ReplayTimeslots(ctx context.Context, timeslots []scenario.Timeslot) {
	for slotIdx, slot := range timeslots {
		for _, entry := range slot.Slot {
			d.execEntry(ctx, slotIdx, entry)
		}
		d.Shards.Refresh()
	}
}

func (d *Driver) execEntry(ctx context.Context, slotIdx int, entry scenario.TimeslotEntry) {
	address := engine.Address(entry.EnvID)
	acct, err := d.World.Get(address)
	if err != nil {
		d.log.Error("timeslot %d: %v", slotIdx, err)
		return
	}

	compiled, ok := d.compiled[address]
	if !ok {
		d.log.Warn("timeslot %d: envid=%s skipped: %v", slotIdx, address, hostabi.ErrDecode)
		return
	}

	calldata := []byte(entry.InputData)
	preview := calldata
	if len(preview) > 32 {
		preview = preview[:32]
	}
	d.log.Debug("timeslot %d: exec envid=%s calldata_len=%d calldata=%x", slotIdx, address, len(calldata), preview)

	result, err := hostabi.Exec(ctx, d.runtime, d.Shards, acct, compiled, calldata, d.log)
	var trap *hostabi.GuestTrap
	switch {
	case errors.As(err, &trap):
		d.log.Warn("timeslot %d: envid=%s guest trap: %v", slotIdx, address, trap.Err)
	case err != nil:
		d.log.Error("timeslot %d: envid=%s exec error: %v", slotIdx, address, err)
	default:
		d.log.Debug("timeslot %d: envid=%s exec ok, values=%v", slotIdx, address, result.Values)
	}
}

// VerifyPoststates is phase P4: compare every poststate's expected root
// against the Account's current state root, accumulating mismatches
// without aborting.
func (d *Driver) VerifyPoststates(poststates []scenario.Poststate) []Mismatch {
	var mismatches []Mismatch
	for _, p := range poststates {
		address := engine.Address(p.EnvID)
		acct, err := d.World.Get(address)
		if err != nil {
			d.log.Error("verifying poststate envid=%s: %v", address, err)
			mismatches = append(mismatches, Mismatch{EnvID: address, Want: engine.StateRoot(p.StateRoot)})
			continue
		}
		want := engine.StateRoot(p.StateRoot)
		got := acct.StateRoot()
		if got != want {
			mismatches = append(mismatches, Mismatch{EnvID: address, Got: got, Want: want})
		}
	}
	return mismatches
}
