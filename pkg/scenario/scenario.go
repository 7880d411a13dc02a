// Package scenario loads the YAML scenario file format: prestates,
// timeslots, and poststates, each keyed by a 32-byte "0x"-hex envid.
// This is the harness's one external-facing wire format.
package scenario

import (
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Hex32 is a 32-byte value that unmarshals from a "0x"-prefixed 64-hex
// YAML scalar, stripping the prefix then decoding the remainder.
type Hex32 [32]byte

// UnmarshalYAML implements yaml.Unmarshaler.
func (h *Hex32) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	b, err := decodeHexPrefixed(s, 32)
	if err != nil {
		return fmt.Errorf("decoding %q: %w", s, err)
	}
	copy(h[:], b)
	return nil
}

func (h Hex32) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// HexBytes is an even-length byte sequence that unmarshals from a
// "0x"-prefixed hex YAML scalar; an empty string after stripping the
// prefix decodes to a zero-length slice.
type HexBytes []byte

// UnmarshalYAML implements yaml.Unmarshaler.
func (h *HexBytes) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	b, err := decodeHexPrefixed(s, -1)
	if err != nil {
		return fmt.Errorf("decoding %q: %w", s, err)
	}
	*h = b
	return nil
}

func decodeHexPrefixed(s string, wantLen int) ([]byte, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if wantLen >= 0 && len(s) != wantLen*2 {
		return nil, fmt.Errorf("expected %d hex chars, got %d", wantLen*2, len(s))
	}
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("odd-length hex string")
	}
	return hex.DecodeString(s)
}

// Prestate is one entry of the top-level "prestates" list.
type Prestate struct {
	EnvID     Hex32  `yaml:"envid"`
	ShardID   uint64 `yaml:"shardid"`
	Code      string `yaml:"code"`
	StateRoot Hex32  `yaml:"stateroot"`
}

// TimeslotEntry is one "(envid, inputdata)" invocation within a timeslot.
type TimeslotEntry struct {
	EnvID     Hex32    `yaml:"envid"`
	InputData HexBytes `yaml:"inputdata"`
}

// Timeslot is an ordered group of entries executed before the next
// shard-root refresh.
type Timeslot struct {
	Slot []TimeslotEntry `yaml:"slot"`
}

// Poststate is one expected final state root to verify against.
type Poststate struct {
	EnvID     Hex32  `yaml:"envid"`
	ShardID   uint64 `yaml:"shardid"`
	StateRoot Hex32  `yaml:"stateroot"`
}

// Scenario is the fully parsed scenario file.
type Scenario struct {
	Prestates  []Prestate  `yaml:"prestates"`
	Timeslots  []Timeslot  `yaml:"timeslots"`
	Poststates []Poststate `yaml:"poststates"`
}

// Load reads and parses the scenario file at path. A malformed file is a
// fatal ScenarioParseError.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file %s: %w", path, err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario file %s: %w", path, err)
	}
	return &s, nil
}
