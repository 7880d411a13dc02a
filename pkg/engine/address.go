package engine

import "encoding/hex"

// Address identifies an Account. It carries no structural meaning beyond
// byte-wise equality and ordering.
type Address [32]byte

// StateRoot is an opaque 32-byte fingerprint. Nothing in this harness
// computes it cryptographically; it is stored and compared verbatim.
type StateRoot [32]byte

func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) Bytes() []byte {
	return a[:]
}

// Less reports whether a sorts before b, byte-wise. Used to keep World
// iteration order deterministic.
func (a Address) Less(b Address) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func (r StateRoot) String() string {
	return "0x" + hex.EncodeToString(r[:])
}

func (r StateRoot) Bytes() []byte {
	return r[:]
}

// ParseAddress decodes a "0x"-prefixed 64-hex-character string into an
// Address. The prefix is optional on input; callers that already stripped
// it (pkg/scenario) may pass the bare hex.
func ParseAddress(s string) (Address, error) {
	b, err := parseFixed(s, 32, ErrInvalidAddress)
	if err != nil {
		return Address{}, err
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// ParseStateRoot decodes a "0x"-prefixed 64-hex-character string into a
// StateRoot.
func ParseStateRoot(s string) (StateRoot, error) {
	b, err := parseFixed(s, 32, ErrInvalidStateRoot)
	if err != nil {
		return StateRoot{}, err
	}
	var r StateRoot
	copy(r[:], b)
	return r, nil
}

func parseFixed(s string, n int, badFormat error) ([]byte, error) {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	if len(s) != n*2 {
		return nil, badFormat
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return b, nil
}
