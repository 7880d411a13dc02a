package engine

import "errors"

// Sentinel errors for the world store and shard index.
var (
	ErrDuplicateAddress        = errors.New("duplicate address in world store")
	ErrUnknownAddress          = errors.New("unknown address")
	ErrShardOutOfRange         = errors.New("shard id out of range")
	ErrDuplicateAccountInShard = errors.New("account already bound to shard")
	ErrInvalidAddress          = errors.New("invalid address format")
	ErrInvalidStateRoot        = errors.New("invalid state root format")
)
