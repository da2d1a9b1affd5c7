package imap

// StoreFlagsOp is a flag operation: set, add or delete.
type StoreFlagsOp int

const (
	StoreFlagsSet StoreFlagsOp = iota
	StoreFlagsAdd
	StoreFlagsDel
)

// StoreFlags alters message flags.
type StoreFlags struct {
	Op     StoreFlagsOp
	Silent bool
	Flags  []Flag
}

// StoreOptions contains options for the STORE command.
type StoreOptions struct {
	// UnchangedSince is nil if unset. Zero is a valid value. Requires
	// CONDSTORE.
	UnchangedSince *uint64
}
