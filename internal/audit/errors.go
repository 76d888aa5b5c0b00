package audit

import "errors"

var (
	// ErrInvalidRoot is returned when the scan root is missing or not a directory.
	ErrInvalidRoot = errors.New("invalid scan root")
	// ErrOutputUnwritable is returned when the ownership ledger cannot be created.
	ErrOutputUnwritable = errors.New("output location not writable")
	// ErrLedgerWrite is returned when writing to the ownership ledger fails
	// mid-walk. The ledger is closed in whatever partial state it reached.
	ErrLedgerWrite = errors.New("writing ownership ledger")
)
