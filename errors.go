package goAudit

import "errors"

var (
	// ErrNotFound is an exported constant or variable used by the audit layer.
	ErrNotFound = errors.New("entity not found")
	// ErrDuplicateEntity is an exported constant or variable used by the audit layer.
	ErrDuplicateEntity = errors.New("entity already exists")
	// ErrNilPatch is an exported constant or variable used by the audit layer.
	ErrNilPatch = errors.New("nil patch")
)
