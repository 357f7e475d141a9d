package store

import "errors"

// Sentinel errors. The service layer maps these onto coded domain errors.
var (
	ErrNodeNotFound     = errors.New("node not found")
	ErrNotAFolder       = errors.New("node is not a folder")
	ErrNotALeaf         = errors.New("node has children")
	ErrSystemContainer  = errors.New("system containers cannot be moved or removed")
	ErrCyclicMove       = errors.New("cannot move a folder into its own subtree")
	ErrSnapshotNotFound = errors.New("snapshot not found")
	ErrTagNotFound      = errors.New("tag not found")
	ErrTagExists        = errors.New("tag already exists")
)
