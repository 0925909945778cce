package graphmodel

import "errors"

var (
	// ErrInvalidFactory is returned when a node factory is missing or yields
	// a node without a behavior.
	ErrInvalidFactory = errors.New("invalid node factory")

	// ErrDuplicateEdge is returned when a parent/child relationship that
	// already exists is proposed again.
	ErrDuplicateEdge = errors.New("edge already exists")

	// ErrDanglingReference is returned when a node would be deleted while
	// edges still reference it, or when an adjacency list names a node the
	// graph does not own.
	ErrDanglingReference = errors.New("dangling node reference")

	// ErrIndexNotFound signals that adjacency lists and port allocation have
	// diverged. It is an internal consistency failure.
	ErrIndexNotFound = errors.New("adjacency index not found")

	// ErrNodeNotFound is returned when a node is not owned by the graph.
	ErrNodeNotFound = errors.New("node not found")

	// ErrDuplicateNode is returned when adopting a node whose identifier is
	// already in use.
	ErrDuplicateNode = errors.New("duplicate node ID")

	// ErrAsymmetricEdge is returned by Validate when B is in A's children but
	// A is not in B's parents, or the reverse.
	ErrAsymmetricEdge = errors.New("asymmetric edge")
)
