package cover

import "errors"

var (
	// ErrChainAborted means chain growth found a hole with no node left to
	// restart from. The object keeps the partial chain.
	ErrChainAborted = errors.New("chain growth aborted")

	// ErrDuplicateNode means a node pointer appears twice in one object.
	ErrDuplicateNode = errors.New("duplicate node")

	// ErrNoSource is returned when Generate has no scene to read.
	ErrNoSource = errors.New("no scene source")

	// ErrNoCollider is returned when Generate has nothing to cast rays at.
	ErrNoCollider = errors.New("no collider")
)
