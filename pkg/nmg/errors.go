package nmg

import (
	"github.com/pkg/errors"
)

// Error kinds returned by the editing primitives and geometry routines.
// Returned errors wrap one of these and carry a stack trace, so callers
// should compare with errors.Is.
var (
	// ErrTopologyInvariant reports a violated structural precondition:
	// mates that disagree, a loop that does not close, a stale parent.
	ErrTopologyInvariant = errors.New("nmg: topology invariant violated")

	// ErrDegenerateGeometry reports zero-length edges, zero-area loops,
	// parallel plane tests and missing vertex coordinates.
	ErrDegenerateGeometry = errors.New("nmg: degenerate geometry")

	// ErrUnsupported reports an operation with no implementation, such as
	// joining two different loops during a cut.
	ErrUnsupported = errors.New("nmg: unsupported operation")

	// ErrInvalidParentKind reports a parent of the wrong kind, such as a
	// vertexuse whose parent is a faceuse.
	ErrInvalidParentKind = errors.New("nmg: invalid parent kind")

	// ErrNotFound reports a handle that does not name a live record.
	ErrNotFound = errors.New("nmg: no such record")
)

func invariantf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrTopologyInvariant, format, args...)
}

func degeneratef(format string, args ...interface{}) error {
	return errors.Wrapf(ErrDegenerateGeometry, format, args...)
}

func unsupportedf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrUnsupported, format, args...)
}

func notFound(k Kind, id int32) error {
	return errors.Wrapf(ErrNotFound, "%s %d", k, id)
}

func isDegenerate(err error) bool {
	return errors.Cause(err) == ErrDegenerateGeometry
}
