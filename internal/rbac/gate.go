package rbac

// Gate answers permission checks against an immutable matrix. It is pure and
// stateless: safe for concurrent use with no synchronization.
type Gate struct {
	matrix Matrix
}

// NewGate wraps a matrix. Pass DefaultMatrix() outside of tests.
func NewGate(matrix Matrix) *Gate {
	return &Gate{matrix: matrix}
}

// HasPermission reports whether role may perform action on resource within
// the given domain context. Unknown combinations return false, never an
// error: callers deny access and render their restricted state.
func (g *Gate) HasPermission(dc DomainContext, role Role, action Permission, resource Resource) bool {
	return g.matrix.Permissions(dc, role, resource).Has(action)
}
