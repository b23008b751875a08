package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type contextKey string

const (
	// ScopeKey is the context key for storing the request-scoped database handle.
	ScopeKey contextKey = "dbScope"
)

// Querier is the subset of pgx shared by *pgxpool.Pool, *pgxpool.Conn and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Scope is the database handle repositories use for one request.
// A pool-backed scope may be used from several goroutines; a connection-backed one may not.
type Scope struct {
	Conn    Querier
	release func()
}

// Close releases any dedicated connection held by the scope. Safe to call on pool-backed scopes.
func (s *Scope) Close() {
	if s == nil || s.release == nil {
		return
	}
	s.release()
	s.release = nil
}

// NewScope wraps conn. A non-nil release marks the scope as holding one dedicated connection.
func NewScope(conn Querier, release func()) *Scope {
	return &Scope{Conn: conn, release: release}
}

// IsSingleConnection reports whether ctx carries a scope pinned to one connection.
// Callers must not issue concurrent queries through such a scope.
func IsSingleConnection(ctx context.Context) bool {
	scope, ok := GetScope(ctx)
	return ok && scope.release != nil
}

// GetScope retrieves the database scope from context.
// Returns nil and false if not present.
func GetScope(ctx context.Context) (*Scope, bool) {
	scope, ok := ctx.Value(ScopeKey).(*Scope)
	return scope, ok && scope != nil && scope.Conn != nil
}

// SetScope stores the database scope in context.
func SetScope(ctx context.Context, scope *Scope) context.Context {
	return context.WithValue(ctx, ScopeKey, scope)
}

// PoolScope returns a scope backed by the whole pool.
func (db *DB) PoolScope() *Scope {
	return NewScope(db.Pool, nil)
}

// AcquireScope pins a single connection. The returned Scope MUST be closed with defer scope.Close().
// Use this for work that needs session state, such as maintenance scripts and test fixtures.
func (db *DB) AcquireScope(ctx context.Context) (*Scope, error) {
	conn, err := db.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return NewScope(conn, conn.Release), nil
}

// WithScope returns a context carrying a pool-backed scope.
func (db *DB) WithScope(ctx context.Context) context.Context {
	return SetScope(ctx, db.PoolScope())
}
