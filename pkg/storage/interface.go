// Package storage defines the core storage interfaces that the application
// relies on. It abstracts persistence operations and transaction management
// so that different backends (e.g. PostgreSQL) can provide concrete
// implementations.
package storage

import "context"

// AllStorage is a composite interface that includes all domain-specific
// storage capabilities required by the application.
type AllStorage interface {
	ValidationStorage
	JobStorage
}

// TxStorage describes a storage handle that operates within a database
// transaction. Implementations should become unusable after Commit or
// Rollback is called.
type TxStorage interface {
	AllStorage

	// Commit finalizes the transaction, persisting all changes.
	Commit() error
	// Rollback aborts the transaction, discarding all uncommitted changes.
	Rollback() error
}

// Storage describes a non-transactional storage handle with the ability to
// start transactions.
type Storage interface {
	AllStorage

	// Close releases any resources held by the storage implementation.
	Close() error

	// Begin starts a new transaction and returns a TxStorage scoped to it.
	Begin(ctx context.Context) (TxStorage, error)
	// WithTx begins a transaction, invokes cb with a transactional handle,
	// and commits on success or rolls back when cb returns an error.
	WithTx(ctx context.Context, cb func(storage AllStorage) error) error
}
