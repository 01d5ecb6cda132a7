package store

import "errors"

// Sentinel errors returned by storage methods to signal well-known failure
// conditions. Callers should use [errors.Is] to match against these values.
var (
	// ErrVaultNotFound is returned when no header was ever saved for the
	// requested vault address.
	ErrVaultNotFound = errors.New("vault was not found in storage")

	// ErrVaultNotSaved is returned when an upsert completes without error but
	// affects no rows.
	ErrVaultNotSaved = errors.New("vault was not saved")

	// ErrTransactionNotSaved is returned when a transaction upsert completes
	// without error but affects no rows.
	ErrTransactionNotSaved = errors.New("transaction was not saved")

	// ErrUnsupportedDSN is returned when the storage DSN names no known
	// backend.
	ErrUnsupportedDSN = errors.New("unsupported storage DSN")
)

// Low-level database operation errors. These are returned (or wrapped) by
// storage methods when a SQL-level operation fails before any domain logic
// can be applied.
var (
	// ErrBuildingSQLQuery is returned when constructing a parameterised SQL
	// query fails (e.g. invalid argument count or unsupported type).
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT or similar
	// read-only query against the database fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing a DML statement
	// (INSERT, UPDATE, DELETE) fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning column values from a single
	// result row into a destination struct fails.
	ErrScanningRow = errors.New("failed to scan row")

	// ErrScanningRows is returned when scanning column values during
	// multi-row iteration fails, typically mid-result-set.
	ErrScanningRows = errors.New("failed to scan rows")

	// ErrEncodingValue is returned when a column or key-value payload cannot
	// be encoded or decoded.
	ErrEncodingValue = errors.New("failed to encode stored value")
)
