package store

import "errors"

// Sentinel errors returned by storage constructors and methods. Callers
// should use [errors.Is] to match against these values.
var (
	// ErrUnknownDriver is returned by [NewStorage] for a driver name it does
	// not know.
	ErrUnknownDriver = errors.New("unknown storage driver")

	// ErrInvalidDSN is returned when a persistent driver gets no usable
	// file path or DSN.
	ErrInvalidDSN = errors.New("invalid storage dsn")

	// ErrEmptyKey is returned when an operation is given an empty key.
	ErrEmptyKey = errors.New("empty storage key")

	// ErrStorageClosed is returned by operations on a closed storage.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrCorruptedFile is returned when the file storage cannot parse its
	// backing file. The file is left untouched.
	ErrCorruptedFile = errors.New("storage file is corrupted")
)

// Low-level database operation errors. These wrap the driver error
// returned by the SQLite backend.
var (
	// ErrBuildingSQLQuery is returned when squirrel cannot build a query.
	ErrBuildingSQLQuery = errors.New("error building sql query")

	// ErrExecutingQuery is returned when executing a SELECT fails.
	ErrExecutingQuery = errors.New("error executing sql query")

	// ErrExecutingStatement is returned when executing an INSERT or DELETE
	// fails.
	ErrExecutingStatement = errors.New("failed to executing statement")

	// ErrScanningRow is returned when scanning a result row fails.
	ErrScanningRow = errors.New("failed to scan credential row")
)
