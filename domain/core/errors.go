package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Missing input
	ErrNotFound        = errors.New("resource not found")
	ErrBlobNotFound    = fmt.Errorf("%w: blob", ErrNotFound)
	ErrFieldNotFound   = fmt.Errorf("%w: field", ErrNotFound)
	ErrNoDataset       = errors.New("no dataset loaded")
	ErrNoConfiguration = errors.New("no dashboard configuration saved")

	// Computation
	ErrNonNumeric         = errors.New("field is not numeric")
	ErrNoValues           = errors.New("no numeric values to aggregate")
	ErrUnknownOperation   = errors.New("unknown aggregation operation")
	ErrNoDataAfterFilters = errors.New("no data available after applying filters")

	// Table shape
	ErrInvalidTable    = errors.New("invalid table")
	ErrDuplicateColumn = fmt.Errorf("%w: duplicate column name", ErrInvalidTable)
	ErrRaggedColumns   = fmt.Errorf("%w: columns have different lengths", ErrInvalidTable)

	// Persistence
	ErrUnsupportedVersion = errors.New("unsupported schema version")
	ErrChecksumMismatch   = errors.New("blob checksum mismatch")
)
