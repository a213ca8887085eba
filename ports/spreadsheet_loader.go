package ports

import (
	"context"

	"gotally/domain/dataset"
)

// Upload is a spreadsheet file held in memory
type Upload struct {
	Filename string
	Data     []byte
}

// LoadOptions selects the sheet and header row (1-based) to parse
type LoadOptions struct {
	SheetName string
	HeaderRow int
}

// SpreadsheetLoader parses uploads into tables. Parsing is all-or-nothing.
type SpreadsheetLoader interface {
	SheetNames(ctx context.Context, upload Upload) ([]string, error)
	Load(ctx context.Context, upload Upload, opts LoadOptions) (*dataset.Table, error)
}
