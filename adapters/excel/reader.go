package excel

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"gotally/adapters/coercer"
	"gotally/domain/dataset"
	"gotally/internal"
	"gotally/internal/errors"
	"gotally/ports"

	"github.com/xuri/excelize/v2"
)

const (
	fileTypeXLSX = "xlsx"
	fileTypeCSV  = "csv"

	// CSVSheetName is the single sheet reported for CSV uploads
	CSVSheetName = "csv"
)

// DataReader loads Excel and CSV uploads into tables
type DataReader struct {
	logger *internal.Logger
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(logger *internal.Logger) *DataReader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DataReader{logger: logger}
}

var _ ports.SpreadsheetLoader = (*DataReader)(nil)

func fileType(filename string) string {
	if strings.ToLower(filepath.Ext(filename)) == ".csv" {
		return fileTypeCSV
	}
	return fileTypeXLSX
}

// SheetNames lists the sheets of an upload in workbook order
func (r *DataReader) SheetNames(ctx context.Context, upload ports.Upload) ([]string, error) {
	if fileType(upload.Filename) == fileTypeCSV {
		return []string{CSVSheetName}, nil
	}

	f, err := excelize.OpenReader(bytes.NewReader(upload.Data))
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("failed to open Excel file %s", upload.Filename), err)
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

// Load parses one sheet of an upload. The header row is 1-based; rows
// above it are ignored. Any parse failure yields a single error and no table.
func (r *DataReader) Load(ctx context.Context, upload ports.Upload, opts ports.LoadOptions) (*dataset.Table, error) {
	if opts.HeaderRow < 1 {
		opts.HeaderRow = 1
	}
	kind := fileType(upload.Filename)
	r.logger.Debug("[DataReader] Starting to read %s file: %s", kind, upload.Filename)

	var (
		rows  [][]string
		sheet string
		err   error
	)
	readStart := time.Now()
	switch kind {
	case fileTypeCSV:
		sheet = CSVSheetName
		rows, err = r.readCSVRows(upload)
	default:
		sheet, rows, err = r.readExcelRows(upload, opts.SheetName)
	}
	if err != nil {
		return nil, err
	}
	r.logger.Debug("[DataReader] %s read in %.2fms (%d rows)", sheet,
		float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	table, err := r.processRows(rows, opts.HeaderRow)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", upload.Filename)
	}
	table.Source = dataset.Source{
		Filename:  upload.Filename,
		SheetName: sheet,
		HeaderRow: opts.HeaderRow,
		LoadedAt:  time.Now().UTC(),
	}

	r.logger.Info("[DataReader] %s processed (%d columns, %d rows)",
		upload.Filename, table.ColumnCount(), table.RowCount())
	return table, nil
}

func (r *DataReader) readExcelRows(upload ports.Upload, sheet string) (string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(upload.Data))
	if err != nil {
		return "", nil, errors.InvalidInput(fmt.Sprintf("failed to open Excel file %s", upload.Filename), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, errors.InvalidInput("workbook has no sheets", nil)
	}
	if sheet == "" {
		sheet = sheets[0]
	} else if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		return "", nil, errors.InvalidInput(fmt.Sprintf("sheet %q not found", sheet), nil)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return "", nil, errors.InvalidInput(fmt.Sprintf("failed to read sheet %s", sheet), err)
	}
	return sheet, rows, nil
}

func (r *DataReader) readCSVRows(upload ports.Upload) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(upload.Data))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.InvalidInput("failed to read CSV file", err)
	}
	return rows, nil
}

// processRows converts raw string rows into a typed table
func (r *DataReader) processRows(rows [][]string, headerRow int) (*dataset.Table, error) {
	if len(rows) < headerRow {
		return nil, errors.InvalidInput(fmt.Sprintf("header row %d is beyond the last row (%d)", headerRow, len(rows)), nil)
	}

	headers := buildHeaders(rows[headerRow-1], rows[headerRow:])
	columns := make([]dataset.Column, len(headers))
	for j, name := range headers {
		columns[j] = dataset.Column{Name: name}
	}

	for _, row := range rows[headerRow:] {
		if isBlank(row) {
			continue
		}
		for j := range columns {
			cell := ""
			if j < len(row) {
				cell = row[j]
			}
			columns[j].Values = append(columns[j].Values, coercer.CellValue(cell))
		}
	}

	if len(columns) == 0 || columns[0].Len() == 0 {
		return nil, errors.InvalidInput("file must have a header row and at least one data row", nil)
	}

	table, err := dataset.NewTable(columns)
	if err != nil {
		return nil, errors.InvalidInput("invalid table layout", err)
	}
	return table, nil
}

// buildHeaders names every column wide enough to hold the data. Blank
// headers become "Unnamed: i" and repeats get ".1", ".2" suffixes.
func buildHeaders(header []string, data [][]string) []string {
	width := len(header)
	for _, row := range data {
		if n := lastNonBlank(row) + 1; n > width {
			width = n
		}
	}

	names := make([]string, width)
	used := make(map[string]bool, width)
	suffix := make(map[string]int)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = strings.TrimSpace(header[i])
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		if used[name] {
			base := name
			for {
				suffix[base]++
				name = fmt.Sprintf("%s.%d", base, suffix[base])
				if !used[name] {
					break
				}
			}
		}
		used[name] = true
		names[i] = name
	}
	return names
}

func lastNonBlank(row []string) int {
	for i := len(row) - 1; i >= 0; i-- {
		if strings.TrimSpace(row[i]) != "" {
			return i
		}
	}
	return -1
}

func isBlank(row []string) bool {
	return lastNonBlank(row) < 0
}
