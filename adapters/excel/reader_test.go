package excel

import (
	"context"
	"testing"

	"gotally/domain/dataset"
	"gotally/internal/errors"
	"gotally/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// workbook builds an in-memory xlsx with the given sheets
func workbook(t *testing.T, sheets map[string][][]interface{}, order ...string) ports.Upload {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return ports.Upload{Filename: "ventas.xlsx", Data: buf.Bytes()}
}

func TestSheetNames(t *testing.T) {
	r := NewDataReader(nil)
	upload := workbook(t, map[string][][]interface{}{
		"Resumen": {{"x"}, {1}},
		"Datos":   {{"y"}, {2}},
	}, "Resumen", "Datos")

	names, err := r.SheetNames(context.Background(), upload)
	require.NoError(t, err)
	assert.Equal(t, []string{"Resumen", "Datos"}, names)

	names, err = r.SheetNames(context.Background(), ports.Upload{Filename: "a.csv", Data: []byte("x\n1\n")})
	require.NoError(t, err)
	assert.Equal(t, []string{CSVSheetName}, names)
}

func TestLoadExcelTypesCells(t *testing.T) {
	r := NewDataReader(nil)
	upload := workbook(t, map[string][][]interface{}{
		"Datos": {
			{"Region", "Sales", "Note"},
			{"A", 10, "ok"},
			{"B", 2.5, nil},
			{"A", "n/a", "late"},
		},
	}, "Datos")

	table, err := r.Load(context.Background(), upload, ports.LoadOptions{SheetName: "Datos", HeaderRow: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{"Region", "Sales", "Note"}, table.Columns())
	assert.Equal(t, 3, table.RowCount())
	assert.Equal(t, "Datos", table.Source.SheetName)
	assert.Equal(t, "ventas.xlsx", table.Source.Filename)

	sales, _ := table.Column("Sales")
	assert.Equal(t, dataset.Number(10), sales.Values[0])
	assert.Equal(t, dataset.Number(2.5), sales.Values[1])
	assert.Equal(t, dataset.Text("n/a"), sales.Values[2])

	note, _ := table.Column("Note")
	assert.True(t, note.Values[1].IsMissing())
}

func TestLoadHeaderRowOffset(t *testing.T) {
	r := NewDataReader(nil)
	upload := workbook(t, map[string][][]interface{}{
		"Hoja": {
			{"Monthly report"},
			{nil},
			{"Region", "Sales"},
			{"A", 1},
			{nil, nil},
			{"B", 2},
		},
	}, "Hoja")

	table, err := r.Load(context.Background(), upload, ports.LoadOptions{HeaderRow: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"Region", "Sales"}, table.Columns())
	assert.Equal(t, 2, table.RowCount(), "blank rows are skipped")
	assert.Equal(t, "Hoja", table.Source.SheetName, "first sheet is the default")
	assert.Equal(t, 3, table.Source.HeaderRow)
}

func TestLoadCSVHeaders(t *testing.T) {
	r := NewDataReader(nil)
	upload := ports.Upload{
		Filename: "datos.CSV",
		Data:     []byte("Region,,Region,Sales\nA,x,y,10\nB,,z,20,extra\n"),
	}

	table, err := r.Load(context.Background(), upload, ports.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Region", "Unnamed: 1", "Region.1", "Sales", "Unnamed: 4"}, table.Columns())

	extra, _ := table.Column("Unnamed: 4")
	assert.True(t, extra.Values[0].IsMissing())
	assert.Equal(t, dataset.Text("extra"), extra.Values[1])
}

func TestLoadErrors(t *testing.T) {
	r := NewDataReader(nil)
	ctx := context.Background()
	upload := workbook(t, map[string][][]interface{}{"Datos": {{"Region"}, {"A"}}}, "Datos")

	tests := []struct {
		name   string
		upload ports.Upload
		opts   ports.LoadOptions
	}{
		{"unknown sheet", upload, ports.LoadOptions{SheetName: "Missing"}},
		{"header beyond data", upload, ports.LoadOptions{HeaderRow: 5}},
		{"header only", upload, ports.LoadOptions{HeaderRow: 2}},
		{"not a workbook", ports.Upload{Filename: "x.xlsx", Data: []byte("garbage")}, ports.LoadOptions{}},
		{"bad csv quoting", ports.Upload{Filename: "x.csv", Data: []byte("a\n\"open")}, ports.LoadOptions{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := r.Load(ctx, tt.upload, tt.opts)
			require.Error(t, err)
			assert.Nil(t, table)
			assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
		})
	}
}
