package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/tabimport/internal/importer"
	"github.com/KaramelBytes/tabimport/internal/table"
)

func sampleTable(t *testing.T, numeric bool) *table.Table {
	t.Helper()
	opt := importer.DefaultOptions()
	opt.Separator = ","
	opt.ConvertToNumeric = numeric
	opt.TableName = "run"
	im, err := importer.New(opt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	res, err := im.Import(strings.NewReader("x,y\n1,2\n3\n4,5\n"))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	return res.Table
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleTable(t, true)); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("run")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %v", rows)
	}
	if rows[0][0] != "x" || rows[0][1] != "y" || rows[1][1] != "2" || rows[3][0] != "4" {
		t.Fatalf("rows = %v", rows)
	}
	// the invalid y cell of row 2 is blank
	if len(rows[2]) > 1 && rows[2][1] != "" {
		t.Fatalf("invalid cell written as %q", rows[2][1])
	}
	meta, err := f.GetRows(columnsSheet)
	if err != nil {
		t.Fatalf("GetRows columns: %v", err)
	}
	if len(meta) != 3 || meta[1][1] != "x" || meta[2][1] != "y" || meta[2][3] != "1" {
		t.Fatalf("columns sheet = %v", meta)
	}
}

func TestWriteXLSXEmpty(t *testing.T) {
	if err := WriteXLSX(&bytes.Buffer{}, table.New("")); !errors.Is(err, ErrNoColumns) {
		t.Fatalf("err = %v, want ErrNoColumns", err)
	}
}

func TestSheetName(t *testing.T) {
	tests := map[string]string{
		"":                        table.DefaultName,
		"Columns":                 table.DefaultName,
		"a/b:c":                   "a_b_c",
		strings.Repeat("z", 40):   strings.Repeat("z", 31),
		"  spectrum 2024-10-19  ": "spectrum 2024-10-19",
	}
	for in, want := range tests {
		if got := sheetName(in); got != want {
			t.Errorf("sheetName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestToArrowRecord(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	rec := ToArrowRecord(mem, sampleTable(t, true))
	defer rec.Release()
	if rec.NumRows() != 3 || rec.NumCols() != 2 {
		t.Fatalf("record shape = %dx%d", rec.NumRows(), rec.NumCols())
	}
	y := rec.Column(1).(*array.Float64)
	if !y.IsNull(1) || y.IsValid(1) || y.Value(2) != 5 {
		t.Fatalf("y = %v", y)
	}
	role, ok := rec.Schema().Field(0).Metadata.GetValue(MetaPlotRole)
	if !ok || role != "x" {
		t.Fatalf("x role = %q (%v)", role, ok)
	}
	name, ok := rec.Schema().Metadata().GetValue(MetaTableName)
	if !ok || name != "run" {
		t.Fatalf("table name = %q (%v)", name, ok)
	}
}

func TestToArrowRecordText(t *testing.T) {
	mem := memory.NewGoAllocator()
	rec := ToArrowRecord(mem, sampleTable(t, false))
	defer rec.Release()
	y := rec.Column(1).(*array.String)
	if y.Value(0) != "2" || !y.IsNull(1) {
		t.Fatalf("y = %v", y)
	}
}

func TestWriteArrowRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteArrow(&buf, sampleTable(t, true)); err != nil {
		t.Fatalf("WriteArrow: %v", err)
	}
	r, err := ipc.NewFileReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("NewFileReader: %v", err)
	}
	defer r.Close()
	if r.NumRecords() != 1 {
		t.Fatalf("records = %d, want 1", r.NumRecords())
	}
	rec, err := r.Record(0)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if rec.NumRows() != 3 || rec.Column(1).NullN() != 1 {
		t.Fatalf("rows = %d, y nulls = %d", rec.NumRows(), rec.Column(1).NullN())
	}
}

func TestWriteParquetRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteParquet(&buf, sampleTable(t, true)); err != nil {
		t.Fatalf("WriteParquet: %v", err)
	}
	mem := memory.NewGoAllocator()
	tbl, err := pqarrow.ReadTable(context.Background(), bytes.NewReader(buf.Bytes()),
		parquet.NewReaderProperties(mem), pqarrow.ArrowReadProperties{}, mem)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	defer tbl.Release()
	if tbl.NumRows() != 3 || tbl.NumCols() != 2 {
		t.Fatalf("parquet shape = %dx%d", tbl.NumRows(), tbl.NumCols())
	}
	if tbl.Schema().Field(1).Name != "y" {
		t.Fatalf("schema = %v", tbl.Schema())
	}
	if n := tbl.Column(1).Data().NullN(); n != 1 {
		t.Fatalf("y nulls = %d, want 1", n)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleTable(t, true)); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var got TableJSON
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Name != "run" || got.Rows != 3 || len(got.Columns) != 2 {
		t.Fatalf("json = %+v", got)
	}
	y := got.Columns[1]
	if y.Role != "y" || y.Kind != "numeric" || y.Values[1] != nil || y.Values[2] != 5.0 {
		t.Fatalf("y = %+v", y)
	}
	if len(y.Invalid) != 1 || y.Invalid[0] != 1 {
		t.Fatalf("invalid = %v", y.Invalid)
	}
}
