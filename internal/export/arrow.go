package export

import (
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/KaramelBytes/tabimport/internal/table"
)

// Metadata keys attached to the Arrow schema.
const (
	MetaTableName = "tabimport.table_name"
	MetaPlotRole  = "tabimport.plot_role"
)

// Schema maps t to an Arrow schema: numeric columns become nullable float64,
// text columns nullable utf8. Each field records its plot role.
func Schema(t *table.Table) *arrow.Schema {
	fields := make([]arrow.Field, len(t.Columns))
	for i, c := range t.Columns {
		var typ arrow.DataType = arrow.BinaryTypes.String
		if c.Kind == table.KindNumeric {
			typ = arrow.PrimitiveTypes.Float64
		}
		fields[i] = arrow.Field{
			Name:     c.Name,
			Type:     typ,
			Nullable: true,
			Metadata: arrow.NewMetadata([]string{MetaPlotRole}, []string{c.Role.String()}),
		}
	}
	md := arrow.NewMetadata([]string{MetaTableName}, []string{t.Name})
	return arrow.NewSchema(fields, &md)
}

// ToArrowRecord builds a single record holding all rows. Invalid cells are
// null. The caller must Release the record.
func ToArrowRecord(mem memory.Allocator, t *table.Table) arrow.Record {
	b := array.NewRecordBuilder(mem, Schema(t))
	defer b.Release()
	for i, c := range t.Columns {
		switch fb := b.Field(i).(type) {
		case *array.Float64Builder:
			fb.Reserve(len(c.Numbers))
			for r, v := range c.Numbers {
				if c.IsInvalid(r) {
					fb.AppendNull()
				} else {
					fb.Append(v)
				}
			}
		case *array.StringBuilder:
			fb.Reserve(len(c.Text))
			for r, v := range c.Text {
				if c.IsInvalid(r) {
					fb.AppendNull()
				} else {
					fb.Append(v)
				}
			}
		}
	}
	return b.NewRecord()
}

// WriteArrow writes t as an Arrow IPC file.
func WriteArrow(w io.Writer, t *table.Table) error {
	if t.NumCols() == 0 {
		return ErrNoColumns
	}
	mem := memory.NewGoAllocator()
	rec := ToArrowRecord(mem, t)
	defer rec.Release()

	fw, err := ipc.NewFileWriter(w, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(mem))
	if err != nil {
		return fmt.Errorf("create arrow writer: %w", err)
	}
	if err := fw.Write(rec); err != nil {
		_ = fw.Close()
		return fmt.Errorf("write arrow: %w", err)
	}
	if err := fw.Close(); err != nil {
		return fmt.Errorf("close arrow: %w", err)
	}
	return nil
}

// WriteParquet writes t as a snappy-compressed Parquet file.
func WriteParquet(w io.Writer, t *table.Table) error {
	if t.NumCols() == 0 {
		return ErrNoColumns
	}
	mem := memory.NewGoAllocator()
	rec := ToArrowRecord(mem, t)
	defer rec.Release()
	tbl := array.NewTableFromRecords(rec.Schema(), []arrow.Record{rec})
	defer tbl.Release()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())
	writer, err := pqarrow.NewFileWriter(tbl.Schema(), w, props, arrowProps)
	if err != nil {
		return fmt.Errorf("create parquet writer: %w", err)
	}
	if err := writer.WriteTable(tbl, max(1, tbl.NumRows())); err != nil {
		_ = writer.Close()
		return fmt.Errorf("write parquet: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close parquet: %w", err)
	}
	return nil
}
