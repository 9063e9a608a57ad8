package recording

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/fatih/structs"
	"github.com/tebeka/atexit"
)

// columnStore is the part of a ClickHouse connection the recorder needs.
type columnStore interface {
	Exec(ctx context.Context, query string) error
	InsertRows(ctx context.Context, table string, rows [][]any) error
	Close() error
}

type clickhouseStore struct {
	conn driver.Conn
}

func (s clickhouseStore) Exec(ctx context.Context, query string) error {
	return s.conn.Exec(ctx, query)
}

func (s clickhouseStore) InsertRows(
	ctx context.Context,
	table string,
	rows [][]any,
) error {
	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO "+table)
	if err != nil {
		return err
	}

	for _, row := range rows {
		if err := batch.Append(row...); err != nil {
			_ = batch.Abort()
			return err
		}
	}

	return batch.Send()
}

func (s clickhouseStore) Close() error {
	return s.conn.Close()
}

// NewClickHouse creates a DataRecorder that writes to the ClickHouse server
// named by the DSN. Buffered entries are flushed at exit.
func NewClickHouse(dsn string, batchSize int) (DataRecorder, error) {
	if dsn == "" {
		return nil, errors.New("recording: clickhouse DSN is empty")
	}

	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("recording: %w", err)
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("recording: %w", err)
	}

	if err := conn.Ping(context.Background()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("recording: ping clickhouse: %w", err)
	}

	w := newClickHouseWriter(clickhouseStore{conn: conn}, batchSize)
	atexit.Register(func() { _ = w.Flush() })

	return w, nil
}

type clickhouseWriter struct {
	store      columnStore
	tables     map[string]*table
	order      []string
	batchSize  int
	entryCount int
}

func newClickHouseWriter(store columnStore, batchSize int) *clickhouseWriter {
	if batchSize <= 0 {
		batchSize = 100000
	}

	return &clickhouseWriter{
		store:     store,
		tables:    make(map[string]*table),
		batchSize: batchSize,
	}
}

func clickhouseType(kind reflect.Kind) string {
	switch kind {
	case reflect.Bool:
		return "Bool"
	case reflect.Int8:
		return "Int8"
	case reflect.Int16:
		return "Int16"
	case reflect.Int32:
		return "Int32"
	case reflect.Int, reflect.Int64:
		return "Int64"
	case reflect.Uint8:
		return "UInt8"
	case reflect.Uint16:
		return "UInt16"
	case reflect.Uint32:
		return "UInt32"
	case reflect.Uint, reflect.Uint64:
		return "UInt64"
	case reflect.Float32:
		return "Float32"
	case reflect.Float64:
		return "Float64"
	default:
		return "String"
	}
}

func createTableQuery(tableName string, sampleEntry any) string {
	t := reflect.TypeOf(sampleEntry)

	columns := make([]string, 0, t.NumField())
	for i, name := range structs.Names(sampleEntry) {
		columns = append(columns,
			name+" "+clickhouseType(t.Field(i).Type.Kind()))
	}

	return `CREATE TABLE IF NOT EXISTS ` + tableName + ` (` + "\n\t" +
		strings.Join(columns, ",\n\t") + "\n" +
		`) ENGINE = MergeTree() ORDER BY tuple()`
}

func (w *clickhouseWriter) CreateTable(tableName string, sampleEntry any) error {
	if err := checkStructFields(sampleEntry); err != nil {
		return err
	}

	if t, exists := w.tables[tableName]; exists {
		if t.structType != reflect.TypeOf(sampleEntry) {
			return fmt.Errorf("recording: table %s exists with another type",
				tableName)
		}

		return nil
	}

	query := createTableQuery(tableName, sampleEntry)
	if err := w.store.Exec(context.Background(), query); err != nil {
		return fmt.Errorf("recording: create table %s: %w", tableName, err)
	}

	w.tables[tableName] = &table{structType: reflect.TypeOf(sampleEntry)}
	w.order = append(w.order, tableName)

	return nil
}

func (w *clickhouseWriter) InsertData(tableName string, entry any) error {
	t, exists := w.tables[tableName]
	if !exists {
		return fmt.Errorf("recording: table %s does not exist", tableName)
	}

	if reflect.TypeOf(entry) != t.structType {
		return fmt.Errorf("recording: entry of type %T does not fit table %s",
			entry, tableName)
	}

	t.entries = append(t.entries, entry)
	w.entryCount++

	if w.entryCount >= w.batchSize {
		return w.Flush()
	}

	return nil
}

func (w *clickhouseWriter) ListTables() []string {
	return append([]string(nil), w.order...)
}

func (w *clickhouseWriter) Flush() error {
	if w.entryCount == 0 {
		return nil
	}

	ctx := context.Background()

	for _, name := range w.order {
		t := w.tables[name]
		if len(t.entries) == 0 {
			continue
		}

		rows := make([][]any, 0, len(t.entries))
		for _, e := range t.entries {
			rows = append(rows, structs.Values(e))
		}

		if err := w.store.InsertRows(ctx, name, rows); err != nil {
			return fmt.Errorf("recording: insert into %s: %w", name, err)
		}

		t.entries = nil
	}

	w.entryCount = 0

	return nil
}

func (w *clickhouseWriter) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}

	return w.store.Close()
}
