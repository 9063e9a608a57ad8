package recording

import "fmt"

// Backends a recorder can write to.
const (
	BackendSQLite     = "sqlite"
	BackendClickHouse = "clickhouse"
)

// Config selects and configures a recording backend.
type Config struct {
	// Type is BackendSQLite or BackendClickHouse. Empty means SQLite.
	Type string

	// Path is the SQLite file name without extension.
	Path string

	// ConnStr is the ClickHouse DSN, for example
	// "clickhouse://localhost:9000/easysoc?username=default".
	ConnStr string

	// BatchSize is the number of buffered entries that triggers a flush.
	BatchSize int
}

// NewWithConfig creates the DataRecorder described by the config.
func NewWithConfig(c Config) (DataRecorder, error) {
	switch c.Type {
	case "", BackendSQLite:
		r, err := New(c.Path)
		if err != nil {
			return nil, err
		}

		if c.BatchSize > 0 {
			r.(*sqliteWriter).batchSize = c.BatchSize
		}

		return r, nil
	case BackendClickHouse:
		return NewClickHouse(c.ConnStr, c.BatchSize)
	default:
		return nil, fmt.Errorf("recording: unknown backend %q", c.Type)
	}
}
