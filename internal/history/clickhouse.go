package history

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

// ClickHouseSink sends audit events to ClickHouse using the official Go
// client. The table must exist; see DefaultClickHouseSchema.
type ClickHouseSink struct {
	conn  driver.Conn
	table string
}

// ClickHouseOptions configures the native connection.
type ClickHouseOptions struct {
	Addr     string // host:port
	Database string
	Username string
	Password string
	Table    string
}

// DefaultClickHouseSchema returns a CREATE TABLE statement for the given
// table name, for operators bootstrapping the sink.
func DefaultClickHouseSchema(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		type String,
		occurred_at DateTime64(3),
		name String,
		revision String,
		ok UInt8,
		detail String
	) ENGINE = MergeTree() ORDER BY (name, occurred_at)`, table)
}

func NewClickHouseSink(opts ClickHouseOptions) (*ClickHouseSink, error) {
	if opts.Database == "" {
		opts.Database = "default"
	}
	if opts.Username == "" {
		opts.Username = "default"
	}
	if opts.Table == "" {
		opts.Table = "spec_history"
	}
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{opts.Addr},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	if err := conn.Ping(context.Background()); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}
	return &ClickHouseSink{conn: conn, table: opts.Table}, nil
}

// EnsureSchema creates the history table when missing.
func (s *ClickHouseSink) EnsureSchema(ctx context.Context) error {
	return s.conn.Exec(ctx, DefaultClickHouseSchema(s.table))
}

func (s *ClickHouseSink) Send(ctx context.Context, e Event) error {
	query := fmt.Sprintf(`INSERT INTO %s (type, occurred_at, name, revision, ok, detail) VALUES (?, ?, ?, ?, ?, ?)`, s.table)
	ok := uint8(0)
	if e.OK {
		ok = 1
	}
	if err := s.conn.Exec(ctx, query,
		string(e.Type),
		e.OccurredAt,
		e.Name,
		e.Revision,
		ok,
		e.Detail,
	); err != nil {
		return fmt.Errorf("failed to insert event into ClickHouse: %w", err)
	}
	return nil
}

func (s *ClickHouseSink) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}
