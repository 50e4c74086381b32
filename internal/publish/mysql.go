package publish

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"deploy-summary/internal/config"

	_ "github.com/go-sql-driver/mysql"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// MySQLSink upserts one row per chain into a summary table.
type MySQLSink struct {
	db    *sql.DB
	table string
}

// NewMySQLSink opens the database, pings it and creates the table if needed.
func NewMySQLSink(ctx context.Context, cfg config.MySQLConfig) (*MySQLSink, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("MySQL DSN 不能为空")
	}
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("连接 MySQL 失败: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("无法连接到 MySQL: %w", err)
	}
	sink, err := newMySQLSink(ctx, db, cfg.Table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return sink, nil
}

func newMySQLSink(ctx context.Context, db *sql.DB, table string) (*MySQLSink, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("非法的表名: %q", table)
	}
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    chain_id BIGINT NOT NULL PRIMARY KEY,
    chain_name VARCHAR(64) NOT NULL,
    run_id CHAR(36) NOT NULL,
    summary JSON NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, table)
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("创建摘要表失败: %w", err)
	}
	return &MySQLSink{db: db, table: table}, nil
}

// Name implements Sink.
func (s *MySQLSink) Name() string { return "mysql" }

// Publish implements Sink. A chain's previous row is replaced.
func (s *MySQLSink) Publish(ctx context.Context, msg Message) error {
	query := fmt.Sprintf(`INSERT INTO %s (chain_id, chain_name, run_id, summary) VALUES (?, ?, ?, ?)
ON DUPLICATE KEY UPDATE chain_name = VALUES(chain_name), run_id = VALUES(run_id), summary = VALUES(summary)`, s.table)
	if _, err := s.db.ExecContext(ctx, query, msg.ChainID, msg.ChainName, msg.RunID, string(msg.Payload)); err != nil {
		return fmt.Errorf("写入 MySQL 摘要失败: %w", err)
	}
	return nil
}

// Close implements Sink.
func (s *MySQLSink) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
