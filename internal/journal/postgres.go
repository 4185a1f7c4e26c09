package journal

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresJournal persists fills to a Postgres table.
type PostgresJournal struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig configures the Postgres connection.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresJournal opens a connection and verifies it with a ping.
func NewPostgresJournal(cfg PostgresConfig) (*PostgresJournal, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("postgres journal connected",
		zap.String("host", cfg.Host), zap.String("database", cfg.Database))

	return &PostgresJournal{db: db, logger: cfg.Logger}, nil
}

// newPostgresJournalWithDB is used by tests to inject a sqlmock *sql.DB.
func newPostgresJournalWithDB(db *sql.DB, logger *zap.Logger) *PostgresJournal {
	return &PostgresJournal{db: db, logger: logger}
}

// Record implements Journal.
func (p *PostgresJournal) Record(ctx context.Context, e Entry) error {
	query := `
		INSERT INTO fills (
			ticker, side, action, quantity, price_cents, fee_cents, is_taker, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := p.db.ExecContext(ctx, query,
		e.Ticker, e.Side.String(), e.Action.String(), e.Quantity,
		e.PriceCents, e.FeeCents, e.IsTaker, e.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert fill: %w", err)
	}

	p.logger.Debug("fill persisted", zap.String("ticker", e.Ticker), zap.Int("quantity", e.Quantity))
	return nil
}

// Close implements Journal.
func (p *PostgresJournal) Close() error {
	p.logger.Info("closing postgres journal")
	return p.db.Close()
}
