package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/viper"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// Client represents a Postgres client.
type Client struct {
	pool *pgxpool.Pool
}

// Pool returns the underlying connection pool.
func (p *Client) Pool() *pgxpool.Pool {
	return p.pool
}

// Close closes the database connection for graceful shutdown.
func (p *Client) Close() {
	p.pool.Close()
}

// ConnString builds the connection string from configuration.
func ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		viper.GetString("postgres.host"),
		viper.GetInt("postgres.port"),
		viper.GetString("postgres.user"),
		viper.GetString("postgres.password"),
		viper.GetString("postgres.db"),
	)
}

// Connect opens and pings the connection pool without touching the schema.
func Connect(ctx context.Context) (*Client, error) {
	config, err := pgxpool.ParseConfig(ConnString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres config: %w", err)
	}
	if maxConns := viper.GetInt32("postgres.max_conns"); maxConns > 0 {
		config.MaxConns = maxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()

		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return &Client{pool: pool}, nil
}

// NewClient connects to Postgres and applies pending migrations.
func NewClient(ctx context.Context) (*Client, error) {
	client, err := Connect(ctx)
	if err != nil {
		return nil, err
	}

	if err := client.Migrate(ctx, "up"); err != nil {
		client.Close()

		return nil, err
	}

	return client, nil
}

// MustNewClient creates a new Postgres client.
func MustNewClient() *Client {
	client, err := NewClient(context.Background())
	if err != nil {
		panic(err)
	}

	return client
}

// Migrate runs a goose command (up, down, status, ...) against the embedded migrations.
func (p *Client) Migrate(ctx context.Context, command string) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	db := stdlib.OpenDBFromPool(p.pool)
	defer db.Close()

	err := goose.RunContext(ctx, command, db, migrationsDir)
	if err != nil && !errors.Is(err, goose.ErrNoNextVersion) {
		return fmt.Errorf("failed to run migrations %q: %w", command, err)
	}

	slog.Info("Migrations applied", "command", command)

	return nil
}
