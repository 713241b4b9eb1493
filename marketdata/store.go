package marketdata

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/meenmo/multicurve/market"
)

// Store persists quotes and fixings in Postgres. Quote values are kept
// NUMERIC and moved as text so they survive the round trip exactly.
type Store struct {
	db *sql.DB
}

// OpenStore opens a connection pool for the given Postgres DSN. The
// connection itself is established lazily; call Ping to verify it.
func OpenStore(dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("OpenStore: %w", err)
	}
	return &Store{db: db}, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("Store.Ping: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// EnsureSchema creates the quote and fixing tables when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS quotes (
	key   TEXT        NOT NULL,
	as_of TIMESTAMPTZ NOT NULL,
	value NUMERIC     NOT NULL,
	PRIMARY KEY (key, as_of)
);
CREATE TABLE IF NOT EXISTS fixings (
	index_name  TEXT             NOT NULL,
	fixing_date DATE             NOT NULL,
	rate        DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (index_name, fixing_date)
);`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("Store.EnsureSchema: %w", err)
	}
	return nil
}

// SaveQuotes stores the records in one transaction. Records without
// their own timestamp are stored under asOf; re-saving a (key, as_of)
// pair overwrites the value.
func (s *Store) SaveQuotes(ctx context.Context, asOf time.Time, records []QuoteRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Store.SaveQuotes: begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO quotes (key, as_of, value) VALUES ($1, $2, $3)
		 ON CONFLICT (key, as_of) DO UPDATE SET value = EXCLUDED.value`)
	if err != nil {
		return fmt.Errorf("Store.SaveQuotes: prepare: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		if rec.Key == "" {
			return fmt.Errorf("Store.SaveQuotes: record has no key")
		}
		ts := rec.AsOf
		if ts.IsZero() {
			ts = asOf
		}
		if _, err := stmt.ExecContext(ctx, string(rec.Key), ts, rec.Value.String()); err != nil {
			return fmt.Errorf("Store.SaveQuotes: %s: %w", rec.Key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Store.SaveQuotes: commit: %w", err)
	}
	return nil
}

// LoadQuotes returns, for every key, the latest quote at or before
// asOf.
func (s *Store) LoadQuotes(ctx context.Context, asOf time.Time) ([]QuoteRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT ON (key) key, value, as_of
		 FROM quotes
		 WHERE as_of <= $1
		 ORDER BY key, as_of DESC`, asOf)
	if err != nil {
		return nil, fmt.Errorf("Store.LoadQuotes: %w", err)
	}
	defer rows.Close()

	var records []QuoteRecord
	for rows.Next() {
		var (
			key   string
			value string
			ts    time.Time
		)
		if err := rows.Scan(&key, &value, &ts); err != nil {
			return nil, fmt.Errorf("Store.LoadQuotes: scan: %w", err)
		}
		dec, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("Store.LoadQuotes: value %q for %s: %w", value, key, err)
		}
		records = append(records, QuoteRecord{Key: market.QuoteKey(key), Value: dec, AsOf: ts})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Store.LoadQuotes: %w", err)
	}
	return records, nil
}

// SaveFixing upserts one published fixing for the index.
func (s *Store) SaveFixing(ctx context.Context, index market.Index, date time.Time, rate float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO fixings (index_name, fixing_date, rate) VALUES ($1, $2, $3)
		 ON CONFLICT (index_name, fixing_date) DO UPDATE SET rate = EXCLUDED.rate`,
		string(index), date, rate)
	if err != nil {
		return fmt.Errorf("Store.SaveFixing: %s %s: %w", index, date.Format(asOfDateLayout), err)
	}
	return nil
}

// LoadFixings returns the fixing history of the index between from and
// to inclusive.
func (s *Store) LoadFixings(ctx context.Context, index market.Index, from, to time.Time) (market.FixingSeries, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT fixing_date, rate
		 FROM fixings
		 WHERE index_name = $1 AND fixing_date BETWEEN $2 AND $3
		 ORDER BY fixing_date`, string(index), from, to)
	if err != nil {
		return market.FixingSeries{}, fmt.Errorf("Store.LoadFixings: %w", err)
	}
	defer rows.Close()

	obs := make(map[time.Time]float64)
	for rows.Next() {
		var (
			date time.Time
			rate float64
		)
		if err := rows.Scan(&date, &rate); err != nil {
			return market.FixingSeries{}, fmt.Errorf("Store.LoadFixings: scan: %w", err)
		}
		obs[date] = rate
	}
	if err := rows.Err(); err != nil {
		return market.FixingSeries{}, fmt.Errorf("Store.LoadFixings: %w", err)
	}
	return market.NewFixingSeries(obs), nil
}
