package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	// Pure Go sqlite driver, registered as "sqlite".
	_ "modernc.org/sqlite"

	"github.com/i474232898/weather-subscription-bot/internal/store"
)

type DB struct {
	db *sql.DB
}

// NewDB opens the sqlite database file at path, creating it if needed.
func NewDB(path string) (store.Driver, error) {
	if path == "" {
		return nil, errors.New("sqlite database path is required")
	}

	// busy_timeout lets the reconciler and the chat loop share the file without SQLITE_BUSY.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)", path)
	sqliteDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", dsn)
	}
	// A single writer keeps every statement serialized at the file level.
	sqliteDB.SetMaxOpenConns(1)

	return &DB{db: sqliteDB}, nil
}

func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS subscriptions (
		chat_id  INTEGER NOT NULL,
		location TEXT    NOT NULL,
		date     TEXT    NOT NULL,
		forecast TEXT    NOT NULL DEFAULT '',
		PRIMARY KEY (chat_id, location, date)
	)`)
	return err
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) UpsertSubscription(ctx context.Context, upsert *store.Subscription) error {
	stmt := `INSERT INTO subscriptions (chat_id, location, date, forecast)
	         VALUES (?, ?, ?, ?)
	         ON CONFLICT (chat_id, location, date) DO UPDATE SET forecast = excluded.forecast`
	_, err := d.db.ExecContext(ctx, stmt, upsert.ChatID, upsert.Location, upsert.Date, upsert.Forecast)
	return err
}

func (d *DB) ListSubscriptions(ctx context.Context, find *store.FindSubscription) ([]*store.Subscription, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ChatID; v != nil {
		where, args = append(where, "chat_id = ?"), append(args, *v)
	}
	if v := find.Location; v != nil {
		where, args = append(where, "location = ?"), append(args, *v)
	}
	if v := find.Date; v != nil {
		where, args = append(where, "date = ?"), append(args, *v)
	}

	query := fmt.Sprintf(
		`SELECT chat_id, location, date, forecast
		 FROM subscriptions WHERE %s ORDER BY chat_id, date, location`,
		strings.Join(where, " AND "),
	)
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*store.Subscription
	for rows.Next() {
		s := &store.Subscription{}
		if err := rows.Scan(&s.ChatID, &s.Location, &s.Date, &s.Forecast); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (d *DB) UpdateSubscription(ctx context.Context, update *store.UpdateSubscription) error {
	_, err := d.db.ExecContext(ctx,
		`UPDATE subscriptions SET forecast = ? WHERE chat_id = ? AND location = ? AND date = ?`,
		update.Forecast, update.ChatID, update.Location, update.Date,
	)
	return err
}

func (d *DB) DeleteSubscription(ctx context.Context, key *store.SubscriptionKey) error {
	_, err := d.db.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE chat_id = ? AND location = ? AND date = ?`,
		key.ChatID, key.Location, key.Date,
	)
	return err
}
