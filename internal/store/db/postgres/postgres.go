package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	// Registers the "postgres" driver.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/i474232898/weather-subscription-bot/internal/store"
)

type DB struct {
	db *sql.DB
}

func NewDB(dsn string) (store.Driver, error) {
	if dsn == "" {
		return nil, errors.New("dsn required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open db")
	}
	return &DB{db: db}, nil
}

func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS subscriptions (
		chat_id  BIGINT NOT NULL,
		location TEXT   NOT NULL,
		date     TEXT   NOT NULL,
		forecast TEXT   NOT NULL DEFAULT '',
		PRIMARY KEY (chat_id, location, date)
	)`)
	return err
}

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) UpsertSubscription(ctx context.Context, upsert *store.Subscription) error {
	stmt := `INSERT INTO subscriptions (chat_id, location, date, forecast)
	         VALUES ($1, $2, $3, $4)
	         ON CONFLICT (chat_id, location, date) DO UPDATE SET forecast = EXCLUDED.forecast`
	_, err := d.db.ExecContext(ctx, stmt, upsert.ChatID, upsert.Location, upsert.Date, upsert.Forecast)
	return err
}

func (d *DB) ListSubscriptions(ctx context.Context, find *store.FindSubscription) ([]*store.Subscription, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.ChatID; v != nil {
		where, args = append(where, "chat_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Location; v != nil {
		where, args = append(where, "location = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Date; v != nil {
		where, args = append(where, "date = "+placeholder(len(args)+1)), append(args, *v)
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
		`UPDATE subscriptions SET forecast = $1 WHERE chat_id = $2 AND location = $3 AND date = $4`,
		update.Forecast, update.ChatID, update.Location, update.Date,
	)
	return err
}

func (d *DB) DeleteSubscription(ctx context.Context, key *store.SubscriptionKey) error {
	_, err := d.db.ExecContext(ctx,
		`DELETE FROM subscriptions WHERE chat_id = $1 AND location = $2 AND date = $3`,
		key.ChatID, key.Location, key.Date,
	)
	return err
}

func placeholder(n int) string {
	return "$" + fmt.Sprint(n)
}
