package store

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned by GetSubscription when no row matches the key.
	ErrNotFound = errors.New("subscription not found")

	// ErrInvalidSubscription is returned when a subscription fails validation.
	ErrInvalidSubscription = errors.New("invalid subscription")
)

var validate = validator.New()

// Driver is implemented once per SQL engine.
type Driver interface {
	Migrate(ctx context.Context) error
	Close() error

	UpsertSubscription(ctx context.Context, upsert *Subscription) error
	ListSubscriptions(ctx context.Context, find *FindSubscription) ([]*Subscription, error)
	UpdateSubscription(ctx context.Context, update *UpdateSubscription) error
	DeleteSubscription(ctx context.Context, key *SubscriptionKey) error
}

// Store is the subscription store used by the bot and the reconciler.
type Store struct {
	driver Driver
}

// New creates a new Store on top of driver.
func New(driver Driver) *Store {
	return &Store{driver: driver}
}

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	return errors.Wrap(s.driver.Migrate(ctx), "migrate subscription store")
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.driver.Close()
}

// UpsertSubscription inserts the subscription or replaces the forecast of the
// existing row with the same key.
func (s *Store) UpsertSubscription(ctx context.Context, upsert *Subscription) error {
	if err := validate.Struct(upsert); err != nil {
		return errors.Wrapf(ErrInvalidSubscription, "%v", err)
	}
	return errors.Wrap(s.driver.UpsertSubscription(ctx, upsert), "upsert subscription")
}

// ListSubscriptions returns the subscriptions matching find, ordered by chat,
// date and location.
func (s *Store) ListSubscriptions(ctx context.Context, find *FindSubscription) ([]*Subscription, error) {
	if find == nil {
		find = &FindSubscription{}
	}
	list, err := s.driver.ListSubscriptions(ctx, find)
	if err != nil {
		return nil, errors.Wrap(err, "list subscriptions")
	}
	return list, nil
}

// ListChatSubscriptions returns every subscription of a chat.
func (s *Store) ListChatSubscriptions(ctx context.Context, chatID int64) ([]*Subscription, error) {
	return s.ListSubscriptions(ctx, &FindSubscription{ChatID: &chatID})
}

// GetSubscription returns the row for key or ErrNotFound.
func (s *Store) GetSubscription(ctx context.Context, key SubscriptionKey) (*Subscription, error) {
	list, err := s.ListSubscriptions(ctx, &FindSubscription{
		ChatID:   &key.ChatID,
		Location: &key.Location,
		Date:     &key.Date,
	})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return list[0], nil
}

// UpdateSubscriptionForecast sets the stored forecast text for key.
// Updating a key that does not exist is a no-op.
func (s *Store) UpdateSubscriptionForecast(ctx context.Context, key SubscriptionKey, forecast string) error {
	if err := validate.Struct(key); err != nil {
		return errors.Wrapf(ErrInvalidSubscription, "%v", err)
	}
	update := &UpdateSubscription{SubscriptionKey: key, Forecast: forecast}
	return errors.Wrap(s.driver.UpdateSubscription(ctx, update), "update subscription forecast")
}

// DeleteSubscription removes the row for key. Deleting a key that does not
// exist is a no-op.
func (s *Store) DeleteSubscription(ctx context.Context, key SubscriptionKey) error {
	return errors.Wrap(s.driver.DeleteSubscription(ctx, &key), "delete subscription")
}
