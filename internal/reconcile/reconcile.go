package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/i474232898/weather-subscription-bot/internal/store"
)

// Forecaster renders the current forecast text for a location.
type Forecaster interface {
	ForecastText(ctx context.Context, location string) (string, error)
}

// Notifier sends a text message to a chat.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// Result summarizes one reconciliation pass.
type Result struct {
	RunID    string
	Checked  int
	Changed  int
	Failed   int
	Notified int
}

// Reconciler re-fetches the forecast of every stored subscription and notifies
// chats whose forecast text changed.
type Reconciler struct {
	store     *store.Store
	forecasts Forecaster
	notifier  Notifier
}

// New creates a new Reconciler.
func New(st *store.Store, forecasts Forecaster, notifier Notifier) *Reconciler {
	return &Reconciler{
		store:     st,
		forecasts: forecasts,
		notifier:  notifier,
	}
}

type fetchResult struct {
	text string
	err  error
}

// Run performs one pass over all subscriptions. Failures on a single
// subscription are logged and skipped; only a failure to list the
// subscriptions aborts the pass.
func (r *Reconciler) Run(ctx context.Context) (Result, error) {
	res := Result{RunID: uuid.NewString()}
	log.Printf("reconcile[%s]: checking weather updates", res.RunID)

	subs, err := r.store.ListSubscriptions(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("load subscriptions: %w", err)
	}

	// One upstream call per location per pass.
	fetched := make(map[string]fetchResult)

	for _, sub := range subs {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		res.Checked++

		fr, ok := fetched[sub.Location]
		if !ok {
			text, err := r.forecasts.ForecastText(ctx, sub.Location)
			fr = fetchResult{text: text, err: err}
			fetched[sub.Location] = fr
		}
		if fr.err != nil {
			res.Failed++
			log.Printf("ERROR: reconcile[%s]: forecast for chat %d %q on %s: %v", res.RunID, sub.ChatID, sub.Location, sub.Date, fr.err)
			continue
		}

		// The row may have been re-subscribed or deleted since the pass listed it.
		current, err := r.store.GetSubscription(ctx, sub.Key())
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			res.Failed++
			log.Printf("ERROR: reconcile[%s]: reload chat %d %q on %s: %v", res.RunID, sub.ChatID, sub.Location, sub.Date, err)
			continue
		}
		if fr.text == current.Forecast {
			continue
		}

		if err := r.store.UpdateSubscriptionForecast(ctx, sub.Key(), fr.text); err != nil {
			res.Failed++
			log.Printf("ERROR: reconcile[%s]: store update for chat %d %q on %s: %v", res.RunID, sub.ChatID, sub.Location, sub.Date, err)
			continue
		}
		res.Changed++

		if err := r.notifier.Notify(ctx, sub.ChatID, UpdateMessage(sub.Location, sub.Date, fr.text)); err != nil {
			log.Printf("ERROR: reconcile[%s]: notify chat %d: %v", res.RunID, sub.ChatID, err)
			continue
		}
		res.Notified++
	}

	log.Printf("reconcile[%s]: completed: checked=%d changed=%d failed=%d notified=%d",
		res.RunID, res.Checked, res.Changed, res.Failed, res.Notified)
	return res, nil
}

// UpdateMessage is the text sent to a chat when its forecast changed.
func UpdateMessage(location, date, forecast string) string {
	return fmt.Sprintf("Updated forecast for %s on %s:\n%s", location, date, forecast)
}
