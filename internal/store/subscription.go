package store

// MaxLocationLength is the longest location, in characters, every driver can key on.
const MaxLocationLength = 255

// Subscription is one chat's interest in the forecast for a location on a date.
// (ChatID, Location, Date) is unique.
type Subscription struct {
	ChatID   int64  `json:"chatId" validate:"required"`
	Location string `json:"location" validate:"required,max=255"`
	Date     string `json:"date" validate:"required,datetime=2006-01-02"`
	Forecast string `json:"forecast"`
}

// Key returns the identifying triple of the subscription.
func (s *Subscription) Key() SubscriptionKey {
	return SubscriptionKey{ChatID: s.ChatID, Location: s.Location, Date: s.Date}
}

// SubscriptionKey identifies a single subscription row.
type SubscriptionKey struct {
	ChatID   int64  `validate:"required"`
	Location string `validate:"required"`
	Date     string `validate:"required"`
}

// FindSubscription filters for ListSubscriptions. A nil field matches everything.
type FindSubscription struct {
	ChatID   *int64
	Location *string
	Date     *string
}

// UpdateSubscription carries the new forecast text for an existing key.
type UpdateSubscription struct {
	SubscriptionKey
	Forecast string
}
