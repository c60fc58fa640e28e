package bot

import (
	"context"
	"errors"
	"log"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/i474232898/weather-subscription-bot/internal/store"
)

// Forecaster renders the current forecast text for a location.
type Forecaster interface {
	ForecastText(ctx context.Context, location string) (string, error)
}

// Trigger requests an immediate reconciliation pass.
type Trigger interface {
	TriggerNow()
}

// Bot drives the subscription dialog and the view/delete menu for every chat.
// Handle is expected to be called from a single loop, one event at a time.
type Bot struct {
	store     *store.Store
	forecasts Forecaster
	trigger   Trigger
	out       Responder
	sessions  *SessionStore
	now       func() time.Time
}

// Option customizes a Bot.
type Option func(*Bot)

// WithClock replaces time.Now, used to pick the calendar's initial month.
func WithClock(now func() time.Time) Option {
	return func(b *Bot) { b.now = now }
}

// New creates a new Bot. trigger may be nil.
func New(st *store.Store, forecasts Forecaster, trigger Trigger, out Responder, opts ...Option) *Bot {
	b := &Bot{
		store:     st,
		forecasts: forecasts,
		trigger:   trigger,
		out:       out,
		sessions:  NewSessionStore(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Sessions exposes the dialog sessions.
func (b *Bot) Sessions() *SessionStore {
	return b.sessions
}

// Handle processes one inbound event. Returned errors come from the store or
// the responder; the dialog state is already updated when they are returned.
func (b *Bot) Handle(ctx context.Context, ev Event) error {
	switch ev.Kind {
	case EventCommand:
		return b.handleCommand(ctx, ev)
	case EventCallback:
		return b.handleCallback(ctx, ev)
	default:
		return b.handleText(ctx, ev)
	}
}

func (b *Bot) handleCommand(ctx context.Context, ev Event) error {
	sess := b.sessions.Get(ev.ChatID)

	switch strings.ToLower(ev.Command) {
	case "start", "add":
		return b.startDialog(ctx, ev.ChatID)
	case "cancel":
		if sess.Stage == StageIdle {
			return b.say(ctx, ev.ChatID, msgNothingToCancel)
		}
		b.sessions.Delete(ev.ChatID)
		return b.say(ctx, ev.ChatID, msgCancelled)
	case "menu":
		if sess.Stage != StageIdle {
			return b.say(ctx, ev.ChatID, msgFinishFirst)
		}
		return b.sendMenu(ctx, ev.ChatID)
	default:
		return b.say(ctx, ev.ChatID, msgHelp)
	}
}

func (b *Bot) handleText(ctx context.Context, ev Event) error {
	sess := b.sessions.Get(ev.ChatID)

	switch sess.Stage {
	case StageSelectingLocation:
		if utf8.RuneCountInString(ev.Text) > store.MaxLocationLength {
			return b.say(ctx, ev.ChatID, msgLocationTooLong)
		}
		b.sessions.Put(ev.ChatID, Session{Stage: StageSelectingDate, PendingLocation: ev.Text})
		now := b.now()
		return b.out.Send(ctx, ev.ChatID, Reply{
			Text:     msgAskDate,
			Keyboard: BuildCalendar(now.Year(), now.Month()),
		})
	case StageSelectingDate:
		return b.finalize(ctx, ev.ChatID, sess, ev.Text)
	default:
		return b.say(ctx, ev.ChatID, msgIdleHint)
	}
}

func (b *Bot) handleCallback(ctx context.Context, ev Event) error {
	if ev.CallbackID != "" {
		if err := b.out.AnswerCallback(ctx, ev.CallbackID, ""); err != nil {
			log.Printf("bot: answer callback for chat %d: %v", ev.ChatID, err)
		}
	}

	cb, err := ParseCallback(ev.CallbackData)
	if err != nil {
		log.Printf("bot: chat %d: %v", ev.ChatID, err)
		return nil
	}

	sess := b.sessions.Get(ev.ChatID)

	switch cb.Action {
	case ActionIgnore:
		return nil

	case ActionCalendarPrev, ActionCalendarNext:
		if sess.Stage != StageSelectingDate {
			return nil
		}
		delta := 1
		if cb.Action == ActionCalendarPrev {
			delta = -1
		}
		year, month := ShiftMonth(cb.Year, cb.Month, delta)
		return b.out.EditKeyboard(ctx, ev.ChatID, ev.MessageID, BuildCalendar(year, month))

	case ActionCalendarDay:
		if sess.Stage != StageSelectingDate {
			return nil
		}
		if err := b.out.EditKeyboard(ctx, ev.ChatID, ev.MessageID, nil); err != nil {
			log.Printf("bot: remove calendar for chat %d: %v", ev.ChatID, err)
		}
		return b.finalize(ctx, ev.ChatID, sess, FormatDate(cb.Year, cb.Month, cb.Day))

	case ActionMenuAdd:
		return b.startDialog(ctx, ev.ChatID)
	}

	// The remaining actions belong to the menu, which is only usable outside a dialog.
	if sess.Stage != StageIdle {
		return b.say(ctx, ev.ChatID, msgFinishFirst)
	}

	switch cb.Action {
	case ActionMenuView:
		return b.listSubscriptions(ctx, ev.ChatID, ActionView, msgPickToView)
	case ActionMenuDelete:
		return b.listSubscriptions(ctx, ev.ChatID, ActionDelete, msgPickToDelete)
	case ActionView:
		return b.viewSubscription(ctx, ev.ChatID, cb)
	case ActionDelete:
		return b.deleteSubscription(ctx, ev.ChatID, cb)
	}
	return nil
}

func (b *Bot) startDialog(ctx context.Context, chatID int64) error {
	b.sessions.Put(chatID, Session{Stage: StageSelectingLocation})
	return b.say(ctx, chatID, msgAskLocation)
}

// finalize validates the date, fetches the forecast and stores the
// subscription. Only an invalid date keeps the dialog open.
func (b *Bot) finalize(ctx context.Context, chatID int64, sess Session, dateText string) error {
	date, ok := ParseDate(dateText)
	if !ok {
		return b.say(ctx, chatID, msgInvalidDate)
	}

	location := sess.PendingLocation
	forecast, err := b.forecasts.ForecastText(ctx, location)
	if err != nil {
		log.Printf("ERROR: bot: failed to get weather for chat %d %q: %v", chatID, location, err)
		b.sessions.Delete(chatID)
		return b.say(ctx, chatID, msgFetchFailed)
	}

	err = b.store.UpsertSubscription(ctx, &store.Subscription{
		ChatID:   chatID,
		Location: location,
		Date:     date,
		Forecast: forecast,
	})
	b.sessions.Delete(chatID)
	if err != nil {
		log.Printf("ERROR: bot: failed to save subscription for chat %d: %v", chatID, err)
		return b.say(ctx, chatID, msgSaveFailed)
	}

	if err := b.say(ctx, chatID, confirmationText(location, date, forecast)); err != nil {
		return err
	}
	if err := b.sendMenu(ctx, chatID); err != nil {
		return err
	}

	if b.trigger != nil {
		b.trigger.TriggerNow()
	}
	return nil
}

func (b *Bot) sendMenu(ctx context.Context, chatID int64) error {
	return b.out.Send(ctx, chatID, Reply{
		Text: msgMenu,
		Keyboard: Keyboard{{
			{Text: "Add", Data: Callback{Action: ActionMenuAdd}.Encode()},
			{Text: "View", Data: Callback{Action: ActionMenuView}.Encode()},
			{Text: "Delete", Data: Callback{Action: ActionMenuDelete}.Encode()},
		}},
	})
}

func (b *Bot) listSubscriptions(ctx context.Context, chatID int64, action CallbackAction, prompt string) error {
	subs, err := b.store.ListChatSubscriptions(ctx, chatID)
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		return b.say(ctx, chatID, msgNoSubscriptions)
	}

	kb := make(Keyboard, 0, len(subs))
	for _, s := range subs {
		kb = append(kb, []Button{{
			Text: subscriptionLabel(s.Location, s.Date),
			Data: Callback{Action: action, Date: s.Date, LocationRef: LocationRef(s.Location)}.Encode(),
		}})
	}
	return b.out.Send(ctx, chatID, Reply{Text: prompt, Keyboard: kb})
}

func (b *Bot) viewSubscription(ctx context.Context, chatID int64, cb Callback) error {
	sub, err := b.resolve(ctx, chatID, cb)
	if errors.Is(err, store.ErrNotFound) {
		return b.say(ctx, chatID, msgNotFound)
	}
	if err != nil {
		return err
	}

	// Always a live lookup; the stored text is what the reconciler compares against.
	forecast, err := b.forecasts.ForecastText(ctx, sub.Location)
	if err != nil {
		log.Printf("ERROR: bot: failed to get weather for chat %d %q: %v", chatID, sub.Location, err)
		return b.say(ctx, chatID, msgFetchFailed)
	}
	return b.say(ctx, chatID, liveForecastText(sub.Location, sub.Date, forecast))
}

func (b *Bot) deleteSubscription(ctx context.Context, chatID int64, cb Callback) error {
	sub, err := b.resolve(ctx, chatID, cb)
	if errors.Is(err, store.ErrNotFound) {
		return b.say(ctx, chatID, msgNotFound)
	}
	if err != nil {
		return err
	}

	if err := b.store.DeleteSubscription(ctx, sub.Key()); err != nil {
		return err
	}
	return b.say(ctx, chatID, deletedText(sub.Location, sub.Date))
}

// resolve maps a view/delete payload back to one of the chat's subscriptions.
func (b *Bot) resolve(ctx context.Context, chatID int64, cb Callback) (*store.Subscription, error) {
	subs, err := b.store.ListSubscriptions(ctx, &store.FindSubscription{ChatID: &chatID, Date: &cb.Date})
	if err != nil {
		return nil, err
	}
	for _, s := range subs {
		if LocationRef(s.Location) == cb.LocationRef {
			return s, nil
		}
	}
	return nil, store.ErrNotFound
}

func (b *Bot) say(ctx context.Context, chatID int64, text string) error {
	return b.out.Send(ctx, chatID, Reply{Text: text})
}

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDate accepts exactly YYYY-MM-DD naming a real calendar day, ignoring
// surrounding whitespace, and returns it normalized.
func ParseDate(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !datePattern.MatchString(text) {
		return "", false
	}
	if _, err := time.Parse(time.DateOnly, text); err != nil {
		return "", false
	}
	return text, true
}
