package bot

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// CallbackAction is the decoded intent of a button press.
type CallbackAction int

const (
	ActionIgnore CallbackAction = iota
	ActionCalendarPrev
	ActionCalendarNext
	ActionCalendarDay
	ActionMenuAdd
	ActionMenuView
	ActionMenuDelete
	ActionView
	ActionDelete
)

var errBadCallback = errors.New("malformed callback data")

// Callback is a parsed button payload. Which fields are set depends on Action:
// calendar actions carry Year/Month (and Day), view/delete carry Date and
// LocationRef.
type Callback struct {
	Action CallbackAction

	Year  int
	Month time.Month
	Day   int

	Date        string
	LocationRef string
}

// Encode renders the callback as button data. Every encoding fits in the
// 64 bytes Telegram allows.
func (c Callback) Encode() string {
	switch c.Action {
	case ActionCalendarPrev:
		return fmt.Sprintf("cal:prev:%d:%d", c.Year, int(c.Month))
	case ActionCalendarNext:
		return fmt.Sprintf("cal:next:%d:%d", c.Year, int(c.Month))
	case ActionCalendarDay:
		return fmt.Sprintf("cal:day:%d:%d:%d", c.Year, int(c.Month), c.Day)
	case ActionMenuAdd:
		return "menu:add"
	case ActionMenuView:
		return "menu:view"
	case ActionMenuDelete:
		return "menu:delete"
	case ActionView:
		return "view:" + c.Date + ":" + c.LocationRef
	case ActionDelete:
		return "del:" + c.Date + ":" + c.LocationRef
	default:
		return "cal:ignore"
	}
}

// ParseCallback decodes button data produced by Encode.
func ParseCallback(data string) (Callback, error) {
	parts := strings.Split(data, ":")
	switch parts[0] {
	case "cal":
		return parseCalendarCallback(parts[1:])
	case "menu":
		if len(parts) != 2 {
			return Callback{}, fmt.Errorf("%w: %q", errBadCallback, data)
		}
		switch parts[1] {
		case "add":
			return Callback{Action: ActionMenuAdd}, nil
		case "view":
			return Callback{Action: ActionMenuView}, nil
		case "delete":
			return Callback{Action: ActionMenuDelete}, nil
		}
	case "view", "del":
		if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
			return Callback{}, fmt.Errorf("%w: %q", errBadCallback, data)
		}
		action := ActionView
		if parts[0] == "del" {
			action = ActionDelete
		}
		return Callback{Action: action, Date: parts[1], LocationRef: parts[2]}, nil
	}
	return Callback{}, fmt.Errorf("%w: %q", errBadCallback, data)
}

func parseCalendarCallback(parts []string) (Callback, error) {
	if len(parts) == 1 && parts[0] == "ignore" {
		return Callback{Action: ActionIgnore}, nil
	}

	var action CallbackAction
	want := 3
	switch {
	case len(parts) > 0 && parts[0] == "prev":
		action = ActionCalendarPrev
	case len(parts) > 0 && parts[0] == "next":
		action = ActionCalendarNext
	case len(parts) > 0 && parts[0] == "day":
		action = ActionCalendarDay
		want = 4
	default:
		return Callback{}, fmt.Errorf("%w: calendar %q", errBadCallback, strings.Join(parts, ":"))
	}
	if len(parts) != want {
		return Callback{}, fmt.Errorf("%w: calendar %q", errBadCallback, strings.Join(parts, ":"))
	}

	nums := make([]int, 0, want-1)
	for _, p := range parts[1:] {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Callback{}, fmt.Errorf("%w: %v", errBadCallback, err)
		}
		nums = append(nums, n)
	}
	if nums[1] < 1 || nums[1] > 12 {
		return Callback{}, fmt.Errorf("%w: month %d", errBadCallback, nums[1])
	}

	cb := Callback{Action: action, Year: nums[0], Month: time.Month(nums[1])}
	if action == ActionCalendarDay {
		cb.Day = nums[2]
	}
	return cb, nil
}

// LocationRef is a short stable reference to a location, resolved against
// the chat's own subscriptions when a view/delete button is pressed.
func LocationRef(location string) string {
	sum := sha256.Sum256([]byte(location))
	return hex.EncodeToString(sum[:6])
}
