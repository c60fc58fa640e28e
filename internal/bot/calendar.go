package bot

import (
	"fmt"
	"strconv"
	"time"
)

var weekdayLabels = []string{"Mo", "Tu", "We", "Th", "Fr", "Sa", "Su"}

// ShiftMonth moves (year, month) by delta months, rolling the year over at
// the 1/12 boundaries.
func ShiftMonth(year int, month time.Month, delta int) (int, time.Month) {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	return t.Year(), t.Month()
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FormatDate renders a calendar day as YYYY-MM-DD.
func FormatDate(year int, month time.Month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, int(month), day)
}

// BuildCalendar renders a month grid: a navigation header, weekday labels and
// one row per week starting on Monday. Only real days of the month are
// selectable.
func BuildCalendar(year int, month time.Month) Keyboard {
	ignore := Callback{Action: ActionIgnore}.Encode()

	kb := Keyboard{
		{
			{Text: "<", Data: Callback{Action: ActionCalendarPrev, Year: year, Month: month}.Encode()},
			{Text: fmt.Sprintf("%s %d", month, year), Data: ignore},
			{Text: ">", Data: Callback{Action: ActionCalendarNext, Year: year, Month: month}.Encode()},
		},
	}

	labels := make([]Button, 0, len(weekdayLabels))
	for _, l := range weekdayLabels {
		labels = append(labels, Button{Text: l, Data: ignore})
	}
	kb = append(kb, labels)

	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(first.Weekday()) + 6) % 7 // Monday = 0
	days := DaysIn(year, month)

	row := make([]Button, 0, 7)
	for i := 0; i < offset; i++ {
		row = append(row, Button{Text: " ", Data: ignore})
	}
	for day := 1; day <= days; day++ {
		row = append(row, Button{
			Text: strconv.Itoa(day),
			Data: Callback{Action: ActionCalendarDay, Year: year, Month: month, Day: day}.Encode(),
		})
		if len(row) == 7 {
			kb = append(kb, row)
			row = make([]Button, 0, 7)
		}
	}
	if len(row) > 0 {
		for len(row) < 7 {
			row = append(row, Button{Text: " ", Data: ignore})
		}
		kb = append(kb, row)
	}
	return kb
}
