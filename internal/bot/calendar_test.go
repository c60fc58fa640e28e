package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShiftMonth(t *testing.T) {
	tests := []struct {
		year      int
		month     time.Month
		delta     int
		wantYear  int
		wantMonth time.Month
	}{
		{2024, time.January, -1, 2023, time.December},
		{2024, time.December, 1, 2025, time.January},
		{2024, time.June, 1, 2024, time.July},
		{2024, time.June, -1, 2024, time.May},
	}
	for _, tt := range tests {
		y, m := ShiftMonth(tt.year, tt.month, tt.delta)
		assert.Equal(t, tt.wantYear, y)
		assert.Equal(t, tt.wantMonth, m)
	}
}

func TestBuildCalendarLeapFebruary(t *testing.T) {
	kb := BuildCalendar(2024, time.February)

	// header + weekday labels + 5 weeks (Feb 1 2024 is a Thursday)
	require.Len(t, kb, 7)
	assert.Equal(t, "February 2024", kb[0][1].Text)
	assert.Equal(t, "cal:prev:2024:2", kb[0][0].Data)
	assert.Equal(t, "cal:next:2024:2", kb[0][2].Data)
	assert.Equal(t, "Mo", kb[1][0].Text)

	for _, row := range kb[2:] {
		assert.Len(t, row, 7)
	}

	// Thursday column holds the 1st.
	assert.Equal(t, " ", kb[2][2].Text)
	assert.Equal(t, "1", kb[2][3].Text)

	var days []string
	for _, row := range kb[2:] {
		for _, b := range row {
			cb, err := ParseCallback(b.Data)
			require.NoError(t, err)
			if cb.Action == ActionCalendarDay {
				days = append(days, FormatDate(cb.Year, cb.Month, cb.Day))
			}
		}
	}
	require.Len(t, days, 29)
	assert.Equal(t, "2024-02-01", days[0])
	assert.Equal(t, "2024-02-29", days[28])
	for _, d := range days {
		_, ok := ParseDate(d)
		assert.True(t, ok, d)
	}
}

func TestBuildCalendarStartsOnMonday(t *testing.T) {
	// January 1st 2024 is a Monday: no leading blanks.
	kb := BuildCalendar(2024, time.January)
	assert.Equal(t, "1", kb[2][0].Text)
	assert.Equal(t, 31, DaysIn(2024, time.January))
	assert.Equal(t, 28, DaysIn(2023, time.February))
}

func TestParseCallback(t *testing.T) {
	cases := []Callback{
		{Action: ActionIgnore},
		{Action: ActionCalendarPrev, Year: 2024, Month: time.January},
		{Action: ActionCalendarNext, Year: 2024, Month: time.December},
		{Action: ActionCalendarDay, Year: 2030, Month: time.March, Day: 9},
		{Action: ActionMenuAdd},
		{Action: ActionMenuView},
		{Action: ActionMenuDelete},
		{Action: ActionView, Date: "2030-01-01", LocationRef: LocationRef("Paris")},
		{Action: ActionDelete, Date: "2030-01-01", LocationRef: LocationRef("Санкт-Петербург")},
	}
	for _, want := range cases {
		data := want.Encode()
		assert.LessOrEqual(t, len(data), 64, data)

		got, err := ParseCallback(data)
		require.NoError(t, err, data)
		assert.Equal(t, want, got)
	}
}

func TestParseCallbackRejectsGarbage(t *testing.T) {
	for _, data := range []string{"", "cal", "cal:prev:2024", "cal:prev:2024:13", "cal:day:x:1:1", "menu:", "menu:list", "view:2030-01-01", "del::abc", "other"} {
		_, err := ParseCallback(data)
		assert.ErrorIs(t, err, errBadCallback, data)
	}
}

func TestLocationRefIsStable(t *testing.T) {
	assert.Equal(t, LocationRef("Paris"), LocationRef("Paris"))
	assert.NotEqual(t, LocationRef("Paris"), LocationRef("paris"))
	assert.Len(t, LocationRef("Paris"), 12)
}
