package models

import "testing"

func TestParseCalendarDate(t *testing.T) {
	tests := []struct {
		input string
		want  CalendarDate
		err   bool
	}{
		{"2010-03-05", CalendarDate{2010, 3, 5}, false},
		{"2010-3-5", CalendarDate{2010, 3, 5}, false},
		{"  1990-04-24\n", CalendarDate{1990, 4, 24}, false},
		{"2023-02-31", CalendarDate{2023, 2, 31}, false},
		{"2000-13-01", CalendarDate{2000, 13, 1}, false},
		{"-1-01-01", CalendarDate{}, true},
		{"2010-03", CalendarDate{}, true},
		{"2010-03-05-01", CalendarDate{}, true},
		{"2010/03/05", CalendarDate{}, true},
		{"2010-03-xx", CalendarDate{}, true},
		{"", CalendarDate{}, true},
	}

	for _, tt := range tests {
		got, err := ParseCalendarDate(tt.input)
		if tt.err {
			if err == nil {
				t.Errorf("ParseCalendarDate(%q): expected error, got %v", tt.input, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseCalendarDate(%q): unexpected error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseCalendarDate(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

func TestCalendarDateString(t *testing.T) {
	tests := []struct {
		date CalendarDate
		want string
	}{
		{CalendarDate{2010, 3, 5}, "2010-03-05"},
		{CalendarDate{995, 12, 31}, "0995-12-31"},
		{CalendarDate{2000, 13, 1}, "2000-13-01"},
	}

	for _, tt := range tests {
		if got := tt.date.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.date, got, tt.want)
		}
	}
}

func TestCalendarDateBefore(t *testing.T) {
	launch := CalendarDate{1995, 6, 16}

	tests := []struct {
		date CalendarDate
		want bool
	}{
		{CalendarDate{1995, 6, 15}, true},
		{CalendarDate{1995, 6, 16}, false},
		{CalendarDate{1995, 5, 31}, true},
		{CalendarDate{1994, 12, 31}, true},
		{CalendarDate{1995, 7, 1}, false},
		{CalendarDate{2000, 1, 1}, false},
	}

	for _, tt := range tests {
		if got := tt.date.Before(launch); got != tt.want {
			t.Errorf("%v.Before(%v) = %v, want %v", tt.date, launch, got, tt.want)
		}
	}
}
