// Package rtclib converts between the packed BCD registers of a calendar
// clock, a broken-down DateTime and Unix epoch seconds.
//
// The calendar math only covers 2000 to 2099. Inside that range every year
// divisible by 4 is a leap year, so no century rule is applied; anything
// outside it is rejected rather than miscalculated.
package rtclib

import (
	"errors"
	"fmt"
	"time"
)

const (
	SecondsPerDay = 86400
	// SecondsFrom1970To2000 is the Unix time of 2000-01-01T00:00:00.
	SecondsFrom1970To2000 = 946684800

	// MaxUnix is the Unix time of 2099-12-31T23:59:59.
	MaxUnix = SecondsFrom1970To2000 + 36525*SecondsPerDay - 1
)

var (
	ErrOutOfRange = errors.New("time outside 2000-01-01 to 2099-12-31")
	ErrInvalid    = errors.New("invalid date/time")
)

// daysInMonth holds January to November. December is never needed since it
// is always the last month counted.
var daysInMonth = [11]uint8{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30}

// DateTime is a calendar date and time of day in the range 2000-2099. It
// carries no time zone; the clock device and this package are zone-agnostic.
type DateTime struct {
	YearOffset uint8 // years since 2000, 0-99
	Month      uint8 // 1-12
	Day        uint8 // 1-31, day of the month
	Hours      uint8 // 0-23
	Minutes    uint8 // 0-59
	Seconds    uint8 // 0-59
}

// BCDToBin converts a packed BCD byte to binary.
func BCDToBin(b uint8) uint8 {
	return (b>>4)*10 + b&0x0F
}

// BinToBCD converts a binary value 0-99 to packed BCD.
func BinToBCD(v uint8) uint8 {
	return (v/10)<<4 | v%10
}

func isLeap(yOff uint8) bool {
	return yOff%4 == 0
}

// DaysInMonth returns the length of month (1-12) in year 2000+yOff, or 0 if
// month is out of range.
func DaysInMonth(yOff, month uint8) uint8 {
	switch {
	case month < 1 || month > 12:
		return 0
	case month == 12:
		return 31
	case month == 2 && isLeap(yOff):
		return 29
	default:
		return daysInMonth[month-1]
	}
}

// Date2Days returns the number of days since 2000-01-01 for the given date.
// The date is not validated; months past 12 count as December.
func Date2Days(yOff, month, day uint8) uint16 {
	days := uint16(day)
	for i := uint8(1); i < month && i <= uint8(len(daysInMonth)); i++ {
		days += uint16(daysInMonth[i-1])
	}
	if month > 2 && isLeap(yOff) {
		days++
	}
	y := uint16(yOff)
	return days + 365*y + (y+3)/4 - 1
}

// Time2Ulong folds a day count and a time of day into seconds.
func Time2Ulong(days uint16, h, m, s uint8) uint32 {
	return ((uint32(days)*24+uint32(h))*60+uint32(m))*60 + uint32(s)
}

// Unixtime returns the seconds since 1970-01-01 for dt.
func Unixtime(dt DateTime) uint32 {
	days := Date2Days(dt.YearOffset, dt.Month, dt.Day)
	return Time2Ulong(days, dt.Hours, dt.Minutes, dt.Seconds) + SecondsFrom1970To2000
}

// UnixToDateTime is the inverse of Unixtime.
func UnixToDateTime(t uint32) (DateTime, error) {
	if t < SecondsFrom1970To2000 || t > MaxUnix {
		return DateTime{}, fmt.Errorf("%w: %d", ErrOutOfRange, t)
	}
	t -= SecondsFrom1970To2000

	var dt DateTime
	dt.Seconds = uint8(t % 60)
	t /= 60
	dt.Minutes = uint8(t % 60)
	t /= 60
	dt.Hours = uint8(t % 24)
	days := uint16(t / 24)

	var leap uint16
	for dt.YearOffset = 0; ; dt.YearOffset++ {
		leap = 0
		if isLeap(dt.YearOffset) {
			leap = 1
		}
		if days < 365+leap {
			break
		}
		days -= 365 + leap
	}
	for dt.Month = 1; dt.Month < 12; dt.Month++ {
		dim := uint16(daysInMonth[dt.Month-1])
		if leap == 1 && dt.Month == 2 {
			dim++
		}
		if days < dim {
			break
		}
		days -= dim
	}
	dt.Day = uint8(days) + 1
	return dt, nil
}

// Validate checks every field and the day against the month length.
func (dt DateTime) Validate() error {
	switch {
	case dt.YearOffset > 99:
		return fmt.Errorf("%w: year offset %d", ErrInvalid, dt.YearOffset)
	case dt.Month < 1 || dt.Month > 12:
		return fmt.Errorf("%w: month %d", ErrInvalid, dt.Month)
	case dt.Day < 1 || dt.Day > DaysInMonth(dt.YearOffset, dt.Month):
		return fmt.Errorf("%w: day %d of month %d", ErrInvalid, dt.Day, dt.Month)
	case dt.Hours > 23:
		return fmt.Errorf("%w: hours %d", ErrInvalid, dt.Hours)
	case dt.Minutes > 59:
		return fmt.Errorf("%w: minutes %d", ErrInvalid, dt.Minutes)
	case dt.Seconds > 59:
		return fmt.Errorf("%w: seconds %d", ErrInvalid, dt.Seconds)
	}
	return nil
}

// Weekday returns the day of the week, 2000-01-01 being a Saturday.
func (dt DateTime) Weekday() time.Weekday {
	return time.Weekday((Date2Days(dt.YearOffset, dt.Month, dt.Day) + 6) % 7)
}

// Time returns dt as a time.Time in UTC.
func (dt DateTime) Time() time.Time {
	return time.Date(2000+int(dt.YearOffset), time.Month(dt.Month), int(dt.Day),
		int(dt.Hours), int(dt.Minutes), int(dt.Seconds), 0, time.UTC)
}

// FromTime converts t, taken as is without changing its location, to a
// DateTime. Sub-second precision is dropped.
func FromTime(t time.Time) (DateTime, error) {
	if t.Year() < 2000 || t.Year() > 2099 {
		return DateTime{}, fmt.Errorf("%w: year %d", ErrOutOfRange, t.Year())
	}
	return DateTime{
		YearOffset: uint8(t.Year() - 2000),
		Month:      uint8(t.Month()),
		Day:        uint8(t.Day()),
		Hours:      uint8(t.Hour()),
		Minutes:    uint8(t.Minute()),
		Seconds:    uint8(t.Second()),
	}, nil
}

func (dt DateTime) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d",
		2000+int(dt.YearOffset), dt.Month, dt.Day, dt.Hours, dt.Minutes, dt.Seconds)
}
