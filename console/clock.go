package console

import (
	"errors"
	"fmt"

	"i2cperiph/ds3231"
	"i2cperiph/rtclib"
)

// clockRequest is what a time or date command line asks for: either just a
// look at the clock, or new values to set first.
type clockRequest interface {
	isClockRequest()
}

type clockQuery struct{}

// clockUpdate holds three fields in command line order: h m s for time,
// mm dd yy for date.
type clockUpdate struct {
	fields [3]uint8
}

func (clockQuery) isClockRequest()  {}
func (clockUpdate) isClockRequest() {}

func parseClockRequest(args Args, usage string) (clockRequest, error) {
	switch len(args) {
	case 1:
		return clockQuery{}, nil
	case 4:
		var u clockUpdate
		for i := range u.fields {
			v, err := args.Uint8(i + 1)
			if err != nil {
				return nil, err
			}
			u.fields[i] = v
		}
		return u, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUsage, usage)
	}
}

// runClock applies an update when there is one and then always reads the
// clock back and shows it.
func runClock(sh *Shell, req clockRequest, apply func(u clockUpdate) error, show func() error) error {
	if u, ok := req.(clockUpdate); ok {
		if err := apply(u); err != nil {
			return err
		}
	}
	if err := show(); err != nil {
		return err
	}
	warnIfInvalid(sh)
	return nil
}

func warnIfInvalid(sh *Shell) {
	if err := sh.clock.CheckTimeValid(); errors.Is(err, ds3231.ErrTimeInvalid) {
		sh.printf("warning: %v\n", err)
	}
}

func clockTime(sh *Shell, args Args) error {
	req, err := parseClockRequest(args, "time [hrs min sec]")
	if err != nil {
		return err
	}
	return runClock(sh, req,
		func(u clockUpdate) error {
			return sh.clock.WriteTime(u.fields[0], u.fields[1], u.fields[2])
		},
		func() error {
			dt, err := sh.clock.ReadDateTime()
			if err != nil {
				return err
			}
			sh.printf("%02d:%02d:%02d\n", dt.Hours, dt.Minutes, dt.Seconds)
			return nil
		})
}

func clockDate(sh *Shell, args Args) error {
	req, err := parseClockRequest(args, "date [mm dd yy]")
	if err != nil {
		return err
	}
	return runClock(sh, req,
		func(u clockUpdate) error {
			return sh.clock.WriteDate(u.fields[0], u.fields[1], u.fields[2])
		},
		func() error {
			dt, err := sh.clock.ReadDateTime()
			if err != nil {
				return err
			}
			sh.printf("%02d/%02d/%02d\n", dt.Month, dt.Day, dt.YearOffset)
			return nil
		})
}

func clockTimestamp(sh *Shell, _ Args) error {
	ts, err := sh.clock.Timestamp()
	if err != nil {
		return err
	}
	dt, err := rtclib.UnixToDateTime(ts)
	if err != nil {
		return err
	}
	sh.printf("%d (%v)\n", ts, dt)
	warnIfInvalid(sh)
	return nil
}

func clockTemperature(sh *Shell, _ Args) error {
	mc, err := sh.clock.ReadTemperature()
	if err != nil {
		return err
	}
	sign := ""
	if mc < 0 {
		sign = "-"
		mc = -mc
	}
	sh.printf("%s%d.%02d C\n", sign, mc/1000, mc%1000/10)
	return nil
}
