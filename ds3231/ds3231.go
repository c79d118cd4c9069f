// Package ds3231 implements a driver for the DS3231 Real-Time Clock (RTC),
// providing read-write of the calendar and time registers, the oscillator stop
// flag and the temperature sensor. Alarms, the square-wave output and aging
// offset calibration remain unimplemented.
//
// The registers hold a year offset of 0-99 from 2000; all conversions go
// through package rtclib and share its 2000-2099 range.
//
// Datasheet: https://datasheets.maximintegrated.com/en/ds/DS3231.pdf
package ds3231

import (
	"errors"
	"fmt"

	"i2cperiph"
	"i2cperiph/rtclib"
)

var (
	ErrDeviceNotPresent = errors.New("ds3231: device not present")
	// ErrTimeInvalid is advisory: the oscillator stopped at some point, so
	// the time registers can't be trusted until the time is set again.
	ErrTimeInvalid = errors.New("ds3231: oscillator stopped, time is not valid")
)

type Device struct {
	bus     *i2cperiph.Bus
	Address uint16
}

func New(bus *i2cperiph.Bus) Device {
	return Device{
		bus:     bus,
		Address: Address,
	}
}

// IsPresent reports whether the device acknowledges its address.
func (d *Device) IsPresent() bool {
	return d.bus.Probe(d.Address) == nil
}

func (d *Device) checkPresent() error {
	if err := d.bus.Probe(d.Address); err != nil {
		return fmt.Errorf("%w at 0x%02X: %v", ErrDeviceNotPresent, d.Address, err)
	}
	return nil
}

// IsTimeValid reads the oscillator stop flag. A set flag means the clock lost
// power (or was never started) since the time was last written.
func (d *Device) IsTimeValid() (bool, error) {
	if err := d.checkPresent(); err != nil {
		return false, err
	}
	status, err := d.readStatus()
	if err != nil {
		return false, err
	}
	return status&(1<<OSF) == 0, nil
}

// CheckTimeValid is like IsTimeValid but reports a stopped oscillator as
// ErrTimeInvalid.
func (d *Device) CheckTimeValid() error {
	valid, err := d.IsTimeValid()
	if err != nil {
		return err
	}
	if !valid {
		return ErrTimeInvalid
	}
	return nil
}

// ReadDateTime reads the time and date registers in a single transaction, so
// the result is coherent. The day of the week is read but ignored.
func (d *Device) ReadDateTime() (rtclib.DateTime, error) {
	if err := d.checkPresent(); err != nil {
		return rtclib.DateTime{}, err
	}
	buf := [7]byte{}
	err := d.bus.Tx(d.Address, []byte{Seconds}, buf[:])
	if err != nil {
		return rtclib.DateTime{}, fmt.Errorf("ds3231: read time: %w", err)
	}

	dt := rtclib.DateTime{
		Seconds: rtclib.BCDToBin(buf[0] & 0x7F),
		Minutes: rtclib.BCDToBin(buf[1] & 0x7F),
		Hours:   decodeHours(buf[2]),
		// buf[3] is the day of the week
		Day:        rtclib.BCDToBin(buf[4] & 0x3F),
		Month:      rtclib.BCDToBin(buf[5] & 0x1F),
		YearOffset: rtclib.BCDToBin(buf[6]),
	}
	if err := dt.Validate(); err != nil {
		return dt, fmt.Errorf("ds3231: registers hold %v: %w", buf, err)
	}
	return dt, nil
}

// WriteTime sets hours, minutes and seconds in one transaction and then clears
// the oscillator stop flag, marking the clock as valid.
func (d *Device) WriteTime(hours, minutes, seconds uint8) error {
	if hours > 23 || minutes > 59 || seconds > 59 {
		return fmt.Errorf("ds3231: %w: time %02d:%02d:%02d", rtclib.ErrInvalid, hours, minutes, seconds)
	}
	if err := d.checkPresent(); err != nil {
		return err
	}
	buf := []byte{
		Seconds,
		rtclib.BinToBCD(seconds),
		rtclib.BinToBCD(minutes),
		rtclib.BinToBCD(hours), // 24-hour mode
	}
	if err := d.bus.Tx(d.Address, buf, nil); err != nil {
		return fmt.Errorf("ds3231: write time: %w", err)
	}
	return d.clearOSF()
}

// WriteDate sets the calendar date. year is the offset from 2000. Note the
// argument order differs from the register order, which is date, month, year.
func (d *Device) WriteDate(month, day, year uint8) error {
	dt := rtclib.DateTime{YearOffset: year, Month: month, Day: day}
	if err := dt.Validate(); err != nil {
		return fmt.Errorf("ds3231: %w", err)
	}
	if err := d.checkPresent(); err != nil {
		return err
	}
	buf := []byte{
		Date,
		rtclib.BinToBCD(day),
		rtclib.BinToBCD(month), // century bit cleared
		rtclib.BinToBCD(year),
	}
	if err := d.bus.Tx(d.Address, buf, nil); err != nil {
		return fmt.Errorf("ds3231: write date: %w", err)
	}
	return nil
}

// WriteDateTime sets every time and date register, including the day of the
// week, in one transaction and then clears the oscillator stop flag.
func (d *Device) WriteDateTime(dt rtclib.DateTime) error {
	if err := dt.Validate(); err != nil {
		return fmt.Errorf("ds3231: %w", err)
	}
	if err := d.checkPresent(); err != nil {
		return err
	}
	buf := []byte{
		Seconds,
		rtclib.BinToBCD(dt.Seconds),
		rtclib.BinToBCD(dt.Minutes),
		rtclib.BinToBCD(dt.Hours),
		uint8(dt.Weekday()) + 1, // 1-7, Sunday first
		rtclib.BinToBCD(dt.Day),
		rtclib.BinToBCD(dt.Month),
		rtclib.BinToBCD(dt.YearOffset),
	}
	if err := d.bus.Tx(d.Address, buf, nil); err != nil {
		return fmt.Errorf("ds3231: write date/time: %w", err)
	}
	return d.clearOSF()
}

// Timestamp returns the current time as seconds since 1970-01-01. The device
// has no notion of time zone, so neither does the result.
func (d *Device) Timestamp() (uint32, error) {
	dt, err := d.ReadDateTime()
	if err != nil {
		return 0, err
	}
	return rtclib.Unixtime(dt), nil
}

// ReadTemperature returns the temperature in millicelsius (mC). The sensor
// has a resolution of 0.25 °C and is refreshed every 64 seconds.
func (d *Device) ReadTemperature() (int32, error) {
	if err := d.checkPresent(); err != nil {
		return 0, err
	}
	buf := [2]byte{}
	if err := d.bus.Tx(d.Address, []byte{Temperature}, buf[:]); err != nil {
		return 0, fmt.Errorf("ds3231: read temperature: %w", err)
	}
	return int32(int8(buf[0]))*1000 + int32(buf[1]>>6)*250, nil
}

func (d *Device) readStatus() (uint8, error) {
	buf := [1]byte{}
	if err := d.bus.Tx(d.Address, []byte{Status}, buf[:]); err != nil {
		return 0, fmt.Errorf("ds3231: read status: %w", err)
	}
	return buf[0], nil
}

// clearOSF clears the oscillator stop flag and leaves the alarm flags alone.
func (d *Device) clearOSF() error {
	status, err := d.readStatus()
	if err != nil {
		return err
	}
	status &^= 1 << OSF
	if err := d.bus.Tx(d.Address, []byte{Status, status}, nil); err != nil {
		return fmt.Errorf("ds3231: write status: %w", err)
	}
	return nil
}

// decodeHours handles both 24-hour mode and, for clocks set elsewhere,
// 12-hour mode.
func decodeHours(b uint8) uint8 {
	if b&hour12 == 0 {
		return rtclib.BCDToBin(b & 0x3F)
	}
	h := rtclib.BCDToBin(b & 0x1F)
	if h == 12 {
		h = 0
	}
	if b&hourPM != 0 {
		h += 12
	}
	return h
}
