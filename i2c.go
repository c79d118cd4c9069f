// Package i2cperiph provides the shared I2C transaction layer used by the
// peripheral drivers in this module (the AT24Cxx EEPROM in at24cx and the
// DS3231 RTC in ds3231).
//
// Drivers never talk to the bus directly. They go through a *Bus, which
// validates the 7-bit target address and splits a combined request into a
// write-only transfer followed by a read-only transfer, each bounded by the
// configured timeout. No retries are done here: every failure is returned to
// the caller as soon as it happens.
package i2cperiph

import (
	"errors"
	"fmt"
	"time"

	"tinygo.org/x/drivers"
)

// TimeoutTxer is implemented by buses that accept a per-transfer timeout.
// When the underlying bus implements it, Bus passes its configured timeout
// through instead of relying on the bus default.
type TimeoutTxer interface {
	TxTimeout(addr uint16, w, r []byte, timeout time.Duration) error
}

const (
	// AddressMin and AddressMax bound the usable 7-bit address space. The
	// addresses below and above are reserved by the I2C standard.
	AddressMin = 0x03
	AddressMax = 0x77

	// DefaultTimeout is more than enough for a 256 byte transfer at 100 kHz.
	DefaultTimeout = 25 * time.Millisecond
)

var (
	ErrAddressOutOfRange = errors.New("i2c address out of range")
	ErrBusWrite          = errors.New("i2c transmit error")
	ErrBusRead           = errors.New("i2c receive error")

	// ErrBusy and ErrTimeout may be returned by I2C implementations so that
	// StatusOf can classify the failure.
	ErrBusy    = errors.New("i2c bus busy")
	ErrTimeout = errors.New("i2c timeout")
)

type BusConfig struct {
	// Timeout applies to each transfer separately. Defaults to DefaultTimeout.
	Timeout time.Duration
}

// Bus is the transaction layer shared by all drivers. It holds no state
// besides its configuration, and it is not safe for concurrent use: callers
// must serialize transactions themselves.
type Bus struct {
	i2c     drivers.I2C
	timeout time.Duration
}

// NewBus wraps a preconfigured I2C bus, usually a *machine.I2C.
func NewBus(i2c drivers.I2C) *Bus {
	return &Bus{
		i2c:     i2c,
		timeout: DefaultTimeout,
	}
}

func (b *Bus) Configure(c BusConfig) {
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	b.timeout = c.Timeout
}

// Timeout returns the per-transfer timeout.
func (b *Bus) Timeout() time.Duration {
	return b.timeout
}

// ValidateAddress reports whether addr is inside [AddressMin, AddressMax].
func ValidateAddress(addr uint16) error {
	if addr < AddressMin || addr > AddressMax {
		return fmt.Errorf("%w: 0x%02X, expect 0x%02X to 0x%02X", ErrAddressOutOfRange, addr, AddressMin, AddressMax)
	}
	return nil
}

// Tx writes all of w to the device at addr, then reads len(r) bytes back
// into r. Either part is skipped when its buffer is empty, so a request with
// both empty succeeds without touching the bus. The buffers are only used for
// the duration of the call.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if err := ValidateAddress(addr); err != nil {
		return err
	}
	if len(w) > 0 {
		if err := b.tx(addr, w, nil); err != nil {
			return &BusError{Op: OpWrite, Addr: addr, Status: StatusOf(err), Err: err}
		}
	}
	if len(r) > 0 {
		if err := b.tx(addr, nil, r); err != nil {
			return &BusError{Op: OpRead, Addr: addr, Status: StatusOf(err), Err: err}
		}
	}
	return nil
}

// Probe issues a zero length transfer to addr and reports whether the device
// acknowledged it.
func (b *Bus) Probe(addr uint16) error {
	if err := ValidateAddress(addr); err != nil {
		return err
	}
	if err := b.tx(addr, nil, nil); err != nil {
		return &BusError{Op: OpProbe, Addr: addr, Status: StatusOf(err), Err: err}
	}
	return nil
}

// Scan probes every valid address in ascending order and returns the ones
// that were acknowledged.
func (b *Bus) Scan() []uint16 {
	var found []uint16
	for addr := uint16(AddressMin); addr <= AddressMax; addr++ {
		if b.Probe(addr) == nil {
			found = append(found, addr)
		}
	}
	return found
}

func (b *Bus) tx(addr uint16, w, r []byte) error {
	if t, ok := b.i2c.(TimeoutTxer); ok {
		return t.TxTimeout(addr, w, r, b.timeout)
	}
	return b.i2c.Tx(addr, w, r)
}
