package i2cperiph

import (
	"errors"
	"fmt"
	"strconv"
)

// Status classifies a failed transfer the same way the STM32 HAL reports it.
type Status int

const (
	StatusOK Status = iota
	StatusError
	StatusBusy
	StatusTimeout
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "HAL_OK"
	case StatusError:
		return "HAL_ERROR"
	case StatusBusy:
		return "HAL_BUSY"
	case StatusTimeout:
		return "HAL_TIMEOUT"
	default:
		return strconv.Itoa(int(s))
	}
}

// StatusOf maps an error returned by an I2C implementation to a Status. An
// error that carries its own status (by implementing Status() Status) is
// trusted as is.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}
	var s interface{ Status() Status }
	if errors.As(err, &s) {
		return s.Status()
	}
	switch {
	case errors.Is(err, ErrTimeout):
		return StatusTimeout
	case errors.Is(err, ErrBusy):
		return StatusBusy
	default:
		return StatusError
	}
}

// Op is the half of a transaction that failed.
type Op uint8

const (
	OpWrite Op = iota
	OpRead
	OpProbe
)

func (o Op) String() string {
	switch o {
	case OpWrite:
		return "transmit"
	case OpRead:
		return "receive"
	case OpProbe:
		return "probe"
	default:
		return "op(" + strconv.Itoa(int(o)) + ")"
	}
}

// BusError is returned by Bus when the underlying I2C implementation fails.
type BusError struct {
	Op     Op
	Addr   uint16
	Status Status
	Err    error
}

func (e *BusError) Error() string {
	return fmt.Sprintf("i2c %s error at 0x%02X: %s: %v", e.Op, e.Addr, e.Status, e.Err)
}

func (e *BusError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrBusWrite) and errors.Is(err, ErrBusRead) match
// the corresponding half of a failed transaction.
func (e *BusError) Is(target error) bool {
	switch target {
	case ErrBusWrite:
		return e.Op == OpWrite
	case ErrBusRead:
		return e.Op == OpRead
	}
	return false
}
