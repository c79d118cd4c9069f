package tester

import (
	"errors"
	"fmt"
)

var ErrShortAddress = errors.New("tester: eeprom write without 2-byte address")

// EEPROM models a 24-series EEPROM with 16-bit addressing. Like the real
// part, a page write that runs past the end of its page rolls over to the
// start of the same page, and sequential reads wrap at the end of the array.
type EEPROM struct {
	addr     uint16
	pageSize int
	ptr      int
	busy     int

	Memory []byte

	// BusyTransfers is the number of transfers NACKed after each page write,
	// modelling the internal write cycle.
	BusyTransfers int
}

func NewEEPROM(addr uint16, size, pageSize int) *EEPROM {
	return &EEPROM{
		addr:     addr,
		pageSize: pageSize,
		Memory:   make([]byte, size),
	}
}

func (e *EEPROM) Addr() uint16 {
	return e.addr
}

func (e *EEPROM) Tx(w, r []byte) error {
	if e.busy > 0 {
		e.busy--
		return fmt.Errorf("%w: eeprom write cycle in progress", ErrNack)
	}
	if len(w) > 0 {
		if len(w) < 2 {
			return ErrShortAddress
		}
		e.ptr = (int(w[0])<<8 | int(w[1])) % len(e.Memory)
		if data := w[2:]; len(data) > 0 {
			base := e.ptr &^ (e.pageSize - 1)
			off := e.ptr - base
			for _, b := range data {
				e.Memory[base+off] = b
				off = (off + 1) % e.pageSize
			}
			e.ptr = base + off
			e.busy = e.BusyTransfers
		}
	}
	for i := range r {
		r[i] = e.Memory[e.ptr]
		e.ptr = (e.ptr + 1) % len(e.Memory)
	}
	return nil
}
