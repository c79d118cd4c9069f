// Package tester contains fake I2C buses and devices for testing the drivers
// in this module without hardware. It builds on tinygo.org/x/drivers/tester
// where the upstream fakes fit.
package tester

import (
	"errors"
	"fmt"
)

// ErrNack is returned when no device acknowledges a transfer.
var ErrNack = errors.New("tester: no acknowledge")

// I2CDevice is a fake device attached to an I2CBus.
type I2CDevice interface {
	Addr() uint16
	Tx(w, r []byte) error
}

// Transfer records a single call to I2CBus.Tx.
type Transfer struct {
	Addr  uint16
	Write []byte
	Read  int
}

// I2CBus routes transfers to the device at the matching address and keeps a
// log of every transfer it has seen. Unlike the upstream tester.I2CBus, a
// transfer to an empty address is NACKed instead of failing the test, so
// presence checks and bus scans can be exercised.
type I2CBus struct {
	devices   []I2CDevice
	Transfers []Transfer

	// Fail is consulted before every transfer is routed. A non-nil return
	// value fails the transfer without reaching the device.
	Fail func(addr uint16, w, r []byte) error
}

func NewI2CBus() *I2CBus {
	return &I2CBus{}
}

func (b *I2CBus) AddDevice(d I2CDevice) {
	b.devices = append(b.devices, d)
}

// Tx implements drivers.I2C.
func (b *I2CBus) Tx(addr uint16, w, r []byte) error {
	b.Transfers = append(b.Transfers, Transfer{
		Addr:  addr,
		Write: append([]byte(nil), w...),
		Read:  len(r),
	})
	if b.Fail != nil {
		if err := b.Fail(addr, w, r); err != nil {
			return err
		}
	}
	for _, d := range b.devices {
		if d.Addr() == addr {
			return d.Tx(w, r)
		}
	}
	return fmt.Errorf("%w at 0x%02X", ErrNack, addr)
}

// ReadRegister implements drivers.I2C.
func (b *I2CBus) ReadRegister(addr uint8, r uint8, buf []byte) error {
	return b.Tx(uint16(addr), []byte{r}, buf)
}

// WriteRegister implements drivers.I2C.
func (b *I2CBus) WriteRegister(addr uint8, r uint8, buf []byte) error {
	return b.Tx(uint16(addr), append([]byte{r}, buf...), nil)
}

// Reset clears the transfer log.
func (b *I2CBus) Reset() {
	b.Transfers = nil
}

// Writes returns the write payloads sent to addr, in order, skipping
// transfers that wrote nothing.
func (b *I2CBus) Writes(addr uint16) [][]byte {
	var out [][]byte
	for _, t := range b.Transfers {
		if t.Addr == addr && len(t.Write) > 0 {
			out = append(out, t.Write)
		}
	}
	return out
}
