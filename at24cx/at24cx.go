// Package at24cx implements a driver for the AT24C32/AT24C64 family of I2C
// EEPROMs, which use a 2-byte memory address.
//
// Writes are split so that no single transfer crosses a page boundary: the
// device only latches the low address bits within a page, so an unsplit write
// would roll over to the start of the same page and overwrite it. Reads need
// no splitting since the internal address counter runs across pages and wraps
// to 0 at the end of the array.
//
// Datasheet: https://ww1.microchip.com/downloads/en/DeviceDoc/doc0336.pdf
package at24cx

import (
	"errors"
	"fmt"
	"io"
	"time"

	"i2cperiph"
)

var (
	ErrCountExceedsCapacity = errors.New("at24cx: count exceeds capacity")
	ErrInvalidAddress       = errors.New("at24cx: device address outside 0x50-0x57")
	ErrInvalidPageSize      = errors.New("at24cx: page size must be a power of two")
	ErrInvalidSize          = errors.New("at24cx: size must be 1 to 65536 bytes")
)

// sleep is replaced in tests.
var sleep = time.Sleep

type Device struct {
	bus        *i2cperiph.Bus
	Address    uint16
	size       int
	pageSize   int
	writeDelay time.Duration
	pollReady  bool
}

type Config struct {
	Address  uint16
	Size     int
	PageSize int
	// WriteDelay is how long a page write takes to complete inside the
	// device. With PollReady it bounds the polling instead.
	WriteDelay time.Duration
	// PollReady waits for the device to ACK its address again after a page
	// write rather than always sleeping for the full WriteDelay.
	PollReady bool
}

// New creates a new driver on the given transaction layer, configured for an
// AT24C32 at DefaultAddress. Call Configure to change it.
func New(bus *i2cperiph.Bus) *Device {
	return &Device{
		bus:        bus,
		Address:    DefaultAddress,
		size:       DefaultSize,
		pageSize:   DefaultPageSize,
		writeDelay: DefaultWriteDelay,
	}
}

func (d *Device) Configure(c Config) error {
	if c.Address == 0 {
		c.Address = DefaultAddress
	}
	if c.Size == 0 {
		c.Size = DefaultSize
	}
	if c.PageSize == 0 {
		c.PageSize = DefaultPageSize
	}
	if c.WriteDelay == 0 {
		c.WriteDelay = DefaultWriteDelay
	}
	if c.Address < AddressMin || c.Address > AddressMax {
		return fmt.Errorf("%w: 0x%02X", ErrInvalidAddress, c.Address)
	}
	if c.Size < 0 || c.Size > MaxSize {
		return fmt.Errorf("%w: %d", ErrInvalidSize, c.Size)
	}
	if c.PageSize < 0 || c.PageSize&(c.PageSize-1) != 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, c.PageSize)
	}
	d.Address = c.Address
	d.size = c.Size
	d.pageSize = c.PageSize
	d.writeDelay = c.WriteDelay
	d.pollReady = c.PollReady
	return nil
}

// Capacity returns the array size in bytes.
func (d *Device) Capacity() int {
	return d.size
}

// Write stores data starting at address using page writes. Each page write is
// followed by the device write cycle before the next one is issued. On error
// the pages already written stay written.
func (d *Device) Write(address uint16, data []byte) error {
	if len(data) > d.size {
		return fmt.Errorf("%w: %d > %d", ErrCountExceedsCapacity, len(data), d.size)
	}
	buf := make([]byte, 2+d.pageSize)
	page := uint32(d.pageSize)
	for len(data) > 0 {
		next := (uint32(address) + page) &^ (page - 1)
		n := int(next - uint32(address))
		if n > len(data) {
			n = len(data)
		}

		buf[0] = uint8(address >> 8)
		buf[1] = uint8(address)
		copy(buf[2:], data[:n])
		if err := d.bus.Tx(d.Address, buf[:2+n], nil); err != nil {
			return fmt.Errorf("at24cx: write at 0x%04X: %w", address, err)
		}
		address += uint16(n)
		data = data[n:]
		d.waitForWriteComplete()
	}
	return nil
}

// waitForWriteComplete blocks until the device has finished its internal
// write cycle. The device ignores its address while the cycle runs.
func (d *Device) waitForWriteComplete() {
	if d.pollReady {
		deadline := time.Now().Add(d.writeDelay)
		for time.Now().Before(deadline) {
			if d.bus.Probe(d.Address) == nil {
				return
			}
			sleep(d.writeDelay / 10)
		}
	}
	sleep(d.writeDelay)
}

// Read fills data starting at address with a single sequential read. Reads
// longer than the device wrap around to address 0.
func (d *Device) Read(address uint16, data []byte) error {
	addr := [2]byte{uint8(address >> 8), uint8(address)}
	if err := d.bus.Tx(d.Address, addr[:], data); err != nil {
		return fmt.Errorf("at24cx: read at 0x%04X: %w", address, err)
	}
	return nil
}

// ReadAt implements io.ReaderAt. Unlike Read it never wraps: a read that
// runs past the end of the device is cut short and returns io.EOF.
func (d *Device) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(d.size) {
		return 0, io.EOF
	}
	n := len(p)
	if rem := int64(d.size) - off; int64(n) > rem {
		n = int(rem)
	}
	if err := d.Read(uint16(off), p[:n]); err != nil {
		return 0, err
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt implements io.WriterAt. Writes that would run past the end of the
// device are rejected without touching it.
func (d *Device) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(d.size) {
		return 0, fmt.Errorf("%w: %d bytes at %d", ErrCountExceedsCapacity, len(p), off)
	}
	if err := d.Write(uint16(off), p); err != nil {
		return 0, err
	}
	return len(p), nil
}
