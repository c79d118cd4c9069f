package at24cx

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"i2cperiph"
	"i2cperiph/tester"
)

func newTestDevice(c *qt.C) (*Device, *tester.I2CBus, *tester.EEPROM) {
	var delays []time.Duration
	sleep = func(d time.Duration) { delays = append(delays, d) }
	c.Cleanup(func() { sleep = time.Sleep })

	fake := tester.NewI2CBus()
	mem := tester.NewEEPROM(DefaultAddress, DefaultSize, DefaultPageSize)
	fake.AddDevice(mem)
	return New(i2cperiph.NewBus(fake)), fake, mem
}

func randomBytes(n int) []byte {
	buf := make([]byte, n)
	rand.New(rand.NewSource(1)).Read(buf)
	return buf
}

func TestWriteSplitsOnPageBoundary(t *testing.T) {
	c := qt.New(t)
	dev, fake, mem := newTestDevice(c)

	data := randomBytes(256)
	c.Assert(dev.Write(0x457, data), qt.IsNil)

	writes := fake.Writes(DefaultAddress)
	c.Assert(len(writes) > 1, qt.Equals, true)
	total := 0
	address := 0x457
	for i, w := range writes {
		payload := len(w) - 2
		c.Assert(payload <= DefaultPageSize, qt.Equals, true)
		c.Assert(int(w[0])<<8|int(w[1]), qt.Equals, address)
		if i == 0 {
			c.Assert(payload, qt.Equals, DefaultPageSize-0x457%DefaultPageSize)
		} else {
			// every later page write starts on a page boundary
			c.Assert(address%DefaultPageSize, qt.Equals, 0)
		}
		total += payload
		address += payload
	}
	c.Assert(total, qt.Equals, 256)
	c.Assert(mem.Memory[0x457:0x457+256], qt.DeepEquals, data)

	got := make([]byte, 256)
	c.Assert(dev.Read(0x457, got), qt.IsNil)
	c.Assert(got, qt.DeepEquals, data)
}

func TestWriteWaitsAfterEveryPage(t *testing.T) {
	c := qt.New(t)
	var delays []time.Duration
	fake := tester.NewI2CBus()
	fake.AddDevice(tester.NewEEPROM(DefaultAddress, DefaultSize, DefaultPageSize))
	dev := New(i2cperiph.NewBus(fake))
	sleep = func(d time.Duration) { delays = append(delays, d) }
	defer func() { sleep = time.Sleep }()

	c.Assert(dev.Write(0x10, make([]byte, 64)), qt.IsNil)
	c.Assert(fake.Writes(DefaultAddress), qt.HasLen, 3)
	c.Assert(delays, qt.DeepEquals, []time.Duration{DefaultWriteDelay, DefaultWriteDelay, DefaultWriteDelay})
}

func TestUnsplitWriteRollsOver(t *testing.T) {
	c := qt.New(t)
	fake := tester.NewI2CBus()
	mem := tester.NewEEPROM(DefaultAddress, DefaultSize, DefaultPageSize)
	fake.AddDevice(mem)

	// a raw 8 byte write 4 bytes before the end of page 0 wraps to its start
	c.Assert(fake.Tx(DefaultAddress, []byte{0x00, 28, 1, 2, 3, 4, 5, 6, 7, 8}, nil), qt.IsNil)
	c.Assert(mem.Memory[28:32], qt.DeepEquals, []byte{1, 2, 3, 4})
	c.Assert(mem.Memory[0:4], qt.DeepEquals, []byte{5, 6, 7, 8})
	c.Assert(mem.Memory[32:36], qt.DeepEquals, []byte{0, 0, 0, 0})
}

func TestWriteCountExceedsCapacity(t *testing.T) {
	c := qt.New(t)
	dev, fake, _ := newTestDevice(c)

	err := dev.Write(0, make([]byte, DefaultSize+1))
	c.Assert(errors.Is(err, ErrCountExceedsCapacity), qt.Equals, true)
	c.Assert(fake.Transfers, qt.HasLen, 0)

	c.Assert(dev.Write(0, make([]byte, DefaultSize)), qt.IsNil)
	c.Assert(fake.Writes(DefaultAddress), qt.HasLen, DefaultSize/DefaultPageSize)
}

func TestWriteAbortsOnError(t *testing.T) {
	c := qt.New(t)
	dev, fake, mem := newTestDevice(c)

	calls := 0
	fake.Fail = func(addr uint16, w, r []byte) error {
		calls++
		if calls == 3 {
			return i2cperiph.ErrTimeout
		}
		return nil
	}
	data := bytes.Repeat([]byte{0xAA}, 128)
	err := dev.Write(0, data)
	c.Assert(errors.Is(err, i2cperiph.ErrBusWrite), qt.Equals, true)
	c.Assert(err, qt.ErrorMatches, `at24cx: write at 0x0040: .*HAL_TIMEOUT.*`)
	c.Assert(fake.Transfers, qt.HasLen, 3)

	// the first two pages stay written
	c.Assert(mem.Memory[:64], qt.DeepEquals, data[:64])
	c.Assert(mem.Memory[64:128], qt.DeepEquals, make([]byte, 64))
}

func TestReadWrapsAtCapacity(t *testing.T) {
	c := qt.New(t)
	dev, fake, mem := newTestDevice(c)
	for i := range mem.Memory {
		mem.Memory[i] = byte(i)
	}

	got := make([]byte, 4)
	c.Assert(dev.Read(DefaultSize-2, got), qt.IsNil)
	c.Assert(got, qt.DeepEquals, []byte{0xFE, 0xFF, 0x00, 0x01})
	c.Assert(fake.Transfers, qt.DeepEquals, []tester.Transfer{
		{Addr: DefaultAddress, Write: []byte{0x0F, 0xFE}},
		{Addr: DefaultAddress, Read: 4},
	})

	// more than the whole array comes back around
	big := make([]byte, DefaultSize+16)
	c.Assert(dev.Read(0, big), qt.IsNil)
	c.Assert(big[DefaultSize:], qt.DeepEquals, big[:16])
}

func TestPollReady(t *testing.T) {
	c := qt.New(t)
	var delays []time.Duration
	sleep = func(d time.Duration) { delays = append(delays, d) }
	defer func() { sleep = time.Sleep }()

	fake := tester.NewI2CBus()
	mem := tester.NewEEPROM(0x50, DefaultSize, DefaultPageSize)
	mem.BusyTransfers = 2
	fake.AddDevice(mem)
	dev := New(i2cperiph.NewBus(fake))
	c.Assert(dev.Configure(Config{Address: 0x50, PollReady: true, WriteDelay: time.Second}), qt.IsNil)

	c.Assert(dev.Write(0, []byte("The quick brown fox jumped over the lazy dog.")), qt.IsNil)
	// two pages, each followed by two NACKed probes and one ACKed probe
	c.Assert(fake.Transfers, qt.HasLen, 2+2*3)
	c.Assert(delays, qt.DeepEquals, []time.Duration{
		100 * time.Millisecond, 100 * time.Millisecond,
		100 * time.Millisecond, 100 * time.Millisecond,
	})
	c.Assert(string(mem.Memory[:45]), qt.Equals, "The quick brown fox jumped over the lazy dog.")
}

func TestConfigure(t *testing.T) {
	c := qt.New(t)
	dev := New(i2cperiph.NewBus(tester.NewI2CBus()))
	c.Assert(dev.Address, qt.Equals, uint16(DefaultAddress))
	c.Assert(dev.Capacity(), qt.Equals, DefaultSize)

	c.Assert(errors.Is(dev.Configure(Config{Address: 0x68}), ErrInvalidAddress), qt.Equals, true)
	c.Assert(errors.Is(dev.Configure(Config{PageSize: 24}), ErrInvalidPageSize), qt.Equals, true)
	c.Assert(errors.Is(dev.Configure(Config{Size: -1}), ErrInvalidSize), qt.Equals, true)
	c.Assert(errors.Is(dev.Configure(Config{Size: MaxSize + 1}), ErrInvalidSize), qt.Equals, true)
	c.Assert(dev.Capacity(), qt.Equals, DefaultSize)

	c.Assert(dev.Configure(Config{Size: MaxSize}), qt.IsNil)
	c.Assert(dev.Capacity(), qt.Equals, MaxSize)

	c.Assert(dev.Configure(Config{Address: 0x50, Size: 8192}), qt.IsNil)
	c.Assert(dev.Address, qt.Equals, uint16(0x50))
	c.Assert(dev.Capacity(), qt.Equals, 8192)
}

func TestReaderAtWriterAt(t *testing.T) {
	c := qt.New(t)
	dev, _, _ := newTestDevice(c)
	var _ io.ReaderAt = dev
	var _ io.WriterAt = dev

	n, err := dev.WriteAt([]byte("hello"), DefaultSize-5)
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, 5)

	_, err = dev.WriteAt([]byte("hello"), DefaultSize-4)
	c.Assert(errors.Is(err, ErrCountExceedsCapacity), qt.Equals, true)

	buf := make([]byte, 8)
	n, err = dev.ReadAt(buf, DefaultSize-5)
	c.Assert(err, qt.Equals, io.EOF)
	c.Assert(string(buf[:n]), qt.Equals, "hello")

	_, err = dev.ReadAt(buf, DefaultSize)
	c.Assert(err, qt.Equals, io.EOF)
}
