package console

import (
	"bytes"
	"encoding/hex"
	"errors"
	"math/rand"
)

const (
	readChunk = 32

	testAddress = 0x457
	testSize    = 256
)

const quickBrownFox = "The quick brown fox jumped over the lazy dog."

var ErrCompare = errors.New("compare fail")

// readFromStart reads count bytes from address 0 in chunks of readChunk.
func readFromStart(sh *Shell, count int) ([]byte, error) {
	buf := make([]byte, count)
	for addr := 0; addr < count; addr += readChunk {
		end := addr + readChunk
		if end > count {
			end = count
		}
		if err := sh.store.Read(uint16(addr), buf[addr:end]); err != nil {
			return nil, err
		}
	}
	return buf, nil
}

func eepromRead(sh *Shell, args Args) error {
	count := uint16(readChunk)
	if len(args) > 1 {
		var err error
		if count, err = args.Uint16(1); err != nil {
			return err
		}
	}
	buf, err := readFromStart(sh, int(count))
	if err != nil {
		return err
	}
	sh.printf("%s", hex.Dump(buf))
	return nil
}

func eepromWrite(sh *Shell, _ Args) error {
	return sh.store.Write(0, []byte(quickBrownFox))
}

func eepromDump(sh *Shell, _ Args) error {
	buf, err := readFromStart(sh, sh.store.Capacity())
	if err != nil {
		return err
	}
	sh.printf("%s", hex.Dump(buf))
	return nil
}

// eepromFill writes an incrementing pattern 256 bytes at a time, so every
// byte ends up holding the low byte of its own address.
func eepromFill(sh *Shell, _ Args) error {
	pattern := make([]byte, 256)
	for i := range pattern {
		pattern[i] = byte(i)
	}
	for addr := 0; addr < sh.store.Capacity(); addr += len(pattern) {
		chunk := pattern
		if rem := sh.store.Capacity() - addr; rem < len(chunk) {
			chunk = chunk[:rem]
		}
		if err := sh.store.Write(uint16(addr), chunk); err != nil {
			return err
		}
		sh.printf(".")
	}
	sh.printf("\n")
	return nil
}

// testPattern is the same on every run so a failed test can be re-checked
// with eeread.
func testPattern() []byte {
	buf := make([]byte, testSize)
	rand.New(rand.NewSource(testAddress)).Read(buf)
	return buf
}

// eepromTest writes across several page boundaries, then reads the range
// back in one go and compares.
func eepromTest(sh *Shell, _ Args) error {
	want := testPattern()
	if err := sh.store.Write(testAddress, want); err != nil {
		return err
	}
	got := make([]byte, len(want))
	if err := sh.store.Read(testAddress, got); err != nil {
		return err
	}
	if !bytes.Equal(got, want) {
		return ErrCompare
	}
	sh.printf("Compare success!\n")
	sh.printf("%s", hex.Dump(got))
	return nil
}
