package at24cx

import "time"

const (
	// The A2:A0 strap pins select an address in [AddressMin, AddressMax].
	AddressMin     = 0x50
	AddressMax     = 0x57
	DefaultAddress = 0x57 // all straps high, as on the common DS3231+AT24C32 module

	DefaultSize       = 4096 // AT24C32: 32 Kbit
	MaxSize           = 1 << 16 // limit of the 2-byte memory address
	DefaultPageSize   = 32
	DefaultWriteDelay = 10 * time.Millisecond // tWR, self-timed write cycle
)
