package console

import (
	"i2cperiph"
)

// i2cScan prints a grid of responding addresses, like i2cdetect.
func i2cScan(sh *Shell, _ Args) error {
	found := map[uint16]bool{}
	for _, addr := range sh.bus.Scan() {
		found[addr] = true
	}

	sh.printf("I2C Scan - scanning I2C addresses 0x%02X - 0x%02X\n", i2cperiph.AddressMin, i2cperiph.AddressMax)
	sh.printf("    ")
	for i := 0; i <= 0x0F; i++ {
		sh.printf(" %X ", i)
	}
	for addr := uint16(0); addr <= i2cperiph.AddressMax; addr++ {
		if addr%16 == 0 {
			sh.printf("\n%02X: ", addr)
		}
		switch {
		case addr < i2cperiph.AddressMin:
			sh.printf("   ")
		case found[addr]:
			sh.printf("%02X ", addr)
		default:
			sh.printf("-- ")
		}
	}
	sh.printf("\n")
	return nil
}

// i2cDump reads the first 16 byte-wide registers of a device. The values are
// collected first and printed once the bus is free again.
func i2cDump(sh *Shell, args Args) error {
	addr, err := args.Uint16(1)
	if err != nil {
		return err
	}
	if err := i2cperiph.ValidateAddress(addr); err != nil {
		return err
	}
	var regs [16]byte
	for reg := range regs {
		if err := sh.bus.Tx(addr, []byte{byte(reg)}, regs[reg:reg+1]); err != nil {
			return err
		}
	}
	for i := range regs {
		sh.printf(" %02X", i)
	}
	sh.printf("\n\n")
	for _, v := range regs {
		sh.printf(" %02X", v)
	}
	sh.printf("\n")
	return nil
}

func i2cGet(sh *Shell, args Args) error {
	addr, err := args.Uint16(1)
	if err != nil {
		return err
	}
	reg, err := args.Uint8(2)
	if err != nil {
		return err
	}
	var v [1]byte
	if err := sh.bus.Tx(addr, []byte{reg}, v[:]); err != nil {
		return err
	}
	sh.printf("Addr 0x%02X, Reg 0x%02X, Value %02X\n", addr, reg, v[0])
	return nil
}

func i2cSet(sh *Shell, args Args) error {
	addr, err := args.Uint16(1)
	if err != nil {
		return err
	}
	reg, err := args.Uint8(2)
	if err != nil {
		return err
	}
	v, err := args.Uint8(3)
	if err != nil {
		return err
	}
	return sh.bus.Tx(addr, []byte{reg, v}, nil)
}
