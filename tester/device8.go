package tester

import (
	drivertester "tinygo.org/x/drivers/tester"
)

// I2CDevice8 is a tinygo drivers tester.I2CDevice8 with a register pointer
// in front of it. The drivers in this module select a register with a
// one-byte write and read it back in a separate transfer, which the upstream
// device rejects. Here the first written byte moves the pointer, further
// written bytes are stored with auto-increment, and reads continue from the
// current pointer.
type I2CDevice8 struct {
	*drivertester.I2CDevice8
	addr uint16
	ptr  uint8
}

// NewI2CDevice8 returns a register file at addr. Accesses past the last
// register fail the test through c.
func NewI2CDevice8(c drivertester.Failer, addr uint16) *I2CDevice8 {
	return &I2CDevice8{
		I2CDevice8: drivertester.NewI2CDevice8(c, uint8(addr)),
		addr:       addr,
	}
}

func (d *I2CDevice8) Addr() uint16 {
	return d.addr
}

func (d *I2CDevice8) Tx(w, r []byte) error {
	if len(w) > 0 {
		d.ptr = w[0]
		if len(w) > 1 {
			if err := d.WriteRegister(d.ptr, w[1:]); err != nil {
				return err
			}
			d.ptr += uint8(len(w) - 1)
		}
	}
	if len(r) > 0 {
		if err := d.ReadRegister(d.ptr, r); err != nil {
			return err
		}
		d.ptr += uint8(len(r))
	}
	return nil
}
