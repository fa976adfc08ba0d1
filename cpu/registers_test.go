package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisters_WriteRead(t *testing.T) {
	assert := assert.New(t)

	regs := &Registers{}
	for n := uint(0); n <= 30; n++ {
		want := uint64(0x1122334455667788) + uint64(n)
		assert.NoError(regs.WriteX(n, want))
		got, err := regs.ReadX(n)
		assert.NoError(err)
		assert.Equal(want, got)
	}
}

func TestRegisters_ZeroRegister(t *testing.T) {
	assert := assert.New(t)

	regs := &Registers{}
	assert.NoError(regs.WriteX(ZR_INDEX, 0xdeadbeef))
	got, err := regs.ReadX(ZR_INDEX)
	assert.NoError(err)
	assert.Equal(uint64(0), got)

	w, err := regs.ReadW(ZR_INDEX)
	assert.NoError(err)
	assert.Equal(uint32(0), w)
}

func TestRegisters_InvalidIndex(t *testing.T) {
	assert := assert.New(t)

	regs := &Registers{}
	_, err := regs.ReadX(32)
	assert.ErrorIs(err, ErrRegisterInvalid)
	assert.ErrorIs(regs.WriteX(99, 1), ErrRegisterInvalid)
}

func TestRegisters_Wide32ZeroExtends(t *testing.T) {
	assert := assert.New(t)

	regs := &Registers{}
	for n := uint(0); n <= 30; n++ {
		assert.NoError(regs.WriteX(n, 0xffffffffffffffff))
		assert.NoError(regs.WriteW(n, 0x12345678))
		got, err := regs.ReadX(n)
		assert.NoError(err)
		assert.Equal(uint64(0x12345678), got)
	}
}

func TestRegisters_SpPc(t *testing.T) {
	assert := assert.New(t)

	regs := &Registers{}
	regs.WriteSP(0x1000)
	regs.WritePC(0x24)
	assert.Equal(uint64(0x1000), regs.ReadSP())
	assert.Equal(uint64(0x24), regs.ReadPC())
}

func TestRegisters_ReadRef(t *testing.T) {
	assert := assert.New(t)

	regs := &Registers{}
	assert.NoError(regs.WriteX(3, 0xaabbccdd11223344))
	regs.WriteSP(0x80)

	got, err := regs.ReadRef(RegRef{Class: REG_GENERAL, Index: 3, Wide: true})
	assert.NoError(err)
	assert.Equal(uint64(0xaabbccdd11223344), got)

	got, err = regs.ReadRef(RegRef{Class: REG_GENERAL, Index: 3, Wide: false})
	assert.NoError(err)
	assert.Equal(uint64(0x11223344), got)

	got, err = regs.ReadRef(RegRef{Class: REG_SP, Wide: true})
	assert.NoError(err)
	assert.Equal(uint64(0x80), got)

	got, err = regs.ReadRef(RegRef{Class: REG_ZERO, Index: ZR_INDEX, Wide: true})
	assert.NoError(err)
	assert.Equal(uint64(0), got)
}

func TestRegisters_WriteRef(t *testing.T) {
	assert := assert.New(t)

	regs := &Registers{}

	assert.NoError(regs.WriteRef(RegRef{Class: REG_GENERAL, Index: 5, Wide: true}, 0xffffffff00000001))
	got, _ := regs.ReadX(5)
	assert.Equal(uint64(0xffffffff00000001), got)

	assert.NoError(regs.WriteRef(RegRef{Class: REG_GENERAL, Index: 5, Wide: false}, 0xffffffff00000002))
	got, _ = regs.ReadX(5)
	assert.Equal(uint64(2), got)

	assert.NoError(regs.WriteRef(RegRef{Class: REG_ZERO, Index: ZR_INDEX, Wide: true}, 7))
	got, _ = regs.ReadX(ZR_INDEX)
	assert.Equal(uint64(0), got)

	assert.NoError(regs.WriteRef(RegRef{Class: REG_SP, Wide: true}, 0x200))
	assert.Equal(uint64(0x200), regs.ReadSP())
}

func TestRegisters_Reset(t *testing.T) {
	assert := assert.New(t)

	regs := &Registers{}
	assert.NoError(regs.WriteX(0, 1))
	regs.WriteSP(2)
	regs.WritePC(3)
	regs.Flags = Flags{N: true, Z: true, C: true, V: true}

	regs.Reset()
	got, _ := regs.ReadX(0)
	assert.Equal(uint64(0), got)
	assert.Equal(uint64(0), regs.ReadSP())
	assert.Equal(uint64(0), regs.ReadPC())
	assert.Equal(Flags{}, regs.Flags)
}

func TestRegisters_String(t *testing.T) {
	assert := assert.New(t)

	regs := &Registers{}
	assert.NoError(regs.WriteX(0, 0x42))
	out := regs.String()
	assert.Contains(out, "X0: 0x0000000000000042")
	assert.Contains(out, "SP: ")
	assert.Contains(out, "N: 0 Z: 0 C: 0 V: 0")
}
