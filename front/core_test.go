package front

import (
	"testing"

	"github.com/phire/i8086front/biu"
	"github.com/phire/i8086front/bus"
	"github.com/phire/i8086front/decode"
	"github.com/phire/i8086front/loader"
	"github.com/stretchr/testify/assert"
)

func TestCoreDecodesNopAfterReset(t *testing.T) {
	tables := decode.EmbeddedSubset()
	mem := bus.NewFlatMemory()
	mem.LoadBytes([]byte{0x90}, 0xffff0)

	c := New(Config{
		Group:     tables.Group,
		Selector:  tables.Selector,
		Microcode: tables.Microcode,
	})

	// The first queue word lands on tick 7 and the loader takes the opcode
	// on tick 8; the next opcode (a 0x00 from the zeroed memory after the
	// NOP) is not taken before tick 15.
	for i := 0; i < 10; i++ {
		c.Tick(mem)
	}

	assert.Equal(t, byte(0x90), c.LastOpcode)
	assert.True(t, tables.Group.Row(c.LastRows, decode.RowOneByte))
	assert.True(t, tables.Group.Row(c.LastRows, decode.RowIsAccumulator))
	assert.True(t, c.LastWord.IsNopMove())
}

func TestCoreResetReturnsLoaderToWaitFirstByte(t *testing.T) {
	tables := decode.EmbeddedSubset()
	c := New(Config{Group: tables.Group, Selector: tables.Selector, Microcode: tables.Microcode})
	mem := bus.NewFlatMemory()

	for i := 0; i < 20; i++ {
		c.Tick(mem)
	}
	c.Reset()
	assert.Equal(t, loader.WaitFirstByte, c.Loader.State())
	assert.Equal(t, uint16(0xfff0), c.Regs.Peek(biu.RegIP))
}
