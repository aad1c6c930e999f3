package bus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlatMemoryReadWrite(t *testing.T) {
	m := NewFlatMemory()
	m.Write(0xfffff, 0xab)
	assert.Equal(t, byte(0xab), m.Read(0xfffff))
	assert.Equal(t, byte(0), m.Read(0))
}

func TestFlatMemoryWrapsAddress(t *testing.T) {
	m := NewFlatMemory()
	m.Write(0x100000, 0x12) // one past the 20-bit space, wraps to 0
	assert.Equal(t, byte(0x12), m.Read(0))
}

func TestLoadBytes(t *testing.T) {
	m := NewFlatMemory()
	m.LoadBytes([]byte{0xf0, 0xf1, 0xf2}, 0xffff0)
	assert.Equal(t, byte(0xf0), m.Read(0xffff0))
	assert.Equal(t, byte(0xf1), m.Read(0xffff1))
	assert.Equal(t, byte(0xf2), m.Read(0xffff2))
}
