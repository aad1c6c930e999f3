package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrambleSelectorRow(t *testing.T) {
	top := "10110001101"
	bot := "00111010110"
	zero, one, err := scrambleSelectorRow(top, bot)
	require.NoError(t, err)
	assert.Equal(t, uint16(1558), zero)
	assert.Equal(t, uint16(699), one)
}

func TestScrambleSelectorRowRejectsShortInput(t *testing.T) {
	_, _, err := scrambleSelectorRow("0000", "00000000000")
	assert.Error(t, err)
}

func TestColumnSelectorPicksMostSpecificMatch(t *testing.T) {
	var entries [128]SelectorEntry
	entries[3] = SelectorEntry{Ones: 0, Zeros: 0x7ff} // matches addr == 0 exactly
	cs := NewColumnSelector(entries)

	assert.Equal(t, uint8(3), cs.Select(0))
	assert.Equal(t, uint8(0), cs.Select(1), "no non-universal entry matches addr 1, falls to default column 0")
}

func TestColumnSelectorDefaultIsUniversalEntry(t *testing.T) {
	var entries [128]SelectorEntry
	// A zero SelectorEntry is itself universal, so give every other slot a
	// non-universal placeholder (bit 10 set, bit 0 clear) that matches
	// neither address used below.
	for i := range entries {
		entries[i] = SelectorEntry{Ones: 0x400, Zeros: 0x001}
	}
	entries[0x48] = SelectorEntry{Ones: 0, Zeros: 0} // universal: matches everything
	entries[1] = SelectorEntry{Ones: 0x7ff, Zeros: 0} // matches only addr == 0x7ff
	cs := NewColumnSelector(entries)

	assert.Equal(t, uint8(0x48), cs.defaultColumn)
	assert.Equal(t, uint8(1), cs.Select(0x7ff))
	assert.Equal(t, uint8(0x48), cs.Select(0), "falls back to the universal entry's column")
}

func TestSelectorEntryPatternMatchesMaskedBits(t *testing.T) {
	e := SelectorEntry{Ones: 0b101, Zeros: 0b010}
	p := e.pattern()
	assert.True(t, p.Match(0b101))
	assert.True(t, p.Match(0b101|0b1000)) // higher don't-care bits are unconstrained
	assert.False(t, p.Match(0b111))       // zeros bit forced, but set here
	assert.False(t, p.Match(0b001))       // ones bit forced, but clear here
}
