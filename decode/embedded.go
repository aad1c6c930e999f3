package decode

import "github.com/phire/i8086front/bitfield"

// EmbeddedTables is a hand-curated, deliberately small decode fixture: a
// working GroupDecode, ColumnSelector, and microcode ROM sufficient to
// exercise the wiring between them (in particular, decoding opcode 0x90 —
// the 8086's NOP, encoded as "exchange AX with AX" — down to a no-op
// microcode word) without claiming to reproduce the real die's full tables.
// The real group-decode PLA masks and the raw column-selector/microcode
// extraction files were never present in the source material this was built
// against; LoadGroupDecode/LoadColumnSelector/LoadMicrocode exist to read
// those when available, and this fixture stands in for demos and tests.
type EmbeddedTables struct {
	Group     *GroupDecode
	Selector  *ColumnSelector
	Microcode [512]MicrocodeWord
}

// accumExchangeOpcode is 0x90 (NOP / XCHG AX,AX) represented as the 9-bit
// group-decode input (opcode byte, zero-extended).
const accumExchangeOpcode = 0x090

// defaultSelectorColumn is the column-selector's universal fallback entry,
// matching the real die's observed column 0x48 (microcode.py's comment
// calls this out explicitly as a "universal wildcard pattern").
const defaultSelectorColumn = 0x48

// fixtureGroupColumn and fixtureExclusionColumn are unlabeled columns: the
// real PLA has 28 of these beyond the 10 named taps, with no individual
// signal of their own, only contributing to row NORs. fixtureGroupColumn
// recognizes exactly the accumulator-exchange opcode group NOP belongs to;
// fixtureExclusionColumn is wired into the rows that class should assert so
// that, via NOR semantics, they fire whenever fixtureGroupColumn matched.
// They also fire for every other input whose top (ninth) bit is clear,
// which includes every zero-extended opcode byte.
const (
	fixtureGroupColumn     GroupColumn = 0
	fixtureExclusionColumn GroupColumn = 1
)

// EmbeddedSubset returns the fixture described above.
func EmbeddedSubset() EmbeddedTables {
	g := &GroupDecode{}
	// Leave every column universal (always matches) except the two fixture
	// columns above. A real extraction would populate all 38 columns; this
	// fixture only needs the ones the NOP scenario exercises.
	for i := range g.Columns {
		g.Columns[i] = bitfield.ParsePattern("---------")
	}
	g.Columns[fixtureGroupColumn] = bitfield.ParsePattern("010010000")
	// Requires the opposite of fixtureGroupColumn's first bit, so it never
	// matches the same input fixtureGroupColumn does.
	g.Columns[fixtureExclusionColumn] = bitfield.ParsePattern("1--------")
	// RowOneByte and RowIsAccumulator both fire (by NOR semantics) exactly
	// when fixtureExclusionColumn did NOT match, which includes every input
	// fixtureGroupColumn matches (and every other opcode byte, whose ninth
	// bit is always clear): NOP (accumulator-exchange) runs
	// microcode after one byte, and its second byte is never a mod-R/M
	// byte, matching the real PLA's row semantics for this opcode class
	// even though the column wiring itself is this fixture's own.
	g.RowMasks[RowOneByte] = 1 << uint(fixtureExclusionColumn)
	g.RowMasks[RowIsAccumulator] = 1 << uint(fixtureExclusionColumn)

	var entries [128]SelectorEntry
	// Every unused slot is given a placeholder pattern that only matches
	// addresses with the top bit set, so none of them is accidentally
	// mistaken for the universal (all-don't-care) entry: a real extraction
	// populates every one of the 128 columns, but this fixture only needs
	// two meaningful entries, and the zero value of SelectorEntry happens
	// to decode as universal.
	for i := range entries {
		entries[i] = SelectorEntry{Ones: 1 << (selectorWidth - 1), Zeros: 0}
	}
	// Column 0 recognizes address 0 specifically (all 11 bits forced zero).
	entries[0] = SelectorEntry{Ones: 0, Zeros: 0x7ff}
	// Column defaultSelectorColumn is the universal pattern (all
	// don't-care), becoming NewColumnSelector's fallback.
	entries[defaultSelectorColumn] = SelectorEntry{Ones: 0, Zeros: 0}
	selector := NewColumnSelector(entries)

	var microcode [512]MicrocodeWord
	// Address 0: a representative reset-vector entry, a misc-class op
	// moving the ZERO source into PC.
	microcode[0] = encodeMicrocodeWord(srcZero, 4 /* PC */, 4, false)
	// The fallback column's entry: an explicit register no-op, the
	// microcode-level idle filler distinct from the all-zero word.
	microcode[defaultSelectorColumn] = encodeMicrocodeWord(srcOnes, destNone, 4, false)

	return EmbeddedTables{Group: g, Selector: selector, Microcode: microcode}
}

// encodeMicrocodeWord builds a MicrocodeWord whose Source/Dest/OpType fields
// decode back to the given values, by inverting the bit-permutation formulas
// Source/Dest/OpType implement. It exists so fixtures and tests can state
// intent ("a word that moves ZERO into PC") instead of magic 21-bit
// constants.
func encodeMicrocodeWord(source, dest, typ int, flagsUpdate bool) MicrocodeWord {
	var d uint32

	setBit := func(field int, bit uint, mask int) {
		if field&mask != 0 {
			d |= 1 << bit
		}
	}
	setBit(source, 13, 0x01)
	setBit(source, 11, 0x02)
	setBit(source, 12, 0x04)
	setBit(source, 14, 0x08)
	setBit(source, 15, 0x10)

	setBit(dest, 20, 0x01)
	setBit(dest, 19, 0x02)
	setBit(dest, 18, 0x04)
	setBit(dest, 17, 0x08)
	setBit(dest, 16, 0x10)

	var raw uint32
	switch {
	case typ == 0:
		raw = 0
	case typ == 1:
		raw = 2
	default:
		raw = uint32(typ)
	}
	d |= raw << 7

	if flagsUpdate {
		d |= 1 << 10
	}
	return MicrocodeWord(d)
}
