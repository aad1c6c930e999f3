package decode

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/phire/i8086front/bitfield"
)

// selectorWidth is the bit width of a column-selector address: enough to
// carry the group-decode row/column state and the opcode's mod-field bits
// that further split a group into its microcode entry points.
const selectorWidth = 11

// SelectorEntry is one of the 128 ternary patterns the column selector
// matches an address against, expressed as the (ones, zeros) mask pair the
// extraction tooling produces directly.
type SelectorEntry struct {
	Ones, Zeros uint16
}

func (e SelectorEntry) pattern() bitfield.Pattern {
	return bitfield.PatternFromMasks(uint32(e.Ones), uint32(e.Zeros), selectorWidth)
}

// ColumnSelector picks one of 128 microcode ROM columns given an 11-bit
// address built from the group-decode result and opcode bits. Patterns are
// matched in table order; the universal ("don't care on every bit")
// entry is never treated as a normal match — it marks the fallback column
// returned when nothing more specific matches, mirroring microcode.py's
// ColumSelector, whose literal default-case wiring is broken (it assigns a
// Python-level None instead of the loop variable) but whose evident intent,
// confirmed by the surrounding comment describing a "universal wildcard"
// entry, is exactly this: the wildcard row IS the default.
type ColumnSelector struct {
	entries       [128]bitfield.Pattern
	defaultColumn uint8
	haveDefault   bool
}

// NewColumnSelector builds a ColumnSelector from 128 raw entries, locating
// the universal (all-don't-care) entry to serve as the default column.
func NewColumnSelector(entries [128]SelectorEntry) *ColumnSelector {
	cs := &ColumnSelector{}
	for i, e := range entries {
		p := e.pattern()
		cs.entries[i] = p
		if p.IsUniversal() && !cs.haveDefault {
			cs.defaultColumn = uint8(i)
			cs.haveDefault = true
		}
	}
	return cs
}

// Select returns the microcode column for addr, the lowest-indexed matching
// non-universal pattern, or the default column if none matches.
func (cs *ColumnSelector) Select(addr uint16) uint8 {
	for col, p := range cs.entries {
		if p.IsUniversal() {
			continue
		}
		if p.Match(uint32(addr)) {
			return uint8(col)
		}
	}
	return cs.defaultColumn
}

// readSelectorNineFiles loads and horizontally concatenates the 9-file set
// for one side (b or t) of the extraction, then transposes the resulting
// 128x11 grid into 128 rows of 11 bits each, reading columns back to front
// as the physical layout does.
func readSelectorNineFiles(dir, suffix string) ([]string, error) {
	var files [9][]string
	for i := 0; i < 9; i++ {
		name := fmt.Sprintf("%d%s.txt", i, suffix)
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("decode: reading %s: %w", name, err)
		}
		files[i] = strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	}
	n := len(files[0])
	rows := make([]string, n)
	for r := 0; r < n; r++ {
		var sb strings.Builder
		for i := 0; i < 9; i++ {
			if r >= len(files[i]) {
				return nil, fmt.Errorf("decode: file %d%s.txt has only %d rows, want %d", i, suffix, len(files[i]), n)
			}
			sb.WriteString(files[i][r])
		}
		rows[r] = sb.String()
	}
	if n < selectorWidth {
		return nil, fmt.Errorf("decode: selector side %q has %d rows, want at least %d", suffix, n, selectorWidth)
	}
	width := len(rows[0])
	if width < 128 {
		return nil, fmt.Errorf("decode: selector side %q has width %d, want at least 128", suffix, width)
	}
	out := make([]string, 128)
	for y := 0; y < 128; y++ {
		b := make([]byte, selectorWidth)
		for x := 0; x < selectorWidth; x++ {
			b[x] = rows[x][width-1-y]
		}
		out[y] = string(b)
	}
	return out, nil
}

// scrambleSelectorRow recombines one row's "top" and "bottom" bit strings
// into the (zero, one) match masks, following microcode.py's column_selector
// reconstruction: each mask interleaves specific bit positions from both
// strings because the two physical wire bundles multiplex both match
// polarities across the same pins.
func scrambleSelectorRow(top, bot string) (zero, one uint16, err error) {
	if len(top) < 11 || len(bot) < 11 {
		return 0, 0, fmt.Errorf("decode: selector row too short (top=%d bot=%d)", len(top), len(bot))
	}
	zstr := string(top[7]) + string(bot[2]) + string(bot[1]) + string(bot[0]) + top[5:7] + top[8:11] + top[3:5]
	ostr := string(bot[7]) + string(top[2]) + string(top[1]) + string(top[0]) + bot[5:7] + bot[8:11] + bot[3:5]
	zv, err := strconv.ParseUint(zstr, 2, selectorWidth)
	if err != nil {
		return 0, 0, fmt.Errorf("decode: parsing zero mask %q: %w", zstr, err)
	}
	ov, err := strconv.ParseUint(ostr, 2, selectorWidth)
	if err != nil {
		return 0, 0, fmt.Errorf("decode: parsing one mask %q: %w", ostr, err)
	}
	return uint16(zv), uint16(ov), nil
}

// LoadColumnSelector reconstructs the 128-entry column selector table from
// the "b" (bottom) and "t" (top) nine-file extraction sets in dir.
func LoadColumnSelector(dir string) ([128]SelectorEntry, error) {
	var entries [128]SelectorEntry

	bot, err := readSelectorNineFiles(dir, "b")
	if err != nil {
		return entries, err
	}
	top, err := readSelectorNineFiles(dir, "t")
	if err != nil {
		return entries, err
	}

	for i := 0; i < 128; i++ {
		zero, one, err := scrambleSelectorRow(top[i], bot[i])
		if err != nil {
			return entries, fmt.Errorf("decode: selector row %d: %w", i, err)
		}
		entries[i] = SelectorEntry{Ones: one, Zeros: zero}
	}
	return entries, nil
}
