// Package decode implements the instruction-decode front end: the
// group-decode PLA that classifies an opcode byte, the column selector that
// turns a (group, modrm, ...) address into a microcode ROM column, and the
// 21-bit microcode word format itself.
package decode

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// MicrocodeWord is one 21-bit entry of the 512-word microcode ROM. The low
// 21 bits of the uint32 are significant; bits above that are always zero.
type MicrocodeWord uint32

// Source register field values that disassemble() renders by name instead of
// by the generic register table, because the same bit pattern means
// something else depending on whether it's read as a source or a
// destination.
const (
	srcQ     = 0x07
	srcSigma = 0x14
	srcOnes  = 0x15
	srcCR    = 0x16
	srcZero  = 0x17

	destNone = 0x07
)

// regNames is the 32-entry register-field decode table (microcode_dump.py's
// `regs`), shared by both the source and destination fields except where
// srcRegNames overrides it.
var regNames = [32]string{
	"RA", "RC", "RS", "RD", "PC", "IND", "OPR", "no_dest",
	"A", "C", "E", "L", "tmpa", "tmpb", "tmpc", "F",
	"X", "B", "M", "R", "tmpaL", "tmpbL", "tmpaH", "tmpbH",
	"XA", "BC", "DE", "HL", "SP", "MP", "IJ", "IK",
}

// srcRegOverride gives the handful of source-only names: Q (the prefetch
// queue), SIGMA (ALU result bus), ONES/ZERO (constant sources), CR (the
// condition-code register read as an ALU operand).
var srcRegOverride = map[int]string{
	srcQ:     "Q",
	srcSigma: "SIGMA",
	srcOnes:  "ONES",
	srcCR:    "CR",
	srcZero:  "ZERO",
}

// Source extracts the 5-bit source-register field. The bit layout is
// disjoint ranges of the word rather than one contiguous field (the
// physical ROM column order doesn't match the logical field order),
// reconstructed here exactly as microcode_dump.py's disassemble() does.
func (w MicrocodeWord) Source() int {
	d := uint32(w)
	return int(((d >> 13) & 1) + ((d >> 10) & 6) + ((d >> 11) & 0x18))
}

// Dest extracts the 5-bit destination-register field.
func (w MicrocodeWord) Dest() int {
	d := uint32(w)
	return int(((d >> 20) & 1) + ((d >> 18) & 2) + ((d >> 16) & 4) + ((d >> 14) & 8) + ((d >> 12) & 0x10))
}

// OpType extracts the 3-bit operation-class field and collapses it to the
// effective value set {0,1,4,5,6,7} the way disassemble() does: the field's
// low bit only matters when bit 2 is set.
func (w MicrocodeWord) OpType() int {
	d := uint32(w)
	raw := (d >> 7) & 7
	if raw&4 == 0 {
		raw >>= 1
	}
	return int(raw)
}

// UpdatesFlags reports whether this word's ALU operation updates the
// condition-code register.
func (w MicrocodeWord) UpdatesFlags() bool {
	return (uint32(w)>>10)&1 != 0
}

// IsNop reports whether w is the all-zero filler word used to pad unused ROM
// addresses.
func (w MicrocodeWord) IsNop() bool {
	return uint32(w) == 0
}

// IsNopMove reports whether w is a register-transfer no-op: source ONES
// moved to the no_dest sink, a pattern the microcode uses as an explicit
// "waste a cycle" filler distinct from the all-zero word.
func (w MicrocodeWord) IsNopMove() bool {
	return w.Source() == srcOnes && w.Dest() == destNone
}

// SourceName renders the source field using the override table where one
// applies, falling back to the generic register table.
func (w MicrocodeWord) SourceName() string {
	s := w.Source()
	if name, ok := srcRegOverride[s]; ok {
		return name
	}
	return regNames[s]
}

// DestName renders the destination field using the generic register table.
func (w MicrocodeWord) DestName() string {
	return regNames[w.Dest()]
}

// opTypeNames labels the collapsed OpType values. typ 2 and 3 never occur
// (the collapse folds raw 2 and 3 both into 1), so they're omitted
// rather than guessed at.
var opTypeNames = map[int]string{
	0: "jump",
	1: "alu",
	4: "misc",
	5: "call",
	6: "bus",
	7: "cond",
}

// String renders w as a compact mnemonic-like summary: operation class,
// destination, source, and a flags-update marker. This is a diagnostic
// rendering for the debug TUI, not a claim of authentic disassembly syntax —
// the real mnemonic tables (per-class opcode names) were never recovered
// from the source material this was built against.
func (w MicrocodeWord) String() string {
	if w.IsNop() {
		return "nop"
	}
	class, ok := opTypeNames[w.OpType()]
	if !ok {
		class = fmt.Sprintf("op%d", w.OpType())
	}
	flags := ""
	if w.UpdatesFlags() {
		flags = " :F"
	}
	if w.IsNopMove() {
		return fmt.Sprintf("%s ->%s%s", class, w.DestName(), flags)
	}
	return fmt.Sprintf("%s %s->%s%s", class, w.SourceName(), w.DestName(), flags)
}

// microcodeHalfFiles lists the per-half source file names in read order, for
// either an 8086 ("a"-suffixed) or 8088 (unsuffixed) extraction.
func microcodeHalfFiles(half string, isI8088 bool) []string {
	suffix := "a"
	if isI8088 {
		suffix = ""
	}
	names := make([]string, 4)
	for i := 0; i < 4; i++ {
		names[i] = fmt.Sprintf("%s%d%s.txt", half, i, suffix)
	}
	return names
}

// readMicrocodeHalf loads and transposes one half (l or r) of the raw
// extraction: each half's four files stack into an 84-row grid that the die
// photograph records inverted and row-major; this undoes both, yielding one
// string per physical column.
func readMicrocodeHalf(dir, half string, isI8088 bool) ([]string, error) {
	var rows []string
	for _, name := range microcodeHalfFiles(half, isI8088) {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("decode: reading %s: %w", name, err)
		}
		for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
			if line == "" {
				continue
			}
			rows = append(rows, invertBits(line))
		}
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("decode: half %q is empty", half)
	}
	width := len(rows[0])
	cols := make([]string, width)
	for y := 0; y < width; y++ {
		b := make([]byte, len(rows))
		for x, row := range rows {
			if len(row) != width {
				return nil, fmt.Errorf("decode: half %q row %d has width %d, want %d", half, x, len(row), width)
			}
			b[x] = row[y]
		}
		cols[y] = string(b)
	}
	return cols, nil
}

func invertBits(s string) string {
	b := []byte(s)
	for i, c := range b {
		switch c {
		case '0':
			b[i] = '1'
		case '1':
			b[i] = '0'
		}
	}
	return string(b)
}

// LoadMicrocode reconstructs the 512-word microcode ROM from the l/r
// extraction files in dir, mirroring microcode_dump.py's read_microcode()
// bit-for-bit: invert, transpose, interleave the two halves, de-interleave
// each resulting row into four 21-bit words, and reverse the whole sequence
// to get the final address order.
func LoadMicrocode(dir string, isI8088 bool) ([512]MicrocodeWord, error) {
	var words [512]MicrocodeWord

	left, err := readMicrocodeHalf(dir, "l", isI8088)
	if err != nil {
		return words, err
	}
	right, err := readMicrocodeHalf(dir, "r", isI8088)
	if err != nil {
		return words, err
	}
	if len(left) != len(right) {
		return words, fmt.Errorf("decode: microcode halves differ in length: %d vs %d", len(left), len(right))
	}

	var interleaved []string
	for i := range left {
		interleaved = append(interleaved, left[i], right[i])
	}

	var rows []string
	for _, row := range interleaved {
		n := len(row)
		for i := 0; i < 4; i++ {
			var sb strings.Builder
			for x := 3 - i; x < n; x += 4 {
				sb.WriteByte(row[x])
			}
			rows = append(rows, sb.String())
		}
	}
	if len(rows) != 512 {
		return words, fmt.Errorf("decode: expected 512 microcode words, got %d", len(rows))
	}

	for i, row := range rows {
		v, err := strconv.ParseUint(row, 2, 21)
		if err != nil {
			return words, fmt.Errorf("decode: parsing microcode word %d (%q): %w", i, row, err)
		}
		// read_microcode() returns reversed(microcode): the row computed
		// last is the ROM's address 0.
		words[len(rows)-1-i] = MicrocodeWord(v)
	}
	return words, nil
}
