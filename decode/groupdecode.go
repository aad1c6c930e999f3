package decode

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/phire/i8086front/bitfield"
)

// numGroupColumns and numGroupRows are the group-decode PLA's fixed shape:
// 38 columns of ternary pattern matching over the 9-bit input, 15 rows each
// NORing together whichever subset of columns they're wired to.
const (
	numGroupColumns = 38
	numGroupRows    = 15
)

// GroupColumn identifies one of the 38 PLA columns. Only 10 of the 38 are
// tapped directly for their own control signal (group_decode.py's
// GroupColumn enum); the rest feed only into row NORs and have no name of
// their own, so they're addressed by bare index.
type GroupColumn int

const (
	ColLoadRegImm      GroupColumn = 10
	ColWidthInBit0     GroupColumn = 12
	ColCMC             GroupColumn = 13
	ColHLT             GroupColumn = 14
	ColREP             GroupColumn = 31
	ColSegmentOverride GroupColumn = 32
	ColLock            GroupColumn = 33
	ColCLI             GroupColumn = 34
	ColMovSeg          GroupColumn = 36
	ColPopSeg          GroupColumn = 37
)

// GroupRow names one of the 15 PLA rows, following group_decode.py's
// GroupRow enum. Each row is true exactly when none of its masked columns
// matched: a classic wired-NOR PLA term.
type GroupRow int

const (
	RowIsIO            GroupRow = iota // set only on in/out instructions
	RowLoadM                           // load the first byte's low 3 bits into M
	RowRToMicrocode                    // replace the microcode address's low 3 bits with modrm's reg field (grp1/2)
	RowIsPrefix                        // a prefix byte (segment override, rep, lock)
	RowOneByte                         // run microcode after just the first byte
	RowLoadN                           // load bits 3-5 of the first byte into N
	RowFlags                           // the instruction updates flags
	RowIsAccumulator                   // second byte is not a mod-R/M byte
	RowMovSeg                          // M names a segment register
	RowDirectionInBit1                 // read/write direction comes from bit 1
	RowNoMicrocode                     // no microcode routine runs for this opcode
	RowWidthInBit0                     // operand width comes from bit 0
	RowUnk12                           // covers ASCII adjust instructions and XLAT
	RowUnk13                           // control flow and the 80-87 immediate ALU group
	RowUnk14                           // set for everything except inc/dec, some control flow, some push/pop
)

// GroupDecode is the opcode group-decode PLA: a bank of 38 ternary patterns
// (Columns) tested against the opcode/modrm bits, feeding 15 row terms
// (RowMasks) that each fire when none of their associated columns matched.
type GroupDecode struct {
	Columns  [numGroupColumns]bitfield.Pattern
	RowMasks [numGroupRows]uint64
}

// Evaluate tests input (the opcode byte and any decode-relevant modrm bits,
// packed as the caller's convention dictates) against every column, then
// derives the row vector from the column result.
func (g *GroupDecode) Evaluate(input uint32) (columns uint64, rows uint32) {
	for i, p := range g.Columns {
		if p.Match(input) {
			columns |= 1 << uint(i)
		}
	}
	for i, mask := range g.RowMasks {
		if columns&mask == 0 {
			rows |= 1 << uint(i)
		}
	}
	return columns, rows
}

// Column reports whether col fired in a columns vector returned by Evaluate.
func (g *GroupDecode) Column(columns uint64, col GroupColumn) bool {
	return columns&(1<<uint(col)) != 0
}

// Row reports whether row fired in a rows vector returned by Evaluate.
func (g *GroupDecode) Row(rows uint32, row GroupRow) bool {
	return rows&(1<<uint(row)) != 0
}

// LoadGroupDecode reads a GroupDecode table from a simple line-oriented text
// format: numGroupColumns lines of a 9-character ternary pattern ('0'/'1'/
// '-'), a blank separator line, then numGroupRows lines of a
// numGroupColumns-character '0'/'1' mask (the columns gating that row's
// NOR). This format is our own — the real group-decode PLA's extraction
// files (the die-photograph column/row pattern dump `group_decode.py` reads
// via `microcode_dump.group_input`/`group_output`) were never recovered
// from the source material this was built against — and is documented as
// such rather than presented as an authentic die dump. The column/row
// *names* above, however, are the real ones from group_decode.py's own
// GroupColumn/GroupRow enums.
func LoadGroupDecode(path string) (*GroupDecode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("decode: opening %s: %w", path, err)
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("decode: reading %s: %w", path, err)
	}

	want := numGroupColumns + numGroupRows
	if len(lines) != want {
		return nil, fmt.Errorf("decode: %s has %d data lines, want %d", path, len(lines), want)
	}

	g := &GroupDecode{}
	for i := 0; i < numGroupColumns; i++ {
		if len(lines[i]) != 9 || strings.Trim(lines[i], "01-*") != "" {
			return nil, fmt.Errorf("decode: %s column pattern %d %q is not 9 ternary characters", path, i, lines[i])
		}
		g.Columns[i] = bitfield.ParsePattern(lines[i])
	}
	for i := 0; i < numGroupRows; i++ {
		line := lines[numGroupColumns+i]
		if len(line) != numGroupColumns {
			return nil, fmt.Errorf("decode: %s row mask %d has width %d, want %d", path, i, len(line), numGroupColumns)
		}
		var mask uint64
		for col, c := range line {
			if c == '1' {
				mask |= 1 << uint(col)
			}
		}
		g.RowMasks[i] = mask
	}
	return g, nil
}
