package decode

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMicrocodeWordFieldRoundTrip(t *testing.T) {
	cases := []struct {
		source, dest, typ int
		flags             bool
	}{
		{source: 0, dest: 0, typ: 0, flags: false},
		{source: srcOnes, dest: destNone, typ: 4, flags: false},
		{source: srcZero, dest: 4, typ: 4, flags: true},
		{source: 31, dest: 31, typ: 7, flags: true},
		{source: 9, dest: 17, typ: 1, flags: false},
		{source: 3, dest: 3, typ: 6, flags: true},
	}
	for _, c := range cases {
		w := encodeMicrocodeWord(c.source, c.dest, c.typ, c.flags)
		assert.Equalf(t, c.source, w.Source(), "source for %+v", c)
		assert.Equalf(t, c.dest, w.Dest(), "dest for %+v", c)
		assert.Equalf(t, c.typ, w.OpType(), "typ for %+v", c)
		assert.Equalf(t, c.flags, w.UpdatesFlags(), "flags for %+v", c)
	}
}

func TestMicrocodeWordIsNop(t *testing.T) {
	assert.True(t, MicrocodeWord(0).IsNop())
	assert.False(t, encodeMicrocodeWord(1, 0, 4, false).IsNop())
}

func TestMicrocodeWordIsNopMove(t *testing.T) {
	w := encodeMicrocodeWord(srcOnes, destNone, 4, false)
	assert.True(t, w.IsNopMove())
	assert.False(t, encodeMicrocodeWord(srcZero, destNone, 4, false).IsNopMove())
}

func TestMicrocodeWordSourceNameOverrides(t *testing.T) {
	assert.Equal(t, "Q", encodeMicrocodeWord(srcQ, 0, 4, false).SourceName())
	assert.Equal(t, "SIGMA", encodeMicrocodeWord(srcSigma, 0, 4, false).SourceName())
	assert.Equal(t, "ONES", encodeMicrocodeWord(srcOnes, 0, 4, false).SourceName())
	assert.Equal(t, "CR", encodeMicrocodeWord(srcCR, 0, 4, false).SourceName())
	assert.Equal(t, "ZERO", encodeMicrocodeWord(srcZero, 0, 4, false).SourceName())
	assert.Equal(t, "A", encodeMicrocodeWord(8, 0, 4, false).SourceName())
}

func TestMicrocodeWordStringIsNeverEmpty(t *testing.T) {
	assert.NotEmpty(t, MicrocodeWord(0).String())
	assert.NotEmpty(t, encodeMicrocodeWord(8, 9, 1, true).String())
}

// writeLines writes a single line of exactly 64 bits to dir/name.
func writeLines(t *testing.T, dir, name, line string) {
	t.Helper()
	require.Len(t, line, 64)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(line+"\n"), 0o644))
}

// TestLoadMicrocodeSingleBitFlip builds a minimal (one line per file, 64
// bits wide) extraction where every bit is identical across both halves and
// all four files except a single flipped bit in l0a.txt, then checks the
// result against a hand-traced expectation: the reconstruction pipeline
// (invert -> transpose -> interleave -> de-interleave -> reverse) carries
// that single flipped bit to exactly one of the 512 output words.
func TestLoadMicrocodeSingleBitFlip(t *testing.T) {
	dir := t.TempDir()

	ones64 := ""
	for i := 0; i < 64; i++ {
		ones64 += "1"
	}
	flipped := "0" + ones64[1:]

	writeLines(t, dir, "l0a.txt", flipped)
	writeLines(t, dir, "l1a.txt", ones64)
	writeLines(t, dir, "l2a.txt", ones64)
	writeLines(t, dir, "l3a.txt", ones64)
	writeLines(t, dir, "r0a.txt", ones64)
	writeLines(t, dir, "r1a.txt", ones64)
	writeLines(t, dir, "r2a.txt", ones64)
	writeLines(t, dir, "r3a.txt", ones64)

	words, err := LoadMicrocode(dir, false)
	require.NoError(t, err)

	for i, w := range words {
		if i == 508 {
			assert.Equalf(t, MicrocodeWord(1), w, "word %d", i)
			continue
		}
		assert.Equalf(t, MicrocodeWord(0), w, "word %d", i)
	}
}

func TestLoadMicrocodeMissingFileIsNamedError(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadMicrocode(dir, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "l0a.txt")
}

func TestLoadMicrocode8088UsesUnsuffixedFiles(t *testing.T) {
	dir := t.TempDir()
	ones64 := ""
	for i := 0; i < 64; i++ {
		ones64 += "1"
	}
	for _, half := range []string{"l", "r"} {
		for i := 0; i < 4; i++ {
			writeLines(t, dir, fmt.Sprintf("%s%d.txt", half, i), ones64)
		}
	}
	words, err := LoadMicrocode(dir, true)
	require.NoError(t, err)
	for i, w := range words {
		assert.Equalf(t, MicrocodeWord(0), w, "word %d", i)
	}
}
