// Package front wires the Bus Interface Unit, the instruction loader, and
// the decode tables together into a single clockable core. It stops exactly
// where the microcode sequencer would start actually executing a routine
// (ALU operations, the execution-unit register file, mod-R/M effective-
// address math): this package decodes a fetched byte down to a microcode
// ROM entry point and reports it, rather than stepping through the ROM.
package front

import (
	"github.com/phire/i8086front/biu"
	"github.com/phire/i8086front/bus"
	"github.com/phire/i8086front/decode"
	"github.com/phire/i8086front/loader"
)

// Core is one instantiation of the front end: a BIU/RegFile pair, the
// decode tables, and the instruction loader that times them together.
type Core struct {
	BIU    *biu.BIU
	Regs   *biu.RegFile
	Loader *loader.Loader

	group     *decode.GroupDecode
	selector  *decode.ColumnSelector
	microcode [512]decode.MicrocodeWord
	cfg       Config

	// LastOpcode/LastOperand are the most recent bytes the loader pulled
	// from the queue via its first/second clock pulses.
	LastOpcode  byte
	LastOperand byte

	// LastColumns/LastRows are the group-decode PLA's result for
	// LastOpcode; LastColumn/LastWord are the column selector's and
	// microcode ROM's results derived from it.
	LastColumns uint64
	LastRows    uint32
	LastColumn  uint8
	LastWord    decode.MicrocodeWord
}

// New builds a Core from cfg, starting the BIU and register file at their
// power-on reset state.
func New(cfg Config) *Core {
	return &Core{
		BIU:       biu.NewBIU(cfg.IsI8088),
		Regs:      biu.NewRegFile(cfg.IsI8088),
		Loader:    loader.New(),
		group:     cfg.Group,
		selector:  cfg.Selector,
		microcode: cfg.Microcode,
		cfg:       cfg,
	}
}

// Tick advances every sub-component by one clock, in the same
// compute-then-commit order their own Tick/ComputeNext+Commit methods
// already enforce internally: reading the loader's state decides whether to
// consume a queue byte this cycle, the BIU is ticked with that decision (so
// its queue-pointer advance reflects it), and only then is the consumed
// byte, if any, run through the decode tables.
//
// This Core does not model the microcode sequencer stepping through a
// routine — that needs the ALU and execution-unit register file this
// front-end explicitly excludes. Instead, ExecutingMicrocode is treated as
// resolving on the tick after it is entered (Rni is asserted whenever the
// loader is already in that state), so every decoded instruction reports
// its entry point exactly once rather than being walked to completion.
func (c *Core) Tick(mem bus.Memory) {
	ready := c.BIU.QBusValid()
	rni := c.Loader.State() == loader.ExecutingMicrocode

	firstClock, secondClock := c.Loader.Tick(loader.Inputs{
		QueueReady: ready,
		Rni:        rni,
	})

	take := firstClock || secondClock
	var consumed byte
	if take {
		consumed = c.Regs.QRead(c.BIU.QReadPtr)
	}

	c.BIU.Tick(c.Regs, mem, take)

	switch {
	case firstClock:
		c.LastOpcode = consumed
		c.LastColumns, c.LastRows = c.group.Evaluate(uint32(consumed))
		c.LastColumn = c.selector.Select(uint16(consumed))
		c.LastWord = c.microcode[c.LastColumn]
		c.cfg.logger().Logf("first byte %#02x -> column %#02x word %s", consumed, c.LastColumn, c.LastWord)
	case secondClock:
		c.LastOperand = consumed
		c.cfg.logger().Logf("second byte %#02x", consumed)
	}
}

// Reset returns the BIU, register file, and loader to their power-on
// states. The loader restarts in WaitFirstByte; no microcode reset routine
// is started.
func (c *Core) Reset() {
	c.BIU.Reset()
	c.Regs = biu.NewRegFile(c.cfg.IsI8088)
	c.Loader = loader.New()
}
