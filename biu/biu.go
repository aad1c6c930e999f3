package biu

import "github.com/phire/i8086front/bus"

// Mode is the Bus Interface Unit's bus-cycle state. Values follow
// bus_interface_unit.py's BIUMode enum; AddrCalc/Read/Write are reserved for
// non-prefetch bus cycles (operand reads/writes) that this front-end does
// not yet drive — only the prefetch path (QueueFetch*) is wired up.
type Mode uint8

const (
	ModeIdle Mode = iota
	ModeQueueFetchStart
	ModeQueueFetchAddrCalc
	ModeQueueFetchIPInc
	ModeQueueFetch
	ModeAddrCalc
	ModeRead
	ModeWrite
)

// BIU is the Bus Interface Unit: it owns the external address/data bus, the
// T-state counter, and the prefetch queue's read/write pointers. It reads
// and writes the segment/IP cells of a RegFile but does not own one itself,
// the same way bus_interface_unit.py's BusInterfaceUnit takes a
// BusRegFile as a submodule rather than embedding its storage directly.
type BIU struct {
	isI8088 bool

	Mode   Mode
	TState uint8 // 0 = bus idle, 1-4 = T1-T4 of an active bus cycle

	AddressBus   uint32
	AddressValid bool
	startMem     bool
	pendingAddr  uint32

	pendingIP uint16 // IP value carried from QueueFetchStart into AddrCalc/IPInc

	QReadPtr  uint8 // byte index into the queue, 0..qMax-1
	QWritePtr uint8 // byte index of the next queue slot to be written
	QCount    uint8 // bytes currently valid in the queue
	QOdd      bool  // true if the word fetch in flight started at an odd address
}

// NewBIU constructs a BIU in its reset (Idle, bus parked) state.
func NewBIU(isI8088 bool) *BIU {
	return &BIU{isI8088: isI8088}
}

// qMax is the queue's byte capacity: 6 bytes (three words) on the 8086, 4
// bytes (two words) on the 8088.
func (b *BIU) qMax() uint8 {
	if b.isI8088 {
		return 4
	}
	return 6
}

// QMax exposes qMax for callers outside the package (the debug TUI uses it
// to render the live queue contents correctly on both variants).
func (b *BIU) QMax() uint8 {
	return b.qMax()
}

// QBusValid reports whether QRead on the current RegFile would return a
// byte belonging to the live queue (as opposed to stale data from an empty
// queue).
func (b *BIU) QBusValid() bool {
	return b.QCount > 0
}

// add20 computes a segmented physical address: (segment<<4 + offset),
// wrapped to 20 bits. This is the BIU's one arithmetic operation, named
// after the adder's role in bus_interface_unit.py (`adder_result`).
func add20(segment, offset uint16) uint32 {
	return (uint32(segment)<<4 + uint32(offset)) & 0xfffff
}

// fetchAdvance is how many bytes a word fetch that started at an address of
// the given parity actually delivers to the queue: 2 for an aligned
// (even-address) fetch, 1 for a misaligned one, whose low byte lies below
// the fetch target and is discarded. The IP advances by the same
// amount, which is what brings a misaligned queue back into word alignment
// after exactly one realignment fetch.
func fetchAdvance(startedOdd bool) uint16 {
	if startedOdd {
		return 1
	}
	return 2
}

// writeQueueByte stores val at queue byte position pos (0..qMax-1),
// read-modifying the backing 16-bit cell so the other byte lane of that
// cell is preserved.
func (b *BIU) writeQueueByte(rf *RegFile, pos uint8, val byte) {
	cell := RegQueue0 + Reg(pos/2)
	old := rf.Peek(cell)
	var word uint16
	if pos&1 == 0 {
		word = (old & 0xff00) | uint16(val)
	} else {
		word = (old & 0x00ff) | uint16(val)<<8
	}
	rf.StageWrite(cell, word, true)
	rf.Commit()
}

// Tick advances the BIU by one clock. The T-state counter and address latch
// advance first, so the mode logic below sees this cycle's T-state (a fetch
// completes on the tick whose T-state is 4). Queue bytes are committed to rf
// as they are written; every other staged register-file write is committed
// before returning.
//
// qbusTake is the loader's request to consume one queued byte this cycle.
func (b *BIU) Tick(rf *RegFile, mem bus.Memory, qbusTake bool) {
	// T-state counter and start_mem latch: a bus cycle begins one cycle
	// after start_mem is raised, and runs T1-T4 before parking again.
	if b.startMem {
		b.AddressBus = b.pendingAddr
		b.AddressValid = true
		b.TState = 1
		b.startMem = false
	} else if b.TState == 4 {
		b.TState = 0
		b.AddressValid = false
	} else if b.TState != 0 {
		b.TState++
	}

	var qInc uint8

	switch b.Mode {
	case ModeIdle:
		// A fetch always delivers a full word's worth of bytes unless it
		// is realigning, so refuse to start one without two free slots —
		// staying at qMax-1 "stuck" any narrower would let an aligned
		// fetch overrun the queue's capacity.
		if b.QCount > b.qMax()-2 {
			b.Mode = ModeIdle
		} else {
			b.Mode = ModeQueueFetchStart
		}

	case ModeQueueFetchStart:
		// "Latches IP into the adder pipe": capture the IP this fetch
		// will use before anything downstream can change it.
		b.pendingIP = rf.Peek(RegIP)
		b.Mode = ModeQueueFetchAddrCalc

	case ModeQueueFetchAddrCalc:
		cs := rf.Peek(RegCS)
		// The bus always fetches an aligned word; a fetch starting at an odd
		// IP rounds its address down to the even boundary below it, so the
		// byte landing at AddressBus+1 is the one the odd IP actually asked
		// for.
		b.pendingAddr = add20(cs, b.pendingIP&^1)
		b.startMem = true
		b.Mode = ModeQueueFetchIPInc

	case ModeQueueFetchIPInc:
		odd := b.pendingIP&1 != 0
		delta := fetchAdvance(odd)
		rf.StageWrite(RegIP, b.pendingIP+delta, true)
		b.QOdd = odd
		b.Mode = ModeQueueFetch

	case ModeQueueFetch:
		if b.TState == 4 {
			lo := mem.Read(b.AddressBus)
			hi := mem.Read(b.AddressBus + 1)
			if b.QOdd {
				b.writeQueueByte(rf, b.QWritePtr, hi)
				b.QWritePtr = (b.QWritePtr + 1) % b.qMax()
				qInc = 1
			} else {
				b.writeQueueByte(rf, b.QWritePtr, lo)
				b.writeQueueByte(rf, (b.QWritePtr+1)%b.qMax(), hi)
				b.QWritePtr = (b.QWritePtr + 2) % b.qMax()
				qInc = 2
			}
			b.Mode = ModeIdle
		}

	case ModeAddrCalc, ModeRead, ModeWrite:
		// Non-prefetch bus cycles: not driven by this front-end.
	}

	var take uint8
	if qbusTake && b.QCount > 0 {
		take = 1
		if b.QReadPtr == b.qMax()-1 {
			b.QReadPtr = 0
		} else {
			b.QReadPtr++
		}
	}
	b.QCount = b.QCount + qInc - take

	rf.Commit()
}

// Reset returns the BIU to its power-on state: bus parked, queue empty,
// pointers zeroed. The RegFile is reset separately (NewRegFile), matching
// bus_interface_unit.py's and bus_regfile.py's independent reset domains.
func (b *BIU) Reset() {
	*b = BIU{isI8088: b.isI8088}
}
