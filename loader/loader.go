// Package loader implements the instruction loader: the state machine that
// times when decode pulls the first and second instruction bytes out of the
// prefetch queue, relative to the microcode sequencer finishing or
// prefetching ahead.
package loader

// State is one of the instruction loader's four states, matching
// instruction_loader.py's State enum.
type State uint8

const (
	// WaitFirstByte: idle, waiting for a byte to begin decoding a new
	// instruction.
	WaitFirstByte State = iota
	// WaitSecondByte: the first byte has been taken; waiting for the
	// second (used by two-byte opcodes and the 0F escape).
	WaitSecondByte
	// ExecutingMicrocode: a microcode routine is running; the loader
	// stalls here until it signals RNI (run next instruction) or NXT
	// (prefetch one more byte without finishing).
	ExecutingMicrocode
	// Prefetch: a byte was pulled ahead of need (NXT fired); the next
	// queue-ready byte becomes the second byte rather than a fresh first
	// byte.
	Prefetch
)

// Loader is the instruction loader state machine.
type Loader struct {
	state State

	pendingState       State
	pendingFirstClock  bool
	pendingSecondClock bool
}

// New constructs a Loader in its power-on state, WaitFirstByte. (The Reset
// input instead moves the loader to ExecutingMicrocode.)
func New() *Loader {
	return &Loader{state: WaitFirstByte}
}

// State returns the loader's current (already-committed) state.
func (l *Loader) State() State {
	return l.state
}

// Inputs bundles everything ComputeNext reads this cycle.
type Inputs struct {
	QueueReady  bool // the BIU has a byte available to consume
	Nxt         bool // microcode requests a prefetch byte without finishing
	Rni         bool // microcode signals run-next-instruction (finished)
	NoMicrocode bool // the just-decoded opcode has no microcode routine
	SingleByte  bool // treated exactly like QueueReady, even if QueueReady is false
	Reset       bool
}

// ComputeNext evaluates the next state and this cycle's pulse outputs from
// in and the current (pre-commit) state, without mutating l. Call Commit to
// apply the result. The branch order below mirrors
// instruction_loader.py's elaborate() exactly: Reset and NoMicrocode
// short-circuit everything else, then a queue-ready/single-byte byte
// advances whichever state is waiting for it, and otherwise a stalled
// ExecutingMicrocode or Prefetch state can still resolve on RNI alone.
func (l *Loader) ComputeNext(in Inputs) {
	next := l.state
	first := false
	second := false

	switch {
	case in.Reset:
		next = ExecutingMicrocode

	case in.NoMicrocode:
		next = WaitFirstByte

	case in.QueueReady || in.SingleByte:
		switch l.state {
		case WaitFirstByte:
			first = true
			next = WaitSecondByte
		case WaitSecondByte, Prefetch:
			second = true
			next = ExecutingMicrocode
		case ExecutingMicrocode:
			if in.Rni || in.Nxt {
				first = true
				if in.Rni {
					next = WaitSecondByte
				} else {
					next = Prefetch
				}
			}
		}

	case l.state == ExecutingMicrocode:
		if in.Rni {
			next = WaitFirstByte
		}

	case l.state == Prefetch:
		if in.Rni {
			next = WaitSecondByte
		}
	}

	l.pendingState = next
	l.pendingFirstClock = first
	l.pendingSecondClock = second
}

// Commit applies the result of the last ComputeNext call. FirstClock and
// SecondClock report the pulses that fired in the cycle just committed.
func (l *Loader) Commit() (firstClock, secondClock bool) {
	l.state = l.pendingState
	firstClock, secondClock = l.pendingFirstClock, l.pendingSecondClock
	l.pendingFirstClock = false
	l.pendingSecondClock = false
	return firstClock, secondClock
}

// Tick is the single-call convenience form of ComputeNext followed by
// Commit, for callers that don't need to interleave other components'
// ComputeNext calls in between.
func (l *Loader) Tick(in Inputs) (firstClock, secondClock bool) {
	l.ComputeNext(in)
	return l.Commit()
}
