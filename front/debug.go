package front

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/davecgh/go-spew/spew"

	"github.com/phire/i8086front/biu"
	"github.com/phire/i8086front/bus"
)

// debugModel is the bubbletea model for the interactive front-end debugger,
// generalizing cpu/debugger.go's single-step CPU inspector to the BIU/
// loader/decode pipeline.
type debugModel struct {
	core *Core
	mem  bus.Memory
	tick int
	err  error
}

func (m debugModel) Init() tea.Cmd {
	return nil
}

func (m debugModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "j":
			m.core.Tick(m.mem)
			m.tick++
		case "r":
			m.core.Reset()
			m.tick = 0
		}
	}
	return m, nil
}

func (m debugModel) status() string {
	return fmt.Sprintf(`
tick:     %d
mode:     %d
t-state:  %d
loader:   %d
IP:       %#04x
CS:       %#04x
q count:  %d  q read: %d  q write: %d
opcode:   %#02x  operand: %#02x
column:   %#02x
word:     %s
`,
		m.tick,
		m.core.BIU.Mode,
		m.core.BIU.TState,
		m.core.Loader.State(),
		m.core.Regs.Peek(biu.RegIP),
		m.core.Regs.Peek(biu.RegCS),
		m.core.BIU.QCount, m.core.BIU.QReadPtr, m.core.BIU.QWritePtr,
		m.core.LastOpcode, m.core.LastOperand,
		m.core.LastColumn,
		m.core.LastWord,
	)
}

func (m debugModel) queueBytes() string {
	s := "queue: "
	qMax := m.core.BIU.QMax()
	for i := uint8(0); i < m.core.BIU.QCount; i++ {
		s += fmt.Sprintf("%02x ", m.core.Regs.QRead((m.core.BIU.QReadPtr+i)%qMax))
	}
	return s
}

func (m debugModel) View() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.status(),
		m.queueBytes(),
		"",
		"space/j: tick   r: reset   q: quit",
		"",
		spew.Sdump(m.core.LastWord),
	)
}

// Debug launches an interactive TUI over core, ticking it against mem on
// each keypress. It blocks until the user quits.
func (c *Core) Debug(mem bus.Memory) error {
	p := tea.NewProgram(debugModel{core: c, mem: mem})
	result, err := p.Run()
	if err != nil {
		return err
	}
	if m, ok := result.(debugModel); ok && m.err != nil {
		return m.err
	}
	return nil
}
