// Command i8086front drives the 8086/8088 Bus Interface Unit and
// instruction-decode front end from the command line: headless tracing,
// an interactive TUI, and a zero-setup demo against the embedded fixture.
package main

import (
	"fmt"
	"os"

	"github.com/phire/i8086front/bus"
	"github.com/phire/i8086front/decode"
	"github.com/phire/i8086front/front"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "i8086front",
		Short: "8086/8088 Bus Interface Unit and instruction-decode front end",
	}

	var (
		ticks        int
		is8088       bool
		microcodeDir string
		memFile      string
		verbose      bool
	)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run headlessly for a fixed number of ticks, printing a trace",
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := loadTables(microcodeDir, is8088)
			if err != nil {
				return err
			}

			mem := bus.NewFlatMemory()
			if memFile != "" {
				data, err := os.ReadFile(memFile)
				if err != nil {
					return fmt.Errorf("reading %s: %w", memFile, err)
				}
				mem.LoadBytes(data, 0)
			}

			c := front.New(front.Config{
				IsI8088:   is8088,
				Group:     tables.Group,
				Selector:  tables.Selector,
				Microcode: tables.Microcode,
				Logger:    stdoutLogger{verbose: verbose},
			})

			for i := 0; i < ticks; i++ {
				c.Tick(mem)
			}
			fmt.Printf("ran %d ticks, last opcode %#02x, last column %#02x\n", ticks, c.LastOpcode, c.LastColumn)
			return nil
		},
	}
	runCmd.Flags().IntVar(&ticks, "ticks", 100, "Number of clock ticks to run")
	runCmd.Flags().BoolVar(&is8088, "8088", false, "Model the 8088 (8-bit bus, 4-byte queue) instead of the 8086")
	runCmd.Flags().StringVar(&microcodeDir, "microcode-dir", "", "Directory of extracted microcode/selector/group-decode files (omit to use the embedded demo fixture)")
	runCmd.Flags().StringVar(&memFile, "mem", "", "Binary file to load at physical address 0")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every decoded instruction byte")

	debugCmd := &cobra.Command{
		Use:   "debug",
		Short: "Launch the interactive TUI debugger",
		RunE: func(cmd *cobra.Command, args []string) error {
			tables, err := loadTables(microcodeDir, is8088)
			if err != nil {
				return err
			}
			mem := bus.NewFlatMemory()
			if memFile != "" {
				data, err := os.ReadFile(memFile)
				if err != nil {
					return fmt.Errorf("reading %s: %w", memFile, err)
				}
				mem.LoadBytes(data, 0)
			}
			c := front.New(front.Config{
				IsI8088:   is8088,
				Group:     tables.Group,
				Selector:  tables.Selector,
				Microcode: tables.Microcode,
			})
			return c.Debug(mem)
		},
	}
	debugCmd.Flags().BoolVar(&is8088, "8088", false, "Model the 8088 instead of the 8086")
	debugCmd.Flags().StringVar(&microcodeDir, "microcode-dir", "", "Directory of extracted table files (omit to use the embedded demo fixture)")
	debugCmd.Flags().StringVar(&memFile, "mem", "", "Binary file to load at physical address 0")

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the embedded NOP-decode demo: no table files required",
		RunE: func(cmd *cobra.Command, args []string) error {
			tables := decode.EmbeddedSubset()
			mem := bus.NewFlatMemory()
			mem.LoadBytes([]byte{0x90}, 0xffff0) // NOP at the reset vector

			c := front.New(front.Config{
				Group:     tables.Group,
				Selector:  tables.Selector,
				Microcode: tables.Microcode,
				Logger:    stdoutLogger{verbose: true},
			})
			// Stop after the NOP's decode (tick 8) and before the next
			// opcode is taken (tick 15).
			for i := 0; i < 10; i++ {
				c.Tick(mem)
			}
			fmt.Printf("decoded opcode %#02x -> column %#02x -> %s\n", c.LastOpcode, c.LastColumn, c.LastWord)
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, debugCmd, demoCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadTables returns the embedded demo fixture when dir is empty, or loads
// a real extraction from dir otherwise.
func loadTables(dir string, isI8088 bool) (decode.EmbeddedTables, error) {
	if dir == "" {
		return decode.EmbeddedSubset(), nil
	}

	microcode, err := decode.LoadMicrocode(dir, isI8088)
	if err != nil {
		return decode.EmbeddedTables{}, err
	}
	entries, err := decode.LoadColumnSelector(dir)
	if err != nil {
		return decode.EmbeddedTables{}, err
	}
	group, err := decode.LoadGroupDecode(dir + "/group_decode.txt")
	if err != nil {
		return decode.EmbeddedTables{}, err
	}
	return decode.EmbeddedTables{
		Group:     group,
		Selector:  decode.NewColumnSelector(entries),
		Microcode: microcode,
	}, nil
}

// stdoutLogger is the CLI's front.Logger: every event when verbose, nothing
// otherwise (run without -v just prints the final summary line).
type stdoutLogger struct {
	verbose bool
}

func (l stdoutLogger) Logf(format string, args ...any) {
	if !l.verbose {
		return
	}
	fmt.Printf(format+"\n", args...)
}
