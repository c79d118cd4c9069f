// Package console implements a line-oriented command shell on top of the
// drivers in this module, meant to be fed from a serial port.
//
// Each line is split into words with shell quoting rules, the first word is
// looked up in the command table and the command gets its own copy of the
// words. Commands report failures as errors, which the shell prints; nothing
// here ever stops the shell or resets a device.
package console

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/google/shlex"

	"i2cperiph"
	"i2cperiph/at24cx"
	"i2cperiph/ds3231"
)

// MaxLine is the longest accepted input line. Further characters are dropped
// until the line is terminated.
const MaxLine = 80

const (
	colorYellow = "\033[33m"
	colorReset  = "\033[0m"
)

var (
	ErrUnknownCommand = errors.New("command not found")
	ErrArgCount       = errors.New("invalid arg count")
	ErrUsage          = errors.New("usage")
)

// Args holds the words of one command line, the command name first.
type Args []string

// Uint parses argument i as decimal, or as hex with a 0x prefix. Leading
// zeros are decimal, so zero-padded clock fields like "08" read as written.
func (a Args) Uint(i, bitSize int) (uint64, error) {
	if i >= len(a) {
		return 0, fmt.Errorf("%w: missing argument %d", ErrArgCount, i)
	}
	s, base := a[i], 0
	if len(s) > 1 && s[0] == '0' && s[1] >= '0' && s[1] <= '9' {
		base = 10
	}
	v, err := strconv.ParseUint(s, base, bitSize)
	if err != nil {
		return 0, fmt.Errorf("argument %d: %w", i, err)
	}
	return v, nil
}

func (a Args) Uint8(i int) (uint8, error) {
	v, err := a.Uint(i, 8)
	return uint8(v), err
}

func (a Args) Uint16(i int) (uint16, error) {
	v, err := a.Uint(i, 16)
	return uint16(v), err
}

type Command struct {
	Name string
	Help string
	// Args is the minimum number of words, the command name included.
	Args int
	Run  func(sh *Shell, args Args) error
}

// Shell is not safe for concurrent use; it owns the bus while a command runs.
type Shell struct {
	out      io.Writer
	bus      *i2cperiph.Bus
	store    *at24cx.Device
	clock    *ds3231.Device
	commands []Command
	line     []byte
}

func New(out io.Writer, bus *i2cperiph.Bus, store *at24cx.Device, clock *ds3231.Device) *Shell {
	return &Shell{
		out:      out,
		bus:      bus,
		store:    store,
		clock:    clock,
		commands: commands(),
		line:     make([]byte, 0, MaxLine),
	}
}

// Commands returns the command table.
func (sh *Shell) Commands() []Command {
	return sh.commands
}

// Greet prints the banner and the first prompt.
func (sh *Shell) Greet() {
	fmt.Fprintf(sh.out, "\n%sCommand Line parser%s\n", colorYellow, colorReset)
	fmt.Fprintf(sh.out, "%sEnter \"help\" or \"?\" for list of commands%s\n", colorYellow, colorReset)
	fmt.Fprint(sh.out, ">")
}

// HandleByte feeds one received character to the line editor. Printable
// characters are echoed, backspace erases, and CR or LF runs the line.
func (sh *Shell) HandleByte(c byte) {
	switch {
	case c == '\r' || c == '\n':
		line := string(sh.line)
		sh.line = sh.line[:0]
		if line != "" {
			fmt.Fprint(sh.out, "\n")
			if err := sh.Exec(line); err != nil {
				sh.printError(err)
			}
		}
		fmt.Fprint(sh.out, "\n>")
	case c == '\b' || c == 0x7F:
		if len(sh.line) > 0 {
			fmt.Fprint(sh.out, "\b \b")
			sh.line = sh.line[:len(sh.line)-1]
		}
	case c >= ' ' && c <= '~':
		if len(sh.line) < MaxLine {
			sh.out.Write([]byte{c})
			sh.line = append(sh.line, c)
		}
	}
}

// Exec runs a single command line.
func (sh *Shell) Exec(line string) error {
	words, err := shlex.Split(line)
	if err != nil {
		return err
	}
	if len(words) == 0 {
		return nil
	}
	for _, cmd := range sh.commands {
		if cmd.Name != words[0] {
			continue
		}
		if len(words) < cmd.Args {
			return fmt.Errorf("%w: %d, expected: %d", ErrArgCount, len(words)-1, cmd.Args-1)
		}
		return cmd.Run(sh, Args(words))
	}
	return fmt.Errorf("%w: %q", ErrUnknownCommand, words[0])
}

func (sh *Shell) printError(err error) {
	fmt.Fprintf(sh.out, "error: %v\n", err)
}

func (sh *Shell) printf(format string, a ...interface{}) {
	fmt.Fprintf(sh.out, format, a...)
}

func commands() []Command {
	return []Command{
		{"?", "display help menu", 1, help},
		{"help", "display help menu", 1, help},
		{"i2cscan", "scan i2c bus for connected devices", 1, i2cScan},
		{"i2cdump", "i2cdump <i2c address>", 2, i2cDump},
		{"i2cget", "i2cget <i2c address> <register>", 3, i2cGet},
		{"i2cset", "i2cset <i2c address> <register> <value>", 4, i2cSet},
		{"time", "time <hrs min sec>", 1, clockTime},
		{"date", "date <mm dd yy>", 1, clockDate},
		{"ts", "Unix time (in seconds)", 1, clockTimestamp},
		{"temp", "RTC temperature", 1, clockTemperature},
		{"eeread", "eeread <count>, read from start of eeprom", 1, eepromRead},
		{"eewrite", "write test string to start of eeprom", 1, eepromWrite},
		{"eedump", "dump entire eeprom", 1, eepromDump},
		{"eefill", "fill eeprom with 0x00-0xFF pattern", 1, eepromFill},
		{"eetest", "write/read/compare 256 bytes at 0x457", 1, eepromTest},
	}
}

// commentColumn lines up the comments in the help listing.
const commentColumn = 12

func help(sh *Shell, _ Args) error {
	sh.printf("Help - command list\n")
	sh.printf("%-*s%s\n", commentColumn, "Command", "Comment")
	for _, cmd := range sh.commands {
		sh.printf("%-*s%s\n", commentColumn, cmd.Name, cmd.Help)
	}
	return nil
}
