// Package console implements the resistance terminal at the foot of the page.
package console

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/lixenwraith/attention-era/constants"
	"github.com/lixenwraith/attention-era/content"
	"github.com/lixenwraith/attention-era/engine"
)

// LineKind separates echoed input from replies
type LineKind uint8

const (
	LineReply LineKind = iota
	LinePrompt
)

// Line is one row of console output
type Line struct {
	Kind LineKind
	Text string
}

// Command produces a reply for its arguments
type Command func(c *Console, args []string) string

// Console holds the prompt buffer and scrollback; owned by the loop goroutine
type Console struct {
	text     content.Console
	rng      *rand.Rand
	timers   *engine.TimerSet
	commands map[string]Command
	extra    []string // help lines for registered commands

	input  []rune
	output []Line
}

// New creates a console with the built-in command set
func New(clock engine.Clock, rng *rand.Rand, text content.Console) *Console {
	c := &Console{
		text:   text,
		rng:    rng,
		timers: engine.NewTimerSet(clock),
	}
	c.commands = map[string]Command{
		"help":    cmdHelp,
		"clear":   cmdClear,
		"status":  cmdStatus,
		"connect": cmdConnect,
		"scan":    cmdScan,
		"echo":    cmdEcho,
	}
	return c
}

// Register adds or replaces a command; a non-empty usage is listed by help
func (c *Console) Register(name, usage string, cmd Command) {
	name = strings.ToLower(name)
	c.commands[name] = cmd
	if usage != "" {
		c.extra = append(c.extra, "  "+name+" - "+usage)
	}
}

// Commands returns the registered names, sorted
func (c *Console) Commands() []string {
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Type appends a rune to the prompt
func (c *Console) Type(r rune) {
	if len(c.input) >= constants.ConsoleInputLimit {
		return
	}
	c.input = append(c.input, r)
}

// Backspace removes the last prompt rune
func (c *Console) Backspace() {
	if len(c.input) > 0 {
		c.input = c.input[:len(c.input)-1]
	}
}

// Input returns the current prompt text
func (c *Console) Input() string {
	return string(c.input)
}

// Output returns the scrollback, oldest first
func (c *Console) Output() []Line {
	return c.output
}

// Greeting is shown while the scrollback is empty
func (c *Console) Greeting() string {
	return c.text.Greeting
}

// Title is the terminal window caption
func (c *Console) Title() string {
	return c.text.Title
}

// Submit runs the prompt as a command line; blank input is ignored
func (c *Console) Submit() {
	line := string(c.input)
	c.input = c.input[:0]
	c.Exec(line)
}

// Exec runs one command line and appends its echo and reply
func (c *Console) Exec(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}
	c.append(Line{Kind: LinePrompt, Text: "> " + line})

	fields := strings.Fields(strings.ToLower(trimmed))
	name, args := fields[0], fields[1:]

	cmd, ok := c.commands[name]
	if !ok {
		c.reply(fmt.Sprintf("Command not found: %s. Type 'help' for available commands.", name))
		return
	}
	c.reply(cmd(c, args))
}

// Clear wipes the scrollback
func (c *Console) Clear() {
	c.output = c.output[:0]
}

// Stop cancels a pending clear
func (c *Console) Stop() {
	c.timers.CancelAll()
}

func (c *Console) reply(text string) {
	for _, l := range strings.Split(text, "\n") {
		c.append(Line{Kind: LineReply, Text: l})
	}
}

func (c *Console) append(l Line) {
	c.output = append(c.output, l)
	if over := len(c.output) - constants.ConsoleHistory; over > 0 {
		c.output = append(c.output[:0], c.output[over:]...)
	}
}

func cmdHelp(c *Console, _ []string) string {
	help := "Available commands:\n" +
		"  help - Show this help\n" +
		"  clear - Clear the terminal\n" +
		"  status - Display system status\n" +
		"  connect - Attempt connection to resistance network\n" +
		"  scan - Scan for surveillance\n" +
		"  echo [text] - Echo text back to terminal"
	for _, line := range c.extra {
		help += "\n" + line
	}
	return help
}

func cmdClear(c *Console, _ []string) string {
	c.timers.After(constants.ConsoleClearDelay, c.Clear)
	return "Clearing terminal..."
}

func cmdStatus(c *Console, _ []string) string {
	resistance := "LOW"
	if c.rng.Float64() > 0.5 {
		resistance = "MODERATE"
	}
	return "SYSTEM STATUS:\n" +
		"  Attention harvesters: ACTIVE\n" +
		"  Neural resistance: " + resistance + "\n" +
		fmt.Sprintf("  Memory corruption: %d%%\n", c.rng.IntN(100)) +
		"  Consciousness fragmentation: SEVERE"
}

func cmdConnect(c *Console, _ []string) string {
	replies := c.text.Connect
	if len(replies) == 0 {
		return "ERROR: Resistance network currently offline."
	}
	return replies[c.rng.IntN(len(replies))]
}

func cmdScan(c *Console, _ []string) string {
	integrity := "STABLE"
	if c.rng.Float64() > 0.5 {
		integrity = "COMPROMISED"
	}
	return "SCANNING ENVIRONMENT...\n" +
		fmt.Sprintf("  %d tracking mechanisms detected\n", c.rng.IntN(10)+3) +
		"  Neural interface integrity: " + integrity + "\n" +
		"  Safe communication channels: LIMITED"
}

func cmdEcho(_ *Console, args []string) string {
	if len(args) == 0 {
		return "Error: Nothing to echo"
	}
	return strings.Join(args, " ")
}
