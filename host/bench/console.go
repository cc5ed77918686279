package bench

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/google/shlex"
)

// CommandHandler runs a console command. args excludes the command name.
type CommandHandler func(args []string) error

// Command is one console command
type Command struct {
	Name    string
	Usage   string // argument synopsis, e.g. "[SLOT [mA]]"
	Help    string
	Handler CommandHandler
}

// Console maps command names to handlers
type Console struct {
	mu       sync.RWMutex
	commands map[string]*Command
	out      io.Writer
}

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
)

// NewConsole creates an empty console writing help text to out
func NewConsole(out io.Writer) *Console {
	return &Console{
		commands: make(map[string]*Command),
		out:      out,
	}
}

// Register adds a command. Registering a name twice keeps the first.
func (c *Console) Register(cmd *Command) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.commands[cmd.Name]; exists {
		return false
	}
	c.commands[cmd.Name] = cmd
	return true
}

// Lookup finds a command by name
func (c *Console) Lookup(name string) (*Command, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cmd, ok := c.commands[name]
	return cmd, ok
}

// Names returns the registered command names in sorted order
func (c *Console) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.commands))
	for name := range c.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Exec splits a line shell-style and dispatches it. Blank lines and
// comments are ignored.
func (c *Console) Exec(line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("parse %q: %w", line, err)
	}
	if len(args) == 0 {
		return nil
	}

	cmd, ok := c.Lookup(args[0])
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
	if err := cmd.Handler(args[1:]); err != nil {
		if errors.Is(err, ErrUsage) {
			return fmt.Errorf("%w: %s %s", ErrUsage, cmd.Name, cmd.Usage)
		}
		return fmt.Errorf("%s: %w", cmd.Name, err)
	}
	return nil
}

// PrintHelp lists every command
func (c *Console) PrintHelp() {
	for _, name := range c.Names() {
		cmd, _ := c.Lookup(name)
		fmt.Fprintf(c.out, "  %-10s %-16s %s\n", cmd.Name, cmd.Usage, cmd.Help)
	}
}
