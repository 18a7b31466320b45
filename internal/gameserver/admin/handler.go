// Package admin runs the server operator's console: a case-insensitive
// registry of world-wide commands read line by line from the terminal.
package admin

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
)

// Command is one console command.
type Command interface {
	// Handle executes the command. args includes the command name at [0].
	// Output for the operator goes to out.
	Handle(ctx context.Context, out io.Writer, args []string) error
	// Names returns all registered command names.
	Names() []string
}

// Handler dispatches console commands.
// Thread-safe: commands are registered once at startup, then read-only.
type Handler struct {
	mu   sync.RWMutex
	cmds map[string]Command // name → Command (lowercase)
}

// NewHandler creates an empty command registry.
func NewHandler() *Handler {
	return &Handler{
		cmds: make(map[string]Command, 16),
	}
}

// Register adds cmd under each of its names, lowercased.
func (h *Handler) Register(cmd Command) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, name := range cmd.Names() {
		h.cmds[strings.ToLower(name)] = cmd
	}
}

// HandleLine executes one console line. Returns true if a command was
// found and executed; failures are reported to out.
func (h *Handler) HandleLine(ctx context.Context, out io.Writer, text string) bool {
	parts := strings.Fields(text)
	if len(parts) == 0 {
		return false
	}
	cmdName := strings.ToLower(parts[0])

	h.mu.RLock()
	cmd, ok := h.cmds[cmdName]
	h.mu.RUnlock()

	if !ok {
		fmt.Fprintf(out, "Unknown command: %s (try: %s)\n", cmdName, strings.Join(h.Names(), ", "))
		return false
	}

	slog.Info("admin command", "command", text)

	if err := cmd.Handle(ctx, out, parts); err != nil {
		fmt.Fprintf(out, "Command error: %s\n", err)
		slog.Error("admin command failed",
			"command", text,
			"error", err)
	}

	return true
}

// Run reads commands from in until EOF or ctx is cancelled.
// Reading happens on a separate goroutine: a blocked terminal read must
// not hold up shutdown.
func (h *Handler) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	lines := make(chan string)
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-readErr:
					if err != nil {
						return fmt.Errorf("reading console: %w", err)
					}
				default:
				}
				return nil
			}
			h.HandleLine(ctx, out, line)
		}
	}
}

// Names returns every registered command name, sorted.
func (h *Handler) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.cmds))
	for name := range h.cmds {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// CommandCount returns the number of registered names.
func (h *Handler) CommandCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.cmds)
}
