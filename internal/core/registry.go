// Package core provides the command dispatch engine for webwatch.
//
// The core package implements the platform-agnostic layer between raw
// platform events and business actions. It handles:
//
//   - Configuration loading and validation (from YAML files)
//   - Command registration and deterministic resolution
//   - Per-user conversational session state
//   - Dispatching incoming messages to static replies or action handlers
//   - Bot adapter lifecycle and graceful shutdown
//
// # Main Components
//
//   - Registry: the set of known commands and their action handlers
//   - SessionStore: per-user conversational state, safe for concurrent use
//   - Dispatcher: routes normalized incoming messages to command behavior
//   - Engine: starts and stops the platform adapters
package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/keepmind9/webwatch/internal/bot"
)

// ErrInvalidCommand indicates a command that cannot be registered: it is
// missing a name, has neither a static message nor an action handler, or
// has both. A misconfigured command set is a startup bug, so registration
// errors are fatal to the caller.
var ErrInvalidCommand = errors.New("invalid command")

// ActionFunc is a named action handler. Handlers receive the full
// normalized event plus the dispatcher for replies and session access.
// A returned error is logged at the dispatcher boundary and converted
// into a generic failure reply; it is never shown to the user.
type ActionFunc func(ctx context.Context, msg bot.Incoming, d *Dispatcher) error

// Command describes one registered chat command.
//
// Exactly one of Message and Handler must be set: Message is a fixed reply
// sent verbatim, Handler is the id of an ActionFunc registered on the same
// Registry. Platform optionally scopes the command to a single platform;
// empty means all platforms.
type Command struct {
	Name        string // e.g. "/add_website"; matched against the first token of the input
	Description string
	Message     string
	Handler     string
	Platform    string
}

// Registry holds the set of known commands and the table of named action
// handlers they reference. Commands are registered once at startup and are
// immutable afterwards; the registry only ever adds entries.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]map[string]Command // name -> platform scope ("" = all) -> command
	handlers map[string]ActionFunc
}

// NewRegistry creates an empty command registry
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]map[string]Command),
		handlers: make(map[string]ActionFunc),
	}
}

// RegisterHandler registers a named action handler that commands can
// reference by id.
func (r *Registry) RegisterHandler(id string, fn ActionFunc) error {
	if id == "" {
		return fmt.Errorf("%w: handler id must not be empty", ErrInvalidCommand)
	}
	if fn == nil {
		return fmt.Errorf("%w: handler %q is nil", ErrInvalidCommand, id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[id] = fn
	return nil
}

// Register adds a command to the registry. Last write wins when a command
// with the same name and platform scope is registered twice.
func (r *Registry) Register(cmd Command) error {
	if strings.TrimSpace(cmd.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidCommand)
	}
	if (cmd.Message == "") == (cmd.Handler == "") {
		return fmt.Errorf("%w: %s must have either a message or an action",
			ErrInvalidCommand, cmd.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cmd.Handler != "" {
		if _, ok := r.handlers[cmd.Handler]; !ok {
			return fmt.Errorf("%w: %s references unknown handler %q",
				ErrInvalidCommand, cmd.Name, cmd.Handler)
		}
	}

	scoped, ok := r.commands[cmd.Name]
	if !ok {
		scoped = make(map[string]Command)
		r.commands[cmd.Name] = scoped
	}
	scoped[cmd.Platform] = cmd
	return nil
}

// Resolve returns the command whose name matches token exactly and whose
// platform scope is either unset or equal to platform. A platform-scoped
// entry wins over a scopeless one; a scopeless entry is the fallback when
// no entry matches the caller's platform. There is no partial or prefix
// matching.
func (r *Registry) Resolve(token, platform string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	scoped, ok := r.commands[token]
	if !ok {
		return Command{}, false
	}
	if cmd, ok := scoped[platform]; ok {
		return cmd, true
	}
	if cmd, ok := scoped[""]; ok {
		return cmd, true
	}
	return Command{}, false
}

// Handler returns the action handler registered under id.
func (r *Registry) Handler(id string) (ActionFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.handlers[id]
	return fn, ok
}

// Commands returns all registered commands sorted by name. Commands that
// differ only in platform scope are adjacent.
func (r *Registry) Commands() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Command
	for _, scoped := range r.commands {
		for _, cmd := range scoped {
			out = append(out, cmd)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Platform < out[j].Platform
	})
	return out
}
