package core

import (
	"context"
	"testing"

	"github.com/keepmind9/webwatch/internal/bot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopAction(ctx context.Context, msg bot.Incoming, d *Dispatcher) error {
	return nil
}

// TestRegistry_Register_Valid tests registering well-formed commands
func TestRegistry_Register_Valid(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterHandler("noop", noopAction))

	tests := []struct {
		name string
		cmd  Command
	}{
		{"static message", Command{Name: "/start", Message: "hello"}},
		{"action handler", Command{Name: "/add_website", Handler: "noop"}},
		{"platform scoped", Command{Name: "/ping", Message: "pong", Platform: "discord"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, reg.Register(tt.cmd))
		})
	}
}

// TestRegistry_Register_Invalid tests registration-time validation
func TestRegistry_Register_Invalid(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterHandler("noop", noopAction))

	tests := []struct {
		name string
		cmd  Command
	}{
		{"empty name", Command{Name: "", Message: "hello"}},
		{"whitespace name", Command{Name: "   ", Message: "hello"}},
		{"neither message nor handler", Command{Name: "/broken"}},
		{"both message and handler", Command{Name: "/broken", Message: "hi", Handler: "noop"}},
		{"unknown handler reference", Command{Name: "/broken", Handler: "missing"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.Register(tt.cmd)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidCommand)
		})
	}
}

// TestRegistry_RegisterHandler_Invalid tests handler table validation
func TestRegistry_RegisterHandler_Invalid(t *testing.T) {
	reg := NewRegistry()

	err := reg.RegisterHandler("", noopAction)
	assert.ErrorIs(t, err, ErrInvalidCommand)

	err = reg.RegisterHandler("nil-handler", nil)
	assert.ErrorIs(t, err, ErrInvalidCommand)
}

// TestRegistry_Resolve_ExactMatch tests that only exact token matches resolve
func TestRegistry_Resolve_ExactMatch(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Command{Name: "/add_website", Message: "prompt"}))

	_, ok := reg.Resolve("/add_website", "discord")
	assert.True(t, ok)

	// No prefix or partial matching
	_, ok = reg.Resolve("/add", "discord")
	assert.False(t, ok)
	_, ok = reg.Resolve("/add_website_now", "discord")
	assert.False(t, ok)
	_, ok = reg.Resolve("", "discord")
	assert.False(t, ok)
}

// TestRegistry_Resolve_PlatformPrecedence tests scoped-over-scopeless precedence
func TestRegistry_Resolve_PlatformPrecedence(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Command{Name: "/help", Message: "generic help"}))
	require.NoError(t, reg.Register(Command{Name: "/help", Message: "discord help", Platform: "discord"}))

	// The scoped command wins on its own platform
	cmd, ok := reg.Resolve("/help", "discord")
	require.True(t, ok)
	assert.Equal(t, "discord help", cmd.Message)

	// Other platforms fall back to the scopeless command
	cmd, ok = reg.Resolve("/help", "telegram")
	require.True(t, ok)
	assert.Equal(t, "generic help", cmd.Message)
}

// TestRegistry_Resolve_ScopedOnly tests that a foreign-scoped command never leaks
func TestRegistry_Resolve_ScopedOnly(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Command{Name: "/discord_only", Message: "hi", Platform: "discord"}))

	_, ok := reg.Resolve("/discord_only", "telegram")
	assert.False(t, ok)

	cmd, ok := reg.Resolve("/discord_only", "discord")
	require.True(t, ok)
	assert.Equal(t, "discord", cmd.Platform)
}

// TestRegistry_Register_LastWriteWins tests name collision behavior
func TestRegistry_Register_LastWriteWins(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Command{Name: "/start", Message: "first"}))
	require.NoError(t, reg.Register(Command{Name: "/start", Message: "second"}))

	cmd, ok := reg.Resolve("/start", "telegram")
	require.True(t, ok)
	assert.Equal(t, "second", cmd.Message)
}

// TestRegistry_Commands tests the sorted command listing
func TestRegistry_Commands(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(Command{Name: "/b", Message: "b"}))
	require.NoError(t, reg.Register(Command{Name: "/a", Message: "a"}))
	require.NoError(t, reg.Register(Command{Name: "/a", Message: "a-discord", Platform: "discord"}))

	cmds := reg.Commands()
	require.Len(t, cmds, 3)
	assert.Equal(t, "/a", cmds[0].Name)
	assert.Equal(t, "", cmds[0].Platform)
	assert.Equal(t, "/a", cmds[1].Name)
	assert.Equal(t, "discord", cmds[1].Platform)
	assert.Equal(t, "/b", cmds[2].Name)
}

// TestRegistry_Handler tests handler table lookup
func TestRegistry_Handler(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterHandler("noop", noopAction))

	fn, ok := reg.Handler("noop")
	assert.True(t, ok)
	assert.NotNil(t, fn)

	_, ok = reg.Handler("missing")
	assert.False(t, ok)
}
