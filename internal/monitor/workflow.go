// Package monitor implements the website-monitor conversation: commands to
// add, list and remove monitored websites, plus the unknown-command handler
// that drives the multi-step add/remove dialogs through session state.
package monitor

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/keepmind9/webwatch/internal/bot"
	"github.com/keepmind9/webwatch/internal/core"
	"github.com/keepmind9/webwatch/pkg/constants"
)

// Reply texts sent to users
const (
	StartText = "Hello! I can watch your websites.\n\n" +
		"/add_website - add a website to monitor\n" +
		"/list_websites - list your monitored websites\n" +
		"/remove_website - remove a monitored website"
	AddWebsiteText   = "Please send the URL of the website you want to add."
	WebsiteAddedText = "Thanks! The website has been added. You will be notified if the domain is down."
	InvalidText      = "Invalid URL. Please enter a valid website."
	InstructionText  = "Send /add_website to add a website."
	NoWebsitesText   = "You have no websites yet. Send /add_website to add one."
	RemoveText       = "Send the number of the website you want to remove."
	RemovedText      = "The website has been removed."
)

// Workflow session states
const (
	StateAwaitingURL             core.SessionState = "awaiting_url"
	StateAwaitingRemoveSelection core.SessionState = "awaiting_remove_selection"
)

// Handler ids referenced by the registered commands
const (
	handlerAddWebsite    = "add_website"
	handlerRemoveWebsite = "remove_website"
	handlerListWebsites  = "list_websites"
)

// pendingListKey prefixes the numbered listing kept in session data while a
// removal selection is pending
const pendingListKey = "site"

// WebsiteStore is the storage collaborator contract.
type WebsiteStore interface {
	AddWebsite(ctx context.Context, owner, url string) error
	ListWebsites(ctx context.Context, owner string) ([]string, error)
	RemoveWebsite(ctx context.Context, owner, url string) error
}

// Workflow holds the website-monitor commands and conversation handlers.
type Workflow struct {
	store      WebsiteStore
	maxPerUser int
}

// New creates a workflow backed by store. maxPerUser caps how many websites
// one owner may hold; zero selects the default.
func New(store WebsiteStore, maxPerUser int) *Workflow {
	if maxPerUser <= 0 {
		maxPerUser = constants.DefaultMaxWebsitesPerUser
	}
	return &Workflow{
		store:      store,
		maxPerUser: maxPerUser,
	}
}

// Register wires the workflow's handlers and commands into reg. It must be
// called before the dispatcher starts handling messages.
func (w *Workflow) Register(reg *core.Registry) error {
	handlers := map[string]core.ActionFunc{
		handlerAddWebsite:    w.AddWebsite,
		handlerRemoveWebsite: w.RemoveWebsite,
		handlerListWebsites:  w.ListWebsites,
	}
	for id, fn := range handlers {
		if err := reg.RegisterHandler(id, fn); err != nil {
			return err
		}
	}

	commands := []core.Command{
		{Name: "/start", Description: "Show the command menu", Message: StartText},
		{Name: "/add_website", Description: "Add a website to monitor", Handler: handlerAddWebsite},
		{Name: "/remove_website", Description: "Remove a monitored website", Handler: handlerRemoveWebsite},
		{Name: "/list_websites", Description: "List your monitored websites", Handler: handlerListWebsites},
	}
	for _, cmd := range commands {
		if err := reg.Register(cmd); err != nil {
			return err
		}
	}
	return nil
}

// HandleUnknown is the unknown-command handler. Text that matches no
// command is interpreted against the user's session state: a pending URL,
// a pending removal selection, or plain chatter that gets the instruction
// reply.
func (w *Workflow) HandleUnknown(ctx context.Context, msg bot.Incoming, d *core.Dispatcher) error {
	sess := d.Sessions().Get(msg.Platform, msg.UserID)

	switch sess.State {
	case StateAwaitingURL:
		return w.saveWebsite(ctx, msg, d)
	case StateAwaitingRemoveSelection:
		return w.removeSelection(ctx, msg, d)
	default:
		return d.Reply(msg.Platform, msg.Channel, InstructionText)
	}
}

// AddWebsite starts the add-website dialog.
func (w *Workflow) AddWebsite(_ context.Context, msg bot.Incoming, d *core.Dispatcher) error {
	if err := d.Reply(msg.Platform, msg.Channel, AddWebsiteText); err != nil {
		return err
	}
	d.Sessions().Set(msg.Platform, msg.UserID, StateAwaitingURL, nil)
	return nil
}

// saveWebsite handles the URL sent while awaiting one. The pending state is
// cleared before the input is evaluated, so a failed validation returns the
// user to idle instead of re-prompting.
func (w *Workflow) saveWebsite(ctx context.Context, msg bot.Incoming, d *core.Dispatcher) error {
	d.Sessions().Clear(msg.Platform, msg.UserID)

	raw := strings.TrimSpace(msg.Text)
	if raw == "" {
		return d.Reply(msg.Platform, msg.Channel, InvalidText)
	}
	url := normalizeURL(raw)

	owner := ownerKey(msg)
	sites, err := w.store.ListWebsites(ctx, owner)
	if err != nil {
		return fmt.Errorf("list websites for %s: %w", owner, err)
	}
	if len(sites) >= w.maxPerUser {
		return d.Reply(msg.Platform, msg.Channel, w.limitExceededText())
	}

	if err := w.store.AddWebsite(ctx, owner, url); err != nil {
		return fmt.Errorf("add website %s for %s: %w", url, owner, err)
	}
	return d.Reply(msg.Platform, msg.Channel, WebsiteAddedText)
}

// RemoveWebsite starts the remove-website dialog by listing the owner's
// websites with positional numbers. With nothing stored the user stays
// idle.
func (w *Workflow) RemoveWebsite(ctx context.Context, msg bot.Incoming, d *core.Dispatcher) error {
	owner := ownerKey(msg)
	sites, err := w.store.ListWebsites(ctx, owner)
	if err != nil {
		return fmt.Errorf("list websites for %s: %w", owner, err)
	}

	if len(sites) == 0 {
		d.Sessions().Clear(msg.Platform, msg.UserID)
		return d.Reply(msg.Platform, msg.Channel, NoWebsitesText)
	}

	if err := d.Reply(msg.Platform, msg.Channel, numberedList(sites)+"\n\n"+RemoveText); err != nil {
		return err
	}
	d.Sessions().Set(msg.Platform, msg.UserID, StateAwaitingRemoveSelection, pendingList(sites))
	return nil
}

// removeSelection handles the reply sent while a removal selection is
// pending. Numbers are positional against the owner's current stored list,
// recomputed here rather than pinned at listing time; anything that is not
// a valid position re-runs the listing and keeps the selection pending.
func (w *Workflow) removeSelection(ctx context.Context, msg bot.Incoming, d *core.Dispatcher) error {
	owner := ownerKey(msg)
	sites, err := w.store.ListWebsites(ctx, owner)
	if err != nil {
		return fmt.Errorf("list websites for %s: %w", owner, err)
	}

	index, err := strconv.Atoi(strings.TrimSpace(msg.Text))
	if err != nil || index < 1 || index > len(sites) {
		// Not a usable selection: show the (possibly changed) listing again
		return w.RemoveWebsite(ctx, msg, d)
	}

	url := sites[index-1]
	if err := w.store.RemoveWebsite(ctx, owner, url); err != nil {
		return fmt.Errorf("remove website %s for %s: %w", url, owner, err)
	}

	d.Sessions().Clear(msg.Platform, msg.UserID)
	return d.Reply(msg.Platform, msg.Channel, RemovedText)
}

// ListWebsites replies with the owner's current websites. Session state is
// left untouched, so the command works mid-dialog.
func (w *Workflow) ListWebsites(ctx context.Context, msg bot.Incoming, d *core.Dispatcher) error {
	owner := ownerKey(msg)
	sites, err := w.store.ListWebsites(ctx, owner)
	if err != nil {
		return fmt.Errorf("list websites for %s: %w", owner, err)
	}

	if len(sites) == 0 {
		return d.Reply(msg.Platform, msg.Channel, NoWebsitesText)
	}
	return d.Reply(msg.Platform, msg.Channel, "Your websites:\n"+numberedList(sites))
}

func (w *Workflow) limitExceededText() string {
	return fmt.Sprintf("You already monitor %d websites, which is the limit. "+
		"Remove one with /remove_website first.", w.maxPerUser)
}

// ownerKey identifies a website owner. Users are identified independently
// per platform; there is no cross-platform unification.
func ownerKey(msg bot.Incoming) string {
	return msg.Platform + ":" + msg.UserID
}

// normalizeURL coerces any non-empty text into a URL by prefixing https://
// when no scheme is present.
func normalizeURL(s string) string {
	if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
		return s
	}
	return "https://" + s
}

// numberedList renders sites with 1-based positions
func numberedList(sites []string) string {
	var b strings.Builder
	for i, site := range sites {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d. %s", i+1, site)
	}
	return b.String()
}

// pendingList snapshots the numbered listing shown to the user into
// session data
func pendingList(sites []string) map[string]string {
	data := make(map[string]string, len(sites))
	for i, site := range sites {
		data[pendingListKey+strconv.Itoa(i+1)] = site
	}
	return data
}
