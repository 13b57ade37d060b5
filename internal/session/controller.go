// Package session holds the chat session state and the operations that mutate it.
// It has no rendering dependencies; the UI subscribes to events and renders snapshots.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pinned/internal/api"
	"pinned/internal/models"
)

const (
	DefaultTypingDelay = 10 * time.Millisecond

	SendErrorReply = "Sorry, there was an error processing your request. Please try again."
)

var (
	ErrEmptyMessage  = errors.New("message is empty")
	ErrAwaitingReply = errors.New("a reply is still pending")
	ErrEmptyTitle    = errors.New("title is empty")
	ErrNoPending     = errors.New("nothing pending")
	ErrSuperseded    = errors.New("superseded by a later navigation")
)

// API is the subset of the remote client the controller needs
type API interface {
	ListChats(ctx context.Context) ([]models.ChatSummary, error)
	GetChat(ctx context.Context, id string) (models.ChatDetail, error)
	RenameChat(ctx context.Context, id, title string) error
	DeleteChat(ctx context.Context, id string) error
	Send(ctx context.Context, req api.SendRequest) (api.SendResponse, error)
	ListModels(ctx context.Context) ([]models.ModelOption, error)
}

// SoundPlayer plays cues for session events
type SoundPlayer interface {
	Play(models.SoundCue)
}

// typing tracks the running reveal animation
type typing struct {
	cancel context.CancelFunc
	index  int
}

type Controller struct {
	api    API
	logger *zap.Logger
	store  LocationStore
	sound  SoundPlayer

	mu          sync.Mutex
	state       State
	location    Location
	typingDelay time.Duration
	// epoch advances on every navigation; work started under an older epoch is discarded
	epoch    uint64
	openSeq  uint64
	cancelOp context.CancelFunc
	typing   *typing
	wg       sync.WaitGroup

	subMu   sync.Mutex
	subs    map[int]func(Event)
	nextSub int
}

type Option func(*Controller)

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithLocationStore(s LocationStore) Option {
	return func(c *Controller) { c.store = s }
}

func WithSound(p SoundPlayer) Option {
	return func(c *Controller) { c.sound = p }
}

// WithTypingDelay sets the per-rune reveal delay; zero shows replies at once
func WithTypingDelay(d time.Duration) Option {
	return func(c *Controller) { c.typingDelay = d }
}

func WithModel(alias string) Option {
	return func(c *Controller) {
		if alias != "" {
			c.state.Model = alias
		}
	}
}

func New(client API, opts ...Option) *Controller {
	c := &Controller{
		api:         client,
		logger:      zap.NewNop(),
		typingDelay: DefaultTypingDelay,
		subs:        make(map[int]func(Event)),
		state: State{
			View:   ViewWelcome,
			Model:  models.DefaultModelAlias,
			Models: append([]models.ModelOption(nil), models.DefaultModels...),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Subscribe registers fn for every event. Events are delivered outside the state lock.
func (c *Controller) Subscribe(fn func(Event)) (cancel func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()
	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Controller) publish(ev Event) {
	c.subMu.Lock()
	fns := make([]func(Event), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

func (c *Controller) changed() {
	c.publish(Event{Kind: EventStateChanged})
}

func (c *Controller) notify(kind models.NotificationKind, text string) {
	c.publish(Event{Kind: EventNotification, Notification: models.Notification{Kind: kind, Text: text, At: time.Now()}})
}

func (c *Controller) play(cue models.SoundCue) {
	if c.sound != nil {
		c.sound.Play(cue)
	}
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

func (c *Controller) Location() Location {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.location
}

// SetTypingDelay changes the reveal delay for subsequent replies
func (c *Controller) SetTypingDelay(d time.Duration) {
	c.mu.Lock()
	c.typingDelay = d
	c.mu.Unlock()
}

// SelectModel sets the model alias used by the next send
func (c *Controller) SelectModel(alias string) {
	c.mu.Lock()
	c.state.Model = alias
	c.mu.Unlock()
	c.changed()
}

func (c *Controller) setLocationLocked(loc Location) Location {
	c.location = loc
	return loc
}

func (c *Controller) persistLocation(loc Location) {
	if c.store == nil {
		return
	}
	if err := c.store.SaveLocation(loc); err != nil {
		c.logger.Warn("saving location failed", zap.String("location", loc.String()), zap.Error(err))
	}
}

// abandonLocked cancels the in-flight send and the running animation and moves to a new epoch.
func (c *Controller) abandonLocked() {
	c.epoch++
	if c.cancelOp != nil {
		c.cancelOp()
		c.cancelOp = nil
	}
	c.finishRevealLocked()
}

// finishRevealLocked stops the animation and shows its entry in full
func (c *Controller) finishRevealLocked() {
	if c.typing == nil {
		return
	}
	if c.typing.index < len(c.state.Transcript) {
		c.state.Transcript[c.typing.index].revealAll()
	}
	c.typing.cancel()
	c.typing = nil
}

// ListChats fetches the chat list and replaces the cache. On failure the cache is kept.
func (c *Controller) ListChats(ctx context.Context) ([]models.ChatSummary, error) {
	chats, err := c.api.ListChats(ctx)
	if err != nil {
		c.logger.Error("loading chats failed", zap.String("kind", api.Kind(err)), zap.Error(err))
		c.notify(models.NotifyError, "Failed to load chat history")
		return nil, err
	}
	c.mu.Lock()
	c.state.ChatList = chats
	if c.state.ActiveChatID != "" {
		if sum, ok := c.state.Chat(c.state.ActiveChatID); ok {
			c.state.ActiveTitle = sum.Title
		}
	}
	c.mu.Unlock()
	c.changed()
	return append([]models.ChatSummary(nil), chats...), nil
}

// ListModels refreshes the model catalog. On failure the previous catalog stays.
func (c *Controller) ListModels(ctx context.Context) ([]models.ModelOption, error) {
	opts, err := c.api.ListModels(ctx)
	if err != nil {
		c.logger.Warn("loading models failed", zap.String("kind", api.Kind(err)), zap.Error(err))
		return nil, err
	}
	if len(opts) == 0 {
		return opts, nil
	}
	c.mu.Lock()
	c.state.Models = opts
	if _, ok := models.MatchModelAlias(opts, c.state.Model); !ok {
		c.state.Model = opts[0].Alias
	}
	c.mu.Unlock()
	c.changed()
	return opts, nil
}

// OpenChat fetches a chat and makes it active. On failure the previous view is kept.
func (c *Controller) OpenChat(ctx context.Context, id string) (models.ChatDetail, error) {
	c.mu.Lock()
	c.openSeq++
	seq, epoch := c.openSeq, c.epoch
	prevView := c.state.View
	c.state.View = ViewChatLoading
	c.mu.Unlock()
	c.changed()

	chat, err := c.api.GetChat(ctx, id)

	c.mu.Lock()
	if seq != c.openSeq || epoch != c.epoch {
		c.mu.Unlock()
		c.logger.Debug("discarding superseded chat load", zap.String("chat_id", id))
		return chat, ErrSuperseded
	}
	if err != nil {
		if c.state.View == ViewChatLoading {
			c.state.View = prevView
		}
		c.mu.Unlock()
		c.logger.Error("loading chat failed", zap.String("chat_id", id), zap.String("kind", api.Kind(err)), zap.Error(err))
		c.notify(models.NotifyError, "Failed to load conversation")
		c.changed()
		return chat, err
	}

	c.abandonLocked()
	now := time.Now()
	transcript := make([]Entry, 0, len(chat.Messages))
	for _, m := range chat.Messages {
		if !m.Visible() {
			continue
		}
		transcript = append(transcript, newEntry(m.Role, m.Content, now))
	}
	c.state.ActiveChatID = id
	c.state.ActiveTitle = chat.Title
	c.state.Transcript = transcript
	c.state.View = ViewChatReady
	c.state.PendingDeleteID = ""
	c.state.PendingEditID = ""
	if alias, ok := models.MatchModelAlias(c.state.Models, chat.Model); ok {
		c.state.Model = alias
	}
	loc := c.setLocationLocked(Location{ChatID: id})
	c.mu.Unlock()

	c.persistLocation(loc)
	c.changed()
	return chat, nil
}

// StartNewChat returns to the welcome view. It is idempotent.
func (c *Controller) StartNewChat() {
	c.mu.Lock()
	loc := c.startNewChatLocked()
	c.mu.Unlock()
	c.persistLocation(loc)
	c.changed()
}

func (c *Controller) startNewChatLocked() Location {
	c.abandonLocked()
	c.state.ActiveChatID = ""
	c.state.ActiveTitle = ""
	c.state.Transcript = nil
	c.state.View = ViewWelcome
	c.state.PendingDeleteID = ""
	c.state.PendingEditID = ""
	return c.setLocationLocked(Location{})
}

// SendMessage appends the user message, asks the API for a reply and appends it.
// Empty input and calls made while a reply is pending are rejected without a request.
func (c *Controller) SendMessage(ctx context.Context, text, modelAlias string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	if c.state.AwaitingReply {
		c.mu.Unlock()
		return ErrAwaitingReply
	}
	c.finishRevealLocked()
	if modelAlias != "" {
		c.state.Model = modelAlias
	}
	req := api.SendRequest{Message: text, Model: c.state.Model}
	if c.state.ActiveChatID != "" {
		id := c.state.ActiveChatID
		req.ChatID = &id
	}
	c.state.Transcript = append(c.state.Transcript, newEntry(models.RoleUser, text, time.Now()))
	c.state.AwaitingReply = true
	if c.state.View == ViewWelcome {
		c.state.View = ViewChatLoading
	}
	opCtx, cancel := context.WithCancel(ctx)
	c.cancelOp = cancel
	epoch := c.epoch
	delay := c.typingDelay
	c.mu.Unlock()
	c.changed()
	c.play(models.CueSend)

	resp, err := c.api.Send(opCtx, req)

	c.mu.Lock()
	c.state.AwaitingReply = false
	if epoch != c.epoch {
		// navigated away; the reply belongs to a view that is gone
		c.mu.Unlock()
		cancel()
		c.logger.Info("discarding reply after navigation", zap.Bool("failed", err != nil), zap.Error(err))
		if err == nil && req.ChatID == nil {
			c.refreshAfterCreate(ctx, resp.ChatID, text)
		}
		c.changed()
		if err != nil {
			return err
		}
		return ErrSuperseded
	}
	c.cancelOp = nil

	if err != nil {
		cancel()
		e := newEntry(models.RoleAssistant, SendErrorReply, time.Now())
		e.Synthetic = true
		c.state.Transcript = append(c.state.Transcript, e)
		c.state.View = ViewChatReady
		c.mu.Unlock()
		c.logger.Error("sending message failed", zap.String("kind", api.Kind(err)), zap.Error(err))
		c.notify(models.NotifyError, "Failed to get response from AI")
		c.play(models.CueError)
		c.changed()
		return err
	}

	created := req.ChatID == nil
	var loc Location
	if created {
		c.state.ActiveChatID = resp.ChatID
		loc = c.setLocationLocked(Location{ChatID: resp.ChatID})
	}
	e := newEntry(models.RoleAssistant, resp.Response, time.Now())
	if delay > 0 && resp.Response != "" {
		e.Revealed = 0
	}
	c.state.Transcript = append(c.state.Transcript, e)
	c.state.View = ViewChatReady
	if e.Typing() {
		c.startRevealLocked(opCtx, cancel, len(c.state.Transcript)-1, delay)
	} else {
		cancel()
	}
	c.mu.Unlock()

	c.play(models.CueReply)
	if created {
		c.persistLocation(loc)
		c.refreshAfterCreate(ctx, resp.ChatID, text)
	}
	c.changed()
	return nil
}

// refreshAfterCreate reloads the list so the new chat shows up. If the reload fails a
// provisional entry keeps the list consistent with the active id.
func (c *Controller) refreshAfterCreate(ctx context.Context, id, firstMessage string) {
	if _, err := c.ListChats(ctx); err == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.state.Chat(id); ok {
		return
	}
	title := firstMessage
	if utf8.RuneCountInString(title) > 30 {
		title = string([]rune(title)[:27]) + "..."
	}
	c.state.ChatList = append([]models.ChatSummary{{ID: id, Title: title}}, c.state.ChatList...)
	if c.state.ActiveChatID == id {
		c.state.ActiveTitle = title
	}
}

// RenameChat renames a chat remotely and in the cached list
func (c *Controller) RenameChat(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	if err := c.api.RenameChat(ctx, id, title); err != nil {
		c.logger.Error("renaming chat failed", zap.String("chat_id", id), zap.String("kind", api.Kind(err)), zap.Error(err))
		c.notify(models.NotifyError, "Failed to update title")
		return err
	}
	c.mu.Lock()
	for i := range c.state.ChatList {
		if c.state.ChatList[i].ID == id {
			c.state.ChatList[i].Title = title
		}
	}
	if c.state.ActiveChatID == id {
		c.state.ActiveTitle = title
	}
	c.mu.Unlock()
	c.notify(models.NotifySuccess, "Title updated successfully")
	c.changed()
	return nil
}

// DeleteChat deletes a chat. Deleting the active chat returns to the welcome view.
func (c *Controller) DeleteChat(ctx context.Context, id string) error {
	if err := c.api.DeleteChat(ctx, id); err != nil {
		c.logger.Error("deleting chat failed", zap.String("chat_id", id), zap.String("kind", api.Kind(err)), zap.Error(err))
		c.notify(models.NotifyError, "Failed to delete conversation")
		return err
	}
	c.mu.Lock()
	kept := c.state.ChatList[:0]
	for _, chat := range c.state.ChatList {
		if chat.ID != id {
			kept = append(kept, chat)
		}
	}
	c.state.ChatList = kept
	var loc *Location
	if c.state.ActiveChatID == id {
		l := c.startNewChatLocked()
		loc = &l
	}
	c.mu.Unlock()
	if loc != nil {
		c.persistLocation(*loc)
	}
	c.notify(models.NotifySuccess, "Conversation deleted")
	c.changed()
	return nil
}

// RequestDelete opens the delete confirmation for a chat
func (c *Controller) RequestDelete(id string) {
	c.mu.Lock()
	c.state.PendingDeleteID = id
	c.state.PendingEditID = ""
	c.mu.Unlock()
	c.changed()
}

func (c *Controller) CancelDelete() {
	c.mu.Lock()
	c.state.PendingDeleteID = ""
	c.mu.Unlock()
	c.changed()
}

// ConfirmDelete deletes the pending chat and closes the confirmation
func (c *Controller) ConfirmDelete(ctx context.Context) error {
	c.mu.Lock()
	id := c.state.PendingDeleteID
	c.mu.Unlock()
	if id == "" {
		return ErrNoPending
	}
	err := c.DeleteChat(ctx, id)
	c.mu.Lock()
	if c.state.PendingDeleteID == id {
		c.state.PendingDeleteID = ""
	}
	c.mu.Unlock()
	c.changed()
	return err
}

// RequestRename opens the title editor for a chat
func (c *Controller) RequestRename(id string) {
	c.mu.Lock()
	c.state.PendingEditID = id
	c.state.PendingDeleteID = ""
	c.mu.Unlock()
	c.changed()
}

func (c *Controller) CancelRename() {
	c.mu.Lock()
	c.state.PendingEditID = ""
	c.mu.Unlock()
	c.changed()
}

// ConfirmRename renames the pending chat. An empty title keeps the editor open.
func (c *Controller) ConfirmRename(ctx context.Context, title string) error {
	c.mu.Lock()
	id := c.state.PendingEditID
	c.mu.Unlock()
	if id == "" {
		return ErrNoPending
	}
	if err := c.RenameChat(ctx, id, title); err != nil {
		return err
	}
	c.mu.Lock()
	if c.state.PendingEditID == id {
		c.state.PendingEditID = ""
	}
	c.mu.Unlock()
	c.changed()
	return nil
}

// Bootstrap performs the initial load: chats and models in parallel, then the chat
// named by loc, if any.
func (c *Controller) Bootstrap(ctx context.Context, loc Location) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := c.ListChats(gctx)
		return err
	})
	g.Go(func() error {
		// the built-in catalog covers a failed model load
		_, _ = c.ListModels(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		c.notify(models.NotifyError, "Failed to initialize the app. Please try again.")
		return err
	}
	if loc.ChatID == "" {
		c.StartNewChat()
		return nil
	}
	_, err := c.OpenChat(ctx, loc.ChatID)
	return err
}

// Close cancels pending work and waits for the animation to stop
func (c *Controller) Close() {
	c.mu.Lock()
	c.abandonLocked()
	c.mu.Unlock()
	c.wg.Wait()
}
