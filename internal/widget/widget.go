// Package widget implements the chat widget: an append-only conversation, a
// single-flight dispatcher for the chat endpoint, on-demand speech playback
// and a "new message" notification shown while the widget is collapsed.
package widget

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/z-tavern/chatwidget/internal/i18n"
	"github.com/zhouzirui/z-tavern/chatwidget/internal/model/chat"
	chatservice "github.com/zhouzirui/z-tavern/chatwidget/internal/service/chat"
)

const (
	DefaultNotifyInterval = 30 * time.Second
	DefaultNotifyDuration = 5 * time.Second
)

// ChatClient sends one user message to the chat endpoint.
type ChatClient interface {
	Chat(ctx context.Context, message string) (string, error)
}

// SpeechClient fetches synthesized audio for text.
type SpeechClient interface {
	Speech(ctx context.Context, text string) ([]byte, error)
}

// AudioPlayer plays an audio payload and returns once playback ended.
type AudioPlayer interface {
	Play(ctx context.Context, data []byte) error
}

// State is the transient UI state. Notification is only ever true while
// Open is false.
type State struct {
	Open         bool
	Input        string
	InFlight     bool
	Notification bool
}

// Widget owns one conversation for the lifetime between New and Unmount.
type Widget struct {
	chat    ChatClient
	speech  SpeechClient
	player  AudioPlayer
	store   *chatservice.Store
	catalog i18n.Catalog
	logger  zerolog.Logger

	notifyInterval time.Duration
	notifyDuration time.Duration

	// lifetime is canceled by Unmount; every network call derives from it.
	lifetime context.Context
	cancel   context.CancelFunc

	mu        sync.Mutex
	state     State
	mounted   bool
	unmounted bool
	hideTimer *time.Timer
	hideGen   uint64

	wg      sync.WaitGroup
	changes chan struct{}
}

// Option customises a Widget.
type Option func(*Widget)

// WithNotification sets how often the collapsed widget announces itself and
// how long the indicator stays visible.
func WithNotification(interval, duration time.Duration) Option {
	return func(w *Widget) {
		if interval > 0 {
			w.notifyInterval = interval
		}
		if duration > 0 {
			w.notifyDuration = duration
		}
	}
}

// WithCatalog selects the user-facing strings.
func WithCatalog(catalog i18n.Catalog) Option {
	return func(w *Widget) {
		w.catalog = catalog
	}
}

// WithLogger replaces the widget logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(w *Widget) {
		w.logger = logger
	}
}

// New creates a collapsed widget. Call Mount to start the notification timer.
func New(chatClient ChatClient, speechClient SpeechClient, player AudioPlayer, options ...Option) *Widget {
	lifetime, cancel := context.WithCancel(context.Background())
	w := &Widget{
		chat:           chatClient,
		speech:         speechClient,
		player:         player,
		store:          chatservice.NewStore(),
		catalog:        i18n.Lookup(i18n.DefaultLocale),
		logger:         log.With().Str("component", "widget").Logger(),
		notifyInterval: DefaultNotifyInterval,
		notifyDuration: DefaultNotifyDuration,
		lifetime:       lifetime,
		cancel:         cancel,
		changes:        make(chan struct{}, 1),
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

// Mount starts the notification timer. Calling it again has no effect.
func (w *Widget) Mount() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.mounted || w.unmounted {
		return
	}
	w.mounted = true
	w.wg.Add(1)
	go w.runNotifier()
}

// Unmount stops the timer, cancels outstanding requests and waits for
// background playback to wind down. Results that arrive later are dropped.
func (w *Widget) Unmount() {
	w.mu.Lock()
	if w.unmounted {
		w.mu.Unlock()
		return
	}
	w.unmounted = true
	w.state.Notification = false
	w.stopHideTimerLocked()
	w.mu.Unlock()

	w.cancel()
	w.wg.Wait()
	w.logger.Debug().Int("messages", w.store.Len()).Msg("widget unmounted")
}

// Changes signals that state or messages changed. Signals coalesce.
func (w *Widget) Changes() <-chan struct{} {
	return w.changes
}

// State returns a snapshot of the UI state.
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Messages returns the conversation so far.
func (w *Widget) Messages() []chat.Message {
	return w.store.Messages()
}

// LastAssistant returns the most recent assistant message.
func (w *Widget) LastAssistant() (chat.Message, bool) {
	return w.store.LastAssistant()
}

// Catalog returns the strings the widget was configured with.
func (w *Widget) Catalog() i18n.Catalog {
	return w.catalog
}

// SetInput updates the pending input text.
func (w *Widget) SetInput(text string) {
	w.mu.Lock()
	changed := w.state.Input != text
	w.state.Input = text
	w.mu.Unlock()
	if changed {
		w.signal()
	}
}

// Open expands the widget and hides the notification.
func (w *Widget) Open() {
	w.setOpen(true)
}

// Close collapses the widget.
func (w *Widget) Close() {
	w.setOpen(false)
}

// Toggle flips between collapsed and expanded.
func (w *Widget) Toggle() {
	w.mu.Lock()
	w.setOpenLocked(!w.state.Open)
	w.mu.Unlock()
	w.signal()
}

func (w *Widget) setOpen(open bool) {
	w.mu.Lock()
	changed := w.setOpenLocked(open)
	w.mu.Unlock()
	if changed {
		w.signal()
	}
}

// setOpenLocked applies a transition. Callers hold w.mu.
func (w *Widget) setOpenLocked(open bool) bool {
	if w.state.Open == open {
		return false
	}
	w.state.Open = open
	if open {
		w.state.Notification = false
		w.stopHideTimerLocked()
	}
	return true
}

// SubmitInput submits the pending input.
func (w *Widget) SubmitInput(ctx context.Context) bool {
	w.mu.Lock()
	input := w.state.Input
	w.mu.Unlock()
	return w.Submit(ctx, input)
}

// Submit appends text as a user message and blocks until the assistant
// message (the reply or the localized fallback) is appended. It returns false
// without touching the conversation when text is blank, another request is in
// flight, or the widget is unmounted.
func (w *Widget) Submit(ctx context.Context, text string) bool {
	message := strings.TrimSpace(text)
	if message == "" {
		return false
	}

	w.mu.Lock()
	if w.state.InFlight || w.unmounted {
		w.mu.Unlock()
		return false
	}
	w.state.InFlight = true
	w.state.Input = ""
	w.store.Append(chat.NewUserMessage(message))
	w.mu.Unlock()
	w.signal()

	defer func() {
		w.mu.Lock()
		w.state.InFlight = false
		w.mu.Unlock()
		w.signal()
	}()

	reqCtx, cancel := w.scope(ctx)
	defer cancel()

	reply, err := w.chat.Chat(reqCtx, message)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.unmounted {
		w.logger.Debug().Msg("dropping chat reply after unmount")
		return true
	}
	if err != nil {
		w.logger.Warn().Err(err).Msg("chat request failed, showing fallback")
		reply = w.catalog.Fallback
	}
	w.store.Append(chat.NewAssistantMessage(reply))
	return true
}

// PlayAudio synthesizes and plays text in the background. Failures are
// logged and otherwise ignored.
func (w *Widget) PlayAudio(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	w.mu.Lock()
	if w.unmounted {
		w.mu.Unlock()
		return
	}
	w.wg.Add(1)
	w.mu.Unlock()

	go func() {
		defer w.wg.Done()
		if err := w.playAudio(w.lifetime, text); err != nil {
			w.logger.Warn().Err(err).Msg("audio playback failed")
		}
	}()
}

func (w *Widget) playAudio(ctx context.Context, text string) error {
	if w.speech == nil || w.player == nil {
		return errors.New("speech playback is not configured")
	}
	audio, err := w.speech.Speech(ctx, text)
	if err != nil {
		return errors.Wrap(err, "fetch speech")
	}
	if !w.alive() {
		return nil
	}
	return w.player.Play(ctx, audio)
}

// scope derives a request context that also ends when the widget unmounts.
func (w *Widget) scope(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(w.lifetime, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (w *Widget) alive() bool {
	return w.lifetime.Err() == nil
}

func (w *Widget) signal() {
	select {
	case w.changes <- struct{}{}:
	default:
	}
}
