package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobboard/internal/util"
	"jobboard/pkg/auth"
	"jobboard/pkg/events"
	"jobboard/pkg/storage"
	"jobboard/pkg/store"
	"jobboard/pkg/textutil"
)

const (
	defaultMaxUploadBytes = 5 << 20
	resumeURLExpiry       = 15 * time.Minute
)

var defaultResumeExtensions = []string{".pdf", ".doc", ".docx"}

// Config holds runtime dependencies for the core application.
type Config struct {
	Store    store.Store
	Sessions store.SessionStore
	Objects  storage.ObjectStore
	Events   events.Publisher

	// Demo enables the demo accounts. Nil disables them.
	Demo *auth.DemoDirectory

	MaxUploadBytes    int64
	AllowedExtensions []string
	ExcerptRunes      int

	// Now overrides the clock in tests.
	Now func() time.Time
}

// App is the core application service wiring together storage and auth logic.
type App struct {
	store    store.Store
	sessions store.SessionStore
	objects  storage.ObjectStore
	events   events.Publisher
	demo     *auth.DemoDirectory

	maxUploadBytes int64
	allowedExt     []string
	excerptRunes   int
	now            func() time.Time
}

// New constructs the application from injected dependencies.
func New(cfg Config) (*App, error) {
	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}
	if cfg.Sessions == nil {
		return nil, errors.New("session store is required")
	}
	if cfg.Events == nil {
		cfg.Events = events.NewLogPublisher(nil)
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	exts := make([]string, 0, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		exts = defaultResumeExtensions
	}
	if cfg.ExcerptRunes <= 0 {
		cfg.ExcerptRunes = textutil.DefaultExcerptRunes
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &App{
		store:          cfg.Store,
		sessions:       cfg.Sessions,
		objects:        cfg.Objects,
		events:         cfg.Events,
		demo:           cfg.Demo,
		maxUploadBytes: cfg.MaxUploadBytes,
		allowedExt:     exts,
		excerptRunes:   cfg.ExcerptRunes,
		now:            cfg.Now,
	}, nil
}

// MaxUploadBytes is the largest accepted resume upload.
func (a *App) MaxUploadBytes() int64 {
	return a.maxUploadBytes
}

// publish sends a domain event. Delivery failures are logged and dropped.
func (a *App) publish(ctx context.Context, eventType string, data map[string]any) {
	evt := events.Event{
		ID:         util.NewID(),
		Type:       eventType,
		OccurredAt: a.now(),
		Data:       data,
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := a.events.Publish(pubCtx, evt); err != nil {
		util.LoggerFromContext(ctx).Warn("event publish failed", "type", eventType, "event_id", evt.ID, "err", err)
	}
}

func wrap(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}
