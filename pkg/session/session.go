// Package session wires the grants store, the permission screen, the toggle
// controller and the grant committer together for one app. A session lives
// until the app context changes; Host replaces it when a catalog for a
// different app arrives.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sambigeara/healthperm/pkg/catalog"
	"github.com/sambigeara/healthperm/pkg/grantfile"
	"github.com/sambigeara/healthperm/pkg/grants"
	"github.com/sambigeara/healthperm/pkg/observability/metrics"
	"github.com/sambigeara/healthperm/pkg/screen"
	"github.com/sambigeara/healthperm/pkg/toggle"
)

const tracerName = "github.com/sambigeara/healthperm/pkg/session"

var (
	ErrAppChanged = errors.New("catalog is for a different app")
	ErrNoApp      = errors.New("catalog names no app")
)

type Config struct {
	Metrics        *metrics.Instruments
	Reporter       grantfile.Reporter
	TracerProvider trace.TracerProvider
	GrantsPath     string
}

type Session struct {
	log        *zap.SugaredLogger
	tracer     trace.Tracer
	store      *grants.Store
	screen     *screen.Screen
	controller *toggle.Controller
	committer  *grantfile.Committer
	cancel     context.CancelFunc
	app        catalog.App
	cfg        Config
	ID         uuid.UUID
}

func Start(ctx context.Context, app catalog.App, cfg Config) *Session {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.Noop()
	}
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}

	id := uuid.New()
	store := grants.NewStore()
	scr := screen.New(store, app)
	ctrl := toggle.New(store, scr.AllowAll(), toggle.WithMetrics(cfg.Metrics))
	scr.Bind(ctrl)

	committerOpts := []grantfile.Option{grantfile.WithMetrics(cfg.Metrics)}
	if cfg.Reporter != nil {
		committerOpts = append(committerOpts, grantfile.WithReporter(cfg.Reporter))
	}
	committer := grantfile.NewCommitter(cfg.GrantsPath, app.PackageName, store, committerOpts...)

	runCtx, cancel := context.WithCancel(ctx)
	go func() { _ = committer.Run(runCtx) }()

	s := &Session{
		log:        zap.S().Named("session").With("session", id.String(), "app", app.PackageName),
		tracer:     cfg.TracerProvider.Tracer(tracerName),
		store:      store,
		screen:     scr,
		controller: ctrl,
		committer:  committer,
		cancel:     cancel,
		app:        app,
		cfg:        cfg,
		ID:         id,
	}
	s.log.Infow("session started")
	return s
}

func (s *Session) App() catalog.App { return s.app }

func (s *Session) Store() *grants.Store { return s.store }

func (s *Session) Screen() *screen.Screen { return s.screen }

// Load replaces the permission list from cat, taking each permission's
// initial state from the grants file. It must run on the control goroutine.
func (s *Session) Load(ctx context.Context, cat *catalog.Catalog) error {
	_, span := s.tracer.Start(ctx, "session.Load", trace.WithAttributes(
		attribute.String("app", cat.App.PackageName),
		attribute.Int("permissions", len(cat.Permissions)),
		attribute.String("session", s.ID.String()),
	))
	defer span.End()

	err := s.load(cat)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (s *Session) load(cat *catalog.Catalog) error {
	if cat.App.PackageName != s.app.PackageName {
		return fmt.Errorf("session for %s, catalog for %s: %w", s.app.PackageName, cat.App.PackageName, ErrAppChanged)
	}

	f, err := grantfile.Load(s.cfg.GrantsPath)
	if err != nil {
		return err
	}
	items, err := cat.Items(f.Granted(s.app.PackageName))
	if err != nil {
		return err
	}

	s.app = cat.App
	s.screen.SetApp(cat.App)
	if err := s.store.Load(items); err != nil {
		return err
	}
	s.log.Debugw("permissions loaded", "count", len(items), "generation", s.store.Generation())
	return nil
}

// Close detaches the screen and controller and waits for pending grant
// commits to be written.
func (s *Session) Close() {
	s.controller.Close()
	s.screen.Close()
	s.cancel()
	<-s.committer.Stopped()
	s.log.Infow("session ended")
}

// Host owns the current session and replaces it when the app changes.
type Host struct {
	ctx     context.Context
	current *Session
	cfg     Config
}

func NewHost(ctx context.Context, cfg Config) *Host {
	return &Host{ctx: ctx, cfg: cfg}
}

func (h *Host) Current() *Session {
	return h.current
}

// Apply loads cat into the current session, first replacing the session if
// cat belongs to a different app. A catalog without a package name is
// rejected and the current session is kept.
func (h *Host) Apply(cat *catalog.Catalog) (*Session, error) {
	if strings.TrimSpace(cat.App.PackageName) == "" {
		return h.current, ErrNoApp
	}
	if h.current == nil || h.current.App().PackageName != cat.App.PackageName {
		if h.current != nil {
			h.current.Close()
		}
		h.current = Start(h.ctx, cat.App, h.cfg)
	}
	if err := h.current.Load(h.ctx, cat); err != nil {
		return h.current, err
	}
	return h.current, nil
}

func (h *Host) Close() {
	if h.current != nil {
		h.current.Close()
		h.current = nil
	}
}
