// Package session holds the one set of sync components an editor process
// runs with. A Session is opened once at startup, passed explicitly to the
// code that needs the store, gateway or dispatcher, and closed at shutdown.
package session

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/grovetools/sheetsync/config"
	"github.com/grovetools/sheetsync/errors"
	"github.com/grovetools/sheetsync/logging"
	"github.com/grovetools/sheetsync/pkg/backend"
	"github.com/grovetools/sheetsync/pkg/gateway"
	"github.com/grovetools/sheetsync/pkg/input"
	"github.com/grovetools/sheetsync/pkg/state"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Options controls how Open builds a session. Zero values select the
// configured or default behaviour.
type Options struct {
	// WorkDir is where the project config search starts. Defaults to the cwd.
	WorkDir string
	// Config skips loading when set.
	Config *config.Config
	// Client skips dialing the configured backend when set.
	Client backend.Client
	// Registry receives the gateway metrics.
	Registry prometheus.Registerer
	// Prompter supplies paths for new, open and save-as.
	Prompter input.Prompter
	// Logger overrides the component loggers.
	Logger *logrus.Entry

	// Follow feeds patches pushed by the backend into the gateway.
	Follow bool
	// Watch reloads keybinding overrides when a config file changes.
	Watch bool
}

// Session wires the store, backend, gateway and dispatcher together.
type Session struct {
	Store      *state.Store
	Client     backend.Client
	Gateway    *gateway.Gateway
	Dispatcher *input.Dispatcher

	logger *logrus.Entry

	mu     sync.RWMutex
	config *config.Config

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
	closeErr  error
}

// Open loads configuration, connects to the backend and fetches the initial
// snapshot. The returned session owns the client and must be closed.
func Open(ctx context.Context, opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger("session")
	}

	workDir := opts.WorkDir
	if workDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to get current directory")
		}
		workDir = cwd
	}

	cfg := opts.Config
	if cfg == nil {
		loaded, err := config.LoadFrom(workDir)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.SetDefaults()

	client := opts.Client
	if client == nil {
		dialed, err := backend.New(ctx, *cfg.Backend)
		if err != nil {
			return nil, err
		}
		client = dialed
	}

	storeLogger, gatewayLogger, inputLogger := opts.Logger, opts.Logger, opts.Logger
	if opts.Logger == nil {
		storeLogger = logging.NewLogger("store")
		gatewayLogger = logging.NewLogger("gateway")
		inputLogger = logging.NewLogger("input")
	}

	store := state.New(
		state.WithLogger(storeLogger),
		state.WithTestEnforcement(cfg.Patch.EnforceTest),
	)

	gwOpts := []gateway.Option{gateway.WithLogger(gatewayLogger)}
	if opts.Registry != nil {
		gwOpts = append(gwOpts, gateway.WithRegistry(opts.Registry))
	}
	gw := gateway.New(store, client, gwOpts...)

	dispatcherOpts := []input.DispatcherOption{
		input.WithLogger(inputLogger),
		input.WithKeymap(keymapFor(cfg, logger)),
	}
	if opts.Prompter != nil {
		dispatcherOpts = append(dispatcherOpts, input.WithPrompter(opts.Prompter))
	}

	bgCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &Session{
		Store:      store,
		Client:     client,
		Gateway:    gw,
		Dispatcher: input.NewDispatcher(gw, store, dispatcherOpts...),
		logger:     logger,
		config:     cfg,
		cancel:     cancel,
	}

	// The stream opens before get_state so pushes racing the snapshot are
	// sequenced rather than lost.
	if opts.Follow {
		if err := s.follow(bgCtx); err != nil {
			s.Close()
			return nil, err
		}
	}
	if err := gw.Bootstrap(ctx); err != nil {
		s.Close()
		return nil, err
	}
	logger.WithField("version", store.Version()).Debug("Adopted backend snapshot")

	if opts.Watch {
		if err := s.watch(bgCtx, workDir); err != nil {
			logger.WithError(err).Warn("Config changes will not be picked up until restart")
		}
	}
	return s, nil
}

// Config returns the configuration currently in effect.
func (s *Session) Config() *config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Reload adopts a new configuration. Only keybinding overrides take effect
// in a running session; backend and patch settings need a new session.
func (s *Session) Reload(cfg *config.Config) {
	if cfg == nil {
		return
	}
	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()

	s.Dispatcher.SetKeymap(keymapFor(cfg, s.logger))
	s.logger.Info("Reloaded keybindings")
}

// Close stops background work, waits for results already in flight to be
// applied, and closes the backend client and store subscriptions. Calls after
// the first return the first result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.Dispatcher.Detach()
		s.cancel()
		s.wg.Wait()

		ctx, cancel := context.WithTimeout(context.Background(), closeDrainTimeout)
		if err := s.Gateway.Drain(ctx); err != nil {
			s.logger.WithField("pending", s.Gateway.Pending()).Warn("Closing with backend calls still unanswered")
		}
		cancel()

		s.closeErr = s.Client.Close()
		s.Store.Close()
	})
	return s.closeErr
}

// closeDrainTimeout bounds how long Close waits for outstanding results.
const closeDrainTimeout = 2 * time.Second

func (s *Session) follow(ctx context.Context) error {
	ch, err := s.Client.Stream(ctx)
	if err != nil {
		return err
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Gateway.Follow(ctx, ch)
		s.logger.Debug("Stopped following backend pushes")
	}()
	return nil
}

func (s *Session) watch(ctx context.Context, workDir string) error {
	w, err := config.NewWatcher(workDir, 0, s.logger, s.Reload)
	if err != nil {
		return err
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		w.Start(ctx)
	}()
	return nil
}

// keymapFor builds the editor keymap with the config's overrides applied.
func keymapFor(cfg *config.Config, logger *logrus.Entry) input.Keymap {
	km := input.DefaultKeymap()
	if cfg.Keybindings == nil {
		return km
	}
	for _, action := range input.ApplyOverrides(&km, cfg.Keybindings.Editor) {
		logger.WithField("action", action).Warn("Ignoring keybinding override: unknown action or unparseable key")
	}
	return km
}
