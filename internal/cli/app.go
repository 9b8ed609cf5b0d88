// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Wiring of configuration, logging, session store, backend and
// controller, plus the command handlers.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/authfront/internal/auth"
	"github.com/jeranaias/authfront/internal/backend"
	"github.com/jeranaias/authfront/internal/config"
	"github.com/jeranaias/authfront/internal/controller"
	"github.com/jeranaias/authfront/internal/i18n"
	"github.com/jeranaias/authfront/internal/logging"
	"github.com/jeranaias/authfront/internal/session"
	"github.com/jeranaias/authfront/internal/ui/authview"
	"github.com/jeranaias/authfront/internal/ui/styles"
	"github.com/jeranaias/authfront/internal/util"
)

// App holds everything a command needs. Dependencies are built on first
// use so that config and version never touch the session store.
// Handlers read configuration through config.Global.
type App struct {
	Log  *zap.Logger
	Args Args

	Out io.Writer
	Err io.Writer

	// NewPrompter opens the line-mode input (default: NewLinePrompter).
	NewPrompter func() Prompter

	store   session.Store
	backend auth.Backend
	ctrl    *controller.Controller
}

// NewApp loads configuration and builds the logger.
func NewApp(args Args, out, errOut io.Writer) (*App, error) {
	var cfg *config.Config
	var err error
	if args.ConfigPath != "" {
		cfg, err = config.LoadFromPath(args.ConfigPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg, err = config.Load()
		if cfg == nil {
			return nil, err
		}
		if err != nil {
			fmt.Fprintln(errOut, styles.RenderWarning(fmt.Sprintf("%v (using defaults)", err)))
		}
	}
	args.apply(cfg)
	config.SetGlobal(cfg)

	log, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Path:   cfg.Logging.Path,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	return &App{
		Log:         log,
		Args:        args,
		Out:         out,
		Err:         errOut,
		NewPrompter: func() Prompter { return NewLinePrompter() },
	}, nil
}

// Close releases the store and flushes the log.
func (a *App) Close() error {
	var err error
	if a.store != nil {
		err = a.store.Close()
	}
	_ = a.Log.Sync()
	return err
}

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Store opens the configured session store.
func (a *App) Store() (session.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	s := config.Global().Session
	store, err := session.Open(session.Options{
		Kind:        s.Store,
		Path:        s.Path,
		Encrypt:     s.Encrypt,
		KeyPath:     s.KeyPath,
		Passphrase:  s.Passphrase,
		RedisAddr:   s.RedisAddr,
		RedisPrefix: s.RedisKeyPrefix,
		Profile:     s.Profile,
		Logger:      a.Log,
	})
	if err != nil {
		return nil, err
	}
	a.store = store
	return store, nil
}

// Backend builds the configured authentication backend.
func (a *App) Backend() (auth.Backend, error) {
	if a.backend != nil {
		return a.backend, nil
	}
	b := config.Global().Backend
	switch {
	case a.Args.Demo:
		a.backend = backend.NewMock(backend.DemoDelays(), a.Log)
	case b.Mode == "http":
		client, err := backend.NewHTTPClient(backend.HTTPConfig{
			BaseURL:   b.BaseURL,
			Timeout:   time.Duration(b.TimeoutSecs) * time.Second,
			UserAgent: "authfront/" + Version,
		}, a.Log)
		if err != nil {
			return nil, err
		}
		a.backend = client
	default:
		a.backend = backend.NewMock(backend.UniformDelays(time.Duration(b.MockDelayMs)*time.Millisecond), a.Log)
	}
	return a.backend, nil
}

// Controller builds the controller, restoring any persisted session.
func (a *App) Controller() (*controller.Controller, error) {
	if a.ctrl != nil {
		return a.ctrl, nil
	}
	store, err := a.Store()
	if err != nil {
		return nil, err
	}
	be, err := a.Backend()
	if err != nil {
		return nil, err
	}
	cfg := config.Global()
	mode, _ := controller.ParseMode(cfg.General.DefaultMode)
	a.ctrl = controller.New(controller.Options{
		Backend:  be,
		Store:    store,
		Language: cfg.General.Language,
		Mode:     mode,
		Logger:   a.Log,
	})
	return a.ctrl, nil
}

// =============================================================================
// DISPATCH
// =============================================================================

// Run executes cmd.
func (a *App) Run(ctx context.Context, cmd Command) error {
	switch cmd {
	case CmdTUI:
		return a.runTUI(ctx)
	case CmdLogin, CmdSetup, CmdProvider:
		return a.runForm(ctx, cmd)
	case CmdStatus:
		return a.runStatus()
	case CmdLogout:
		return a.runLogout(ctx)
	case CmdConfig:
		return a.runConfig()
	case CmdVersion:
		if a.Args.JSON {
			return NewJSONResponse("version", CurrentVersion()).Write(a.Out)
		}
		PrintVersion(a.Out)
		return nil
	default:
		PrintUsage(a.Out)
		return nil
	}
}

func (a *App) runTUI(ctx context.Context) error {
	if a.Args.Plain || !CanRunTUI() {
		// Line mode has no combined form; fall back to the configured one.
		if mode, _ := controller.ParseMode(config.Global().General.DefaultMode); mode == controller.ModeReturningCustomer {
			return a.runForm(ctx, CmdLogin)
		}
		return a.runForm(ctx, CmdSetup)
	}

	ctrl, err := a.Controller()
	if err != nil {
		return err
	}
	model := authview.New(authview.Options{
		Controller: ctrl,
		Theme:      styles.NewTheme(config.Global().UI.Theme),
		Watcher:    session.NewWatcher(session.DefaultWatcherConfig()),
		Logger:     a.Log,
		Context:    ctx,
	})
	_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (a *App) runForm(ctx context.Context, cmd Command) error {
	if err := RequiresTTY(cmd.String()); err != nil {
		return err
	}
	ctrl, err := a.Controller()
	if err != nil {
		return err
	}
	prompt := a.NewPrompter()
	defer prompt.Close()
	return a.form(ctx, NewPlain(ctrl, prompt, a.Out), cmd)
}

func (a *App) form(ctx context.Context, p *Plain, cmd Command) error {
	s := p.ctrl.CurrentState()
	fmt.Fprintln(a.Out, RenderConditional(TitleStyle, i18n.Translate(s.Language, "appTitle", nil)))
	fmt.Fprintln(a.Out, RenderSeparator())

	switch cmd {
	case CmdSetup:
		return p.Setup(ctx)
	case CmdProvider:
		return p.Provider(ctx, a.Args.Provider)
	default:
		return p.Login(ctx, a.Args.Email)
	}
}

// StatusInfo is the status command's report.
type StatusInfo struct {
	Authenticated bool       `json:"authenticated"`
	Email         string     `json:"email,omitempty"`
	Provider      string     `json:"provider,omitempty"`
	Token         string     `json:"token,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Store         string     `json:"store"`
	Backend       string     `json:"backend"`
	Language      string     `json:"language"`
}

// Status reports the persisted session without calling the backend.
func (a *App) Status() (StatusInfo, error) {
	ctrl, err := a.Controller()
	if err != nil {
		return StatusInfo{}, err
	}
	s := ctrl.CurrentState()
	cfg := config.Global()
	info := StatusInfo{
		Authenticated: s.Authenticated(),
		Store:         cfg.Session.Store,
		Backend:       cfg.Backend.Mode,
		Language:      s.Language,
	}
	if a.Args.Demo {
		info.Backend = "mock (demo)"
	}
	if s.Identity != nil {
		info.Email = s.Identity.Email
		info.Provider = s.Identity.Provider.String()
		info.Token = logging.MaskToken(s.Identity.SessionToken)
		if exp, ok := session.TokenExpiry(s.Identity.SessionToken); ok {
			info.ExpiresAt = &exp
		}
	}
	return info, nil
}

func (a *App) runStatus() error {
	info, err := a.Status()
	if err != nil {
		if a.Args.JSON {
			return NewJSONErrorResponse("status", err).Write(a.Out)
		}
		return err
	}
	if a.Args.JSON {
		return NewJSONResponse("status", info).Write(a.Out)
	}

	lang := info.Language
	fmt.Fprintln(a.Out, RenderConditional(TitleStyle, i18n.Translate(lang, "appTitle", nil)))
	fmt.Fprintln(a.Out, RenderSeparator())
	if !info.Authenticated {
		fmt.Fprintln(a.Out, RenderConditional(DimStyle, i18n.Translate(lang, "notLoggedIn", nil)))
	} else {
		fmt.Fprintln(a.Out, RenderConditional(SuccessStyle, i18n.Translate(lang, "loggedInAs", map[string]string{"email": info.Email})))
		a.row("Provider", info.Provider)
		a.row("Token", info.Token)
		// Expired tokens never load, so only live expiries reach here.
		if info.ExpiresAt != nil {
			remaining := max(time.Until(*info.ExpiresAt), 0)
			a.row("Expires", i18n.Translate(lang, "sessionExpiring", map[string]string{"remaining": session.FormatDuration(remaining)}))
		}
	}
	a.row("Store", info.Store)
	a.row("Backend", info.Backend)
	a.row("Language", i18n.Default().DisplayName(lang))
	return nil
}

func (a *App) row(label, value string) {
	fmt.Fprintf(a.Out, "%s%s\n", RenderLabel(label), ValueStyle.Render(value))
}

func (a *App) runLogout(ctx context.Context) error {
	ctrl, err := a.Controller()
	if err != nil {
		return err
	}
	return NewPlain(ctrl, nil, a.Out).Logout(ctx)
}

func (a *App) runConfig() error {
	switch a.Args.Subcommand {
	case "path":
		path, err := a.configPath()
		if err != nil {
			return err
		}
		if a.Args.JSON {
			return NewJSONResponse("config path", map[string]string{"path": path}).Write(a.Out)
		}
		fmt.Fprintln(a.Out, path)
		return nil

	case "get":
		key := NewArgParser(a.Args.Raw).Positional(1)
		v, err := config.Global().Get(key)
		if err != nil {
			return err
		}
		if a.Args.JSON {
			return NewJSONResponse("config get", map[string]any{"key": key, "value": v}).Write(a.Out)
		}
		fmt.Fprintln(a.Out, config.FormatValue(v))
		return nil

	case "set":
		p := NewArgParser(a.Args.Raw)
		return a.setConfig(p.Positional(1), p.Positional(2))

	default:
		cfg := config.Global()
		if a.Args.JSON {
			return NewJSONResponse("config", json.RawMessage(cfg.String())).Write(a.Out)
		}
		keys := config.Keys()
		width := util.MaxWidth(keys...) + 2
		for _, key := range keys {
			v, err := cfg.Get(key)
			if err != nil {
				continue
			}
			fmt.Fprintf(a.Out, "%s%s\n", RenderConditional(DimStyle, util.PadRight(key, width)), config.FormatValue(v))
		}
		return nil
	}
}

func (a *App) configPath() (string, error) {
	if a.Args.ConfigPath != "" {
		return a.Args.ConfigPath, nil
	}
	return config.ConfigPathTOML()
}

// setConfig changes one key in the config file and reloads the global
// configuration. The file is read afresh so command-line overrides are
// never written back.
func (a *App) setConfig(key, value string) error {
	path, err := a.configPath()
	if err != nil {
		return err
	}

	var cfg *config.Config
	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		cfg, err = config.LoadFromPath(path)
	case a.Args.ConfigPath != "":
		cfg = config.Default()
	default:
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	if err := cfg.Set(key, value); err != nil {
		return err
	}
	if a.Args.ConfigPath != "" {
		err = config.SaveTo(cfg, path)
	} else {
		err = config.Save(cfg)
	}
	if err != nil {
		return err
	}
	if err := config.ReloadGlobal(a.Args.ConfigPath); err != nil {
		return err
	}
	a.Args.apply(config.Global())
	a.Log.Info("config updated", zap.String("key", key), zap.String("path", path))

	v, _ := cfg.Get(key)
	if a.Args.JSON {
		return NewJSONResponse("config set", map[string]any{"key": key, "value": v, "path": path}).Write(a.Out)
	}
	fmt.Fprintf(a.Out, "%s %s = %s\n", styles.RenderSuccess("saved"), key, config.FormatValue(v))
	return nil
}

// ExitCode maps a command error to a process exit status.
func ExitCode(err error) int {
	var usage *UsageError
	var tty *TTYRequiredError
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrAborted):
		return 130
	case errors.As(err, &usage):
		return 2
	case errors.As(err, &tty):
		return 2
	default:
		return 1
	}
}

// Main parses argv, runs the command and returns the exit status.
func Main(ctx context.Context, argv []string) int {
	cmd, args, err := Parse(argv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n\n", styles.RenderError(err.Error()))
		PrintUsage(os.Stderr)
		return ExitCode(err)
	}
	if cmd == CmdHelp {
		PrintUsage(os.Stdout)
		return 0
	}

	app, err := NewApp(args, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, styles.RenderError(err.Error()))
		return 1
	}
	defer app.Close()

	if err := app.Run(ctx, cmd); err != nil {
		if !errors.Is(err, ErrNotAuthenticated) && !errors.Is(err, ErrAborted) {
			fmt.Fprintln(os.Stderr, styles.RenderError(err.Error()))
		}
		return ExitCode(err)
	}
	return 0
}
