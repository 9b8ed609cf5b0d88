// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Command-line parsing for authfront.
package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/jeranaias/authfront/internal/config"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdLogin
	CmdSetup
	CmdProvider
	CmdStatus
	CmdLogout
	CmdConfig
	CmdVersion
	CmdHelp
)

func (c Command) String() string {
	switch c {
	case CmdTUI:
		return "tui"
	case CmdLogin:
		return "login"
	case CmdSetup:
		return "setup"
	case CmdProvider:
		return "provider"
	case CmdStatus:
		return "status"
	case CmdLogout:
		return "logout"
	case CmdConfig:
		return "config"
	case CmdVersion:
		return "version"
	default:
		return "help"
	}
}

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Lang       string
	ConfigPath string
	Plain      bool
	Demo       bool
	JSON       bool
	Verbose    bool

	// Command-specific
	Subcommand string
	Provider   string
	Email      string

	// Raw args remaining after the command word
	Raw []string
}

// apply layers the command-line overrides onto cfg.
func (a Args) apply(cfg *config.Config) {
	if a.Lang != "" {
		cfg.General.Language = a.Lang
	}
	if a.Demo {
		cfg.Backend.Mode = "mock"
	}
	if a.Verbose {
		cfg.Logging.Level = "debug"
	}
}

const usageText = `authfront - customer setup and login from the terminal

Usage:
  authfront [tui]                 Start the full-screen form (default)
  authfront login [--email ADDR]  Log in with email and password
  authfront setup                 Set up a new customer account
  authfront provider <name>       Log in with google, facebook or apple
  authfront status                Show the persisted session
  authfront logout                Clear the persisted session
  authfront config [show|path|get KEY]
                                  Show configuration
  authfront config set KEY VALUE  Change a setting in the config file
  authfront version               Show version information

Global Flags:
  --lang CODE       Display language (en, es, he, ja)
  --config FILE     Use a specific config file
  --plain           Line-mode prompts instead of the full-screen form
  --demo            Use the mock backend with realistic delays
  --json            Machine-readable output (status, config, version)
  -v, --verbose     Debug logging

Environment:
  AUTHFRONT_HOME               Config directory (default ~/.authfront)
  AUTHFRONT_LANG               Display language
  AUTHFRONT_BACKEND_MODE       mock or http
  AUTHFRONT_BACKEND_URL        Base URL of the authentication API
  AUTHFRONT_SESSION_STORE      file, sqlite, redis or memory
  AUTHFRONT_SESSION_PASSPHRASE Passphrase for the encrypted session file
`

// PrintUsage writes the usage text.
func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usageText)
}

// PrintVersion writes version information.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "authfront %s\n", Version)
	fmt.Fprintf(w, "  Commit:  %s\n", GitCommit)
	fmt.Fprintf(w, "  Built:   %s\n", BuildDate)
	fmt.Fprintf(w, "  Go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// VersionInfo is the --json form of the version command.
type VersionInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// CurrentVersion returns the build's version information.
func CurrentVersion() VersionInfo {
	return VersionInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// =============================================================================
// PARSING
// =============================================================================

// UsageError reports a command line that cannot be executed.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// Parse parses argv (without the program name).
func Parse(argv []string) (Command, Args, error) {
	remaining, args, err := parseGlobalFlags(argv)
	if err != nil {
		return CmdHelp, args, err
	}

	if len(remaining) == 0 {
		return CmdTUI, args, nil
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	args.Raw = remaining
	p := NewArgParser(remaining)

	switch cmd {
	case "tui":
		return CmdTUI, args, nil

	case "login", "signin":
		args.Email = p.Flag("email")
		return CmdLogin, args, nil

	case "setup", "signup", "register":
		return CmdSetup, args, nil

	case "provider":
		args.Provider = strings.ToLower(p.Subcommand())
		if args.Provider == "" {
			return CmdProvider, args, &UsageError{Message: "provider: missing provider name (google, facebook, apple)"}
		}
		return CmdProvider, args, nil

	case "status", "s":
		return CmdStatus, args, nil

	case "logout", "signout":
		return CmdLogout, args, nil

	case "config":
		args.Subcommand = strings.ToLower(p.Subcommand())
		switch args.Subcommand {
		case "":
			args.Subcommand = "show"
		case "show", "path":
		case "get":
			if p.Positional(1) == "" {
				return CmdConfig, args, &UsageError{Message: "config get: missing key"}
			}
		case "set":
			if p.PositionalCount() != 3 {
				return CmdConfig, args, &UsageError{Message: "config set: expected KEY VALUE"}
			}
		default:
			return CmdConfig, args, &UsageError{Message: fmt.Sprintf("config: unknown subcommand %q", args.Subcommand)}
		}
		return CmdConfig, args, nil

	case "version":
		return CmdVersion, args, nil

	case "help":
		return CmdHelp, args, nil

	default:
		return CmdHelp, args, &UsageError{Message: fmt.Sprintf("unknown command %q", cmd)}
	}
}

// parseGlobalFlags extracts global flags from anywhere on the command line.
func parseGlobalFlags(argv []string) ([]string, Args, error) {
	var remaining []string
	var args Args

	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		name, val, hasVal := strings.Cut(arg, "=")

		takeValue := func() (string, error) {
			if hasVal {
				return val, nil
			}
			if i+1 >= len(argv) || strings.HasPrefix(argv[i+1], "-") {
				return "", &UsageError{Message: name + " requires a value"}
			}
			i++
			return argv[i], nil
		}

		var err error
		switch name {
		case "--lang", "-l":
			args.Lang, err = takeValue()
		case "--config", "-c":
			args.ConfigPath, err = takeValue()
		case "--plain":
			args.Plain = true
		case "--demo":
			args.Demo = true
		case "--json":
			args.JSON = true
		case "-v", "--verbose":
			args.Verbose = true
		case "-h", "--help":
			remaining = append([]string{"help"}, remaining...)
		case "--version":
			remaining = append([]string{"version"}, remaining...)
		default:
			remaining = append(remaining, arg)
		}
		if err != nil {
			return nil, args, err
		}
	}

	return remaining, args, nil
}
