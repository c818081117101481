// Package main is the entry point for the todolist TUI application.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/hy4ri/todolist-tui/internal/api"
	"github.com/hy4ri/todolist-tui/internal/auth"
	"github.com/hy4ri/todolist-tui/internal/config"
	"github.com/hy4ri/todolist-tui/internal/task"
	"github.com/hy4ri/todolist-tui/internal/tui"
)

const version = "0.1.0"

const helpText = `todolist-tui - Terminal client for a self-hosted todo list server

USAGE:
    todolist-tui [OPTIONS]

OPTIONS:
    -h, --help      Show this help message
    -v, --version   Show version information
    --init          Create a template config file
    --calendar      Start in calendar view
    --login         Sign in and store the session token
    --register      Create an account, then sign in
    --logout        Remove the stored session token

CONFIGURATION:
    Config file: ~/.config/todolist-tui/config.yaml
    The session token is kept in the system keyring, or read from the
    TODOLIST_TOKEN environment variable when set.

    To get started:
    1. Run 'todolist-tui --init' to create a config template
    2. Point server.url at your todo server
    3. Run 'todolist-tui --login' (or --register for a new account)
    4. Run 'todolist-tui'

KEYBINDINGS:
    Navigation:
        j/k         Move down/up
        gg/G        Go to top/bottom
        Enter       Open day (calendar)
        Esc         Go back

    Task Actions:
        a           Add new task
        e           Edit selected task
        x           Complete/uncomplete task
        dd          Delete task
        y           Copy title

    View:
        /           Search tasks
        s           Cycle all/active/completed
        c           Cycle category
        p           Toggle priority ordering
        v           Switch list/calendar
        [ / ]       Previous/next month
        t           Today

    Other:
        r           Refresh / retry
        ?           Show help
        q           Quit
`

const configTemplate = `# todolist-tui configuration
# Location: ~/.config/todolist-tui/config.yaml

server:
  # Base URL of the todo server API
  url: ` + api.DefaultBaseURL + `
  # Per-request timeout
  timeout: 30s

auth:
  # Remembered to prefill the --login prompt
  email: ""

ui:
  # Enable Vim-style keybindings (default: true)
  vim_mode: true
  # Initial view: list or calendar
  default_view: list
  # Order tasks by priority, then newest first
  priority_order: true
  # Desktop notifications for tasks due today
  notifications: true

log:
  # debug, info, warn or error
  level: info
  # Defaults to ~/.local/share/todolist-tui/debug.log
  file: ""
`

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Define flags
	var (
		showHelp     bool
		showVersion  bool
		initConfig   bool
		viewCalendar bool
		login        bool
		register     bool
		logout       bool
	)

	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version")
	flag.BoolVar(&showVersion, "v", false, "Show version (shorthand)")
	flag.BoolVar(&initConfig, "init", false, "Create template config file")
	flag.BoolVar(&viewCalendar, "calendar", false, "Start in calendar view")
	flag.BoolVar(&login, "login", false, "Sign in")
	flag.BoolVar(&register, "register", false, "Create an account")
	flag.BoolVar(&logout, "logout", false, "Remove the stored session token")

	flag.Usage = func() {
		fmt.Print(helpText)
	}

	flag.Parse()

	// Handle flags
	if showHelp {
		fmt.Print(helpText)
		return nil
	}

	if showVersion {
		fmt.Printf("todolist-tui version %s\n", version)
		return nil
	}

	if initConfig {
		return createConfigTemplate()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	provider := auth.NewProvider(auth.WithLogger(logger))
	client := api.NewClient(cfg.Server.URL, provider,
		api.WithTimeout(cfg.Server.Timeout),
		api.WithLogger(logger),
	)

	switch {
	case logout:
		if err := provider.Logout(); err != nil {
			return fmt.Errorf("failed to log out: %w", err)
		}
		fmt.Println("Logged out.")
		return nil
	case register:
		return runRegister(cfg, provider, client)
	case login:
		return runLogin(cfg, provider, client)
	}

	if viewCalendar {
		cfg.UI.DefaultView = string(task.ViewCalendar)
	}

	return runApp(cfg, provider, client, logger)
}

// newLogger opens the debug log file. The terminal belongs to the TUI, so
// nothing is logged to stderr.
func newLogger(cfg *config.Config) (*log.Logger, func(), error) {
	path, err := cfg.LogPath()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get log path: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = log.InfoLevel
	}
	logger := log.NewWithOptions(f, log.Options{
		Level:           level,
		ReportTimestamp: true,
		Prefix:          "todolist",
	})
	return logger, func() { f.Close() }, nil
}

// createConfigTemplate creates a template configuration file.
func createConfigTemplate() error {
	path, err := config.WriteTemplate(configTemplate)
	if errors.Is(err, os.ErrExist) {
		fmt.Printf("Config file already exists: %s\n", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Config file created: %s\n\n", path)
	fmt.Println("Next steps:")
	fmt.Println("  1. Set server.url to your todo server")
	fmt.Println("  2. Run 'todolist-tui --login'")
	fmt.Println("  3. Run 'todolist-tui' to start")

	return nil
}

func prompt(r *bufio.Reader, label, fallback string) (string, error) {
	if fallback != "" {
		fmt.Printf("%s [%s]: ", label, fallback)
	} else {
		fmt.Printf("%s: ", label)
	}
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	if line = strings.TrimSpace(line); line == "" {
		return fallback, nil
	}
	return line, nil
}

func readPassword() (string, error) {
	fmt.Print("Password: ")
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

// runLogin prompts for credentials and stores the session token.
func runLogin(cfg *config.Config, provider *auth.Provider, client *api.Client) error {
	r := bufio.NewReader(os.Stdin)
	email, err := prompt(r, "Email", cfg.Auth.Email)
	if err != nil {
		return err
	}
	password, err := readPassword()
	if err != nil {
		return err
	}
	return finishLogin(cfg, provider, client, email, password)
}

// runRegister creates an account and signs in with it.
func runRegister(cfg *config.Config, provider *auth.Provider, client *api.Client) error {
	r := bufio.NewReader(os.Stdin)
	username, err := prompt(r, "Username", "")
	if err != nil {
		return err
	}
	email, err := prompt(r, "Email", cfg.Auth.Email)
	if err != nil {
		return err
	}
	password, err := readPassword()
	if err != nil {
		return err
	}

	user, err := client.Register(context.Background(), api.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("failed to register: %w", err)
	}
	fmt.Printf("Account %s created.\n", user.Username)

	return finishLogin(cfg, provider, client, email, password)
}

func finishLogin(cfg *config.Config, provider *auth.Provider, client *api.Client, email, password string) error {
	session, err := provider.Login(context.Background(), client, email, password)
	if err != nil {
		return fmt.Errorf("failed to log in: %w", err)
	}

	if cfg.Auth.Email != email {
		cfg.Auth.Email = email
		if err := config.Save(cfg); err != nil {
			// Non-fatal: just warn
			fmt.Fprintf(os.Stderr, "Warning: failed to save config: %v\n", err)
		}
	}

	name := session.Username
	if name == "" {
		name = email
	}
	fmt.Printf("Logged in as %s (token stored in %s).\n", name, session.Source)
	return nil
}

// runApp starts the main TUI application.
func runApp(cfg *config.Config, provider *auth.Provider, client *api.Client, logger *log.Logger) error {
	if _, err := provider.Session(); errors.Is(err, auth.ErrNoCredential) {
		fmt.Println("Not logged in.")
		fmt.Println()
		fmt.Println("To get started:")
		fmt.Println("  1. Run 'todolist-tui --login' (or --register)")
		fmt.Println("  2. Run 'todolist-tui' again")
		return nil
	}

	store := api.NewTaskStore(client)
	ctrl := task.NewController(store, provider, task.WithLogger(logger))
	logger.Info("starting", "version", version, "store", store)

	app := tui.NewApp(ctrl, cfg, tui.WithLogger(logger))
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	return nil
}
