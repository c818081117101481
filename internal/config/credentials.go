package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "todolist-tui"
	keyringUser    = "session-token"
	credFileName   = ".credentials"

	// TokenEnv overrides any stored session token.
	TokenEnv = "TODOLIST_TOKEN"
)

// TokenSource tells where a session token was found.
type TokenSource int

const (
	SourceNone TokenSource = iota
	SourceEnv
	SourceKeyring
	SourceFile
)

// String returns a short name for logs.
func (s TokenSource) String() string {
	switch s {
	case SourceEnv:
		return "env"
	case SourceKeyring:
		return "keyring"
	case SourceFile:
		return "file"
	default:
		return "none"
	}
}

// DataDir returns the path to the data directory for secure storage and logs.
// Uses XDG_DATA_HOME or defaults to ~/.local/share/todolist-tui/
func DataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dataHome = filepath.Join(homeDir, ".local", "share")
	}

	dataDir := filepath.Join(dataHome, appName)
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return dataDir, nil
}

// GetToken retrieves the session token from available sources.
// Priority: 1. TODOLIST_TOKEN env var, 2. System keyring, 3. Credentials file.
// An empty token with SourceNone means nobody is logged in.
func GetToken() (string, TokenSource, error) {
	if token := strings.TrimSpace(os.Getenv(TokenEnv)); token != "" {
		return token, SourceEnv, nil
	}

	token, err := keyring.Get(keyringService, keyringUser)
	if err == nil && strings.TrimSpace(token) != "" {
		return strings.TrimSpace(token), SourceKeyring, nil
	}

	dataDir, err := DataDir()
	if err != nil {
		return "", SourceNone, err
	}

	data, err := os.ReadFile(filepath.Join(dataDir, credFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", SourceNone, nil
		}
		return "", SourceNone, fmt.Errorf("failed to read credentials file: %w", err)
	}

	token = strings.TrimSpace(string(data))
	if token == "" {
		return "", SourceNone, nil
	}
	return token, SourceFile, nil
}

// SaveToken stores the session token.
// Tries system keyring first, falls back to credentials file.
func SaveToken(token string) (TokenSource, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return SourceNone, fmt.Errorf("token cannot be empty")
	}

	if err := keyring.Set(keyringService, keyringUser, token); err == nil {
		return SourceKeyring, nil
	}

	dataDir, err := DataDir()
	if err != nil {
		return SourceNone, err
	}

	credPath := filepath.Join(dataDir, credFileName)
	if err := os.WriteFile(credPath, []byte(token), 0600); err != nil {
		return SourceNone, fmt.Errorf("failed to write credentials file: %w", err)
	}

	return SourceFile, nil
}

// ClearToken removes the stored session token from the keyring and the
// credentials file. The environment variable is left alone.
func ClearToken() error {
	// The keyring may be unavailable or empty; the file is removed regardless.
	_ = keyring.Delete(keyringService, keyringUser)

	dataDir, err := DataDir()
	if err != nil {
		return err
	}

	credPath := filepath.Join(dataDir, credFileName)
	if err := os.Remove(credPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove credentials file: %w", err)
	}

	return nil
}

// HasToken returns true if a token is available from any source.
func HasToken() bool {
	token, _, _ := GetToken()
	return token != ""
}
