// Package defaults resolves the per-user data directory and seeds the
// default configuration file on first run.
package defaults

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	appDirName     = "deskbot"
	ConfigFileName = "deskbot.yaml"
)

// DataDir returns the per-user data directory, honoring DESKBOT_DATA_DIR
// for tests and portable installs.
func DataDir() (string, error) {
	if dir := os.Getenv("DESKBOT_DATA_DIR"); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, appDirName), nil
}

// ConfigPath returns the resolved config file location.
func ConfigPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// EnsureDataDir creates the data directory and writes a commented default
// config if none exists yet. It returns the config path.
func EnsureDataDir() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !os.IsNotExist(err) {
		return "", err
	}
	if err := os.WriteFile(path, defaultConfigYAML(), 0o600); err != nil {
		return "", err
	}
	return path, nil
}

func defaultConfigYAML() []byte {
	doc := map[string]any{
		"Host": "127.0.0.1",
		"Port": 27411,
		"Agent": map[string]any{
			"Provider": "auto",
			"APIKey":   "${ANTHROPIC_API_KEY}",
		},
	}
	out, err := yaml.Marshal(doc)
	if err != nil {
		// Marshalling a literal map of scalars cannot fail.
		panic(err)
	}
	return out
}
