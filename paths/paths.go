package paths

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	dirName     = ".braveagent"
	envFileName = ".env"
)

func ConfigDir() (string, error) {
	if v := os.Getenv("BRAVEAGENT_HOME"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, dirName), nil
}

// EnvPath is the per-user dotenv file, read after the working directory's.
func EnvPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, envFileName), nil
}

func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return nil
}
