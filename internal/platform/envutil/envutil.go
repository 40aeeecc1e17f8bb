package envutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// LoadDotenv loads the given dotenv files, skipping the ones that do not exist.
// Variables already present in the process environment win. It returns how many
// files were loaded.
func LoadDotenv(files ...string) (int, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if strings.TrimSpace(f) == "" {
			continue
		}
		if _, err := os.Stat(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return 0, fmt.Errorf("stat %s: %w", f, err)
		}
		existing = append(existing, f)
	}
	if len(existing) == 0 {
		return 0, nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return 0, fmt.Errorf("load dotenv: %w", err)
	}
	return len(existing), nil
}

// Parse fills a config struct from the environment using `env` struct tags.
// Missing `required` variables are reported together in one error.
func Parse[T any]() (T, error) {
	var out T
	if err := env.ParseWithOptions(&out, env.Options{}); err != nil {
		return out, fmt.Errorf("parse env: %w", err)
	}
	return out, nil
}

func Int(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
