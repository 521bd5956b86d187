//go:build !tinygo

package settings

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// EnvFile persists settings as a dotenv file, so the same file can seed the
// process environment during development.
type EnvFile struct {
	Path string
}

func (e EnvFile) Load() (map[string]string, error) {
	if _, err := os.Stat(e.Path); os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	kv, err := godotenv.Read(e.Path)
	if err != nil {
		return nil, fmt.Errorf("settings: read %s: %w", e.Path, err)
	}
	return kv, nil
}

func (e EnvFile) Save(kv map[string]string) error {
	if err := godotenv.Write(kv, e.Path); err != nil {
		return fmt.Errorf("settings: write %s: %w", e.Path, err)
	}
	return nil
}
