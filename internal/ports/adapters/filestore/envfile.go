package filestore

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
)

// SaveEnv merges updates into the dotenv file at path, keeping other keys.
// Empty values remove the key.
func SaveEnv(path string, updates map[string]string) error {
	env, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("read %s: %w", path, err)
		}
		env = map[string]string{}
	}
	for k, v := range updates {
		if v == "" {
			delete(env, k)
			continue
		}
		env[k] = v
	}
	if err := godotenv.Write(env, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
