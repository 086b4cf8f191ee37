package repo

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/gritvcs/grit/pkg/object"
)

// Config stores repository-local settings.
type Config struct {
	User    UserConfig    `toml:"user"`
	Signing SigningConfig `toml:"signing"`
}

// UserConfig identifies the author/committer for new commits.
type UserConfig struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

// SigningConfig selects the SSH key used for commit signing.
type SigningConfig struct {
	Key string `toml:"key"`
}

func (r *Repo) configPath() string {
	return filepath.Join(r.GritDir, "config.toml")
}

// ReadConfig reads .grit/config.toml. A missing file returns an empty
// config.
func (r *Repo) ReadConfig() (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(r.configPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("read config: unmarshal: %w", err)
	}
	return &cfg, nil
}

// WriteConfig atomically writes .grit/config.toml.
func (r *Repo) WriteConfig(cfg *Config) error {
	if cfg == nil {
		cfg = &Config{}
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: marshal: %w", err)
	}

	tmp, err := os.CreateTemp(r.GritDir, ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("write config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write config: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: close: %w", err)
	}
	if err := os.Rename(tmpName, r.configPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: rename: %w", err)
	}
	return nil
}

// CommitIdentity resolves the identity recorded in new commits. The
// GRIT_AUTHOR_NAME and GRIT_AUTHOR_EMAIL environment variables override
// the config file.
func (r *Repo) CommitIdentity(now time.Time) (object.Identity, error) {
	cfg, err := r.ReadConfig()
	if err != nil {
		return object.Identity{}, err
	}

	name := os.Getenv("GRIT_AUTHOR_NAME")
	if name == "" {
		name = cfg.User.Name
	}
	email := os.Getenv("GRIT_AUTHOR_EMAIL")
	if email == "" {
		email = cfg.User.Email
	}
	if name == "" || email == "" {
		return object.Identity{}, fmt.Errorf(
			"author identity not configured: set user.name and user.email in %s or GRIT_AUTHOR_NAME/GRIT_AUTHOR_EMAIL",
			r.configPath(),
		)
	}

	return object.Identity{
		Name:     name,
		Email:    email,
		Unix:     now.Unix(),
		Timezone: now.Format("-0700"),
	}, nil
}
