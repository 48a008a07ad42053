// Package config layers defaults, an optional JSON or YAML file and command
// line overrides, and can watch the file for changes.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const defaults = `{
  "server": {"addr": "127.0.0.1:3000", "public_dir": "", "max_body": 1048576, "open": false, "share": false},
  "editor": {"indent": "\t", "banner_ttl": "5s", "example_file": ""},
  "tui":    {"min_panel": 20},
  "render": {"via_server": "", "bridge": false},
  "log":    {"level": "info", "format": "text", "file": ""}
}`

// Settings is the typed view of a loaded configuration.
type Settings struct {
	Server struct {
		Addr      string `koanf:"addr"`
		PublicDir string `koanf:"public_dir"`
		MaxBody   int64  `koanf:"max_body"`
		Open      bool   `koanf:"open"`
		Share     bool   `koanf:"share"`
	} `koanf:"server"`
	Editor struct {
		Indent      string        `koanf:"indent"`
		BannerTTL   time.Duration `koanf:"banner_ttl"`
		ExampleFile string        `koanf:"example_file"`
	} `koanf:"editor"`
	TUI struct {
		MinPanel int `koanf:"min_panel"`
	} `koanf:"tui"`
	Render struct {
		ViaServer string `koanf:"via_server"`
		Bridge    bool   `koanf:"bridge"`
	} `koanf:"render"`
	Log struct {
		Level  string `koanf:"level"`
		Format string `koanf:"format"`
		File   string `koanf:"file"`
	} `koanf:"log"`
}

// Validate rejects values no component can run with.
func (s Settings) Validate() error {
	var errs []error
	if s.Server.MaxBody <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body must be positive, got %d", s.Server.MaxBody))
	}
	if s.Editor.Indent == "" {
		errs = append(errs, errors.New("editor.indent must not be empty"))
	}
	if s.Editor.BannerTTL <= 0 {
		errs = append(errs, fmt.Errorf("editor.banner_ttl must be positive, got %s", s.Editor.BannerTTL))
	}
	if s.TUI.MinPanel < 1 {
		errs = append(errs, fmt.Errorf("tui.min_panel must be at least 1, got %d", s.TUI.MinPanel))
	}
	switch strings.ToLower(s.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", s.Log.Format))
	}
	return errors.Join(errs...)
}

// ExampleMarkup reads editor.example_file. An unset file returns "".
func (s Settings) ExampleMarkup() (string, error) {
	if s.Editor.ExampleFile == "" {
		return "", nil
	}
	data, err := os.ReadFile(s.Editor.ExampleFile)
	if err != nil {
		return "", fmt.Errorf("read example file: %w", err)
	}
	return string(data), nil
}

// Config holds the layered configuration.
type Config struct {
	mu        sync.Mutex
	k         *koanf.Koanf
	file      string
	overrides map[string]any
	watcher   *fsnotify.Watcher
	logger    *slog.Logger
}

// New returns a configuration holding only the defaults.
func New(logger *slog.Logger) *Config {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Config{overrides: map[string]any{}, logger: logger}
	k, err := c.build("")
	if err != nil {
		panic(fmt.Sprintf("config: bad defaults: %v", err))
	}
	c.k = k
	return c
}

// LoadFile merges a config file over the defaults. A missing file is logged
// and ignored.
func (c *Config) LoadFile(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		c.logger.Warn("config file not found", "path", path)
		return nil
	}
	k, err := c.build(path)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.k = k
	c.file = path
	c.mu.Unlock()
	c.logger.Info("loaded config file", "path", path)
	return nil
}

// Set records an override that survives reloads.
func (c *Config) Set(key string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overrides[key] = value
	return c.k.Set(key, value)
}

// String returns a raw value.
func (c *Config) String(key string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.k.String(key)
}

// File returns the loaded file path, if any.
func (c *Config) File() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.file
}

// Settings unmarshals and validates the current configuration.
func (c *Config) Settings() (Settings, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var s Settings
	if err := c.k.Unmarshal("", &s); err != nil {
		return s, fmt.Errorf("decode config: %w", err)
	}
	return s, s.Validate()
}

// Watch reloads the file when it changes and calls onChange with the new
// settings from the watcher goroutine. Invalid reloads are logged and
// skipped.
func (c *Config) Watch(onChange func(Settings)) error {
	c.mu.Lock()
	file := c.file
	c.mu.Unlock()
	if file == "" {
		return errors.New("no config file to watch")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Editors often replace the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(file)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", file, err)
	}
	c.mu.Lock()
	c.watcher = watcher
	c.mu.Unlock()

	target := filepath.Clean(file)
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				c.logger.Info("config file changed", "path", event.Name)
				if err := c.LoadFile(file); err != nil {
					c.logger.Error("reload config", "path", file, "err", err)
					continue
				}
				s, err := c.Settings()
				if err != nil {
					c.logger.Error("reloaded config invalid", "path", file, "err", err)
					continue
				}
				onChange(s)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.logger.Error("config watcher error", "err", err)
			}
		}
	}()
	return nil
}

// Close stops the watcher.
func (c *Config) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.watcher != nil {
		err := c.watcher.Close()
		c.watcher = nil
		return err
	}
	return nil
}

// build layers defaults, then path, then overrides.
func (c *Config) build(path string) (*koanf.Koanf, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider([]byte(defaults)), json.Parser()); err != nil {
		return nil, err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		parser, err := parserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(data), parser); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}
	c.mu.Lock()
	for key, v := range c.overrides {
		_ = k.Set(key, v)
	}
	c.mu.Unlock()
	return k, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config file type: %s", ext)
	}
}
