// File: control/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Typed configuration store with file/env sources, atomic snapshot
// reads and hot-reload propagation.

package control

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config tunes the transport and session layers.
type Config struct {
	// Addr is the listen address of the server.
	Addr string `mapstructure:"addr"`

	// MaxMessageSize bounds the unread backlog of one in-flight message.
	MaxMessageSize int `mapstructure:"max_message_size"`

	// MaxControlSize bounds an accumulated control-frame payload.
	MaxControlSize int `mapstructure:"max_control_size"`

	// ReadBufferSize is the per-read chunk size of the session pump.
	ReadBufferSize int `mapstructure:"read_buffer_size"`

	// ReadTimeout and WriteTimeout are per-operation transport deadlines.
	// Zero disables the deadline.
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// Subprotocols the server supports, in preference order.
	Subprotocols []string `mapstructure:"subprotocols"`

	// LogLevel is the minimum level emitted by the server logger
	// (debug, info, warn, error).
	LogLevel string `mapstructure:"log_level"`
}

// Default returns the configuration used when no file or env overrides
// are present.
func Default() Config {
	return Config{
		Addr:           ":8080",
		MaxMessageSize: 1 << 20,
		MaxControlSize: 125,
		ReadBufferSize: 4096,
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   10 * time.Second,
		LogLevel:       "info",
	}
}

// Store loads Config through viper and propagates file changes to
// registered listeners.
type Store struct {
	mu        sync.RWMutex
	v         *viper.Viper
	cfg       Config
	listeners []func(Config)
}

// NewStore returns a Store holding the default configuration.
func NewStore() *Store {
	v := viper.New()
	v.SetEnvPrefix("PIPEWS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	def := Default()
	v.SetDefault("addr", def.Addr)
	v.SetDefault("max_message_size", def.MaxMessageSize)
	v.SetDefault("max_control_size", def.MaxControlSize)
	v.SetDefault("read_buffer_size", def.ReadBufferSize)
	v.SetDefault("read_timeout", def.ReadTimeout)
	v.SetDefault("write_timeout", def.WriteTimeout)
	v.SetDefault("log_level", def.LogLevel)
	return &Store{v: v, cfg: def}
}

// Load reads the config file at path (yaml/toml/json by extension) and
// merges it over defaults and env. With an empty path only defaults and
// env apply.
func (s *Store) Load(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if path != "" {
		s.v.SetConfigFile(path)
		if err := s.v.ReadInConfig(); err != nil {
			return fmt.Errorf("control: read config: %w", err)
		}
	}
	return s.unmarshalLocked()
}

// Watch starts hot reload: on every config file change the store
// re-reads the file and notifies listeners with the new snapshot.
// Viper's watcher runs in a background goroutine until process exit.
func (s *Store) Watch() {
	s.v.OnConfigChange(func(fsnotify.Event) {
		s.mu.Lock()
		if err := s.unmarshalLocked(); err != nil {
			s.mu.Unlock()
			return
		}
		cfg := s.cfg
		listeners := make([]func(Config), len(s.listeners))
		copy(listeners, s.listeners)
		s.mu.Unlock()
		for _, fn := range listeners {
			fn(cfg)
		}
	})
	s.v.WatchConfig()
}

// OnReload registers a listener invoked with each reloaded snapshot.
func (s *Store) OnReload(fn func(Config)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

// Snapshot returns the current configuration by value.
func (s *Store) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *Store) unmarshalLocked() error {
	var cfg Config
	if err := s.v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("control: unmarshal config: %w", err)
	}
	s.cfg = cfg
	return nil
}
