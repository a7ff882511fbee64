package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	Session SessionConfig `yaml:"session" json:"session"`
	UI      UIConfig      `yaml:"ui" json:"ui"`
	Log     LogConfig     `yaml:"log" json:"log"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr" json:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	// DevStatic serves assets from StaticDir instead of the embedded copy.
	DevStatic bool   `yaml:"dev_static" json:"dev_static"`
	StaticDir string `yaml:"static_dir" json:"static_dir"`
}

// SessionConfig limits live sessions. Zero picks the default; a negative
// TTL (e.g. -1s) keeps idle sessions forever and a negative MaxSessions
// lifts the cap.
type SessionConfig struct {
	CookieName  string        `yaml:"cookie_name" json:"cookie_name"`
	TTL         time.Duration `yaml:"ttl" json:"ttl"`
	MaxSessions int           `yaml:"max_sessions" json:"max_sessions"`
}

type UIConfig struct {
	Title string `yaml:"title" json:"title"`
	// DefaultText is the placeholder of the add input.
	DefaultText string `yaml:"default_text" json:"default_text"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

func (s *ServerConfig) ApplyDefaults() {
	if s.Addr == "" {
		s.Addr = ":8080"
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 10 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 15 * time.Second
	}
	if s.IdleTimeout == 0 {
		s.IdleTimeout = 60 * time.Second
	}
	if s.StaticDir == "" {
		s.StaticDir = "static"
	}
}

func (s *SessionConfig) ApplyDefaults() {
	if s.CookieName == "" {
		s.CookieName = "todo_session"
	}
	if s.TTL == 0 {
		s.TTL = 24 * time.Hour
	}
	if s.MaxSessions == 0 {
		s.MaxSessions = 10000
	}
}

func (u *UIConfig) ApplyDefaults() {
	if u.Title == "" {
		u.Title = "Todo"
	}
	if u.DefaultText == "" {
		u.DefaultText = "今日の用事"
	}
}

func (l *LogConfig) ApplyDefaults() {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func (c *Config) ApplyDefaults() {
	c.Server.ApplyDefaults()
	c.Session.ApplyDefaults()
	c.UI.ApplyDefaults()
	c.Log.ApplyDefaults()
}

// Default returns a config with every default applied.
func Default() *Config {
	var c Config
	c.ApplyDefaults()
	return &c
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Config
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	r.ApplyDefaults()
	return &r, nil
}
