// Package config loads the optional lfkit YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/c2h5oh/datasize"
	"gopkg.in/yaml.v3"

	"github.com/lfkit/lfkit/internal/dirs"
)

// Config holds every helper's tunables. All fields have usable defaults.
type Config struct {
	Thumb   ThumbConfig   `yaml:"thumb"`
	Mime    MimeConfig    `yaml:"mime"`
	Preview PreviewConfig `yaml:"preview"`
	Editor  EditorConfig  `yaml:"editor"`
	Opener  OpenerConfig  `yaml:"opener"`
	Sandbox SandboxConfig `yaml:"sandbox"`
	Logging LoggingConfig `yaml:"logging"`
}

// ThumbConfig configures the thumbnail cache.
type ThumbConfig struct {
	CacheDir        string            `yaml:"cache_dir"`
	ChunkSize       datasize.ByteSize `yaml:"chunk_size"`
	HashEntire      bool              `yaml:"hash_entire"`
	MaxAgeMonths    int               `yaml:"max_age_months"`
	GenerateTimeout string            `yaml:"generate_timeout"`
}

// MimeConfig configures MIME detection.
type MimeConfig struct {
	// Extensions the MIME database gets wrong; `file` is asked instead.
	FileCmdExtensions []string `yaml:"file_cmd_extensions"`
}

// PreviewConfig configures the terminal previewer.
type PreviewConfig struct {
	LineLengthLimit int    `yaml:"line_length_limit"`
	LogFile         string `yaml:"log_file"`
}

// EditorConfig configures the editor dispatcher.
type EditorConfig struct {
	EmacsExtensions []string `yaml:"emacs_extensions"`
	Nvim            string   `yaml:"nvim"`
	Emacsclient     string   `yaml:"emacsclient"`
}

// OpenerConfig configures the opener.
type OpenerConfig struct {
	// Programs run in the foreground of the terminal, ignoring Exec.
	TerminalPrograms []string `yaml:"terminal_programs"`
}

// SandboxConfig configures the bubblewrap preview sandbox.
type SandboxConfig struct {
	Bwrap        string   `yaml:"bwrap"`
	ExtraROBinds []string `yaml:"extra_ro_binds"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Thumb: ThumbConfig{
			ChunkSize:       64 * datasize.KB,
			MaxAgeMonths:    1,
			GenerateTimeout: "60s",
		},
		Mime: MimeConfig{
			FileCmdExtensions: []string{".ts", ".bak", ".txt", ".TXT"},
		},
		Preview: PreviewConfig{
			LineLengthLimit: 200,
		},
		Editor: EditorConfig{
			EmacsExtensions: []string{".org", ".el", ".scm", ".ss", ".rkt", ".fnl"},
			Nvim:            "/usr/bin/nvim",
			Emacsclient:     "/usr/bin/emacsclient",
		},
		Opener: OpenerConfig{
			TerminalPrograms: []string{"nvim", "mpv"},
		},
		Sandbox: SandboxConfig{
			Bwrap: "/usr/bin/bwrap",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/lfkit/config.yaml.
func DefaultPath(d dirs.Dirs) string {
	return filepath.Join(d.ConfigHome, "lfkit", "config.yaml")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("LFKIT_CACHE_DIR"); dir != "" {
		c.Thumb.CacheDir = dir
	}
	if level := os.Getenv("LFKIT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if file := os.Getenv("LFKIT_LOG_FILE"); file != "" {
		c.Logging.File = file
	}
}

// Validate rejects values no helper can work with.
func (c *Config) Validate() error {
	if c.Thumb.ChunkSize == 0 {
		return fmt.Errorf("thumb.chunk_size must be positive")
	}
	if c.Thumb.MaxAgeMonths < 1 {
		return fmt.Errorf("thumb.max_age_months must be at least 1, got %d", c.Thumb.MaxAgeMonths)
	}
	if _, err := time.ParseDuration(c.Thumb.GenerateTimeout); err != nil {
		return fmt.Errorf("thumb.generate_timeout: %w", err)
	}
	if c.Preview.LineLengthLimit < 1 {
		return fmt.Errorf("preview.line_length_limit must be positive")
	}
	return nil
}

// ThumbCacheDir resolves the cache root, defaulting to $XDG_CACHE_HOME/lf_thumb.
func (c *Config) ThumbCacheDir(d dirs.Dirs) string {
	if c.Thumb.CacheDir != "" {
		return c.Thumb.CacheDir
	}
	return filepath.Join(d.CacheHome, "lf_thumb")
}

// GetGenerateTimeout returns the per-thumbnail generation timeout.
func (c *Config) GetGenerateTimeout() time.Duration {
	d, err := time.ParseDuration(c.Thumb.GenerateTimeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// PreviewLogFile is where the sandboxed previewer's stderr goes.
func (c *Config) PreviewLogFile() string {
	if c.Preview.LogFile != "" {
		return c.Preview.LogFile
	}
	return filepath.Join(dirs.TempDir(), "lf.log")
}

// LogFile is where zap writes.
func (c *Config) LogFile() string {
	if c.Logging.File != "" {
		return c.Logging.File
	}
	return filepath.Join(dirs.TempDir(), "lfkit.log")
}
