package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/shellrec/shellrec/internal/logging"
)

var log = logging.L("config")

// Config is the frozen session configuration (data model §"Session
// configuration"). Built once by the orchestrator and never mutated once
// every actor has been spawned.
type Config struct {
	WinID   uint64 `mapstructure:"win_id"`
	Program string `mapstructure:"program"` // shell to spawn; defaults to $SHELL

	FPS          int  `mapstructure:"fps"` // 1..60
	Natural      bool `mapstructure:"natural"`
	IdlePauseMS  int  `mapstructure:"idle_pause_ms"` // 0 = unset, elide all duplicates
	HasIdlePause bool `mapstructure:"-"`

	Output    string `mapstructure:"output"`
	Video     bool   `mapstructure:"video"`
	VideoOnly bool   `mapstructure:"video_only"`

	StartPauseMS int `mapstructure:"start_pause_ms"`
	EndPauseMS   int `mapstructure:"end_pause_ms"`

	Decor        string `mapstructure:"decor"` // "none" | "shadow"
	Background   string `mapstructure:"bg"`    // "transparent" | "white" | "black" | "#hex"
	Wallpaper    string `mapstructure:"wallpaper"`
	WallpaperPad int    `mapstructure:"wallpaper_padding"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`

	Publish string `mapstructure:"publish"` // e.g. s3://bucket/key, empty = disabled

	Verbose bool `mapstructure:"-"`
	Quiet   bool `mapstructure:"-"`
}

// Default returns the built-in defaults, before any profile or CLI override
// is applied.
func Default() *Config {
	return &Config{
		Program:      defaultShell(),
		FPS:          15,
		Output:       "t-rec",
		Decor:        "shadow",
		Background:   "transparent",
		Wallpaper:    "none",
		WallpaperPad: 80,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

func defaultShell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}

// Load resolves defaults ⊕ named profile ⊕ environment: viper reads the
// profile file (if any), then unmarshal onto the already-defaulted struct
// so unset profile fields don't clobber defaults. CLI overrides are layered
// on afterward by the caller (cobra flag values win last).
func Load(profileName string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("SHELLREC")
	v.AutomaticEnv()

	if profileName != "" {
		path, err := resolveProfilePath(profileName)
		if err != nil {
			return nil, err
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading profile %q: %w", profileName, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.Program = expandHome(cfg.Program)
	cfg.Output = expandHome(cfg.Output)
	cfg.Wallpaper = expandHome(cfg.Wallpaper)
	cfg.LogFile = expandHome(cfg.LogFile)

	result := cfg.ValidateTiered()
	for _, w := range result.Warnings {
		log.Warn("config validation", "error", w)
	}
	if result.HasFatals() {
		for _, f := range result.Fatals {
			log.Error("config validation fatal", "error", f)
		}
		return nil, fmt.Errorf("config has fatal validation errors: %w", result.Fatals[0])
	}

	return cfg, nil
}

// IdlePauseDuration returns the configured idle-pause threshold, or false if
// none was set (meaning: elide every consecutive duplicate frame).
func (c *Config) IdlePauseDuration() (time.Duration, bool) {
	if !c.HasIdlePause || c.IdlePauseMS <= 0 {
		return 0, false
	}
	return time.Duration(c.IdlePauseMS) * time.Millisecond, true
}

func profilesDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "t-rec", "profiles")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "t-rec", "profiles")
	}
	return filepath.Join(home, ".config", "t-rec", "profiles")
}

func resolveProfilePath(name string) (string, error) {
	if strings.ContainsAny(name, `/\`) {
		if _, err := os.Stat(name); err != nil {
			return "", fmt.Errorf("profile file %q: %w", name, err)
		}
		return name, nil
	}
	path := filepath.Join(profilesDir(), name+".yaml")
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("profile %q not found at %s: %w", name, path, err)
	}
	return path, nil
}

// ListProfiles enumerates available profile names under the profiles
// directory, sorted by filename.
func ListProfiles() ([]string, error) {
	dir := profilesDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing profiles in %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), ".yaml") || strings.HasSuffix(e.Name(), ".yml") {
			names = append(names, strings.TrimSuffix(strings.TrimSuffix(e.Name(), ".yaml"), ".yml"))
		}
	}
	return names, nil
}

const defaultProfileTemplate = `# shellrec session profile
# fps: frames per second, 1..60
fps: 15
# natural: save every capture tick, disabling idle elision
natural: false
# idle_pause_ms: minimum pause (ms) that renders as a real pause in the
# output; 0 means elide every consecutive duplicate frame
idle_pause_ms: 0
output: t-rec
video: false
video_only: false
start_pause_ms: 0
end_pause_ms: 0
decor: shadow
bg: transparent
wallpaper: none
wallpaper_padding: 80
log_level: info
log_format: text
`

// WriteDefaultProfile scaffolds a commented default profile at path.
func WriteDefaultProfile(path string) error {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating profile directory %s: %w", dir, err)
		}
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("profile already exists at %s", path)
	}
	return os.WriteFile(path, []byte(defaultProfileTemplate), 0o644)
}

func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
