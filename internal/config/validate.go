package config

import (
	"fmt"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"warning": true,
	"error": true,
}

var validDecors = map[string]bool{
	"none":   true,
	"shadow": true,
}

// Result separates fatal validation errors (block startup) from warnings
// (logged, clamped to a safe value, startup continues).
type Result struct {
	Fatals   []error
	Warnings []error
}

func (r *Result) HasFatals() bool { return len(r.Fatals) > 0 }

func (r *Result) fatal(err error)   { r.Fatals = append(r.Fatals, err) }
func (r *Result) warn(err error)    { r.Warnings = append(r.Warnings, err) }

// ValidateTiered checks the config for invalid values. Values that would
// crash a downstream component (fps out of range, unknown decoration, bad
// hex color) are fatal; everything else is a warning, clamped to a safe
// default in place.
func (c *Config) ValidateTiered() *Result {
	r := &Result{}

	if c.FPS < 1 || c.FPS > 60 {
		r.fatal(fmt.Errorf("fps %d is out of range [1, 60]", c.FPS))
	}

	if c.Decor != "" && !validDecors[strings.ToLower(c.Decor)] {
		r.fatal(fmt.Errorf("decor %q is not valid (use none or shadow)", c.Decor))
	}

	if err := validateBackground(c.Background); err != nil {
		r.fatal(err)
	}

	if err := validateWallpaper(c.Wallpaper); err != nil {
		r.fatal(err)
	}

	if c.WallpaperPad < 0 {
		r.warn(fmt.Errorf("wallpaper_padding %d is negative, clamping to 0", c.WallpaperPad))
		c.WallpaperPad = 0
	}

	if c.StartPauseMS < 0 {
		r.warn(fmt.Errorf("start_pause_ms %d is negative, clamping to 0", c.StartPauseMS))
		c.StartPauseMS = 0
	}
	if c.EndPauseMS < 0 {
		r.warn(fmt.Errorf("end_pause_ms %d is negative, clamping to 0", c.EndPauseMS))
		c.EndPauseMS = 0
	}
	if c.IdlePauseMS < 0 {
		r.warn(fmt.Errorf("idle_pause_ms %d is negative, treating as unset", c.IdlePauseMS))
		c.IdlePauseMS = 0
	}
	c.HasIdlePause = c.IdlePauseMS > 0

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		r.warn(fmt.Errorf("log_level %q is not valid (use debug, info, warn, error), defaulting to info", c.LogLevel))
		c.LogLevel = "info"
	}

	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		r.warn(fmt.Errorf("log_format %q is not valid (use text or json), defaulting to text", c.LogFormat))
		c.LogFormat = "text"
	}

	if c.Program == "" {
		r.fatal(fmt.Errorf("program must not be empty"))
	}

	if c.VideoOnly && !c.Video {
		c.Video = true
	}

	return r
}

func validateBackground(bg string) error {
	switch strings.ToLower(bg) {
	case "", "transparent", "white", "black":
		return nil
	}
	if _, err := parseHexColorLoose(bg); err != nil {
		return fmt.Errorf("bg %q is not transparent/white/black nor a valid hex color: %w", bg, err)
	}
	return nil
}

func validateWallpaper(wp string) error {
	switch strings.ToLower(wp) {
	case "", "none", "ventura":
		return nil
	default:
		// Treated as a custom path; existence is checked by the
		// post-processing stage against the real filesystem (ValidatedPath),
		// not here, since config.Load has no filesystem-injection seam.
		return nil
	}
}

func parseHexColorLoose(s string) (struct{}, error) {
	if len(s) == 0 || s[0] != '#' {
		return struct{}{}, fmt.Errorf("must start with #")
	}
	hex := s[1:]
	switch len(hex) {
	case 3, 4, 6, 8:
	default:
		return struct{}{}, fmt.Errorf("must be #RGB, #RGBA, #RRGGBB, or #RRGGBBAA")
	}
	for _, c := range hex {
		if !isHexDigit(byte(c)) {
			return struct{}{}, fmt.Errorf("non-hex digit %q", c)
		}
	}
	return struct{}{}, nil
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
