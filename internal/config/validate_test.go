package config

import (
	"errors"
	"testing"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Program = "/bin/bash"
	return cfg
}

func TestValidateTieredFPSOutOfRangeIsFatal(t *testing.T) {
	cfg := validConfig()
	cfg.FPS = 0
	result := cfg.ValidateTiered()
	if !result.HasFatals() {
		t.Fatal("expected fps=0 to be fatal")
	}

	cfg2 := validConfig()
	cfg2.FPS = 61
	result2 := cfg2.ValidateTiered()
	if !result2.HasFatals() {
		t.Fatal("expected fps=61 to be fatal")
	}
}

func TestValidateTieredFPSInRangeIsClean(t *testing.T) {
	cfg := validConfig()
	cfg.FPS = 30
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("expected fps=30 to be valid, got fatals: %v", result.Fatals)
	}
}

func TestValidateTieredUnknownDecorIsFatal(t *testing.T) {
	cfg := validConfig()
	cfg.FPS = 15
	cfg.Decor = "sparkles"
	result := cfg.ValidateTiered()
	if !result.HasFatals() {
		t.Fatal("expected unknown decor to be fatal")
	}
}

func TestValidateTieredInvalidHexBackgroundIsFatal(t *testing.T) {
	cfg := validConfig()
	cfg.FPS = 15
	cfg.Background = "#zzz"
	result := cfg.ValidateTiered()
	if !result.HasFatals() {
		t.Fatal("expected invalid hex background to be fatal")
	}
}

func TestValidateTieredValidHexBackgroundIsClean(t *testing.T) {
	cfg := validConfig()
	cfg.FPS = 15
	cfg.Background = "#ff00ffaa"
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("expected valid hex background to pass, got fatals: %v", result.Fatals)
	}
}

func TestValidateTieredNegativePaddingIsWarningAndClamps(t *testing.T) {
	cfg := validConfig()
	cfg.FPS = 15
	cfg.WallpaperPad = -5
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("expected negative padding to only warn, got fatals: %v", result.Fatals)
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected a warning for negative padding")
	}
	if cfg.WallpaperPad != 0 {
		t.Fatalf("expected padding to clamp to 0, got %d", cfg.WallpaperPad)
	}
}

func TestValidateTieredUnknownLogLevelIsWarningAndDefaults(t *testing.T) {
	cfg := validConfig()
	cfg.FPS = 15
	cfg.LogLevel = "verbose"
	result := cfg.ValidateTiered()
	if result.HasFatals() {
		t.Fatalf("expected unknown log level to only warn, got fatals: %v", result.Fatals)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("expected log level to default to info, got %q", cfg.LogLevel)
	}
}

func TestValidateTieredEmptyProgramIsFatal(t *testing.T) {
	cfg := validConfig()
	cfg.FPS = 15
	cfg.Program = ""
	result := cfg.ValidateTiered()
	if !result.HasFatals() {
		t.Fatal("expected empty program to be fatal")
	}
}

func TestValidateTieredVideoOnlyImpliesVideo(t *testing.T) {
	cfg := validConfig()
	cfg.FPS = 15
	cfg.VideoOnly = true
	cfg.Video = false
	cfg.ValidateTiered()
	if !cfg.Video {
		t.Fatal("expected video_only to imply video")
	}
}

func TestHasFatals(t *testing.T) {
	r := &Result{}
	if r.HasFatals() {
		t.Fatal("HasFatals() on empty result should be false")
	}
	r.fatal(errors.New("boom"))
	if !r.HasFatals() {
		t.Fatal("HasFatals() should be true with a fatal error")
	}
}
