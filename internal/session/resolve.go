package session

import (
	"fmt"
	"os"
	"strings"

	"github.com/shellrec/shellrec/internal/config"
	"github.com/shellrec/shellrec/internal/model"
)

// resolveDecoration maps the validated config string to the model enum.
// config.ValidateTiered has already rejected anything but "none"/"shadow",
// so the default case here is unreachable in practice, not a validation
// path of its own.
func resolveDecoration(raw string) model.Decoration {
	if strings.EqualFold(raw, "shadow") {
		return model.DecorationShadow
	}
	return model.DecorationNone
}

// resolveBackground maps the validated config string to the model type,
// parsing a hex literal when the string isn't one of the three named
// colors.
func resolveBackground(raw string) (model.Background, error) {
	switch strings.ToLower(raw) {
	case "", "transparent":
		return model.Background{Kind: model.BackgroundTransparent}, nil
	case "white":
		return model.Background{Kind: model.BackgroundWhite}, nil
	case "black":
		return model.Background{Kind: model.BackgroundBlack}, nil
	}
	hex, err := model.ParseHexColor(raw)
	if err != nil {
		return model.Background{}, fmt.Errorf("resolving bg %q: %w", raw, err)
	}
	return model.Background{Kind: model.BackgroundHex, Hex: hex}, nil
}

// resolveWallpaper maps the validated config string plus padding into the
// model type, checking the filesystem for a custom path. Unlike
// resolveDecoration/resolveBackground, this is the first point a custom
// wallpaper path's existence is actually checked (config.Load has no
// filesystem-injection seam to do it earlier).
func resolveWallpaper(raw string, padding int) (model.Wallpaper, error) {
	switch strings.ToLower(raw) {
	case "", "none":
		return model.Wallpaper{Kind: model.WallpaperNone, Padding: padding}, nil
	case "ventura":
		return model.Wallpaper{Kind: model.WallpaperVentura, Padding: padding}, nil
	default:
		path, err := model.NewValidatedPath(raw, fileExists)
		if err != nil {
			return model.Wallpaper{}, fmt.Errorf("resolving wallpaper: %w", err)
		}
		return model.Wallpaper{Kind: model.WallpaperCustom, Path: path, Padding: padding}, nil
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// resolvedSettings is the subset of config.Config translated into the
// model/postprocess types the rest of the orchestrator consumes, spec.md
// §4.8 step 2's "resolve effective settings" output.
type resolvedSettings struct {
	Decor      model.Decoration
	Background model.Background
	Wallpaper  model.Wallpaper
}

func resolveSettings(cfg *config.Config) (resolvedSettings, error) {
	bg, err := resolveBackground(cfg.Background)
	if err != nil {
		return resolvedSettings{}, err
	}
	wp, err := resolveWallpaper(cfg.Wallpaper, cfg.WallpaperPad)
	if err != nil {
		return resolvedSettings{}, err
	}
	return resolvedSettings{
		Decor:      resolveDecoration(cfg.Decor),
		Background: bg,
		Wallpaper:  wp,
	}, nil
}
