package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/shellrec/shellrec/internal/capture"
	"github.com/shellrec/shellrec/internal/config"
	"github.com/shellrec/shellrec/internal/logging"
	"github.com/shellrec/shellrec/internal/session"
)

var version = "0.1.0"

var log = logging.L("main")

// flags mirrors config.Config's CLI-overridable fields one-to-one; cobra
// fills these in, then mergeFlags layers only the ones the user actually
// set onto the profile-resolved config (CLI wins, per spec.md §4.8 step 2).
var flags struct {
	profile string

	winID   uint64
	program string

	fps         int
	natural     bool
	idlePauseMS int

	output    string
	video     bool
	videoOnly bool

	startPauseMS int
	endPauseMS   int

	decor            string
	background       string
	wallpaper        string
	wallpaperPadding int

	publish string

	verbose bool
	quiet   bool

	listWindows  bool
	initConfig   bool
	listProfiles bool
}

var rootCmd = &cobra.Command{
	Use:   "shellrec",
	Short: "Record a terminal session to an animated GIF or MP4",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRoot(cmd)
	},
}

func init() {
	rootCmd.Flags().StringVar(&flags.profile, "profile", "", "named session profile to load")

	rootCmd.Flags().Uint64Var(&flags.winID, "win-id", 0, "explicit window id to record (0 = auto-resolve)")
	rootCmd.Flags().StringVar(&flags.program, "program", "", "shell to spawn (default $SHELL)")

	rootCmd.Flags().IntVar(&flags.fps, "fps", 0, "sampling rate in frames per second, 1-60")
	rootCmd.Flags().BoolVar(&flags.natural, "natural", false, "save every sampled frame, disabling idle elision")
	rootCmd.Flags().IntVar(&flags.idlePauseMS, "idle-pause", 0, "milliseconds of idle time to preserve as a pause before eliding")

	rootCmd.Flags().StringVar(&flags.output, "output", "", "output path, without extension")
	rootCmd.Flags().BoolVar(&flags.video, "video", false, "also produce an MP4 alongside the GIF")
	rootCmd.Flags().BoolVar(&flags.videoOnly, "video-only", false, "produce only the MP4, skipping the GIF")

	rootCmd.Flags().IntVar(&flags.startPauseMS, "start-pause", 0, "milliseconds to hold the first frame")
	rootCmd.Flags().IntVar(&flags.endPauseMS, "end-pause", 0, "milliseconds to hold the last frame")

	rootCmd.Flags().StringVar(&flags.decor, "decor", "", "frame decoration: none or shadow")
	rootCmd.Flags().StringVar(&flags.background, "bg", "", "decoration background: transparent, white, black, or #hex")
	rootCmd.Flags().StringVar(&flags.wallpaper, "wallpaper", "", "wallpaper composite: none, ventura, or a path to an image")
	rootCmd.Flags().IntVar(&flags.wallpaperPadding, "wallpaper-padding", 0, "pixels between the frame and the wallpaper edges")

	rootCmd.Flags().StringVar(&flags.publish, "publish", "", "upload the finished recording to scheme://bucket/key")

	rootCmd.Flags().BoolVar(&flags.verbose, "verbose", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&flags.quiet, "quiet", false, "suppress all but warning/error logging")

	rootCmd.Flags().BoolVar(&flags.listWindows, "list-windows", false, "list capturable windows and exit")
	rootCmd.Flags().BoolVar(&flags.initConfig, "init-config", false, "write a commented default profile and exit")
	rootCmd.Flags().BoolVar(&flags.listProfiles, "list-profiles", false, "list available session profiles and exit")

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("shellrec v%s\n", version)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runRoot(cmd *cobra.Command) error {
	if flags.initConfig {
		return handleInitConfig()
	}

	cfg, err := config.Load(flags.profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	mergeFlags(cmd, cfg)
	initLogging(cfg)

	if flags.listProfiles {
		return handleListProfiles()
	}

	if flags.listWindows {
		return handleListWindows()
	}

	summary, err := session.Run(context.Background(), cfg)
	if err != nil {
		return err
	}
	log.Debug("session finished", "frames", summary.FrameCount)
	return nil
}

// mergeFlags layers only explicitly-set CLI flags onto cfg, per spec.md
// §4.8 step 2's "defaults ← profile ← CLI (CLI wins)" merge order —
// config.Load has already applied defaults and the named profile.
func mergeFlags(cmd *cobra.Command, cfg *config.Config) {
	set := cmd.Flags().Changed

	if set("win-id") {
		cfg.WinID = flags.winID
	}
	if set("program") {
		cfg.Program = flags.program
	}
	if set("fps") {
		cfg.FPS = flags.fps
	}
	if set("natural") {
		cfg.Natural = flags.natural
	}
	if set("idle-pause") {
		cfg.IdlePauseMS = flags.idlePauseMS
	}
	if set("output") {
		cfg.Output = flags.output
	}
	if set("video") {
		cfg.Video = flags.video
	}
	if set("video-only") {
		cfg.VideoOnly = flags.videoOnly
	}
	if set("start-pause") {
		cfg.StartPauseMS = flags.startPauseMS
	}
	if set("end-pause") {
		cfg.EndPauseMS = flags.endPauseMS
	}
	if set("decor") {
		cfg.Decor = flags.decor
	}
	if set("bg") {
		cfg.Background = flags.background
	}
	if set("wallpaper") {
		cfg.Wallpaper = flags.wallpaper
	}
	if set("wallpaper-padding") {
		cfg.WallpaperPad = flags.wallpaperPadding
	}
	if set("publish") {
		cfg.Publish = flags.publish
	}
	if flags.verbose {
		cfg.LogLevel = "debug"
	}
	if flags.quiet {
		cfg.LogLevel = "warn"
	}

	result := cfg.ValidateTiered()
	for _, w := range result.Warnings {
		log.Warn("config validation", "error", w)
	}
}

func initLogging(cfg *config.Config) {
	logging.Init(cfg.LogFormat, cfg.LogLevel, os.Stderr)
	log = logging.L("main")
}

func handleInitConfig() error {
	path := "t-rec.yaml"
	if err := config.WriteDefaultProfile(path); err != nil {
		return fmt.Errorf("writing default profile: %w", err)
	}
	fmt.Printf("Wrote default profile to %s\n", path)
	return nil
}

func handleListProfiles() error {
	names, err := config.ListProfiles()
	if err != nil {
		return fmt.Errorf("listing profiles: %w", err)
	}
	if len(names) == 0 {
		fmt.Println("No profiles found.")
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

func handleListWindows() error {
	capturer, err := capture.New()
	if err != nil {
		return fmt.Errorf("constructing capturer: %w", err)
	}
	defer capturer.Close()

	windows, err := capturer.Enumerate()
	if err != nil {
		return fmt.Errorf("enumerating windows: %w", err)
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i].ID < windows[j].ID })

	fmt.Println("Window | Id")
	for _, w := range windows {
		if w.Title == "" {
			continue
		}
		fmt.Printf("%s | %d\n", w.Title, uint64(w.ID))
	}
	return nil
}
