// Package main provides the entry point for the slgti-lessons CLI.
package main

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/clsslgtti-creator/slgti-lessons/lesson"
	"github.com/clsslgtti-creator/slgti-lessons/player"
	"github.com/clsslgtti-creator/slgti-lessons/player/audio"
	"github.com/clsslgtti-creator/slgti-lessons/scorm"
	"github.com/clsslgtti-creator/slgti-lessons/ui"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	width      uint
	mouse      bool
	watch      bool
	noProgress bool
	cacheDir   string

	rootCmd = &cobra.Command{
		Use:   "slgti-lessons LESSON",
		Short: "Play interactive audio lessons in your terminal",
		Long: paragraph(
			fmt.Sprintf("\nPlay %s in your terminal: timed audio activities, guided instructions and resumable progress.", keyword("interactive lessons")),
		),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.ExactArgs(1),
		ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveDefault
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

func validateOptions(cmd *cobra.Command) error {
	// grab config values from Viper
	width = viper.GetUint("width")
	mouse = viper.GetBool("mouse")
	watch = viper.GetBool("watch")
	cacheDir = viper.GetString("cache.dir")

	// Detect terminal width
	if !cmd.Flags().Changed("width") { //nolint:nestif
		isTerminal := term.IsTerminal(int(os.Stdout.Fd()))
		if isTerminal && width == 0 {
			w, _, err := term.GetSize(int(os.Stdout.Fd()))
			if err == nil {
				width = uint(w) //nolint:gosec
			}

			if width > 120 {
				width = 120
			}
		}
		if width == 0 {
			width = 80
		}
	}
	return nil
}

// isURL reports whether the source is fetched over HTTP(S) rather
// than read from disk.
func isURL(source string) bool {
	u, err := url.ParseRequestURI(source)
	return err == nil && strings.Contains(source, "://") &&
		(u.Scheme == "http" || u.Scheme == "https")
}

func execute(cmd *cobra.Command, args []string) error {
	source := args[0]

	doc, err := lesson.Load(source)
	if err != nil {
		return err
	}
	slides := lesson.BuildAll(doc)
	log.Debug("lesson loaded", "source", source, "slides", len(slides))

	return runTUI(source, doc, slides)
}

func runTUI(source string, doc *lesson.Document, slides []*player.Slide) error {
	// Read environment to get debugging stuff
	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}
	cfg.Source = source
	cfg.MaxWidth = width
	cfg.EnableMouse = mouse
	cfg.Watch = watch && !isURL(source)

	audioCfg, err := env.ParseAs[audio.Config]()
	if err != nil {
		return fmt.Errorf("error parsing audio config: %v", err)
	}
	if cacheDir != "" {
		audioCfg.CacheDir = cacheDir
	}
	if audioCfg.CacheDir == "" {
		scope := gap.NewScope(gap.User, "slgti-lessons")
		if dir, err := scope.CacheDir(); err == nil {
			audioCfg.CacheDir = filepath.Join(dir, "clips")
		}
	}

	playerCfg := player.DefaultConfig()
	if viper.IsSet("countdown") {
		playerCfg.Countdown = time.Duration(viper.GetInt("countdown")) * time.Second
	}
	playerCfg.ReportProgress = !noProgress
	if err := playerCfg.Validate(); err != nil {
		return fmt.Errorf("invalid player config: %w", err)
	}

	store, err := progressStore(doc)
	if err != nil {
		log.Warn("progress persistence disabled", "err", err)
		playerCfg.ReportProgress = false
	}

	segPlayer := audio.NewPlayer(audio.NewOtoSink(), audioCfg)
	nav := player.NewNavigator(playerCfg, segPlayer, store)

	start := 0
	if store != nil && playerCfg.ReportProgress {
		start = store.ResumeIndex(len(slides))
	}
	nav.Initialize(slides, start)

	p := ui.NewProgram(cfg, nav, store)

	if cfg.Watch {
		stop, err := lesson.Watch(source, func(next *lesson.Document) {
			rebuilt := lesson.BuildAll(next)
			index, _ := nav.Position()
			nav.Teardown()
			nav.Initialize(rebuilt, index)
			nav.Start()
			p.Send(player.LessonReloadedMsg{Total: len(rebuilt)})
		})
		if err != nil {
			log.Warn("unable to watch lesson file", "err", err)
		} else {
			defer stop()
		}
	}

	// Run Bubble Tea program
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("unable to run tui program: %w", err)
	}

	return nil
}

// progressStore returns the local per-user store the CLI persists
// progress to, or nil when --no-progress disables persistence.
// scorm.Adapter serves hosts that embed the player against an LMS
// runtime API; the CLI has no such runtime and always runs local.
func progressStore(doc *lesson.Document) (scorm.Store, error) {
	if noProgress {
		return nil, nil
	}

	scope := gap.NewScope(gap.User, "slgti-lessons")
	dir, err := scope.DataDir()
	if err != nil {
		return nil, fmt.Errorf("unable to resolve data directory: %w", err)
	}
	path := filepath.Join(dir, "progress.json")
	log.Debug("using local progress store", "path", path, "lesson", doc.ID())
	return scorm.NewLocalStore(path, doc.ID()), nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.Flags().UintVarP(&width, "width", "w", 0, "cap the slide surface at width (set to 0 to use the terminal width)")
	rootCmd.Flags().BoolVarP(&mouse, "mouse", "m", false, "enable mouse wheel")
	_ = rootCmd.Flags().MarkHidden("mouse")
	rootCmd.Flags().BoolVar(&watch, "watch", false, "reload the lesson when the file changes (local files only)")
	rootCmd.Flags().BoolVar(&noProgress, "no-progress", false, "do not record or resume lesson progress")
	rootCmd.Flags().StringVar(&cacheDir, "cache-dir", "", "directory for the downloaded audio clip cache")

	// Config bindings
	_ = viper.BindPFlag("width", rootCmd.Flags().Lookup("width"))
	_ = viper.BindPFlag("mouse", rootCmd.Flags().Lookup("mouse"))
	_ = viper.BindPFlag("watch", rootCmd.Flags().Lookup("watch"))
	_ = viper.BindPFlag("cache.dir", rootCmd.Flags().Lookup("cache-dir"))

	viper.SetDefault("width", 0)
	viper.SetDefault("countdown", 5)

	rootCmd.AddCommand(configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "slgti-lessons")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not load find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "slgti-lessons")}, dirs...)
	}

	if c := os.Getenv("SLGTI_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("slgti-lessons")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("slgti")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "slgti-lessons.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
