package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pinned/internal/api"
	"pinned/internal/config"
	"pinned/internal/db"
	"pinned/internal/logging"
	"pinned/internal/notify"
	"pinned/internal/session"
	"pinned/internal/ui"
)

var (
	cfgFile     string
	apiURLFlag  string
	chatFlag    string
	profileFlag string
	verbose     bool

	// set by loadConfig before any command runs
	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pinned [link]",
	Short: "Terminal client for Pinned Thoughts",
	Long: `pinned is a terminal client for the Pinned Thoughts chat service.

Start a new conversation, reopen an earlier one and keep chatting with the model
of your choice. Pass a chat id or a link ending in ?chat=<id> to resume a
conversation; without one, pinned reopens where you left off.`,
	Args:              cobra.MaximumNArgs(1),
	PersistentPreRunE: loadConfig,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE:          runTUI,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default $XDG_CONFIG_HOME/pinned/config.toml)")
	flags.StringVar(&apiURLFlag, "api-url", "", "Base URL of the chat API")
	flags.StringVar(&profileFlag, "profile", "", "Feature profile: basic, enhanced or full")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")
	rootCmd.Flags().StringVar(&chatFlag, "chat", "", "Chat id or link to open on start")
}

// Execute runs the root command. An interrupt cancels in-flight requests of the
// headless subcommands.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if apiURLFlag != "" {
		c.APIURL = apiURLFlag
		if err := c.Validate(); err != nil {
			return err
		}
	}
	if profileFlag != "" {
		if err := c.ApplyProfile(profileFlag); err != nil {
			return err
		}
	}

	l, err := logging.New(logging.Config{Path: c.Log.Path, Level: c.Log.Level, Verbose: verbose})
	if err != nil {
		return err
	}
	cfg, logger = c, l.With(zap.String("command", cmd.Name()))
	return nil
}

func newClient() *api.Client {
	return api.New(cfg.APIURL, api.WithLogger(logger))
}

func runTUI(cmd *cobra.Command, args []string) error {
	store, err := db.OpenPinnedDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("error opening preferences: %w", err)
	}
	defer store.Close()
	prefs := db.NewPrefs(store)

	loc := startLocation(args, prefs)
	logger.Info("starting", zap.String("api_url", cfg.APIURL), zap.String("location", loc.String()))

	sound := notify.NewSound(false, logger)
	ctrl := session.New(newClient(),
		session.WithLogger(logger),
		session.WithLocationStore(prefs),
		session.WithSound(sound),
		session.WithTypingDelay(cfg.TypingDelay()),
		session.WithModel(cfg.DefaultModel),
	)
	defer ctrl.Close()

	m := ui.InitialModel(ui.Deps{
		Ctrl:            ctrl,
		Prefs:           prefs,
		Sound:           sound,
		Logger:          logger,
		Features:        cfg.Features,
		ExportDir:       cfg.UI.ExportDir,
		BaseTypingDelay: cfg.TypingDelay(),
		Initial:         loc,
	})
	defer m.Close()

	if _, err := ui.NewProgram(m).Run(); err != nil {
		return fmt.Errorf("error running app: %w", err)
	}
	return nil
}

// startLocation picks the chat to open: the link argument, then --chat, then the last
// location remembered in the preference store.
func startLocation(args []string, prefs *db.Prefs) session.Location {
	if len(args) > 0 {
		return session.ParseLocation(args[0])
	}
	if chatFlag != "" {
		return session.ParseLocation(chatFlag)
	}
	loc, err := prefs.LastLocation()
	if err != nil {
		logger.Warn("reading last location failed", zap.Error(err))
		return session.Location{}
	}
	return loc
}
