package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/huanfeng/androidgen-cli/internal/config"
	"github.com/huanfeng/androidgen-cli/internal/errors"
	"github.com/huanfeng/androidgen-cli/internal/i18n"
	"github.com/huanfeng/androidgen-cli/internal/version"
	"github.com/huanfeng/androidgen-cli/pkg/settings"
	"github.com/huanfeng/androidgen-cli/pkg/utils"
)

var (
	cfgFile string
	verbose bool
	debug   bool
	logFile string
	noColor bool
	lang    string

	cliViper  = viper.New()
	appConfig *config.Config
	logger    utils.Logger = utils.NewWriterLogger(os.Stderr, utils.LogLevelInfo)
)

var rootCmd = &cobra.Command{
	Use:   "androidgen",
	Short: "Generate Android Gradle projects for engine game projects",
	Long: `androidgen turns a game project into a Gradle multi-module Android project: it probes
the host toolchain, installs the Android SDK packages the project needs, patches the
vendored support libraries and emits the app module, then installs built APKs with adb.`,
	Version:       version.Short(),
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the CLI and exits with 0 on success, 2 on an internal error and 1 otherwise
func Execute() {
	if err := i18n.Init(langFromArgs(os.Args[1:])); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	applyCommandLocalization()

	err := rootCmd.Execute()
	if err == nil {
		return
	}
	var te *errors.ToolError
	if errors.As(err, &te) {
		fmt.Fprint(os.Stderr, te.FormatDetailed())
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(errors.ExitCode(err))
}

func init() {
	// assigned here rather than in the literal to avoid an initialization cycle
	// (setupCommand -> applyCommandLocalization -> rootCmd)
	rootCmd.PersistentPreRunE = setupCommand
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default ./androidgen.yaml or ~/.config/androidgen/androidgen.yaml)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	flags.BoolVar(&debug, "debug", false, "debug output")
	flags.StringVar(&logFile, "log-file", "", "also write log records to this file")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")
	flags.StringVar(&lang, "lang", "", "interface language (en, zh)")

	_ = cliViper.BindPFlag(config.KeyLogFile, flags.Lookup("log-file"))
	_ = cliViper.BindPFlag(config.KeyNoColor, flags.Lookup("no-color"))
	_ = cliViper.BindPFlag(config.KeyLang, flags.Lookup("lang"))
}

// langFromArgs finds --lang before cobra parses flags, so help text is localized too
func langFromArgs(args []string) string {
	for i, arg := range args {
		if value, ok := strings.CutPrefix(arg, "--lang="); ok {
			return value
		}
		if arg == "--lang" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return os.Getenv("ANDROIDGEN_LANG")
}

func setupCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cliViper, cfgFile)
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeConfiguration, "CONFIG_UNREADABLE", "failed to load androidgen configuration")
	}
	appConfig = cfg

	if cfg.Lang != "" && cfg.Lang != langFromArgs(os.Args[1:]) {
		if err := i18n.Init(cfg.Lang); err == nil {
			applyCommandLocalization()
		}
	}

	level := utils.ParseLogLevel(cfg.Log.Level)
	switch {
	case debug:
		level = utils.LogLevelDebug
	case verbose && level > utils.LogLevelInfo:
		level = utils.LogLevelInfo
	}
	l, err := utils.NewLogger(utils.LoggerConfig{
		Level:    level,
		Format:   utils.ParseLogFormat(cfg.Log.Format),
		Output:   os.Stderr,
		FilePath: cfg.Log.File,
		Color:    !cfg.NoColor,
	})
	if err != nil {
		return errors.WrapError(err, errors.ErrorTypeFileSystem, "LOG_FILE", "failed to open the log file")
	}
	cobra.OnFinalize(func() { _ = l.Close() })
	logger = l
	return nil
}

// openSettings returns the settings view for projectDir (may be empty) at the configured
// global directory
func openSettings(projectDir string) (*settings.View, error) {
	return settings.Open(appConfig.SettingsDir, projectDir)
}

// engineRoot picks the flag over the configuration
func engineRoot(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return appConfig.EngineRoot
}
