// Command trendforge turns trend signals into ranked opportunities and
// weekly posting calendars for a set of video channels.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"trendforge/internal/config"
	"trendforge/internal/logging"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
)

const defaultConfigPath = "./trendforge.yaml"

var (
	cfg   config.Config
	flags = newFlags()
)

func main() {
	// .env is optional
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "trendforge",
	Short:         "Trend-driven content calendars for video channels",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(flags.GetString("logging.level"), "trendforge")
		if cmd.Annotations[skipConfig] != "" {
			return nil
		}
		c, err := loadConfig(flags.GetString("config"), flags)
		if err != nil {
			return err
		}
		cfg = c
		logging.Init(cfg.Logging.Level, "trendforge")
		return nil
	},
}

// skipConfig marks commands that run without a config file.
const skipConfig = "skip-config"

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", defaultConfigPath, "config file path")
	pf.String("log-level", "", "log level override (debug, info, warn, error)")
	pf.String("db", "", "sqlite database path override")
	pf.String("output", "", "directory for exported calendar files")
	_ = flags.BindPFlag("config", pf.Lookup("config"))
	_ = flags.BindPFlag("logging.level", pf.Lookup("log-level"))
	_ = flags.BindPFlag("storage.db_path", pf.Lookup("db"))
	_ = flags.BindPFlag("output_dir", pf.Lookup("output"))

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(channelsCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(monetizationCmd)
}

// newFlags returns the override layer: bound flags first, then TRENDFORGE_* env vars
// (TRENDFORGE_STORAGE_DRIVER, TRENDFORGE_LOGGING_LEVEL, ...).
func newFlags() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("TRENDFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// loadConfig reads path, falling back to defaults when the file does not
// exist, then applies overrides and validates.
func loadConfig(path string, v *viper.Viper) (config.Config, error) {
	if path == "" {
		path = defaultConfigPath
	}
	c, err := config.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		c = config.Default()
		c.ResolveEnv()
		logging.Warn("config_missing", map[string]any{"path": path, "hint": "run `trendforge init`"})
	} else if err != nil {
		return c, fmt.Errorf("failed to load config: %w", err)
	}
	applyOverrides(&c, v)
	if err := c.Validate(); err != nil {
		return c, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return c, nil
}

func applyOverrides(c *config.Config, v *viper.Viper) {
	set := func(dst *string, key string) {
		if s := strings.TrimSpace(v.GetString(key)); s != "" {
			*dst = s
		}
	}
	set(&c.Logging.Level, "logging.level")
	set(&c.Storage.Driver, "storage.driver")
	set(&c.Storage.DBPath, "storage.db_path")
	set(&c.Storage.DatabaseURL, "storage.database_url")
	set(&c.Server.Addr, "server.addr")
	set(&c.Metrics.Addr, "metrics.addr")
	set(&c.Schedule.Timezone, "schedule.timezone")
	set(&c.OutputDir, "output_dir")
	if n := v.GetInt("schedule.days"); n > 0 {
		c.Schedule.Days = n
	}
}

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print version information",
	Annotations: map[string]string{skipConfig: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "trendforge %s (%s)\n", version, commit)
	},
}
