package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/delib-org/Freedi-app-sub004/internal/model"
)

// Version is set at build time.
var Version = "v0.1.0"

var (
	cfgFile  string
	verbose  bool
	callerID string
	isAdmin  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "consensus",
	Short: "Consensus - deliberation scoring and repair",
	Long: `Consensus recomputes the derived scores of a deliberation: per-option
agreement, consensus, evidence corroboration and the blended
consensus-valid score.

It rebuilds aggregates from raw evaluations, repairs drifted counters,
re-links clusters whose merge metadata was lost, and classifies evidence
posts with an optional language model.

Scores describe how participants rated options. They do not say which
option is right.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "consensus %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.consensus/config.yaml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&callerID, "caller", "operator", "identity the command acts as")
	pf.BoolVar(&isAdmin, "admin", true, "act with admin rights on every statement")

	pf.String("store", "", "store driver (sqlite)")
	pf.String("db", "", "sqlite database path")
	pf.Int("workers", 0, "options recalculated in parallel")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-format", "", "log format (auto, text, json)")

	_ = viper.BindPFlag("verbose", pf.Lookup("verbose"))
	_ = viper.BindPFlag("store.driver", pf.Lookup("store"))
	_ = viper.BindPFlag("store.path", pf.Lookup("db"))
	_ = viper.BindPFlag("concurrency.workers", pf.Lookup("workers"))
	_ = viper.BindPFlag("logging.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", pf.Lookup("log-format"))

	setDefaults(viper.GetViper(), model.DefaultConfig())

	rootCmd.AddCommand(versionCmd)
}

// setDefaults registers every key so env vars and Unmarshal see it.
func setDefaults(v *viper.Viper, d *model.Config) {
	v.SetDefault("scoring.sigmoid_factor", d.Scoring.SigmoidFactor)
	v.SetDefault("scoring.consensus_weight", d.Scoring.ConsensusWeight)
	v.SetDefault("scoring.corroboration_weight", d.Scoring.CorroborationWeight)
	v.SetDefault("scoring.prior", d.Scoring.Prior)

	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.path", d.Store.Path)

	v.SetDefault("classifier.provider", d.Classifier.Provider)
	v.SetDefault("classifier.model", d.Classifier.Model)
	v.SetDefault("classifier.api_key", d.Classifier.APIKey)
	v.SetDefault("classifier.base_url", d.Classifier.BaseURL)
	v.SetDefault("classifier.timeout", d.Classifier.Timeout)
	v.SetDefault("classifier.max_tokens", d.Classifier.MaxTokens)
	v.SetDefault("classifier.requests_per_second", d.Classifier.RequestsPerSecond)
	v.SetDefault("classifier.burst", d.Classifier.Burst)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("cache.memory_ttl", d.Cache.MemoryTTL)
	v.SetDefault("cache.disk_ttl", d.Cache.DiskTTL)

	v.SetDefault("concurrency.workers", d.Concurrency.Workers)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".consensus"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// CONSENSUS_STORE_PATH maps to store.path
	viper.SetEnvPrefix("CONSENSUS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig resolves flags, env, config file and defaults into a Config.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Provider keys fall back to the usual vendor env vars.
	if cfg.Classifier.APIKey == "" {
		switch strings.ToLower(cfg.Classifier.Provider) {
		case "openai":
			cfg.Classifier.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			cfg.Classifier.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	if cfg.Classifier.BaseURL == "" && strings.EqualFold(cfg.Classifier.Provider, "ollama") {
		cfg.Classifier.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}
	return cfg, nil
}
