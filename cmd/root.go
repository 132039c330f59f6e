package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/applyfill/internal/autofill"
	"github.com/spigell/applyfill/internal/browser"
	"github.com/spigell/applyfill/internal/logger"
	"github.com/spigell/applyfill/internal/matching"
	"github.com/spigell/applyfill/internal/observe"
	"github.com/spigell/applyfill/internal/platform"
	"github.com/spigell/applyfill/internal/profile"
)

const (
	app       = "applyfill"
	envPrefix = "APPLYFILL"
)

type Config struct {
	Profile    string                 `mapstructure:"profile"`
	Browser    browser.Config         `mapstructure:"browser"`
	Detection  DetectionConfig        `mapstructure:"detection"`
	Thresholds matching.Thresholds    `mapstructure:"thresholds"`
	UndoCap    int                    `mapstructure:"undo-cap"`
	Exclude    ExcludeConfig          `mapstructure:"exclude"`
	Fill       FillConfig             `mapstructure:"fill"`
	Watch      observe.DebounceConfig `mapstructure:"watch"`
	LogFile    logger.File            `mapstructure:"log-file"`
}

type DetectionConfig struct {
	Weights       platform.Weights `mapstructure:"weights"`
	MinConfidence int              `mapstructure:"min-confidence"`
}

type ExcludeConfig struct {
	// Paths are profile paths never filled automatically, e.g. personal.phone
	// or the whole extras subtree.
	Paths []string `mapstructure:"paths"`
}

type FillConfig struct {
	MinConfidence int           `mapstructure:"min-confidence"`
	Delay         time.Duration `mapstructure:"delay"`
	Overwrite     bool          `mapstructure:"overwrite"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "applyfill fills job application forms from a structured profile",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is applyfill.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")
	rootCmd.PersistentFlags().StringP("profile", "p", "", "a profile file (yaml or json)")
	rootCmd.PersistentFlags().String("log-file", "", "also write json logs to this file, rotated")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))
	viper.BindPFlag("log-file.path", rootCmd.PersistentFlags().Lookup("log-file"))
}

func initConfig() {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// Every setting has a default, so only an explicit or broken config file
	// is fatal.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func defaultConfig() *Config {
	detection := platform.DefaultConfig()
	return &Config{
		Detection: DetectionConfig{
			Weights:       detection.Weights,
			MinConfidence: detection.MinConfidence,
		},
		Thresholds: matching.DefaultThresholds(),
		Watch:      observe.DebounceConfig{Quiet: observe.MinQuiet},
	}
}

func getConfig() (*Config, error) {
	config := defaultConfig()
	if err := viper.Unmarshal(config); err != nil {
		return nil, err
	}
	return config, nil
}

// setup builds the logger and the config every command starts with.
func setup() (*zap.Logger, *Config) {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		l.Fatal("getting a config", zap.Error(err))
	}

	if config.LogFile.Path != "" {
		l, err = logger.NewWithFile(viper.GetBool("json"), viper.GetBool("debug"), config.LogFile)
		if err != nil {
			log.Fatalf("creating a logger: %s", err)
		}
	}

	l.Debug("starting with config", zap.Any("config", redacted(config)))
	return l, config
}

// redacted hides the DevTools address, which may carry an access token.
func redacted(c *Config) Config {
	out := *c
	if out.Browser.RemoteURL != "" {
		out.Browser.RemoteURL = "[redacted]"
	}
	return out
}

func loadProfile(config *Config) (*profile.Profile, error) {
	path := strings.TrimSpace(config.Profile)
	if path == "" {
		return nil, fmt.Errorf("profile is not configured (set --profile, the profile key or %s_PROFILE)", envPrefix)
	}
	return profile.Load(path)
}

func newAutofiller(config *Config, l *zap.Logger) *autofill.Autofiller {
	return autofill.New(autofill.Config{
		Detection: platform.Config{
			Weights:       config.Detection.Weights,
			MinConfidence: config.Detection.MinConfidence,
		},
		Thresholds:    config.Thresholds,
		UndoCap:       config.UndoCap,
		ExcludedPaths: config.Exclude.Paths,
	}, l)
}
