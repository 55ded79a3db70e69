package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"axioma/internal/discernment"
	"axioma/internal/discernment/adapters/narrator"
	"axioma/internal/interview/ports"
	"axioma/internal/platform/config"
	"axioma/internal/platform/logger"
)

// Settings keys. With the AXIOMA prefix they match the server's environment
// variables, so one environment configures both binaries.
const (
	keySettings        = "settings"
	keyEngineConfig    = "engine_config"
	keyLogLevel        = "log_level"
	keyNarrator        = "narrator"
	keyNarratorURL     = "narrator_url"
	keyNarratorModel   = "narrator_model"
	keyNarratorAPIKey  = "narrator_api_key"
	keyNarratorTimeout = "narrator_timeout"
)

// answererFactory opens the source of interview answers. The returned closer
// releases the terminal.
type answererFactory func(in io.Reader, out io.Writer) (ports.Answerer, io.Closer, error)

type cli struct {
	v           *viper.Viper
	in          io.Reader
	out         io.Writer
	errOut      io.Writer
	newAnswerer answererFactory
}

func newCLI(in io.Reader, out, errOut io.Writer) *cli {
	return &cli{
		v:           viper.New(),
		in:          in,
		out:         out,
		errOut:      errOut,
		newAnswerer: newReadlineAnswerer,
	}
}

func (c *cli) root() *cobra.Command {
	root := &cobra.Command{
		Use:   "axioma",
		Short: "Tri-axial discernment engine",
		Long: `axioma scores an affirmation on three axes (fundamento, contexto,
principio), weighs its declared risks and classifies it as NO, POSPONER,
ADELANTE_GRADUAL or ADELANTE.

Settings come from flags, AXIOMA_* environment variables or a settings file
passed with --settings, in that order of precedence.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return c.loadSettings() },
	}
	root.SetIn(c.in)
	root.SetOut(c.out)
	root.SetErr(c.errOut)

	flags := root.PersistentFlags()
	flags.String(keySettings, "", "settings file (yaml, json or toml)")
	flags.String("engine-config", "", "engine tuning YAML; built-in defaults when empty")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
	flags.String("narrator", config.NarratorNone, "narration backend: none, ollama, openai")
	flags.String("narrator-url", "", "narrator base URL")
	flags.String("narrator-model", "", "narrator model")
	flags.String("narrator-api-key", "", "narrator API key (openai)")
	flags.Duration("narrator-timeout", 60*time.Second, "narration timeout")

	c.bind(flags.Lookup("engine-config"), keyEngineConfig)
	c.bind(flags.Lookup("log-level"), keyLogLevel)
	c.bind(flags.Lookup("narrator"), keyNarrator)
	c.bind(flags.Lookup("narrator-url"), keyNarratorURL)
	c.bind(flags.Lookup("narrator-model"), keyNarratorModel)
	c.bind(flags.Lookup("narrator-api-key"), keyNarratorAPIKey)
	c.bind(flags.Lookup("narrator-timeout"), keyNarratorTimeout)
	c.bind(flags.Lookup(keySettings), keySettings)

	c.v.SetEnvPrefix("AXIOMA")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	root.AddCommand(c.evaluateCmd(), c.interviewCmd(), c.configCmd())
	return root
}

func (c *cli) bind(flag *pflag.Flag, key string) {
	// BindPFlag only fails on a nil flag, which is a programming error.
	if err := c.v.BindPFlag(key, flag); err != nil {
		panic(err)
	}
}

func (c *cli) loadSettings() error {
	path := c.v.GetString(keySettings)
	if path == "" {
		return nil
	}
	c.v.SetConfigFile(path)
	if err := c.v.ReadInConfig(); err != nil {
		return fmt.Errorf("read settings %s: %w", path, err)
	}
	return nil
}

func (c *cli) logger() *slog.Logger {
	return logger.New(c.errOut, c.v.GetString(keyLogLevel), "text")
}

func (c *cli) engineConfig() (discernment.Config, error) {
	path := c.v.GetString(keyEngineConfig)
	if path == "" {
		return discernment.DefaultConfig(), nil
	}
	return discernment.LoadConfig(path)
}

func (c *cli) narratorConfig() config.NarratorConfig {
	return config.NarratorConfig{
		Backend:          strings.ToLower(c.v.GetString(keyNarrator)),
		BaseURL:          c.v.GetString(keyNarratorURL),
		Model:            c.v.GetString(keyNarratorModel),
		APIKey:           c.v.GetString(keyNarratorAPIKey),
		Timeout:          c.v.GetDuration(keyNarratorTimeout),
		FailureThreshold: 1,
	}
}

// service builds a one-shot evaluation service from the current settings.
func (c *cli) service(cfg discernment.Config) (*discernment.Service, error) {
	engine, err := discernment.NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	log := c.logger()
	ncfg := c.narratorConfig()
	opts := []discernment.Option{
		discernment.WithLogger(log),
		discernment.WithNarrationTimeout(ncfg.Timeout),
	}
	n, err := narrator.FromConfig(ncfg, log)
	if err != nil {
		return nil, err
	}
	if n != nil {
		opts = append(opts, discernment.WithNarrator(n))
	}
	return discernment.NewService(engine, opts...)
}
