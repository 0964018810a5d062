package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/msto63/cstkit/internal/calc"
	"github.com/msto63/cstkit/internal/history"
	"github.com/msto63/cstkit/internal/pipeline"
	"github.com/msto63/cstkit/internal/render"
	ckconfig "github.com/msto63/cstkit/pkg/core/config"
	ckerror "github.com/msto63/cstkit/pkg/core/error"
	cklog "github.com/msto63/cstkit/pkg/core/log"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "cstkit",
	Short: "cstkit - grammar-driven language pipeline",
	Long: `cstkit tokenizes, parses and evaluates arithmetic written in words.

Grammar rules are data: the parser builds a labeled concrete syntax tree
and an interpreter walks it. All definitions are validated at startup.

Examples:
  cstkit eval "one plus two times three"
  cstkit tree "four plus three plus one"
  cstkit check
  cstkit repl`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, render.Error(err))
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $CSTKIT_CONFIG, ./cstkit.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// env bundles what every command builds from the configuration
type env struct {
	config   *ckconfig.Config
	logger   *cklog.Logger
	language *calc.Language
	pipeline *pipeline.Pipeline
}

func loadConfig() (*ckconfig.Config, error) {
	if cfgFile != "" {
		return ckconfig.Load(cfgFile)
	}
	return ckconfig.LoadFromEnv()
}

func setup() (*env, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger("cstkit")
	if verbose {
		logger = logger.WithLevel(cklog.LevelDebug)
	}
	cklog.SetDefault(logger)

	lang, err := calc.NewLanguage(calc.OptionsFromConfig(cfg.Language, logger))
	if err != nil {
		return nil, err
	}
	p, err := pipeline.New(pipeline.Options{
		Language:       lang,
		Logger:         logger,
		EntryRule:      cfg.Language.EntryRule,
		MaxInputLength: cfg.Language.MaxInputLength,
	})
	if err != nil {
		return nil, err
	}
	return &env{config: cfg, logger: logger, language: lang, pipeline: p}, nil
}

// openHistory opens the configured store; force enables it regardless of config
func (e *env) openHistory(force bool) (history.Store, error) {
	if !force && !e.config.History.Enabled {
		return nil, nil
	}
	store, err := history.Open(e.config.History)
	if err != nil {
		return nil, err
	}
	return store, nil
}

// inputText joins the arguments or, when none are given, reads piped stdin
func inputText(args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	stat, _ := os.Stdin.Stat()
	if stat != nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}
	return "", ckerror.New("no input: pass text as arguments or on stdin").WithCode(ckerror.CodeInvalidInput)
}
