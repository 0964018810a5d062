package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/cstkit/internal/server"
)

var (
	serveAddress    string
	serveReflection bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gRPC evaluation service",
	Long: `Serves cstkit.v1.Evaluator over gRPC together with the standard
health service. Runs are recorded when history is enabled.

Methods:
  Evaluate  - {text, entry_rule, include_tree} -> {run_id, value, ...}
  Tokenize  - {text} -> {run_id, tokens}
  Describe  - {} -> {entry, rules}

Examples:
  cstkit serve
  cstkit serve --address 0.0.0.0:9310 --reflection`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddress, "address", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveReflection, "reflection", false, "enable gRPC reflection")
}

func runServe(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}

	store, err := e.openHistory(false)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	cfg := server.ConfigFrom(e.config.Server)
	if serveAddress != "" {
		cfg.Address = serveAddress
	}
	cfg.EnableReflection = cfg.EnableReflection || serveReflection

	srv := server.New(cfg, server.NewEvaluator(server.EvaluatorOptions{
		Pipeline: e.pipeline,
		Grammar:  e.language.Grammar(),
		Store:    store,
		Logger:   e.logger,
	}), e.logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()
	fmt.Printf("cstkit serving on %s\n", cfg.Address)

	select {
	case <-sigCh:
		fmt.Println("\nStopping...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		srv.StopWithTimeout(ctx)
		return nil
	case err := <-errCh:
		return err
	}
}
