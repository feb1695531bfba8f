// Package main provides the legalrag command line: ask single questions,
// load passages into the vector index and prepare the graph indexes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/app"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/config"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/logx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
	appName = "legalrag"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Graph-constrained legal question answering",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.toml", "Config file path (TOML)")

	cmd.AddCommand(askCmd(&configPath))
	cmd.AddCommand(indexCmd(&configPath))
	cmd.AddCommand(setupCmd(&configPath))
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	})

	return cmd
}

// open loads configuration and connects every backend.
func open(ctx context.Context, configPath string) (*app.App, error) {
	cfg, err := config.Load(configPath, true)
	if err != nil {
		return nil, err
	}
	logx.Init(logx.Options{Env: cfg.Env})
	return app.New(ctx, cfg)
}
