package main

import (
	"context"
	"fmt"
	"os"

	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/config"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/driver"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/logx"
	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/vectorstore"
	"github.com/spf13/cobra"
)

func indexCmd(configPath *string) *cobra.Command {
	var (
		file      string
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Load chunk passages (JSON lines) into the vector index",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return err
			}
			defer f.Close()

			a, err := open(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.Index == nil {
				return fmt.Errorf("vector index %s could not be opened", a.Config.Vector.Path)
			}
			// embedder may be absent when every line carries its vector
			var emb vectorstore.Embedder
			if a.Embedder != nil {
				emb = a.Embedder
			}

			n, err := vectorstore.Load(cmd.Context(), f, emb, a.Index, batchSize)
			logx.Info().Int("chunks", n).Int("dimension", a.Index.Dimension()).Str("file", file).Msg("Indexed chunks")
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d chunks into %s (dimension %d)\n", n, a.Config.Vector.Path, a.Index.Dimension())
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "JSON lines file of chunks")
	cmd.Flags().IntVar(&batchSize, "batch", 64, "Chunks per transaction")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func setupCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Create the Neo4j lookup indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath, true)
			if err != nil {
				return err
			}
			logx.Init(logx.Options{Env: cfg.Env})

			d, err := driver.NewNeo4jDriver(cmd.Context(), cfg.Neo4j.URI, cfg.Neo4j.User, cfg.Neo4j.Password, cfg.Neo4j.Database)
			if err != nil {
				return fmt.Errorf("neo4j unreachable: %w", err)
			}
			defer d.Close(context.Background())

			if err := d.BuildIndices(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "indexes ready")
			return nil
		},
	}
}
