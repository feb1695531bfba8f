package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/AtharvTrivedi21/LegalRAG-KnowledgeGraph/internal/core/model"
	"github.com/spf13/cobra"
)

func askCmd(configPath *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer one legal question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(strings.Join(args, " "))
			if query == "" {
				return fmt.Errorf("question must not be empty")
			}

			a, err := open(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer a.Close()

			state, err := a.Pipeline.Answer(cmd.Context(), query)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), state)
			}
			writeText(cmd.OutOrStdout(), state)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the answer and diagnostics as JSON")

	return cmd
}

type askOutput struct {
	Answer      model.Answer        `json:"answer"`
	Metadata    model.GraphMetadata `json:"metadata"`
	Diagnostics model.Diagnostics   `json:"diagnostics"`
}

func writeJSON(w io.Writer, state *model.WorkflowState) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(askOutput{
		Answer:      state.Answer(),
		Metadata:    state.Metadata(),
		Diagnostics: state.Diagnostics(),
	})
}

func writeText(w io.Writer, state *model.WorkflowState) {
	fmt.Fprintln(w, state.Answer().Text)
	fmt.Fprintln(w)

	d := state.Diagnostics()
	fmt.Fprintf(w, "run: %s  outcome: %s  selection: %s  top_similarity: %.3f\n", d.RunID, d.Outcome, d.Selection, d.TopSimilarity)
	if d.LegalQuery != "" {
		fmt.Fprintf(w, "legal query: %s\n", d.LegalQuery)
	}
	if d.UsedFallbackUnconstrained {
		fmt.Fprintln(w, "note: no graph-linked passages matched; results are unconstrained")
	}
	if d.GraphError != "" {
		fmt.Fprintf(w, "graph: %s\n", d.GraphError)
	}
	if d.VectorError != "" {
		fmt.Fprintf(w, "vector: %s\n", d.VectorError)
	}
}
