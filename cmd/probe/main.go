package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/zoobzio/probe"
)

// usageLiteral is printed verbatim when no claim is supplied.
const usageLiteral = `CRITICAL USAGE: probe "<SemanticProbe Claim>"`

func main() {
	var (
		corpusSize  int
		graphDepth  int
		seed        int64
		postgresDSN string
	)

	root := &cobra.Command{
		Use:           "probe \"<SemanticProbe Claim>\"",
		Short:         "Evaluate a claim against a procedurally generated knowledge base",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
				fmt.Fprintln(os.Stderr, usageLiteral)
				os.Exit(1)
			}
			claim := args[0]

			memory, closer, err := openMemory(postgresDSN)
			if err != nil {
				return fmt.Errorf("memory initialization failed: %w", err)
			}
			if closer != nil {
				defer closer()
			}

			engine := probe.NewEngine(memory).
				WithCorpusSize(corpusSize).
				WithGraphDepth(graphDepth)
			if cmd.Flags().Changed("seed") {
				engine.WithFactory(probe.NewFactory().WithSeed(seed)).
					WithGraphGenerator(probe.NewGraphGenerator().WithSeed(seed))
			}

			result, err := engine.Execute(cmd.Context(), claim)
			if err != nil {
				return err
			}

			render(cmd.OutOrStdout(), result)
			return nil
		},
	}

	root.Flags().IntVar(&corpusSize, "corpus-size", probe.DefaultCorpusSize, "number of knowledge vectors to generate")
	root.Flags().IntVar(&graphDepth, "depth", probe.DefaultGraphDepth, "knowledge graph depth")
	root.Flags().Int64Var(&seed, "seed", 0, "seed for reproducible generation")
	root.Flags().StringVar(&postgresDSN, "postgres", "", "Postgres DSN for persistent memory (default: in-process)")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "EXECUTION ERROR: %v\n", err)
		os.Exit(1)
	}
}

// openMemory selects the memory backend: Postgres when a DSN is given,
// otherwise in-process.
func openMemory(dsn string) (probe.Memory, func() error, error) {
	if dsn == "" {
		return probe.NewEphemeralMemory(), nil, nil
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	memory, err := probe.NewSoyMemory(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	return memory, memory.Close, nil
}

// render prints the structured analysis for a probe result.
func render(w io.Writer, result *probe.Result) {
	fmt.Fprintln(w, "--- RESULTS: KNOWLEDGE VECTOR ANALYSIS ---")
	fmt.Fprintf(w, "CLAIM: %s\n", result.Claim)
	fmt.Fprintf(w, "TRACE: %s\n", result.TraceID)
	fmt.Fprintf(w, "STATISTICAL CONFIDENCE SCORE: %.2f%% (%s)\n", result.Confidence, result.Classification)
	fmt.Fprintf(w, "TRUTH CORPUS SIZE: %d\n", result.CorpusSize)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "--- PROCEDURAL MARKOV GRAPH (%s, depth %d) ---\n", result.Graph.Algorithm, result.Graph.Depth)
	for _, edge := range result.Graph.Edges {
		fmt.Fprintf(w, "  -> [%.3f] %s -> %s\n", edge.Weight, edge.Source, edge.Target)
	}
}
