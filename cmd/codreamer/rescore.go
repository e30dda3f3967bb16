package main

import (
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/spf13/cobra"
)

var rescoreCmd = &cobra.Command{
	Use:   "rescore <batch.jsonl>",
	Short: "Re-blend rewards for a checkpointed batch and re-apply graph credit",
	Long: `rescore resumes from a stage checkpoint written by 'run'. It reads
the trajectory batch, recomputes each reward from the current feedback
log (picking up preference and outcome events recorded since the run),
and pushes the updated credit into the node scores.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := buildLogger(cfg)

		// Rescoring never calls the model, so the provider is irrelevant;
		// buildPipeline still needs one to assemble the engine.
		flagDryRun = true
		p, err := buildPipeline(cfg, logger, noop.NewTracerProvider().Tracer("codreamer"))
		if err != nil {
			return err
		}
		return p.Rescore(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(rescoreCmd)
}
