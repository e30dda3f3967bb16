package main

import (
	"github.com/spf13/cobra"

	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/graph"
)

var flagTopK int

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the top scored knowledge graph nodes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := graph.LoadStore(cfg.Data.GraphPath)
		if err != nil {
			return err
		}
		scorer, err := graph.LoadScorer(cfg.Data.ScoresPath)
		if err != nil {
			return err
		}

		ranked := scorer.Rank("", store.NodeIDs())
		if flagTopK > 0 && flagTopK < len(ranked) {
			ranked = ranked[:flagTopK]
		}
		for _, id := range ranked {
			cmd.Printf("%.4f  %s\n", scorer.Score(id), id)
		}
		return nil
	},
}

func init() {
	scoresCmd.Flags().IntVar(&flagTopK, "top", 20, "number of nodes to show")
}
