package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/feedback"
)

var (
	flagTrajectory string
	flagProspect   string
	flagStep       int

	flagOpened      bool
	flagReplied     bool
	flagCallBooked  bool
	flagOpportunity bool
	flagClosedWon   bool

	flagWinner     string
	flagLoser      string
	flagReviewer   string
	flagConfidence float64
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Append feedback events to the feedback log",
}

var feedbackOutcomeCmd = &cobra.Command{
	Use:   "outcome",
	Short: "Record observed outcomes for a sent email",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagTrajectory == "" {
			return fmt.Errorf("--trajectory is required")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := feedback.NewLog(cfg.Data.FeedbackPath)
		event := feedback.NewOutcomeEvent(flagTrajectory, flagProspect, flagStep, feedback.Outcome{
			Opened:      flagOpened,
			Replied:     flagReplied,
			CallBooked:  flagCallBooked,
			Opportunity: flagOpportunity,
			ClosedWon:   flagClosedWon,
		})
		if err := log.Append(event); err != nil {
			return err
		}
		cmd.Printf("recorded outcome for trajectory %s\n", flagTrajectory)
		return nil
	},
}

var feedbackPreferenceCmd = &cobra.Command{
	Use:   "preference",
	Short: "Record a human pairwise preference between two trajectories",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagWinner == "" || flagLoser == "" {
			return fmt.Errorf("--winner and --loser are required")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := feedback.NewLog(cfg.Data.FeedbackPath)
		event := feedback.NewPreferenceEvent(flagWinner, flagLoser, flagProspect, flagReviewer, flagStep, flagConfidence)
		if err := log.Append(event); err != nil {
			return err
		}
		cmd.Printf("recorded preference %s > %s\n", flagWinner, flagLoser)
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{feedbackOutcomeCmd, feedbackPreferenceCmd} {
		cmd.Flags().StringVar(&flagProspect, "prospect", "", "prospect id the feedback concerns")
		cmd.Flags().IntVar(&flagStep, "step", 0, "sequence step within the prospect's outreach")
	}

	feedbackOutcomeCmd.Flags().StringVar(&flagTrajectory, "trajectory", "", "trajectory id the outcome belongs to")
	feedbackOutcomeCmd.Flags().BoolVar(&flagOpened, "opened", false, "email was opened")
	feedbackOutcomeCmd.Flags().BoolVar(&flagReplied, "replied", false, "prospect replied")
	feedbackOutcomeCmd.Flags().BoolVar(&flagCallBooked, "call-booked", false, "a call was booked")
	feedbackOutcomeCmd.Flags().BoolVar(&flagOpportunity, "opportunity", false, "an opportunity was opened")
	feedbackOutcomeCmd.Flags().BoolVar(&flagClosedWon, "closed-won", false, "the deal closed won")

	feedbackPreferenceCmd.Flags().StringVar(&flagWinner, "winner", "", "preferred trajectory id")
	feedbackPreferenceCmd.Flags().StringVar(&flagLoser, "loser", "", "rejected trajectory id")
	feedbackPreferenceCmd.Flags().StringVar(&flagReviewer, "reviewer", "", "reviewer identifier")
	feedbackPreferenceCmd.Flags().Float64Var(&flagConfidence, "confidence", 1.0, "reviewer confidence in (0, 1]")

	feedbackCmd.AddCommand(feedbackOutcomeCmd)
	feedbackCmd.AddCommand(feedbackPreferenceCmd)
}
