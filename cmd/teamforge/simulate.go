package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/okian/teamforge/internal/domain/balance"
	"github.com/okian/teamforge/internal/domain/draft"
	"github.com/okian/teamforge/internal/domain/types"
	"github.com/okian/teamforge/internal/simulate"
)

var strategies = map[string]simulate.Strategy{
	"best": simulate.BestAvailable,
	"role": simulate.RoleFirst,
}

type simulateFlags struct {
	roster       string
	participants int
	captains     int
	seed         int64
	strategy     string
	themes       []string
	output       string
}

func newSimulateCmd() *cobra.Command {
	var f simulateFlags
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Rehearse a captain draft with automatic picks",
		Long:  "Run a snake-order captain draft to completion. The strongest participants captain the teams and every pick follows --strategy.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			strategy, ok := strategies[f.strategy]
			if !ok {
				return fmt.Errorf("unknown strategy %q (want best or role)", f.strategy)
			}
			profiles, err := loadRoster(f.roster, f.participants, f.seed)
			if err != nil {
				return err
			}
			if f.captains < 2 || f.captains > len(profiles) {
				return fmt.Errorf("captains must be between 2 and %d, got %d", len(profiles), f.captains)
			}

			ranked := balance.Rank(profiles)
			captains := make([]draft.Captain, f.captains)
			for i := range captains {
				captains[i] = draft.Captain{ParticipantID: ranked[i].ID()}
				if i < len(f.themes) {
					captains[i].TeamName = f.themes[i]
				}
			}

			s, err := draft.Start(profiles, captains, 0, draft.WithID(uuid.NewString()))
			if err != nil {
				return err
			}
			done, err := simulate.AutoDraft(s, strategy)
			if err != nil {
				return err
			}
			return printDraft(cmd.OutOrStdout(), f.output, types.FromSession(done, time.Now()), balance.Spread(done.Teams()))
		},
	}
	cmd.Flags().StringVarP(&f.roster, "roster", "r", "", "Path to a YAML or JSON roster")
	cmd.Flags().IntVarP(&f.participants, "participants", "n", 24, "Size of the generated roster when --roster is not set")
	cmd.Flags().IntVarP(&f.captains, "captains", "c", 4, "Number of captains")
	cmd.Flags().Int64Var(&f.seed, "seed", 1, "Seed for the generated roster")
	cmd.Flags().StringVar(&f.strategy, "strategy", "best", "Pick strategy: best or role")
	cmd.Flags().StringSliceVar(&f.themes, "themes", nil, "Team names, in captain order")
	cmd.Flags().StringVarP(&f.output, "output", "o", outputTable, "Output format: table or json")
	return cmd
}

func printDraft(w io.Writer, format string, d types.Draft, spread float64) error {
	switch format {
	case outputJSON:
		return writeJSON(w, d)
	case outputTable:
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "draft\t%s\t%s\n", d.ID, d.Status)
		fmt.Fprintln(tw, "PICK\tTEAM\tPARTICIPANT\tKIND")
		for _, p := range d.Picks {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", p.Number, p.TeamID, p.ParticipantID, p.Kind)
		}
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "TEAM\tNAME\tAVG\tMEMBERS")
		for _, t := range d.Teams {
			fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\n", t.ID, t.Name, t.AverageStrength, memberList(t.Members))
		}
		fmt.Fprintf(tw, "\nspread\t%.3f\n", spread)
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
