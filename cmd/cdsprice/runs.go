package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/meenmo/credlib/journal"
	"github.com/meenmo/credlib/report"
	"github.com/meenmo/credlib/utils"
)

func newRunsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Browse the pricing run journal",
	}
	cmd.AddCommand(
		newRunsListCmd(a),
		newRunsShowCmd(a),
	)
	return cmd
}

func newRunsListCmd(a *app) *cobra.Command {
	var (
		issuer string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			j, err := a.openJournal()
			if err != nil {
				return err
			}
			defer j.Close()

			runs, err := j.ListRuns(cmd.Context(), issuer, limit)
			if err != nil {
				return err
			}
			docs := make([]map[string]any, len(runs))
			for i, r := range runs {
				docs[i] = runDoc(r)
			}
			return writeJSON(a, map[string]any{"runs": docs})
		},
	}
	cmd.Flags().StringVar(&issuer, "issuer", "", "only runs for this issuer")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs (0 for all)")
	return cmd
}

func newRunsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run including its contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := a.openJournal()
			if err != nil {
				return err
			}
			defer j.Close()

			r, err := j.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			spec, err := report.DecodeMsgpack(r.Specification)
			if err != nil {
				return err
			}
			doc := runDoc(r)
			doc["specification"] = spec
			return writeJSON(a, doc)
		},
	}
}

func runDoc(r journal.Run) map[string]any {
	return map[string]any{
		"run_id":         r.ID,
		"name":           r.Name,
		"issuer":         r.Issuer,
		"valuation_date": utils.FormatDate(r.ValuationDate),
		"priced_at":      r.PricedAt.Format(time.RFC3339Nano),
		"result":         report.ResultMap(r.Result()),
	}
}

func writeJSON(a *app, v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
