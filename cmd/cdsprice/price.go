package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/meenmo/credlib/batch"
	"github.com/meenmo/credlib/metrics"
	"github.com/meenmo/credlib/report"
	"github.com/meenmo/credlib/scenario"
	"github.com/meenmo/credlib/utils"
)

var errPricingFailed = errors.New("one or more scenarios failed to price")

func newPriceCmd(a *app) *cobra.Command {
	var (
		file       string
		format     string
		useJournal bool
	)

	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price every scenario in a YAML file",
		Example: `  cdsprice price -f acme.yaml
  cdsprice price -f acme.yaml --format json --journal`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch format {
			case "table", "json", "msgpack":
			default:
				return fmt.Errorf("unknown format %q (table, json, msgpack)", format)
			}

			scenarios, err := scenario.Load(file)
			if err != nil {
				return err
			}
			jobs := make([]batch.Job, len(scenarios))
			for i, sc := range scenarios {
				data, err := sc.PricingData()
				if err != nil {
					return err
				}
				jobs[i] = batch.Job{Name: sc.Name, Data: data}
			}

			engine, err := a.engine()
			if err != nil {
				return err
			}
			runner := &batch.Runner{Engine: engine, Workers: a.cfg.Batch.Workers, Log: a.log}
			if useJournal || a.cfg.Journal.Enabled {
				j, err := a.openJournal()
				if err != nil {
					return err
				}
				defer j.Close()
				runner.Journal = j
			}

			outcomes := runner.Run(cmd.Context(), jobs)
			if err := writeOutcomes(a, format, outcomes); err != nil {
				return err
			}
			for _, o := range outcomes {
				if o.Err != nil || o.JournalErr != nil {
					return errPricingFailed
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "scenario YAML file")
	cmd.Flags().StringVar(&format, "format", "table", "output format: table, json or msgpack")
	cmd.Flags().BoolVar(&useJournal, "journal", false, "record runs in the journal (also enabled by journal.enabled)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func outcomeDocs(outcomes []batch.Outcome) []map[string]any {
	docs := make([]map[string]any, len(outcomes))
	for i, o := range outcomes {
		if o.Err != nil {
			docs[i] = map[string]any{"name": o.Name, "error": o.Err.Error(), "kind": metrics.Outcome(o.Err)}
			continue
		}
		doc := report.Run(o.Name, o.Data.ValDate, o.Data.Spec, o.Result)
		if o.RunID != "" {
			doc["run_id"] = o.RunID
		}
		docs[i] = doc
	}
	return docs
}

func writeOutcomes(a *app, format string, outcomes []batch.Outcome) error {
	switch format {
	case "json":
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			report.KeySchemaVersion: report.SchemaVersion,
			"runs":                  outcomeDocs(outcomes),
		})
	case "msgpack":
		docs := outcomeDocs(outcomes)
		runs := make([]any, len(docs))
		for i, d := range docs {
			runs[i] = d
		}
		b, err := report.EncodeMsgpack(map[string]any{
			report.KeySchemaVersion: report.SchemaVersion,
			"runs":                  runs,
		})
		if err != nil {
			return err
		}
		_, err = a.stdout.Write(b)
		return err
	default:
		return writeTable(a, outcomes)
	}
}

func writeTable(a *app, outcomes []batch.Outcome) error {
	tw := tabwriter.NewWriter(a.stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "SCENARIO\tISSUER\tVALUATION\tPROTECTION\tPREMIUM\tPRICE\tRUN\t")
	for _, o := range outcomes {
		issuer := ""
		if o.Data.Spec != nil {
			issuer = o.Data.Spec.Issuer()
		}
		if o.Err != nil {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\t\t\t\n", o.Name, issuer, utils.FormatDate(o.Data.ValDate), "error: "+metrics.Outcome(o.Err))
			a.log.Error().Err(o.Err).Str("scenario", o.Name).Msg("pricing failed")
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			o.Name, issuer, utils.FormatDate(o.Data.ValDate),
			report.Rounded(o.Result.PVProtectionLeg, 6),
			report.Rounded(o.Result.PVPremiumLeg, 6),
			report.Rounded(o.Result.Price, 6),
			o.RunID)
	}
	return tw.Flush()
}
