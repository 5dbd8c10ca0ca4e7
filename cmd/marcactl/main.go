package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"marca-checker/internal/api"
	"marca-checker/internal/check"
	"marca-checker/internal/config"
	"marca-checker/internal/match"
	"marca-checker/internal/store"
)

var timeout time.Duration

func main() {
	settings := config.FromEnv()
	settings.ConfigureLogging()
	logrus.SetOutput(os.Stderr)

	rootCmd := &cobra.Command{
		Use:          "marcactl",
		Short:        "Trademark availability checks against IMPI from the terminal",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall deadline for the command")

	rootCmd.AddCommand(probeCmd(settings))
	rootCmd.AddCommand(adviseCmd(settings))
	rootCmd.AddCommand(checkCmd(settings))
	rootCmd.AddCommand(historyCmd(settings))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func probeCmd(settings config.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "probe [marca]",
		Short: "Look a brand up in the IMPI registry only",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			brand := match.NormalizeBrand(strings.Join(args, " "))
			if brand == "" {
				return fmt.Errorf("marca es obligatoria")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			primary, _ := settings.BuildProbers()
			return printJSON(map[string]any{
				"marca":       brand,
				"status_impi": primary.Probe(ctx, brand),
				"timestamp":   time.Now().UTC(),
			})
		},
	}
}

func adviseCmd(settings config.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "advise [marca] [descripcion...]",
		Short: "Ask the AI advisor for a viability opinion",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := match.NormalizeQuery(args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			memo, _, closeCache := settings.BuildCache(ctx)
			defer closeCache()
			advisor, err := settings.BuildAdvisor(ctx, memo)
			if err != nil {
				return err
			}
			return printJSON(advisor.Advise(ctx, query))
		},
	}
}

func checkCmd(settings config.Settings) *cobra.Command {
	var record bool

	cmd := &cobra.Command{
		Use:   "check [marca] [descripcion...]",
		Short: "Run the full consultation: advisor, registry and merge",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := match.NormalizeQuery(args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			memo, _, closeCache := settings.BuildCache(ctx)
			defer closeCache()
			advisor, err := settings.BuildAdvisor(ctx, memo)
			if err != nil {
				return err
			}
			primary, secondary := settings.BuildProbers()
			cfg := check.Config{
				Advisor:       advisor,
				Prober:        primary,
				Fallback:      secondary,
				FallbackDelay: settings.FallbackDelay,
			}
			if record {
				db, err := settings.OpenStore()
				if err != nil {
					return err
				}
				if db != nil {
					defer db.Close()
					cfg.Recorder = db
				}
			}
			checker, err := check.New(cfg)
			if err != nil {
				return err
			}
			return printJSON(checker.Check(ctx, query).Analysis)
		},
	}
	cmd.Flags().BoolVar(&record, "record", false, "append the result to the consultation log")
	return cmd
}

func historyCmd(settings config.Settings) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent consultations from the log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := settings.OpenStore()
			if err != nil {
				return err
			}
			if db == nil {
				return fmt.Errorf("consultation log disabled (MARCA_DB_PATH=%s)", config.DBDisabled)
			}
			defer db.Close()

			report, err := buildHistory(db, limit)
			if err != nil {
				return err
			}
			return printJSON(report)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of consultations to show")
	return cmd
}

// historyReport is the JSON printed by the history command.
type historyReport struct {
	Items        []api.ConsultationDTO `json:"items"`
	Total        int64                 `json:"total"`
	StatusCounts map[string]int64      `json:"status_counts"`
}

func buildHistory(db *store.Database, limit int) (historyReport, error) {
	rows, total, err := db.ListConsultations(0, limit)
	if err != nil {
		return historyReport{}, err
	}
	counts, err := db.CountByStatus()
	if err != nil {
		return historyReport{}, err
	}
	items := make([]api.ConsultationDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, api.FromModel(row))
	}
	return historyReport{Items: items, Total: total, StatusCounts: counts}, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
