package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tendant/cms-check/pkg/aposclient"
	"github.com/tendant/cms-check/pkg/check"
	"github.com/tendant/cms-check/pkg/check/suites"
	"github.com/tendant/cms-check/pkg/config"
	"github.com/tendant/cms-check/pkg/history"
	"github.com/tendant/cms-check/pkg/lifecycle"
)

var (
	runSuites    []string
	skipHistory  bool
	retireKind   string
	retireDocID  string
	historyLimit int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run check suites against the configured CMS",
	RunE:  runRun,
}

var retireCmd = &cobra.Command{
	Use:   "retire [id]",
	Short: "Locate and delete one content item by an identifier of uncertain shape",
	Long: `retire resolves an identifier that may be a bare document id, a
draft/published compound id, or a stale published reference, and deletes the
underlying document. An item that is already gone counts as success.`,
	Args: cobra.ExactArgs(1),
	RunE: runRetire,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show archived runs and recurring failures",
	RunE:  runHistory,
}

func init() {
	runCmd.Flags().StringSliceVar(&runSuites, "suite", nil,
		fmt.Sprintf("suites to run (default all: %v)", suites.Names()))
	runCmd.Flags().BoolVar(&skipHistory, "no-history", false, "do not archive this run")

	retireCmd.Flags().StringVar(&retireKind, "kind", string(lifecycle.KindImage),
		"content kind (image, file, imageTag, fileTag, page, user, global)")
	retireCmd.Flags().StringVar(&retireDocID, "doc-id", "",
		"stable document id, when known from a prior read")

	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "number of runs to show")
}

// buildClient constructs the API client from environment configuration.
func buildClient(cfg *config.Config) *aposclient.Client {
	opts := []aposclient.Option{
		aposclient.WithTimeout(cfg.RequestTimeout),
		aposclient.WithLogger(newLogger(cfg.LogLevel)),
	}
	if cfg.APIKey != "" {
		opts = append(opts, aposclient.WithAPIKey(cfg.APIKey))
	}
	return aposclient.New(cfg.BaseURL, opts...)
}

func runRun(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := newLogger(cfg.LogLevel)

	client := buildClient(cfg)
	ctx := cmd.Context()
	if cfg.APIKey == "" {
		if err := client.Login(ctx, cfg.Username, cfg.Password); err != nil {
			return err
		}
	}

	selected, err := suites.Select(runSuites, suites.Params{
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return err
	}

	runner := check.NewRunner(client,
		check.WithLogger(log),
		check.WithPace(cfg.PaceInterval),
	)
	report, err := runner.Run(ctx, selected...)
	if err != nil {
		return err
	}

	if !skipHistory {
		store, err := history.Open(cfg.HistoryPath)
		if err != nil {
			return err
		}
		defer store.Close()
		runID, err := store.RecordRun(ctx, cfg.BaseURL, report)
		if err != nil {
			return err
		}
		log.Info("run archived", "run_id", runID, "db", store.Path())
	}

	for _, ref := range report.Leftovers {
		fmt.Fprintf(os.Stderr, "manual cleanup needed: %s %s\n", ref.Kind, ref.RawID)
	}
	if !report.Ok() {
		return fmt.Errorf("%d check(s) failed, %d item(s) left behind",
			report.Failed(), len(report.Leftovers))
	}
	return nil
}

func runRetire(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	client := buildClient(cfg)
	ctx := cmd.Context()
	if cfg.APIKey == "" {
		if err := client.Login(ctx, cfg.Username, cfg.Password); err != nil {
			return err
		}
	}

	ref := lifecycle.ContentRef{
		RawID: args[0],
		DocID: retireDocID,
		Kind:  lifecycle.Kind(retireKind),
	}
	res, err := client.Retire(ctx, ref)
	if err != nil {
		return err
	}

	switch res.Outcome {
	case lifecycle.OutcomeDeleted:
		fmt.Printf("deleted %s %s\n", ref.Kind, ref.RawID)
	case lifecycle.OutcomeAlreadyAbsent:
		fmt.Printf("%s %s was already gone\n", ref.Kind, ref.RawID)
	case lifecycle.OutcomeFailed:
		for _, reason := range res.Reasons() {
			fmt.Fprintln(os.Stderr, " -", reason)
		}
		return res.AsError(ref)
	}
	return nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	store, err := history.Open(cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	runs, err := store.RecentRuns(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no archived runs")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tTARGET\tPASSED\tFAILED\tLEFTOVERS")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n",
			r.Started.Local().Format("2006-01-02 15:04:05"),
			r.BaseURL, r.Passed, r.Failed, r.Leftovers)
	}
	w.Flush()

	failures, err := store.FailuresBySuite(ctx)
	if err != nil {
		return err
	}
	if len(failures) > 0 {
		fmt.Println("\nfailures by suite:")
		for suite, n := range failures {
			fmt.Printf("  %s: %d\n", suite, n)
		}
	}
	return nil
}
