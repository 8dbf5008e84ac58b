package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/vegifarm-storefront/internal/config"
	"github.com/fairyhunter13/vegifarm-storefront/internal/i18n"
	"github.com/fairyhunter13/vegifarm-storefront/internal/kv"
	"github.com/fairyhunter13/vegifarm-storefront/internal/obs"
	"github.com/fairyhunter13/vegifarm-storefront/internal/quality"
)

var (
	saveReport bool
	reportBy   string
	failOnErr  bool
)

var checkTranslationsCmd = &cobra.Command{
	Use:   "check-translations",
	Short: "Check every locale bundle against the Japanese reference",
	Long: `Reports missing, empty, placeholder-mismatched and untranslated keys.
With --save the report is stored in the feedback backend.`,
	Args: cobra.NoArgs,
	RunE: runCheckTranslations,
}

func init() {
	checkTranslationsCmd.Flags().BoolVar(&saveReport, "save", false, "Store the report in the feedback backend")
	checkTranslationsCmd.Flags().StringVar(&reportBy, "created-by", "cli", "Author recorded on a saved report")
	checkTranslationsCmd.Flags().BoolVar(&failOnErr, "strict", false, "Exit non-zero when error issues are found")
}

func runCheckTranslations(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	obs.InitLogger(cfg.LogLevel, cfg.LogFormat)
	ctx := cmd.Context()

	res, err := quality.Run(ctx, i18n.NewFSLoader(cfg.BundleDir))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, is := range res.Issues {
		fmt.Fprintf(out, "%-7s %-3s %-32s %s\n", is.Severity, is.Locale, is.Key, is.Message)
	}
	errs := res.Count(quality.SeverityError)
	fmt.Fprintf(out, "issues=%d errors=%d warnings=%d info=%d\n",
		len(res.Issues), errs, res.Count(quality.SeverityWarning), res.Count(quality.SeverityInfo))

	if saveReport {
		svc := newFeedbackService(ctx, cfg, kv.NewMemory())
		defer func() { _ = svc.Close() }()
		rep := svc.CreateReport(ctx, res.Report(reportBy))
		if rep == nil {
			return fmt.Errorf("report not saved")
		}
		fmt.Fprintf(out, "saved report %s\n", rep.ID)
	}
	if failOnErr && errs > 0 {
		return fmt.Errorf("%d translation errors", errs)
	}
	return nil
}
