package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"interview-screening-bot/internal/config"
	"interview-screening-bot/internal/storage"
)

var filterPrompt = promptui.Select{
	Label: "Which candidates?",
	Items: []string{string(storage.FilterAll), string(storage.FilterApproved), string(storage.FilterRejected)},
}

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Print or export completed interviews",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return results(cmd)
	},
}

func init() {
	rootCmd.AddCommand(resultsCmd)

	resultsCmd.Flags().StringP("filter", "f", "", "all, approved or rejected (asks interactively when omitted on a terminal)")
	resultsCmd.Flags().StringP("export", "e", "", "write the report to this file instead of stdout")
	resultsCmd.Flags().BoolP("summary", "s", false, "one line per candidate instead of every response")
}

func results(cmd *cobra.Command) error {
	ctx := cmd.Context()

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer log.Sync()

	cfg, err := config.LoadResults(viper.GetViper())
	if err != nil {
		return err
	}

	raw, _ := cmd.Flags().GetString("filter")
	if !cmd.Flags().Changed("filter") && stdinIsTerminal() {
		if _, raw, err = filterPrompt.Run(); err != nil {
			return err
		}
	}
	filter, err := storage.ParseFilter(raw)
	if err != nil {
		return err
	}

	store, err := storage.Open(ctx, storage.Options{
		Driver:      cfg.Storage.Driver,
		SQLitePath:  cfg.Storage.SQLitePath,
		DatabaseURL: cfg.Storage.DatabaseURL,
		ResultsDir:  cfg.Storage.ResultsDir,
	})
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	records, err := storage.LoadRecords(ctx, store, filter)
	if err != nil {
		return err
	}
	log.Debug("records loaded", zap.String("filter", string(filter)), zap.Int("count", len(records)))

	summary, _ := cmd.Flags().GetBool("summary")
	opts := storage.ReportOptions{Filter: filter, Generated: time.Now(), Detailed: !summary}

	export, _ := cmd.Flags().GetString("export")
	if export == "" {
		return storage.WriteReport(cmd.OutOrStdout(), records, opts)
	}
	if err := writeReportFile(export, records, opts); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d record(s) to %s\n", len(records), export)
	return nil
}

func writeReportFile(path string, records []storage.Record, opts storage.ReportOptions) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return storage.WriteReport(f, records, opts)
}

func stdinIsTerminal() bool {
	fi, err := os.Stdin.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
