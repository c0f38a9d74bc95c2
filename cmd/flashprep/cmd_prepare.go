package main

import (
	"github.com/spf13/cobra"

	"github.com/pasenov/coverage/pkg/data"
	"github.com/pasenov/coverage/pkg/prepare"
)

var (
	nanoVersion    string
	batchSize      int
	skipExtraction bool
	skipPlots      bool
	debugBatches   bool
)

var prepareCmd = &cobra.Command{
	Use:   "prepare FOLDER DATASET INPUT...",
	Short: "Extract inputs into a training dataset folder",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runPrepare,
}

func init() {
	prepareCmd.Flags().StringVar(&nanoVersion, "nanoversion", "nanoV9", "config set holding the dataset type")
	prepareCmd.Flags().IntVar(&batchSize, "batch-size", data.DefaultBatchSize, "events per batch")
	prepareCmd.Flags().BoolVar(&skipExtraction, "skip-extraction", false, "only recompute the transforms")
	prepareCmd.Flags().BoolVar(&skipPlots, "skip-plots", false, "do not render transformed_figures")
	prepareCmd.Flags().BoolVar(&debugBatches, "debug", false, "dump every batch to debug_data_<j>.csv")
}

func runPrepare(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	typ, err := reg.Lookup(nanoVersion, args[1])
	if err != nil {
		return err
	}
	_, err = prepare.Run(cmd.Context(), prepare.Options{
		Folder:         args[0],
		Type:           typ,
		Inputs:         args[2:],
		BatchSize:      batchSize,
		SkipExtraction: skipExtraction,
		SkipPlots:      skipPlots,
		Debug:          debugBatches,
		Log:            log,
	})
	return err
}
