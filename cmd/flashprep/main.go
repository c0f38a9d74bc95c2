package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pasenov/coverage/pkg/logging"
	"github.com/pasenov/coverage/pkg/registry"
)

//
// ---------------------- COMMANDS ----------------------
//
// prepare FOLDER DATASET INPUT...  : extract INPUT files into FOLDER as dataset type DATASET,
//                                    fit the processors and check the round trip
//   --nanoversion  : config set holding DATASET (default nanoV9)
//   --config-file  : extra YAML config sets, may be repeated
//   --batch-size   : events per batch (default 100000)
//   --skip-extraction, --skip-plots, --debug
//
// report FOLDER...                 : occupancy table of prepared folders
//   --per-model    : each FOLDER holds one subfolder per model
//   --norm         : rows | ledger
//   --format       : tsv | csv | text
//   --models       : restrict to these models
//
// coverage FILE                    : the same table straight from a ROOT or CSV file
// describe FOLDER                  : per-feature summary and a preview of the rows
//   --preview      : rows to print (default 5)
//   --export       : write every row to a CSV file instead
//   --normalized   : apply the persisted transforms first
// configs                          : list config sets and their dataset types
//
// Example:
//   flashprep prepare out/muons muons a.root b.root --nanoversion nanoV12
//   flashprep report --per-model --format text out
//
// ------------------------------------------------------
//

var (
	logLevel    string
	configFiles []string
	log         *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:           "flashprep",
	Short:         "Prepare FlashSim training datasets and report their coverage",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := logging.New(logLevel)
		if err != nil {
			return err
		}
		log = l
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "loglevel", "INFO", "logging level")
	rootCmd.PersistentFlags().StringArrayVar(&configFiles, "config-file", nil,
		"YAML file with extra config sets (repeatable)")
	rootCmd.AddCommand(prepareCmd, reportCmd, coverageCmd, describeCmd, configsCmd)
}

// loadRegistry resolves the built-in sets plus any --config-file, once per command.
func loadRegistry() (*registry.Registry, error) {
	reg, err := registry.Builtin()
	if err != nil {
		return nil, err
	}
	for _, f := range configFiles {
		if err := reg.LoadFile(f); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if log == nil {
			log, _ = logging.New("info")
		}
		log.Error("flashprep failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	if log != nil {
		_ = log.Sync()
	}
}
