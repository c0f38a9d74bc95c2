package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pasenov/coverage/pkg/data"
	"github.com/pasenov/coverage/pkg/report"
)

var (
	perModel     bool
	normName     string
	formatName   string
	modelsFilter []string
)

var reportCmd = &cobra.Command{
	Use:   "report FOLDER...",
	Short: "Occupancy per million events of prepared dataset folders",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runReport,
}

var coverageCmd = &cobra.Command{
	Use:   "coverage FILE",
	Short: "Occupancy per million events straight from a ROOT or CSV file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCoverage,
}

func init() {
	reportCmd.Flags().BoolVar(&perModel, "per-model", false, "each FOLDER holds one subfolder per model")
	reportCmd.Flags().StringVar(&normName, "norm", string(report.NormRows), "event count to scale to: rows or ledger")
	reportCmd.Flags().StringSliceVar(&modelsFilter, "models", nil, "restrict the report to these models")
	for _, c := range []*cobra.Command{reportCmd, coverageCmd} {
		c.Flags().StringVar(&formatName, "format", string(report.TSV), "output format: tsv, csv or text")
	}
	coverageCmd.Flags().StringSliceVar(&modelsFilter, "models", nil, "restrict the report to these models")
}

func runReport(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}
	norm, err := report.ParseNorm(normName)
	if err != nil {
		return err
	}
	r := &report.Reporter{PerModel: perModel, Norm: norm, Models: modelsFilter, Log: log}
	t, err := r.Run(cmd.Context(), args)
	if err != nil {
		return err
	}
	return t.Write(os.Stdout, format)
}

func runCoverage(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}
	src, err := data.Open(args[0])
	if err != nil {
		return err
	}
	defer src.Close()
	t, err := report.Coverage(cmd.Context(), src, modelsFilter, data.DefaultBatchSize, log)
	if err != nil {
		return err
	}
	return t.Write(os.Stdout, format)
}
