package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pasenov/coverage/pkg/core"
	"github.com/pasenov/coverage/pkg/dataset"
	"github.com/pasenov/coverage/pkg/pipeline"
	"github.com/pasenov/coverage/pkg/stats"
)

var (
	previewRows int
	exportPath  string
	normalized  bool
)

var describeCmd = &cobra.Command{
	Use:   "describe FOLDER",
	Short: "Summarize a prepared dataset folder and preview its rows",
	Args:  cobra.ExactArgs(1),
	RunE:  runDescribe,
}

func init() {
	describeCmd.Flags().IntVar(&previewRows, "preview", 5, "rows to preview in the console")
	describeCmd.Flags().StringVar(&exportPath, "export", "", "write the rows to this CSV file instead of previewing them")
	describeCmd.Flags().BoolVar(&normalized, "normalized", false, "show network-space values from the persisted transforms")
}

func runDescribe(cmd *cobra.Command, args []string) error {
	ds, err := dataset.Open(args[0])
	if err != nil {
		return err
	}
	m := ds.Data
	if normalized {
		p, err := pipeline.FromConfig(ds.Config)
		if err != nil {
			return err
		}
		if m, err = p.Processors().TrainPhy2NN(m); err != nil {
			return err
		}
	}
	log.Info("loaded dataset", zap.String("name", ds.Config.Name), zap.String("type", ds.Config.Type),
		zap.Int("rows", m.R), zap.Int("columns", m.C))

	if exportPath != "" {
		f, err := os.Create(exportPath)
		if err != nil {
			return err
		}
		if err := dataset.WriteCSV(f, ds.Config, m, 0); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.Info("rows exported", zap.String("path", exportPath))
		return nil
	}

	header := ds.Config.Header()
	summarize(cmd.OutOrStdout(), header, m)
	fmt.Println("\nPreview:")
	preview(header, m, previewRows)
	return nil
}

// summarize prints one stats.Describe line per column.
func summarize(w io.Writer, headers []string, m *core.Matrix) {
	fmt.Fprintf(w, "%-36s%-10s%-10s%-15s%-15s%-15s%-15s%-15s\n", "Feature", "Rows", "Missing", "Mean", "Std", "Min", "Median", "Max")
	for j, name := range headers {
		s := stats.Describe(m.Col(j))
		fmt.Fprintf(w, "%-36s%-10d%-10d%-15.6g%-15.6g%-15.6g%-15.6g%-15.6g\n",
			name, s.Count, s.Missing, s.Mean, s.Std, s.Min, s.Median, s.Max)
	}
}

// preview prints the first n rows under their headers.
func preview(headers []string, m *core.Matrix, n int) {
	n = min(n, m.R)
	for _, h := range headers {
		fmt.Printf("%-15.14s", h)
	}
	fmt.Println()
	for i := 0; i < n; i++ {
		for _, v := range m.Row(i) {
			fmt.Printf("%-15.6f", v)
		}
		fmt.Println()
	}
}
