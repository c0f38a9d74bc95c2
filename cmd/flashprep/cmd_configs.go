package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var configsCmd = &cobra.Command{
	Use:   "configs",
	Short: "List config sets and their dataset types",
	Args:  cobra.NoArgs,
	RunE:  runConfigs,
}

func runConfigs(cmd *cobra.Command, args []string) error {
	reg, err := loadRegistry()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SET\tDATASET\tTYPE\tCONDITIONING\tTARGET")
	for _, name := range reg.Sets() {
		set, err := reg.Set(name)
		if err != nil {
			return err
		}
		for _, d := range set.Names() {
			t := set.Datasets[d]
			cfg := t.NewConfig()
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", name, d, t.Type,
				len(cfg.ConditioningFeatures), strings.Join(cfg.TargetFeatures, ","))
		}
	}
	return w.Flush()
}
