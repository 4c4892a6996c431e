package main

import (
	"github.com/spf13/cobra"

	"github.com/forensicFODs/registry-analysis-tools/hive"
)

func newStringsCmd() *cobra.Command {
	var minLen, maxCount int
	cmd := &cobra.Command{
		Use:   "strings <hive>",
		Short: "List distinct printable strings from the head of a hive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("min") {
				minLen = cfg.Scan.StringMinLen
			}
			if !cmd.Flags().Changed("max") {
				maxCount = cfg.Scan.StringMax
			}
			return runStrings(args[0], minLen, maxCount)
		},
	}
	cmd.Flags().IntVar(&minLen, "min", 4, "Minimum string length")
	cmd.Flags().IntVar(&maxCount, "max", 100, "Maximum number of strings")
	return cmd
}

func runStrings(arg string, minLen, maxCount int) error {
	path, _ := parseHiveArg(arg)
	data, err := readHive(path)
	if err != nil {
		return err
	}
	strs := hive.New(data, baseName(path)).ExtractStrings(minLen, maxCount)

	if jsonOut {
		return printJSON(strs)
	}
	for _, s := range strs {
		printInfo("%s\n", s)
	}
	return nil
}
