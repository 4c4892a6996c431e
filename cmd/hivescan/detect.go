package main

import (
	"github.com/spf13/cobra"

	"github.com/forensicFODs/registry-analysis-tools/hive"
	"github.com/forensicFODs/registry-analysis-tools/pkg/types"
)

type detectResult struct {
	File     string         `json:"file"`
	HiveType types.HiveType `json:"hiveType"`
	Size     int            `json:"size"`
	Regf     bool           `json:"regf"`
}

func newDetectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detect <hive>...",
		Short: "Classify hive files by type",
		Long: `The detect command reports which registry hive each file holds. The
file name is trusted first; otherwise the content is scored against known
key names of each hive.

Example:
  hivescan detect SYSTEM NTUSER.DAT unknown.bin
  hivescan detect *.hve --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(args)
		},
	}
}

func runDetect(args []string) error {
	results := make([]detectResult, 0, len(args))
	for _, arg := range args {
		path, hint := parseHiveArg(arg)
		data, err := readHive(path)
		if err != nil {
			return err
		}
		buf := hive.New(data, baseName(path))
		typ := hint
		if typ == types.HiveUnknown {
			typ = buf.DetectType()
		}
		results = append(results, detectResult{
			File:     path,
			HiveType: typ,
			Size:     buf.Len(),
			Regf:     buf.IsRegf(),
		})
	}

	if jsonOut {
		return printJSON(results)
	}
	for _, r := range results {
		mark := ""
		if !r.Regf {
			mark = "  (no regf header)"
		}
		printInfo("%-9s %s%s\n", r.HiveType, r.File, mark)
	}
	return nil
}
