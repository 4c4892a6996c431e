package main

import (
	"fmt"

	"github.com/Velocidex/ordereddict"
	"github.com/spf13/cobra"

	"github.com/forensicFODs/registry-analysis-tools/hive"
	"github.com/forensicFODs/registry-analysis-tools/hive/artifact"
	"github.com/forensicFODs/registry-analysis-tools/hive/extract"
	"github.com/forensicFODs/registry-analysis-tools/internal/logger"
	"github.com/forensicFODs/registry-analysis-tools/pkg/types"
)

func newScanCmd() *cobra.Command {
	var (
		typeFlag string
		kinds    []string
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "scan <hive>",
		Short: "Extract artifacts from one hive",
		Long: `The scan command runs every artifact extractor that applies to the hive's
type and prints what it recovers.

Example:
  hivescan scan SYSTEM
  hivescan scan NTUSER.DAT --kind userassist,run_keys
  hivescan scan --type AMCACHE carved.bin --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(args[0], typeFlag, kinds, limit)
		},
	}
	cmd.Flags().StringVar(&typeFlag, "type", "", "Force the hive type instead of detecting it")
	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "Only extract these artifact kinds (e.g. shimcache,bam_dam)")
	cmd.Flags().IntVar(&limit, "limit", 10, "Records shown per kind in text output (0 = all)")
	return cmd
}

func parseKinds(names []string) ([]artifact.Kind, error) {
	if len(names) == 0 {
		return artifact.AllKinds, nil
	}
	kinds := make([]artifact.Kind, 0, len(names))
	for _, n := range names {
		k, ok := artifact.ParseKind(n)
		if !ok {
			return nil, fmt.Errorf("unknown artifact kind %q", n)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func runScan(arg, typeFlag string, kindNames []string, limit int) error {
	kinds, err := parseKinds(kindNames)
	if err != nil {
		return err
	}

	path, hint := parseHiveArg(arg)
	if typeFlag != "" {
		if hint = types.ParseHiveType(typeFlag); hint == types.HiveUnknown {
			return fmt.Errorf("unknown hive type %q", typeFlag)
		}
	}

	data, err := readHive(path)
	if err != nil {
		return err
	}
	buf := hive.New(data, baseName(path))
	typ := hint
	if typ == types.HiveUnknown {
		typ = buf.DetectType()
	}
	printVerbose("Scanning %s as %s (%d bytes)\n", path, typ, buf.Len())

	findings := extract.New(buf, typ, scanOptions()).Run(kinds...)
	logger.Info("hive scanned", "file", path, "type", typ.String(), "records", findings.Total())

	if jsonOut {
		return printJSON(ordereddict.NewDict().
			Set("file", path).
			Set("hiveType", typ).
			Set("findings", findings.Ordered()))
	}

	printInfo("%s: %s hive, %d records\n", path, typ, findings.Total())
	for _, k := range findings.NonEmptyKinds() {
		records := findings.Records(k)
		printInfo("\n%s (%d)\n", k.Label(), len(records))
		for i, r := range records {
			if limit > 0 && i == limit {
				printInfo("  ... %d more\n", len(records)-limit)
				break
			}
			if ts, _ := r.Stamp(); ts != "" {
				printInfo("  %s  %s\n", ts, r.Describe())
			} else {
				printInfo("  %s\n", r.Describe())
			}
		}
	}
	return nil
}
