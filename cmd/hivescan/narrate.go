package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/forensicFODs/registry-analysis-tools/pkg/narrative"
)

func newNarrateCmd() *cobra.Command {
	var promptOnly bool
	cmd := &cobra.Command{
		Use:   "narrate <hive>",
		Short: "Ask a language model for an investigative summary of one hive",
		Long: `The narrate command scans a hive, sends its findings and a sample of its
strings to the configured model (ai.provider / ai.model in the config file, or
HIVESCAN_AI_* variables) and prints the summary, suspicious activity, timeline
and recommendations it returns.

Example:
  HIVESCAN_AI_PROVIDER=anthropic HIVESCAN_AI_MODEL=claude-sonnet-4-5 \
    HIVESCAN_AI_API_KEY=... hivescan narrate NTUSER.DAT
  hivescan narrate SYSTEM --prompt-only`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNarrate(cmd.Context(), args[0], promptOnly)
		},
	}
	cmd.Flags().BoolVar(&promptOnly, "prompt-only", false, "Print the prompt instead of sending it")
	return cmd
}

func runNarrate(ctx context.Context, arg string, promptOnly bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	engine, err := loadEngine([]string{arg})
	if err != nil {
		return err
	}
	defer engine.Close()

	typ := engine.Hives()[0]
	findings, err := engine.Findings(typ)
	if err != nil {
		return err
	}
	strs, err := engine.Strings(typ, cfg.Scan.StringMinLen, cfg.AI.MaxStrings)
	if err != nil {
		return err
	}
	in := narrative.Input{
		HiveType: typ,
		Strings:  strs,
		Findings: findings.Ordered(),
		Language: cfg.AI.Language,
	}

	if promptOnly {
		prompt, err := narrative.BuildPrompt(in)
		if err != nil {
			return err
		}
		printInfo("%s\n", prompt)
		return nil
	}

	var provider narrative.Provider
	if cfg.AI.Provider != "" {
		fp, err := narrative.NewFantasyProvider(ctx, cfg.AI)
		if err != nil {
			return err
		}
		provider = fp
		printVerbose("Using %s model %s\n", fp.Name(), cfg.AI.Model)
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(cfg.AI.TimeoutSeconds)*time.Second)
	defer cancel()
	n := narrative.Analyze(ctx, provider, in)

	if jsonOut {
		if err := printJSON(n); err != nil {
			return err
		}
	} else {
		printNarrative(n)
	}
	if n.Error != "" {
		return errors.New(n.Error)
	}
	return nil
}

func printNarrative(n narrative.Narrative) {
	if n.Summary != "" {
		printInfo("Summary\n  %s\n", n.Summary)
	}
	if len(n.SuspiciousActivities) > 0 {
		printInfo("\nSuspicious activity\n")
		for _, s := range n.SuspiciousActivities {
			printInfo("  - %s\n", s)
		}
	}
	if len(n.Timeline) > 0 {
		printInfo("\nTimeline\n")
		for _, ev := range n.Timeline {
			printInfo("  %-19s  %s\n", ev.Timestamp, ev.Event)
		}
	}
	if len(n.Recommendations) > 0 {
		printInfo("\nRecommendations\n")
		for _, r := range n.Recommendations {
			printInfo("  - %s\n", r)
		}
	}
}
