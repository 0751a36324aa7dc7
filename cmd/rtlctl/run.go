package main

import (
	"fmt"

	"github.com/joshuapare/rtlkit/pkg/scenario"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newRunCmd())
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run a YAML scenario against the containers",
		Long: `The run command loads a scenario file and drives each section it
declares (table, hash, bitmap, prefix), then prints a report.

Example:
  rtlctl run workload.yaml
  rtlctl run workload.yaml --json
  rtlctl run workload.yaml --log-level debug`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(args)
		},
	}
	return cmd
}

func runScenario(args []string) error {
	path := args[0]
	printVerbose("Loading scenario: %s\n", path)

	s, err := scenario.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}
	rep, err := scenario.Run(s)
	if err != nil {
		return fmt.Errorf("scenario %q failed: %w", s.Name, err)
	}

	if jsonOut {
		return printJSON(rep)
	}

	printInfo("Scenario: %s\n", rep.Name)
	if t := rep.Table; t != nil {
		printInfo("\nTable (%s):\n", t.Kind)
		printInfo("  inserted %d, duplicates %d, deleted %d, missing %d\n",
			t.Inserted, t.Duplicates, t.Deleted, t.Missing)
		printInfo("  len %d, first %d, last %d\n", t.Len, t.First, t.Last)
		if len(t.Nth) > 0 {
			printInfo("  nth %v\n", t.Nth)
		}
	}
	if h := rep.Hash; h != nil {
		printInfo("\nHash:\n")
		printInfo("  inserted %d, removed %d, found %d, missing %d\n",
			h.Inserted, h.Removed, h.Found, h.Missing)
		if h.Enumerated > 0 {
			printInfo("  enumerated %d\n", h.Enumerated)
		}
		printInfo("  size %d (shift %d, pivot %d), longest chain %d\n",
			h.Stats.TableSize, h.Stats.Shift, h.Stats.Pivot, h.Stats.LongestChain)
	}
	if b := rep.Bitmap; b != nil {
		printInfo("\nBitmap (%d bits, %d-bit words):\n", b.Size, b.Word)
		for _, c := range b.Claims {
			if c.OK {
				printInfo("  claim %d -> %d\n", c.Length, c.Start)
			} else {
				printInfo("  claim %d -> none\n", c.Length)
			}
		}
		printInfo("  set %d, longest clear run %d@%d\n", b.Set, b.LongestClear.Length, b.LongestClear.Start)
	}
	if p := rep.Prefix; p != nil {
		printInfo("\nPrefix (%d entries, %d removed):\n", p.Entries, p.Removed)
		for _, m := range p.Matches {
			if m.Found {
				printInfo("  %s -> %s\n", m.Name, m.Prefix)
			} else {
				printInfo("  %s -> (none)\n", m.Name)
			}
		}
	}
	return nil
}
