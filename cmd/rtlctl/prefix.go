package main

import (
	"github.com/joshuapare/rtlkit/rtl/prefix"
	"github.com/spf13/cobra"
)

var (
	prefixAdd []string
	prefixCI  bool
)

func init() {
	cmd := newPrefixCmd()
	cmd.Flags().StringSliceVarP(&prefixAdd, "add", "a", nil, "Prefix to register (repeatable)")
	cmd.Flags().BoolVar(&prefixCI, "ci", false, "Match case-insensitively")
	rootCmd.AddCommand(cmd)
}

func newPrefixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefix <name>...",
		Short: "Find the longest registered prefix of each name",
		Long: `The prefix command registers a set of prefixes and reports, for each
name, the longest prefix that matches it.

Example:
  rtlctl prefix --add '\Device' --add '\Device\Harddisk0' '\Device\Harddisk0\Partition1'
  rtlctl prefix --add ab --add abc --ci ABCD --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrefix(args)
		},
	}
	return cmd
}

func runPrefix(args []string) error {
	tbl := prefix.New[string]()
	for _, p := range prefixAdd {
		if !tbl.Insert(p, &prefix.Entry[string]{Value: p}) {
			printVerbose("Duplicate prefix ignored: %s\n", p)
		}
	}

	type match struct {
		Name   string `json:"name"`
		Prefix string `json:"prefix,omitempty"`
		Found  bool   `json:"found"`
	}
	matches := make([]match, 0, len(args))
	for _, name := range args {
		m := match{Name: name}
		if e, ok := tbl.FindLongestPrefix(name, prefixCI); ok {
			m.Prefix, m.Found = e.Value, true
		}
		matches = append(matches, m)
	}

	if jsonOut {
		return printJSON(map[string]any{
			"prefixes": tbl.Len(),
			"matches":  matches,
		})
	}
	for _, m := range matches {
		if m.Found {
			printInfo("%s -> %s\n", m.Name, m.Prefix)
		} else {
			printInfo("%s -> (none)\n", m.Name)
		}
	}
	return nil
}
