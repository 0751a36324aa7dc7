package main

import (
	"fmt"
	"strconv"

	"github.com/joshuapare/rtlkit/rtl"
	"github.com/joshuapare/rtlkit/rtl/avl"
	"github.com/joshuapare/rtlkit/rtl/splay"
	"github.com/spf13/cobra"
)

var (
	tableKind   string
	tableDelete []int
)

func init() {
	cmd := newTableCmd()
	cmd.Flags().StringVar(&tableKind, "kind", "avl", "Table kind: avl or splay")
	cmd.Flags().IntSliceVarP(&tableDelete, "delete", "d", nil, "Key to delete after inserting (repeatable)")
	rootCmd.AddCommand(cmd)
}

func newTableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table <key>...",
		Short: "Insert integer keys into an ordered table and list them",
		Long: `The table command inserts keys into an AVL or splay table, deletes
any keys given with --delete, and prints the remaining keys in order.

Example:
  rtlctl table 5 3 9 1
  rtlctl table --kind splay 5 3 9 1 --delete 3 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTable(args)
		},
	}
	return cmd
}

func runTable(args []string) error {
	keys := make([]int, 0, len(args))
	for _, a := range args {
		k, err := strconv.Atoi(a)
		if err != nil {
			return fmt.Errorf("bad key %q: %w", a, err)
		}
		keys = append(keys, k)
	}

	var (
		insert func(int) bool
		remove func(int) bool
		all    func() []int
	)
	switch tableKind {
	case "avl":
		t := avl.New(rtl.Ordered[int])
		insert = func(k int) bool { _, ok := t.Insert(k); return ok }
		remove = t.Delete
		all = func() []int {
			var out []int
			for v := range t.All() {
				out = append(out, v)
			}
			return out
		}
	case "splay":
		t := splay.NewTable(rtl.Ordered[int], len(keys))
		insert = func(k int) bool { _, ok := t.Insert(k); return ok }
		remove = t.Delete
		all = func() []int {
			var out []int
			var c splay.Cursor[int]
			for v, ok := t.Next(&c); ok; v, ok = t.Next(&c) {
				out = append(out, v)
			}
			return out
		}
	default:
		return fmt.Errorf("unknown table kind %q", tableKind)
	}

	duplicates := 0
	for _, k := range keys {
		if !insert(k) {
			duplicates++
			printVerbose("Duplicate key ignored: %d\n", k)
		}
	}
	deleted := 0
	for _, k := range tableDelete {
		if remove(k) {
			deleted++
		}
	}
	ordered := all()

	if jsonOut {
		return printJSON(map[string]any{
			"kind":       tableKind,
			"keys":       ordered,
			"count":      len(ordered),
			"duplicates": duplicates,
			"deleted":    deleted,
		})
	}
	for _, k := range ordered {
		printInfo("%d\n", k)
	}
	printVerbose("%d keys (%d duplicates, %d deleted)\n", len(ordered), duplicates, deleted)
	return nil
}
