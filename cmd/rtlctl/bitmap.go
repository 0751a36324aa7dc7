package main

import (
	"fmt"

	"github.com/joshuapare/rtlkit/rtl/bitmap"
	"github.com/spf13/cobra"
)

var (
	bitmapSize   int
	bitmapWord   int
	bitmapClaims []int
	bitmapSet    []string
)

func init() {
	cmd := newBitmapCmd()
	cmd.Flags().IntVar(&bitmapSize, "size", 256, "Number of bits")
	cmd.Flags().IntVar(&bitmapWord, "word", 64, "Word width in bits (32 or 64)")
	cmd.Flags().IntSliceVar(&bitmapClaims, "claim", nil, "Claim a clear run of this length (repeatable)")
	cmd.Flags().StringSliceVar(&bitmapSet, "set", nil, "Set a range before claiming, as start:length")
	rootCmd.AddCommand(cmd)
}

func newBitmapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bitmap",
		Short: "Claim runs of clear bits from a bitmap",
		Long: `The bitmap command creates a bitmap, optionally marks ranges as set,
then claims clear runs first-fit and reports the resulting layout.

Example:
  rtlctl bitmap --size 128 --claim 8 --claim 16
  rtlctl bitmap --size 64 --word 32 --set 0:10 --claim 4 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if bitmapWord == 32 {
				return runBitmap[uint32]()
			}
			if bitmapWord != 64 {
				return fmt.Errorf("unsupported word width %d", bitmapWord)
			}
			return runBitmap[uint64]()
		},
	}
	return cmd
}

type claimResult struct {
	Length int  `json:"length"`
	Start  int  `json:"start"`
	OK     bool `json:"ok"`
}

func runBitmap[W bitmap.Word]() error {
	b, err := bitmap.New[W](bitmapSize)
	if err != nil {
		return fmt.Errorf("failed to create bitmap: %w", err)
	}
	for _, r := range bitmapSet {
		var start, n int
		if _, err := fmt.Sscanf(r, "%d:%d", &start, &n); err != nil {
			return fmt.Errorf("bad range %q: %w", r, err)
		}
		if err := b.SetRange(start, n); err != nil {
			return fmt.Errorf("set %q: %w", r, err)
		}
		printVerbose("Set %d bits at %d\n", n, start)
	}

	claims := make([]claimResult, 0, len(bitmapClaims))
	for _, n := range bitmapClaims {
		start, ok := b.FindAndSetRun(n)
		claims = append(claims, claimResult{Length: n, Start: start, OK: ok})
	}
	longest := b.LongestClearRun()

	if jsonOut {
		return printJSON(map[string]any{
			"size":          bitmapSize,
			"word":          bitmapWord,
			"claims":        claims,
			"set":           b.NumberOfSet(),
			"longest_clear": longest,
		})
	}

	for _, c := range claims {
		if c.OK {
			printInfo("claim %d -> %d\n", c.Length, c.Start)
		} else {
			printInfo("claim %d -> none\n", c.Length)
		}
	}
	printInfo("set %d of %d, longest clear run %d@%d\n",
		b.NumberOfSet(), bitmapSize, longest.Length, longest.Start)
	return nil
}
