package main

import (
	"fmt"

	"github.com/joshuapare/rtlkit/rtl/signature"
	"github.com/spf13/cobra"
)

var (
	hashAlgo string
	hashCI   bool
)

func init() {
	cmd := newHashCmd()
	cmd.Flags().StringVar(&hashAlgo, "algo", "fnv", "Signature: fnv, fnv-fold, unicode, x65599, x31, registry")
	cmd.Flags().BoolVar(&hashCI, "ci", false, "Case-insensitive (x65599 and x31 only)")
	rootCmd.AddCommand(cmd)
}

func newHashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash <name>...",
		Short: "Compute hash table signatures for names",
		Long: `The hash command prints the signature each name would carry in a
dynamic hash table.

Example:
  rtlctl hash Software System
  rtlctl hash --algo x65599 --ci '\Device\HarddiskVolume1'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHash(args)
		},
	}
	return cmd
}

func signatureOf(name string) (uint64, error) {
	switch hashAlgo {
	case "fnv":
		return signature.FNV1a64([]byte(name)), nil
	case "fnv-fold":
		return signature.FNV1a64Fold(name), nil
	case "unicode":
		return signature.FNV1a64Unicode(name), nil
	case "x65599":
		return uint64(signature.X65599(name, hashCI)), nil
	case "x31":
		return uint64(signature.X31(name, hashCI)), nil
	case "registry":
		return uint64(signature.Registry(name)), nil
	default:
		return 0, fmt.Errorf("unknown algorithm %q", hashAlgo)
	}
}

func runHash(args []string) error {
	type result struct {
		Name      string `json:"name"`
		Signature uint64 `json:"signature"`
	}
	results := make([]result, 0, len(args))
	for _, name := range args {
		sig, err := signatureOf(name)
		if err != nil {
			return err
		}
		results = append(results, result{Name: name, Signature: sig})
	}

	if jsonOut {
		return printJSON(map[string]any{
			"algo":    hashAlgo,
			"results": results,
		})
	}
	for _, r := range results {
		printInfo("%#016x  %s\n", r.Signature, r.Name)
	}
	return nil
}
