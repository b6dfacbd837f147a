package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	typegraph "github.com/typegraph/typegraph"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <file.yaml>",
		Short: "Generate every declared type and report problems",
		Long: `Check parses a declaration file and runs schema generation for every
declared type. Unparameterized declarations are generated directly;
templates are only exercised where the file instantiates them. The exit
status is nonzero when any type fails to generate or leaves references
unresolved.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := loadFile(args[0])
			if err != nil {
				return err
			}
			res := typegraph.NewResolver(file.Scope)
			warns := &typegraph.Warnings{}
			failed := 0
			for _, name := range file.Order {
				d := file.Types[name]
				if t, ok := d.(*typegraph.Template); ok && len(t.Params) > 0 {
					continue
				}
				_, err := typegraph.Generate(d, res, typegraph.GenerateOpt{Warnings: warns})
				if err == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "ok   %s\n", name)
					continue
				}
				failed++
				var inc *typegraph.IncompleteError
				if errors.As(err, &inc) {
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: unresolved references %v\n", name, inc.Missing)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", name, err)
			}
			printWarnings(warns.Collected)
			if failed > 0 {
				return fmt.Errorf("%d of %d types failed", failed, len(file.Order))
			}
			return nil
		},
	}
	return cmd
}
