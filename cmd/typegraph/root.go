package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	typegraph "github.com/typegraph/typegraph"
	"github.com/typegraph/typegraph/coreschema"
	"github.com/typegraph/typegraph/descyaml"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "typegraph",
		Short:         "Compile type declarations to JSON Schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newCompileCmd())
	cmd.AddCommand(newCheckCmd())
	return cmd
}

// loadFile reads and parses one declaration file.
func loadFile(path string) (*descyaml.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return descyaml.Load(data)
}

func extraFromFlag(s string) (coreschema.ExtraPolicy, error) {
	switch s {
	case "ignore":
		return coreschema.ExtraIgnore, nil
	case "forbid":
		return coreschema.ExtraForbid, nil
	case "allow":
		return coreschema.ExtraAllow, nil
	default:
		return 0, fmt.Errorf("unknown extra policy %q (want ignore, forbid, or allow)", s)
	}
}

func printWarnings(ws []typegraph.Warning) {
	for _, w := range ws {
		if w.Path != "" {
			fmt.Fprintf(os.Stderr, "warning: %s: %s (%s)\n", w.Path, w.Message, w.Category)
			continue
		}
		fmt.Fprintf(os.Stderr, "warning: %s (%s)\n", w.Message, w.Category)
	}
}
