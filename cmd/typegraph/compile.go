package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	typegraph "github.com/typegraph/typegraph"
	"github.com/typegraph/typegraph/coreschema"
	"github.com/typegraph/typegraph/jsonschema"
)

func newCompileCmd() *cobra.Command {
	var (
		typeName string
		mode     string
		format   string
		strict   bool
		extra    string
		out      string
	)
	cmd := &cobra.Command{
		Use:   "compile <file.yaml>",
		Short: "Compile one declared type into a schema document",
		Example: `  # Emit the validation JSON Schema of app.models.Node
  typegraph compile types.yaml --type app.models.Node

  # Serialization schema, unknown keys rejected
  typegraph compile types.yaml --type Node --mode serialization --extra forbid

  # Core schema wire form for the native engine
  typegraph compile types.yaml --type Node --format wire`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := loadFile(args[0])
			if err != nil {
				return err
			}
			root, ok := file.Lookup(typeName)
			if !ok {
				return fmt.Errorf("type %q not declared in %s", typeName, args[0])
			}
			extraPol, err := extraFromFlag(extra)
			if err != nil {
				return err
			}

			warns := &typegraph.Warnings{}
			node, err := typegraph.Generate(root, typegraph.NewResolver(file.Scope), typegraph.GenerateOpt{
				Strict:   strict,
				Extra:    extraPol,
				Warnings: warns,
			})
			if err != nil {
				var inc *typegraph.IncompleteError
				if errors.As(err, &inc) {
					return fmt.Errorf("unresolved references: %v", inc.Missing)
				}
				return err
			}

			var data []byte
			switch format {
			case "jsonschema":
				m := jsonschema.Mode(mode)
				if m != jsonschema.ModeValidation && m != jsonschema.ModeSerialization {
					return fmt.Errorf("unknown mode %q (want validation or serialization)", mode)
				}
				doc, err := jsonschema.Compile(node, m, jsonschema.WithWarningPolicy(warns))
				if err != nil {
					return err
				}
				data, err = doc.JSON()
				if err != nil {
					return err
				}
			case "wire":
				data, err = json.Marshal(node.Wire())
				if err != nil {
					return err
				}
			case "canonical":
				data, err = coreschema.Canonical(node)
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown format %q (want jsonschema, wire, or canonical)", format)
			}
			printWarnings(warns.Collected)

			data = append(data, '\n')
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			return os.WriteFile(out, data, 0o644)
		},
	}
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "qualified or short name of the root type (required)")
	cmd.Flags().StringVar(&mode, "mode", string(jsonschema.ModeValidation), "schema mode: validation or serialization")
	cmd.Flags().StringVar(&format, "format", "jsonschema", "output format: jsonschema, wire, or canonical")
	cmd.Flags().BoolVar(&strict, "strict", false, "ambient strict policy")
	cmd.Flags().StringVar(&extra, "extra", "ignore", "ambient extra-key policy: ignore, forbid, or allow")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file (default stdout)")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}
