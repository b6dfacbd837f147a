// Package typegraph compiles declarative type descriptors into two derived
// artifacts:
//
//   - a core schema node tree (coreschema.Node), the tagged intermediate
//     representation handed to the native validation engine
//   - a JSON Schema document (jsonschema.Compiler) for external tooling
//
// The compiler handles self-referential and mutually recursive type graphs,
// generic templates instantiated with different concrete arguments, forward
// references resolved against ordered lexical scopes, and ordered
// customization hooks that can wrap or replace generated schema at any node.
//
// Design policy:
//   - Keep the descriptor model and compile entry points in the root package;
//     supporting detail lives under internal/.
//   - Place descriptor builders under dsl/, the IR under coreschema/, the JSON
//     Schema compiler under jsonschema/, YAML ingestion under descyaml/, and
//     the CLI under cmd/typegraph.
//   - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	node, err := typegraph.Generate(desc, typegraph.NewResolver(scope), typegraph.GenerateOpt{})
//	doc, err := jsonschema.NewCompiler().Generate(node, jsonschema.ModeValidation)
package typegraph
