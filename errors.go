package typegraph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/typegraph/typegraph/i18n"
)

// Configuration error codes (exported consts for IDE completion and stable
// matching by callers).
const (
	CodeDiscriminatorMissing       = "discriminator_missing"
	CodeDiscriminatorNotLiteral    = "discriminator_not_literal"
	CodeDiscriminatorAliasMismatch = "discriminator_alias_mismatch"
	CodeDiscriminatorNotRecord     = "discriminator_not_record"
	CodeDiscriminatorAmbiguous     = "discriminator_ambiguous"
	CodeDuplicateField             = "duplicate_field"
	CodeTemplateArity              = "template_arity"
	CodeUnboundTypeVar             = "unbound_type_var"
	CodeUnknownDescriptor          = "unknown_descriptor"
)

// ConfigError reports a defect in the type graph itself (not in instance
// data). It is raised at generation time and is not recoverable.
type ConfigError struct {
	Code    string
	Path    string // dotted location inside the graph, e.g. "app.Event.payload"
	Message string
}

func (e *ConfigError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = i18n.T(e.Code, nil)
	}
	if e.Path == "" {
		return fmt.Sprintf("typegraph: %s: %s", e.Code, msg)
	}
	return fmt.Sprintf("typegraph: %s at %s: %s", e.Code, e.Path, msg)
}

// IncompleteError reports that one or more forward references could not be
// resolved yet. It is recoverable: the generated tree is still returned with
// placeholder nodes, and the caller may retry via Rebuild once the missing
// names become resolvable.
type IncompleteError struct {
	Missing []string
}

func (e *IncompleteError) Error() string {
	names := append([]string(nil), e.Missing...)
	sort.Strings(names)
	return "typegraph: schema incomplete, unresolved references: " + strings.Join(names, ", ")
}

// addMissing records a name once, keeping the list small and stable.
func (e *IncompleteError) addMissing(name string) {
	for _, m := range e.Missing {
		if m == name {
			return
		}
	}
	e.Missing = append(e.Missing, name)
}
