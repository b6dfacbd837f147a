package typegraph

import "github.com/typegraph/typegraph/coreschema"

// GenerateOpt bundles ambient generation policy. Record-level policy
// overrides are layered on top of it through a frame stack, pushed when the
// engine enters a record and popped on exit, so a nested record can tighten
// or relax policy without leaking the change to its siblings.
type GenerateOpt struct {
	Strict   bool
	Extra    coreschema.ExtraPolicy
	Warnings WarningPolicy
}

// frame is one entry of the configuration stack.
type frame struct {
	strict bool
	extra  coreschema.ExtraPolicy
}

func (o GenerateOpt) rootFrame() frame {
	return frame{strict: o.Strict, extra: o.Extra}
}

func (f frame) apply(p *RecordPolicy) frame {
	if p == nil {
		return f
	}
	out := f
	if p.Strict != nil {
		out.strict = *p.Strict
	}
	if p.Extra != nil {
		out.extra = *p.Extra
	}
	return out
}

// WarningCategory classifies non-fatal findings.
type WarningCategory string

const (
	WarnUnionChoiceSkipped       WarningCategory = "union_choice_skipped"
	WarnNonSerializableDefault   WarningCategory = "non_serializable_default"
	WarnUnresolvedRefPlaceholder WarningCategory = "unresolved_ref_placeholder"
)

// Warning is a non-fatal finding emitted during generation or JSON Schema
// compilation. Warnings never abort a compilation.
type Warning struct {
	Category WarningCategory
	Path     string
	Message  string
}

// WarningPolicy receives warnings. Implementations decide whether to record,
// forward, or drop them.
type WarningPolicy interface {
	Emit(w Warning)
}

// Warnings is the default collecting policy with optional category
// suppression.
type Warnings struct {
	Ignore    []WarningCategory
	Collected []Warning
}

// Emit records w unless its category is suppressed.
func (ws *Warnings) Emit(w Warning) {
	for _, c := range ws.Ignore {
		if c == w.Category {
			return
		}
	}
	ws.Collected = append(ws.Collected, w)
}

// WarningFunc adapts a function to WarningPolicy.
type WarningFunc func(w Warning)

func (f WarningFunc) Emit(w Warning) { f(w) }

func emitWarning(p WarningPolicy, w Warning) {
	if p != nil {
		p.Emit(w)
	}
}
