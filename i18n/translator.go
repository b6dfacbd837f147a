package i18n

// Translator retrieves localized messages for error and warning codes.
// data provides optional metadata to embed in the message (for example,
// "name" or "expected").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "discriminator_missing":
			return "判別フィールドがありません"
		case "discriminator_not_literal":
			return "判別フィールドはリテラルではありません"
		case "discriminator_alias_mismatch":
			return "判別フィールドの外部名が一致しません"
		case "discriminator_not_record":
			return "判別共用体の選択肢はレコードである必要があります"
		case "discriminator_ambiguous":
			return "判別値が重複しています"
		case "duplicate_field":
			return "フィールドが重複しています"
		case "template_arity":
			return "テンプレート引数の数が一致しません"
		case "unbound_type_var":
			return "束縛されていない型変数です"
		case "unknown_descriptor":
			return "未知のディスクリプタです"
		case "union_choice_skipped":
			return "表現できない選択肢を除外しました"
		case "non_serializable_default":
			return "既定値をJSONへ埋め込めません"
		case "unresolved_ref_placeholder":
			return "未解決の参照です"
		}
	default: // "en"
		switch code {
		case "discriminator_missing":
			return "discriminator field missing"
		case "discriminator_not_literal":
			return "discriminator field is not literal-valued"
		case "discriminator_alias_mismatch":
			return "discriminator external name differs across alternatives"
		case "discriminator_not_record":
			return "discriminated union alternative must be a record"
		case "discriminator_ambiguous":
			return "duplicate discriminator value"
		case "duplicate_field":
			return "duplicate field"
		case "template_arity":
			return "template argument count mismatch"
		case "unbound_type_var":
			return "unbound type variable"
		case "unknown_descriptor":
			return "unknown descriptor"
		case "union_choice_skipped":
			return "unrepresentable union choice skipped"
		case "non_serializable_default":
			return "default value has no JSON representation"
		case "unresolved_ref_placeholder":
			return "unresolved reference"
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
