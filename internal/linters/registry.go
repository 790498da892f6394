package linters

import (
	"erblint/internal/lint"
)

// Linter names as they appear in config files.
const (
	NameAllowedScriptType   = "AllowedScriptType"
	NameClosingErbTagIndent = "ClosingErbTagIndent"
	NameExtraNewline        = "ExtraNewline"
	NameFinalNewline        = "FinalNewline"
	NameDeprecatedClasses   = "DeprecatedClasses"
	NameParserErrors        = "ParserErrors"
	NameRightTrim           = "RightTrim"
	NameSpaceAroundErbTag   = "SpaceAroundErbTag"
	NameTrailingWhitespace  = "TrailingWhitespace"
	NameHardCodedString     = "HardCodedString"
)

// Default returns a registry with every built-in linter, in rule order.
func Default() *lint.Registry {
	reg := lint.NewRegistry()
	lint.Register(reg, lint.Spec[AllowedScriptTypeOptions]{
		Name:             NameAllowedScriptType,
		Description:      "Restricts the type attribute of <script> tags.",
		EnabledByDefault: true,
		Correctable:      true,
		Defaults:         defaultAllowedScriptTypeOptions,
		New:              NewAllowedScriptType,
	})
	lint.Register(reg, lint.Spec[ClosingErbTagIndentOptions]{
		Name:             NameClosingErbTagIndent,
		Description:      "Aligns the closing %> with the start of a multi-line ERB tag.",
		EnabledByDefault: true,
		Correctable:      true,
		New:              NewClosingErbTagIndent,
	})
	lint.Register(reg, lint.Spec[ExtraNewlineOptions]{
		Name:             NameExtraNewline,
		Description:      "Disallows more than one consecutive blank line.",
		EnabledByDefault: true,
		Correctable:      true,
		New:              NewExtraNewline,
	})
	lint.Register(reg, lint.Spec[FinalNewlineOptions]{
		Name:             NameFinalNewline,
		Description:      "Requires (or forbids) exactly one trailing newline.",
		EnabledByDefault: true,
		Correctable:      true,
		Defaults:         defaultFinalNewlineOptions,
		New:              NewFinalNewline,
	})
	lint.Register(reg, lint.Spec[DeprecatedClassesOptions]{
		Name:        NameDeprecatedClasses,
		Description: "Reports CSS classes matching deprecated patterns, including inside text/html script templates.",
		New:         NewDeprecatedClasses,
	})
	lint.Register(reg, lint.Spec[ParserErrorsOptions]{
		Name:             NameParserErrors,
		Description:      "Reports markup the parser could not understand.",
		EnabledByDefault: true,
		New:              NewParserErrors,
	})
	lint.Register(reg, lint.Spec[RightTrimOptions]{
		Name:             NameRightTrim,
		Description:      "Enforces one right-trim marker style.",
		EnabledByDefault: true,
		Correctable:      true,
		Defaults:         defaultRightTrimOptions,
		New:              NewRightTrim,
	})
	lint.Register(reg, lint.Spec[SpaceAroundErbTagOptions]{
		Name:             NameSpaceAroundErbTag,
		Description:      "Requires exactly one space inside ERB tag delimiters.",
		EnabledByDefault: true,
		Correctable:      true,
		New:              NewSpaceAroundErbTag,
	})
	lint.Register(reg, lint.Spec[TrailingWhitespaceOptions]{
		Name:             NameTrailingWhitespace,
		Description:      "Disallows whitespace at the end of lines.",
		EnabledByDefault: true,
		Correctable:      true,
		New:              NewTrailingWhitespace,
	})
	lint.Register(reg, lint.Spec[HardCodedStringOptions]{
		Name:        NameHardCodedString,
		Description: "Reports text that is not passed through translation.",
		Correctable: true,
		New:         NewHardCodedString,
	})
	return reg
}
