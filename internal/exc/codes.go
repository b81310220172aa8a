// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

const (
	CodeUnknownFatal                  = "A0000"
	CodeFileNotFound                  = "A0001"
	CodeUnsuportedFileSystemOperation = "A0002"
	CodePermissionDenied              = "A0003"
	CodeUnsupportedFileFormat         = "A0004"
	CodeUnexpectedEOF                 = "A0005"
	CodeCanceled                      = "A0006"
)

// Lexical errors.
const (
	CodeUnterminatedLiteral = "A0100"
	CodeUnterminatedComment = "A0101"
	CodeInvalidEscape       = "A0102"
	CodeUnexpectedCharacter = "A0103"
	CodeUnknownDirective    = "A0104"
)

// Syntax errors.
const (
	CodeUnexpectedToken     = "A0200"
	CodeMissingTerminator   = "A0201"
	CodeUnbalancedDirective = "A0202"
	CodeAmbiguousConstruct  = "A0203"
	CodeMisplacedExtender   = "A0204"
	CodeInvalidVersion      = "A0205"
	CodeTooManyErrors       = "A0206"
)

// Configuration errors.
const (
	CodeInvalidConfig = "A0300"
)

// Deferred semantic checks.
const (
	CodeExtendsCycle     = "A0400"
	CodeExtendsUndefined = "A0401"
)

const (
	CodeEOF = "_EOF_"
)

var (
	defaultNonFatal = map[string]bool{
		CodeExtendsCycle:     true,
		CodeExtendsUndefined: true,
	}
)

// LexCodes lists every code the tokenizer can report.
var LexCodes = []string{
	CodeUnterminatedLiteral,
	CodeUnterminatedComment,
	CodeInvalidEscape,
	CodeUnexpectedCharacter,
	CodeUnknownDirective,
}

// ParseCodes lists every code the parser can report for a recoverable
// syntax error.
var ParseCodes = []string{
	CodeUnexpectedEOF,
	CodeUnexpectedToken,
	CodeMissingTerminator,
	CodeUnbalancedDirective,
	CodeAmbiguousConstruct,
	CodeMisplacedExtender,
	CodeInvalidVersion,
}

// RecoverableCodes is the non-fatal set used when error recovery is on.
func RecoverableCodes() []string {
	out := make([]string, 0, len(LexCodes)+len(ParseCodes))
	out = append(out, LexCodes...)
	return append(out, ParseCodes...)
}

type Kind uint8

const (
	KindUnknown Kind = iota
	KindLex
	KindParse
	KindConfig
	KindSemantic
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindLex:
		return "LexError"
	case KindParse:
		return "ParseError"
	case KindConfig:
		return "ConfigError"
	case KindSemantic:
		return "SemanticWarning"
	case KindIO:
		return "IOError"
	default:
		return "Error"
	}
}

// KindOf classifies a code into the error taxonomy.
func KindOf(code string) Kind {
	if len(code) != 5 || code[0] != 'A' {
		return KindUnknown
	}
	switch code[1:3] {
	case "01":
		return KindLex
	case "02":
		return KindParse
	case "03":
		return KindConfig
	case "04":
		return KindSemantic
	}
	switch code {
	case CodeUnexpectedEOF:
		return KindParse
	case CodeFileNotFound, CodePermissionDenied, CodeUnsuportedFileSystemOperation, CodeUnsupportedFileFormat:
		return KindIO
	}
	return KindUnknown
}

type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}
