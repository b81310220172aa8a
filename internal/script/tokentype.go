// © 2026 The agsscript Authors
//
// SPDX-License-Identifier: Apache-2.0

package script

import "fmt"

type TokenType uint16

const (
	TokenTypeUnknown TokenType = iota
	TokenTypeIdentifier
	TokenTypeNumber
	TokenTypeString
	TokenTypeChar
	TokenTypeVersion
	TokenTypePreprocArg
	TokenTypeComment
	TokenTypePrimitiveType

	TokenTypeCurlyOpen
	TokenTypeCurlyClose
	TokenTypeSquareOpen
	TokenTypeSquareClose
	TokenTypeParenOpen
	TokenTypeParenClose
	TokenTypeSemicolon
	TokenTypeComma
	TokenTypeDot
	TokenTypeColon
	TokenTypeScope

	TokenTypeEqual
	TokenTypeMultiplyEqual
	TokenTypeDivideEqual
	TokenTypePlusEqual
	TokenTypeMinusEqual
	TokenTypeShiftLeftEqual
	TokenTypeShiftRightEqual
	TokenTypeAmpersandEqual
	TokenTypeCaretEqual
	TokenTypePipeEqual
	TokenTypeBinOr
	TokenTypeBinAnd
	TokenTypePipe
	TokenTypeCaret
	TokenTypeAmpersand
	TokenTypeComparison
	TokenTypeNotComparison
	TokenTypeAngleOpen
	TokenTypeAngleClose
	TokenTypeLesserEqual
	TokenTypeGreaterEqual
	TokenTypeShiftLeft
	TokenTypeShiftRight
	TokenTypePlus
	TokenTypeMinus
	TokenTypeStar
	TokenTypeSlash
	TokenTypePercent
	TokenTypeExclamation
	TokenTypeIncrement
	TokenTypeDecrement

	TokenTypeKeywordIf
	TokenTypeKeywordElse
	TokenTypeKeywordSwitch
	TokenTypeKeywordCase
	TokenTypeKeywordDefault
	TokenTypeKeywordWhile
	TokenTypeKeywordDo
	TokenTypeKeywordFor
	TokenTypeKeywordReturn
	TokenTypeKeywordBreak
	TokenTypeKeywordContinue
	TokenTypeKeywordStruct
	TokenTypeKeywordEnum
	TokenTypeKeywordManaged
	TokenTypeKeywordExtends
	TokenTypeKeywordImport
	TokenTypeKeywordExport
	TokenTypeKeywordFunction
	TokenTypeKeywordVoid
	TokenTypeKeywordProtected
	TokenTypeKeywordStatic
	TokenTypeKeywordWriteprotected
	TokenTypeKeywordAttribute
	TokenTypeKeywordReadonly
	TokenTypeKeywordConst
	TokenTypeKeywordNoloopcheck
	TokenTypeKeywordThis
	TokenTypeKeywordNew
	TokenTypeKeywordTrue
	TokenTypeKeywordFalse
	TokenTypeKeywordNull

	TokenTypeDirectiveDefine
	TokenTypeDirectiveError
	TokenTypeDirectiveIfdef
	TokenTypeDirectiveIfndef
	TokenTypeDirectiveIfver
	TokenTypeDirectiveIfnver
	TokenTypeDirectiveEndif
	TokenTypeDirectiveRegion
	TokenTypeDirectiveEndregion
)

var tokenTypeNames = map[TokenType]string{
	TokenTypeUnknown:       "unknown",
	TokenTypeIdentifier:    "identifier",
	TokenTypeNumber:        "number",
	TokenTypeString:        "string",
	TokenTypeChar:          "char",
	TokenTypeVersion:       "version",
	TokenTypePreprocArg:    "preproc_arg",
	TokenTypeComment:       "comment",
	TokenTypePrimitiveType: "primitive_type",
}

// Keywords maps every reserved word to its token type. Primitive type names
// are not listed because they share TokenTypePrimitiveType.
var Keywords = map[string]TokenType{
	"if":             TokenTypeKeywordIf,
	"else":           TokenTypeKeywordElse,
	"switch":         TokenTypeKeywordSwitch,
	"case":           TokenTypeKeywordCase,
	"default":        TokenTypeKeywordDefault,
	"while":          TokenTypeKeywordWhile,
	"do":             TokenTypeKeywordDo,
	"for":            TokenTypeKeywordFor,
	"return":         TokenTypeKeywordReturn,
	"break":          TokenTypeKeywordBreak,
	"continue":       TokenTypeKeywordContinue,
	"struct":         TokenTypeKeywordStruct,
	"enum":           TokenTypeKeywordEnum,
	"managed":        TokenTypeKeywordManaged,
	"extends":        TokenTypeKeywordExtends,
	"import":         TokenTypeKeywordImport,
	"export":         TokenTypeKeywordExport,
	"function":       TokenTypeKeywordFunction,
	"void":           TokenTypeKeywordVoid,
	"protected":      TokenTypeKeywordProtected,
	"static":         TokenTypeKeywordStatic,
	"writeprotected": TokenTypeKeywordWriteprotected,
	"attribute":      TokenTypeKeywordAttribute,
	"readonly":       TokenTypeKeywordReadonly,
	"const":          TokenTypeKeywordConst,
	"noloopcheck":    TokenTypeKeywordNoloopcheck,
	"this":           TokenTypeKeywordThis,
	"new":            TokenTypeKeywordNew,
	"true":           TokenTypeKeywordTrue,
	"false":          TokenTypeKeywordFalse,
	"null":           TokenTypeKeywordNull,
}

// PrimitiveTypes is the set of built-in scalar type names.
var PrimitiveTypes = map[string]bool{
	"bool":   true,
	"char":   true,
	"float":  true,
	"int":    true,
	"long":   true,
	"short":  true,
	"string": true,
}

// Directives maps the text following '#' to the directive token type.
var Directives = map[string]TokenType{
	"define":    TokenTypeDirectiveDefine,
	"error":     TokenTypeDirectiveError,
	"ifdef":     TokenTypeDirectiveIfdef,
	"ifndef":    TokenTypeDirectiveIfndef,
	"ifver":     TokenTypeDirectiveIfver,
	"ifnver":    TokenTypeDirectiveIfnver,
	"endif":     TokenTypeDirectiveEndif,
	"region":    TokenTypeDirectiveRegion,
	"endregion": TokenTypeDirectiveEndregion,
}

var punctuation = map[TokenType]string{
	TokenTypeCurlyOpen:       "{",
	TokenTypeCurlyClose:      "}",
	TokenTypeSquareOpen:      "[",
	TokenTypeSquareClose:     "]",
	TokenTypeParenOpen:       "(",
	TokenTypeParenClose:      ")",
	TokenTypeSemicolon:       ";",
	TokenTypeComma:           ",",
	TokenTypeDot:             ".",
	TokenTypeColon:           ":",
	TokenTypeScope:           "::",
	TokenTypeEqual:           "=",
	TokenTypeMultiplyEqual:   "*=",
	TokenTypeDivideEqual:     "/=",
	TokenTypePlusEqual:       "+=",
	TokenTypeMinusEqual:      "-=",
	TokenTypeShiftLeftEqual:  "<<=",
	TokenTypeShiftRightEqual: ">>=",
	TokenTypeAmpersandEqual:  "&=",
	TokenTypeCaretEqual:      "^=",
	TokenTypePipeEqual:       "|=",
	TokenTypeBinOr:           "||",
	TokenTypeBinAnd:          "&&",
	TokenTypePipe:            "|",
	TokenTypeCaret:           "^",
	TokenTypeAmpersand:       "&",
	TokenTypeComparison:      "==",
	TokenTypeNotComparison:   "!=",
	TokenTypeAngleOpen:       "<",
	TokenTypeAngleClose:      ">",
	TokenTypeLesserEqual:     "<=",
	TokenTypeGreaterEqual:    ">=",
	TokenTypeShiftLeft:       "<<",
	TokenTypeShiftRight:      ">>",
	TokenTypePlus:            "+",
	TokenTypeMinus:           "-",
	TokenTypeStar:            "*",
	TokenTypeSlash:           "/",
	TokenTypePercent:         "%",
	TokenTypeExclamation:     "!",
	TokenTypeIncrement:       "++",
	TokenTypeDecrement:       "--",
}

func init() {
	for k, v := range Keywords {
		tokenTypeNames[v] = fmt.Sprintf("%q", k)
	}
	for k, v := range Directives {
		tokenTypeNames[v] = fmt.Sprintf("%q", "#"+k)
	}
	for k, v := range punctuation {
		tokenTypeNames[k] = fmt.Sprintf("%q", v)
	}
}

// String renders the token type the way it is named in diagnostics: literal
// punctuation, keywords and directives are quoted.
func (t TokenType) String() string {
	if name, ok := tokenTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", uint16(t))
}

// Text returns the fixed spelling of punctuation token types.
func (t TokenType) Text() (string, bool) {
	v, ok := punctuation[t]
	return v, ok
}

// IsDirective reports whether the token type is a '#' directive.
func (t TokenType) IsDirective() bool {
	return t >= TokenTypeDirectiveDefine && t <= TokenTypeDirectiveEndregion
}
