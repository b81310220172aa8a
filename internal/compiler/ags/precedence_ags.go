package ags

import "github.com/edmundito/agsscript/internal/script"

// Binding strengths of the expression grammar, lowest first. The gaps match
// the levels that have no operators of their own.
const (
	precAssignment   = -1
	precDefault      = 0
	precLogicalOr    = 1
	precLogicalAnd   = 2
	precInclusiveOr  = 3
	precExclusiveOr  = 4
	precBitwiseAnd   = 5
	precEqual        = 6
	precRelational   = 7
	precShift        = 9
	precAdd          = 10
	precMultiply     = 11
	precCast         = 12
	precUnary        = 13
	precCall         = 14
	precField        = 15
	precSubscript    = 16
	precLowestBinary = precLogicalOr
)

type associativity uint8

const (
	assocLeft associativity = iota
	assocRight
)

type operator struct {
	prec  int
	assoc associativity
	// kind is the node kind produced by the operator.
	kind string
}

// binaryOperators is the precedence table of the infix operators. It is
// never written to after initialisation.
var binaryOperators = map[script.TokenType]operator{
	script.TokenTypeBinOr:         {precLogicalOr, assocLeft, "logical_expression"},
	script.TokenTypeBinAnd:        {precLogicalAnd, assocLeft, "logical_expression"},
	script.TokenTypePipe:          {precInclusiveOr, assocLeft, "bitwise_expression"},
	script.TokenTypeCaret:         {precExclusiveOr, assocLeft, "bitwise_expression"},
	script.TokenTypeAmpersand:     {precBitwiseAnd, assocLeft, "bitwise_expression"},
	script.TokenTypeComparison:    {precEqual, assocLeft, "equality_expression"},
	script.TokenTypeNotComparison: {precEqual, assocLeft, "equality_expression"},
	script.TokenTypeAngleOpen:     {precRelational, assocLeft, "relational_expression"},
	script.TokenTypeAngleClose:    {precRelational, assocLeft, "relational_expression"},
	script.TokenTypeLesserEqual:   {precRelational, assocLeft, "relational_expression"},
	script.TokenTypeGreaterEqual:  {precRelational, assocLeft, "relational_expression"},
	script.TokenTypeShiftLeft:     {precShift, assocLeft, "shift_expression"},
	script.TokenTypeShiftRight:    {precShift, assocLeft, "shift_expression"},
	script.TokenTypePlus:          {precAdd, assocLeft, "math_expression"},
	script.TokenTypeMinus:         {precAdd, assocLeft, "math_expression"},
	script.TokenTypeStar:          {precMultiply, assocLeft, "math_expression"},
	script.TokenTypeSlash:         {precMultiply, assocLeft, "math_expression"},
	script.TokenTypePercent:       {precMultiply, assocLeft, "math_expression"},
}

var assignmentOperators = map[script.TokenType]operator{
	script.TokenTypeEqual:           {precAssignment, assocRight, "assignment_expression"},
	script.TokenTypeMultiplyEqual:   {precAssignment, assocRight, "assignment_expression"},
	script.TokenTypeDivideEqual:     {precAssignment, assocRight, "assignment_expression"},
	script.TokenTypePlusEqual:       {precAssignment, assocRight, "assignment_expression"},
	script.TokenTypeMinusEqual:      {precAssignment, assocRight, "assignment_expression"},
	script.TokenTypeShiftLeftEqual:  {precAssignment, assocRight, "assignment_expression"},
	script.TokenTypeShiftRightEqual: {precAssignment, assocRight, "assignment_expression"},
	script.TokenTypeAmpersandEqual:  {precAssignment, assocRight, "assignment_expression"},
	script.TokenTypeCaretEqual:      {precAssignment, assocRight, "assignment_expression"},
	script.TokenTypePipeEqual:       {precAssignment, assocRight, "assignment_expression"},
}

// Prefix operators all bind at precUnary and associate to the right.
var prefixOperators = map[script.TokenType]operator{
	script.TokenTypeExclamation: {precUnary, assocRight, "logical_expression"},
	script.TokenTypeMinus:       {precUnary, assocRight, "math_expression"},
	script.TokenTypePlus:        {precUnary, assocRight, "math_expression"},
	script.TokenTypeIncrement:   {precUnary, assocRight, "math_expression"},
	script.TokenTypeDecrement:   {precUnary, assocRight, "math_expression"},
	script.TokenTypeStar:        {precUnary, assocRight, "pointer_expression"},
}

var postfixOperators = map[script.TokenType]operator{
	script.TokenTypeIncrement:  {precUnary, assocRight, "math_expression"},
	script.TokenTypeDecrement:  {precUnary, assocRight, "math_expression"},
	script.TokenTypeParenOpen:  {precCall, assocLeft, "call_expression"},
	script.TokenTypeDot:        {precField, assocLeft, "field_expression"},
	script.TokenTypeSquareOpen: {precSubscript, assocLeft, "subscript_expression"},
}
