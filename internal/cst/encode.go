// © 2026 The agsscript Authors
//
// SPDX-License-Identifier: Apache-2.0

package cst

import (
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"gopkg.in/yaml.v3"

	"github.com/edmundito/agsscript/internal/script"
)

// Encoded is the serialisable form of a Node. It is shared by the YAML and
// protobuf encodings so that both carry the same fields.
type Encoded struct {
	Kind     string          `yaml:"kind"`
	Named    bool            `yaml:"named,omitempty"`
	Text     string          `yaml:"text,omitempty"`
	Start    EncodedLocation `yaml:"start"`
	End      EncodedLocation `yaml:"end"`
	Guard    *EncodedGuard   `yaml:"guard,omitempty"`
	Trivia   []string        `yaml:"trivia,omitempty"`
	Children []*Encoded      `yaml:"children,omitempty"`
}

type EncodedLocation struct {
	Line   int32 `yaml:"line"`
	Column int32 `yaml:"column"`
	Offset int64 `yaml:"offset"`
}

type EncodedGuard struct {
	Directive   string `yaml:"directive"`
	Negated     bool   `yaml:"negated,omitempty"`
	Name        string `yaml:"name,omitempty"`
	Version     string `yaml:"version,omitempty"`
	Description string `yaml:"description,omitempty"`
}

func encodeLocation(l script.Location) EncodedLocation {
	return EncodedLocation{Line: l.Line, Column: l.Column, Offset: l.Offset}
}

// Encode converts the tree into its serialisable form.
func Encode(n *Node) *Encoded {
	e := &Encoded{
		Kind:  n.Kind,
		Named: n.Named,
		Start: encodeLocation(n.Span.Start),
		End:   encodeLocation(n.Span.End),
	}
	if n.Token != nil {
		e.Text = n.Token.Value
		for _, t := range n.Token.Trivia {
			e.Trivia = append(e.Trivia, t.Value)
		}
	}
	for _, t := range n.Trivia {
		e.Trivia = append(e.Trivia, t.Value)
	}
	if n.Guard != nil {
		e.Guard = &EncodedGuard{
			Directive:   n.Guard.Directive,
			Negated:     n.Guard.Negated,
			Name:        n.Guard.Name,
			Description: n.Guard.Description,
		}
		if n.Guard.Version != nil {
			e.Guard.Version = n.Guard.Version.String()
		}
	}
	for _, c := range n.Children {
		e.Children = append(e.Children, Encode(c))
	}
	return e
}

func (e *Encoded) asMap() map[string]interface{} {
	loc := func(l EncodedLocation) map[string]interface{} {
		return map[string]interface{}{"line": l.Line, "column": l.Column, "offset": l.Offset}
	}
	m := map[string]interface{}{
		"kind":  e.Kind,
		"named": e.Named,
		"start": loc(e.Start),
		"end":   loc(e.End),
	}
	if e.Text != "" {
		m["text"] = e.Text
	}
	if len(e.Trivia) > 0 {
		trivia := make([]interface{}, 0, len(e.Trivia))
		for _, t := range e.Trivia {
			trivia = append(trivia, t)
		}
		m["trivia"] = trivia
	}
	if e.Guard != nil {
		g := map[string]interface{}{
			"directive": e.Guard.Directive,
			"negated":   e.Guard.Negated,
		}
		if e.Guard.Name != "" {
			g["name"] = e.Guard.Name
		}
		if e.Guard.Version != "" {
			g["version"] = e.Guard.Version
		}
		if e.Guard.Description != "" {
			g["description"] = e.Guard.Description
		}
		m["guard"] = g
	}
	if len(e.Children) > 0 {
		children := make([]interface{}, 0, len(e.Children))
		for _, c := range e.Children {
			children = append(children, c.asMap())
		}
		m["children"] = children
	}
	return m
}

// ToStruct converts the tree into a protobuf Struct.
func ToStruct(n *Node) (*structpb.Struct, error) {
	return structpb.NewStruct(Encode(n).asMap())
}

// MarshalJSON encodes the tree as indented JSON using the protobuf JSON
// mapping of ToStruct.
func MarshalJSON(n *Node) ([]byte, error) {
	s, err := ToStruct(n)
	if err != nil {
		return nil, err
	}
	return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
}

// MarshalProto encodes the tree as a binary google.protobuf.Struct message.
func MarshalProto(n *Node) ([]byte, error) {
	s, err := ToStruct(n)
	if err != nil {
		return nil, err
	}
	return proto.MarshalOptions{Deterministic: true}.Marshal(s)
}

func MarshalYAML(n *Node) ([]byte, error) {
	return yaml.Marshal(Encode(n))
}
