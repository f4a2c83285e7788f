// Package lsdl is the leveled-signal-processing DAG builder API: the
// construction-time surface authors use to describe a schema of input
// members and a graph of processors, measurements, and combinators, and
// to serialize that graph into the IR document the executor consumes.
package lsdl

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind is the semantic tag carried by every value type in the DAG.
type Kind string

const (
	KindString   Kind = "string"
	KindBool     Kind = "bool"
	KindInt      Kind = "int"
	KindFloat    Kind = "float"
	KindDateTime Kind = "datetime"
	KindList     Kind = "list"
	KindTuple    Kind = "tuple"
	KindObject   Kind = "object"
	KindEnum     Kind = "enum"
	KindUnknown  Kind = "unknown"
)

// Type describes the shape of a value flowing through the DAG: scalar,
// composite, or a to-be-inferred placeholder.
type Type struct {
	Kind     Kind
	Signed   bool   // Int only
	Width    int    // Int (8,16,32,64,128) or Float (32,64)
	Elem     *Type  // List only
	Elems    []Type // Tuple only
	Fields   []ObjectField
	EnumName string
	Variants []string // Enum, in declared order
}

// ObjectField names one member of a nested object type.
type ObjectField struct {
	Name string
	Type Type
}

func String() Type   { return Type{Kind: KindString} }
func Bool() Type     { return Type{Kind: KindBool} }
func DateTime() Type { return Type{Kind: KindDateTime} }

func Int(signed bool, width int) Type {
	return Type{Kind: KindInt, Signed: signed, Width: width}
}

func I8() Type  { return Int(true, 8) }
func I16() Type { return Int(true, 16) }
func I32() Type { return Int(true, 32) }
func I64() Type { return Int(true, 64) }
func U8() Type  { return Int(false, 8) }
func U16() Type { return Int(false, 16) }
func U32() Type { return Int(false, 32) }
func U64() Type { return Int(false, 64) }

func Float32() Type { return Type{Kind: KindFloat, Width: 32} }
func Float64() Type { return Type{Kind: KindFloat, Width: 64} }

func List(elem Type) Type { return Type{Kind: KindList, Elem: &elem} }

func Tuple(elems ...Type) Type { return Type{Kind: KindTuple, Elems: elems} }

func Object(fields ...ObjectField) Type { return Type{Kind: KindObject, Fields: fields} }

func Enum(name string, variants ...string) Type {
	return Type{Kind: KindEnum, EnumName: name, Variants: variants}
}

// Unknown is a placeholder output type. No pass resolves it after the
// build: it is serialized as is, with type name "_".
func Unknown() Type { return Type{Kind: KindUnknown} }

func (t Type) IsUnknown() bool { return t.Kind == KindUnknown }

// TypeName renders the stable textual tag the executor understands.
func (t Type) TypeName() string {
	switch t.Kind {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt:
		prefix := "i"
		if !t.Signed {
			prefix = "u"
		}
		return fmt.Sprintf("%s%d", prefix, t.Width)
	case KindFloat:
		return fmt.Sprintf("f%d", t.Width)
	case KindDateTime:
		return "datetime"
	case KindList:
		return fmt.Sprintf("list<%s>", t.Elem.TypeName())
	case KindTuple:
		names := make([]string, len(t.Elems))
		for i, e := range t.Elems {
			names[i] = e.TypeName()
		}
		return fmt.Sprintf("tuple<%s>", strings.Join(names, ","))
	case KindObject:
		return "object"
	case KindEnum:
		return "enum:" + t.EnumName
	default:
		return "_"
	}
}

// upperCamel renders a Python-style snake/lower identifier as UpperCamelCase,
// used for enum literal rendering (`<EnumName>::<Variant>`).
func upperCamel(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool { return r == '_' || r == '-' })
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}

// RenderLiteral renders a Go value to the textual constant the executor
// understands for this type. String literals use JSON escaping. Integer
// literals carry the width/signedness suffix. Enum literals render as
// <EnumName>::<Variant>, both upper-camel-cased; the value must be one of
// the declared wire-value variants.
func (t Type) RenderLiteral(value interface{}) (string, error) {
	switch t.Kind {
	case KindString:
		s, ok := value.(string)
		if !ok {
			return "", fmt.Errorf("expected string literal, got %T", value)
		}
		encoded, err := json.Marshal(s)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	case KindBool:
		b, ok := value.(bool)
		if !ok {
			return "", fmt.Errorf("expected bool literal, got %T", value)
		}
		if b {
			return "true", nil
		}
		return "false", nil
	case KindInt:
		return fmt.Sprintf("%v%s", value, t.TypeName()), nil
	case KindFloat:
		return fmt.Sprintf("%v%s", value, t.TypeName()), nil
	case KindEnum:
		variant, ok := value.(string)
		if !ok {
			return "", fmt.Errorf("expected enum variant string, got %T", value)
		}
		found := false
		for _, v := range t.Variants {
			if v == variant {
				found = true
				break
			}
		}
		if !found {
			return "", fmt.Errorf("%q is not a declared variant of enum %s", variant, t.EnumName)
		}
		return fmt.Sprintf("%s::%s", upperCamel(t.EnumName), upperCamel(variant)), nil
	case KindList:
		values, ok := value.([]interface{})
		if !ok {
			return "", fmt.Errorf("expected list literal, got %T", value)
		}
		rendered := make([]string, len(values))
		for i, v := range values {
			r, err := t.Elem.RenderLiteral(v)
			if err != nil {
				return "", err
			}
			rendered[i] = r
		}
		return "[" + strings.Join(rendered, ",") + "]", nil
	default:
		return "", fmt.Errorf("type %s has no literal rendering", t.TypeName())
	}
}

// DefaultValue returns the canonical zero value for this type.
func (t Type) DefaultValue() interface{} {
	switch t.Kind {
	case KindString:
		return ""
	case KindBool:
		return false
	case KindInt:
		return int64(0)
	case KindFloat:
		return float64(0)
	case KindDateTime:
		return int64(0)
	case KindList:
		return []interface{}{}
	case KindEnum:
		if len(t.Variants) > 0 {
			return t.Variants[0]
		}
		return ""
	default:
		return nil
	}
}
