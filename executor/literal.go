package executor

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ShapelessCat/leveled-signal-proc/errors"
)

// parseLiteral is the runtime-side inverse of lsdl.Type.RenderLiteral:
// given a type tag (as produced by lsdl.Type.TypeName) and the
// rendered literal text carried by a Constant ref, it reconstructs the
// Go value the expression interpreter and output writer operate on.
func parseLiteral(typeName, text string) (interface{}, error) {
	switch {
	case typeName == "string":
		var s string
		if err := json.Unmarshal([]byte(text), &s); err != nil {
			return nil, errors.Wrapf(err, "ir_malformed: bad string literal %q", text)
		}
		return s, nil
	case typeName == "bool":
		switch text {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, errors.Newf("ir_malformed: bad bool literal %q", text)
	case typeName == "datetime":
		iv, err := strconv.ParseInt(strings.TrimSuffix(text, "i64"), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "ir_malformed: bad datetime literal %q", text)
		}
		return iv, nil
	case strings.HasPrefix(typeName, "i") || strings.HasPrefix(typeName, "u"):
		numPart := stripIntSuffix(text)
		iv, err := strconv.ParseInt(numPart, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "ir_malformed: bad integer literal %q", text)
		}
		return iv, nil
	case strings.HasPrefix(typeName, "f"):
		numPart := stripFloatSuffix(text)
		fv, err := strconv.ParseFloat(numPart, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "ir_malformed: bad float literal %q", text)
		}
		return fv, nil
	case strings.HasPrefix(typeName, "enum:"):
		return text, nil
	case strings.HasPrefix(typeName, "list<"):
		return parseListLiteral(text)
	default:
		return nil, errors.Newf("ir_malformed: no literal parser for type %q", typeName)
	}
}

// stripIntSuffix removes a trailing i8/i16/i32/i64/i128/u8/.../u128 tag.
func stripIntSuffix(text string) string {
	for _, suf := range []string{"i128", "u128", "i64", "u64", "i32", "u32", "i16", "u16", "i8", "u8"} {
		if strings.HasSuffix(text, suf) {
			return strings.TrimSuffix(text, suf)
		}
	}
	return text
}

func stripFloatSuffix(text string) string {
	for _, suf := range []string{"f64", "f32"} {
		if strings.HasSuffix(text, suf) {
			return strings.TrimSuffix(text, suf)
		}
	}
	return text
}

func parseListLiteral(text string) ([]interface{}, error) {
	if !strings.HasPrefix(text, "[") || !strings.HasSuffix(text, "]") {
		return nil, errors.Newf("ir_malformed: bad list literal %q", text)
	}
	inner := text[1 : len(text)-1]
	if inner == "" {
		return []interface{}{}, nil
	}
	parts := splitTopLevel(inner)
	out := make([]interface{}, len(parts))
	for i, p := range parts {
		v, err := parseLiteral(sniffLiteralType(p), p)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// sniffLiteralType guesses a rendered element literal's type tag from
// its own surface form -- used only for nested list literals, whose
// element type isn't separately carried in the IR's constant encoding.
func sniffLiteralType(text string) string {
	switch {
	case strings.HasPrefix(text, "\""):
		return "string"
	case text == "true" || text == "false":
		return "bool"
	case strings.Contains(text, "f32") || strings.Contains(text, "f64"):
		return "f64"
	default:
		return "i32"
	}
}

func splitTopLevel(s string) []string {
	var out []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

// zeroValue returns the canonical default for a type tag, mirroring
// lsdl.Type.DefaultValue.
func zeroValue(typeName string, enumVariants []string) interface{} {
	switch {
	case typeName == "string":
		return ""
	case typeName == "bool":
		return false
	case typeName == "datetime":
		return int64(0)
	case strings.HasPrefix(typeName, "i") || strings.HasPrefix(typeName, "u"):
		return int64(0)
	case strings.HasPrefix(typeName, "f"):
		return float64(0)
	case strings.HasPrefix(typeName, "enum:"):
		if len(enumVariants) > 0 {
			return enumVariants[0]
		}
		return ""
	case strings.HasPrefix(typeName, "list<"):
		return []interface{}{}
	default:
		return nil
	}
}
