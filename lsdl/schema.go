package lsdl

import "fmt"

// Member describes one named input in the schema: its wire key, its
// value type, and (for volatile members) the reset expression it
// reverts to on a scope edge. Object-typed members recursively own a
// nested set of members, each with its own clock companion.
type Member struct {
	Name      string
	InputKey  string
	Type      Type
	ResetExpr string // rendered literal; empty means "not volatile"
	Volatile  bool
	Children  []*Member // populated when Type.Kind == KindObject
}

func (m *Member) ClockName() string { return m.Name + "_clock" }

func (m *Member) toDict() map[string]interface{} {
	d := map[string]interface{}{
		"type":             m.Type.TypeName(),
		"clock_companion":  m.ClockName(),
		"input_key":        m.InputKey,
		"debug_info":       DebugInfo{}.ToDict(),
	}
	if m.Volatile {
		d["signal_behavior"] = map[string]interface{}{
			"name":         "Reset",
			"default_expr": m.ResetExpr,
		}
	}
	if m.Type.Kind == KindEnum {
		d["enum_variants"] = m.Type.Variants
	}
	if m.Type.Kind == KindObject {
		nested := newOrderedDict()
		for _, c := range m.Children {
			nested.set(c.Name, c.toDict())
		}
		d["members"] = nested
	}
	return d
}

// Schema is the root input object: a designated timestamp key plus an
// ordered mapping of member name to member descriptor. Order of
// declaration is preserved for IR emission, since tests rely on it.
type Schema struct {
	TypeName     string
	TimestampKey string

	Members []*Member
	bySlug  map[string]*Member

	Sessionized      bool
	SessionSignalKey string
	EpochSignalKey   string
}

// NewSchema creates an empty schema rooted at typeName with the given
// patch timestamp key (defaults to "timestamp" if empty).
func NewSchema(typeName, timestampKey string) *Schema {
	if timestampKey == "" {
		timestampKey = "timestamp"
	}
	return &Schema{
		TypeName:     typeName,
		TimestampKey: timestampKey,
		bySlug:       map[string]*Member{},
	}
}

// AddMember declares a new top-level, non-object member. inputKey
// defaults to name when empty.
func (s *Schema) AddMember(name, inputKey string, t Type) (*Member, error) {
	return s.addMember(name, inputKey, t, "", false)
}

// AddVolatileMember declares a member whose value reverts to
// resetLiteral (an already-rendered constant expression) on every scope
// edge.
func (s *Schema) AddVolatileMember(name, inputKey string, t Type, resetLiteral string) (*Member, error) {
	return s.addMember(name, inputKey, t, resetLiteral, true)
}

func (s *Schema) addMember(name, inputKey string, t Type, resetLiteral string, volatile bool) (*Member, error) {
	if inputKey == "" {
		inputKey = name
	}
	if _, exists := s.bySlug[name]; exists {
		return nil, fmt.Errorf("schema_conflict: member %q already declared", name)
	}
	m := &Member{Name: name, InputKey: inputKey, Type: t, ResetExpr: resetLiteral, Volatile: volatile}
	s.bySlug[name] = m
	s.Members = append(s.Members, m)
	return m, nil
}

// AddObjectMember declares a nested-object member made up of the given
// child members. Each
// child also becomes independently addressable via Member/Input under
// its dotted path "<name>.<child>", so a nested field can be read
// without pulling in the whole object.
func (s *Schema) AddObjectMember(name, inputKey string, children ...*Member) (*Member, error) {
	if inputKey == "" {
		inputKey = name
	}
	if _, exists := s.bySlug[name]; exists {
		return nil, fmt.Errorf("schema_conflict: member %q already declared", name)
	}
	fields := make([]ObjectField, len(children))
	for i, c := range children {
		fields[i] = ObjectField{Name: c.Name, Type: c.Type}
	}
	m := &Member{Name: name, InputKey: inputKey, Type: Object(fields...), Children: children}
	s.bySlug[name] = m
	s.Members = append(s.Members, m)
	for _, c := range children {
		dotted := name + "." + c.Name
		s.bySlug[dotted] = c
	}
	return m, nil
}

// Member looks up a declared member by name.
func (s *Schema) Member(name string) (*Member, error) {
	m, ok := s.bySlug[name]
	if !ok {
		return nil, fmt.Errorf("unknown_member: %q is not declared in the schema", name)
	}
	return m, nil
}

// Sessionize declares sessionMember as the schema's session-identifying
// input, per spec.md §4.B's sessionize(). It only records which member
// and companion clock the derived session/epoch signals measure
// against; Builder.Sessionize (which Schema.Sessionize must precede)
// does the actual node construction, since Schema itself never builds
// DAG nodes.
func (s *Schema) Sessionize(sessionMember string) error {
	m, err := s.Member(sessionMember)
	if err != nil {
		return err
	}
	s.Sessionized = true
	s.SessionSignalKey = sessionMember
	s.EpochSignalKey = m.ClockName()
	return nil
}

func (s *Schema) ToDict() map[string]interface{} {
	members := newOrderedDict()
	for _, m := range s.Members {
		members.set(m.Name, m.toDict())
	}
	return map[string]interface{}{
		"type_name":           s.TypeName,
		"patch_timestamp_key": s.TimestampKey,
		"members":             members,
	}
}
