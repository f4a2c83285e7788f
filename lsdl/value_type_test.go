package lsdl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeName(t *testing.T) {
	cases := []struct {
		name string
		typ  Type
		want string
	}{
		{"string", String(), "string"},
		{"bool", Bool(), "bool"},
		{"datetime", DateTime(), "datetime"},
		{"i32", I32(), "i32"},
		{"u64", U64(), "u64"},
		{"i8", I8(), "i8"},
		{"f32", Float32(), "f32"},
		{"f64", Float64(), "f64"},
		{"list of string", List(String()), "list<string>"},
		{"tuple", Tuple(String(), I32()), "tuple<string,i32>"},
		{"object", Object(ObjectField{Name: "a", Type: I32()}), "object"},
		{"enum", Enum("PlayerState", "play", "pause"), "enum:PlayerState"},
		{"unknown", Unknown(), "_"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.typ.TypeName())
		})
	}
}

func TestTypeRenderLiteral(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		out, err := String().RenderLiteral("play")
		require.NoError(t, err)
		assert.Equal(t, `"play"`, out)
	})

	t.Run("string with quote needs escaping", func(t *testing.T) {
		out, err := String().RenderLiteral(`say "hi"`)
		require.NoError(t, err)
		assert.Equal(t, `"say \"hi\""`, out)
	})

	t.Run("bool true", func(t *testing.T) {
		out, err := Bool().RenderLiteral(true)
		require.NoError(t, err)
		assert.Equal(t, "true", out)
	})

	t.Run("bool false", func(t *testing.T) {
		out, err := Bool().RenderLiteral(false)
		require.NoError(t, err)
		assert.Equal(t, "false", out)
	})

	t.Run("int", func(t *testing.T) {
		out, err := I32().RenderLiteral(1)
		require.NoError(t, err)
		assert.Equal(t, "1i32", out)
	})

	t.Run("unsigned int", func(t *testing.T) {
		out, err := U64().RenderLiteral(42)
		require.NoError(t, err)
		assert.Equal(t, "42u64", out)
	})

	t.Run("float", func(t *testing.T) {
		out, err := Float64().RenderLiteral(2.5)
		require.NoError(t, err)
		assert.Equal(t, "2.5f64", out)
	})

	t.Run("enum variant", func(t *testing.T) {
		out, err := Enum("player_state", "play", "pause").RenderLiteral("play")
		require.NoError(t, err)
		assert.Equal(t, "PlayerState::Play", out)
	})

	t.Run("enum unknown variant rejected", func(t *testing.T) {
		_, err := Enum("player_state", "play", "pause").RenderLiteral("stopped")
		require.Error(t, err)
	})

	t.Run("list", func(t *testing.T) {
		out, err := List(I32()).RenderLiteral([]interface{}{1, 2, 3})
		require.NoError(t, err)
		assert.Equal(t, "[1i32,2i32,3i32]", out)
	})

	t.Run("wrong value type", func(t *testing.T) {
		_, err := Bool().RenderLiteral("not a bool")
		require.Error(t, err)
	})

	t.Run("object has no literal form", func(t *testing.T) {
		_, err := Object(ObjectField{Name: "a", Type: I32()}).RenderLiteral(map[string]interface{}{})
		require.Error(t, err)
	})
}

func TestTypeDefaultValue(t *testing.T) {
	assert.Equal(t, "", String().DefaultValue())
	assert.Equal(t, false, Bool().DefaultValue())
	assert.Equal(t, int64(0), I32().DefaultValue())
	assert.Equal(t, int64(0), U64().DefaultValue())
	assert.Equal(t, float64(0), Float64().DefaultValue())
	assert.Equal(t, int64(0), DateTime().DefaultValue())
	assert.Equal(t, []interface{}{}, List(String()).DefaultValue())
	assert.Equal(t, "play", Enum("player_state", "play", "pause").DefaultValue())
	assert.Equal(t, "", Enum("empty").DefaultValue())
	assert.Nil(t, Object(ObjectField{Name: "a", Type: I32()}).DefaultValue())
}
