package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruthy(t *testing.T) {
	assert.True(t, truthy(true))
	assert.False(t, truthy(false))
	assert.False(t, truthy(""))
	assert.True(t, truthy("x"))
	assert.False(t, truthy(int64(0)))
	assert.True(t, truthy(int64(1)))
	assert.False(t, truthy(float64(0)))
	assert.False(t, truthy(nil))
	assert.True(t, truthy([]interface{}{}))
}

func TestDynamicZero(t *testing.T) {
	assert.Equal(t, false, dynamicZero(true))
	assert.Equal(t, "", dynamicZero("x"))
	assert.Equal(t, int64(0), dynamicZero(int64(5)))
	assert.Equal(t, float64(0), dynamicZero(float64(5)))
	assert.Equal(t, []interface{}{}, dynamicZero([]interface{}{1, 2}))
}

func TestApplyBinaryOpIntArithmeticStaysInt(t *testing.T) {
	v, err := applyBinaryOp("+", int64(1), int64(2))
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
}

func TestApplyBinaryOpMixedIntFloatPromotesToFloat(t *testing.T) {
	v, err := applyBinaryOp("+", int64(1), float64(2.5))
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)
}

func TestApplyBinaryOpIntDivisionByZero(t *testing.T) {
	_, err := applyBinaryOp("/", int64(1), int64(0))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "evaluation_fatal")
}

func TestApplyBinaryOpStringConcat(t *testing.T) {
	v, err := applyBinaryOp("+", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "ab", v)
}

func TestApplyBinaryOpEqualityAcrossIntFloat(t *testing.T) {
	v, err := applyBinaryOp("==", int64(2), float64(2))
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestApplyBinaryOpXorOnBool(t *testing.T) {
	v, err := applyBinaryOp("^", true, false)
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestApplyBinaryOpUndefinedForMismatchedTypes(t *testing.T) {
	_, err := applyBinaryOp("+", true, int64(1))
	require.Error(t, err)
}

func TestNegateNumeric(t *testing.T) {
	v, err := negateNumeric(int64(5))
	require.NoError(t, err)
	assert.Equal(t, int64(-5), v)

	_, err = negateNumeric("x")
	require.Error(t, err)
}
