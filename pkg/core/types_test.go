package core

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVec3_Arithmetic(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	assert.Equal(t, Vec3{5, 7, 9}, a.Add(b))
	assert.Equal(t, Vec3{-3, -3, -3}, a.Sub(b))
	assert.Equal(t, Vec3{2, 4, 6}, a.Scale(2))
	assert.Equal(t, 32.0, a.Dot(b))
}

func TestVec3_IsFinite(t *testing.T) {
	assert.True(t, Vec3{1, 2, 3}.IsFinite())
	assert.False(t, Vec3{1, math.NaN(), 3}.IsFinite())
	assert.False(t, Inertia{math.Inf(1), 0, 0}.IsFinite())
}

func TestInvalidInput_WrapsSentinel(t *testing.T) {
	err := InvalidInput("rotorDiameter", "must be positive, got %v", -1.0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Contains(t, err.Error(), "rotorDiameter")
}

func TestCheckFinite(t *testing.T) {
	require.NoError(t, CheckFinite("lss", "mass", 1.0, "cm", Vec3{1, 2, 3}))

	err := CheckFinite("lss", "mass", 1.0, "I", Inertia{0, math.NaN(), 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNonFinite))
	assert.Contains(t, err.Error(), "lss")
	assert.Contains(t, err.Error(), "I")
}

func TestCheckFinite_Tensor(t *testing.T) {
	require.NoError(t, CheckFinite("nacelle", "I", Tensor6{1, 2, 3, 0, 0, 0}))

	err := CheckFinite("nacelle", "mass", 1.0, "I", Tensor6{1, 2, 3, 0, math.Inf(1), 0})
	require.ErrorIs(t, err, ErrNonFinite)
	assert.Contains(t, err.Error(), "nacelle")
}

type sample struct {
	Diameter float64 `validate:"gt=0"`
	Kind     string  `validate:"required,oneof=a b"`
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(sample{Diameter: 1, Kind: "a"}))

	err := Validate(sample{Diameter: -1, Kind: "c"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.Contains(t, err.Error(), "sample.Diameter")
	assert.Contains(t, err.Error(), "sample.Kind")
	assert.Contains(t, err.Error(), "oneof=a b")
}
