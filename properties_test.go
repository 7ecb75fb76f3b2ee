package strata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProperties_TypedRoundTrip(t *testing.T) {
	var props Properties
	attempts := NewPropertyKey[int]("attempts")
	tenant := NewPropertyKey[string]("tenant")

	SetProperty(&props, attempts, 3)
	SetProperty(&props, tenant, "acme")

	n, ok := GetProperty(&props, attempts)
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	s, ok := GetProperty(&props, tenant)
	assert.True(t, ok)
	assert.Equal(t, "acme", s)

	assert.Equal(t, 2, props.Len())
}

func TestProperties_Missing(t *testing.T) {
	var props Properties

	v, ok := GetProperty(&props, NewPropertyKey[int]("absent"))
	assert.False(t, ok)
	assert.Zero(t, v)
}

func TestProperties_TypeMismatch(t *testing.T) {
	var props Properties
	SetProperty(&props, NewPropertyKey[string]("slot"), "text")

	// Same name, different declared type: the read misses.
	v, ok := GetProperty(&props, NewPropertyKey[int]("slot"))
	assert.False(t, ok)
	assert.Zero(t, v)
}

func TestPropertyKey_Name(t *testing.T) {
	assert.Equal(t, "tenant", NewPropertyKey[string]("tenant").Name())
}
