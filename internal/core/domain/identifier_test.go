package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/protanno/internal/core/domain"
)

func TestComputeCacheKey_OrderAndDuplicates(t *testing.T) {
	a := domain.NewIdentifierSet([]string{"P1", "P2", "P3"})
	b := domain.NewIdentifierSet([]string{"P3", "P1", "P2", "P1", " P2 "})

	keyA := domain.ComputeCacheKey(a)
	keyB := domain.ComputeCacheKey(b)

	assert.Equal(t, keyA, keyB)
	assert.Len(t, keyA.String(), 16)
}

func TestComputeCacheKey_DifferentMembership(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
	}{
		{name: "extra member", a: []string{"P1", "P2"}, b: []string{"P1", "P2", "P3"}},
		{name: "different member", a: []string{"P1", "P2"}, b: []string{"P1", "P4"}},
		{name: "concatenation ambiguity", a: []string{"AB", "C"}, b: []string{"A", "BC"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keyA := domain.ComputeCacheKey(domain.NewIdentifierSet(tt.a))
			keyB := domain.ComputeCacheKey(domain.NewIdentifierSet(tt.b))
			assert.NotEqual(t, keyA, keyB)
		})
	}
}

func TestNewIdentifierSet(t *testing.T) {
	set := domain.NewIdentifierSet([]string{"Q2", "", "P1", "Q2", "  "})

	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []domain.Identifier{"P1", "Q2"}, set.Slice())
	assert.True(t, set.Contains("Q2"))
	assert.False(t, set.Contains("P3"))
}

func TestAccession(t *testing.T) {
	tests := []struct {
		in   domain.Identifier
		want string
	}{
		{in: "P12345", want: "P12345"},
		{in: "sp|P01308|INS_HUMAN", want: "P01308"},
		{in: "tr|A0A024R161|A0A024R161_HUMAN", want: "A0A024R161"},
		{in: "SP|Q9Y6K9|NEMO", want: "Q9Y6K9"},
		{in: "sp||broken", want: "sp||broken"},
		{in: "custom|id", want: "custom|id"},
	}

	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			assert.Equal(t, tt.want, domain.Accession(tt.in))
		})
	}
}
