package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNeighborhood(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Centro", "centro"},
		{"  São   Miguel ", "sao miguel"},
		{"Vila Jacuí!", "vila jacui"},
		{"Brás/Pari", "braspari"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Neighborhood(tt.in), tt.in)
	}
}

func TestFold(t *testing.T) {
	assert.Equal(t, "nao", Fold(" NÃO "))
	assert.Equal(t, "ola", Fold("Olá"))
	assert.Equal(t, "quero doar", Fold("Quero   doar"))
}

func TestCoverageTokens(t *testing.T) {
	assert.Equal(t, []string{"centro", "se", "bela vista"}, CoverageTokens("Centro, Sé,, Bela Vista"))
	assert.Empty(t, CoverageTokens(""))
}

func TestCovers(t *testing.T) {
	assert.True(t, Covers("Centro", "Centro, SP"))
	assert.True(t, Covers("Rocinha, Vidigal", "vidigal"))
	assert.True(t, Covers("Sé", "se"))
	assert.False(t, Covers("Rocinha", "Centro, SP"))
	assert.False(t, Covers("", "Centro"))
}

func TestPhone(t *testing.T) {
	assert.Equal(t, "+5511999990001", Phone("(11) 99999-0001"))
	assert.Equal(t, "+551133334444", Phone("11 3333-4444"))
	assert.Equal(t, "+5511999990001", Phone("5511999990001"))
	assert.Equal(t, "12345", Phone("12345"))
}
