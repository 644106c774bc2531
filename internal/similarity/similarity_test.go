package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"deep", "learning", "in", "2024"}, Tokenize("Deep Learning, in 2024!"))
	assert.Empty(t, Tokenize("  ... "))
}

func TestJaccardIdentical(t *testing.T) {
	assert.Equal(t, 1.0, Jaccard("machine learning", "Machine Learning"))
}

func TestJaccardDisjoint(t *testing.T) {
	assert.Equal(t, 0.0, Jaccard("alpha beta", "gamma delta"))
}

func TestJaccardEmpty(t *testing.T) {
	assert.Equal(t, 1.0, Jaccard("", ""))
	assert.Equal(t, 0.0, Jaccard("", "something"))
	assert.Equal(t, 0.0, Jaccard("something", ""))
}

func TestJaccardPartial(t *testing.T) {
	// {deep, learning} vs {deep, learning, advances}: 2/3.
	got := Jaccard("deep learning", "deep learning advances")
	assert.InDelta(t, 2.0/3.0, got, 1e-9)
}
