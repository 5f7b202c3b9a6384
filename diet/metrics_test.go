package diet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfusionObserve(t *testing.T) {
	var c Confusion
	c.Observe(true, true)   // tp
	c.Observe(true, true)   // tp
	c.Observe(false, true)  // fp
	c.Observe(false, false) // tn
	c.Observe(true, false)  // fn

	assert.Equal(t, Confusion{TP: 2, FP: 1, TN: 1, FN: 1}, c)
	assert.Equal(t, 5, c.Total())
	assert.InDelta(t, 2.0/3.0, c.Precision(), 1e-9)
	assert.InDelta(t, 2.0/3.0, c.Recall(), 1e-9)
	assert.InDelta(t, 2.0/3.0, c.F1(), 1e-9)
	assert.InDelta(t, 3.0/5.0, c.Accuracy(), 1e-9)
}

func TestConfusionEmptyIsZeroNotNaN(t *testing.T) {
	var c Confusion
	assert.Equal(t, 0, c.Total())
	assert.Equal(t, 0.0, c.Precision())
	assert.Equal(t, 0.0, c.Recall())
	assert.Equal(t, 0.0, c.F1())
	assert.Equal(t, 0.0, c.Accuracy())
}

func TestConfusionAllNegative(t *testing.T) {
	var c Confusion
	c.Observe(false, false)
	c.Observe(false, false)
	assert.Equal(t, 0.0, c.Precision())
	assert.Equal(t, 0.0, c.Recall())
	assert.Equal(t, 1.0, c.Accuracy())
}
