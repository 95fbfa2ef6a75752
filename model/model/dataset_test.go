package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummaryAdd(t *testing.T) {
	total := Summary{"Resting": 1, "Surveilling": 2}
	total.Add(Summary{"Resting": 3, "Activated": 4})
	assert.Equal(t, Summary{"Resting": 4, "Surveilling": 2, "Activated": 4}, total)

	total.Add(nil)
	assert.Equal(t, Summary{"Resting": 4, "Surveilling": 2, "Activated": 4}, total)
}

func TestTotalOfSummaries(t *testing.T) {
	total := TotalOfSummaries([]AnalysisResult{
		{Summary: Summary{"Resting": 1, "Surveilling": 2}},
		{Summary: Summary{"Resting": 3}},
		{Summary: Summary{"Surveilling": 5}},
	})
	assert.Equal(t, Summary{"Resting": 4, "Surveilling": 7}, total)

	assert.Equal(t, Summary{}, TotalOfSummaries(nil))
}

func TestModelOutputShape(t *testing.T) {
	single := ModelOutput{Type: ModelOutputSingle, Summary: Summary{"Resting": 2}}
	assert.False(t, single.IsMultiple())
	assert.Equal(t, 1, single.FileCount())
	assert.Equal(t, Summary{"Resting": 2}, single.AggregateSummary())

	multiple := ModelOutput{
		Type: ModelOutputMultiple,
		Results: []AnalysisResult{
			{Summary: Summary{"Resting": 1}},
			{Summary: Summary{"Resting": 2}},
		},
		TotalSummary: Summary{"Resting": 3},
	}
	assert.True(t, multiple.IsMultiple())
	assert.Equal(t, 2, multiple.FileCount())
	assert.Equal(t, Summary{"Resting": 3}, multiple.AggregateSummary())
}

func TestIsValidID(t *testing.T) {
	assert.True(t, IsValidID("507f1f77bcf86cd799439011"))
	assert.False(t, IsValidID("not-an-id"))
	assert.False(t, IsValidID(""))
	// Too short.
	assert.False(t, IsValidID("507f1f77"))
}
