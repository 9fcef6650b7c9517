package mood

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func logOf(m MoodType, intensity int) MoodLog {
	return MoodLog{Mood: m, Intensity: intensity}
}

func TestComputeInsightsEmptyReturnsNil(t *testing.T) {
	assert.Nil(t, ComputeInsights(nil))
	assert.Nil(t, ComputeInsights([]MoodLog{}))
}

func TestComputeInsights(t *testing.T) {
	logs := []MoodLog{
		logOf(MoodHappy, 8),
		logOf(MoodHappy, 6),
		logOf(MoodCalm, 5),
	}

	insights := ComputeInsights(logs)
	require.NotNil(t, insights)
	assert.Equal(t, MoodHappy, insights.MostCommonMood)
	assert.Equal(t, 3, insights.TotalLogs)
	assert.Equal(t, 2, insights.MoodDistribution[MoodHappy])
	assert.Equal(t, 1, insights.MoodDistribution[MoodCalm])
	assert.Equal(t, 0, insights.MoodDistribution[MoodSad], "distribution covers every mood")
}

func TestComputeInsightsRoundsAverageToOneDecimal(t *testing.T) {
	// (8 + 6 + 5) / 3 = 6.333... -> 6.3
	insights := ComputeInsights([]MoodLog{
		logOf(MoodHappy, 8),
		logOf(MoodHappy, 6),
		logOf(MoodCalm, 5),
	})
	require.NotNil(t, insights)
	assert.Equal(t, 6.3, insights.AvgIntensity)

	// (7 + 8) / 2 = 7.5 stays exact.
	insights = ComputeInsights([]MoodLog{
		logOf(MoodTired, 7),
		logOf(MoodTired, 8),
	})
	require.NotNil(t, insights)
	assert.Equal(t, 7.5, insights.AvgIntensity)
}

func TestValidMood(t *testing.T) {
	for _, m := range AllMoods {
		assert.True(t, ValidMood(m))
	}
	assert.False(t, ValidMood(MoodType("ecstatic")))
}
