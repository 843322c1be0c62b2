package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionsDecodeClampsRatingScale(t *testing.T) {
	data := `[
		{"id":"q1","type":"rating","question":"a"},
		{"id":"q2","type":"rating","question":"b","scale":-1},
		{"id":"q3","type":"rating","question":"c","scale":1000000},
		{"id":"q4","type":"rating","question":"d","scale":7}
	]`

	var qs Questions
	require.NoError(t, json.Unmarshal([]byte(data), &qs))
	require.Len(t, qs, 4)

	var scales []int
	for _, q := range qs {
		r, ok := q.(*Rating)
		require.True(t, ok)
		scales = append(scales, r.Scale)
	}
	assert.Equal(t, []int{DefaultRatingScale, MinRatingScale, MaxRatingScale, 7}, scales)
}

func TestQuestionsDecodeRejectsUnknownType(t *testing.T) {
	var qs Questions
	assert.Error(t, json.Unmarshal([]byte(`[{"id":"q1","type":"slider"}]`), &qs))
}
