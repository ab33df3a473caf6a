package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func scoredRecord(raw string) Response {
	return ok(Record{
		ImageData:  "aGk=",
		S3Bucket:   "images",
		S3Key:      "test/bike.png",
		Inferences: NewInferences(raw),
	})
}

func TestFilterThreshold(t *testing.T) {
	tests := []struct {
		name   string
		scores string
		pass   bool
	}{
		{name: "exactly at threshold", scores: "[0.5, 0.93]", pass: true},
		{name: "above threshold", scores: "[0.97, 0.2]", pass: true},
		{name: "below threshold", scores: "[0.1, 0.2]", pass: false},
		{name: "just under", scores: "[0.9299]", pass: false},
	}

	f := NewFilter(0.93, zap.NewNop())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := scoredRecord(tt.scores)
			resp, err := f.Handle(context.Background(), in)
			if tt.pass {
				require.NoError(t, err)
				assert.Equal(t, in, resp)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrThresholdNotMet)
			assert.Equal(t, ThresholdNotMetMessage, err.Error())
		})
	}
}

func TestFilterReportsBestScore(t *testing.T) {
	_, err := NewFilter(0.93, zap.NewNop()).Handle(context.Background(), scoredRecord("[0.1, 0.42, 0.3]"))

	var thresholdErr *ThresholdError
	require.True(t, errors.As(err, &thresholdErr))
	assert.InDelta(t, 0.42, thresholdErr.Max, 1e-9)
	assert.InDelta(t, 0.93, thresholdErr.Threshold, 1e-9)
	assert.Contains(t, thresholdErr.Detail(), "0.4200")
}

func TestFilterRejectsMissingInferences(t *testing.T) {
	f := NewFilter(0.93, zap.NewNop())

	for _, raw := range []string{"", "[]", "garbage"} {
		_, err := f.Handle(context.Background(), scoredRecord(raw))
		assert.ErrorIs(t, err, ErrInvalidInput, raw)
		assert.NotErrorIs(t, err, ErrThresholdNotMet, raw)
	}
}

func TestFilterPassesBodyThroughByteForByte(t *testing.T) {
	input := `{"statusCode":200,"body":{"image_data":"aGk=","s3_bucket":"images","s3_key":"test/bike.png","inferences":[0.97, 0.2],"label":"bike"}}`

	var in Response
	require.NoError(t, json.Unmarshal([]byte(input), &in))

	resp, err := NewFilter(0.93, zap.NewNop()).Handle(context.Background(), in)
	require.NoError(t, err)

	out, err := json.Marshal(resp)
	require.NoError(t, err)

	var want bytes.Buffer
	require.NoError(t, json.Compact(&want, []byte(input)))
	assert.Equal(t, want.String(), string(out))
}
