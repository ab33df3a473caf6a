package pipeline

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/image-pipeline/internal/predictor"
)

func encodedRecord(image []byte) Response {
	return ok(Record{
		ImageData: base64.StdEncoding.EncodeToString(image),
		S3Bucket:  "images",
		S3Key:     "test/bike.png",
	})
}

func TestClassifierAttachesRawResponse(t *testing.T) {
	p := &stubPredictor{response: []byte("[0.9716, 0.0284]")}
	c := NewClassifier(p, "image-classification-endpoint", "image/png", zap.NewNop())

	resp, err := c.Handle(context.Background(), encodedRecord([]byte("png-bytes")))
	require.NoError(t, err)

	assert.Equal(t, "[0.9716, 0.0284]", resp.Body.Inferences.Raw())
	assert.Equal(t, "images", resp.Body.S3Bucket)
	assert.Equal(t, "test/bike.png", resp.Body.S3Key)

	assert.Equal(t, "image-classification-endpoint", p.endpoint)
	assert.Equal(t, "image/png", p.contentType)
	assert.Equal(t, []byte("png-bytes"), p.payload)
}

func TestClassifierRejectsBadImageData(t *testing.T) {
	p := &stubPredictor{response: []byte("[1]")}
	c := NewClassifier(p, "ep", "image/png", zap.NewNop())

	for _, data := range []string{"", "%%%not-base64"} {
		_, err := c.Handle(context.Background(), ok(Record{ImageData: data}))
		assert.ErrorIs(t, err, ErrInvalidInput, data)
	}
	assert.Zero(t, p.calls)
}

func TestClassifierPropagatesEndpointFailure(t *testing.T) {
	cause := errors.New("endpoint unreachable")
	p := &stubPredictor{err: cause}
	c := NewClassifier(p, "ep", "image/png", zap.NewNop())

	_, err := c.Handle(context.Background(), encodedRecord([]byte("png")))
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, p.calls)
}

func TestClassifierRejectsMalformedResponse(t *testing.T) {
	for _, body := range [][]byte{nil, {0xff, 0xfe, 0xfd}} {
		c := NewClassifier(&stubPredictor{response: body}, "ep", "image/png", zap.NewNop())

		_, err := c.Handle(context.Background(), encodedRecord([]byte("png")))
		assert.ErrorIs(t, err, ErrMalformedPrediction)
	}
}

var _ predictor.Predictor = (*stubPredictor)(nil)

func TestClassifierOnlyTouchesInferences(t *testing.T) {
	var in Response
	require.NoError(t, json.Unmarshal([]byte(`{"statusCode":200,"body":{"image_data":"cG5n","s3_bucket":" images","s3_key":"cat.png ","inferences":[],"label":"bike"}}`), &in))

	resp, err := NewClassifier(&stubPredictor{response: []byte("[0.97, 0.03]")}, "ep", "image/png", zap.NewNop()).Handle(context.Background(), in)
	require.NoError(t, err)

	out, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"statusCode":200,"body":{"image_data":"cG5n","s3_bucket":" images","s3_key":"cat.png ","inferences":"[0.97, 0.03]","label":"bike"}}`, string(out))
}
