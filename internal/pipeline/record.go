package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
)

// SerializeRequest is the event that starts a pipeline run.
type SerializeRequest struct {
	S3Bucket string `json:"s3_bucket"`
	S3Key    string `json:"s3_key"`
}

// Record is the payload handed from stage to stage. Fields it does not model
// are kept and written back out, so a stage only changes what it sets.
type Record struct {
	ImageData  string     `json:"image_data"`
	S3Bucket   string     `json:"s3_bucket"`
	S3Key      string     `json:"s3_key"`
	Inferences Inferences `json:"inferences"`

	extra map[string]json.RawMessage
}

// Response is the envelope every stage returns and every later stage accepts.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       Record `json:"body"`
}

func ok(rec Record) Response {
	return Response{StatusCode: http.StatusOK, Body: rec}
}

var recordFields = []string{"image_data", "s3_bucket", "s3_key", "inferences"}

// Extra returns the raw JSON of a field the record does not model.
func (r Record) Extra(name string) (json.RawMessage, bool) {
	v, ok := r.extra[name]
	return v, ok
}

func (r Record) MarshalJSON() ([]byte, error) {
	known := map[string]interface{}{
		"image_data": r.ImageData,
		"s3_bucket":  r.S3Bucket,
		"s3_key":     r.S3Key,
		"inferences": r.Inferences,
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	write := func(name string, value []byte) {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(name)
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	for _, name := range recordFields {
		value, err := json.Marshal(known[name])
		if err != nil {
			return nil, err
		}
		write(name, value)
	}

	names := make([]string, 0, len(r.extra))
	for name := range r.extra {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		write(name, r.extra[name])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r *Record) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	var rec Record
	targets := map[string]interface{}{
		"image_data": &rec.ImageData,
		"s3_bucket":  &rec.S3Bucket,
		"s3_key":     &rec.S3Key,
		"inferences": &rec.Inferences,
	}
	for name, value := range fields {
		target, known := targets[name]
		if !known {
			if rec.extra == nil {
				rec.extra = make(map[string]json.RawMessage)
			}
			rec.extra[name] = value
			continue
		}
		if err := json.Unmarshal(value, target); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	*r = rec
	return nil
}

// Inferences holds the model's raw response text. A value built with
// NewInferences marshals as [] while empty and as a JSON string once set. A
// decoded value marshals back to the JSON it was decoded from.
type Inferences struct {
	raw  string
	wire json.RawMessage
}

func NewInferences(raw string) Inferences {
	return Inferences{raw: raw}
}

// Raw returns the response text exactly as the model produced it.
func (i Inferences) Raw() string { return i.raw }

func (i Inferences) IsEmpty() bool { return i.raw == "" }

// Scores parses the raw text as a JSON array of confidence scores.
func (i Inferences) Scores() ([]float64, error) {
	if i.raw == "" {
		return nil, fmt.Errorf("%w: inferences are empty", ErrInvalidInput)
	}
	var scores []float64
	if err := json.Unmarshal([]byte(i.raw), &scores); err != nil {
		return nil, fmt.Errorf("%w: inferences are not a list of scores: %v", ErrInvalidInput, err)
	}
	if len(scores) == 0 {
		return nil, fmt.Errorf("%w: inferences are empty", ErrInvalidInput)
	}
	return scores, nil
}

func (i Inferences) MarshalJSON() ([]byte, error) {
	if i.wire != nil {
		return i.wire, nil
	}
	if i.raw == "" {
		return []byte("[]"), nil
	}
	return json.Marshal(i.raw)
}

func (i *Inferences) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var raw string
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
	case data[0] == '"':
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	case data[0] == '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		if len(items) > 0 {
			raw = string(data)
		}
	default:
		return fmt.Errorf("inferences must be a string or an array, got %s", data)
	}
	i.raw = raw
	i.wire = nil
	if len(data) > 0 {
		i.wire = append(json.RawMessage(nil), data...)
	}
	return nil
}
