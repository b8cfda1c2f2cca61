package recording

import (
	"encoding/json"
	"fmt"

	"go.uber.org/multierr"
)

// The persisted form is {"records":[[time,[byte,...]],...]}.

type recordingJSON struct {
	Records *[]json.RawMessage `json:"records"`
}

// MarshalJSON implements json.Marshaler.
func (r *Recording) MarshalJSON() ([]byte, error) {
	tuples := make([][2]any, len(r.records))
	for i, rec := range r.records {
		values := make([]int, len(rec.Event))
		for j, b := range rec.Event {
			values[j] = int(b)
		}
		tuples[i] = [2]any{rec.Time, values}
	}
	return json.Marshal(struct {
		Records [][2]any `json:"records"`
	}{Records: tuples})
}

// UnmarshalJSON implements json.Unmarshaler. Every structural problem is
// reported, not only the first; event bytes are not decoded here.
func (r *Recording) UnmarshalJSON(data []byte) error {
	var raw recordingJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedRecording, err)
	}
	if raw.Records == nil {
		return fmt.Errorf("%w: missing records", ErrMalformedRecording)
	}

	var errs error
	records := make([]Record, 0, len(*raw.Records))
	for i, item := range *raw.Records {
		rec, err := decodeTuple(item)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("record %d: %w", i, err))
			continue
		}
		if rec.Time < 0 {
			errs = multierr.Append(errs, fmt.Errorf("record %d: negative time %v", i, rec.Time))
			continue
		}
		if n := len(records); n > 0 && rec.Time <= records[n-1].Time {
			errs = multierr.Append(errs, fmt.Errorf("record %d: time %v does not follow %v", i, rec.Time, records[n-1].Time))
			continue
		}
		records = append(records, rec)
	}
	if errs != nil {
		return fmt.Errorf("%w: %w", ErrMalformedRecording, errs)
	}
	r.records = records
	return nil
}

func decodeTuple(item json.RawMessage) (Record, error) {
	var tuple []json.RawMessage
	if err := json.Unmarshal(item, &tuple); err != nil || len(tuple) != 2 {
		return Record{}, fmt.Errorf("expected [time, [bytes...]]")
	}
	var rec Record
	if err := json.Unmarshal(tuple[0], &rec.Time); err != nil {
		return Record{}, fmt.Errorf("time: %w", err)
	}
	var values []int
	if err := json.Unmarshal(tuple[1], &values); err != nil {
		return Record{}, fmt.Errorf("event: %w", err)
	}
	rec.Event = make([]byte, len(values))
	for j, v := range values {
		if v < 0 || v > 0xFF {
			return Record{}, fmt.Errorf("event byte %d out of range: %d", j, v)
		}
		rec.Event[j] = byte(v)
	}
	return rec, nil
}

// Serialize returns the JSON text of r followed by a newline.
func (r *Recording) Serialize() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Deserialize parses data produced by Serialize. Every failure, syntax
// errors included, wraps ErrMalformedRecording.
func Deserialize(data []byte) (*Recording, error) {
	r := New()
	if err := r.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return r, nil
}
