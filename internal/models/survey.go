package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// SurveyKind enumerates the survey categories captured by the intake app.
type SurveyKind string

const (
	SurveyKindSatisfaction SurveyKind = "satisfaccion"
	SurveyKindMammography  SurveyKind = "mamografia"
)

// Survey is one patient-survey row. The payload shape varies by kind and is
// produced by an external intake system; this API only reads it.
type Survey struct {
	ID           string     `db:"id" json:"id"`
	Kind         string     `db:"tipo" json:"tipo"`
	Service      string     `db:"servicio" json:"servicio"`
	Date         time.Time  `db:"fecha" json:"fecha"`
	OperatorName *string    `db:"operator_name" json:"operator_name"`
	Payload      Payload    `db:"payload" json:"payload"`
	FileRef      *string    `db:"pdf_drive_path" json:"pdf_drive_path,omitempty"`
}

// HasFileRef reports whether the row carries a resolvable stored-file reference.
func (s Survey) HasFileRef() bool {
	return s.FileRef != nil && *s.FileRef != ""
}

// SurveyFilter captures the caller-supplied selection criteria. A Service of
// "all" (or empty) means unconstrained; Start/End are inclusive bounds on Date.
type SurveyFilter struct {
	Kind    string
	Service string
	Start   *time.Time
	End     *time.Time
}

// ServiceConstrained reports whether the filter narrows by service.
func (f SurveyFilter) ServiceConstrained() bool {
	return f.Service != "" && f.Service != "all"
}

// QueryScope is the per-request authorization decision: elevated callers see
// every row, everyone else is pinned to their own service.
type QueryScope struct {
	Elevated bool
	Service  string
}

// Payload is the free-form JSONB column attached to each survey. Accessors
// tolerate missing keys and wrong types by returning zero values.
type Payload map[string]interface{}

// Value marshals the payload for persistence.
func (p Payload) Value() (driver.Value, error) {
	if p == nil {
		p = Payload{}
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal survey payload: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSONB payloads into the map.
func (p *Payload) Scan(value interface{}) error {
	if value == nil {
		*p = Payload{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for Payload", value)
	}
	if len(data) == 0 {
		*p = Payload{}
		return nil
	}
	if err := json.Unmarshal(data, p); err != nil {
		return fmt.Errorf("unmarshal survey payload: %w", err)
	}
	return nil
}

// String returns the value under key as a string, or "" when the key is
// absent or holds a non-string, non-numeric value.
func (p Payload) String(key string) string {
	if p == nil {
		return ""
	}
	switch v := p[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}
