package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// AuditCurrency is the only currency the analysis service is asked to report in.
const AuditCurrency = "GBP"

// MaxBatchSize bounds the AI decision batch size.
const MaxBatchSize = 50

// Number is a form-derived numeric value. NaN and infinities encode as
// JSON null, the same way a browser serialises them.
type Number float64

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// IsFinite reports whether n is neither NaN nor infinite.
func (n Number) IsFinite() bool {
	f := float64(n)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// AuditRequest is the payload sent to the analysis service's /run.
type AuditRequest struct {
	SearchTerms         []Row    `json:"search_terms"`
	Keywords            []Row    `json:"keywords"`
	MinClicks           Number   `json:"min_clicks"`
	MinCost             Number   `json:"min_cost"`
	SimilarityThreshold Number   `json:"similarity_threshold"`
	UseLLM              bool     `json:"use_llm"`
	BatchSize           Number   `json:"batch_size"`
	Currency            string   `json:"currency"`
	BrandTerms          []string `json:"brand_terms"`
}

// Field is one key/value pair of a suggestion row.
type Field struct {
	Key   string
	Value gjson.Result
}

// Suggestion is one recommended negative keyword as returned by the
// analysis service. Only a handful of fields are read; the rest are kept
// in document order so they survive CSV export.
type Suggestion struct {
	fields []Field
}

// Well-known suggestion fields.
const (
	FieldSuggestedNegative = "suggested_negative"
	FieldSearchTerm        = "search_term"
	FieldCampaign          = "campaign"
	FieldAdGroup           = "ad_group"
	FieldCost              = "cost"
	FieldClicks            = "clicks"
	FieldConversions       = "conversions"
	FieldRiskScore         = "risk_score"
	FieldBestKeyword       = "best_keyword"
	FieldReason            = "reason"
)

// ParseSuggestion builds a suggestion from a JSON object. Non-objects
// produce an empty suggestion.
func ParseSuggestion(obj gjson.Result) Suggestion {
	var s Suggestion
	if !obj.IsObject() {
		return s
	}
	obj.ForEach(func(key, value gjson.Result) bool {
		s.set(key.String(), value)
		return true
	})
	return s
}

// ParseSuggestions reads a JSON array of suggestion objects.
func ParseSuggestions(arr gjson.Result) []Suggestion {
	if !arr.IsArray() {
		return nil
	}
	items := arr.Array()
	out := make([]Suggestion, 0, len(items))
	for _, item := range items {
		out = append(out, ParseSuggestion(item))
	}
	return out
}

func (s *Suggestion) set(key string, value gjson.Result) {
	for i := range s.fields {
		if s.fields[i].Key == key {
			s.fields[i].Value = value
			return
		}
	}
	s.fields = append(s.fields, Field{Key: key, Value: value})
}

// Keys returns field names in document order.
func (s Suggestion) Keys() []string {
	keys := make([]string, len(s.fields))
	for i, f := range s.fields {
		keys[i] = f.Key
	}
	return keys
}

// Get returns the raw value of key; a missing key yields a null result.
func (s Suggestion) Get(key string) gjson.Result {
	for _, f := range s.fields {
		if f.Key == key {
			return f.Value
		}
	}
	return gjson.Result{}
}

// Text returns the display form of key.
func (s Suggestion) Text(key string) string {
	return CellText(s.Get(key))
}

// Number returns key as a number; missing, empty or non-numeric values are 0.
func (s Suggestion) Number(key string) float64 {
	return NumericValue(s.Get(key))
}

// MarshalJSON encodes the suggestion with its original key order.
func (s Suggestion) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range s.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		if f.Value.Raw == "" {
			buf.WriteString("null")
		} else {
			buf.WriteString(f.Value.Raw)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// CellText renders a JSON value the way it is shown in tables and CSV
// cells: strings verbatim, numbers in shortest form, null as empty.
func CellText(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.False:
		return "false"
	case gjson.True:
		return "true"
	case gjson.Number:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case gjson.String:
		return v.Str
	default:
		return v.Raw
	}
}

// NumericValue coerces a JSON value to a number. Anything that does not
// read as a finite number is 0.
func NumericValue(v gjson.Result) float64 {
	var f float64
	switch v.Type {
	case gjson.Number:
		f = v.Num
	case gjson.True:
		f = 1
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
