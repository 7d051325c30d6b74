// Package view turns audit and usage data into what the operational
// screens show.
package view

import (
	"sort"
	"strconv"

	"github.com/tidwall/gjson"

	"termtidy-web/internal/model"
)

// Phase is where an AuditScreen is in its submit cycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSettled
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseSettled:
		return "settled"
	default:
		return "unknown"
	}
}

// AuditResponse is an audit outcome as displayed.
type AuditResponse struct {
	// Failed is set only when ok is literally false.
	Failed  bool
	Error   string
	Detail  []byte
	Stats   gjson.Result
	Results []model.Suggestion
}

// AuditScreen tracks one audit submission. It is not safe for concurrent
// use.
type AuditScreen struct {
	phase    Phase
	response *AuditResponse
}

// NewAuditScreen returns an idle screen.
func NewAuditScreen() *AuditScreen {
	return &AuditScreen{}
}

// Phase returns the current phase.
func (s *AuditScreen) Phase() Phase { return s.phase }

// Loading reports whether a submission is outstanding.
func (s *AuditScreen) Loading() bool { return s.phase == PhaseLoading }

// Response returns the settled outcome, or nil.
func (s *AuditScreen) Response() *AuditResponse { return s.response }

// Start begins a submission and clears the previous outcome. It returns
// false if one is already outstanding.
func (s *AuditScreen) Start() bool {
	if s.phase == PhaseLoading {
		return false
	}
	s.phase = PhaseLoading
	s.response = nil
	return true
}

// Reject settles the screen with a client-side error; nothing was sent.
func (s *AuditScreen) Reject(message, detail string) {
	s.settle(AuditResponse{Failed: true, Error: message, Detail: jsonText(detail)})
}

// Fail settles the screen after the request itself could not complete.
func (s *AuditScreen) Fail(err error) {
	s.settle(AuditResponse{Failed: true, Error: "Failed to fetch", Detail: jsonText(err.Error())})
}

// Settle records the HTTP status and body returned by the relay.
func (s *AuditScreen) Settle(status int, body []byte) {
	s.settle(NormalizeResponse(status, body))
}

func (s *AuditScreen) settle(resp AuditResponse) {
	s.response = &resp
	s.phase = PhaseSettled
}

// NormalizeResponse applies the display rules to a relay response.
func NormalizeResponse(status int, body []byte) AuditResponse {
	if !gjson.ValidBytes(body) {
		return AuditResponse{Failed: true, Error: "Non-JSON response", Detail: jsonText(string(body))}
	}
	data := gjson.ParseBytes(body)

	if status < 200 || status > 299 {
		errText := "Request failed"
		if e := data.Get("error"); truthy(e) {
			errText = e.String()
		}
		detail := []byte(data.Raw)
		if d := data.Get("detail"); d.Exists() && d.Type != gjson.Null {
			detail = []byte(d.Raw)
		}
		return AuditResponse{
			Failed:  true,
			Error:   errText,
			Detail:  detail,
			Stats:   data.Get("stats"),
			Results: model.ParseSuggestions(data.Get("results")),
		}
	}

	resp := AuditResponse{
		Failed:  data.Get("ok").Type == gjson.False,
		Error:   data.Get("error").String(),
		Stats:   data.Get("stats"),
		Results: model.ParseSuggestions(data.Get("results")),
	}
	if d := data.Get("detail"); d.Exists() {
		resp.Detail = []byte(d.Raw)
	}
	return resp
}

func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return v.Num != 0
	case gjson.String:
		return v.Str != ""
	default:
		return v.Exists()
	}
}

// TopByCost returns the n most expensive results. Ties keep their input
// order and the input slice is not modified.
func TopByCost(results []model.Suggestion, n int) []model.Suggestion {
	rows := make([]model.Suggestion, len(results))
	copy(rows, results)
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Number(model.FieldCost) > rows[j].Number(model.FieldCost)
	})
	if n < len(rows) {
		rows = rows[:n]
	}
	return rows
}

// StatText renders a summary counter; missing values show as 0.
func StatText(stats gjson.Result, key string) string {
	v := stats.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return "0"
	}
	return model.CellText(v)
}

// StatGBP renders a summary amount; only numeric values count.
func StatGBP(stats gjson.Result, key string) string {
	v := stats.Get(key)
	if v.Type != gjson.Number {
		return FormatGBP(0)
	}
	return FormatGBP(v.Num)
}

// Metric is one labelled summary figure.
type Metric struct {
	Label string
	Value string
}

// SuggestionRow is a results-table row in display form.
type SuggestionRow struct {
	SuggestedNegative string
	SearchTerm        string
	Campaign          string
	AdGroup           string
	Cost              string
	Clicks            string
	Conversions       string
	RiskScore         string
	BestKeyword       string
	Reason            string
}

// NewSuggestionRow formats one suggestion for display.
func NewSuggestionRow(s model.Suggestion) SuggestionRow {
	return SuggestionRow{
		SuggestedNegative: s.Text(model.FieldSuggestedNegative),
		SearchTerm:        s.Text(model.FieldSearchTerm),
		Campaign:          s.Text(model.FieldCampaign),
		AdGroup:           s.Text(model.FieldAdGroup),
		Cost:              FormatGBP(s.Number(model.FieldCost)),
		Clicks:            s.Text(model.FieldClicks),
		Conversions:       strconv.FormatFloat(s.Number(model.FieldConversions), 'f', 1, 64),
		RiskScore:         s.Text(model.FieldRiskScore),
		BestKeyword:       s.Text(model.FieldBestKeyword),
		Reason:            s.Text(model.FieldReason),
	}
}

// AuditView is everything the audit screen template needs.
type AuditView struct {
	Loading            bool
	Failed             bool
	Error              string
	Detail             string
	Metrics            []Metric
	AnnualSaving       string
	ProtectedBrandRows string
	Top                []SuggestionRow
	Rows               []SuggestionRow
	ResultsJSON        string
}

// HasResults reports whether there is anything to export.
func (v AuditView) HasResults() bool { return len(v.Rows) > 0 }

// View builds the template model for the current state. Summary figures
// are always present, defaulting to zero.
func (s *AuditScreen) View() AuditView {
	var resp AuditResponse
	if s.response != nil {
		resp = *s.response
	}

	v := AuditView{
		Loading: s.Loading(),
		Failed:  resp.Failed,
		Error:   resp.Error,
		Detail:  SafeStringify(resp.Detail),
		Metrics: []Metric{
			{Label: "Rows after filters", Value: StatText(resp.Stats, "filtered_rows")},
			{Label: "Candidates", Value: StatText(resp.Stats, "candidates")},
			{Label: "Final negatives", Value: StatText(resp.Stats, "negatives_after_brand")},
			{Label: "Estimated saving", Value: StatGBP(resp.Stats, "saving_cost")},
		},
		AnnualSaving: StatGBP(resp.Stats, "saving_cost_annual"),
	}

	if p := resp.Stats.Get("protected_brand_rows"); truthy(p) {
		v.ProtectedBrandRows = model.CellText(p)
	}

	for _, r := range TopByCost(resp.Results, 5) {
		v.Top = append(v.Top, NewSuggestionRow(r))
	}
	for _, r := range resp.Results {
		v.Rows = append(v.Rows, NewSuggestionRow(r))
	}
	if len(resp.Results) > 0 {
		v.ResultsJSON = string(jsonText(resp.Results))
	}
	return v
}
