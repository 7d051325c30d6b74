package view

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"termtidy-web/internal/model"
)

func suggestions(t *testing.T, raw string) []model.Suggestion {
	t.Helper()
	res := gjson.Parse(raw)
	require.True(t, res.IsArray())
	return model.ParseSuggestions(res)
}

func TestTopByCost_StableDescending(t *testing.T) {
	rows := suggestions(t, `[
		{"search_term":"a","cost":5},
		{"search_term":"b","cost":20},
		{"search_term":"c","cost":1},
		{"search_term":"d","cost":"20"},
		{"search_term":"e","cost":7}
	]`)

	top := TopByCost(rows, 5)

	var order []string
	for _, r := range top {
		order = append(order, r.Text(model.FieldSearchTerm))
	}
	assert.Equal(t, []string{"b", "d", "e", "a", "c"}, order)
	assert.Equal(t, "a", rows[0].Text(model.FieldSearchTerm), "input must not be reordered")
}

func TestTopByCost_MissingCostIsZero(t *testing.T) {
	rows := suggestions(t, `[
		{"search_term":"none"},
		{"search_term":"junk","cost":"n/a"},
		{"search_term":"neg","cost":-3},
		{"search_term":"small","cost":0.5}
	]`)

	top := TopByCost(rows, 3)

	require.Len(t, top, 3)
	assert.Equal(t, "small", top[0].Text(model.FieldSearchTerm))
	assert.Equal(t, "none", top[1].Text(model.FieldSearchTerm))
	assert.Equal(t, "junk", top[2].Text(model.FieldSearchTerm))
}

func TestTopByCost_FewerThanN(t *testing.T) {
	assert.Empty(t, TopByCost(nil, 5))
	assert.Len(t, TopByCost(suggestions(t, `[{"cost":1}]`), 5), 1)
}

func TestNormalizeResponse(t *testing.T) {
	t.Run("success passes through", func(t *testing.T) {
		resp := NormalizeResponse(200, []byte(`{"ok":true,"stats":{"candidates":4},"results":[{"cost":2}]}`))
		assert.False(t, resp.Failed)
		assert.Equal(t, int64(4), resp.Stats.Get("candidates").Int())
		assert.Len(t, resp.Results, 1)
	})

	t.Run("non-json", func(t *testing.T) {
		resp := NormalizeResponse(502, []byte("<h1>Bad gateway</h1>"))
		assert.True(t, resp.Failed)
		assert.Equal(t, "Non-JSON response", resp.Error)
		assert.Equal(t, `"<h1>Bad gateway</h1>"`, SafeStringify(resp.Detail))
	})

	t.Run("error status uses body error and detail", func(t *testing.T) {
		resp := NormalizeResponse(422, []byte(`{"ok":true,"error":"Bad CSV","detail":{"row":3},"results":[{"cost":1}]}`))
		assert.True(t, resp.Failed)
		assert.Equal(t, "Bad CSV", resp.Error)
		assert.JSONEq(t, `{"row":3}`, string(resp.Detail))
		assert.Len(t, resp.Results, 1)
	})

	t.Run("error status without error or detail", func(t *testing.T) {
		body := `{"message":"nope"}`
		resp := NormalizeResponse(500, []byte(body))
		assert.True(t, resp.Failed)
		assert.Equal(t, "Request failed", resp.Error)
		assert.Equal(t, body, string(resp.Detail))
	})

	t.Run("empty error string falls back", func(t *testing.T) {
		resp := NormalizeResponse(400, []byte(`{"error":"","detail":null}`))
		assert.Equal(t, "Request failed", resp.Error)
		assert.Equal(t, `{"error":"","detail":null}`, string(resp.Detail))
	})

	t.Run("ok false on 200 is a failure", func(t *testing.T) {
		resp := NormalizeResponse(200, []byte(`{"ok":false,"error":"Quota exceeded"}`))
		assert.True(t, resp.Failed)
		assert.Equal(t, "Quota exceeded", resp.Error)
	})

	t.Run("missing ok on 200 is not a failure", func(t *testing.T) {
		resp := NormalizeResponse(200, []byte(`{"results":[]}`))
		assert.False(t, resp.Failed)
	})
}

func TestAuditScreen_Lifecycle(t *testing.T) {
	s := NewAuditScreen()
	assert.Equal(t, PhaseIdle, s.Phase())

	require.True(t, s.Start())
	assert.True(t, s.Loading())
	assert.False(t, s.Start(), "second submission while loading")
	assert.Nil(t, s.Response())

	s.Settle(200, []byte(`{"ok":true,"results":[]}`))
	assert.Equal(t, PhaseSettled, s.Phase())
	require.NotNil(t, s.Response())

	require.True(t, s.Start())
	assert.Nil(t, s.Response(), "start clears the previous outcome")
}

func TestAuditScreen_FailAndReject(t *testing.T) {
	s := NewAuditScreen()
	s.Start()
	s.Fail(errors.New("connection reset"))

	v := s.View()
	assert.True(t, v.Failed)
	assert.Equal(t, "Failed to fetch", v.Error)
	assert.Equal(t, `"connection reset"`, v.Detail)

	s = NewAuditScreen()
	s.Reject("Missing files", "Please upload both Search Terms and Keywords CSVs.")
	v = s.View()
	assert.Equal(t, "Missing files", v.Error)
	assert.Equal(t, `"Please upload both Search Terms and Keywords CSVs."`, v.Detail)
}

func TestAuditScreen_View(t *testing.T) {
	s := NewAuditScreen()
	s.Start()
	s.Settle(200, []byte(`{
		"ok": true,
		"stats": {"filtered_rows": 120, "candidates": 14, "negatives_after_brand": 9,
		          "saving_cost": 41.5, "saving_cost_annual": "498", "protected_brand_rows": 2},
		"results": [
			{"suggested_negative":"[free shoes]","search_term":"free shoes","campaign":"Shoes","ad_group":"Generic",
			 "cost":12.346,"clicks":9,"conversions":0,"risk_score":0.1,"best_keyword":"running shoes","reason":"freebie intent"},
			{"search_term":"cheap boots","cost":30,"conversions":"1.26"}
		]
	}`))

	v := s.View()

	assert.False(t, v.Loading)
	assert.False(t, v.Failed)
	assert.Equal(t, []Metric{
		{Label: "Rows after filters", Value: "120"},
		{Label: "Candidates", Value: "14"},
		{Label: "Final negatives", Value: "9"},
		{Label: "Estimated saving", Value: "£41.50"},
	}, v.Metrics)
	assert.Equal(t, "£0.00", v.AnnualSaving, "string amounts are not numbers")
	assert.Equal(t, "2", v.ProtectedBrandRows)

	require.Len(t, v.Top, 2)
	assert.Equal(t, "cheap boots", v.Top[0].SearchTerm)

	require.Len(t, v.Rows, 2)
	assert.Equal(t, SuggestionRow{
		SuggestedNegative: "[free shoes]",
		SearchTerm:        "free shoes",
		Campaign:          "Shoes",
		AdGroup:           "Generic",
		Cost:              "£12.35",
		Clicks:            "9",
		Conversions:       "0.0",
		RiskScore:         "0.1",
		BestKeyword:       "running shoes",
		Reason:            "freebie intent",
	}, v.Rows[0])
	assert.Equal(t, "1.3", v.Rows[1].Conversions)
	assert.Equal(t, "", v.Rows[1].Campaign)
	assert.True(t, v.HasResults())
	assert.True(t, gjson.Valid(v.ResultsJSON))
}

func TestAuditScreen_ViewBeforeAnyRun(t *testing.T) {
	v := NewAuditScreen().View()

	assert.False(t, v.Failed)
	assert.Equal(t, "0", v.Metrics[0].Value)
	assert.Equal(t, "£0.00", v.Metrics[3].Value)
	assert.Empty(t, v.ProtectedBrandRows)
	assert.False(t, v.HasResults())
	assert.Empty(t, v.ResultsJSON)
}
