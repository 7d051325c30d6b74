package service

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"termtidy-web/internal/csvrows"
	"termtidy-web/internal/model"
)

// Upload is one file picked on the audit form.
type Upload struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// AuditForm is the raw state of the audit form. Numeric fields hold the
// text the user typed.
type AuditForm struct {
	SearchTerms *Upload
	Keywords    *Upload

	MinClicks           string
	MinCost             string
	SimilarityThreshold string
	BatchSize           string
	UseLLM              bool
	BrandTerms          string
}

// NewAuditForm returns the form with its on-screen defaults.
func NewAuditForm() AuditForm {
	return AuditForm{
		MinClicks:           "3",
		MinCost:             "0",
		SimilarityThreshold: "0.75",
		BatchSize:           "5",
		UseLLM:              true,
	}
}

// BuildAuditRequest reads both uploads and assembles the payload for the
// analysis service. Nothing touches the network here.
func BuildAuditRequest(form AuditForm) (model.AuditRequest, error) {
	if form.SearchTerms == nil || form.Keywords == nil {
		return model.AuditRequest{}, &ValidationError{
			Message: "Missing files",
			Detail:  "Please upload both Search Terms and Keywords CSVs.",
		}
	}

	stText, err := readUpload(form.SearchTerms)
	if err != nil {
		return model.AuditRequest{}, err
	}
	kwText, err := readUpload(form.Keywords)
	if err != nil {
		return model.AuditRequest{}, err
	}

	req := model.AuditRequest{
		SearchTerms:         csvrows.Parse(stText),
		Keywords:            csvrows.Parse(kwText),
		MinClicks:           coerceNumber(form.MinClicks),
		MinCost:             coerceNumber(form.MinCost),
		SimilarityThreshold: coerceNumber(form.SimilarityThreshold),
		UseLLM:              form.UseLLM,
		BatchSize:           coerceNumber(form.BatchSize),
		Currency:            model.AuditCurrency,
		BrandTerms:          splitBrandTerms(form.BrandTerms),
	}

	if err := validateParameters(req); err != nil {
		return model.AuditRequest{}, err
	}
	return req, nil
}

func readUpload(u *Upload) (string, error) {
	if u.Open == nil {
		return "", fmt.Errorf("%w: %s", ErrFileRead, u.Name)
	}
	rc, err := u.Open()
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFileRead, u.Name, err)
	}
	defer rc.Close()

	b, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrFileRead, u.Name, err)
	}
	return string(b), nil
}

// coerceNumber mirrors how a browser turns an input's text into a number:
// blank is 0 and anything unparseable is NaN.
func coerceNumber(text string) model.Number {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return model.Number(math.NaN())
	}
	return model.Number(f)
}

// NaN passes through as null; only finite values are range checked.
func validateParameters(req model.AuditRequest) error {
	invalid := func(detail string) error {
		return &ValidationError{Message: "Invalid parameters", Detail: detail}
	}

	if req.MinClicks.IsFinite() && req.MinClicks < 0 {
		return invalid("min_clicks must be zero or greater")
	}
	if req.MinCost.IsFinite() && req.MinCost < 0 {
		return invalid("min_cost must be zero or greater")
	}
	if req.SimilarityThreshold.IsFinite() && (req.SimilarityThreshold < 0 || req.SimilarityThreshold > 1) {
		return invalid("similarity_threshold must be between 0 and 1")
	}
	if req.BatchSize.IsFinite() {
		b := float64(req.BatchSize)
		if b != math.Trunc(b) || b < 1 || b > model.MaxBatchSize {
			return invalid(fmt.Sprintf("batch_size must be a whole number from 1 to %d", model.MaxBatchSize))
		}
	}
	return nil
}

func splitBrandTerms(text string) []string {
	terms := []string{}
	for _, part := range strings.Split(text, ",") {
		if t := strings.TrimSpace(part); t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}
