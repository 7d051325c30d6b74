package view

import (
	"bytes"
	"context"
	"html/template"
	"sync"

	"termtidy-web/internal/model"
)

// PanelState is the lifecycle of a UsagePanel.
type PanelState int

const (
	PanelIdle PanelState = iota
	PanelLoading
	PanelReady
	PanelFailed
)

// WarnPercent is the consumption level at which the panel turns amber.
const WarnPercent = 80

// UsageSource fetches the current usage summary.
type UsageSource interface {
	Usage(ctx context.Context) (model.UsageSummary, error)
}

// UsageSourceFunc adapts a function to UsageSource.
type UsageSourceFunc func(ctx context.Context) (model.UsageSummary, error)

func (f UsageSourceFunc) Usage(ctx context.Context) (model.UsageSummary, error) {
	return f(ctx)
}

// UsagePanel shows how much of the monthly quota has been consumed.
type UsagePanel struct {
	source  UsageSource
	compact bool

	mu        sync.Mutex
	state     PanelState
	usage     model.UsageSummary
	cancelled bool
}

// NewUsagePanel creates an idle panel. A compact panel omits the
// "used of quota" sentence.
func NewUsagePanel(source UsageSource, compact bool) *UsagePanel {
	return &UsagePanel{source: source, compact: compact}
}

// State returns the panel's state.
func (p *UsagePanel) State() PanelState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Load fetches usage once. Later calls do nothing.
func (p *UsagePanel) Load(ctx context.Context) {
	p.mu.Lock()
	if p.state != PanelIdle || p.cancelled {
		p.mu.Unlock()
		return
	}
	p.state = PanelLoading
	p.mu.Unlock()

	usage, err := p.source.Usage(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancelled {
		return
	}
	if err != nil {
		p.state = PanelFailed
		return
	}
	p.usage = usage
	p.state = PanelReady
}

// Cancel discards any result that arrives after it is called.
func (p *UsagePanel) Cancel() {
	p.mu.Lock()
	p.cancelled = true
	p.mu.Unlock()
}

type panelData struct {
	Loading   bool
	Compact   bool
	Month     string
	Used      string
	Quota     string
	Remaining string
	Percent   int
	Warn      bool
}

// Render returns the panel markup. A failed load renders nothing.
func (p *UsagePanel) Render() template.HTML {
	p.mu.Lock()
	state, usage := p.state, p.usage
	p.mu.Unlock()

	var data panelData
	switch state {
	case PanelFailed:
		return ""
	case PanelReady:
		pct := usage.Percent()
		data = panelData{
			Compact:   p.compact,
			Month:     usage.MonthStart,
			Used:      FormatCount(float64(usage.Used)),
			Quota:     FormatCount(float64(usage.Quota)),
			Remaining: FormatCount(float64(usage.Remaining)),
			Percent:   pct,
			Warn:      pct >= WarnPercent,
		}
	default:
		data = panelData{Loading: true}
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "usage_panel", data); err != nil {
		return ""
	}
	return template.HTML(buf.String())
}
