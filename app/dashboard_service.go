package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gotally/domain/aggregate"
	"gotally/domain/core"
	"gotally/domain/dataset"
	dfilter "gotally/domain/filter"
	"gotally/domain/selection"
	"gotally/internal"
	aggengine "gotally/internal/aggregate"
	apperrors "gotally/internal/errors"
	"gotally/internal/filter"
	"gotally/internal/report"
	"gotally/internal/session"
)

// Dashboard messages
const (
	WarningNotConfigured = "no saved configuration or no data loaded: configure the dashboard and load a file"
	ErrorNoDataFiltered  = "no data available after applying filters"
)

// DashboardView is one render pass of the dashboard
type DashboardView struct {
	Filename     string           `json:"filename,omitempty"`
	Filters      []dfilter.Spec   `json:"filters"`
	RowCount     int              `json:"row_count"`
	Sums         []aggregate.Card `json:"sums"`
	Counts       []aggregate.Card `json:"counts"`
	Averages     []aggregate.Card `json:"averages"`
	Warnings     []string         `json:"warnings,omitempty"`
	Error        string           `json:"error,omitempty"`
	Configured   bool             `json:"configured"`
	FilterFields []string         `json:"filter_fields,omitempty"`
}

// Cards returns every card in display order
func (v *DashboardView) Cards() []aggregate.Card {
	cards := make([]aggregate.Card, 0, len(v.Sums)+len(v.Counts)+len(v.Averages))
	cards = append(cards, v.Sums...)
	cards = append(cards, v.Counts...)
	return append(cards, v.Averages...)
}

// FilterChoices lists what the two dashboard filters may pick from
type FilterChoices struct {
	Primary   []string        `json:"primary"`
	Secondary []string        `json:"secondary"`
	Values    []dataset.Value `json:"values,omitempty"`
}

// DashboardService renders summary cards from the saved configuration
type DashboardService struct {
	config *ConfigurationService
	logger *internal.Logger
}

// NewDashboardService creates a dashboard service
func NewDashboardService(config *ConfigurationService, logger *internal.Logger) *DashboardService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &DashboardService{config: config, logger: logger}
}

// MaxFilters is the number of filters the dashboard offers
const MaxFilters = 2

// Choices returns the candidate fields for both filters and, when field is
// set, its distinct values as Render will see them
func (s *DashboardService) Choices(ctx context.Context, sess *session.Session, first, field string) (*FilterChoices, error) {
	table, _, _, err := s.workingTable(ctx, sess)
	if err != nil {
		return nil, err
	}
	choices := &FilterChoices{
		Primary:   filter.PrimaryFields(table),
		Secondary: filter.SecondaryFields(table, first),
	}
	if field != "" {
		values, err := filter.BuildDomain(table, field)
		if err != nil {
			return nil, apperrors.InvalidInput("unknown filter field", err)
		}
		choices.Values = values
	}
	return choices, nil
}

// Render filters the working dataset and computes every configured card.
// Missing inputs and empty results become messages on the view; a card that
// fails carries its own error while the others are still computed.
func (s *DashboardService) Render(ctx context.Context, sess *session.Session, filters []dfilter.Spec) (*DashboardView, error) {
	if err := validateFilters(filters); err != nil {
		return nil, err
	}
	view := &DashboardView{Filename: sess.Filename(), Filters: filters}

	table, set, configured, err := s.workingTable(ctx, sess)
	if errors.Is(err, core.ErrNoDataset) || (err == nil && !configured) {
		view.Warnings = append(view.Warnings, WarningNotConfigured)
		return view, nil
	}
	if err != nil {
		return nil, err
	}
	view.Configured = true
	view.FilterFields = filter.PrimaryFields(table)

	filtered, err := filter.Apply(table, filters)
	if errors.Is(err, core.ErrNoDataAfterFilters) {
		view.Error = ErrorNoDataFiltered
		return view, nil
	}
	if err != nil {
		return nil, apperrors.InvalidInput("invalid filter", err)
	}
	view.RowCount = filtered.RowCount()

	view.Sums = cards(filtered, set.SumFields, aggregate.OpSum)
	view.Counts = cards(filtered, set.CountFields, aggregate.OpCount)
	view.Averages = cards(filtered, set.AverageFields, aggregate.OpAverage)

	for _, c := range view.Cards() {
		if c.Failed() {
			s.logger.Debug("[Dashboard] %s", c.Error)
		}
	}
	return view, nil
}

// workingTable returns the session dataset with the persisted selection's
// coercion applied. configured reports whether a selection was saved.
func (s *DashboardService) workingTable(ctx context.Context, sess *session.Session) (*dataset.Table, selection.Set, bool, error) {
	set, err := s.config.selections.Load(ctx)
	if err != nil && !errors.Is(err, core.ErrNoConfiguration) {
		return nil, selection.Set{}, false, err
	}
	configured := err == nil

	if configured {
		err := sess.Update(func(t *dataset.Table) error {
			s.config.Apply(t, set)
			return nil
		})
		if err != nil && !errors.Is(err, core.ErrNoDataset) {
			return nil, set, configured, err
		}
	}

	table, ok := sess.Dataset()
	if !ok {
		return nil, set, configured, core.ErrNoDataset
	}
	return table, set, configured, nil
}

// validateFilters allows at most MaxFilters filters, each on its own field
func validateFilters(filters []dfilter.Spec) error {
	if len(filters) > MaxFilters {
		return apperrors.InvalidInput(fmt.Sprintf("at most %d filters are supported, got %d", MaxFilters, len(filters)), nil)
	}
	seen := make(map[string]bool, len(filters))
	for _, spec := range filters {
		if !spec.Active() {
			continue
		}
		if seen[spec.Field] {
			return apperrors.InvalidInput("the second filter cannot use the first filter's field", nil)
		}
		seen[spec.Field] = true
	}
	return nil
}

func cards(t *dataset.Table, fields []string, op aggregate.Operation) []aggregate.Card {
	out := make([]aggregate.Card, 0, len(fields))
	for _, field := range fields {
		out = append(out, aggengine.ScalarCard(t, field, field, op))
	}
	return out
}

// Report converts the view into a printable report
func (v *DashboardView) Report(title string) *report.Report {
	return &report.Report{
		Title:       title,
		Filename:    v.Filename,
		GeneratedAt: time.Now().UTC(),
		Warnings:    v.Warnings,
		Error:       v.Error,
		Sections: []report.Section{
			{Title: "Sums", Cards: v.Sums},
			{Title: "Counts", Cards: v.Counts},
			{Title: "Averages", Cards: v.Averages},
		},
	}
}
