package app

import (
	"context"
	"errors"
	"fmt"

	"gotally/adapters/coercer"
	"gotally/domain/core"
	"gotally/domain/dataset"
	"gotally/domain/selection"
	"gotally/internal"
	"gotally/internal/session"
	"gotally/ports"
)

// WarningNoDataset is shown when a page needs a dataset and none is loaded
const WarningNoDataset = "no data available: load a file first"

// ConfigView is what the configuration page shows
type ConfigView struct {
	Filename  string        `json:"filename,omitempty"`
	Columns   []string      `json:"columns"`
	Selection selection.Set `json:"selection"`
	Saved     bool          `json:"saved"`
	Warnings  []string      `json:"warnings,omitempty"`
}

// ConfigurationService mediates which fields feed each metric and persists the choice
type ConfigurationService struct {
	selections ports.SelectionRepository
	policy     coercer.Policy
	logger     *internal.Logger
}

// NewConfigurationService creates a configuration service
func NewConfigurationService(selections ports.SelectionRepository, policy coercer.Policy, logger *internal.Logger) *ConfigurationService {
	if policy == nil {
		policy = coercer.NewZeroFill()
	}
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &ConfigurationService{selections: selections, policy: policy, logger: logger}
}

// LoadOrInit returns the persisted selection, or an empty one when none was saved
func (s *ConfigurationService) LoadOrInit(ctx context.Context) (selection.Set, error) {
	set, err := s.selections.Load(ctx)
	if err != nil {
		if errors.Is(err, core.ErrNoConfiguration) {
			return selection.Empty(), nil
		}
		return selection.Set{}, err
	}
	return set, nil
}

// Reconcile drops names missing from columns without touching storage
func (s *ConfigurationService) Reconcile(set selection.Set, columns []string) selection.Set {
	return set.Reconcile(columns)
}

// Apply coerces every referenced column of t to numbers through the
// coercion policy. Unknown columns are skipped; it never fails.
func (s *ConfigurationService) Apply(t *dataset.Table, set selection.Set) *dataset.Table {
	for _, field := range set.Fields() {
		col, ok := t.Column(field)
		if !ok {
			continue
		}
		if err := t.SetColumn(field, coercer.CoerceColumn(s.policy, col.Values)); err != nil {
			s.logger.Warn("[Configuration] skipped coercion of %s: %v", field, err)
		}
	}
	return t
}

// Save persists the full selection, stale names included, overwriting the previous one
func (s *ConfigurationService) Save(ctx context.Context, set selection.Set) error {
	set.Version = selection.CurrentVersion
	if err := s.selections.Save(ctx, set); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	s.logger.Info("[Configuration] saved %d sum, %d count, %d average fields",
		len(set.SumFields), len(set.CountFields), len(set.AverageFields))
	return nil
}

// View builds the configuration page for the session. The in-progress
// selection takes precedence over the persisted one; defaults are reconciled
// against the loaded columns.
func (s *ConfigurationService) View(ctx context.Context, sess *session.Session) (*ConfigView, error) {
	saved, err := s.selections.Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check saved configuration: %w", err)
	}
	table, ok := sess.Dataset()
	if !ok {
		return &ConfigView{Columns: []string{}, Selection: selection.Empty(), Saved: saved, Warnings: []string{WarningNoDataset}}, nil
	}

	current, ok := sess.Selection()
	if !ok {
		stored, err := s.LoadOrInit(ctx)
		if err != nil {
			return nil, err
		}
		current = stored
		sess.SetSelection(current)
	}

	return &ConfigView{
		Filename:  table.Source.Filename,
		Columns:   table.Columns(),
		Selection: s.Reconcile(current, table.Columns()),
		Saved:     saved,
	}, nil
}

// Configure records a new selection for the session and coerces the chosen
// columns of the working dataset. When save is set the selection is persisted.
func (s *ConfigurationService) Configure(ctx context.Context, sess *session.Session, set selection.Set, save bool) (*ConfigView, error) {
	err := sess.Update(func(t *dataset.Table) error {
		s.Apply(t, set)
		return nil
	})
	if errors.Is(err, core.ErrNoDataset) {
		return s.View(ctx, sess)
	}
	if err != nil {
		return nil, err
	}

	sess.SetSelection(set)
	if save {
		if err := s.Save(ctx, set); err != nil {
			return nil, err
		}
	}
	return s.View(ctx, sess)
}

// Reset deletes the saved selection and the session's in-progress one.
// Columns already coerced stay numeric until the dataset is reloaded.
func (s *ConfigurationService) Reset(ctx context.Context, sess *session.Session) (*ConfigView, error) {
	if err := s.selections.Delete(ctx); err != nil {
		return nil, err
	}
	sess.ClearSelection()
	s.logger.Info("[Configuration] reset saved selection")
	return s.View(ctx, sess)
}
