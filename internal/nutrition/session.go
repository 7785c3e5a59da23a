package nutrition

import "github.com/saadjs/nutricu/internal/model"

// Session is the ephemeral state of one calculation: manual volume overrides
// keyed by day and mixture, and at most one mixture per day selected for
// export. A day/mixture pair with no override is distinct from a 0 mL
// override. The zero value is ready to use. A Session is not safe for
// concurrent use.
type Session struct {
	overrides map[int]map[int64]int
	selected  map[int]int64
}

func NewSession() *Session {
	return &Session{}
}

func (s *Session) Override(day int, mixtureID int64) (int, bool) {
	if s == nil {
		return 0, false
	}
	byMixture, ok := s.overrides[day]
	if !ok {
		return 0, false
	}
	v, ok := byMixture[mixtureID]
	return v, ok
}

// SetVolume stores an explicit override. Negative volumes are stored as 0.
func (s *Session) SetVolume(day int, mixtureID int64, ml int) {
	if ml < 0 {
		ml = 0
	}
	if s.overrides == nil {
		s.overrides = map[int]map[int64]int{}
	}
	if s.overrides[day] == nil {
		s.overrides[day] = map[int64]int{}
	}
	s.overrides[day][mixtureID] = ml
}

func (s *Session) ClearOverride(day int, mixtureID int64) {
	if byMixture, ok := s.overrides[day]; ok {
		delete(byMixture, mixtureID)
		if len(byMixture) == 0 {
			delete(s.overrides, day)
		}
	}
}

// Adjust applies delta mL to the volume currently in effect. On the first
// adjustment of a pair the computed baseline is captured as the override.
func (s *Session) Adjust(p model.Patient, d Day, m model.Mixture, delta int) VolumeResult {
	res := ReconcileVolume(p, d, m, s.overridePtr(d.Day, m.ID), delta)
	s.SetVolume(d.Day, m.ID, res.Volume)
	res.Overridden = true
	return res
}

// Reconcile computes the result for a pair using any stored override.
func (s *Session) Reconcile(p model.Patient, d Day, m model.Mixture) VolumeResult {
	return ReconcileVolume(p, d, m, s.overridePtr(d.Day, m.ID), 0)
}

// ToggleExport selects mixtureID for export on day, or clears the day's
// selection when mixtureID is already selected. Days are independent.
func (s *Session) ToggleExport(day int, mixtureID int64) {
	if s.selected == nil {
		s.selected = map[int]int64{}
	}
	if current, ok := s.selected[day]; ok && current == mixtureID {
		delete(s.selected, day)
		return
	}
	s.selected[day] = mixtureID
}

func (s *Session) ExportSelection(day int) (int64, bool) {
	if s == nil {
		return 0, false
	}
	id, ok := s.selected[day]
	return id, ok
}

func (s *Session) overridePtr(day int, mixtureID int64) *int {
	v, ok := s.Override(day, mixtureID)
	if !ok {
		return nil
	}
	return &v
}
