package services

import (
	"sync"
	"time"

	"sellout-dashboard/internal/charts"
	"sellout-dashboard/internal/models"
)

// Section is the cached state of one dashboard table.
type Section[T any] struct {
	Rows    []T
	Err     error
	ShowAll bool
	Loaded  bool
}

func (s *Section[T]) apply(rows []T, err error) {
	s.Loaded = true
	if err != nil {
		s.Rows = nil
		s.Err = err
		return
	}
	s.Rows = rows
	s.Err = nil
	s.ShowAll = false
}

func (s *Section[T]) toggle() bool {
	if len(s.Rows) == 0 {
		return false
	}
	s.ShowAll = !s.ShowAll
	return true
}

// ViewState holds everything one browser session sees on the dashboard.
// It is safe for concurrent use.
type ViewState struct {
	mu       sync.RWMutex
	training Section[models.Training]
	coloris  Section[models.Coloris]
	sellout  Section[models.Sellout]
	charts   charts.Bundle
	revision uint64
	loadedAt time.Time
	notice   Notice
}

// Notice is a one-shot message for the next render.
type Notice struct {
	Message string
	Error   bool
}

func NewViewState() *ViewState {
	return &ViewState{}
}

// Snapshot is an immutable copy of a ViewState.
type Snapshot struct {
	Training Section[models.Training]
	Coloris  Section[models.Coloris]
	Sellout  Section[models.Sellout]
	Charts   charts.Bundle
	Revision uint64
	LoadedAt time.Time
}

func (v *ViewState) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return Snapshot{
		Training: v.training,
		Coloris:  v.coloris,
		Sellout:  v.sellout,
		Charts:   v.charts,
		Revision: v.revision,
		LoadedAt: v.loadedAt,
	}
}

// Toggle flips the show-all flag of a table. It reports false and leaves the
// flag untouched when the table has no rows.
func (v *ViewState) Toggle(kind models.DatasetKind) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	switch kind {
	case models.KindTraining:
		return v.training.toggle()
	case models.KindColoris:
		return v.coloris.toggle()
	case models.KindSellout:
		return v.sellout.toggle()
	default:
		return false
	}
}

func (v *ViewState) Revision() uint64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.revision
}

func (v *ViewState) SetNotice(n Notice) {
	v.mu.Lock()
	v.notice = n
	v.mu.Unlock()
}

// TakeNotice returns and clears the pending notice.
func (v *ViewState) TakeNotice() Notice {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := v.notice
	v.notice = Notice{}
	return n
}

func (v *ViewState) apply(res loadResult) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.training.apply(res.training, res.trainingErr)
	v.coloris.apply(res.coloris, res.colorisErr)
	v.sellout.apply(res.sellout, res.selloutErr)
	v.charts = charts.Build(v.sellout.Rows)
	v.revision++
	v.loadedAt = res.finishedAt
	return v.revision
}
