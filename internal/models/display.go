package models

import (
	"math"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// DisplayPhase is where a visitor's page is in the analysis lifecycle.
type DisplayPhase string

const (
	PhaseIdle    DisplayPhase = "idle"
	PhaseLoading DisplayPhase = "loading"
	PhaseSuccess DisplayPhase = "success"
	PhaseError   DisplayPhase = "error"
)

// Display is a snapshot of one visitor's display slot. Result and Err are
// never both set.
type Display struct {
	Phase   DisplayPhase
	Version string // last version submitted
	Result  *AnalysisResult
	Err     error

	UpdatedAt time.Time
}

// ErrorMessage returns the text shown in the error panel.
func (d Display) ErrorMessage() string {
	if d.Err == nil {
		return ""
	}
	return d.Err.Error()
}

// DisplayObserver is notified on every phase transition.
type DisplayObserver interface {
	ObserveTransition(phase DisplayPhase)
}

// DisplayService owns the in-memory display slots, one per visitor. Results
// are replaced wholesale and resolutions apply in the order they arrive, so
// the most recently resolved request wins.
type DisplayService struct {
	// mu guards slots; simplelru is not safe for concurrent use and every
	// transition is a read-modify-write.
	mu       sync.Mutex
	slots    *simplelru.LRU[string, Display]
	observer DisplayObserver
	now      func() time.Time
}

// NewDisplayService creates a DisplayService holding at most maxVisitors
// slots, dropping the least recently touched visitor beyond that. A
// non-positive maxVisitors means no bound.
func NewDisplayService(maxVisitors int, observer DisplayObserver) *DisplayService {
	if maxVisitors <= 0 {
		maxVisitors = math.MaxInt
	}
	slots, err := simplelru.NewLRU[string, Display](maxVisitors, nil)
	if err != nil {
		// only returned for a non-positive size
		panic(err)
	}
	return &DisplayService{
		slots:    slots,
		observer: observer,
		now:      time.Now,
	}
}

// Get returns the visitor's display. Unknown visitors are Idle.
func (s *DisplayService) Get(visitor string) Display {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.slots.Get(visitor)
	if !ok {
		return Display{Phase: PhaseIdle}
	}
	return d
}

// Begin moves the visitor to Loading from any phase. A previous result stays
// in the slot until a resolution replaces it; a previous error does not.
func (s *DisplayService) Begin(visitor, version string) Display {
	return s.update(visitor, func(d *Display) {
		d.Phase = PhaseLoading
		d.Version = version
		d.Err = nil
	})
}

// Resolve stores a successful result, replacing whatever was there.
func (s *DisplayService) Resolve(visitor string, result *AnalysisResult) Display {
	return s.update(visitor, func(d *Display) {
		d.Phase = PhaseSuccess
		d.Result = result
		d.Err = nil
	})
}

// Reject stores a failed request. The error panel replaces the result view.
func (s *DisplayService) Reject(visitor string, err error) Display {
	return s.update(visitor, func(d *Display) {
		d.Phase = PhaseError
		d.Result = nil
		d.Err = err
	})
}

// Len returns the number of tracked visitors.
func (s *DisplayService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slots.Len()
}

func (s *DisplayService) update(visitor string, fn func(*Display)) Display {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := s.slots.Get(visitor)
	if !ok {
		next = Display{Phase: PhaseIdle}
	}
	fn(&next)
	next.UpdatedAt = s.now()
	s.slots.Add(visitor, next)

	if s.observer != nil {
		s.observer.ObserveTransition(next.Phase)
	}
	return next
}
