package listing

import (
	"context"
	"fmt"
	"sync"

	"github.com/barkshad/Real-estate/internal/models"
)

// Phase tells a renderer which of the three list states to draw
type Phase string

const (
	// PhaseLoading means no snapshot has arrived yet
	PhaseLoading Phase = "loading"
	// PhaseEmpty means a snapshot arrived and nothing is left to show
	PhaseEmpty Phase = "empty"
	PhaseReady Phase = "ready"
)

// View is the display-ready state of a ViewModel
type View struct {
	Phase      Phase             `json:"phase"`
	Scope      Scope             `json:"scope"`
	Filter     FilterOptions     `json:"filter"`
	Properties []models.Property `json:"properties"`
	// Total is the size of the unfiltered snapshot
	Total int `json:"total"`
	// Revision increases on every state change
	Revision uint64 `json:"revision"`
}

// ViewModel keeps a filtered view over a live listing collection. The
// collection is replaced wholesale by every snapshot; the output is always
// Apply(collection, filter).
type ViewModel struct {
	mu       sync.Mutex
	scope    Scope
	filter   FilterOptions
	received bool
	all      []models.Property
	revision uint64
	closed   bool

	updates chan View
	done    chan struct{}
}

// NewViewModel creates a view model in the loading phase
func NewViewModel(scope Scope, filter FilterOptions) *ViewModel {
	return &ViewModel{
		scope:   scope,
		filter:  filter,
		updates: make(chan View, 1),
		done:    make(chan struct{}),
	}
}

// Scope returns the scope the view model was created for
func (vm *ViewModel) Scope() Scope {
	return vm.scope
}

// Receive replaces the held collection with the snapshot. A snapshot that
// carries an error is treated as an empty collection. Records outside the
// view model's scope are dropped. It reports whether the state changed.
func (vm *ViewModel) Receive(s Snapshot) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.closed || s.Scope != vm.scope {
		return false
	}

	all := make([]models.Property, 0, len(s.Properties))
	if s.Err == nil {
		for i := range s.Properties {
			if vm.scope.Includes(&s.Properties[i]) {
				all = append(all, s.Properties[i])
			}
		}
	}
	vm.all = all
	vm.received = true
	vm.changedLocked()
	return true
}

// SetFilter replaces the filter
func (vm *ViewModel) SetFilter(f FilterOptions) {
	vm.UpdateFilter(func(current *FilterOptions) { *current = f })
}

// UpdateFilter edits the filter in place
func (vm *ViewModel) UpdateFilter(edit func(*FilterOptions)) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.closed {
		return
	}
	edit(&vm.filter)
	vm.changedLocked()
}

// ResetFilter restores the default filter
func (vm *ViewModel) ResetFilter() {
	vm.SetFilter(DefaultFilterOptions())
}

// Filter returns the current filter
func (vm *ViewModel) Filter() FilterOptions {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.filter
}

// View computes the current display state
func (vm *ViewModel) View() View {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.viewLocked()
}

func (vm *ViewModel) viewLocked() View {
	v := View{
		Phase:      PhaseLoading,
		Scope:      vm.scope,
		Filter:     vm.filter,
		Properties: []models.Property{},
		Total:      len(vm.all),
		Revision:   vm.revision,
	}
	if !vm.received {
		return v
	}
	v.Properties = Apply(vm.all, vm.filter)
	if len(v.Properties) == 0 {
		v.Phase = PhaseEmpty
	} else {
		v.Phase = PhaseReady
	}
	return v
}

func (vm *ViewModel) changedLocked() {
	vm.revision++
	v := vm.viewLocked()

	// Only the newest view matters; replace any unread one.
	select {
	case vm.updates <- v:
	default:
		select {
		case <-vm.updates:
		default:
		}
		vm.updates <- v
	}
}

// Updates delivers the latest view after every change. Unread views are
// replaced by newer ones.
func (vm *ViewModel) Updates() <-chan View {
	return vm.updates
}

// Done is closed when the view model is closed
func (vm *ViewModel) Done() <-chan struct{} {
	return vm.done
}

// Close tears the view model down. No snapshot or filter change is applied
// after Close returns.
func (vm *ViewModel) Close() {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if vm.closed {
		return
	}
	vm.closed = true
	close(vm.done)
}

// Closed reports whether Close has been called
func (vm *ViewModel) Closed() bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.closed
}

// Run subscribes to the feed and applies snapshots until ctx is canceled,
// the subscription ends, or the view model is closed. A failed subscribe
// leaves the view model in the empty phase rather than loading forever.
func (vm *ViewModel) Run(ctx context.Context, feed Feed) error {
	sub, err := feed.Subscribe(ctx, vm.scope)
	if err != nil {
		vm.Receive(Snapshot{Scope: vm.scope, Err: err})
		return fmt.Errorf("subscribe to %s listings: %w", vm.scope, err)
	}
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-vm.done:
			return nil
		case <-sub.Done():
			return nil
		case s := <-sub.Updates():
			vm.Receive(s)
		}
	}
}
