// Package cart holds the cart state container, its persistence codec and the
// view-model used by the HTTP layer.
package cart

import (
	"github.com/example/foodcart/pkg/models"
)

type Action string

const (
	ActionAdd         Action = "add"
	ActionRemove      Action = "remove"
	ActionSetQuantity Action = "set_quantity"
	ActionClear       Action = "clear"
	ActionHydrate     Action = "hydrate"
)

// Event is delivered to listeners after every state transition.
type Event struct {
	Action  Action
	EntryID string
	State   models.CartState
}

type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}

// Store owns a CartState and is the only place it is mutated. A Store is not safe
// for concurrent use; CartActor serializes access to it.
type Store struct {
	state     models.CartState
	listeners []subscription
	nextID    int
}

func NewStore() *Store {
	return &Store{state: models.NewCartState()}
}

// State returns a copy of the current state.
func (s *Store) State() models.CartState {
	return s.state.Clone()
}

// Subscribe registers fn to be called synchronously after each transition, in
// subscription order. The returned func removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	return func() {
		for i, sub := range s.listeners {
			if sub.id == id {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// AddLineItem adds entry, emptying the cart first when entry belongs to a
// restaurant other than the anchor. Entries with a non-positive quantity or no
// entry id are ignored.
func (s *Store) AddLineItem(entry models.LineItem) {
	s.add(entry, replaceOtherRestaurants)
}

// AddLineItemAllowingMultipleRestaurants adds entry while keeping the items of
// every other restaurant. Callers use it only after the user chose to keep both.
func (s *Store) AddLineItemAllowingMultipleRestaurants(entry models.LineItem) {
	s.add(entry, keepOtherRestaurants)
}

func (s *Store) add(entry models.LineItem, policy conflictPolicy) {
	if entry.CartEntryID == "" || entry.Quantity <= 0 {
		return
	}
	s.commit(ActionAdd, entry.CartEntryID, addLineItem(s.state, entry, policy))
}

// RemoveLineItem deletes the entry. Unknown ids are a no-op.
func (s *Store) RemoveLineItem(entryID string) {
	if next, ok := removeLineItem(s.state, entryID); ok {
		s.commit(ActionRemove, entryID, next)
	}
}

// SetQuantity updates the entry's quantity; a quantity of zero or less removes it.
func (s *Store) SetQuantity(entryID string, quantity int) {
	next, ok := setQuantity(s.state, entryID, quantity)
	if !ok {
		return
	}
	action := ActionSetQuantity
	if quantity <= 0 {
		action = ActionRemove
	}
	s.commit(action, entryID, next)
}

func (s *Store) Clear() {
	s.commit(ActionClear, "", models.NewCartState())
}

// Hydrate replaces the state with a previously persisted snapshot. Derived fields
// are recomputed rather than trusted.
func (s *Store) Hydrate(state models.CartState) {
	s.commit(ActionHydrate, "", sanitize(state))
}

func (s *Store) commit(action Action, entryID string, next models.CartState) {
	s.state = next
	if len(s.listeners) == 0 {
		return
	}
	listeners := append([]subscription(nil), s.listeners...)
	for _, sub := range listeners {
		sub.fn(Event{Action: action, EntryID: entryID, State: s.state.Clone()})
	}
}

func sanitize(state models.CartState) models.CartState {
	return settle(state.Clone())
}
