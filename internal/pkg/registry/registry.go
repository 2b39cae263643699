// Package registry tracks the identities and colors of connected users.
//
// The registry keeps two views of the connected-user set. The authoritative
// set is what clients have been told. The provisional set collects liveness
// responses during a sweep and atomically replaces the authoritative set at
// sweep commit; absence from it after a full cycle means the holder vanished
// and is dropped. This double buffer is the only mechanism by which
// identities are ever removed.
package registry

import (
	"sort"
	"sync"
)

// PlaceholderColor is assigned to a freshly allocated identity until the
// client confirms its real color.
const PlaceholderColor = "#000000"

// User is one connected user's record.
type User struct {
	Identity int
	Color    string
}

// Registry is the mutex-guarded connected-user store.
type Registry struct {
	authoritative map[int]string
	provisional   map[int]string
	sweeping      bool
	mu            sync.Mutex
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{
		authoritative: make(map[int]string),
		provisional:   make(map[int]string),
	}
}

// Allocate returns the smallest positive integer not currently held by any
// tracked record, inserting a placeholder-colored record into both the
// authoritative and provisional sets. Adding to both keeps a client that
// joins mid-sweep from being dropped at the next commit.
func (r *Registry) Allocate() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := 1
	for {
		_, inAuth := r.authoritative[id]
		_, inProv := r.provisional[id]
		if !inAuth && !inProv {
			break
		}
		id++
	}
	r.authoritative[id] = PlaceholderColor
	r.provisional[id] = PlaceholderColor
	return id
}

// Confirm updates the color of an identity in the authoritative set.
// Referencing an identity the registry does not hold is reported to the
// caller, never fatal to the connection.
func (r *Registry) Confirm(identity int, color string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.authoritative[identity]; !ok {
		return ErrUnknownIdentity
	}
	r.authoritative[identity] = color
	return nil
}

// RecordProvisional inserts or updates an entry in the provisional set only.
func (r *Registry) RecordProvisional(identity int, color string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.provisional[identity] = color
}

// Apply routes an update to the set appropriate for the current sweep phase.
// While a sweep is in progress the authoritative set is about to be
// superseded, so the update lands in the provisional set instead.
func (r *Registry) Apply(identity int, color string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sweeping {
		r.provisional[identity] = color
		return nil
	}
	if _, ok := r.authoritative[identity]; !ok {
		return ErrUnknownIdentity
	}
	r.authoritative[identity] = color
	return nil
}

// BeginSweep clears the provisional set and raises the sweeping flag.
func (r *Registry) BeginSweep() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.provisional = make(map[int]string)
	r.sweeping = true
}

// CommitSweep atomically replaces the authoritative set with the provisional
// set and returns the new set sorted by identity.
func (r *Registry) CommitSweep() []User {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.authoritative = r.provisional
	r.provisional = make(map[int]string)
	r.sweeping = false
	return sortedUsers(r.authoritative)
}

// Sweeping reports whether a sweep is in progress.
func (r *Registry) Sweeping() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sweeping
}

// Snapshot returns the authoritative set sorted by identity.
func (r *Registry) Snapshot() []User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortedUsers(r.authoritative)
}

// Len returns the size of the authoritative set.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.authoritative)
}

func sortedUsers(set map[int]string) []User {
	users := make([]User, 0, len(set))
	for id, color := range set {
		users = append(users, User{Identity: id, Color: color})
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].Identity < users[j].Identity
	})
	return users
}
