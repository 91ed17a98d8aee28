package models

import (
	"sort"
	"strings"
)

// Membership records which standards contain a control.
// Count always equals len(Standards).
type Membership struct {
	Count     int
	Standards map[string]struct{}
}

// Sorted returns the standard names in lexicographic order.
func (m Membership) Sorted() []string {
	names := make([]string, 0, len(m.Standards))
	for name := range m.Standards {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the control belongs to the named standard.
func (m Membership) Has(standard string) bool {
	_, ok := m.Standards[standard]
	return ok
}

// Joined renders the sorted standard names separated by ", ", or
// NotAvailable when the control belongs to no standard.
func (m Membership) Joined() string {
	if len(m.Standards) == 0 {
		return NotAvailable
	}
	return strings.Join(m.Sorted(), ", ")
}

// MembershipIndex maps a control identifier to the standards containing it.
// It is built once by a single owner and read concurrently afterwards.
type MembershipIndex struct {
	entries map[string]*Membership
}

// NewMembershipIndex returns an empty index.
func NewMembershipIndex() *MembershipIndex {
	return &MembershipIndex{entries: make(map[string]*Membership)}
}

// Add records that controlID is part of standard. Adding the same pair twice
// is a no-op so Count never exceeds the number of distinct standards.
func (idx *MembershipIndex) Add(controlID, standard string) {
	m, ok := idx.entries[controlID]
	if !ok {
		m = &Membership{Standards: make(map[string]struct{})}
		idx.entries[controlID] = m
	}
	if _, seen := m.Standards[standard]; seen {
		return
	}
	m.Standards[standard] = struct{}{}
	m.Count++
}

// Lookup returns the membership of controlID. The zero Membership and false
// are returned when the control appears in no standard.
func (idx *MembershipIndex) Lookup(controlID string) (Membership, bool) {
	m, ok := idx.entries[controlID]
	if !ok {
		return Membership{}, false
	}
	return *m, true
}

// Len returns the number of indexed controls.
func (idx *MembershipIndex) Len() int {
	return len(idx.entries)
}
