// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"sort"
)

// HashSet is a set of remote record hashes. It marshals to a sorted JSON
// array so persisted dumps are byte-stable.
type HashSet map[string]struct{}

// NewHashSet builds a set from the given hashes, ignoring empty strings.
func NewHashSet(hashes ...string) HashSet {
	s := make(HashSet, len(hashes))
	s.Add(hashes...)
	return s
}

func (s HashSet) Add(hashes ...string) {
	for _, h := range hashes {
		if h != "" {
			s[h] = struct{}{}
		}
	}
}

func (s HashSet) Remove(hashes ...string) {
	for _, h := range hashes {
		delete(s, h)
	}
}

func (s HashSet) Has(hash string) bool {
	_, ok := s[hash]
	return ok
}

// Union adds every member of other to s.
func (s HashSet) Union(other HashSet) {
	for h := range other {
		s[h] = struct{}{}
	}
}

func (s HashSet) Clone() HashSet {
	c := make(HashSet, len(s))
	c.Union(s)
	return c
}

// Sorted returns the members in lexical order.
func (s HashSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for h := range s {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// Equal reports whether both sets hold exactly the same members.
func (s HashSet) Equal(other HashSet) bool {
	if len(s) != len(other) {
		return false
	}
	for h := range s {
		if !other.Has(h) {
			return false
		}
	}
	return true
}

func (s HashSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *HashSet) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*s = NewHashSet(list...)
	return nil
}
