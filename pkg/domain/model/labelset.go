package model

import "sort"

// LabelSet is an immutable set of experiment labels
type LabelSet struct {
	labels map[string]struct{}
}

// NewLabelSet builds a set from labels. Empty labels are ignored.
func NewLabelSet(labels ...string) LabelSet {
	s := LabelSet{labels: make(map[string]struct{}, len(labels))}
	for _, label := range labels {
		if label == "" {
			continue
		}
		s.labels[label] = struct{}{}
	}
	return s
}

// Has reports whether label is in the set
func (s LabelSet) Has(label string) bool {
	_, ok := s.labels[label]
	return ok
}

// Len returns the number of labels
func (s LabelSet) Len() int {
	return len(s.labels)
}

// Union returns a new set containing labels of both sets
func (s LabelSet) Union(other LabelSet) LabelSet {
	merged := make([]string, 0, s.Len()+other.Len())
	for label := range s.labels {
		merged = append(merged, label)
	}
	for label := range other.labels {
		merged = append(merged, label)
	}
	return NewLabelSet(merged...)
}

// Sorted returns labels in lexical order
func (s LabelSet) Sorted() []string {
	out := make([]string, 0, len(s.labels))
	for label := range s.labels {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}
