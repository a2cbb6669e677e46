package database

import (
	"github.com/nao1215/codebook/internal/validate"
)

// Comparison lists how the issues of two builds differ.
type Comparison struct {
	Previous *BuildRecord
	Current  *BuildRecord

	// New holds issues present only in Current, Resolved those present
	// only in Previous. Both keep the order of their source report.
	New      []validate.Issue
	Resolved []validate.Issue

	// Unchanged counts issues present in both builds.
	Unchanged int

	DigestChanged bool
}

// issueKey identifies an issue across builds. Count and message may
// change while the issue stays the same.
type issueKey struct {
	kind   validate.Kind
	column string
	value  string
}

func keyOf(i validate.Issue) issueKey {
	return issueKey{kind: i.Kind, column: i.Column, value: i.Value}
}

// Compare diffs the issue sets of two builds. A nil previous build treats
// every current issue as new.
func Compare(previous, current *BuildRecord) Comparison {
	c := Comparison{Previous: previous, Current: current}
	if current == nil {
		return c
	}

	before := make(map[issueKey]bool)
	if previous != nil {
		for _, i := range previous.Issues {
			before[keyOf(i)] = true
		}
		c.DigestChanged = previous.Digest != current.Digest
	}

	after := make(map[issueKey]bool, len(current.Issues))
	for _, i := range current.Issues {
		k := keyOf(i)
		after[k] = true
		if before[k] {
			c.Unchanged++
			continue
		}
		c.New = append(c.New, i)
	}

	if previous != nil {
		for _, i := range previous.Issues {
			if !after[keyOf(i)] {
				c.Resolved = append(c.Resolved, i)
			}
		}
	}
	return c
}

// HasChanges reports whether any issue appeared or was resolved.
func (c Comparison) HasChanges() bool {
	return len(c.New) > 0 || len(c.Resolved) > 0
}
