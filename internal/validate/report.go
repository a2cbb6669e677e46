package validate

// Report is the result of one validation run. It is immutable once
// returned by Validate.
type Report struct {
	issues   []Issue
	excluded map[string]Issue
}

func newReport(issues []Issue) *Report {
	r := &Report{
		issues:   issues,
		excluded: make(map[string]Issue),
	}
	for _, is := range issues {
		if !is.IsError() {
			continue
		}
		if _, seen := r.excluded[is.Column]; !seen {
			r.excluded[is.Column] = is
		}
	}
	return r
}

// Issues returns a copy of all issues in report order.
func (r *Report) Issues() []Issue {
	if r == nil {
		return nil
	}
	out := make([]Issue, len(r.issues))
	copy(out, r.issues)
	return out
}

// Errors returns the issues with error severity.
func (r *Report) Errors() []Issue {
	return r.filter(SeverityError)
}

// Warnings returns the issues with warning severity.
func (r *Report) Warnings() []Issue {
	return r.filter(SeverityWarning)
}

func (r *Report) filter(sev Severity) []Issue {
	if r == nil {
		return nil
	}
	var out []Issue
	for _, is := range r.issues {
		if is.Severity == sev {
			out = append(out, is)
		}
	}
	return out
}

// HasErrors reports whether any column is excluded.
func (r *Report) HasErrors() bool {
	return r != nil && len(r.excluded) > 0
}

// Len returns the total number of issues.
func (r *Report) Len() int {
	if r == nil {
		return 0
	}
	return len(r.issues)
}

// Excluded returns the first error issue recorded for column, which is the
// reason its entry is replaced by a placeholder.
func (r *Report) Excluded(column string) (Issue, bool) {
	if r == nil {
		return Issue{}, false
	}
	is, ok := r.excluded[column]
	return is, ok
}

// ByKind returns the issues of the given kind in report order.
func (r *Report) ByKind(kind Kind) []Issue {
	if r == nil {
		return nil
	}
	var out []Issue
	for _, is := range r.issues {
		if is.Kind == kind {
			out = append(out, is)
		}
	}
	return out
}
