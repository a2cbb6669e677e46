package validate

import (
	"fmt"

	"github.com/nao1215/codebook/internal/model"
)

// Options tunes how observed values are checked.
type Options struct {
	// DateLayouts are tried in order for date columns.
	// model.DefaultDateLayouts is used when empty.
	DateLayouts []string

	// Vocabularies lets coded columns without an inline code set be checked
	// against their referenced vocabulary.
	Vocabularies model.Vocabularies
}

// Validate cross-checks metadata against table.
//
// Issues are ordered by ColumnSpec insertion order and then by discovery
// order within a column. Warnings about undeclared table columns follow,
// in table column order.
func Validate(metadata *model.MetadataModel, table *model.Table, opts Options) *Report {
	var issues []Issue

	for _, spec := range metadata.Specs() {
		values, ok := table.Column(spec.Name)
		if !ok {
			issues = append(issues, newIssue(KindMissingInData, spec.Name, "", 0,
				"declared in metadata but not present in the data table"))
			continue
		}
		issues = append(issues, checkColumn(spec, values, opts)...)
	}

	for _, name := range table.ColumnNames() {
		if !metadata.Has(name) {
			issues = append(issues, newIssue(KindUndeclaredInMetadata, name, "", 0,
				"present in the data table but not declared in metadata; excluded from the codebook"))
		}
	}

	return newReport(issues)
}

// columnScan accumulates the issues of one column in discovery order,
// folding repeated offending values into a single counted issue.
type columnScan struct {
	spec   model.ColumnSpec
	issues []Issue
	seen   map[string]int
}

func (c *columnScan) add(is Issue) {
	c.issues = append(c.issues, is)
}

func (c *columnScan) offending(value, message string) {
	if i, ok := c.seen[value]; ok {
		c.issues[i].Count++
		return
	}
	if c.seen == nil {
		c.seen = make(map[string]int)
	}
	c.seen[value] = len(c.issues)
	c.add(newIssue(KindOutOfVocabulary, c.spec.Name, value, 1, message))
}

func checkColumn(spec model.ColumnSpec, values []model.Value, opts Options) []Issue {
	scan := &columnScan{spec: spec}

	switch spec.Type {
	case model.TypeContinuous:
		checkNumeric(scan, values)
	case model.TypeDate:
		checkDates(scan, values, opts.DateLayouts)
	case model.TypeCategorical, model.TypeText, model.TypeIdentifier:
		if spec.Type == model.TypeCategorical && spec.ValidValues == nil && spec.VocabularyRef == "" {
			scan.add(newIssue(KindMissingValidValues, spec.Name, "", 0,
				"categorical variable declares no valid values"))
		}
		checkCodes(scan, values, opts.Vocabularies)
		if spec.Type == model.TypeIdentifier {
			checkUnique(scan, values)
		}
	}

	return scan.issues
}

func checkNumeric(scan *columnScan, values []model.Value) {
	rng, hasRange := scan.spec.ValidValues.(model.NumericRange)
	mismatched := false
	for _, v := range values {
		if scan.spec.IsMissing(v) {
			continue
		}
		x, ok := model.ParseNumber(v)
		if !ok {
			if !mismatched {
				mismatched = true
				scan.add(newIssue(KindTypeMismatch, scan.spec.Name, v.Text(), 1,
					"value is not a number"))
			}
			continue
		}
		if hasRange && !rng.Contains(x) {
			scan.offending(v.Text(), "outside declared range "+rng.Describe())
		}
	}
}

func checkDates(scan *columnScan, values []model.Value, layouts []string) {
	rng, hasRange := scan.spec.ValidValues.(model.DateRange)
	mismatched := false
	for _, v := range values {
		if scan.spec.IsMissing(v) {
			continue
		}
		t, ok := model.ParseDate(v, layouts)
		if !ok {
			if !mismatched {
				mismatched = true
				scan.add(newIssue(KindTypeMismatch, scan.spec.Name, v.Text(), 1,
					"value is not a recognised date"))
			}
			continue
		}
		if hasRange && !rng.Contains(t) {
			scan.offending(v.Text(), "outside declared range "+rng.Describe())
		}
	}
}

// checkCodes flags values outside the inline code set or, failing that,
// outside the referenced vocabulary.
func checkCodes(scan *columnScan, values []model.Value, vocabularies model.Vocabularies) {
	var allowed func(string) bool
	var source string

	if cs, ok := scan.spec.CodeSet(); ok {
		allowed = cs.Contains
		source = "declared valid values"
	} else if voc, ok := vocabularies.Lookup(scan.spec.VocabularyRef); ok && scan.spec.VocabularyRef != "" {
		allowed = func(code string) bool {
			_, ok := voc[code]
			return ok
		}
		source = fmt.Sprintf("vocabulary %q", scan.spec.VocabularyRef)
	}
	if allowed == nil {
		return
	}

	for _, v := range values {
		if scan.spec.IsMissing(v) {
			continue
		}
		code := v.Text()
		if !allowed(code) {
			scan.offending(code, "not in "+source)
		}
	}
}

func checkUnique(scan *columnScan, values []model.Value) {
	counts := make(map[string]int, len(values))
	var first string
	dupRows := 0
	for _, v := range values {
		if scan.spec.IsMissing(v) {
			continue
		}
		key := v.Text()
		counts[key]++
		if counts[key] == 2 && first == "" {
			first = key
		}
		if counts[key] > 1 {
			dupRows++
		}
	}
	if dupRows == 0 {
		return
	}
	scan.add(newIssue(KindDuplicateIdentifier, scan.spec.Name, first, dupRows,
		fmt.Sprintf("%d rows repeat an identifier already seen", dupRows)))
}
