package model

// Vocabulary maps coded values to human-readable labels.
type Vocabulary map[string]string

// Vocabularies holds every controlled vocabulary known to a build,
// keyed by the reference used in ColumnSpec.VocabularyRef.
type Vocabularies map[string]Vocabulary

// Lookup returns the vocabulary named ref.
func (v Vocabularies) Lookup(ref string) (Vocabulary, bool) {
	if v == nil {
		return nil, false
	}
	voc, ok := v[ref]
	return voc, ok
}
