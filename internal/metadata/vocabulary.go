package metadata

import (
	"fmt"
	"os"

	"github.com/nao1215/codebook/internal/model"
	"gopkg.in/yaml.v3"
)

// LoadVocabularies reads a vocabulary file: a mapping from vocabulary name
// to a mapping from code to label.
func LoadVocabularies(path string) (model.Vocabularies, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided vocabulary path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file: %w", err)
	}
	v, err := ParseVocabularies(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// ParseVocabularies decodes a vocabulary document.
func ParseVocabularies(data []byte) (model.Vocabularies, error) {
	root, err := documentRoot(data)
	if err != nil {
		return nil, err
	}
	return decodeVocabularies(root)
}

func decodeVocabularies(n *yaml.Node) (model.Vocabularies, error) {
	if n.Kind != yaml.MappingNode {
		return nil, malformed(n, "vocabularies must be a mapping")
	}
	out := make(model.Vocabularies, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		name, body := n.Content[i].Value, n.Content[i+1]
		if body.Kind != yaml.MappingNode {
			return nil, malformed(body, fmt.Sprintf("vocabulary %q must map codes to labels", name))
		}
		voc := make(model.Vocabulary, len(body.Content)/2)
		for j := 0; j+1 < len(body.Content); j += 2 {
			voc[body.Content[j].Value] = scalar(body.Content[j+1])
		}
		out[name] = voc
	}
	return out, nil
}

// Merge combines vocabulary sets. Later sets replace earlier vocabularies
// of the same name.
func Merge(sets ...model.Vocabularies) model.Vocabularies {
	out := make(model.Vocabularies)
	for _, s := range sets {
		for name, voc := range s {
			out[name] = voc
		}
	}
	return out
}
