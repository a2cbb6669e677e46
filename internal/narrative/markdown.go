package narrative

import (
	"regexp"
	"strings"

	"github.com/nao1215/codebook/internal/codebook"
)

var (
	linkPattern   = regexp.MustCompile(`\[([^\]]*)\]\(([^)]*)\)`)
	imagePattern  = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	strongPattern = regexp.MustCompile(`(\*\*|__)(.+?)(\*\*|__)`)
	emPattern     = regexp.MustCompile(`(^|\W)(\*|_)([^*_]+?)(\*|_)(\W|$)`)
	listPattern   = regexp.MustCompile(`^\s*([-*+]|\d+[.)])\s+`)
)

// ParseMarkdown converts markdown text to a narrative section.
// ATX headings ("# Title") become headings, blank lines separate
// paragraphs, and each list item becomes its own paragraph. Inline markup
// is reduced to plain text.
func ParseMarkdown(src string) *codebook.Narrative {
	s := &section{}
	inFence := false
	for _, line := range strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			s.flush()
			inFence = !inFence
			continue
		}
		if inFence {
			s.text(trimmed)
			s.flush()
			continue
		}

		switch {
		case trimmed == "":
			s.flush()
		case strings.HasPrefix(trimmed, "#"):
			level := len(trimmed) - len(strings.TrimLeft(trimmed, "#"))
			if level > 6 || (len(trimmed) > level && trimmed[level] != ' ') {
				s.text(plain(trimmed) + "\n")
				continue
			}
			s.heading(plain(strings.TrimRight(trimmed[level:], "# ")), level)
		case isRule(trimmed):
			s.flush()
		case listPattern.MatchString(line):
			s.flush()
			s.text(plain(listPattern.ReplaceAllString(line, "")))
			s.flush()
		default:
			s.text(plain(strings.TrimPrefix(trimmed, "> ")) + "\n")
		}
	}
	return s.result()
}

func isRule(line string) bool {
	if len(line) < 3 {
		return false
	}
	c := line[0]
	if c != '-' && c != '*' && c != '_' {
		return false
	}
	return strings.Trim(line, string(c)+" ") == ""
}

// plain strips inline markdown from a line.
func plain(s string) string {
	s = imagePattern.ReplaceAllString(s, "$1")
	s = linkPattern.ReplaceAllStringFunc(s, func(m string) string {
		parts := linkPattern.FindStringSubmatch(m)
		if parts[1] == "" || parts[1] == parts[2] {
			return parts[2]
		}
		return parts[1] + " (" + parts[2] + ")"
	})
	s = strongPattern.ReplaceAllString(s, "$2")
	s = emPattern.ReplaceAllString(s, "$1$3$5")
	return strings.ReplaceAll(s, "`", "")
}
