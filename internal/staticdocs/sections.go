package staticdocs

import (
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yshishenya/a101-hr-profile-generator-sub000/internal/textmatch"
)

const sectionPrefix = "## "

// splitSections splits a catalog into the text before the first "## "
// heading and one Section per heading. Deeper headings stay in the body.
func splitSections(text string) (string, []Section) {
	var preamble []string
	var sections []Section
	var body []string
	current := -1

	flush := func() {
		if current >= 0 {
			sections[current].Body = strings.TrimSpace(strings.Join(body, "\n"))
		}
		body = body[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimRight(line, "\r")
		if strings.HasPrefix(trimmed, sectionPrefix) {
			title := strings.TrimSpace(strings.TrimPrefix(trimmed, sectionPrefix))
			if title != "" {
				flush()
				sections = append(sections, Section{Title: title})
				current = len(sections) - 1
				continue
			}
		}
		if current < 0 {
			preamble = append(preamble, trimmed)
		} else {
			body = append(body, trimmed)
		}
	}
	flush()
	return strings.TrimSpace(strings.Join(preamble, "\n")), sections
}

// ITSystemsFor returns the catalog text relevant to department: the preamble
// plus the best matching section. A path is matched segment by segment from
// the deepest one up. Without sections, or without a match, the whole catalog
// is returned and section is empty.
func (l *Library) ITSystemsFor(department string) (text string, section string) {
	if len(l.sections) == 0 {
		return l.itSystems, ""
	}

	inputs := []string{department}
	if segments := textmatch.SplitPath(department); len(segments) > 1 {
		for i := len(segments) - 1; i >= 0; i-- {
			inputs = append(inputs, segments[i])
		}
	}

	for _, in := range inputs {
		if strings.TrimSpace(in) == "" {
			continue
		}
		best, ok := textmatch.Best(in, l.titles, l.threshold)
		if !ok {
			continue
		}
		s := l.sections[best.Index]
		var sb strings.Builder
		if l.preamble != "" {
			sb.WriteString(l.preamble)
			sb.WriteString("\n\n")
		}
		sb.WriteString(sectionPrefix)
		sb.WriteString(s.Title)
		if s.Body != "" {
			sb.WriteString("\n")
			sb.WriteString(s.Body)
		}
		return sb.String(), s.Title
	}

	l.logger.WithFields(logrus.Fields{
		"department": department,
		"sections":   len(l.sections),
		"threshold":  l.threshold,
	}).Debug("No IT systems section for department, using the full catalog")
	return l.itSystems, ""
}
