package story

import (
	"errors"
	"regexp"
	"strings"
)

// ErrEmptyText means the model returned nothing usable.
var ErrEmptyText = errors.New("empty story text")

var titleMarkup = regexp.MustCompile("[*#\"_`]")

// Parse splits raw model output into a title and its paragraphs. The
// first non-empty line, with markup punctuation stripped, is the title;
// every following non-empty line is one paragraph.
func Parse(raw string) (title string, paragraphs []string, err error) {
	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return "", nil, ErrEmptyText
	}

	title = strings.TrimSpace(titleMarkup.ReplaceAllString(lines[0], ""))
	paragraphs = lines[1:]
	return title, paragraphs, nil
}
