package application

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ChrisRuff/obsidian-localai/internal/domain"
)

var embedPattern = regexp.MustCompile(`!\[\[(.*?)\]\]`)

// ParseEmbed returns the filename of the first ![[...]] reference in text.
func ParseEmbed(text string) (string, bool) {
	m := embedPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// FindFile matches by file name only, never by path.
func FindFile(files []domain.FileRef, name string) (domain.FileRef, bool) {
	for _, f := range files {
		if f.Name == name {
			return f, true
		}
	}
	return domain.FileRef{}, false
}

// FormatTranscript renders one "\[<seconds> s\]: <text>" line per segment.
func FormatTranscript(segments []domain.Segment) string {
	lines := make([]string, 0, len(segments))
	for _, s := range segments {
		lines = append(lines, `\[`+formatSeconds(s.Start/1e9)+` s\]: `+s.Text)
	}
	return strings.Join(lines, "\n")
}

// formatSeconds prints the shortest decimal form, switching to exponent
// notation below 1e-6 and from 1e21 up, with no padding in the exponent
// ("5e-7", "1e+21").
func formatSeconds(v float64) string {
	abs := math.Abs(v)
	if abs == 0 || (abs >= 1e-6 && abs < 1e21) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	out := strconv.FormatFloat(v, 'e', -1, 64)
	out = strings.Replace(out, "e-0", "e-", 1)
	return strings.Replace(out, "e+0", "e+", 1)
}
