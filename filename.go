package loggit

/*
File-name templates. Reuses the template compiler and then narrows the result:
only {time}, {date} and {level} may appear (a file name cannot depend on
per-call data), the characters '<', '>', '&' and '%' are rejected outright
(color regions make no sense in file names and the rest are unsafe), and the
template must end in a literal run carrying a recognized extension.
*/

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrForbiddenCharacter = errors.New("forbidden character in file template")
	ErrForbiddenPart      = errors.New("placeholder not allowed in file names")
	ErrNoExtension        = errors.New("file template must end with an extension")
	ErrBadExtension       = errors.New("unsupported file extension")
	ErrEmptyTemplate      = errors.New("empty file template")
)

const fileForbiddenChars = "<>&%"

// acceptable extensions for generated log files
var fileExtensions = []string{"txt", "log"}

func isAcceptableExtension(ext string) bool {
	for _, e := range fileExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// parseFileTemplate compiles and validates a file-name template.
func parseFileTemplate(text string) (*fileTemplate, error) {
	if i := strings.IndexAny(text, fileForbiddenChars); i >= 0 {
		return nil, fmt.Errorf("%w: %q", ErrForbiddenCharacter, text[i])
	}
	f, err := parseFormatter(text)
	if err != nil {
		return nil, err
	}
	if len(f.parts) == 0 {
		return nil, ErrEmptyTemplate
	}
	for _, seg := range f.parts {
		switch seg.kind {
		case PART_MESSAGE, PART_FILE, PART_LINE, PART_MODULE:
			return nil, fmt.Errorf("%w: %q", ErrForbiddenPart, partName(seg.kind))
		}
	}
	last := f.parts[len(f.parts)-1]
	if last.kind != PART_TEXT || !strings.Contains(last.text, ".") {
		return nil, ErrNoExtension
	}
	dot := strings.LastIndex(last.text, ".")
	ext := last.text[dot+1:]
	if ext == "" {
		return nil, ErrNoExtension
	}
	if !isAcceptableExtension(ext) {
		return nil, fmt.Errorf("%w: %q", ErrBadExtension, ext)
	}
	// Keep the extension out of the renderable parts; expand() re-attaches it.
	parts := make([]segment, len(f.parts))
	copy(parts, f.parts)
	parts[len(parts)-1].text = last.text[:dot]
	return &fileTemplate{parts: parts, ext: ext}, nil
}

// expand renders the template at the given moment into a concrete name with
// no disambiguator. Rotation re-expands with a fresh "now" so each cycle
// picks up the current time and date.
func (t *fileTemplate) expand(now time.Time, level Level) fileName {
	var b strings.Builder
	for _, seg := range t.parts {
		switch seg.kind {
		case PART_TIME:
			b.WriteString(fileTimeString(now))
		case PART_DATE:
			b.WriteString(fileDateString(now))
		case PART_LEVEL:
			b.WriteString(level.String())
		default:
			b.WriteString(seg.text)
		}
	}
	return fileName{base: b.String(), ext: t.ext}
}

// bump increments the numeric disambiguator: none -> (1) -> (2) -> ...
func (n *fileName) bump() {
	if !n.hasNum {
		n.hasNum = true
		n.num = 1
		return
	}
	n.num++
}

// String renders base[(num)].ext.
func (n fileName) String() string {
	var b strings.Builder
	b.WriteString(n.base)
	if n.hasNum {
		fmt.Fprintf(&b, "(%d)", n.num)
	}
	b.WriteByte('.')
	b.WriteString(n.ext)
	return b.String()
}

// partName is the reverse lookup for error messages.
func partName(p partKind) string {
	for name, v := range partNames {
		if v == p {
			return name
		}
	}
	return "?"
}
