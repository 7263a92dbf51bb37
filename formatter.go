package loggit

/*
Template compiler. A format template mixes literal text with {placeholder}
substitutions and <color>...<color> regions. Compilation is a three stage
pipeline working on a flat token stream (no recursion):

	scan    - classify '{', '}', '<', '>' as structural tokens, the rest
	          as literal runs
	pair    - every open delimiter must enclose exactly one literal run
	          naming a known placeholder or color
	reduce  - fold color tags into the "currently open color" and attach it
	          to the segments in between

A template either compiles completely or fails with an error; nothing is
partially applied. Compiling the same text twice yields structurally equal
formatters.
*/

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnterminatedTag    = errors.New("unterminated tag in template")
	ErrUnexpectedDelim    = errors.New("unexpected delimiter in template")
	ErrUnknownPlaceholder = errors.New("unknown placeholder")
	ErrUnknownColor       = errors.New("unknown color")
	ErrColorMismatch      = errors.New("mismatched color tags")
	ErrColorUnclosed      = errors.New("unclosed color region")
)

type tokenKind basetype

const (
	TOK_TEXT tokenKind = iota
	TOK_BRACE_OPEN
	TOK_BRACE_CLOSE
	TOK_ANGLE_OPEN
	TOK_ANGLE_CLOSE
)

type token struct {
	text string // literal payload, TOK_TEXT only
	kind tokenKind
}

// scanTemplate performs the single left-to-right scan over the template,
// emitting structural tokens for the four delimiters and collecting
// everything else into literal runs.
func scanTemplate(text string) []token {
	toks := make([]token, 0, 8)
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			toks = append(toks, token{text: lit.String(), kind: TOK_TEXT})
			lit.Reset()
		}
	}
	for _, r := range text {
		switch r {
		case '{':
			flush()
			toks = append(toks, token{kind: TOK_BRACE_OPEN})
		case '}':
			flush()
			toks = append(toks, token{kind: TOK_BRACE_CLOSE})
		case '<':
			flush()
			toks = append(toks, token{kind: TOK_ANGLE_OPEN})
		case '>':
			flush()
			toks = append(toks, token{kind: TOK_ANGLE_CLOSE})
		default:
			lit.WriteRune(r)
		}
	}
	flush()
	return toks
}

// piece is the intermediate form between token pairing and color reduction:
// a literal run, a resolved placeholder, or a color tag.
type pieceKind basetype

const (
	PIECE_TEXT pieceKind = iota
	PIECE_PART
	PIECE_COLOR
)

type piece struct {
	text  string
	kind  pieceKind
	part  partKind
	color logColor
}

// pairTokens validates delimiter pairing: '{' and '<' must enclose exactly
// one literal run naming a known placeholder or color, and closing
// delimiters may only appear where pairing expects them.
func pairTokens(toks []token) ([]piece, error) {
	pieces := make([]piece, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		switch toks[i].kind {
		case TOK_TEXT:
			pieces = append(pieces, piece{kind: PIECE_TEXT, text: toks[i].text})
		case TOK_BRACE_OPEN:
			if i+2 >= len(toks) || toks[i+1].kind != TOK_TEXT || toks[i+2].kind != TOK_BRACE_CLOSE {
				return nil, fmt.Errorf("%w: '{'", ErrUnterminatedTag)
			}
			part, ok := partNames[toks[i+1].text]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownPlaceholder, toks[i+1].text)
			}
			pieces = append(pieces, piece{kind: PIECE_PART, part: part})
			i += 2
		case TOK_ANGLE_OPEN:
			if i+2 >= len(toks) || toks[i+1].kind != TOK_TEXT || toks[i+2].kind != TOK_ANGLE_CLOSE {
				return nil, fmt.Errorf("%w: '<'", ErrUnterminatedTag)
			}
			color, ok := colorNames[toks[i+1].text]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownColor, toks[i+1].text)
			}
			pieces = append(pieces, piece{kind: PIECE_COLOR, color: color})
			i += 2
		default:
			return nil, fmt.Errorf("%w: stray '}' or '>'", ErrUnexpectedDelim)
		}
	}
	return pieces, nil
}

// reduceColorRegions folds color tags into segments. A color tag opens a
// region when none is open and closes it when it repeats the same color;
// any other combination invalidates the template.
func reduceColorRegions(pieces []piece) ([]segment, error) {
	segs := make([]segment, 0, len(pieces))
	var current logColor
	open := false
	for _, p := range pieces {
		switch p.kind {
		case PIECE_COLOR:
			switch {
			case !open:
				current = p.color
				open = true
			case p.color == current:
				open = false
			default:
				return nil, fmt.Errorf("%w: %q inside %q", ErrColorMismatch,
					colorName(p.color), colorName(current))
			}
		case PIECE_PART:
			segs = append(segs, segment{kind: p.part, color: current, hasColor: open})
		default:
			segs = append(segs, segment{kind: PART_TEXT, text: p.text, color: current, hasColor: open})
		}
	}
	if open {
		return nil, fmt.Errorf("%w: %q", ErrColorUnclosed, colorName(current))
	}
	return segs, nil
}

// parseFormatter compiles a format template into an ordered segment list.
func parseFormatter(text string) (*logFormatter, error) {
	pieces, err := pairTokens(scanTemplate(text))
	if err != nil {
		return nil, err
	}
	segs, err := reduceColorRegions(pieces)
	if err != nil {
		return nil, err
	}
	return &logFormatter{parts: segs, text: text}, nil
}

// mustFormatter is used for the built-in defaults, which are known valid.
func mustFormatter(text string) *logFormatter {
	f, err := parseFormatter(text)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in format %q: %v", text, err))
	}
	return f
}

// render resolves every segment against the record and concatenates the
// results, wrapping colored segments in escape codes when colorize is on.
func (f *logFormatter) render(rec *logRecord, colorized bool) string {
	var b strings.Builder
	for _, seg := range f.parts {
		var s string
		switch seg.kind {
		case PART_MESSAGE:
			s = rec.message
		case PART_TIME:
			s = timeString(rec.when)
		case PART_DATE:
			s = dateString(rec.when)
		case PART_FILE:
			s = rec.file
		case PART_LINE:
			s = strconv.Itoa(rec.line)
		case PART_LEVEL:
			s = rec.level.String()
		case PART_MODULE:
			s = rec.module
		default:
			s = seg.text
		}
		if colorized && seg.hasColor {
			b.WriteString(colorize(s, seg.color))
		} else {
			b.WriteString(s)
		}
	}
	return b.String()
}

// colorName is the reverse lookup for error messages.
func colorName(c logColor) string {
	for name, v := range colorNames {
		if v == c {
			return name
		}
	}
	return "?"
}
