package loggit

/*
types.go

Defines the core data structures used by the logging runtime:
  - basetype and a small set of typed aliases for clarity
  - segment / logFormatter: compiled representation of a format template
  - fileTemplate / fileName: validated file-name pattern and its expansion
  - rotationRule: a single rotation constraint with its absolute trigger
  - fileManager: the exclusive-lock holder of the file output state
  - Logger: the process-wide configuration store guarded by one RWMutex
*/

import (
	"io"
	"sync"
	"time"
)

// basetype is the underlying byte-sized representation used for enums.
type basetype byte

// Strongly-typed aliases over basetype for clarity and type-safety.
type Level basetype
type logColor basetype
type partKind basetype
type rotationKind basetype
type compressionKind basetype

// segment is one unit of a compiled template: a literal run or a placeholder,
// optionally wrapped into a color region.
type segment struct {
	text     string   // literal payload (PART_TEXT only)
	kind     partKind // placeholder or literal enum
	color    logColor // color of the enclosing region (if hasColor)
	hasColor bool     // whether the segment sits inside a color region
}

// logFormatter is an ordered sequence of segments plus the template text it
// was compiled from. Rendering concatenates each segment's resolved text in
// template order.
type logFormatter struct {
	parts []segment
	text  string
}

// fileTemplate is a logFormatter restricted to the placeholders allowed in
// file names ({time}, {date}, {level} plus literal text). The trailing
// segment always carries the extension.
type fileTemplate struct {
	parts []segment
	ext   string // validated extension, without the dot
}

// fileName is a materialized file name: base[(num)].ext.
type fileName struct {
	base   string
	ext    string
	num    uint32 // numeric disambiguator, meaningful only when hasNum
	hasNum bool
}

// rotationRule is one rotation constraint. The trigger is an absolute unix
// timestamp for period/time-of-day rules; for size rules it is the byte
// threshold itself and never changes on reset.
type rotationRule struct {
	kind    rotationKind
	period  int64 // ROT_PERIOD: length of one cycle in seconds
	hour    int   // ROT_TIME_OF_DAY
	minute  int   // ROT_TIME_OF_DAY
	trigger int64 // unix seconds (period/time-of-day) or bytes (size)
}

// fileManager owns the file output state: the name template, the current
// file, the rotation rules and the compression setting. Writing mutates it
// (rotation, disambiguators), so it is guarded by its own exclusive lock and
// reached through the shared handle stored inside Logger.
type fileManager struct {
	mtx         sync.Mutex
	template    *fileTemplate
	current     fileName
	rules       []rotationRule
	compression compressionKind
}

// logRecord carries one log call through rendering.
type logRecord struct {
	when    time.Time
	message string
	file    string
	module  string
	line    int
	level   Level
}

// Logger is the process-wide configuration store. Reads take the RWMutex
// briefly and clone what they need; the lock is never held across I/O.
// The zero value is not usable, construct with Init().
type Logger struct {
	mtx        sync.RWMutex
	formats    [_LVL_MAX_for_checks_only]*logFormatter // per-level line formats
	fmanager   *fileManager                            // nil until SetFile
	archiveDir string                                  // empty means platform default
	terminal   io.Writer                               // destination for terminal output
	fallbck    io.Writer                               // destination for internal complaints
	level      Level
	printTerm  bool
	colorized  bool
}
