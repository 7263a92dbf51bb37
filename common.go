package loggit

/*
Package-wide constants, enums and helper utilities:
  - default format strings and values
  - ANSI/color related constants and the closed color set
  - enums for levels, template parts, rotation and compression kinds
  - normalization and name-lookup helpers
*/

const (
	// Log level values. The trailing _LVL_MAX_for_checks_only is used as an
	// exclusive upper bound for normalization checks and array sizing.
	LVL_TRACE Level = iota
	LVL_DEBUG
	LVL_INFO
	LVL_WARN
	LVL_ERROR
	_LVL_MAX_for_checks_only
)

const (
	// Default values used by Init().
	DEFAULT_LOG_LEVEL      = LVL_INFO
	DEFAULT_LINE_FORMAT    = "{file}-{line} <green>[{level}]<green> - {message}"
	DEFAULT_ERROR_FORMAT   = "<red>[{level}]<red> <blue>({file} {line})<blue> - <red>{message}<red>"
	DEFAULT_ARCHIVE_SUBDIR = "loggit/archives"
)

const (
	// ANSI colored text is a string like \033[38;2;⟨r⟩;⟨g⟩;⟨b⟩mSome_colored_text\033[0m
	ANSI_COL_PRFX  = "\033["
	ANSI_COL_SUFX  = "m"
	ANSI_COL_RESET = ANSI_COL_PRFX + "0" + ANSI_COL_SUFX
)

const (
	// The closed color set of the template language.
	COL_RED logColor = iota
	COL_GREEN
	COL_BLUE
	COL_YELLOW
	COL_BLACK
	COL_WHITE
	COL_PURPLE
	_COL_MAX_for_checks_only
)

const (
	// Template part kinds. PART_TEXT is a literal run, the rest are
	// placeholders.
	PART_TEXT partKind = iota
	PART_MESSAGE
	PART_TIME
	PART_DATE
	PART_FILE
	PART_LINE
	PART_LEVEL
	PART_MODULE
	_PART_MAX_for_checks_only
)

const (
	// Rotation rule kinds.
	ROT_PERIOD rotationKind = iota
	ROT_TIME_OF_DAY
	ROT_SIZE
	_ROT_MAX_for_checks_only
)

const (
	// Compression kinds. Zip is the only supported archive format.
	COMPRESS_NONE compressionKind = iota
	COMPRESS_ZIP
	_COMPRESS_MAX_for_checks_only
)

/////////////////////////////////////////////////////////////////////////////////////////

// Predefined log level names map (rendered by the {level} placeholder).
var levelNames = [_LVL_MAX_for_checks_only]string{
	"TRACE", //LVL_TRACE
	"DEBUG", //LVL_DEBUG
	"INFO",  //LVL_INFO
	"WARN",  //LVL_WARN
	"ERROR", //LVL_ERROR
}

// Truecolor specs combined with ANSI_COL_PRFX/ANSI_COL_SUFX when rendering.
var colorSpecs = [_COL_MAX_for_checks_only]string{
	"38;2;255;0;0",     //COL_RED      #FF0000
	"38;2;0;255;0",     //COL_GREEN    #00FF00
	"38;2;0;0;255",     //COL_BLUE     #0000FF
	"38;2;255;255;0",   //COL_YELLOW   #FFFF00
	"38;2;0;0;0",       //COL_BLACK    #000000
	"38;2;255;255;255", //COL_WHITE    #FFFFFF
	"38;2;128;0;128",   //COL_PURPLE   #800080
}

// Recognized names of the template language keyed to their enums.
var colorNames = map[string]logColor{
	"red":    COL_RED,
	"green":  COL_GREEN,
	"blue":   COL_BLUE,
	"yellow": COL_YELLOW,
	"black":  COL_BLACK,
	"white":  COL_WHITE,
	"purple": COL_PURPLE,
}

var partNames = map[string]partKind{
	"message": PART_MESSAGE,
	"time":    PART_TIME,
	"date":    PART_DATE,
	"file":    PART_FILE,
	"line":    PART_LINE,
	"level":   PART_LEVEL,
	"module":  PART_MODULE,
}

// Lowercase level names accepted by the config loaders.
var levelByName = map[string]Level{
	"trace": LVL_TRACE,
	"debug": LVL_DEBUG,
	"info":  LVL_INFO,
	"warn":  LVL_WARN,
	"error": LVL_ERROR,
}

/////////////////////////////////////////////////////////////////////////////////////////

// Generic byte normalization helper.
func norm_byte[T ~byte](val, overlimit, def T) T {
	if val < overlimit {
		return val
	} else {
		return def
	}
}

// Ensures a provided Level is within the valid range.
func normLevel(level Level) Level {
	return norm_byte(level, _LVL_MAX_for_checks_only, DEFAULT_LOG_LEVEL)
}

// String returns the level name used by the {level} placeholder.
func (l Level) String() string {
	return levelNames[normLevel(l)]
}

// ansi returns the full escape sequence opening a colored run.
func (c logColor) ansi() string {
	return ANSI_COL_PRFX + colorSpecs[norm_byte(c, _COL_MAX_for_checks_only, COL_WHITE)] + ANSI_COL_SUFX
}

// colorize wraps text into the color's escape sequence plus the reset code.
func colorize(text string, c logColor) string {
	return c.ansi() + text + ANSI_COL_RESET
}
