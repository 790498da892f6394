package diagfmt

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto keeps the path the file was reported with.
	PathModeAuto PathMode = iota
	// PathModeAbsolute always uses absolute paths.
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// PrettyOpts configures pretty-printing of offenses.
type PrettyOpts struct {
	Color    bool
	Context  int8 // строки контекста перед строкой оффенса
	PathMode PathMode
	BaseDir  string
	Width    uint16 // максимальная ширина строки исходника, 0 - не ограничено
	TabWidth int
}

// JSONOpts configures JSON output of offenses.
type JSONOpts struct {
	PathMode PathMode
	BaseDir  string
	Max      int // обрезка вывода по числу оффенсов
	Version  string
}

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InvocationArgs []string
	BaseDir        string
}
