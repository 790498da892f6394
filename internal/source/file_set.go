package source

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"

	"fortio.org/safecast"
)

// FileSet manages a collection of source files loaded for one lint run.
// It is safe for concurrent use: workers add nested fragments while others resolve spans.
type FileSet struct {
	mu      sync.RWMutex
	files   []*File
	index   map[string]FileID // path -> id
	baseDir string            // базовая директория для относительных путей
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]*File, 0),
		index: make(map[string]FileID),
	}
}

// NewFileSetWithBase создаёт FileSet с заданной базовой директорией.
func NewFileSetWithBase(baseDir string) *FileSet {
	fs := NewFileSet()
	fs.baseDir = baseDir
	return fs
}

// SetBaseDir устанавливает базовую директорию для относительных путей.
func (fileSet *FileSet) SetBaseDir(dir string) {
	fileSet.mu.Lock()
	fileSet.baseDir = dir
	fileSet.mu.Unlock()
}

// BaseDir возвращает текущую базовую директорию.
func (fileSet *FileSet) BaseDir() string {
	fileSet.mu.RLock()
	base := fileSet.baseDir
	fileSet.mu.RUnlock()
	if base == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return base
}

// Add stores a file from normalized bytes, computes LineIdx and Hash, and returns a new FileID.
// It always creates a new FileID even if a file with the same path already exists.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	return fileSet.add(path, content, flags, nil)
}

func (fileSet *FileSet) add(path string, content []byte, flags FileFlags, crlf []uint32) FileID {
	hash := sha256.Sum256(content)
	lineIdx := buildLineIndex(content)
	normalizedPath := normalizePath(path)

	fileSet.mu.Lock()
	defer fileSet.mu.Unlock()

	lenFiles, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(lenFiles)
	fileSet.files = append(fileSet.files, &File{
		ID:      id,
		Path:    normalizedPath,
		Content: content,
		LineIdx: lineIdx,
		Hash:    hash,
		Flags:   flags,
		crlf:    crlf,
	})
	// Всегда обновляем индекс на последнюю версию файла
	fileSet.index[normalizedPath] = id
	return id
}

// Load reads a file from disk, normalizes CRLF/BOM, and calls Add.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return fileSet.AddNormalized(path, content), nil
}

// AddNormalized strips a BOM and CRLF line endings before adding the content.
// The file remembers which line breaks were CRLF, so Original and RawOffset can
// map back to the bytes on disk line by line.
func (fileSet *FileSet) AddNormalized(path string, content []byte) FileID {
	return fileSet.addRaw(path, content, 0)
}

// Reload adds a new version of prev from raw bytes, normalized like
// AddNormalized. The FileVirtual flag of prev is kept.
func (fileSet *FileSet) Reload(prev *File, raw []byte) FileID {
	return fileSet.addRaw(prev.Path, raw, prev.Flags&FileVirtual)
}

func (fileSet *FileSet) addRaw(path string, raw []byte, flags FileFlags) FileID {
	content, hadBOM := removeBOM(raw)
	content, crlf := normalizeCRLF(content)

	if hadBOM {
		flags |= FileHadBOM
	}
	if len(crlf) > 0 {
		flags |= FileNormalizedCRLF
	}
	return fileSet.add(path, content, flags, crlf)
}

// AddVirtual adds a virtual file (stdin, test, or nested fragment) with the FileVirtual flag.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns the file metadata for the given ID, or nil when the ID is unknown.
func (fileSet *FileSet) Get(id FileID) *File {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	if int(id) >= len(fileSet.files) {
		return nil
	}
	return fileSet.files[id]
}

// Len returns the number of registered files.
func (fileSet *FileSet) Len() int {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	return len(fileSet.files)
}

// GetLatest returns the latest file ID for the given path, if it exists.
func (fileSet *FileSet) GetLatest(path string) (FileID, bool) {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	id, ok := fileSet.index[normalizePath(path)]
	return id, ok
}

// Resolve converts a span into line and column positions.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fileSet.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}
	}
	return f.Resolve(span.Start), f.Resolve(span.End)
}

// Resolve converts a byte offset of f into a line/column pair.
func (f *File) Resolve(off uint32) LineCol {
	return toLineCol(f.LineIdx, off)
}

// Original returns the bytes AddNormalized was given: the BOM and every CRLF
// line break are put back where they were.
func (f *File) Original() []byte {
	if f.Flags&(FileHadBOM|FileNormalizedCRLF) == 0 {
		return f.Content
	}
	out := make([]byte, 0, len(f.Content)+len(f.crlf)+3)
	if f.Flags&FileHadBOM != 0 {
		out = append(out, 0xEF, 0xBB, 0xBF)
	}
	prev := uint32(0)
	for _, nl := range f.crlf {
		out = append(out, f.Content[prev:nl]...)
		out = append(out, '\r')
		prev = nl
	}
	return append(out, f.Content[prev:]...)
}

// RawOffset maps an offset of Content to the matching offset of Original.
// An offset at a CRLF break points before its '\r'.
func (f *File) RawOffset(off uint32) uint32 {
	n, err := safecast.Conv[uint32](sort.Search(len(f.crlf), func(i int) bool { return f.crlf[i] >= off }))
	if err != nil {
		panic(fmt.Errorf("crlf count overflow: %w", err))
	}
	raw := off + n
	if f.Flags&FileHadBOM != 0 {
		raw += 3
	}
	return raw
}

// LineBreakAt returns the line break ending the line that contains off, as it
// was on disk. The last line without a break uses the break of the line above.
func (f *File) LineBreakAt(off uint32) string {
	i := sort.Search(len(f.LineIdx), func(i int) bool { return f.LineIdx[i] >= off })
	if i == len(f.LineIdx) {
		i--
	}
	if i < 0 {
		return "\n"
	}
	nl := f.LineIdx[i]
	if _, ok := slices.BinarySearch(f.crlf, nl); ok {
		return "\r\n"
	}
	return "\n"
}

// GetLine возвращает строку с заданным номером (1-based) из файла.
// Если строка не существует, возвращает пустую строку.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}

	var start, end, lenLineIdx, lenContent uint32
	var err error
	lenLineIdx, err = safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}
	lenContent, err = safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}

	switch {
	case lineNum == 1:
		start = 0
	case (lineNum - 2) < lenLineIdx:
		start = f.LineIdx[lineNum-2] + 1
	default:
		return ""
	}

	if (lineNum - 1) < lenLineIdx {
		end = f.LineIdx[lineNum-1]
	} else {
		end = lenContent
	}

	if start >= lenContent {
		return ""
	}
	if end > lenContent {
		end = lenContent
	}

	return string(f.Content[start:end])
}

// FormatPath форматирует путь к файлу в зависимости от режима.
// mode: "absolute", "relative", "basename", "auto"
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
		return f.Path

	case "relative":
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		if rel, err := relativePath(f.Path, baseDir); err == nil {
			return rel
		}
		return f.Path

	case "basename":
		return filepath.Base(f.Path)

	case "auto":
		// Auto: если путь короткий или относительный - как есть, иначе basename
		if len(f.Path) < 40 || !filepath.IsAbs(f.Path) {
			return f.Path
		}
		return filepath.Base(f.Path)

	default:
		return f.Path
	}
}
