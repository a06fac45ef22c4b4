package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/lists"
	"github.com/starford/folio/internal/models"
)

const (
	listExt          = ".jsonl"
	settingsFileName = "settings.yaml"
	maxLineBytes     = 1 << 20
)

// FS implements Provider with JSONL files in a local directory.
type FS struct {
	root string // absolute path to data directory
}

// NewFS creates a new FS provider rooted at the given directory, creating
// it when missing.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute data directory.
func (f *FS) Root() string {
	return f.root
}

// Path returns the file backing list.
func (f *FS) Path(list List) string {
	return filepath.Join(f.root, string(list)+listExt)
}

// ListFromFileName reports which list a file belongs to, judged by its base name.
func ListFromFileName(name string) (List, bool) {
	base := filepath.Base(name)
	for _, l := range Lists {
		if base == string(l)+listExt {
			return l, true
		}
	}
	return "", false
}

// LoadItems reads list line by line. It never writes: records written
// before stable ids existed come back with an empty ID.
func (f *FS) LoadItems(list List) ([]models.Item, error) {
	if err := list.valid(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.Path(list))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.Item{}, nil
		}
		return nil, fmt.Errorf("storage: read %s: %w", list, err)
	}
	defer file.Close()

	items, err := decodeItems(file)
	if err != nil {
		return nil, fmt.Errorf("storage: parse %s: %w", list, err)
	}
	return items, nil
}

func decodeItems(r io.Reader) ([]models.Item, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	items := []models.Item{}
	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		var it models.Item
		if err := json.Unmarshal(raw, &it); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		items = append(items, it)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func encodeItems(items []models.Item) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range items {
		if err := enc.Encode(&items[i]); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// SaveItems atomically replaces list with items.
func (f *FS) SaveItems(list List, items []models.Item) error {
	if err := list.valid(); err != nil {
		return err
	}
	data, err := encodeItems(items)
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", list, err)
	}
	return f.write(f.Path(list), data)
}

// AppendItem appends a single record, adding a separating newline first if
// the file was left without one.
func (f *FS) AppendItem(list List, item models.Item) error {
	if err := list.valid(); err != nil {
		return err
	}
	data, err := encodeItems([]models.Item{item})
	if err != nil {
		return fmt.Errorf("storage: encode %s: %w", list, err)
	}

	file, err := os.OpenFile(f.Path(list), os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("storage: open %s: %w", list, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("storage: stat %s: %w", list, err)
	}
	if size := info.Size(); size > 0 {
		last := make([]byte, 1)
		if _, err := file.ReadAt(last, size-1); err != nil {
			return fmt.Errorf("storage: read %s: %w", list, err)
		}
		if last[0] != '\n' {
			data = append([]byte{'\n'}, data...)
		}
	}

	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("storage: append %s: %w", list, err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	return nil
}

// Checksum returns the SHA-256 of the list file.
func (f *FS) Checksum(list List) (string, error) {
	if err := list.valid(); err != nil {
		return "", err
	}
	file, err := os.Open(f.Path(list))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("storage: read %s: %w", list, err)
	}
	defer file.Close()

	sum, err := checksum.SumReader(file)
	if err != nil {
		return "", fmt.Errorf("storage: checksum %s: %w", list, err)
	}
	return sum, nil
}

// LoadSettings reads settings.yaml over the defaults.
func (f *FS) LoadSettings() (lists.Settings, error) {
	s := lists.DefaultSettings()
	data, err := os.ReadFile(filepath.Join(f.root, settingsFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return s, fmt.Errorf("storage: read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("storage: parse settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("storage: settings: %w", err)
	}
	return s, nil
}

// SaveSettings validates s and writes settings.yaml.
func (f *FS) SaveSettings(s lists.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := yaml.Marshal(&s)
	if err != nil {
		return fmt.Errorf("storage: encode settings: %w", err)
	}
	return f.write(filepath.Join(f.root, settingsFileName), data)
}

// write atomically writes content: tmp file → fsync → rename → fsync dir.
func (f *FS) write(abs string, content []byte) error {
	dir := filepath.Dir(abs)
	tmp, err := os.CreateTemp(dir, ".folio-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("storage: chmod temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true

	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}

// Verify *FS satisfies Provider at compile time.
var _ Provider = (*FS)(nil)
