package jsonfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const (
	BirthdaysFile = "birthdays.json"
	UsersFile     = "users.json"
)

// Store persiste en archivos JSON planos dentro de dir:
//   - birthdays.json: {"<owner>": [ {...}, ... ]}
//   - users.json:     {"<uid>": {...}}
//
// Cada escritura reescribe el archivo completo (tmp + rename). mu serializa
// los read-modify-write de ambos repos.
type Store struct {
	fs  afero.Fs
	dir string
	mu  sync.Mutex
}

// Open crea dir y los archivos vacíos si no existen.
func Open(fs afero.Fs, dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "data"
	}

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "could not create data dir %q", dir)
	}

	s := &Store{fs: fs, dir: dir}
	for _, name := range []string{BirthdaysFile, UsersFile} {
		exists, err := afero.Exists(fs, s.path(name))
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if exists {
			continue
		}
		if err := afero.WriteFile(fs, s.path(name), []byte("{}"), 0o644); err != nil {
			return nil, errors.Wrapf(err, "could not init %s", name)
		}
	}

	return s, nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

// load decodifica name en v. Un archivo vacío o ausente cuenta como "{}".
func (s *Store) load(name string, v any) error {
	raw, err := afero.ReadFile(s.fs, s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "could not read %s", name)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return errors.Wrapf(err, "could not decode %s", name)
	}
	return nil
}

func (s *Store) save(name string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "could not encode %s", name)
	}

	tmp := s.path(name + ".tmp")
	if err := afero.WriteFile(s.fs, tmp, raw, 0o644); err != nil {
		return errors.Wrapf(err, "could not write %s", tmp)
	}
	if err := s.fs.Rename(tmp, s.path(name)); err != nil {
		return errors.Wrapf(err, "could not replace %s", name)
	}
	return nil
}

// flexID acepta ids string o numéricos (los archivos antiguos usaban enteros).
type flexID string

func (id *flexID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return errors.Errorf("invalid id %s", string(b))
	}
	*id = flexID(n.String())
	return nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// parseTimestamp tolera timestamps sin zona; si no parsea devuelve el zero value.
func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC()
	}
	return time.Time{}
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
