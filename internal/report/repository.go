package report

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed builtin/*.yaml
var builtinFiles embed.FS

// Repository holds the report definitions of a run, keyed by name. It is
// loaded once at startup.
type Repository struct {
	source string
	defs   map[string]Definition
}

// NewRepository loads every *.yaml and *.yml file in dir, one definition per
// file. When dir is empty, missing or holds no definitions the built-in
// reports are used instead.
func NewRepository(dir string) (*Repository, error) {
	if dir != "" {
		info, err := os.Stat(dir)
		switch {
		case os.IsNotExist(err):
			slog.Info("[Reports] Directory not found, using built-in reports", "dir", dir)
		case err != nil:
			return nil, fmt.Errorf("report dir: %w", err)
		case !info.IsDir():
			return nil, fmt.Errorf("report path %q is not a directory", dir)
		default:
			repo, err := load(os.DirFS(dir), dir)
			if err != nil {
				return nil, err
			}
			if len(repo.defs) > 0 {
				return repo, nil
			}
			slog.Info("[Reports] No definitions found, using built-in reports", "dir", dir)
		}
	}
	return Builtin()
}

// Builtin returns the reports shipped with the binary.
func Builtin() (*Repository, error) {
	sub, err := fs.Sub(builtinFiles, "builtin")
	if err != nil {
		return nil, fmt.Errorf("built-in reports: %w", err)
	}
	return load(sub, "builtin")
}

func load(fsys fs.FS, source string) (*Repository, error) {
	repo := &Repository{source: source, defs: make(map[string]Definition)}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading report dir %s: %w", source, err)
	}

	for _, e := range entries {
		if e.IsDir() || (!strings.HasSuffix(e.Name(), ".yaml") && !strings.HasSuffix(e.Name(), ".yml")) {
			continue
		}

		data, err := fs.ReadFile(fsys, e.Name())
		if err != nil {
			return nil, fmt.Errorf("reading report file %s/%s: %w", source, e.Name(), err)
		}

		def, ok, err := parseDefinition(data)
		if err != nil {
			return nil, fmt.Errorf("parsing report file %s/%s: %w", source, e.Name(), err)
		}
		if !ok {
			continue // empty or comment-only file
		}

		if _, exists := repo.defs[def.Name]; exists {
			return nil, fmt.Errorf("report %q: duplicate report name (check multiple YAML files)", def.Name)
		}
		repo.defs[def.Name] = def
	}

	slog.Info("[Reports] Definitions loaded", "source", source, "count", len(repo.defs))
	return repo, nil
}

// parseDefinition decodes and prepares one definition. Unknown keys are
// rejected.
func parseDefinition(data []byte) (Definition, bool, error) {
	var def Definition
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return Definition{}, false, nil
		}
		return Definition{}, false, err
	}
	if def.Name == "" && def.Window == "" && len(def.Sinks) == 0 {
		return Definition{}, false, nil
	}
	if err := def.Prepare(); err != nil {
		return Definition{}, false, err
	}
	return def, true, nil
}

// Source names where the definitions came from: a directory or "builtin".
func (r *Repository) Source() string {
	return r.source
}

// Get returns the definition with the given name.
func (r *Repository) Get(name string) (Definition, error) {
	def, ok := r.defs[name]
	if !ok {
		return Definition{}, fmt.Errorf("report %q not found", name)
	}
	return def, nil
}

// List returns every definition ordered by name.
func (r *Repository) List() []Definition {
	out := make([]Definition, 0, len(r.defs))
	for _, def := range r.defs {
		out = append(out, def)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Select resolves names to definitions, keeping the given order. An empty
// names selects every definition.
func (r *Repository) Select(names []string) ([]Definition, error) {
	if len(names) == 0 {
		return r.List(), nil
	}
	out := make([]Definition, 0, len(names))
	for _, name := range names {
		def, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, nil
}
