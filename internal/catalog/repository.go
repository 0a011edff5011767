package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"niva/internal/logging"
)

// Repository is the in-memory scheme catalog. It preserves dataset insertion
// order, which fuzzy lookup depends on for deterministic tie-breaking.
type Repository struct {
	schemes []Scheme
	byID    map[string]int
}

// NewRepository builds a repository from pre-parsed scheme records.
// Returns an error on duplicate or empty ids, missing bilingual names, or an
// unknown sector.
func NewRepository(schemes []Scheme) (*Repository, error) {
	r := &Repository{
		schemes: make([]Scheme, len(schemes)),
		byID:    make(map[string]int, len(schemes)),
	}
	copy(r.schemes, schemes)

	for i, s := range r.schemes {
		if s.ID == "" {
			return nil, fmt.Errorf("scheme %d: missing id", i)
		}
		if _, dup := r.byID[s.ID]; dup {
			return nil, fmt.Errorf("scheme %q: duplicate id", s.ID)
		}
		if s.NameEN == "" || s.NameTE == "" {
			return nil, fmt.Errorf("scheme %q: both-language names required", s.ID)
		}
		if !ValidSector(s.Sector) {
			return nil, fmt.Errorf("scheme %q: unknown sector %q", s.ID, s.Sector)
		}
		r.byID[s.ID] = i
	}

	return r, nil
}

// Load reads the scheme dataset from a JSON file and builds the repository.
// Called once at startup; the result is read-only for the process lifetime.
func Load(path string) (*Repository, error) {
	timer := logging.StartTimer(logging.CategoryCatalog, "Load")
	defer timer.Stop()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scheme dataset: %w", err)
	}

	var schemes []Scheme
	if err := json.Unmarshal(data, &schemes); err != nil {
		return nil, fmt.Errorf("failed to parse scheme dataset: %w", err)
	}

	repo, err := NewRepository(schemes)
	if err != nil {
		return nil, fmt.Errorf("invalid scheme dataset %s: %w", path, err)
	}

	logging.Catalog("Loaded %d schemes from %s", repo.Len(), path)
	return repo, nil
}

// Len returns the number of schemes in the catalog.
func (r *Repository) Len() int {
	return len(r.schemes)
}

// All returns every scheme in catalog order. The returned slice is shared;
// callers must not modify it.
func (r *Repository) All() []Scheme {
	return r.schemes
}

// Get returns the scheme with the exact id.
func (r *Repository) Get(id string) (*Scheme, bool) {
	i, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return &r.schemes[i], true
}

// FindByRef resolves a free-form scheme reference. A reference matches when
// it is a case-insensitive substring of a scheme's id, English name, or
// Telugu name. The catalog is scanned in insertion order and the first match
// wins; ties are not detected.
func (r *Repository) FindByRef(ref string) (*Scheme, bool) {
	needle := strings.ToLower(strings.TrimSpace(ref))
	if needle == "" {
		return nil, false
	}
	for i := range r.schemes {
		s := &r.schemes[i]
		if strings.Contains(strings.ToLower(s.ID), needle) ||
			strings.Contains(strings.ToLower(s.NameEN), needle) ||
			strings.Contains(strings.ToLower(s.NameTE), needle) {
			logging.CatalogDebug("Resolved ref %q to scheme %s", ref, s.ID)
			return s, true
		}
	}
	logging.CatalogDebug("Ref %q did not resolve", ref)
	return nil, false
}

// BySector returns the schemes in a sector, in catalog order.
func (r *Repository) BySector(sector Sector) []Scheme {
	var out []Scheme
	for _, s := range r.schemes {
		if s.Sector == sector {
			out = append(out, s)
		}
	}
	return out
}
