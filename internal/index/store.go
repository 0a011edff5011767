// Package index implements the semantic search collaborator: a persistent
// SQLite index over the scheme catalog. Embeddings are stored as
// little-endian float32 blobs and searched with sqlite-vec's
// vec_distance_cosine when the extension is compiled in (sqlite_vec build
// tag); otherwise search degrades to keyword matching over the indexed
// document text. The index is populated only when empty, so rebuilds are
// idempotent for identical catalog contents.
package index

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"niva/internal/catalog"
	"niva/internal/embedding"
	"niva/internal/logging"
)

// Match is one semantic search hit.
type Match struct {
	ID         string
	NameEN     string
	NameTE     string
	Sector     string
	BenefitsEN string
	BenefitsTE string
	Similarity float64 // Cosine similarity (1 - cosine distance)
	Rank       int     // 1-based result rank
}

// Store is the persistent scheme index.
type Store struct {
	db         *sql.DB
	path       string
	engine     embedding.Engine // nil disables the vector path
	vecEnabled bool
	mu         sync.RWMutex
}

// Open opens (or creates) the index database at path. engine may be nil, in
// which case only keyword search is available.
func Open(path string, engine embedding.Engine) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryIndex, "Open")
	defer timer.Stop()

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create index directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify index database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schemes_index (
			id          TEXT PRIMARY KEY,
			content     TEXT NOT NULL,
			name_en     TEXT NOT NULL,
			name_te     TEXT NOT NULL,
			sector      TEXT NOT NULL,
			benefits_en TEXT,
			benefits_te TEXT,
			embedding   BLOB
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index schema: %w", err)
	}

	s := &Store{
		db:         db,
		path:       path,
		engine:     engine,
		vecEnabled: probeVec(db),
	}

	logging.Index("Index opened at %s (vec=%v, engine=%s)", path, s.vecEnabled, engineName(engine))
	return s, nil
}

func engineName(e embedding.Engine) string {
	if e == nil {
		return "none"
	}
	return e.Name()
}

// probeVec reports whether the sqlite-vec extension is loaded into this
// connection.
func probeVec(db *sql.DB) bool {
	var version string
	if err := db.QueryRow("SELECT vec_version()").Scan(&version); err != nil {
		return false
	}
	logging.IndexDebug("sqlite-vec available: %s", version)
	return true
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Count returns the number of indexed documents.
func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM schemes_index").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count index entries: %w", err)
	}
	return n, nil
}

// documentText builds the rich text that gets embedded and keyword-matched
// for one scheme: both-language names, descriptions and benefits plus the
// sector.
func documentText(s *catalog.Scheme) string {
	return fmt.Sprintf("%s %s\n%s %s\n%s %s\nSector: %s",
		s.NameEN, s.NameTE,
		s.DescriptionEN, s.DescriptionTE,
		s.BenefitsEN, s.BenefitsTE,
		s.Sector)
}

// EnsurePopulated indexes the catalog if and only if the index is empty.
// Embedding failures degrade to a keyword-only index rather than failing.
func (s *Store) EnsurePopulated(ctx context.Context, repo *catalog.Repository) error {
	timer := logging.StartTimer(logging.CategoryIndex, "EnsurePopulated")
	defer timer.Stop()

	count, err := s.Count()
	if err != nil {
		return err
	}
	if count > 0 {
		logging.IndexDebug("Index already populated (%d entries), skipping", count)
		return nil
	}

	return s.populate(ctx, repo)
}

// Rebuild drops all index entries and repopulates from the catalog.
func (s *Store) Rebuild(ctx context.Context, repo *catalog.Repository) error {
	timer := logging.StartTimer(logging.CategoryIndex, "Rebuild")
	defer timer.Stop()

	s.mu.Lock()
	_, err := s.db.Exec("DELETE FROM schemes_index")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}

	return s.populate(ctx, repo)
}

func (s *Store) populate(ctx context.Context, repo *catalog.Repository) error {
	schemes := repo.All()
	docs := make([]string, len(schemes))
	for i := range schemes {
		docs[i] = documentText(&schemes[i])
	}

	var vectors [][]float32
	if s.engine != nil {
		var err error
		vectors, err = s.engine.EmbedBatch(ctx, docs)
		if err != nil {
			logging.Get(logging.CategoryIndex).Warn("Embedding failed, indexing without vectors: %v", err)
			vectors = nil
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin index transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO schemes_index
			(id, content, name_en, name_te, sector, benefits_en, benefits_te, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare index insert: %w", err)
	}
	defer stmt.Close()

	for i := range schemes {
		sc := &schemes[i]
		var blob []byte
		if vectors != nil && i < len(vectors) {
			blob = encodeFloat32Blob(vectors[i])
		}
		if _, err := stmt.Exec(sc.ID, docs[i], sc.NameEN, sc.NameTE, string(sc.Sector),
			sc.BenefitsEN, sc.BenefitsTE, blob); err != nil {
			return fmt.Errorf("failed to index scheme %s: %w", sc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit index: %w", err)
	}

	logging.Index("Indexed %d schemes (vectors=%v)", len(schemes), vectors != nil)
	return nil
}

// Search finds the topK most relevant schemes for the query and returns a
// formatted text block in the requested language. Vector search is used when
// both sqlite-vec and an embedding engine are available; otherwise keyword
// matching over the indexed document text.
func (s *Store) Search(ctx context.Context, query string, lang catalog.Language, topK int) (string, error) {
	timer := logging.StartTimer(logging.CategoryIndex, "Search")
	defer timer.Stop()

	if topK <= 0 {
		topK = 3
	}

	var (
		matches []Match
		err     error
	)
	if s.vecEnabled && s.engine != nil {
		matches, err = s.vectorSearch(ctx, query, topK)
	} else {
		matches, err = s.keywordSearch(ctx, query, topK)
	}
	if err != nil {
		return "", err
	}

	if len(matches) == 0 {
		if lang == catalog.LanguageTelugu {
			return "కోరిన యోజనలు కనబడలేదు.", nil
		}
		return "No schemes found.", nil
	}

	var b strings.Builder
	for _, m := range matches {
		name, benefits := m.NameEN, m.BenefitsEN
		if lang == catalog.LanguageTelugu {
			name, benefits = m.NameTE, m.BenefitsTE
		}
		if lang == catalog.LanguageTelugu {
			fmt.Fprintf(&b, "%d. **%s** (%s)\n   లాభాలు: %s\n\n", m.Rank, name, m.Sector, benefits)
		} else {
			fmt.Fprintf(&b, "%d. **%s** (%s)\n   Benefits: %s\n\n", m.Rank, name, m.Sector, benefits)
		}
	}
	return b.String(), nil
}

// vectorSearch runs ANN search via sqlite-vec's vec_distance_cosine.
func (s *Store) vectorSearch(ctx context.Context, query string, topK int) ([]Match, error) {
	queryVec, err := s.engine.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	queryBlob := encodeFloat32Blob(queryVec)

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name_en, name_te, sector, benefits_en, benefits_te,
		       vec_distance_cosine(embedding, ?) AS distance
		FROM schemes_index
		WHERE embedding IS NOT NULL
		ORDER BY distance ASC
		LIMIT ?
	`, queryBlob, topK)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	defer rows.Close()

	var matches []Match
	rank := 1
	for rows.Next() {
		var m Match
		var distance float64
		if err := rows.Scan(&m.ID, &m.NameEN, &m.NameTE, &m.Sector,
			&m.BenefitsEN, &m.BenefitsTE, &distance); err != nil {
			logging.Get(logging.CategoryIndex).Warn("Failed to scan index row: %v", err)
			continue
		}
		// Cosine distance is 1 - similarity
		m.Similarity = 1.0 - distance
		m.Rank = rank
		rank++
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating index results: %w", err)
	}

	logging.IndexDebug("Vector search %q returned %d matches", query, len(matches))
	return matches, nil
}

// keywordSearch matches any whitespace-separated query keyword against the
// indexed document text. Fallback path when vectors are unavailable.
func (s *Store) keywordSearch(ctx context.Context, query string, topK int) ([]Match, error) {
	keywords := strings.Fields(strings.ToLower(query))
	if len(keywords) == 0 {
		return nil, nil
	}

	var conditions []string
	var args []interface{}
	for _, kw := range keywords {
		conditions = append(conditions, "LOWER(content) LIKE ?")
		args = append(args, "%"+kw+"%")
	}
	args = append(args, topK)

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, name_en, name_te, sector, benefits_en, benefits_te
		FROM schemes_index
		WHERE %s
		ORDER BY rowid ASC
		LIMIT ?
	`, strings.Join(conditions, " OR ")), args...)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}
	defer rows.Close()

	var matches []Match
	rank := 1
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ID, &m.NameEN, &m.NameTE, &m.Sector,
			&m.BenefitsEN, &m.BenefitsTE); err != nil {
			continue
		}
		m.Rank = rank
		rank++
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating index results: %w", err)
	}

	logging.IndexDebug("Keyword search %q returned %d matches", query, len(matches))
	return matches, nil
}

// encodeFloat32Blob encodes a vector as the little-endian float32 blob
// format sqlite-vec expects.
func encodeFloat32Blob(vec []float32) []byte {
	buf := &bytes.Buffer{}
	if err := binary.Write(buf, binary.LittleEndian, vec); err != nil {
		// Should never happen with bytes.Buffer
		return nil
	}
	return buf.Bytes()
}
