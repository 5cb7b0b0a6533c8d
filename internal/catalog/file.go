package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/oldgate-museum/booking-widget/internal/domain"
)

// FileSource loads the catalog from a JSON document on disk
type FileSource struct {
	path string
}

// NewFileSource creates a file-backed catalog source
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Load reads and parses the catalog document. An unreadable or
// undecodable file degrades to the empty catalog with every payload
// marked failed; the error is returned for logging, not as a reason to
// refuse startup.
func (s *FileSource) Load(ctx context.Context) (domain.Catalog, []PayloadResult, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return domain.EmptyCatalog(), allFailed(err), fmt.Errorf("read catalog file: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.EmptyCatalog(), allFailed(err), fmt.Errorf("decode catalog file: %w", err)
	}

	catalog, results := ParseDocument(doc)
	return catalog, results, nil
}

func allFailed(err error) []PayloadResult {
	payloads := []string{PayloadExhibitions, PayloadClosedDates, PayloadVariants, PayloadDescriptions, PayloadGiftAid}
	results := make([]PayloadResult, 0, len(payloads))
	for _, p := range payloads {
		results = append(results, PayloadResult{Payload: p, Err: err})
	}
	return results
}

var _ Source = (*FileSource)(nil)
