package workflow

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Item is one dubbing taken from the batch list file.
type Item struct {
	DubbingID string `json:"dubbingId"`
	Name      string `json:"name"`
}

// LoadBatch reads the dubbing list at path and applies offset/limit
// windowing. Rows without a dubbing id are dropped before windowing so the
// window always covers usable items. A limit of zero means no limit.
func LoadBatch(path string, offset, limit int) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch list: %w", err)
	}

	var rows []Item
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("parse batch list %s: %w", path, err)
	}

	items := make([]Item, 0, len(rows))
	for _, row := range rows {
		row.DubbingID = strings.TrimSpace(row.DubbingID)
		if row.DubbingID == "" {
			continue
		}
		items = append(items, row)
	}

	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return nil, nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items, nil
}
