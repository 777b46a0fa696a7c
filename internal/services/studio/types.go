package studio

import (
	"encoding/json"
	"strings"
)

// Dubbing is the public-API view of a dubbing project. Only the fields the
// engine reads are modeled.
type Dubbing struct {
	DubbingID string `json:"dubbing_id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
}

// RenderResponse is the submission acknowledgement. Different deployments
// name the job id field differently, so all known aliases are decoded.
type RenderResponse struct {
	RenderID      string `json:"render_id"`
	RenderIDAlias string `json:"renderId"`
	ID            string `json:"id"`
}

// JobID returns the first non-empty job id alias.
func (r *RenderResponse) JobID() string {
	if r == nil {
		return ""
	}
	for _, candidate := range []string{r.RenderID, r.RenderIDAlias, r.ID} {
		if id := strings.TrimSpace(candidate); id != "" {
			return id
		}
	}
	return ""
}

// RenderMedia carries the rendered artifact location.
type RenderMedia struct {
	URL string `json:"url"`
}

// RenderCandidate is one render entry in the internal status feed.
type RenderCandidate struct {
	ID            string          `json:"id"`
	Progress      *float64        `json:"progress"`
	Error         json.RawMessage `json:"error"`
	Media         *RenderMedia    `json:"media"`
	Language      string          `json:"language"`
	CreatedAtUnix int64           `json:"created_at_unix"`
}

// Failed reports whether the candidate carries a non-null error payload.
func (c *RenderCandidate) Failed() bool {
	if c == nil || len(c.Error) == 0 {
		return false
	}
	return string(c.Error) != "null"
}

// MediaURL returns the rendered media location, if present.
func (c *RenderCandidate) MediaURL() string {
	if c == nil || c.Media == nil {
		return ""
	}
	return strings.TrimSpace(c.Media.URL)
}

// InternalMetadata is the status feed document for a dubbing project.
type InternalMetadata struct {
	Name           string `json:"name"`
	LatestSnapshot struct {
		Renders map[string]RenderCandidate `json:"renders"`
	} `json:"latest_snapshot"`
}

// Renders returns the status feed entries keyed by render job id.
func (m *InternalMetadata) Renders() map[string]RenderCandidate {
	if m == nil {
		return nil
	}
	return m.LatestSnapshot.Renders
}
