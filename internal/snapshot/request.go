package snapshot

import (
	"encoding/json"
	"errors"
)

// ErrMissingProject reports an editor snapshot without a resolvable project
// section. Nothing can be submitted for such an item.
var ErrMissingProject = errors.New("project not found in editor snapshot")

// RenderRequest is the complete render submission payload.
type RenderRequest struct {
	RenderType string     `json:"render_type"`
	Data       RenderData `json:"data"`
}

// RenderData combines project identity with the ordered track list.
type RenderData struct {
	DubbingID string          `json:"dubbing_id"`
	UserID    string          `json:"user_id"`
	Language  string          `json:"language"`
	Media     json.RawMessage `json:"media"`
	Tracks    []Track         `json:"tracks"`
}

// BuildRenderRequest assembles the mp4 render payload for an editor snapshot.
func BuildRenderRequest(snap *EditorSnapshot) (*RenderRequest, error) {
	if snap == nil || snap.Projects.Project == nil {
		return nil, ErrMissingProject
	}
	project := snap.Projects.Project
	return &RenderRequest{
		RenderType: "mp4",
		Data: RenderData{
			DubbingID: project.DubbingID,
			UserID:    project.UserID,
			Language:  project.SelectedLanguage,
			Media:     project.Media,
			Tracks:    BuildTracks(snap),
		},
	}, nil
}
