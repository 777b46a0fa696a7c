package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EditorSnapshot is the raw nested editor state returned by the studio for a
// dubbing project. Track and clip collections arrive as JSON objects whose
// member order is significant for rendering, so they decode through TrackSet
// and ClipSet rather than plain maps.
type EditorSnapshot struct {
	Projects         ProjectEnvelope `json:"projects"`
	BackgroundTracks TrackSet        `json:"background_tracks"`
	BackgroundClips  ClipSet         `json:"background_clips"`
	ForegroundTracks TrackSet        `json:"foreground_tracks"`
	ForegroundClips  ClipSet         `json:"foreground_clips"`
	TargetTracks     TrackSet        `json:"target_tracks"`
	TargetClips      ClipSet         `json:"target_clips"`
}

// ProjectEnvelope wraps the project section of an editor snapshot.
type ProjectEnvelope struct {
	Project *Project `json:"project"`
}

// Project carries the identity fields a render submission needs.
type Project struct {
	DubbingID        string          `json:"dubbing_id"`
	UserID           string          `json:"user_id"`
	SelectedLanguage string          `json:"selected_language"`
	Media            json.RawMessage `json:"media"`
}

// Trim bounds a clip within its source media as fractions of the full length.
type Trim struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// RawMedia is the media descriptor attached to a snapshot clip.
type RawMedia struct {
	URL             string  `json:"url"`
	Src             string  `json:"src"`
	DurationSeconds float64 `json:"duration_secs"`
	ContentType     string  `json:"content_type"`
	SourceSlug      string  `json:"random_path_slug"`
	IsAudio         bool    `json:"is_audio"`
}

// RawClip is a clip exactly as the editor snapshot carries it. Optional
// numeric fields stay pointers so projection can distinguish absent from zero.
type RawClip struct {
	ID            string   `json:"id"`
	TrackID       string   `json:"track_id"`
	MediaOffset   *float64 `json:"media_offset"`
	MediaDuration *float64 `json:"media_duration"`
	Trim          *Trim    `json:"trim"`
	Media         RawMedia `json:"media"`
	Volume        *float64 `json:"volume"`
}

// TrackSet decodes a track-id keyed JSON object, preserving member order.
type TrackSet struct {
	ids []string
}

// IDs returns the track identifiers in wire order.
func (s TrackSet) IDs() []string {
	return s.ids
}

// Len returns the number of tracks in the set.
func (s TrackSet) Len() int {
	return len(s.ids)
}

func (s *TrackSet) UnmarshalJSON(data []byte) error {
	keys, _, err := decodeOrderedObject(data)
	if err != nil {
		return fmt.Errorf("track set: %w", err)
	}
	s.ids = keys
	return nil
}

// ClipSet decodes a clip-id keyed JSON object, preserving member order.
type ClipSet struct {
	clips []RawClip
}

// Clips returns the clips in wire order.
func (s ClipSet) Clips() []RawClip {
	return s.clips
}

// Len returns the number of clips in the set.
func (s ClipSet) Len() int {
	return len(s.clips)
}

func (s *ClipSet) UnmarshalJSON(data []byte) error {
	_, values, err := decodeOrderedObject(data)
	if err != nil {
		return fmt.Errorf("clip set: %w", err)
	}
	clips := make([]RawClip, 0, len(values))
	for _, raw := range values {
		var clip RawClip
		if err := json.Unmarshal(raw, &clip); err != nil {
			return fmt.Errorf("clip set: %w", err)
		}
		clips = append(clips, clip)
	}
	s.clips = clips
	return nil
}

// decodeOrderedObject walks a JSON object with the streaming decoder so member
// order survives. A JSON null yields an empty result.
func decodeOrderedObject(data []byte) ([]string, []json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if tok == nil {
		return nil, nil, nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var keys []string
	var values []json.RawMessage
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected object key, got %v", keyTok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		values = append(values, value)
	}
	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return keys, values, nil
}
