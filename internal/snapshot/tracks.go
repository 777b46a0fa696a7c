package snapshot

// Track is one ordered clip sequence in a render payload.
type Track struct {
	ID    string `json:"id"`
	Clips []Clip `json:"clips"`
}

// Clip is the projected render form of a snapshot clip.
type Clip struct {
	ID            string    `json:"id"`
	MediaOffset   float64   `json:"media_offset"`
	MediaDuration float64   `json:"media_duration"`
	Trim          Trim      `json:"trim"`
	Media         ClipMedia `json:"media"`
	Volume        float64   `json:"volume"`
}

// ClipMedia mirrors RawMedia on the submission side.
type ClipMedia struct {
	URL             string  `json:"url"`
	Src             string  `json:"src"`
	DurationSeconds float64 `json:"duration_secs"`
	ContentType     string  `json:"content_type"`
	SourceSlug      string  `json:"random_path_slug"`
	IsAudio         bool    `json:"is_audio"`
}

// BuildTracks converts the per-category track and clip collections of an
// editor snapshot into the ordered track list a render submission expects.
//
// Background and foreground clips are grouped onto the track whose id they
// declare. Target tracks each receive the full target clip set regardless of
// the clips' own track tags; the upstream renderer depends on this fan-out,
// so it is deliberate behavior here rather than a grouping bug.
func BuildTracks(snap *EditorSnapshot) []Track {
	if snap == nil {
		return nil
	}

	tracks := make([]Track, 0, snap.BackgroundTracks.Len()+snap.ForegroundTracks.Len()+snap.TargetTracks.Len())
	tracks = append(tracks, groupByTrack(snap.BackgroundTracks, snap.BackgroundClips)...)
	tracks = append(tracks, groupByTrack(snap.ForegroundTracks, snap.ForegroundClips)...)

	targetClips := projectClips(snap.TargetClips.Clips())
	for _, trackID := range snap.TargetTracks.IDs() {
		tracks = append(tracks, Track{ID: trackID, Clips: targetClips})
	}
	return tracks
}

func groupByTrack(set TrackSet, clips ClipSet) []Track {
	all := clips.Clips()
	tracks := make([]Track, 0, set.Len())
	for _, trackID := range set.IDs() {
		grouped := make([]Clip, 0)
		for _, clip := range all {
			if clip.TrackID == trackID {
				grouped = append(grouped, projectClip(clip))
			}
		}
		tracks = append(tracks, Track{ID: trackID, Clips: grouped})
	}
	return tracks
}

func projectClips(raw []RawClip) []Clip {
	clips := make([]Clip, 0, len(raw))
	for _, clip := range raw {
		clips = append(clips, projectClip(clip))
	}
	return clips
}

// projectClip copies timing, trim, and volume fields verbatim, filling the
// documented defaults for absent values: duration falls back to the source
// media length, trim to the full clip, volume to zero.
func projectClip(raw RawClip) Clip {
	clip := Clip{
		ID: raw.ID,
		Media: ClipMedia{
			URL:             raw.Media.URL,
			Src:             raw.Media.Src,
			DurationSeconds: raw.Media.DurationSeconds,
			ContentType:     raw.Media.ContentType,
			SourceSlug:      raw.Media.SourceSlug,
			IsAudio:         raw.Media.IsAudio,
		},
		Trim: Trim{Start: 0, End: 1},
	}
	if raw.MediaOffset != nil {
		clip.MediaOffset = *raw.MediaOffset
	}
	if raw.MediaDuration != nil {
		clip.MediaDuration = *raw.MediaDuration
	} else {
		clip.MediaDuration = raw.Media.DurationSeconds
	}
	if raw.Trim != nil {
		clip.Trim = *raw.Trim
	}
	if raw.Volume != nil {
		clip.Volume = *raw.Volume
	}
	return clip
}
