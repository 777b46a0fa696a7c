package snapshot_test

import (
	"encoding/json"
	"testing"

	"dubloom/internal/snapshot"
)

func decodeSnapshot(t *testing.T, raw string) *snapshot.EditorSnapshot {
	t.Helper()
	var snap snapshot.EditorSnapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	return &snap
}

func TestBuildTracksGroupsByDeclaredTrack(t *testing.T) {
	snap := decodeSnapshot(t, `{
		"background_tracks": {"t1": {}, "t2": {}},
		"background_clips": {
			"c1": {"id": "c1", "track_id": "t1", "media": {"duration_secs": 10}},
			"c2": {"id": "c2", "track_id": "t1", "media": {"duration_secs": 5}},
			"c3": {"id": "c3", "track_id": "t2", "media": {"duration_secs": 7}}
		}
	}`)

	tracks := snapshot.BuildTracks(snap)
	if len(tracks) != 2 {
		t.Fatalf("expected 2 tracks, got %d", len(tracks))
	}
	if tracks[0].ID != "t1" || tracks[1].ID != "t2" {
		t.Fatalf("unexpected track order: %q, %q", tracks[0].ID, tracks[1].ID)
	}
	if len(tracks[0].Clips) != 2 || tracks[0].Clips[0].ID != "c1" || tracks[0].Clips[1].ID != "c2" {
		t.Fatalf("t1 clips wrong: %+v", tracks[0].Clips)
	}
	if len(tracks[1].Clips) != 1 || tracks[1].Clips[0].ID != "c3" {
		t.Fatalf("t2 clips wrong: %+v", tracks[1].Clips)
	}
}

func TestBuildTracksReplicatesTargetClips(t *testing.T) {
	snap := decodeSnapshot(t, `{
		"target_tracks": {"ta": {}, "tb": {}},
		"target_clips": {
			"c1": {"id": "c1", "track_id": "ta", "media": {"duration_secs": 4}},
			"c2": {"id": "c2", "track_id": "tb", "media": {"duration_secs": 6}}
		}
	}`)

	tracks := snapshot.BuildTracks(snap)
	if len(tracks) != 2 {
		t.Fatalf("expected 2 target tracks, got %d", len(tracks))
	}
	for _, track := range tracks {
		if len(track.Clips) != 2 {
			t.Fatalf("track %s expected full target clip set, got %d clips", track.ID, len(track.Clips))
		}
		if track.Clips[0].ID != "c1" || track.Clips[1].ID != "c2" {
			t.Fatalf("track %s clip order wrong: %+v", track.ID, track.Clips)
		}
	}
}

func TestBuildTracksCategoryOrderAndWireOrder(t *testing.T) {
	// Track ids deliberately not sorted; wire order must win.
	snap := decodeSnapshot(t, `{
		"background_tracks": {"z-bg": {}, "a-bg": {}},
		"background_clips": {},
		"foreground_tracks": {"fg": {}},
		"foreground_clips": {},
		"target_tracks": {"tg": {}},
		"target_clips": {}
	}`)

	tracks := snapshot.BuildTracks(snap)
	got := make([]string, 0, len(tracks))
	for _, track := range tracks {
		got = append(got, track.ID)
	}
	want := []string{"z-bg", "a-bg", "fg", "tg"}
	if len(got) != len(want) {
		t.Fatalf("expected %d tracks, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("track order mismatch: got %v, want %v", got, want)
		}
	}
}

func TestProjectClipDefaults(t *testing.T) {
	snap := decodeSnapshot(t, `{
		"background_tracks": {"t1": {}},
		"background_clips": {
			"c1": {"id": "c1", "track_id": "t1", "media": {"duration_secs": 12.5, "url": "https://cdn/clip", "is_audio": true}}
		}
	}`)

	tracks := snapshot.BuildTracks(snap)
	clip := tracks[0].Clips[0]
	if clip.MediaOffset != 0 {
		t.Fatalf("expected zero offset default, got %v", clip.MediaOffset)
	}
	if clip.MediaDuration != 12.5 {
		t.Fatalf("expected duration to default to media length, got %v", clip.MediaDuration)
	}
	if clip.Trim.Start != 0 || clip.Trim.End != 1 {
		t.Fatalf("expected full-clip trim default, got %+v", clip.Trim)
	}
	if clip.Volume != 0 {
		t.Fatalf("expected zero volume default, got %v", clip.Volume)
	}
	if !clip.Media.IsAudio || clip.Media.URL != "https://cdn/clip" {
		t.Fatalf("media fields not copied: %+v", clip.Media)
	}
}

func TestProjectClipExplicitFieldsWin(t *testing.T) {
	snap := decodeSnapshot(t, `{
		"foreground_tracks": {"t1": {}},
		"foreground_clips": {
			"c1": {
				"id": "c1", "track_id": "t1",
				"media_offset": 2.5, "media_duration": 3,
				"trim": {"start": 0.25, "end": 0.75},
				"volume": 0.5,
				"media": {"duration_secs": 99}
			}
		}
	}`)

	clip := snapshot.BuildTracks(snap)[0].Clips[0]
	if clip.MediaOffset != 2.5 || clip.MediaDuration != 3 || clip.Volume != 0.5 {
		t.Fatalf("explicit fields not preserved: %+v", clip)
	}
	if clip.Trim.Start != 0.25 || clip.Trim.End != 0.75 {
		t.Fatalf("explicit trim not preserved: %+v", clip.Trim)
	}
}

func TestBuildTracksAbsentCategories(t *testing.T) {
	snap := decodeSnapshot(t, `{"background_tracks": null}`)
	if tracks := snapshot.BuildTracks(snap); len(tracks) != 0 {
		t.Fatalf("expected no tracks for empty snapshot, got %d", len(tracks))
	}
}
