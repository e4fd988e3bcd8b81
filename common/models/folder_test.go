package models

import (
	"testing"

	"github.com/remixlabs/ledger/common/tier"
)

func baseArtifact() *Artifact {
	return &Artifact{
		ID:           "jacob-1-track-abcd1234",
		Name:         "track.mp3",
		Actor:        "Jacob",
		Type:         KindAudio,
		Format:       "mp3",
		Tags:         []string{"audio"},
		Tier:         tier.Founder,
		RemixHistory: []RemixEntry{},
	}
}

func TestFolderizeOriginal(t *testing.T) {
	got := Folderize(baseArtifact())
	want := "Jacob/audio/founder/original"
	if got != want {
		t.Errorf("Folderize = %q, want %q", got, want)
	}
}

func TestFolderizeDeterministic(t *testing.T) {
	a := baseArtifact()
	first := Folderize(a)
	for i := 0; i < 10; i++ {
		if got := Folderize(a); got != first {
			t.Fatalf("Folderize not deterministic: %q then %q", first, got)
		}
	}
}

func TestFolderizeSegmentOrder(t *testing.T) {
	a := baseArtifact()
	a.RemixHistory = []RemixEntry{{Action: ActionRemixed, Actor: "Fan1", NewArtifactID: "x"}}
	a.Crowned = true
	a.Graveyarded = true

	got := Folderize(a)
	want := "Jacob/audio/founder/remixed/crowned/graveyard"
	if got != want {
		t.Errorf("Folderize = %q, want %q", got, want)
	}
}

func TestFolderizeToggles(t *testing.T) {
	a := baseArtifact()
	original := Folderize(a)

	a.RemixHistory = []RemixEntry{{Action: ActionRemixed, Actor: "Fan1", NewArtifactID: "x"}}
	remixed := Folderize(a)
	if remixed == original {
		t.Error("recording a remix should change the path")
	}

	a.Crowned = true
	crowned := Folderize(a)
	if crowned == remixed {
		t.Error("crowning should change the path")
	}

	a.Graveyarded = true
	if Folderize(a) == crowned {
		t.Error("graveyarding should change the path")
	}
}
