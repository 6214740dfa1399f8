package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return Open(filepath.Join(t.TempDir(), "rundown.json"), zerolog.Nop())
}

// buildTree creates one program with two episodes; the first episode has
// two topics, the first topic has two media items.
func buildTree(t *testing.T, s *Store) (Program, []Episode, []Topic, []MediaItem) {
	t.Helper()

	p := s.CreateProgram(Program{Title: "Show A"})
	e1 := s.CreateEpisode(p.ID, Episode{Title: "Ep 1", Number: 1})
	e2 := s.CreateEpisode(p.ID, Episode{Title: "Ep 2", Number: 2})
	t1 := s.CreateTopic(p.ID, e1.ID, Topic{Title: "Intro"})
	t2 := s.CreateTopic(p.ID, e1.ID, Topic{Title: "Outro"})
	m1 := s.CreateMediaItem(p.ID, e1.ID, t1.ID, MediaItem{Type: "image", Content: "a.png"})
	m2 := s.CreateMediaItem(p.ID, e1.ID, t1.ID, MediaItem{Type: "video", Content: "b.mp4"})
	return p, []Episode{e1, e2}, []Topic{t1, t2}, []MediaItem{m1, m2}
}

func TestCreateAssignsMonotonicIDs(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	p1 := s.CreateProgram(Program{Title: "one"})
	p2 := s.CreateProgram(Program{Title: "two"})
	require.Equal(t, 1, p1.ID)
	require.Equal(t, 2, p2.ID)

	_, err := s.DeleteProgram(p2.ID)
	require.NoError(t, err)

	// Ids are never reused, even after deletion.
	p3 := s.CreateProgram(Program{Title: "three"})
	require.Equal(t, 3, p3.ID)
}

func TestCreateProgramAppliesEffectDefaults(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	p := s.CreateProgram(Program{Title: "bare"})
	assert.Equal(t, DefaultLogoEffect, p.LogoEffect)
	assert.Equal(t, DefaultLogoEffectIntensity, p.LogoEffectIntensity)
	assert.Equal(t, DefaultLogoPosition, p.LogoPosition)
	assert.Equal(t, DefaultLogoSize, p.LogoSize)
	assert.Equal(t, DefaultMediaEffect, p.MediaAppearEffect)
	assert.Equal(t, DefaultMediaEffect, p.MediaDisappearEffect)

	// Explicit values survive.
	q := s.CreateProgram(Program{Title: "styled", LogoEffect: "glow", LogoSize: 60})
	assert.Equal(t, "glow", q.LogoEffect)
	assert.Equal(t, 60, q.LogoSize)
}

func TestChildCreationDenormalizesAncestorIDs(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	p, eps, tops, media := buildTree(t, s)

	for _, e := range eps {
		require.Equal(t, p.ID, e.ProgramID)
	}
	for _, tp := range tops {
		require.Equal(t, p.ID, tp.ProgramID)
		require.Equal(t, eps[0].ID, tp.EpisodeID)
	}
	for _, m := range media {
		require.Equal(t, p.ID, m.ProgramID)
		require.Equal(t, eps[0].ID, m.EpisodeID)
		require.Equal(t, tops[0].ID, m.TopicID)
	}
}

func TestCascadeDeleteProgram(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	p, _, _, _ := buildTree(t, s)
	other := s.CreateProgram(Program{Title: "Show B"})
	otherEp := s.CreateEpisode(other.ID, Episode{Title: "B1"})

	removed, err := s.DeleteProgram(p.ID)
	require.NoError(t, err)
	require.Equal(t, p.ID, removed.ID)

	// Nothing referencing the deleted program survives in any collection.
	for _, e := range s.doc.Episodes {
		assert.NotEqual(t, p.ID, e.ProgramID)
	}
	for _, tp := range s.doc.Topics {
		assert.NotEqual(t, p.ID, tp.ProgramID)
	}
	for _, m := range s.doc.MediaItems {
		assert.NotEqual(t, p.ID, m.ProgramID)
	}

	// The unrelated program keeps its subtree.
	got, err := s.GetEpisode(other.ID, otherEp.ID)
	require.NoError(t, err)
	assert.Equal(t, "B1", got.Title)
}

func TestCascadeDeleteEpisodeLeavesSiblings(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	p, eps, _, _ := buildTree(t, s)
	siblingTopic := s.CreateTopic(p.ID, eps[1].ID, Topic{Title: "Sibling"})

	_, err := s.DeleteEpisode(p.ID, eps[0].ID)
	require.NoError(t, err)

	// The deleted episode's topics and media are gone.
	assert.Empty(t, s.ListTopics(p.ID, eps[0].ID))
	for _, m := range s.doc.MediaItems {
		assert.NotEqual(t, eps[0].ID, m.EpisodeID)
	}

	// The sibling episode and its topic survive.
	_, err = s.GetEpisode(p.ID, eps[1].ID)
	require.NoError(t, err)
	_, err = s.GetTopic(p.ID, eps[1].ID, siblingTopic.ID)
	require.NoError(t, err)
}

func TestCascadeDeleteTopic(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	p, eps, tops, _ := buildTree(t, s)
	keepMedia := s.CreateMediaItem(p.ID, eps[0].ID, tops[1].ID, MediaItem{Type: "text", Content: "kept"})

	_, err := s.DeleteTopic(p.ID, eps[0].ID, tops[0].ID)
	require.NoError(t, err)

	assert.Empty(t, s.ListMediaItems(p.ID, eps[0].ID, tops[0].ID))
	got, err := s.GetMediaItem(p.ID, eps[0].ID, tops[1].ID, keepMedia.ID)
	require.NoError(t, err)
	assert.Equal(t, "kept", got.Content)
}

func TestDeleteMissingIsNotFound(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	_, err := s.DeleteProgram(42)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.DeleteEpisode(1, 42)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.DeleteTopic(1, 1, 42)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.DeleteMediaItem(1, 1, 1, 42)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestScopedLookupRejectsWrongAncestors(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	p, eps, _, _ := buildTree(t, s)

	_, err := s.GetEpisode(p.ID+99, eps[0].ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateMergesAndPreservesIdentity(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	p := s.CreateProgram(Program{Title: "Show A", Description: "desc"})

	// A client trying to smuggle a new id through the patch body only
	// changes the fields the patch type knows about.
	var patch ProgramPatch
	require.NoError(t, json.Unmarshal([]byte(`{"id":999,"title":"Renamed"}`), &patch))

	updated, err := s.UpdateProgram(p.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, p.ID, updated.ID)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "desc", updated.Description, "unpatched fields stay")
}

func TestUpdateEpisodePreservesAncestors(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	p, eps, _, _ := buildTree(t, s)

	var patch EpisodePatch
	require.NoError(t, json.Unmarshal([]byte(`{"programId":77,"title":"Renamed"}`), &patch))

	updated, err := s.UpdateEpisode(p.ID, eps[0].ID, patch)
	require.NoError(t, err)
	assert.Equal(t, p.ID, updated.ProgramID)
	assert.Equal(t, "Renamed", updated.Title)
}

func TestMediaOrderAppends(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	p, eps, tops, media := buildTree(t, s)

	assert.Equal(t, 0, media[0].Order)
	assert.Equal(t, 1, media[1].Order)

	m3 := s.CreateMediaItem(p.ID, eps[0].ID, tops[0].ID, MediaItem{Type: "text"})
	assert.Equal(t, 2, m3.Order)
}

func TestReorderMedia(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	p, eps, tops, media := buildTree(t, s)
	m3 := s.CreateMediaItem(p.ID, eps[0].ID, tops[0].ID, MediaItem{Type: "text"})

	// Listed items lead in the given sequence; the unlisted item follows.
	items := s.ReorderMedia(p.ID, eps[0].ID, tops[0].ID, []int{m3.ID, media[0].ID})
	require.Len(t, items, 3)
	assert.Equal(t, m3.ID, items[0].ID)
	assert.Equal(t, media[0].ID, items[1].ID)
	assert.Equal(t, media[1].ID, items[2].ID)

	for i, m := range items {
		assert.Equal(t, i, m.Order)
	}
}

func TestReorderIgnoresForeignAndDuplicateIDs(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	p, eps, tops, media := buildTree(t, s)

	items := s.ReorderMedia(p.ID, eps[0].ID, tops[0].ID, []int{999, media[1].ID, media[1].ID})
	require.Len(t, items, 2)
	assert.Equal(t, media[1].ID, items[0].ID)
	assert.Equal(t, media[0].ID, items[1].ID)
	assert.Equal(t, []int{0, 1}, []int{items[0].Order, items[1].Order})
}

func TestReorderProducesDenseSequence(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	p := s.CreateProgram(Program{Title: "p"})
	e := s.CreateEpisode(p.ID, Episode{})
	tp := s.CreateTopic(p.ID, e.ID, Topic{})

	ids := make([]int, 0, 5)
	for i := 0; i < 5; i++ {
		ids = append(ids, s.CreateMediaItem(p.ID, e.ID, tp.ID, MediaItem{}).ID)
	}

	// A partial permutation still yields orders {0..n-1} with no gaps.
	items := s.ReorderMedia(p.ID, e.ID, tp.ID, []int{ids[3], ids[1]})
	require.Len(t, items, 5)
	seen := map[int]bool{}
	for _, m := range items {
		seen[m.Order] = true
	}
	for want := 0; want < 5; want++ {
		assert.True(t, seen[want], "order %d missing", want)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "rundown.json")

	s := Open(path, zerolog.Nop())
	p, eps, tops, media := buildTree(t, s)

	// A fresh process sees the identical records and counter state.
	reopened := Open(path, zerolog.Nop())
	require.Equal(t, s.ListPrograms(), reopened.ListPrograms())
	require.Equal(t, s.ListEpisodes(p.ID), reopened.ListEpisodes(p.ID))
	require.Equal(t, s.ListTopics(p.ID, eps[0].ID), reopened.ListTopics(p.ID, eps[0].ID))
	require.Equal(t, s.ListMediaItems(p.ID, eps[0].ID, tops[0].ID), reopened.ListMediaItems(p.ID, eps[0].ID, tops[0].ID))

	next := reopened.CreateMediaItem(p.ID, eps[0].ID, tops[0].ID, MediaItem{})
	assert.Equal(t, media[1].ID+1, next.ID, "counters continue after reload")
}

func TestPersistedDocumentShape(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "rundown.json")

	s := Open(path, zerolog.Nop())
	s.CreateProgram(Program{Title: "Show A"})

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{
		"programs", "episodes", "topics", "mediaItems",
		"nextProgramId", "nextEpisodeId", "nextTopicId", "nextMediaId",
	} {
		assert.Contains(t, raw, key)
	}
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)

	assert.Empty(t, s.ListPrograms())
	p := s.CreateProgram(Program{})
	assert.Equal(t, 1, p.ID, "counters start at 1")
}

func TestOpenCorruptFileStartsEmpty(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "rundown.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0644))

	s := Open(path, zerolog.Nop())
	assert.Empty(t, s.ListPrograms())
	assert.Equal(t, 1, s.CreateProgram(Program{}).ID)
}

func TestPersistFailureKeepsMemoryAuthoritative(t *testing.T) {
	t.Parallel()

	// A store pointed at an unwritable path still serves mutations.
	s := Open(filepath.Join(t.TempDir(), "no-such-dir", "rundown.json"), zerolog.Nop())
	p := s.CreateProgram(Program{Title: "survives"})

	got, err := s.GetProgram(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "survives", got.Title)
}
