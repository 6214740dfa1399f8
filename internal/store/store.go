package store

import (
	"encoding/json"
	"errors"
	"os"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned when no record matches the requested id within
// the requested ancestor scope.
var ErrNotFound = errors.New("store: not found")

// document is the on-disk shape: four collections plus one id counter per
// collection. The whole document is rewritten after every mutation.
type document struct {
	Programs      []Program   `json:"programs"`
	Episodes      []Episode   `json:"episodes"`
	Topics        []Topic     `json:"topics"`
	MediaItems    []MediaItem `json:"mediaItems"`
	NextProgramID int         `json:"nextProgramId"`
	NextEpisodeID int         `json:"nextEpisodeId"`
	NextTopicID   int         `json:"nextTopicId"`
	NextMediaID   int         `json:"nextMediaId"`
}

func emptyDocument() document {
	return document{
		Programs:      []Program{},
		Episodes:      []Episode{},
		Topics:        []Topic{},
		MediaItems:    []MediaItem{},
		NextProgramID: 1,
		NextEpisodeID: 1,
		NextTopicID:   1,
		NextMediaID:   1,
	}
}

// Store holds the rundown hierarchy in memory and mirrors every mutation
// to a single JSON file. All operations are serialized by a mutex, so a
// caller observes the same semantics as a single-threaded event loop.
// In-memory state is authoritative: a failed disk write is logged and the
// mutation still stands for the life of the process.
type Store struct {
	mu   sync.Mutex
	path string
	log  zerolog.Logger
	doc  document
}

// Open loads the store from path. A missing or unparsable file is not an
// error: the store starts from an empty document and logs the fallback.
func Open(path string, log zerolog.Logger) *Store {
	s := &Store{path: path, log: log, doc: emptyDocument()}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("store file unreadable, starting empty")
		}
		return s
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("store file corrupt, starting empty")
		return s
	}

	// Tolerate hand-edited files with missing keys.
	if doc.Programs == nil {
		doc.Programs = []Program{}
	}
	if doc.Episodes == nil {
		doc.Episodes = []Episode{}
	}
	if doc.Topics == nil {
		doc.Topics = []Topic{}
	}
	if doc.MediaItems == nil {
		doc.MediaItems = []MediaItem{}
	}
	if doc.NextProgramID < 1 {
		doc.NextProgramID = 1
	}
	if doc.NextEpisodeID < 1 {
		doc.NextEpisodeID = 1
	}
	if doc.NextTopicID < 1 {
		doc.NextTopicID = 1
	}
	if doc.NextMediaID < 1 {
		doc.NextMediaID = 1
	}

	s.doc = doc
	return s
}

// save rewrites the whole document. Callers hold s.mu. Write failures are
// logged and swallowed; the in-memory mutation is not rolled back.
func (s *Store) save() {
	data, err := json.MarshalIndent(&s.doc, "", "  ")
	if err != nil {
		s.log.Error().Err(err).Msg("store: marshal failed, skipping persist")
		return
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		s.log.Error().Err(err).Str("path", tmp).Msg("store: persist failed")
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("store: persist rename failed")
	}
}

// keep filters a slice in place, retaining elements for which pred is true.
func keep[T any](in []T, pred func(T) bool) []T {
	out := in[:0]
	for _, v := range in {
		if pred(v) {
			out = append(out, v)
		}
	}
	return out
}

// Programs

// CreateProgram assigns the next program id, applies effect defaults and
// persists. Returns the stored record.
func (s *Store) CreateProgram(p Program) Program {
	s.mu.Lock()
	defer s.mu.Unlock()

	p.ID = s.doc.NextProgramID
	s.doc.NextProgramID++
	applyProgramDefaults(&p)
	s.doc.Programs = append(s.doc.Programs, p)
	s.save()
	return p
}

// ListPrograms returns all programs in creation order.
func (s *Store) ListPrograms() []Program {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Program, len(s.doc.Programs))
	copy(out, s.doc.Programs)
	return out
}

// GetProgram returns the program with the given id or ErrNotFound.
func (s *Store) GetProgram(id int) (Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.doc.Programs {
		if p.ID == id {
			return p, nil
		}
	}
	return Program{}, ErrNotFound
}

// UpdateProgram shallow-merges patch over the stored record. Identity
// cannot change: the patch carries no id field.
func (s *Store) UpdateProgram(id int, patch ProgramPatch) (Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Programs {
		p := &s.doc.Programs[i]
		if p.ID != id {
			continue
		}
		if patch.Title != nil {
			p.Title = *patch.Title
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.LogoURL != nil {
			p.LogoURL = *patch.LogoURL
		}
		if patch.LogoEffect != nil {
			p.LogoEffect = *patch.LogoEffect
		}
		if patch.LogoEffectIntensity != nil {
			p.LogoEffectIntensity = *patch.LogoEffectIntensity
		}
		if patch.LogoPosition != nil {
			p.LogoPosition = *patch.LogoPosition
		}
		if patch.LogoSize != nil {
			p.LogoSize = *patch.LogoSize
		}
		if patch.MediaAppearEffect != nil {
			p.MediaAppearEffect = *patch.MediaAppearEffect
		}
		if patch.MediaDisappearEffect != nil {
			p.MediaDisappearEffect = *patch.MediaDisappearEffect
		}
		s.save()
		return *p, nil
	}
	return Program{}, ErrNotFound
}

// DeleteProgram removes the program and cascades over every episode,
// topic and media item scoped under it. Descendants are removed with one
// compacting pass per collection and a single persist per call.
func (s *Store) DeleteProgram(id int) (Program, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, p := range s.doc.Programs {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Program{}, ErrNotFound
	}

	removed := s.doc.Programs[idx]
	s.doc.Programs = append(s.doc.Programs[:idx], s.doc.Programs[idx+1:]...)
	s.doc.Episodes = keep(s.doc.Episodes, func(e Episode) bool { return e.ProgramID != id })
	s.doc.Topics = keep(s.doc.Topics, func(t Topic) bool { return t.ProgramID != id })
	s.doc.MediaItems = keep(s.doc.MediaItems, func(m MediaItem) bool { return m.ProgramID != id })
	s.save()
	return removed, nil
}

// Episodes

// CreateEpisode assigns the next episode id and persists. The program id
// is taken from the scope argument, never from the payload. Parent
// existence is the caller's concern (validated at the HTTP layer).
func (s *Store) CreateEpisode(programID int, e Episode) Episode {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = s.doc.NextEpisodeID
	s.doc.NextEpisodeID++
	e.ProgramID = programID
	s.doc.Episodes = append(s.doc.Episodes, e)
	s.save()
	return e
}

// ListEpisodes returns the episodes of one program in creation order.
func (s *Store) ListEpisodes(programID int) []Episode {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []Episode{}
	for _, e := range s.doc.Episodes {
		if e.ProgramID == programID {
			out = append(out, e)
		}
	}
	return out
}

// GetEpisode returns the episode matching id within the program scope.
func (s *Store) GetEpisode(programID, id int) (Episode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.doc.Episodes {
		if e.ID == id && e.ProgramID == programID {
			return e, nil
		}
	}
	return Episode{}, ErrNotFound
}

// UpdateEpisode shallow-merges patch over the stored record.
func (s *Store) UpdateEpisode(programID, id int, patch EpisodePatch) (Episode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Episodes {
		e := &s.doc.Episodes[i]
		if e.ID != id || e.ProgramID != programID {
			continue
		}
		if patch.Number != nil {
			e.Number = *patch.Number
		}
		if patch.Title != nil {
			e.Title = *patch.Title
		}
		s.save()
		return *e, nil
	}
	return Episode{}, ErrNotFound
}

// DeleteEpisode removes the episode and cascades over its topics and
// media items. Sibling episodes and their descendants are untouched.
func (s *Store) DeleteEpisode(programID, id int) (Episode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, e := range s.doc.Episodes {
		if e.ID == id && e.ProgramID == programID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Episode{}, ErrNotFound
	}

	removed := s.doc.Episodes[idx]
	s.doc.Episodes = append(s.doc.Episodes[:idx], s.doc.Episodes[idx+1:]...)
	s.doc.Topics = keep(s.doc.Topics, func(t Topic) bool {
		return !(t.EpisodeID == id && t.ProgramID == programID)
	})
	s.doc.MediaItems = keep(s.doc.MediaItems, func(m MediaItem) bool {
		return !(m.EpisodeID == id && m.ProgramID == programID)
	})
	s.save()
	return removed, nil
}

// Topics

// CreateTopic assigns the next topic id and persists. Ancestor ids come
// from the scope arguments, never from the payload.
func (s *Store) CreateTopic(programID, episodeID int, t Topic) Topic {
	s.mu.Lock()
	defer s.mu.Unlock()

	t.ID = s.doc.NextTopicID
	s.doc.NextTopicID++
	t.ProgramID = programID
	t.EpisodeID = episodeID
	s.doc.Topics = append(s.doc.Topics, t)
	s.save()
	return t
}

// ListTopics returns the topics of one episode in creation order.
func (s *Store) ListTopics(programID, episodeID int) []Topic {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []Topic{}
	for _, t := range s.doc.Topics {
		if t.EpisodeID == episodeID && t.ProgramID == programID {
			out = append(out, t)
		}
	}
	return out
}

// GetTopic returns the topic matching id within the episode scope.
func (s *Store) GetTopic(programID, episodeID, id int) (Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.doc.Topics {
		if t.ID == id && t.EpisodeID == episodeID && t.ProgramID == programID {
			return t, nil
		}
	}
	return Topic{}, ErrNotFound
}

// UpdateTopic shallow-merges patch over the stored record.
func (s *Store) UpdateTopic(programID, episodeID, id int, patch TopicPatch) (Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Topics {
		t := &s.doc.Topics[i]
		if t.ID != id || t.EpisodeID != episodeID || t.ProgramID != programID {
			continue
		}
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Position != nil {
			t.Position = *patch.Position
		}
		if patch.Script != nil {
			t.Script = *patch.Script
		}
		s.save()
		return *t, nil
	}
	return Topic{}, ErrNotFound
}

// DeleteTopic removes the topic and cascades over its media items.
func (s *Store) DeleteTopic(programID, episodeID, id int) (Topic, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, t := range s.doc.Topics {
		if t.ID == id && t.EpisodeID == episodeID && t.ProgramID == programID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Topic{}, ErrNotFound
	}

	removed := s.doc.Topics[idx]
	s.doc.Topics = append(s.doc.Topics[:idx], s.doc.Topics[idx+1:]...)
	s.doc.MediaItems = keep(s.doc.MediaItems, func(m MediaItem) bool {
		return !(m.TopicID == id && m.EpisodeID == episodeID && m.ProgramID == programID)
	})
	s.save()
	return removed, nil
}

// Media items

// CreateMediaItem assigns the next media id, appends the item at the end
// of the topic's order sequence and persists.
func (s *Store) CreateMediaItem(programID, episodeID, topicID int, m MediaItem) MediaItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	m.ID = s.doc.NextMediaID
	s.doc.NextMediaID++
	m.ProgramID = programID
	m.EpisodeID = episodeID
	m.TopicID = topicID

	m.Order = 0
	for _, other := range s.doc.MediaItems {
		if other.TopicID == topicID && other.EpisodeID == episodeID && other.ProgramID == programID {
			if other.Order+1 > m.Order {
				m.Order = other.Order + 1
			}
		}
	}

	s.doc.MediaItems = append(s.doc.MediaItems, m)
	s.save()
	return m
}

// ListMediaItems returns the media items of one topic sorted by order.
func (s *Store) ListMediaItems(programID, episodeID, topicID int) []MediaItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []MediaItem{}
	for _, m := range s.doc.MediaItems {
		if m.TopicID == topicID && m.EpisodeID == episodeID && m.ProgramID == programID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// GetMediaItem returns the media item matching id within the topic scope.
func (s *Store) GetMediaItem(programID, episodeID, topicID, id int) (MediaItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.doc.MediaItems {
		if m.ID == id && m.TopicID == topicID && m.EpisodeID == episodeID && m.ProgramID == programID {
			return m, nil
		}
	}
	return MediaItem{}, ErrNotFound
}

// UpdateMediaItem shallow-merges patch over the stored record. Order is
// not patchable; use ReorderMedia.
func (s *Store) UpdateMediaItem(programID, episodeID, topicID, id int, patch MediaItemPatch) (MediaItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.MediaItems {
		m := &s.doc.MediaItems[i]
		if m.ID != id || m.TopicID != topicID || m.EpisodeID != episodeID || m.ProgramID != programID {
			continue
		}
		if patch.Type != nil {
			m.Type = *patch.Type
		}
		if patch.Content != nil {
			m.Content = *patch.Content
		}
		s.save()
		return *m, nil
	}
	return MediaItem{}, ErrNotFound
}

// DeleteMediaItem removes the media item. Remaining order values keep
// their relative sequence; density is restored on the next reorder.
func (s *Store) DeleteMediaItem(programID, episodeID, topicID, id int) (MediaItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, m := range s.doc.MediaItems {
		if m.ID == id && m.TopicID == topicID && m.EpisodeID == episodeID && m.ProgramID == programID {
			s.doc.MediaItems = append(s.doc.MediaItems[:i], s.doc.MediaItems[i+1:]...)
			s.save()
			return m, nil
		}
	}
	return MediaItem{}, ErrNotFound
}

// ReorderMedia reassigns the order sequence of one topic's media items.
// Items named in orderedIDs take order 0..n-1 in the given sequence; ids
// that do not belong to the topic (or repeat) are ignored. Remaining
// items follow, keeping their previous relative order. The result is the
// topic's items sorted by their new order.
func (s *Store) ReorderMedia(programID, episodeID, topicID int, orderedIDs []int) []MediaItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	indexByID := map[int]int{}
	topicIdx := []int{}
	for i, m := range s.doc.MediaItems {
		if m.TopicID == topicID && m.EpisodeID == episodeID && m.ProgramID == programID {
			indexByID[m.ID] = i
			topicIdx = append(topicIdx, i)
		}
	}

	next := 0
	assigned := map[int]bool{}
	for _, id := range orderedIDs {
		i, ok := indexByID[id]
		if !ok || assigned[id] {
			continue
		}
		assigned[id] = true
		s.doc.MediaItems[i].Order = next
		next++
	}

	// Unlisted items keep their relative order after the listed block.
	rest := []int{}
	for _, i := range topicIdx {
		if !assigned[s.doc.MediaItems[i].ID] {
			rest = append(rest, i)
		}
	}
	sort.SliceStable(rest, func(a, b int) bool {
		return s.doc.MediaItems[rest[a]].Order < s.doc.MediaItems[rest[b]].Order
	})
	for _, i := range rest {
		s.doc.MediaItems[i].Order = next
		next++
	}

	s.save()

	out := make([]MediaItem, 0, len(topicIdx))
	for _, i := range topicIdx {
		out = append(out, s.doc.MediaItems[i])
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Order < out[b].Order })
	return out
}
