package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/sabo-arena/brackets"
	"github.com/Dosada05/sabo-arena/models"
	"github.com/Dosada05/sabo-arena/repositories"
	"github.com/Dosada05/sabo-arena/storage"
)

// memStore backs every fake repository. The fake transactor snapshots it and restores the
// snapshot when the callback fails, so rollbacks are observable.
type memStore struct {
	mu           sync.Mutex
	tournaments  map[string]models.Tournament
	participants map[string][]models.Participant
	matches      map[string][]*models.Match
	nextID       int
}

func newMemStore() *memStore {
	return &memStore{
		tournaments:  map[string]models.Tournament{},
		participants: map[string][]models.Participant{},
		matches:      map[string][]*models.Match{},
	}
}

func cloneMatches(in []*models.Match) []*models.Match {
	out := make([]*models.Match, len(in))
	for i, m := range in {
		out[i] = m.Clone()
	}
	return out
}

func (s *memStore) snapshot() *memStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := newMemStore()
	c.nextID = s.nextID
	for k, v := range s.tournaments {
		c.tournaments[k] = v
	}
	for k, v := range s.participants {
		c.participants[k] = append([]models.Participant(nil), v...)
	}
	for k, v := range s.matches {
		c.matches[k] = cloneMatches(v)
	}
	return c
}

func (s *memStore) restore(from *memStore) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tournaments, s.participants, s.matches, s.nextID = from.tournaments, from.participants, from.matches, from.nextID
}

type fakeTx struct {
	store *memStore
	mu    sync.Mutex
}

func (f *fakeTx) WithinTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	before := f.store.snapshot()
	if err := fn(nil); err != nil {
		f.store.restore(before)
		return err
	}
	return nil
}

type fakeTournamentRepo struct {
	store           *memStore
	failSnapshotKey error
}

func (r *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.tournaments {
		if existing.Name == t.Name {
			return repositories.ErrTournamentNameConflict
		}
	}
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	r.store.tournaments[t.ID] = *t
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, _ repositories.SQLExecutor, id string) (*models.Tournament, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &t, nil
}

func (r *fakeTournamentRepo) List(_ context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]models.Tournament, 0)
	for _, t := range r.store.tournaments {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeTournamentRepo) update(id string, fn func(t *models.Tournament)) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	fn(&t)
	r.store.tournaments[id] = t
	return nil
}

func (r *fakeTournamentRepo) UpdateStatus(_ context.Context, _ repositories.SQLExecutor, id string, status models.TournamentStatus) error {
	return r.update(id, func(t *models.Tournament) { t.Status = status })
}

func (r *fakeTournamentRepo) SetChampion(_ context.Context, _ repositories.SQLExecutor, id string, championID *string) error {
	return r.update(id, func(t *models.Tournament) { t.ChampionID = championID })
}

func (r *fakeTournamentRepo) UpdateSnapshotKey(_ context.Context, id string, key *string) error {
	if r.failSnapshotKey != nil {
		return r.failSnapshotKey
	}
	return r.update(id, func(t *models.Tournament) { t.SnapshotKey = key })
}

type fakeParticipantRepo struct {
	store *memStore
}

func (r *fakeParticipantRepo) Create(_ context.Context, _ repositories.SQLExecutor, p *models.Participant) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.tournaments[p.TournamentID]; !ok {
		return repositories.ErrParticipantTournamentInvalid
	}
	for _, existing := range r.store.participants[p.TournamentID] {
		if existing.PlayerID == p.PlayerID {
			return repositories.ErrParticipantConflict
		}
		if existing.Seed == p.Seed {
			return repositories.ErrParticipantSeedConflict
		}
	}
	r.store.nextID++
	p.ID = r.store.nextID
	p.CreatedAt = time.Now()
	r.store.participants[p.TournamentID] = append(r.store.participants[p.TournamentID], *p)
	return nil
}

func (r *fakeParticipantRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string) ([]models.Participant, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := append([]models.Participant{}, r.store.participants[tournamentID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Seed < out[j].Seed })
	return out, nil
}

func (r *fakeParticipantRepo) CountByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return len(r.store.participants[tournamentID]), nil
}

type fakeMatchRepo struct {
	store *memStore
}

func (r *fakeMatchRepo) CreateBatch(_ context.Context, _ repositories.SQLExecutor, matches []*models.Match) error {
	if len(matches) == 0 {
		return nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	id := matches[0].TournamentID
	if len(r.store.matches[id]) > 0 {
		return repositories.ErrMatchSlotConflict
	}
	r.store.matches[id] = cloneMatches(matches)
	return nil
}

func (r *fakeMatchRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string) ([]*models.Match, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return cloneMatches(r.store.matches[tournamentID]), nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, tournamentID, matchID string) (*models.Match, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, m := range r.store.matches[tournamentID] {
		if m.ID == matchID {
			return m.Clone(), nil
		}
	}
	return nil, repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) Update(_ context.Context, _ repositories.SQLExecutor, match *models.Match) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i, m := range r.store.matches[match.TournamentID] {
		if m.ID == match.ID {
			r.store.matches[match.TournamentID][i] = match.Clone()
			return nil
		}
	}
	return repositories.ErrMatchNotFound
}

func (r *fakeMatchRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.matches, tournamentID)
	return nil
}

type fakeHub struct {
	mu       sync.Mutex
	messages []brackets.WebSocketMessage
}

func (h *fakeHub) BroadcastToRoom(roomID string, message interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if msg, ok := message.(brackets.WebSocketMessage); ok {
		h.messages = append(h.messages, msg)
	}
}

func (h *fakeHub) types() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.messages))
	for i, m := range h.messages {
		out[i] = m.Type
	}
	return out
}

type fakeUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: map[string][]byte{}}
}

func (u *fakeUploader) Upload(_ context.Context, key, _ string, reader io.Reader) (*storage.UploadResult, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.objects[key] = buf.Bytes()
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.objects[key]; !ok {
		return errors.New("no such object")
	}
	delete(u.objects, key)
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}

func (u *fakeUploader) decode(key string, v interface{}) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	body, ok := u.objects[key]
	if !ok {
		return errors.New("no such object")
	}
	return json.Unmarshal(body, v)
}

type testEnv struct {
	store        *memStore
	tournaments  *fakeTournamentRepo
	hub          *fakeHub
	uploader     *fakeUploader
	tournamentSv TournamentService
	bracketSv    BracketService
	matchSv      MatchService
}

func newTestEnv() *testEnv {
	store := newMemStore()
	tx := &fakeTx{store: store}
	tournaments := &fakeTournamentRepo{store: store}
	participants := &fakeParticipantRepo{store: store}
	matches := &fakeMatchRepo{store: store}
	hub := &fakeHub{}
	uploader := newFakeUploader()
	topology := brackets.Sabo16()

	return &testEnv{
		store:        store,
		tournaments:  tournaments,
		hub:          hub,
		uploader:     uploader,
		tournamentSv: NewTournamentService(tx, tournaments, participants, matches, hub, uploader, nil),
		bracketSv:    NewBracketService(tx, tournaments, participants, matches, topology, hub, uploader, nil),
		matchSv:      NewMatchService(tx, tournaments, participants, matches, topology, hub, uploader, nil),
	}
}
