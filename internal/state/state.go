// Package state owns the bot's four collections (join log, content request
// log, known users, channel metadata) and mirrors them to a
// SnapshotRepository.
//
// A State is created once, loaded once, and then handed to every handler.
// The dispatcher is the only writer; the HTTP API and the flush job read
// concurrently, which is what the RWMutex is for.
package state

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/lalith-99/autoapprove/internal/apperr"
	"github.com/lalith-99/autoapprove/internal/models"
	"github.com/lalith-99/autoapprove/internal/repository"
	"go.uber.org/zap"
)

// FlushPolicy decides when mutations reach the repository.
type FlushPolicy int

const (
	// FlushImmediate saves the full snapshot after every mutation.
	FlushImmediate FlushPolicy = iota
	// FlushDeferred only marks the state dirty; Flush writes it. A crash
	// loses whatever changed since the last Flush.
	FlushDeferred
)

func (p FlushPolicy) String() string {
	if p == FlushDeferred {
		return "deferred"
	}
	return "immediate"
}

// ErrAlreadyLoaded is returned by a second call to Load. Load merges into
// the in-memory collections, so running it after handlers started would mix
// stale disk data into live state.
var ErrAlreadyLoaded = errors.New("state already loaded")

// State owns the join log, content requests, users and channels.
type State struct {
	repo   repository.SnapshotRepository
	logger *zap.Logger
	policy FlushPolicy

	mu           sync.RWMutex
	joins        []models.JoinRecord
	requests     []models.ContentRequest
	users        map[int64]struct{}
	userOrder    []int64
	channels     map[string]*models.ChannelInfo
	channelOrder []string
	loaded       bool
	dirty        bool

	// saveMu serializes Save so an older snapshot can never land after a
	// newer one.
	saveMu sync.Mutex
}

// Option configures a State.
type Option func(*State)

// WithFlushPolicy sets when mutations are written. The default is
// FlushImmediate.
func WithFlushPolicy(p FlushPolicy) Option {
	return func(s *State) { s.policy = p }
}

// New creates an empty State. Call Load before use.
func New(repo repository.SnapshotRepository, logger *zap.Logger, opts ...Option) *State {
	s := &State{
		repo:     repo,
		logger:   logger,
		users:    make(map[int64]struct{}),
		channels: make(map[string]*models.ChannelInfo),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted snapshot and merges it into memory. A missing
// snapshot is not an error. An unreadable one is logged and returned as a
// persistence error; the state stays empty and usable either way.
func (s *State) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.loaded {
		s.mu.Unlock()
		return ErrAlreadyLoaded
	}
	s.loaded = true
	s.mu.Unlock()

	snap, err := s.repo.Load(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Info("no snapshot found, starting empty", zap.String("backend", s.repo.Name()))
			return nil
		}
		s.logger.Error("failed to load snapshot, starting empty",
			zap.String("backend", s.repo.Name()),
			zap.Error(err),
		)
		return apperr.New(apperr.KindPersistence, "load snapshot", err)
	}

	s.mu.Lock()
	s.merge(snap)
	joins, requests, users, channels := len(s.joins), len(s.requests), len(s.userOrder), len(s.channelOrder)
	s.mu.Unlock()

	s.logger.Info("snapshot loaded",
		zap.String("backend", s.repo.Name()),
		zap.Int("join_requests", joins),
		zap.Int("content_requests", requests),
		zap.Int("users", users),
		zap.Int("channels", channels),
	)
	return nil
}

// Loaded reports whether Load has run.
func (s *State) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// merge extends the logs, unions the user set and upserts channels. Callers
// hold s.mu.
func (s *State) merge(snap *models.Snapshot) {
	s.joins = append(s.joins, snap.JoinRequests...)
	s.requests = append(s.requests, snap.ContentRequests...)

	for _, id := range snap.Users {
		s.addUserLocked(id)
	}

	// Map order in the file is not meaningful; sort for a stable listing.
	keys := make([]string, 0, len(snap.Channels))
	for k := range snap.Channels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		info := snap.Channels[k]
		if _, ok := s.channels[k]; !ok {
			s.channelOrder = append(s.channelOrder, k)
		}
		s.channels[k] = &info
	}
}

// Save writes the full snapshot. Failures are logged and returned as
// persistence errors; in-memory state is never rolled back.
func (s *State) Save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.Lock()
	snap := s.snapshotLocked()
	s.dirty = false
	s.mu.Unlock()

	if err := s.repo.Save(ctx, &snap); err != nil {
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()

		s.logger.Error("failed to save snapshot",
			zap.String("backend", s.repo.Name()),
			zap.Error(err),
		)
		return apperr.New(apperr.KindPersistence, "save snapshot", err)
	}
	return nil
}

// Flush saves only if something changed since the last successful save.
func (s *State) Flush(ctx context.Context) error {
	s.mu.RLock()
	dirty := s.dirty
	s.mu.RUnlock()

	if !dirty {
		return nil
	}
	return s.Save(ctx)
}

// Dirty reports whether there are unsaved changes.
func (s *State) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

func (s *State) persist(ctx context.Context) error {
	if s.policy == FlushDeferred {
		return nil
	}
	return s.Save(ctx)
}

// RecordJoin registers one join request: the channel entry is created on
// first sight, its approval counter is incremented, and an approved
// JoinRecord is appended. It returns the channel's new approval count. The
// returned error is only ever a persistence error; the in-memory update has
// happened regardless.
func (s *State) RecordJoin(ctx context.Context, ch models.ChannelInfo, rec models.JoinRecord) (int, error) {
	key := strconv.FormatInt(ch.ID, 10)

	s.mu.Lock()
	info, ok := s.channels[key]
	if !ok {
		username := ch.Username
		if username == "" {
			username = models.PrivateUsername
		}
		info = &models.ChannelInfo{
			Title:    ch.Title,
			Username: username,
			ID:       ch.ID,
			Type:     ch.Type,
		}
		s.channels[key] = info
		s.channelOrder = append(s.channelOrder, key)
	}
	info.JoinRequests++
	count := info.JoinRequests

	rec.ChannelID = ch.ID
	rec.ChannelName = ch.Title
	rec.Status = models.JoinStatusApproved
	s.joins = append(s.joins, rec)
	s.dirty = true
	s.mu.Unlock()

	return count, s.persist(ctx)
}

// AddContentRequest appends a request with the next sequential id.
func (s *State) AddContentRequest(ctx context.Context, userID int64, username, firstName, text string, at time.Time) (models.ContentRequest, error) {
	s.mu.Lock()
	req := models.ContentRequest{
		ID:        len(s.requests) + 1,
		UserID:    userID,
		Username:  username,
		FirstName: firstName,
		Request:   text,
		Timestamp: models.NewTimestamp(at),
	}
	s.requests = append(s.requests, req)
	s.dirty = true
	s.mu.Unlock()

	return req, s.persist(ctx)
}

// AddUser records userID in the known-user set. Nothing is written when the
// user was already known.
func (s *State) AddUser(ctx context.Context, userID int64) (bool, error) {
	s.mu.Lock()
	added := s.addUserLocked(userID)
	if added {
		s.dirty = true
	}
	s.mu.Unlock()

	if !added {
		return false, nil
	}
	return true, s.persist(ctx)
}

func (s *State) addUserLocked(userID int64) bool {
	if _, ok := s.users[userID]; ok {
		return false
	}
	s.users[userID] = struct{}{}
	s.userOrder = append(s.userOrder, userID)
	return true
}

// Stats returns the aggregate counters plus every channel.
func (s *State) Stats() models.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return models.Stats{
		Users:           len(s.userOrder),
		Approvals:       len(s.joins),
		ContentRequests: len(s.requests),
		Channels:        s.channelsLocked(),
	}
}

// RecentJoins returns up to n join records, newest first.
func (s *State) RecentJoins(n int) []models.JoinRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newestFirst(s.joins, n)
}

// RecentRequests returns up to n content requests, newest first.
func (s *State) RecentRequests(n int) []models.ContentRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return newestFirst(s.requests, n)
}

func newestFirst[T any](log []T, n int) []T {
	if n > len(log) || n < 0 {
		n = len(log)
	}
	out := make([]T, 0, n)
	for i := len(log) - 1; i >= len(log)-n; i-- {
		out = append(out, log[i])
	}
	return out
}

// Channels returns every known channel in first-seen order.
func (s *State) Channels() []models.ChannelInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.channelsLocked()
}

func (s *State) channelsLocked() []models.ChannelInfo {
	out := make([]models.ChannelInfo, 0, len(s.channelOrder))
	for _, k := range s.channelOrder {
		out = append(out, *s.channels[k])
	}
	return out
}

// Channel looks up one channel by id.
func (s *State) Channel(id int64) (models.ChannelInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.channels[strconv.FormatInt(id, 10)]
	if !ok {
		return models.ChannelInfo{}, false
	}
	return *info, true
}

// Users returns up to limit known user ids (limit <= 0 means all) and the
// total number of known users.
func (s *State) Users(limit int) ([]int64, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := len(s.userOrder)
	if limit <= 0 || limit > total {
		limit = total
	}
	out := make([]int64, limit)
	copy(out, s.userOrder[:limit])
	return out, total
}

// Snapshot returns a deep copy of the current document.
func (s *State) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *State) snapshotLocked() models.Snapshot {
	snap := models.Snapshot{
		JoinRequests:    make([]models.JoinRecord, len(s.joins)),
		ContentRequests: make([]models.ContentRequest, len(s.requests)),
		Users:           make([]int64, len(s.userOrder)),
		Channels:        make(map[string]models.ChannelInfo, len(s.channels)),
	}
	copy(snap.JoinRequests, s.joins)
	copy(snap.ContentRequests, s.requests)
	copy(snap.Users, s.userOrder)
	for k, v := range s.channels {
		snap.Channels[k] = *v
	}
	return snap
}
