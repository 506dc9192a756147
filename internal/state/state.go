package state

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/sukalov/lyricbot/internal/lyrics"
	"github.com/sukalov/lyricbot/internal/rhyme"
)

type Stage string

const (
	StageIdle            Stage = "idle"
	StageAwaitingKeyword Stage = "awaiting_keyword"
)

// Selections named by MissingSelectionError, in the order they are checked.
const (
	SelectionTheme  = "theme"
	SelectionRolls  = "rolls"
	SelectionStyle  = "style"
	SelectionScheme = "scheme"
)

const (
	DefaultDiceRolls         = 4
	DefaultMaxCustomKeywords = 3
)

var (
	ErrRollLimit        = errors.New("all dice have been rolled")
	ErrNoTheme          = errors.New("pick a theme before rolling")
	ErrDuplicateKeyword = errors.New("keyword already added")
	ErrTooManyKeywords  = errors.New("too many custom keywords")
	ErrUnknownKeyword   = errors.New("keyword not found")
)

// MissingSelectionError reports the first selection a session still lacks.
type MissingSelectionError struct {
	Selection string
}

func (e *MissingSelectionError) Error() string {
	return fmt.Sprintf("missing selection: %s", e.Selection)
}

// Roll is one die throw and the keyword it drew.
type Roll struct {
	Face    int    `json:"face"`
	Keyword string `json:"keyword"`
}

// Session holds the selections of one chat.
type Session struct {
	ChatID    int64         `json:"chat_id"`
	Username  string        `json:"username"`
	Theme     lyrics.Theme  `json:"theme,omitempty"`
	Style     lyrics.Style  `json:"style,omitempty"`
	Scheme    rhyme.Scheme  `json:"scheme,omitempty"`
	Rolls     []Roll        `json:"rolls"`
	Custom    []string      `json:"custom"`
	Stage     Stage         `json:"stage"`
	LastLyric *lyrics.Lyric `json:"last_lyric,omitempty"`
	UpdatedAt time.Time     `json:"updated_at"`
	MaxRolls  int           `json:"-"`
	MaxCustom int           `json:"-"`
}

// SetTheme switches the keyword bank. Earlier rolls drew from the old
// bank, so they are dropped.
func (s *Session) SetTheme(theme lyrics.Theme) {
	if s.Theme != theme {
		s.Rolls = nil
	}
	s.Theme = theme
}

func (s *Session) SetStyle(style lyrics.Style) {
	s.Style = style
}

func (s *Session) SetScheme(scheme rhyme.Scheme) {
	s.Scheme = scheme
}

// AddRoll records a die throw.
func (s *Session) AddRoll(face int, keyword string) error {
	if s.Theme == "" {
		return ErrNoTheme
	}
	if len(s.Rolls) >= s.rollLimit() {
		return fmt.Errorf("%w: %d of %d", ErrRollLimit, len(s.Rolls), s.rollLimit())
	}
	s.Rolls = append(s.Rolls, Roll{Face: face, Keyword: keyword})
	return nil
}

// RollsLeft returns how many dice may still be thrown.
func (s *Session) RollsLeft() int {
	return max(s.rollLimit()-len(s.Rolls), 0)
}

// AddCustomKeyword appends an already normalized keyword.
func (s *Session) AddCustomKeyword(word string) error {
	if slices.Contains(s.Custom, word) {
		return fmt.Errorf("%w: %q", ErrDuplicateKeyword, word)
	}
	if len(s.Custom) >= s.customLimit() {
		return fmt.Errorf("%w: %d max", ErrTooManyKeywords, s.customLimit())
	}
	s.Custom = append(s.Custom, word)
	return nil
}

func (s *Session) RemoveCustomKeyword(word string) error {
	i := slices.Index(s.Custom, word)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownKeyword, word)
	}
	s.Custom = slices.Delete(s.Custom, i, i+1)
	return nil
}

// Keywords returns the dice keywords followed by the custom ones.
func (s *Session) Keywords() []string {
	out := make([]string, 0, len(s.Rolls)+len(s.Custom))
	for _, r := range s.Rolls {
		out = append(out, r.Keyword)
	}
	return append(out, s.Custom...)
}

// Faces returns the rolled die faces in order.
func (s *Session) Faces() []int {
	out := make([]int, len(s.Rolls))
	for i, r := range s.Rolls {
		out[i] = r.Face
	}
	return out
}

// Ready returns a *MissingSelectionError when the session cannot
// generate yet.
func (s *Session) Ready() error {
	switch {
	case s.Theme == "":
		return &MissingSelectionError{Selection: SelectionTheme}
	case len(s.Rolls) < s.rollLimit():
		return &MissingSelectionError{Selection: SelectionRolls}
	case s.Style == "":
		return &MissingSelectionError{Selection: SelectionStyle}
	case s.Scheme == "":
		return &MissingSelectionError{Selection: SelectionScheme}
	}
	return nil
}

func (s *Session) SetLyric(l *lyrics.Lyric) {
	s.LastLyric = l
}

// Reset drops every selection but keeps the chat identity.
func (s *Session) Reset() {
	*s = Session{
		ChatID:    s.ChatID,
		Username:  s.Username,
		Stage:     StageIdle,
		MaxRolls:  s.MaxRolls,
		MaxCustom: s.MaxCustom,
	}
}

func (s *Session) rollLimit() int {
	if s.MaxRolls <= 0 {
		return DefaultDiceRolls
	}
	return s.MaxRolls
}

func (s *Session) customLimit() int {
	if s.MaxCustom <= 0 {
		return DefaultMaxCustomKeywords
	}
	return s.MaxCustom
}

func (s Session) clone() Session {
	s.Rolls = slices.Clone(s.Rolls)
	s.Custom = slices.Clone(s.Custom)
	return s
}

// StateManager keeps one session per chat.
type StateManager struct {
	mu        sync.RWMutex
	sessions  map[int64]*Session
	maxRolls  int
	maxCustom int
	now       func() time.Time
}

func NewStateManager(maxRolls, maxCustom int) *StateManager {
	if maxRolls <= 0 {
		maxRolls = DefaultDiceRolls
	}
	if maxCustom <= 0 {
		maxCustom = DefaultMaxCustomKeywords
	}
	return &StateManager{
		sessions:  make(map[int64]*Session),
		maxRolls:  maxRolls,
		maxCustom: maxCustom,
		now:       time.Now,
	}
}

// Get returns a copy of the chat's session, or a fresh one.
func (sm *StateManager) Get(chatID int64) Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	if s, ok := sm.sessions[chatID]; ok {
		return s.clone()
	}
	return sm.fresh(chatID)
}

// Update runs fn on the chat's session under the write lock. Changes are
// kept only when fn returns nil. The updated copy is returned either way.
func (sm *StateManager) Update(chatID int64, fn func(s *Session) error) (Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	current, ok := sm.sessions[chatID]
	var working Session
	if ok {
		working = current.clone()
	} else {
		working = sm.fresh(chatID)
	}

	if err := fn(&working); err != nil {
		if ok {
			return current.clone(), err
		}
		return sm.fresh(chatID), err
	}
	working.UpdatedAt = sm.now()
	sm.sessions[chatID] = &working
	return working.clone(), nil
}

// Reset clears the chat's selections.
func (sm *StateManager) Reset(chatID int64) {
	_, _ = sm.Update(chatID, func(s *Session) error {
		s.Reset()
		return nil
	})
}

// Remove forgets a chat entirely.
func (sm *StateManager) Remove(chatID int64) bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	_, ok := sm.sessions[chatID]
	delete(sm.sessions, chatID)
	return ok
}

// Clear forgets every session.
func (sm *StateManager) Clear() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions = make(map[int64]*Session)
}

func (sm *StateManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// Snapshot returns copies of every session, most recently active first.
func (sm *StateManager) Snapshot() []Session {
	sm.mu.RLock()
	out := make([]Session, 0, len(sm.sessions))
	for _, s := range sm.sessions {
		out = append(out, s.clone())
	}
	sm.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out
}

// Prune drops sessions idle for longer than maxIdle and returns how many
// were removed.
func (sm *StateManager) Prune(maxIdle time.Duration) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	cutoff := sm.now().Add(-maxIdle)
	removed := 0
	for id, s := range sm.sessions {
		if s.UpdatedAt.Before(cutoff) {
			delete(sm.sessions, id)
			removed++
		}
	}
	return removed
}

func (sm *StateManager) fresh(chatID int64) Session {
	return Session{
		ChatID:    chatID,
		Stage:     StageIdle,
		MaxRolls:  sm.maxRolls,
		MaxCustom: sm.maxCustom,
	}
}
