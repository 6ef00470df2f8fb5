package game

import (
	"context"
	"sync"
	"time"

	"github.com/mcdev12/buzzin/internal/results"
	"github.com/mcdev12/buzzin/internal/rooms"
	"github.com/mcdev12/buzzin/internal/trivia"
)

// fakeStore keeps state in memory and serializes mutations with a
// mutex, standing in for the KV-backed store.
type fakeStore struct {
	mu    sync.Mutex
	state map[string]*State
}

func newFakeStore() *fakeStore {
	return &fakeStore{state: make(map[string]*State)}
}

func (f *fakeStore) Init(_ context.Context, code string, state *State) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := cloneState(state)
	f.state[code] = cp
	return nil
}

func (f *fakeStore) Get(_ context.Context, code string) (*State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.state[code]
	if !ok {
		return nil, ErrNoState
	}
	return cloneState(st), nil
}

func (f *fakeStore) Mutate(_ context.Context, code string, fn func(*State) error) (*State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	st, ok := f.state[code]
	if !ok {
		return nil, ErrNoState
	}
	cp := cloneState(st)
	if err := fn(cp); err != nil {
		return nil, err
	}
	f.state[code] = cp
	return cloneState(cp), nil
}

func cloneState(st *State) *State {
	cp := *st
	cp.Scores = make(map[string]int, len(st.Scores))
	for k, v := range st.Scores {
		cp.Scores[k] = v
	}
	cp.Blocked = make(map[string]bool, len(st.Blocked))
	for k, v := range st.Blocked {
		cp.Blocked[k] = v
	}
	cp.Players = append([]Player(nil), st.Players...)
	return &cp
}

// fakeLock is an in-memory first-press lock with the same atomicity as
// the real one.
type fakeLock struct {
	mu     sync.Mutex
	holder map[string]string
}

func newFakeLock() *fakeLock {
	return &fakeLock{holder: make(map[string]string)}
}

func (f *fakeLock) AttemptFirstPress(_ context.Context, code, userID string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, held := f.holder[code]; held {
		return false, nil
	}
	f.holder[code] = userID
	return true, nil
}

func (f *fakeLock) HolderOf(_ context.Context, code string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.holder[code], nil
}

func (f *fakeLock) Reset(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.holder, code)
	return nil
}

type fakeDedupe struct {
	mu   sync.Mutex
	seen map[string]bool
}

func newFakeDedupe() *fakeDedupe {
	return &fakeDedupe{seen: make(map[string]bool)}
}

func (f *fakeDedupe) FirstOccurrence(_ context.Context, code, eventID string, _ time.Duration) (bool, error) {
	if eventID == "" {
		return true, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := code + ":" + eventID
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

// fakeLocal records scheduled callbacks and lets tests fire them
// synchronously instead of waiting out the delay.
type fakeLocal struct {
	mu        sync.Mutex
	scheduled map[string]func()
	delays    map[string]time.Duration
}

func newFakeLocal() *fakeLocal {
	return &fakeLocal{
		scheduled: make(map[string]func()),
		delays:    make(map[string]time.Duration),
	}
}

func (f *fakeLocal) Schedule(key string, delay time.Duration, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled[key] = fn
	f.delays[key] = delay
}

func (f *fakeLocal) Clear(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.scheduled, key)
	delete(f.delays, key)
}

func (f *fakeLocal) fire(key string) bool {
	f.mu.Lock()
	fn, ok := f.scheduled[key]
	delete(f.scheduled, key)
	f.mu.Unlock()
	if ok {
		fn()
	}
	return ok
}

func (f *fakeLocal) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.scheduled[key]
	return ok
}

type durableCall struct {
	code     string
	roundSeq int64
	userID   string
	delay    time.Duration
}

type fakeDurable struct {
	mu        sync.Mutex
	scheduled []durableCall
	cancelled []string
}

func (f *fakeDurable) ScheduleAnswerTimeout(_ context.Context, code string, roundSeq int64, userID string, delay time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled = append(f.scheduled, durableCall{code: code, roundSeq: roundSeq, userID: userID, delay: delay})
	return nil
}

func (f *fakeDurable) CancelAnswerTimeout(_ context.Context, code string, roundSeq int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, code)
	return nil
}

func (f *fakeDurable) scheduledCalls() []durableCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]durableCall(nil), f.scheduled...)
}

type busEvent struct {
	code    string
	userID  string
	event   string
	payload any
}

type fakeBus struct {
	mu     sync.Mutex
	events []busEvent
}

func (f *fakeBus) Broadcast(_ context.Context, code, event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, busEvent{code: code, event: event, payload: payload})
}

func (f *fakeBus) SendToUser(_ context.Context, code, userID, event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, busEvent{code: code, userID: userID, event: event, payload: payload})
}

func (f *fakeBus) ofType(event string) []busEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []busEvent
	for _, e := range f.events {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeBus) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

type fakeTriviaRepo struct {
	trivias map[string]*trivia.Trivia
}

func (f *fakeTriviaRepo) GetTrivia(_ context.Context, id string) (*trivia.Trivia, error) {
	return f.trivias[id], nil
}

type fakeRoomRepo struct {
	mu       sync.Mutex
	rooms    map[string]*rooms.Room
	statuses map[string]string
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{
		rooms:    make(map[string]*rooms.Room),
		statuses: make(map[string]string),
	}
}

func (f *fakeRoomRepo) GetRoomByCode(_ context.Context, code string) (*rooms.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rooms[code], nil
}

func (f *fakeRoomRepo) UpdateRoomStatus(_ context.Context, code, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[code] = status
	return nil
}

type fakeResultRepo struct {
	mu      sync.Mutex
	results map[string]*results.GameResult
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{results: make(map[string]*results.GameResult)}
}

func (f *fakeResultRepo) ResultExists(_ context.Context, roomCode string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.results[roomCode]
	return ok, nil
}

func (f *fakeResultRepo) CreateResult(_ context.Context, result *results.GameResult) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.results[result.RoomCode]; ok {
		return false, nil
	}
	f.results[result.RoomCode] = result
	return true, nil
}

func (f *fakeResultRepo) get(roomCode string) *results.GameResult {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.results[roomCode]
}
