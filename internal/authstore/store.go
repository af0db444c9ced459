// Package authstore keeps the signed-in user of a client session and notifies
// subscribers on every change.
package authstore

import (
	"context"
	"sync"

	"kasap-service/internal/service"
)

// Auth is the adapter surface the store drives.
type Auth interface {
	SignUp(ctx context.Context, in service.SignUpInput) (*service.AuthUser, error)
	SignIn(ctx context.Context, email, password string) (*service.AuthUser, error)
	SignOut(ctx context.Context, accessToken string) error
	GetCurrentUser(ctx context.Context, accessToken string) (*service.AuthUser, error)
}

type State struct {
	User            *service.AuthUser `json:"user"`
	IsLoading       bool              `json:"isLoading"`
	IsAuthenticated bool              `json:"isAuthenticated"`
	Error           string            `json:"error,omitempty"`
}

type Listener func(State)

type Store struct {
	auth Auth

	mu        sync.Mutex
	state     State
	gen       uint64
	nextID    int
	listeners map[int]Listener
}

func New(auth Auth) *Store {
	return &Store{auth: auth, listeners: make(map[int]Listener)}
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// update applies fn under the lock and notifies listeners outside it.
func (s *Store) update(fn func(*State)) {
	s.apply(func(st *State) bool {
		fn(st)
		return true
	})
}

// apply is update with a veto: when fn returns false nothing is published.
func (s *Store) apply(fn func(*State) bool) {
	s.mu.Lock()
	if !fn(&s.state) {
		s.mu.Unlock()
		return
	}
	snap := s.state
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	s.mu.Unlock()

	for _, l := range ls {
		l(snap)
	}
}

// begin starts an async action and returns its generation and the current token.
func (s *Store) begin() (uint64, string) {
	var gen uint64
	var token string
	s.update(func(st *State) {
		s.gen++
		gen = s.gen
		st.IsLoading = true
		st.Error = ""
		if st.User != nil {
			token = st.User.AccessToken
		}
	})
	return gen, token
}

// finish commits fn only if no later action has started since gen.
func (s *Store) finish(gen uint64, fn func(*State)) {
	s.apply(func(st *State) bool {
		if s.gen != gen {
			return false
		}
		st.IsLoading = false
		fn(st)
		return true
	})
}

func (s *Store) fail(gen uint64, err error) {
	s.finish(gen, func(st *State) { st.Error = err.Error() })
}

func (s *Store) signedIn(gen uint64, u *service.AuthUser) {
	s.finish(gen, func(st *State) {
		st.User = u
		st.IsAuthenticated = true
	})
}

func (s *Store) SignUp(ctx context.Context, in service.SignUpInput) error {
	gen, _ := s.begin()
	u, err := s.auth.SignUp(ctx, in)
	if err != nil {
		s.fail(gen, err)
		return err
	}
	s.signedIn(gen, u)
	return nil
}

func (s *Store) SignIn(ctx context.Context, email, password string) error {
	gen, _ := s.begin()
	u, err := s.auth.SignIn(ctx, email, password)
	if err != nil {
		s.fail(gen, err)
		return err
	}
	s.signedIn(gen, u)
	return nil
}

func (s *Store) SignOut(ctx context.Context) error {
	gen, token := s.begin()
	if token != "" {
		if err := s.auth.SignOut(ctx, token); err != nil {
			s.fail(gen, err)
			return err
		}
	}
	s.finish(gen, func(st *State) {
		st.User = nil
		st.IsAuthenticated = false
	})
	return nil
}

// GetCurrentUser refreshes the user behind the stored token.
func (s *Store) GetCurrentUser(ctx context.Context) error {
	gen, token := s.begin()
	if token == "" {
		s.finish(gen, func(st *State) {
			st.User = nil
			st.IsAuthenticated = false
		})
		return nil
	}
	u, err := s.auth.GetCurrentUser(ctx, token)
	if err != nil {
		s.fail(gen, err)
		return err
	}
	s.signedIn(gen, u)
	return nil
}

func (s *Store) ClearError() {
	s.update(func(st *State) { st.Error = "" })
}

// SetUser replaces the user directly and supersedes any in-flight action.
func (s *Store) SetUser(u *service.AuthUser) {
	s.update(func(st *State) {
		s.gen++
		st.User = u
		st.IsAuthenticated = u != nil
		st.IsLoading = false
	})
}
