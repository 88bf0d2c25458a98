package persist

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/twinlab/twin/internal/domain"
	"github.com/twinlab/twin/internal/infra/metrics"
	"github.com/twinlab/twin/internal/infra/sqlite"
)

const sessionUserKey = "active_user"

// StaleTTL is how old a cached copy may be before an offline load is
// annotated as stale.
const StaleTTL = 5 * time.Minute

// Service is the persistence collaborator: remote store when
// reachable, local cache always. The cache is written synchronously on
// every save; the remote write is opportunistic.
type Service struct {
	db     *sqlite.DB
	remote *Client // nil = permanently offline
}

// NewService creates the persistence service. remote may be nil.
func NewService(db *sqlite.DB, remote *Client) *Service {
	return &Service{db: db, remote: remote}
}

// SessionData is the resolved startup identity and its state.
type SessionData struct {
	Username string
	State    domain.UserState
	Offline  bool // served from the local cache
	Stale    bool // cached copy older than StaleTTL
}

// GetSession resolves the currently authenticated identity. Remote
// first; when that fails the cached copy is served, annotated with
// staleness once it is past the TTL.
func (s *Service) GetSession(ctx context.Context) (*SessionData, error) {
	username, err := s.db.GetSession(sessionUserKey)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if username == "" {
		return nil, domain.ErrNotAuthenticated
	}

	if s.remote != nil {
		raw, err := s.remote.FetchUserData(ctx, username)
		if err == nil {
			st, derr := Decode(raw)
			if derr == nil {
				// Refresh the cache with what the remote returned.
				if cerr := s.db.SaveUserBlob(username, raw, time.Now()); cerr != nil {
					log.Printf("[persist] cache refresh failed: %v", cerr)
				}
				return &SessionData{Username: username, State: st}, nil
			}
			// Malformed remote data is "no data", not a partial merge.
			log.Printf("[persist] remote payload rejected: %v", derr)
		}
	}

	return s.loadCached(username)
}

// Login authenticates against the remote store. When the remote is
// unreachable and a cached copy exists, the login degrades to an
// offline session instead of failing.
func (s *Service) Login(ctx context.Context, username, password string) (*SessionData, error) {
	if s.remote != nil {
		raw, err := s.remote.Login(ctx, username, password)
		switch {
		case err == nil:
			st, derr := Decode(raw)
			if derr != nil {
				return nil, derr
			}
			if err := s.db.SetSession(sessionUserKey, username); err != nil {
				return nil, fmt.Errorf("store session: %w", err)
			}
			if cerr := s.db.SaveUserBlob(username, raw, time.Now()); cerr != nil {
				log.Printf("[persist] cache write failed: %v", cerr)
			}
			return &SessionData{Username: username, State: st}, nil
		case errors.Is(err, domain.ErrRemoteUnavailable):
			// fall through to the cache
		default:
			return nil, err
		}
	}

	data, err := s.loadCached(username)
	if err != nil {
		return nil, err
	}
	if err := s.db.SetSession(sessionUserKey, username); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return data, nil
}

// Register creates a remote account, stores the fresh aggregate, and
// opens a session. The returned message distinguishes immediate
// success from "verification required".
func (s *Service) Register(ctx context.Context, st domain.UserState, password string) (string, error) {
	message := "registered"
	if s.remote != nil {
		msg, err := s.remote.Register(ctx, st.Name, st.Email, st.Username, password)
		if err != nil {
			return "", err
		}
		if msg != "" {
			message = msg
		}
	}
	if err := s.db.SetSession(sessionUserKey, st.Username); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	if err := s.SaveUserData(ctx, st.Username, st); err != nil {
		return "", err
	}
	return message, nil
}

// SaveUserData upserts the whole state blob: local cache
// synchronously, remote opportunistically. A failed remote write is
// logged, never surfaced; the cache already has the data.
func (s *Service) SaveUserData(ctx context.Context, username string, st domain.UserState) error {
	raw, err := Encode(st)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := s.db.SaveUserBlob(username, raw, time.Now()); err != nil {
		metrics.SaveFailures.Inc()
		return fmt.Errorf("cache write: %w", err)
	}
	metrics.Saves.Inc()

	if s.remote != nil {
		if err := s.remote.UpsertUserData(ctx, username, raw); err != nil {
			metrics.RemoteSaveFailures.Inc()
			log.Printf("[persist] remote save failed (cached locally): %v", err)
		}
	}
	return nil
}

// Logout clears the local session. The durable copy stays in the
// store and in the cache.
func (s *Service) Logout() error {
	return s.db.ClearSession()
}

// ActiveUsername returns the logged-in username, or "" if none.
func (s *Service) ActiveUsername() (string, error) {
	return s.db.GetSession(sessionUserKey)
}

func (s *Service) loadCached(username string) (*SessionData, error) {
	raw, savedAt, err := s.db.GetUserBlob(username)
	if err != nil {
		return nil, fmt.Errorf("read cache: %w", err)
	}
	if raw == nil {
		return nil, domain.ErrNoCachedData
	}
	st, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	return &SessionData{
		Username: username,
		State:    st,
		Offline:  true,
		Stale:    time.Since(savedAt) > StaleTTL,
	}, nil
}
