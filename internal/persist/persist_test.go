package persist_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/twinlab/twin/internal/app/gamify"
	"github.com/twinlab/twin/internal/domain"
	"github.com/twinlab/twin/internal/infra/sqlite"
	"github.com/twinlab/twin/internal/persist"
)

// testDB creates a temporary SQLite database for testing.
func testDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleState() domain.UserState {
	st := gamify.NewUserState("Ada", "ada@example.com", "ada", time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC))
	st.Habits = []domain.Habit{{ID: "habit-1", Title: "Meditate", Frequency: domain.FreqDaily, Streak: 2}}
	st.DayPlan.PlannedBlocks = []domain.TimeBlock{{ID: "block-1", Title: "Standup", StartTime: "09:00", EndTime: "09:15", Type: domain.BlockWork}}
	return st
}

// ═══════════════════════════════════════════════════════════════════════════
// Payload Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestEncode_SiblingShape(t *testing.T) {
	raw, err := persist.Encode(sampleState())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var wire map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wire); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"user", "habits", "dayPlan"} {
		if _, ok := wire[key]; !ok {
			t.Errorf("expected top-level %q field", key)
		}
	}

	// Habits and the plan must not also ride inside user.
	var user map[string]json.RawMessage
	_ = json.Unmarshal(wire["user"], &user)
	if _, ok := user["habits"]; ok {
		t.Error("habits should be a sibling, not nested in user")
	}
	if _, ok := user["dayPlan"]; ok {
		t.Error("dayPlan should be a sibling, not nested in user")
	}
}

func TestEncode_HabitsNeverNull(t *testing.T) {
	st := sampleState()
	st.Habits = nil
	raw, _ := persist.Encode(st)

	var wire map[string]json.RawMessage
	_ = json.Unmarshal(raw, &wire)
	if string(wire["habits"]) != "[]" {
		t.Errorf("expected empty array, got %s", wire["habits"])
	}
}

func TestDecode_RoundTrip(t *testing.T) {
	st := sampleState()
	raw, _ := persist.Encode(st)

	got, err := persist.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Name != "Ada" || len(got.Habits) != 1 || len(got.DayPlan.PlannedBlocks) != 1 {
		t.Errorf("round trip lost data: %+v", got)
	}
	if got.Habits[0].Streak != 2 {
		t.Errorf("habit streak lost: %d", got.Habits[0].Streak)
	}
}

func TestDecode_NestedLegacyShape(t *testing.T) {
	raw := []byte(`{"user":{"name":"Ada","email":"a@b.c","username":"ada",
		"habits":[{"id":"habit-9","title":"Stretch"}],
		"dayPlan":{"date":"2025-07-01","plannedBlocks":[],"actualBlocks":[]}}}`)

	got, err := persist.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Habits) != 1 || got.Habits[0].ID != "habit-9" {
		t.Errorf("nested habits not picked up: %+v", got.Habits)
	}
	if got.DayPlan.Date != "2025-07-01" {
		t.Errorf("nested plan not picked up: %+v", got.DayPlan)
	}
}

func TestDecode_SiblingsWin(t *testing.T) {
	raw := []byte(`{
		"user":{"name":"Ada","habits":[{"id":"habit-old","title":"Old"}]},
		"habits":[{"id":"habit-new","title":"New"}]}`)

	got, err := persist.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Habits) != 1 || got.Habits[0].ID != "habit-new" {
		t.Errorf("sibling habits should win over nested: %+v", got.Habits)
	}
}

func TestDecode_RejectsMissingName(t *testing.T) {
	raw := []byte(`{"user":{"email":"a@b.c"},"habits":[]}`)
	if _, err := persist.Decode(raw); err != domain.ErrMalformedPayload {
		t.Errorf("expected ErrMalformedPayload, got %v", err)
	}
}

func TestDecode_DefaultsLanguage(t *testing.T) {
	raw := []byte(`{"user":{"name":"Ada"}}`)
	got, err := persist.Decode(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Preferences.Language != "en" {
		t.Errorf("expected language default en, got %q", got.Preferences.Language)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Saver Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestSaver_TrailingEdgeDebounce(t *testing.T) {
	var calls atomic.Int32
	s := persist.NewSaver(50*time.Millisecond, func() { calls.Add(1) })

	// A burst of kicks collapses into one save.
	for i := 0; i < 5; i++ {
		s.Kick()
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(120 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("expected 1 coalesced save, got %d", got)
	}
}

func TestSaver_FlushBypassesWindow(t *testing.T) {
	var calls atomic.Int32
	s := persist.NewSaver(time.Hour, func() { calls.Add(1) })

	s.Kick()
	s.Flush()
	if got := calls.Load(); got != 1 {
		t.Errorf("expected immediate save on flush, got %d", got)
	}

	// The pending timer was cancelled; nothing fires later.
	time.Sleep(50 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("cancelled timer still fired: %d calls", got)
	}
}

func TestSaver_StopCancels(t *testing.T) {
	var calls atomic.Int32
	s := persist.NewSaver(30*time.Millisecond, func() { calls.Add(1) })

	s.Kick()
	s.Stop()
	time.Sleep(80 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Errorf("expected no save after stop, got %d", got)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Service Tests
// ═══════════════════════════════════════════════════════════════════════════

// fakeStore is an httptest server speaking the remote store protocol.
func fakeStore(t *testing.T, blobs map[string][]byte) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var creds map[string]string
		_ = json.NewDecoder(r.Body).Decode(&creds)
		blob, ok := blobs[creds["username"]]
		if !ok || creds["password"] != "secret" {
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "bad credentials"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "data": json.RawMessage(blob)})
	})
	mux.HandleFunc("POST /api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "verification email sent"})
	})
	mux.HandleFunc("GET /api/users/{username}/data", func(w http.ResponseWriter, r *http.Request) {
		blob, ok := blobs[r.PathValue("username")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(blob)
	})
	mux.HandleFunc("PUT /api/users/{username}/data", func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		blobs[r.PathValue("username")] = raw
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestService_LoginOnline(t *testing.T) {
	blob, _ := persist.Encode(sampleState())
	srv := fakeStore(t, map[string][]byte{"ada": blob})

	db := testDB(t)
	svc := persist.NewService(db, persist.NewClient(srv.URL, time.Second))

	data, err := svc.Login(context.Background(), "ada", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if data.Offline {
		t.Error("online login should not be offline")
	}
	if data.State.Name != "Ada" {
		t.Errorf("unexpected state: %+v", data.State)
	}

	// The session is stored and the cache warmed.
	username, _ := svc.ActiveUsername()
	if username != "ada" {
		t.Errorf("expected active user ada, got %q", username)
	}
}

func TestService_LoginBadCredentials(t *testing.T) {
	blob, _ := persist.Encode(sampleState())
	srv := fakeStore(t, map[string][]byte{"ada": blob})

	db := testDB(t)
	svc := persist.NewService(db, persist.NewClient(srv.URL, time.Second))

	_, err := svc.Login(context.Background(), "ada", "wrong")
	if err != domain.ErrBadCredentials {
		t.Errorf("expected ErrBadCredentials, got %v", err)
	}
}

func TestService_LoginFallsBackOffline(t *testing.T) {
	blob, _ := persist.Encode(sampleState())
	srv := fakeStore(t, map[string][]byte{"ada": blob})

	db := testDB(t)
	svc := persist.NewService(db, persist.NewClient(srv.URL, time.Second))

	if _, err := svc.Login(context.Background(), "ada", "secret"); err != nil {
		t.Fatalf("warm-up login: %v", err)
	}
	_ = svc.Logout()

	// Remote goes away; the cached copy still logs in.
	srv.Close()
	data, err := svc.Login(context.Background(), "ada", "secret")
	if err != nil {
		t.Fatalf("offline login: %v", err)
	}
	if !data.Offline {
		t.Error("expected the offline annotation")
	}
	if data.State.Name != "Ada" {
		t.Errorf("cached state lost: %+v", data.State)
	}
}

func TestService_LoginNoCacheNoRemote(t *testing.T) {
	srv := fakeStore(t, map[string][]byte{})
	db := testDB(t)
	svc := persist.NewService(db, persist.NewClient(srv.URL, time.Second))
	srv.Close()

	_, err := svc.Login(context.Background(), "nobody", "secret")
	if err != domain.ErrNoCachedData {
		t.Errorf("expected ErrNoCachedData, got %v", err)
	}
}

func TestService_SaveSurvivesRemoteFailure(t *testing.T) {
	srv := fakeStore(t, map[string][]byte{})
	db := testDB(t)
	svc := persist.NewService(db, persist.NewClient(srv.URL, time.Second))
	srv.Close()

	st := sampleState()
	if err := svc.SaveUserData(context.Background(), "ada", st); err != nil {
		t.Fatalf("save with dead remote should still cache locally: %v", err)
	}

	raw, _, err := db.GetUserBlob("ada")
	if err != nil || raw == nil {
		t.Fatalf("expected cached blob, got raw=%v err=%v", raw, err)
	}
}

func TestService_GetSessionRequiresLogin(t *testing.T) {
	db := testDB(t)
	svc := persist.NewService(db, nil)

	_, err := svc.GetSession(context.Background())
	if err != domain.ErrNotAuthenticated {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
}

func TestService_RegisterOpensSession(t *testing.T) {
	srv := fakeStore(t, map[string][]byte{})
	db := testDB(t)
	svc := persist.NewService(db, persist.NewClient(srv.URL, time.Second))

	st := sampleState()
	msg, err := svc.Register(context.Background(), st, "secret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if msg != "verification email sent" {
		t.Errorf("expected the remote message through, got %q", msg)
	}

	username, _ := svc.ActiveUsername()
	if username != "ada" {
		t.Errorf("expected session opened for ada, got %q", username)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Session Tests
// ═══════════════════════════════════════════════════════════════════════════

func TestSession_ApplyReplacesWholesale(t *testing.T) {
	db := testDB(t)
	svc := persist.NewService(db, nil)
	session := persist.NewSession(svc, 10*time.Millisecond)

	session.Start("ada", sampleState())

	err := session.Apply(func(st domain.UserState) (domain.UserState, error) {
		next, _, err := gamify.CreateHabit(st, "Journal", domain.FreqDaily, time.Now())
		return next, err
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	st, _ := session.State()
	if len(st.Habits) != 2 {
		t.Errorf("expected 2 habits after apply, got %d", len(st.Habits))
	}

	// The debounced save lands in the cache.
	time.Sleep(60 * time.Millisecond)
	raw, _, _ := db.GetUserBlob("ada")
	if raw == nil {
		t.Fatal("expected debounced save to reach the cache")
	}
}

func TestSession_ApplyErrorLeavesStateIntact(t *testing.T) {
	db := testDB(t)
	svc := persist.NewService(db, nil)
	session := persist.NewSession(svc, time.Hour)

	session.Start("ada", sampleState())
	before, _ := session.State()

	err := session.Apply(func(st domain.UserState) (domain.UserState, error) {
		next, _, err := gamify.CreateHabit(st, "   ", domain.FreqDaily, time.Now())
		return next, err
	})
	if err != domain.ErrEmptyTitle {
		t.Fatalf("expected validation error, got %v", err)
	}

	after, _ := session.State()
	if len(after.Habits) != len(before.Habits) || after.XP != before.XP {
		t.Error("failed apply must not change the aggregate")
	}
}

func TestSession_RequiresStart(t *testing.T) {
	db := testDB(t)
	svc := persist.NewService(db, nil)
	session := persist.NewSession(svc, time.Hour)

	if _, err := session.State(); err != domain.ErrNotAuthenticated {
		t.Errorf("expected ErrNotAuthenticated, got %v", err)
	}
	err := session.Apply(func(st domain.UserState) (domain.UserState, error) { return st, nil })
	if err != domain.ErrNotAuthenticated {
		t.Errorf("expected ErrNotAuthenticated from apply, got %v", err)
	}
}

func TestSession_EndFlushesAndClears(t *testing.T) {
	db := testDB(t)
	svc := persist.NewService(db, nil)
	session := persist.NewSession(svc, time.Hour)

	_ = db.SetSession("active_user", "ada")
	session.Start("ada", sampleState())

	if err := session.End(); err != nil {
		t.Fatalf("end: %v", err)
	}

	// The final flush persisted despite the long debounce window.
	raw, _, _ := db.GetUserBlob("ada")
	if raw == nil {
		t.Fatal("expected the final flush in the cache")
	}

	if _, err := session.State(); err != domain.ErrNotAuthenticated {
		t.Error("session should be cleared after End")
	}
	username, _ := svc.ActiveUsername()
	if username != "" {
		t.Errorf("stored session should be cleared, got %q", username)
	}
}

func TestMain(m *testing.M) {
	os.Exit(m.Run())
}
