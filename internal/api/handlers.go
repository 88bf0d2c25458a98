package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/twinlab/twin/internal/app/gamify"
	"github.com/twinlab/twin/internal/app/i18n"
	"github.com/twinlab/twin/internal/domain"
	"github.com/twinlab/twin/internal/infra/metrics"
	"github.com/twinlab/twin/internal/suggest"
)

// outcomeView is the reward summary returned with every gamified
// action so the UI can toast without diffing state.
type outcomeView struct {
	XPAwarded   int    `json:"xpAwarded"`
	LeveledUp   bool   `json:"leveledUp"`
	NewLevel    int    `json:"newLevel"`
	StreakBonus bool   `json:"streakBonus,omitempty"`
	Warning     string `json:"warning,omitempty"`
}

func viewOutcome(oc gamify.Outcome) outcomeView {
	v := outcomeView{
		XPAwarded:   oc.XPAwarded,
		LeveledUp:   oc.LeveledUp,
		NewLevel:    oc.NewLevel,
		StreakBonus: oc.StreakBonus,
	}
	if oc.CapExceeded {
		v.Warning = "daily reward cap reached: completion recorded, no XP awarded"
	}
	return v
}

// recordOutcome feeds the reward side effects into Prometheus.
func recordOutcome(oc gamify.Outcome, source string) {
	if oc.XPAwarded > 0 {
		metrics.XPEarned.WithLabelValues(source).Add(float64(oc.XPAwarded))
	}
	if oc.LeveledUp {
		metrics.LevelUps.Inc()
	}
	if oc.CapExceeded {
		metrics.CapExceeded.WithLabelValues(source).Inc()
	}
}

// ─── State & energy ─────────────────────────────────────────────────────────

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	st, err := s.session.State()
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	now := time.Now()
	today := domain.ISODate(now)
	var sample *domain.HealthSample
	if hs, ok := st.HealthData[today]; ok {
		sample = &hs
	}
	var dayCtx *domain.DayContext
	if dc, ok := st.DailyContext[today]; ok {
		dayCtx = &dc
	}
	energy := gamify.ComputeEnergy(now, sample, dayCtx)

	info := gamify.LevelFromXP(st.XP)
	progress := info.ProgressPercent
	// Display clamp only; the model itself does not clamp.
	if progress > 100 {
		progress = 100
	}

	avatarURL := suggest.BaseAvatarURL(st.Name)
	if s.suggest != nil {
		avatarURL = s.suggest.RenderAvatarPreview(r.Context(), suggest.ProfileSnapshot{
			Name:  st.Name,
			Level: st.TwinLevel,
			Title: st.LevelTitle,
			Theme: st.Preferences.Theme,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"state": st,
		"display": map[string]interface{}{
			"energy":          energy,
			"avatar":          gamify.AvatarState(now, energy),
			"avatarUrl":       avatarURL,
			"progressPercent": progress,
			"unread":          st.UnreadCount(),
		},
	})
}

func (s *Server) handleEnergy(w http.ResponseWriter, r *http.Request) {
	st, err := s.session.State()
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	now := time.Now()
	today := domain.ISODate(now)
	var sample *domain.HealthSample
	if hs, ok := st.HealthData[today]; ok {
		sample = &hs
	}
	var dayCtx *domain.DayContext
	if dc, ok := st.DailyContext[today]; ok {
		dayCtx = &dc
	}
	energy := gamify.ComputeEnergy(now, sample, dayCtx)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"energy": energy,
		"gauge":  st.Energy,
		"avatar": gamify.AvatarState(now, energy),
	})
}

// ─── Inbox ──────────────────────────────────────────────────────────────────

func (s *Server) handleInbox(w http.ResponseWriter, r *http.Request) {
	st, err := s.session.State()
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	lang := st.Preferences.Language
	vars := i18n.Vars{Name: st.Name, Email: st.Email}

	type renderedMessage struct {
		domain.InboxMessage
		Rendered struct {
			Sender  string `json:"sender"`
			Subject string `json:"subject"`
			Body    string `json:"body"`
		} `json:"rendered"`
	}

	out := make([]renderedMessage, len(st.Messages))
	for i, m := range st.Messages {
		out[i].InboxMessage = m
		out[i].Rendered.Sender = i18n.Render(lang, m.Sender, vars)
		out[i].Rendered.Subject = i18n.Render(lang, m.Subject, vars)
		out[i].Rendered.Body = i18n.Render(lang, m.Body, vars)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"messages": out,
		"unread":   st.UnreadCount(),
	})
}

func (s *Server) handleInboxRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.session.Apply(func(st domain.UserState) (domain.UserState, error) {
		out := st.Clone()
		for i := range out.Messages {
			if out.Messages[i].ID == id {
				out.Messages[i].Read = true
				return out, nil
			}
		}
		return st, domain.ErrMessageNotFound
	})
	if err != nil {
		writeError(w, http.StatusNotFound, "message not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ─── Habits ─────────────────────────────────────────────────────────────────

type createHabitRequest struct {
	Title     string `json:"title"`
	Frequency string `json:"frequency"`
}

func (s *Server) handleCreateHabit(w http.ResponseWriter, r *http.Request) {
	var req createHabitRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var oc gamify.Outcome
	err := s.session.Apply(func(st domain.UserState) (domain.UserState, error) {
		next, outcome, err := gamify.CreateHabit(st, req.Title, domain.Frequency(req.Frequency), time.Now())
		oc = outcome
		return next, err
	})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	recordOutcome(oc, "create_habit")
	writeJSON(w, http.StatusCreated, viewOutcome(oc))
}

func (s *Server) handleToggleHabit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var oc gamify.Outcome
	err := s.session.Apply(func(st domain.UserState) (domain.UserState, error) {
		next, outcome, err := gamify.ToggleHabit(st, id, time.Now())
		oc = outcome
		return next, err
	})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	metrics.HabitCompletions.Inc()
	recordOutcome(oc, "complete_habit")
	writeJSON(w, http.StatusOK, viewOutcome(oc))
}

func (s *Server) handleDeleteHabit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.session.Apply(func(st domain.UserState) (domain.UserState, error) {
		return gamify.DeleteHabit(st, id)
	})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ─── Day plan ───────────────────────────────────────────────────────────────

type addBlockRequest struct {
	Title     string `json:"title"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Type      string `json:"type"`
}

func (s *Server) handleAddBlock(w http.ResponseWriter, r *http.Request) {
	var req addBlockRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var oc gamify.Outcome
	err := s.session.Apply(func(st domain.UserState) (domain.UserState, error) {
		next, outcome, err := gamify.AddBlock(st, req.Title, req.StartTime, req.EndTime,
			domain.BlockType(req.Type), time.Now())
		oc = outcome
		return next, err
	})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	recordOutcome(oc, "plan_day")
	writeJSON(w, http.StatusCreated, viewOutcome(oc))
}

func (s *Server) handleToggleBlock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var blockType domain.BlockType
	var oc gamify.Outcome
	err := s.session.Apply(func(st domain.UserState) (domain.UserState, error) {
		if b, ok := st.DayPlan.FindActual(id); ok {
			blockType = b.Type
		}
		next, outcome, err := gamify.ToggleBlock(st, id, time.Now())
		oc = outcome
		return next, err
	})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	metrics.BlockCompletions.WithLabelValues(string(blockType)).Inc()
	recordOutcome(oc, "complete_block")
	writeJSON(w, http.StatusOK, viewOutcome(oc))
}

func (s *Server) handleDeleteBlock(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.session.Apply(func(st domain.UserState) (domain.UserState, error) {
		return gamify.DeleteBlock(st, id)
	})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type generatePlanRequest struct {
	Goals       []string `json:"goals"`
	Preferences string   `json:"preferences"`
}

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	if s.suggest == nil {
		writeError(w, http.StatusServiceUnavailable, "suggestion service not configured")
		return
	}

	var req generatePlanRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	st, err := s.session.State()
	if err != nil {
		writeError(w, http.StatusUnauthorized, err.Error())
		return
	}

	blocks, err := s.suggest.GeneratePlan(r.Context(), req.Goals, req.Preferences, st.Preferences.Language)
	if err != nil {
		// Fail closed: the existing plan stays untouched.
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	var oc gamify.Outcome
	if err := s.session.Apply(func(st domain.UserState) (domain.UserState, error) {
		next, outcome := gamify.ApplyGeneratedPlan(st, blocks, time.Now())
		oc = outcome
		return next, nil
	}); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	recordOutcome(oc, "plan_day")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"outcome": viewOutcome(oc),
		"blocks":  blocks,
	})
}

type clearPlanRequest struct {
	Confirm bool `json:"confirm"`
}

func (s *Server) handleClearPlan(w http.ResponseWriter, r *http.Request) {
	var req clearPlanRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	// Destructive and irreversible; the caller must confirm.
	if !req.Confirm {
		writeError(w, http.StatusBadRequest, "clearing the plan requires confirm=true")
		return
	}

	err := s.session.Apply(func(st domain.UserState) (domain.UserState, error) {
		return gamify.ClearPlan(st), nil
	})
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}
