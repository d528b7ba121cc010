package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"dues/internal/services"
)

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	ref := s.members.Now()
	members := s.members.Search(strings.TrimSpace(r.URL.Query().Get("q")))

	out := make([]memberView, 0, len(members))
	for _, m := range members {
		out = append(out, newMemberView(m, ref, false))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in, err := req.toNewMember()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	m, err := s.members.AddMember(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newMemberView(m, s.members.Now(), true))
}

func (s *Server) handleGetMember(w http.ResponseWriter, r *http.Request) {
	m, err := s.members.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newMemberView(m, s.members.Now(), true))
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in, err := req.toNewPayment()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	m, err := s.members.RecordPayment(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newMemberView(m, s.members.Now(), true))
}

func (s *Server) handleSendReminder(w http.ResponseWriter, r *http.Request) {
	var req reminderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	in, err := req.toNewReminder()
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	m, err := s.members.SendReminder(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newMemberView(m, s.members.Now(), true))
}

func (s *Server) handleSetActive(active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := s.members.SetActive(r.Context(), chi.URLParam(r, "id"), active)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, newMemberView(m, s.members.Now(), false))
	}
}

func (s *Server) handleDueMembers(w http.ResponseWriter, r *http.Request) {
	ref := s.members.Now()
	due := s.members.DueMembers(ref)

	out := make([]memberView, 0, len(due))
	for _, m := range due {
		out = append(out, newMemberView(m, ref, false))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePeriodStats(w http.ResponseWriter, r *http.Request) {
	period, err := parseMonthParams(r.URL.Query(), s.members.Now())
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newStatsView(s.members.PeriodStats(period.Month, period.Year)))
}

// compile-time check that the concrete service satisfies the handler port
var _ MemberService = (*services.MemberService)(nil)
