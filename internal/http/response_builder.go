package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"dues/internal/core"
	applog "dues/internal/log"
	"dues/internal/services"
)

type paymentView struct {
	ID               string      `json:"id"`
	Date             string      `json:"date"`
	Amount           json.Number `json:"amount"`
	Notes            string      `json:"notes"`
	CollectedBy      string      `json:"collectedBy"`
	CollectionMethod string      `json:"collectionMethod"`
}

type reminderView struct {
	ID      string `json:"id"`
	Date    string `json:"date"`
	Method  string `json:"method"`
	Message string `json:"message"`
	SentBy  string `json:"sentBy"`
}

type memberView struct {
	ID                 string         `json:"id"`
	Name               string         `json:"name"`
	Address            string         `json:"address"`
	Phone              string         `json:"phone"`
	Email              string         `json:"email"`
	SubscriptionAmount json.Number    `json:"subscriptionAmount"`
	StartDate          string         `json:"startDate"`
	Notes              string         `json:"notes"`
	IsActive           bool           `json:"isActive"`
	PaymentDue         bool           `json:"paymentDue"`
	NextDueDate        string         `json:"nextDueDate"`
	LastPaymentDate    string         `json:"lastPaymentDate,omitempty"`
	PaymentCount       int            `json:"paymentCount"`
	PaymentHistory     []paymentView  `json:"paymentHistory,omitempty"`
	RemindersSent      []reminderView `json:"remindersSent,omitempty"`
}

// newMemberView renders a member with its due status at ref. Histories are
// included newest first when detailed is set.
func newMemberView(m core.Member, ref time.Time, detailed bool) memberView {
	v := memberView{
		ID:                 m.ID,
		Name:               m.Name,
		Address:            m.Address,
		Phone:              m.Phone,
		Email:              m.Email,
		SubscriptionAmount: json.Number(m.SubscriptionAmount.Decimal()),
		StartDate:          m.StartDate.String(),
		Notes:              m.Notes,
		IsActive:           m.IsActive,
		PaymentDue:         services.IsPaymentDue(m, ref),
		NextDueDate:        services.NextDueDate(m).String(),
		PaymentCount:       len(m.PaymentHistory),
	}
	if last, ok := m.LastPayment(); ok {
		v.LastPaymentDate = last.Date.String()
	}
	if !detailed {
		return v
	}

	v.PaymentHistory = make([]paymentView, 0, len(m.PaymentHistory))
	for _, p := range m.PaymentsNewestFirst() {
		v.PaymentHistory = append(v.PaymentHistory, paymentView{
			ID:               p.ID,
			Date:             p.Date.String(),
			Amount:           json.Number(p.Amount.Decimal()),
			Notes:            p.Notes,
			CollectedBy:      p.CollectedBy,
			CollectionMethod: p.CollectionMethod,
		})
	}
	v.RemindersSent = make([]reminderView, 0, len(m.RemindersSent))
	for _, r := range m.RemindersNewestFirst() {
		v.RemindersSent = append(v.RemindersSent, reminderView{
			ID:      r.ID,
			Date:    r.Date.String(),
			Method:  string(r.Method),
			Message: r.Message,
			SentBy:  r.SentBy,
		})
	}
	return v
}

type statsView struct {
	Year      int         `json:"year"`
	Month     int         `json:"month"`
	Expected  json.Number `json:"expected"`
	Collected json.Number `json:"collected"`
	Pending   json.Number `json:"pending"`
	Variance  json.Number `json:"variance"`
	Members   int         `json:"members"`
	Paid      int         `json:"paid"`
}

func newStatsView(s services.PeriodStats) statsView {
	return statsView{
		Year:      s.Year,
		Month:     int(s.Month),
		Expected:  json.Number(s.Expected.Decimal()),
		Collected: json.Number(s.Collected.Decimal()),
		Pending:   json.Number(s.Pending.Decimal()),
		Variance:  json.Number(s.Variance.Decimal()),
		Members:   s.Members,
		Paid:      s.Paid,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	errType := applog.ErrorTypeInternal
	switch status {
	case http.StatusBadRequest:
		errType = applog.ErrorTypeBadRequest
	case http.StatusNotFound:
		errType = applog.ErrorTypeNotFound
	case http.StatusUnprocessableEntity:
		errType = applog.ErrorTypeValidation
	}
	applog.FromContext(r.Context()).DebugContext(r.Context(), "Request rejected",
		applog.NewFields().WithErrorType(errType).WithHTTPRequest(r.Method, r.URL.Path, "", "").ToSlice()...)

	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps service errors to status codes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrMemberNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrValidation):
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
	default:
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Unexpected service error", applog.FieldError, err)
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
