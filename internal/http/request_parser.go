package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"dues/internal/core"
	"dues/internal/services"
)

const maxBodyBytes = 1 << 20

var errBadJSON = errors.New("malformed JSON body")

// amountField accepts an amount written either as a JSON number or a string
// such as "12,50".
type amountField string

func (a *amountField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = amountField(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount must be a number or string: %w", err)
	}
	*a = amountField(n.String())
	return nil
}

func (a amountField) money() (core.Money, error) {
	if strings.TrimSpace(string(a)) == "" {
		return core.Money{}, core.ErrInvalidAmount
	}
	cents, err := core.ParseDecimalToCents(string(a))
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

type addMemberRequest struct {
	Name               string      `json:"name"`
	Address            string      `json:"address"`
	Phone              string      `json:"phone"`
	Email              string      `json:"email"`
	SubscriptionAmount amountField `json:"subscriptionAmount"`
	StartDate          string      `json:"startDate"`
	Notes              string      `json:"notes"`
}

type paymentRequest struct {
	Date             string      `json:"date"`
	Amount           amountField `json:"amount"`
	Notes            string      `json:"notes"`
	CollectedBy      string      `json:"collectedBy"`
	CollectionMethod string      `json:"collectionMethod"`
}

type reminderRequest struct {
	Date    string `json:"date"`
	Method  string `json:"method"`
	Message string `json:"message"`
	SentBy  string `json:"sentBy"`
}

// Conversion errors are wrapped in services.ErrValidation so they map to 422
// like the service's own checks.

func (req addMemberRequest) toNewMember() (services.NewMember, error) {
	amount, err := req.SubscriptionAmount.money()
	if err != nil {
		return services.NewMember{}, invalid("subscriptionAmount", err)
	}
	start, err := core.ParseDate(req.StartDate)
	if err != nil {
		return services.NewMember{}, invalid("startDate", err)
	}
	return services.NewMember{
		Name:               req.Name,
		Address:            req.Address,
		Phone:              req.Phone,
		Email:              req.Email,
		SubscriptionAmount: amount,
		StartDate:          start,
		Notes:              req.Notes,
	}, nil
}

// toNewPayment requires an explicit date; a blank one is rejected.
func (req paymentRequest) toNewPayment() (services.NewPayment, error) {
	amount, err := req.Amount.money()
	if err != nil {
		return services.NewPayment{}, invalid("amount", err)
	}
	if strings.TrimSpace(req.Date) == "" {
		return services.NewPayment{}, invalid("date", core.ErrInvalidDate)
	}
	date, err := core.ParseDate(strings.TrimSpace(req.Date))
	if err != nil {
		return services.NewPayment{}, invalid("date", err)
	}
	return services.NewPayment{
		Date:             date,
		Amount:           amount,
		Notes:            req.Notes,
		CollectedBy:      req.CollectedBy,
		CollectionMethod: req.CollectionMethod,
	}, nil
}

func (req reminderRequest) toNewReminder() (services.NewReminder, error) {
	var date core.Date
	if strings.TrimSpace(req.Date) != "" {
		d, err := core.ParseDate(req.Date)
		if err != nil {
			return services.NewReminder{}, invalid("date", err)
		}
		date = d
	}
	return services.NewReminder{
		Date:    date,
		Method:  core.ReminderMethod(strings.ToLower(strings.TrimSpace(req.Method))),
		Message: req.Message,
		SentBy:  req.SentBy,
	}, nil
}

func invalid(field string, err error) error {
	return fmt.Errorf("%w: %s: %w", services.ErrValidation, field, err)
}

// decodeBody decodes a JSON request body, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, r, http.StatusBadRequest, fmt.Sprintf("%v: %v", errBadJSON, err))
		return false
	}
	return true
}

// MonthParams holds parsed year/month values from request parameters.
type MonthParams struct {
	Year  int
	Month time.Month
}

// parseMonthParams reads month (1-12) and year from the query, defaulting
// either one to the month containing now.
func parseMonthParams(query url.Values, now time.Time) (MonthParams, error) {
	params := MonthParams{Year: now.Year(), Month: now.Month()}

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 || y > 9999 {
			return MonthParams{}, fmt.Errorf("invalid year %q", v)
		}
		params.Year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			return MonthParams{}, fmt.Errorf("invalid month %q: must be 1-12", v)
		}
		params.Month = time.Month(m)
	}
	return params, nil
}
