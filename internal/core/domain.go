package core

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	ReminderSMS      ReminderMethod = "sms"
	ReminderPhone    ReminderMethod = "phone"
	ReminderEmail    ReminderMethod = "email"
	ReminderWhatsApp ReminderMethod = "whatsapp"
)

const (
	// DefaultCollectionMethod is recorded when a payment does not name one.
	// Collection is door-to-door, so cash is the norm.
	DefaultCollectionMethod = "Cash"
	// DefaultReminderMessage replaces a blank reminder message.
	DefaultReminderMessage = "Friendly reminder about your monthly subscription"
)

type (
	ReminderMethod string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Member struct {
		ID                 string
		Name               string
		Address            string
		Phone              string
		Email              string // optional
		SubscriptionAmount Money
		StartDate          Date
		Notes              string // optional
		IsActive           bool
		PaymentHistory     []Payment  // insertion order
		RemindersSent      []Reminder // insertion order
	}

	Payment struct {
		ID               string
		Date             Date
		Amount           Money
		Notes            string
		CollectedBy      string
		CollectionMethod string
	}

	Reminder struct {
		ID      string
		Date    Date
		Method  ReminderMethod
		Message string
		SentBy  string
	}
)

var (
	ErrInvalidDate           = errors.New("invalid date")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrEmptyName             = errors.New("empty name")
	ErrEmptyAddress          = errors.New("empty address")
	ErrEmptyPhone            = errors.New("empty phone")
	ErrEmptyID               = errors.New("empty id")
	ErrInvalidReminderMethod = errors.New("invalid reminder method")
)

// ReminderMethods lists the accepted outreach channels in display order.
func ReminderMethods() []ReminderMethod {
	return []ReminderMethod{ReminderSMS, ReminderPhone, ReminderEmail, ReminderWhatsApp}
}

func (m ReminderMethod) IsValid() bool {
	switch m {
	case ReminderSMS, ReminderPhone, ReminderEmail, ReminderWhatsApp:
		return true
	default:
		return false
	}
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a date string in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(time.DateOnly)
}

// AddMonth advances d by one calendar month keeping the day of month. When the
// target month is shorter the day is clamped to its last day (31 Jan -> 28/29 Feb).
func (d Date) AddMonth() Date {
	y, m, day := d.Date()
	lastDay := time.Date(y, m+2, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDay {
		day = lastDay
	}
	return Date{Time: time.Date(y, m+1, day, 0, 0, 0, 0, time.UTC)}
}

// InPeriod reports whether d falls in the given calendar month and year.
func (d Date) InPeriod(month time.Month, year int) bool {
	return d.Time.Month() == month && d.Time.Year() == year
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (p Payment) Validate() error {
	if p.ID == "" {
		return ErrEmptyID
	}
	if err := p.Date.Validate(); err != nil {
		return err
	}
	return p.Amount.Validate()
}

func (r Reminder) Validate() error {
	if r.ID == "" {
		return ErrEmptyID
	}
	if err := r.Date.Validate(); err != nil {
		return err
	}
	if !r.Method.IsValid() {
		return ErrInvalidReminderMethod
	}
	return nil
}

func (m Member) Validate() error {
	if m.ID == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(m.Address) == "" {
		return ErrEmptyAddress
	}
	if strings.TrimSpace(m.Phone) == "" {
		return ErrEmptyPhone
	}
	if err := m.SubscriptionAmount.Validate(); err != nil {
		return err
	}
	if err := m.StartDate.Validate(); err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	return nil
}

// LastPayment returns the payment with the latest date. Among payments sharing
// that date the earliest recorded one is returned; callers must only rely on
// its date.
func (m Member) LastPayment() (Payment, bool) {
	if len(m.PaymentHistory) == 0 {
		return Payment{}, false
	}
	last := m.PaymentHistory[0]
	for _, p := range m.PaymentHistory[1:] {
		if p.Date.After(last.Date.Time) {
			last = p
		}
	}
	return last, true
}

// PaymentsNewestFirst returns a copy of the payment history sorted by date, newest first.
func (m Member) PaymentsNewestFirst() []Payment {
	out := slices.Clone(m.PaymentHistory)
	slices.SortStableFunc(out, func(a, b Payment) int {
		return b.Date.Compare(a.Date.Time)
	})
	return out
}

// RemindersNewestFirst returns a copy of the reminders sorted by date, newest first.
func (m Member) RemindersNewestFirst() []Reminder {
	out := slices.Clone(m.RemindersSent)
	slices.SortStableFunc(out, func(a, b Reminder) int {
		return b.Date.Compare(a.Date.Time)
	})
	return out
}

// Matches reports whether the member matches a search query: case-insensitive
// substring of name or address, or plain substring of phone.
func (m Member) Matches(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(m.Name), q) ||
		strings.Contains(strings.ToLower(m.Address), q) ||
		strings.Contains(m.Phone, query)
}

// Clone returns a deep copy so callers never share the nested slices.
func (m Member) Clone() Member {
	out := m
	out.PaymentHistory = append(make([]Payment, 0, len(m.PaymentHistory)), m.PaymentHistory...)
	out.RemindersSent = append(make([]Reminder, 0, len(m.RemindersSent)), m.RemindersSent...)
	return out
}
