package core

import (
	"errors"
	"testing"
	"time"
)

func validMember() Member {
	return Member{
		ID:                 "m1",
		Name:               "Asha Rao",
		Address:            "12 Temple Road",
		Phone:              "9876543210",
		SubscriptionAmount: Money{Cents: 50000},
		StartDate:          NewDate(2024, 1, 1),
		IsActive:           true,
	}
}

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2024 || d.Month() != 2 || d.Day() != 29 {
		t.Fatalf("unexpected date %v", d)
	}
	for _, in := range []string{"", "2023-02-29", "29/02/2024", "2024-13-01"} {
		if _, err := ParseDate(in); !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ParseDate(%q) error = %v, want ErrInvalidDate", in, err)
		}
	}
}

func TestDateOfUsesOwnLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	ref := time.Date(2024, 3, 1, 1, 0, 0, 0, ist) // still 29 Feb in UTC
	if got := DateOf(ref); got != NewDate(2024, 3, 1) {
		t.Fatalf("DateOf = %v, want 2024-03-01", got)
	}
}

func TestDateAddMonth(t *testing.T) {
	tests := []struct {
		name string
		in   Date
		want Date
	}{
		{"mid month", NewDate(2024, 1, 15), NewDate(2024, 2, 15)},
		{"31 Jan clamps to leap 29 Feb", NewDate(2024, 1, 31), NewDate(2024, 2, 29)},
		{"31 Jan clamps to 28 Feb", NewDate(2023, 1, 31), NewDate(2023, 2, 28)},
		{"31 Mar clamps to 30 Apr", NewDate(2024, 3, 31), NewDate(2024, 4, 30)},
		{"December rolls the year", NewDate(2024, 12, 31), NewDate(2025, 1, 31)},
		{"30 Jan to 29 Feb", NewDate(2024, 1, 30), NewDate(2024, 2, 29)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.AddMonth(); got != tt.want {
				t.Errorf("AddMonth(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDateInPeriod(t *testing.T) {
	d := NewDate(2024, 5, 31)
	if !d.InPeriod(time.May, 2024) {
		t.Error("expected date in May 2024")
	}
	if d.InPeriod(time.May, 2023) || d.InPeriod(time.June, 2024) {
		t.Error("expected date outside other periods")
	}
}

func TestMemberValidate(t *testing.T) {
	if err := validMember().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Member)
		want   error
	}{
		{"blank name", func(m *Member) { m.Name = "  " }, ErrEmptyName},
		{"blank address", func(m *Member) { m.Address = "" }, ErrEmptyAddress},
		{"blank phone", func(m *Member) { m.Phone = "" }, ErrEmptyPhone},
		{"zero amount", func(m *Member) { m.SubscriptionAmount = Money{} }, ErrInvalidAmount},
		{"missing id", func(m *Member) { m.ID = "" }, ErrEmptyID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMember()
			tt.mutate(&m)
			if err := m.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}

	m := validMember()
	m.StartDate = Date{}
	if err := m.Validate(); err == nil {
		t.Error("expected error for missing start date")
	}
}

func TestPaymentAndReminderValidate(t *testing.T) {
	p := Payment{ID: "p1", Date: NewDate(2024, 1, 5), Amount: Money{Cents: 100}}
	if err := p.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	p.Amount = Money{Cents: -1}
	if err := p.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	r := Reminder{ID: "r1", Date: NewDate(2024, 1, 5), Method: ReminderWhatsApp}
	if err := r.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	r.Method = "pigeon"
	if err := r.Validate(); !errors.Is(err, ErrInvalidReminderMethod) {
		t.Fatalf("expected ErrInvalidReminderMethod, got %v", err)
	}
}

func TestLastPayment(t *testing.T) {
	m := validMember()
	if _, ok := m.LastPayment(); ok {
		t.Fatal("expected no last payment for empty history")
	}

	m.PaymentHistory = []Payment{
		{ID: "a", Date: NewDate(2024, 3, 1), Amount: Money{Cents: 100}},
		{ID: "b", Date: NewDate(2024, 5, 1), Amount: Money{Cents: 200}},
		{ID: "c", Date: NewDate(2024, 4, 1), Amount: Money{Cents: 300}},
		{ID: "d", Date: NewDate(2024, 5, 1), Amount: Money{Cents: 400}},
	}
	last, ok := m.LastPayment()
	if !ok {
		t.Fatal("expected last payment")
	}
	if last.Date != NewDate(2024, 5, 1) {
		t.Fatalf("last payment date = %v, want 2024-05-01", last.Date)
	}
}

func TestNewestFirstCopies(t *testing.T) {
	m := validMember()
	m.PaymentHistory = []Payment{
		{ID: "old", Date: NewDate(2024, 1, 1)},
		{ID: "new", Date: NewDate(2024, 3, 1)},
		{ID: "mid", Date: NewDate(2024, 2, 1)},
	}
	m.RemindersSent = []Reminder{
		{ID: "r-old", Date: NewDate(2024, 1, 1)},
		{ID: "r-new", Date: NewDate(2024, 2, 1)},
	}

	payments := m.PaymentsNewestFirst()
	if payments[0].ID != "new" || payments[1].ID != "mid" || payments[2].ID != "old" {
		t.Fatalf("unexpected order: %v", payments)
	}
	if m.PaymentHistory[0].ID != "old" {
		t.Fatal("sorting must not reorder the stored history")
	}
	reminders := m.RemindersNewestFirst()
	if reminders[0].ID != "r-new" {
		t.Fatalf("unexpected reminder order: %v", reminders)
	}
}

func TestMemberMatches(t *testing.T) {
	m := validMember()
	tests := []struct {
		query string
		want  bool
	}{
		{"", true},
		{"asha", true},
		{"TEMPLE", true},
		{"98765", true},
		{"nobody", false},
	}
	for _, tt := range tests {
		if got := m.Matches(tt.query); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}

func TestMemberCloneDoesNotAlias(t *testing.T) {
	m := validMember()
	m.PaymentHistory = []Payment{{ID: "p1"}}
	c := m.Clone()
	c.PaymentHistory[0].ID = "changed"
	c.RemindersSent = append(c.RemindersSent, Reminder{ID: "r1"})
	if m.PaymentHistory[0].ID != "p1" || len(m.RemindersSent) != 0 {
		t.Fatal("clone shares state with original")
	}
	if (Member{}).Clone().PaymentHistory == nil {
		t.Fatal("clone should produce empty, non-nil histories")
	}
}

func TestReminderMethods(t *testing.T) {
	for _, m := range ReminderMethods() {
		if !m.IsValid() {
			t.Errorf("%q should be valid", m)
		}
	}
	if ReminderMethod("fax").IsValid() {
		t.Error("fax should be invalid")
	}
}
