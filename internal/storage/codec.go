package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"dues/internal/core"
)

// Wire records for the persisted snapshot. Field names follow the browser
// tool's localStorage layout so an exported "members" value can be imported as is.
type (
	memberRecord struct {
		ID                 string           `json:"id"`
		Name               string           `json:"name"`
		Address            string           `json:"address"`
		Phone              string           `json:"phone"`
		Email              string           `json:"email"`
		SubscriptionAmount json.Number      `json:"subscriptionAmount"`
		StartDate          string           `json:"startDate"`
		Notes              string           `json:"notes"`
		IsActive           *bool            `json:"isActive"`
		PaymentHistory     []paymentRecord  `json:"paymentHistory"`
		RemindersSent      []reminderRecord `json:"remindersSent"`
	}

	paymentRecord struct {
		ID               string      `json:"id"`
		Date             string      `json:"date"`
		Amount           json.Number `json:"amount"`
		Notes            string      `json:"notes"`
		CollectedBy      string      `json:"collectedBy"`
		CollectionMethod string      `json:"collectionMethod"`
	}

	reminderRecord struct {
		ID      string `json:"id"`
		Date    string `json:"date"`
		Method  string `json:"method"`
		Message string `json:"message"`
		SentBy  string `json:"sentBy"`
	}
)

// EncodeMembers serializes the full collection as a single JSON array.
func EncodeMembers(members []core.Member) ([]byte, error) {
	records := make([]memberRecord, 0, len(members))
	for _, m := range members {
		records = append(records, toMemberRecord(m))
	}
	return json.Marshal(records)
}

// DecodeMembers parses a snapshot produced by EncodeMembers or by the browser
// tool. Missing isActive decodes as true and missing histories as empty lists.
func DecodeMembers(data []byte) ([]core.Member, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var records []memberRecord
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode members: %w", err)
	}

	members := make([]core.Member, 0, len(records))
	for i, r := range records {
		m, err := fromMemberRecord(r)
		if err != nil {
			return nil, fmt.Errorf("member %d (%s): %w", i, r.ID, err)
		}
		members = append(members, m)
	}
	return members, nil
}

func toMemberRecord(m core.Member) memberRecord {
	active := m.IsActive
	r := memberRecord{
		ID:                 m.ID,
		Name:               m.Name,
		Address:            m.Address,
		Phone:              m.Phone,
		Email:              m.Email,
		SubscriptionAmount: json.Number(m.SubscriptionAmount.Decimal()),
		StartDate:          m.StartDate.String(),
		Notes:              m.Notes,
		IsActive:           &active,
		PaymentHistory:     make([]paymentRecord, 0, len(m.PaymentHistory)),
		RemindersSent:      make([]reminderRecord, 0, len(m.RemindersSent)),
	}
	for _, p := range m.PaymentHistory {
		r.PaymentHistory = append(r.PaymentHistory, paymentRecord{
			ID:               p.ID,
			Date:             p.Date.String(),
			Amount:           json.Number(p.Amount.Decimal()),
			Notes:            p.Notes,
			CollectedBy:      p.CollectedBy,
			CollectionMethod: p.CollectionMethod,
		})
	}
	for _, rem := range m.RemindersSent {
		r.RemindersSent = append(r.RemindersSent, reminderRecord{
			ID:      rem.ID,
			Date:    rem.Date.String(),
			Method:  string(rem.Method),
			Message: rem.Message,
			SentBy:  rem.SentBy,
		})
	}
	return r
}

func fromMemberRecord(r memberRecord) (core.Member, error) {
	amount, err := decodeAmount(r.SubscriptionAmount)
	if err != nil {
		return core.Member{}, fmt.Errorf("subscription amount: %w", err)
	}
	start, err := decodeDate(r.StartDate)
	if err != nil {
		return core.Member{}, fmt.Errorf("start date: %w", err)
	}

	m := core.Member{
		ID:                 r.ID,
		Name:               r.Name,
		Address:            r.Address,
		Phone:              r.Phone,
		Email:              r.Email,
		SubscriptionAmount: amount,
		StartDate:          start,
		Notes:              r.Notes,
		IsActive:           r.IsActive == nil || *r.IsActive,
		PaymentHistory:     make([]core.Payment, 0, len(r.PaymentHistory)),
		RemindersSent:      make([]core.Reminder, 0, len(r.RemindersSent)),
	}

	for _, p := range r.PaymentHistory {
		amount, err := decodeAmount(p.Amount)
		if err != nil {
			return core.Member{}, fmt.Errorf("payment %s amount: %w", p.ID, err)
		}
		date, err := decodeDate(p.Date)
		if err != nil {
			return core.Member{}, fmt.Errorf("payment %s date: %w", p.ID, err)
		}
		m.PaymentHistory = append(m.PaymentHistory, core.Payment{
			ID:               p.ID,
			Date:             date,
			Amount:           amount,
			Notes:            p.Notes,
			CollectedBy:      p.CollectedBy,
			CollectionMethod: p.CollectionMethod,
		})
	}

	for _, rem := range r.RemindersSent {
		date, err := decodeDate(rem.Date)
		if err != nil {
			return core.Member{}, fmt.Errorf("reminder %s date: %w", rem.ID, err)
		}
		m.RemindersSent = append(m.RemindersSent, core.Reminder{
			ID:      rem.ID,
			Date:    date,
			Method:  core.ReminderMethod(rem.Method),
			Message: rem.Message,
			SentBy:  rem.SentBy,
		})
	}

	return m, nil
}

// decodeAmount keeps whatever sign or exponent the stored number carries;
// the browser tool never rejected negative amounts.
func decodeAmount(n json.Number) (core.Money, error) {
	if n == "" {
		return core.Money{}, nil
	}
	cents, err := core.ParseNumber(n.String())
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Cents: cents}, nil
}

// decodeDate accepts an empty string as the zero date; anything else must be YYYY-MM-DD.
func decodeDate(s string) (core.Date, error) {
	if s == "" {
		return core.Date{}, nil
	}
	return core.ParseDate(s)
}
