package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"dues/internal/core"
	"dues/internal/storage"
)

var (
	// ErrMemberNotFound is returned when an operation names an unknown member.
	ErrMemberNotFound = errors.New("member not found")
	// ErrValidation wraps every input rejection; the cause is joined to it.
	ErrValidation = errors.New("validation failed")
)

// Event kinds published after a successful mutation.
const (
	EventMemberAdded         = "member_added"
	EventPaymentRecorded     = "payment_recorded"
	EventReminderLogged      = "reminder_logged"
	EventMemberStatusChanged = "member_status_changed"
)

// Operation names used for metrics and logs.
const (
	OpAddMember     = "add_member"
	OpRecordPayment = "record_payment"
	OpSendReminder  = "send_reminder"
	OpSetActive     = "set_active"
)

// DefaultOperator is recorded as collector or sender when none is given.
const DefaultOperator = "Current User"

type (
	// Clock provides time to the service so tests can pin "today".
	Clock interface {
		Now() time.Time
	}

	// EventPublisher receives a change notification after each mutation.
	EventPublisher interface {
		PublishMemberEvent(ctx context.Context, kind, memberID, recordID string) error
	}

	// Recorder receives operational counters.
	Recorder interface {
		MutationApplied(op string)
		ValidationRejected(op string)
		PersistFailed()
		ActiveMembers(n int)
	}

	// StatsCache memoizes period statistics between mutations.
	StatsCache interface {
		Get(key string) (PeriodStats, bool)
		Set(key string, data PeriodStats)
		Purge()
	}
)

// NewMember carries the fields of the add-member form.
type NewMember struct {
	Name               string
	Address            string
	Phone              string
	Email              string
	SubscriptionAmount core.Money
	StartDate          core.Date
	Notes              string
}

// NewPayment carries the fields of the record-payment form.
type NewPayment struct {
	Date             core.Date
	Amount           core.Money
	Notes            string
	CollectedBy      string // defaults to the service operator
	CollectionMethod string // defaults to core.DefaultCollectionMethod
}

// NewReminder carries the fields of the send-reminder form.
type NewReminder struct {
	Date    core.Date // defaults to today
	Method  core.ReminderMethod
	Message string // defaults to core.DefaultReminderMessage
	SentBy  string // defaults to the service operator
}

func (n NewMember) Validate() error {
	if strings.TrimSpace(n.Name) == "" {
		return core.ErrEmptyName
	}
	if strings.TrimSpace(n.Address) == "" {
		return core.ErrEmptyAddress
	}
	if strings.TrimSpace(n.Phone) == "" {
		return core.ErrEmptyPhone
	}
	if err := n.SubscriptionAmount.Validate(); err != nil {
		return err
	}
	if err := n.StartDate.Validate(); err != nil {
		return fmt.Errorf("invalid start date: %w", err)
	}
	return nil
}

func (n NewPayment) Validate() error {
	if err := n.Date.Validate(); err != nil {
		return err
	}
	return n.Amount.Validate()
}

func (n NewReminder) Validate() error {
	if !n.Method.IsValid() {
		return core.ErrInvalidReminderMethod
	}
	return nil
}

// MemberService owns the member collection. Every mutation is applied in
// memory, then the whole collection is saved through the Snapshotter.
// A failed save is logged and the in-memory state is kept.
type MemberService struct {
	mu       sync.Mutex
	members  []core.Member
	snap     storage.Snapshotter
	clock    Clock
	newID    func() string
	events   EventPublisher
	recorder Recorder
	cache    StatsCache
	operator string

	// unreadable is set when Load found a snapshot it could not decode; the
	// stored data is then left alone instead of being overwritten.
	unreadable error
}

// Option configures a MemberService.
type Option func(*MemberService)

func WithClock(c Clock) Option {
	return func(s *MemberService) { s.clock = c }
}

func WithIDGenerator(f func() string) Option {
	return func(s *MemberService) { s.newID = f }
}

func WithEventPublisher(p EventPublisher) Option {
	return func(s *MemberService) { s.events = p }
}

func WithRecorder(r Recorder) Option {
	return func(s *MemberService) { s.recorder = r }
}

func WithStatsCache(c StatsCache) Option {
	return func(s *MemberService) { s.cache = c }
}

func WithOperator(name string) Option {
	return func(s *MemberService) {
		if strings.TrimSpace(name) != "" {
			s.operator = name
		}
	}
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

type nopRecorder struct{}

func (nopRecorder) MutationApplied(string)    {}
func (nopRecorder) ValidationRejected(string) {}
func (nopRecorder) PersistFailed()            {}
func (nopRecorder) ActiveMembers(int)         {}

func NewMemberService(snap storage.Snapshotter, opts ...Option) *MemberService {
	s := &MemberService{
		snap:     snap,
		clock:    systemClock{},
		newID:    uuid.NewString,
		recorder: nopRecorder{},
		operator: DefaultOperator,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory collection with the stored snapshot. A missing
// or unreadable snapshot starts an empty collection; it is never an error.
// After an unreadable snapshot, mutations stay in memory and are not saved
// until a later Load succeeds.
func (s *MemberService) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.members = nil
	s.unreadable = nil
	if s.snap != nil {
		members, err := s.snap.Load(ctx)
		switch {
		case errors.Is(err, storage.ErrNoSnapshot):
			slog.InfoContext(ctx, "No stored members, starting empty")
		case err != nil:
			s.unreadable = err
			slog.WarnContext(ctx, "Stored members unreadable, starting empty without saving", "error", err)
		default:
			s.members = members
		}
	}
	if s.members == nil {
		s.members = []core.Member{}
	}

	s.invalidate()
	slog.InfoContext(ctx, "Members loaded", "count", len(s.members))
}

// AddMember validates the form, appends a new active member and saves.
func (s *MemberService) AddMember(ctx context.Context, in NewMember) (core.Member, error) {
	if err := in.Validate(); err != nil {
		s.recorder.ValidationRejected(OpAddMember)
		return core.Member{}, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	return s.apply(ctx, OpAddMember, func() (core.Member, memberEvent, error) {
		m := core.Member{
			ID:                 s.uniqueMemberID(),
			Name:               strings.TrimSpace(in.Name),
			Address:            strings.TrimSpace(in.Address),
			Phone:              strings.TrimSpace(in.Phone),
			Email:              strings.TrimSpace(in.Email),
			SubscriptionAmount: in.SubscriptionAmount,
			StartDate:          in.StartDate,
			Notes:              in.Notes,
			IsActive:           true,
			PaymentHistory:     []core.Payment{},
			RemindersSent:      []core.Reminder{},
		}
		s.members = append(s.members, m)

		slog.InfoContext(ctx, "Member added",
			"member_id", m.ID,
			"subscription", m.SubscriptionAmount.Decimal(),
			"start_date", m.StartDate.String())
		return m.Clone(), memberEvent{EventMemberAdded, m.ID, m.ID}, nil
	})
}

// RecordPayment appends a payment to the member's history. Invalid input
// leaves the collection untouched.
func (s *MemberService) RecordPayment(ctx context.Context, memberID string, in NewPayment) (core.Member, error) {
	return s.apply(ctx, OpRecordPayment, func() (core.Member, memberEvent, error) {
		idx := s.indexOf(memberID)
		if idx < 0 {
			return core.Member{}, memberEvent{}, fmt.Errorf("record payment for %q: %w", memberID, ErrMemberNotFound)
		}
		if err := in.Validate(); err != nil {
			s.recorder.ValidationRejected(OpRecordPayment)
			return core.Member{}, memberEvent{}, fmt.Errorf("%w: %w", ErrValidation, err)
		}

		p := core.Payment{
			ID:               s.newID(),
			Date:             in.Date,
			Amount:           in.Amount,
			Notes:            in.Notes,
			CollectedBy:      orDefault(in.CollectedBy, s.operator),
			CollectionMethod: orDefault(in.CollectionMethod, core.DefaultCollectionMethod),
		}

		m := &s.members[idx]
		m.PaymentHistory = append(m.PaymentHistory, p)

		slog.InfoContext(ctx, "Payment recorded",
			"member_id", m.ID,
			"payment_id", p.ID,
			"amount", p.Amount.Decimal(),
			"date", p.Date.String())
		return m.Clone(), memberEvent{EventPaymentRecorded, m.ID, p.ID}, nil
	})
}

// SendReminder logs an outreach attempt. Nothing is dispatched.
func (s *MemberService) SendReminder(ctx context.Context, memberID string, in NewReminder) (core.Member, error) {
	return s.apply(ctx, OpSendReminder, func() (core.Member, memberEvent, error) {
		idx := s.indexOf(memberID)
		if idx < 0 {
			return core.Member{}, memberEvent{}, fmt.Errorf("send reminder to %q: %w", memberID, ErrMemberNotFound)
		}
		if err := in.Validate(); err != nil {
			s.recorder.ValidationRejected(OpSendReminder)
			return core.Member{}, memberEvent{}, fmt.Errorf("%w: %w", ErrValidation, err)
		}

		date := in.Date
		if date.IsZero() {
			date = core.DateOf(s.clock.Now())
		}
		message := in.Message
		if strings.TrimSpace(message) == "" {
			message = core.DefaultReminderMessage
		}

		r := core.Reminder{
			ID:      s.newID(),
			Date:    date,
			Method:  in.Method,
			Message: message,
			SentBy:  orDefault(in.SentBy, s.operator),
		}

		m := &s.members[idx]
		m.RemindersSent = append(m.RemindersSent, r)

		slog.InfoContext(ctx, "Reminder logged",
			"member_id", m.ID,
			"reminder_id", r.ID,
			"method", string(r.Method))
		return m.Clone(), memberEvent{EventReminderLogged, m.ID, r.ID}, nil
	})
}

// SetActive activates or deactivates a member. Inactive members are left out
// of period statistics and the due list but keep their history.
func (s *MemberService) SetActive(ctx context.Context, memberID string, active bool) (core.Member, error) {
	return s.apply(ctx, OpSetActive, func() (core.Member, memberEvent, error) {
		idx := s.indexOf(memberID)
		if idx < 0 {
			return core.Member{}, memberEvent{}, fmt.Errorf("set active for %q: %w", memberID, ErrMemberNotFound)
		}

		m := &s.members[idx]
		if m.IsActive == active {
			return m.Clone(), memberEvent{}, nil
		}
		m.IsActive = active

		slog.InfoContext(ctx, "Member status changed", "member_id", m.ID, "active", active)
		return m.Clone(), memberEvent{EventMemberStatusChanged, m.ID, m.ID}, nil
	})
}

// Get returns a copy of the member with the given id.
func (s *MemberService) Get(memberID string) (core.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(memberID)
	if idx < 0 {
		return core.Member{}, ErrMemberNotFound
	}
	return s.members[idx].Clone(), nil
}

// List returns copies of all members in insertion order.
func (s *MemberService) List() []core.Member {
	return s.Search("")
}

// Search returns members whose name, address or phone matches query.
func (s *MemberService) Search(query string) []core.Member {
	s.mu.Lock()
	defer s.mu.Unlock()

	query = strings.TrimSpace(query)
	out := make([]core.Member, 0, len(s.members))
	for _, m := range s.members {
		if m.Matches(query) {
			out = append(out, m.Clone())
		}
	}
	return out
}

// DueMembers returns the active members with a payment outstanding at ref.
func (s *MemberService) DueMembers(ref time.Time) []core.Member {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Member
	for _, m := range s.members {
		if m.IsActive && IsPaymentDue(m, ref) {
			out = append(out, m.Clone())
		}
	}
	return out
}

// PeriodStats aggregates the collection for a month; results are cached until
// the next mutation.
func (s *MemberService) PeriodStats(month time.Month, year int) PeriodStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := fmt.Sprintf("%04d-%02d", year, int(month))
	if s.cache != nil {
		if stats, ok := s.cache.Get(key); ok {
			return stats
		}
	}
	stats := ComputePeriodStats(s.members, month, year)
	if s.cache != nil {
		s.cache.Set(key, stats)
	}
	return stats
}

// Now exposes the service clock to callers that need the reference instant.
func (s *MemberService) Now() time.Time {
	return s.clock.Now()
}

// commit persists the collection after a mutation. Callers hold s.mu.
func (s *MemberService) commit(ctx context.Context, op string) {
	s.invalidate()
	s.recorder.MutationApplied(op)

	if s.snap == nil {
		return
	}
	if s.unreadable != nil {
		s.recorder.PersistFailed()
		slog.WarnContext(ctx, "Stored members unreadable, not overwriting them",
			"operation", op,
			"error", s.unreadable)
		return
	}
	if err := s.snap.Save(ctx, s.members); err != nil {
		s.recorder.PersistFailed()
		slog.ErrorContext(ctx, "Failed to persist members, keeping in-memory state",
			"operation", op,
			"error", err)
	}
}

func (s *MemberService) invalidate() {
	if s.cache != nil {
		s.cache.Purge()
	}
	active := 0
	for _, m := range s.members {
		if m.IsActive {
			active++
		}
	}
	s.recorder.ActiveMembers(active)
}

// memberEvent describes a committed change; a zero kind means nothing changed.
type memberEvent struct {
	kind     string
	memberID string
	recordID string
}

// apply runs fn under the lock and saves when it reports a change. The event
// is published after the lock is released so a slow broker never stalls readers.
func (s *MemberService) apply(ctx context.Context, op string, fn func() (core.Member, memberEvent, error)) (core.Member, error) {
	m, ev, err := func() (core.Member, memberEvent, error) {
		s.mu.Lock()
		defer s.mu.Unlock()

		m, ev, err := fn()
		if err == nil && ev.kind != "" {
			s.commit(ctx, op)
		}
		return m, ev, err
	}()
	if err != nil {
		return core.Member{}, err
	}
	if ev.kind != "" {
		s.publish(ctx, ev)
	}
	return m, nil
}

func (s *MemberService) publish(ctx context.Context, ev memberEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishMemberEvent(ctx, ev.kind, ev.memberID, ev.recordID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish member event",
			"kind", ev.kind,
			"member_id", ev.memberID,
			"error", err)
	}
}

func (s *MemberService) indexOf(memberID string) int {
	for i := range s.members {
		if s.members[i].ID == memberID {
			return i
		}
	}
	return -1
}

func (s *MemberService) uniqueMemberID() string {
	for {
		id := s.newID()
		if id != "" && s.indexOf(id) < 0 {
			return id
		}
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return strings.TrimSpace(v)
}
