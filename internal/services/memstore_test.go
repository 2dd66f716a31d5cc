package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"eventhub/internal/models"
	"eventhub/internal/repositories"

	"github.com/shopspring/decimal"
)

// memStore is an in-memory ReservationStore. Transactions are serialized by a
// single mutex and rolled back by restoring a snapshot.
type memStore struct {
	mu       sync.Mutex
	events   map[int]*models.Event
	tickets  []*models.Ticket
	payments map[int]*models.Payment
	logs     []*models.TransactionLog
	nextID   int

	// beforeTicketInsert runs inside the tx before each ticket insert
	beforeTicketInsert func(s *memStore, t *models.Ticket)
}

type memSnapshot struct {
	tickets  []*models.Ticket
	payments map[int]*models.Payment
	logs     []*models.TransactionLog
	nextID   int
}

func newMemStore() *memStore {
	return &memStore{
		events:   make(map[int]*models.Event),
		payments: make(map[int]*models.Payment),
		nextID:   1,
	}
}

func (s *memStore) addEvent(capacity int, price string) *models.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := &models.Event{
		ID:       s.id(),
		Title:    fmt.Sprintf("Event %d", s.nextID),
		Date:     time.Now().Add(72 * time.Hour),
		Price:    decimal.RequireFromString(price),
		Capacity: capacity,
	}
	s.events[e.ID] = e
	return e
}

func (s *memStore) setPrice(eventID int, price string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[eventID].Price = decimal.RequireFromString(price)
}

func (s *memStore) addTicket(eventID, userID int, reference, seat string, status models.TicketStatus) *models.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &models.Ticket{ID: s.id(), EventID: eventID, UserID: userID, Reference: reference, Status: status}
	if seat != "" {
		t.SeatNumber = &seat
	}
	s.tickets = append(s.tickets, t)
	return t
}

func (s *memStore) eventTickets(eventID int) []*models.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Ticket
	for _, t := range s.tickets {
		if t.EventID == eventID {
			out = append(out, t)
		}
	}
	return out
}

func (s *memStore) payment(id int) *models.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payments[id]
}

func (s *memStore) allPayments() []*models.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Payment, 0, len(s.payments))
	for _, p := range s.payments {
		out = append(out, p)
	}
	return out
}

func (s *memStore) logCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.logs)
}

func (s *memStore) id() int {
	id := s.nextID
	s.nextID++
	return id
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		tickets:  make([]*models.Ticket, len(s.tickets)),
		payments: make(map[int]*models.Payment, len(s.payments)),
		logs:     append([]*models.TransactionLog(nil), s.logs...),
		nextID:   s.nextID,
	}
	for i, t := range s.tickets {
		c := *t
		snap.tickets[i] = &c
	}
	for id, p := range s.payments {
		c := *p
		snap.payments[id] = &c
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.tickets = snap.tickets
	s.payments = snap.payments
	s.logs = snap.logs
	s.nextID = snap.nextID
}

func (s *memStore) WithinTx(ctx context.Context, fn func(tx repositories.ReservationTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(&memTx{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *memStore) MarkTicketUsed(ctx context.Context, reference string) (*models.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tickets {
		if t.Reference != reference {
			continue
		}
		if t.Status != models.TicketValid {
			return nil, fmt.Errorf("%w: ticket is %s", models.ErrInvalidTicketState, t.Status)
		}
		t.Status = models.TicketUsed
		c := *t
		return &c, nil
	}
	return nil, models.ErrTicketNotFound
}

type memTx struct {
	s *memStore
}

func (tx *memTx) GetEvent(ctx context.Context, eventID int) (*models.Event, error) {
	e, ok := tx.s.events[eventID]
	if !ok {
		return nil, models.ErrEventNotFound
	}
	c := *e
	return &c, nil
}

func (tx *memTx) LockEvent(ctx context.Context, eventID int) (*models.Event, error) {
	return tx.GetEvent(ctx, eventID)
}

func (tx *memTx) CountEventTickets(ctx context.Context, eventID int) (int, error) {
	n := 0
	for _, t := range tx.s.tickets {
		if t.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (tx *memTx) CountUserTickets(ctx context.Context, eventID, userID int) (int, error) {
	n := 0
	for _, t := range tx.s.tickets {
		if t.EventID == eventID && t.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (tx *memTx) EventSeatLabels(ctx context.Context, eventID int) ([]string, error) {
	var labels []string
	for _, t := range tx.s.tickets {
		if t.EventID == eventID && t.SeatNumber != nil {
			labels = append(labels, *t.SeatNumber)
		}
	}
	return labels, nil
}

func (tx *memTx) CreatePayment(ctx context.Context, payment *models.Payment) error {
	if payment.TicketID != nil {
		for _, p := range tx.s.payments {
			if p.TicketID != nil && *p.TicketID == *payment.TicketID {
				return models.ErrDuplicateEntry
			}
		}
	}
	payment.ID = tx.s.id()
	payment.CreatedAt = time.Now()
	c := *payment
	tx.s.payments[payment.ID] = &c
	return nil
}

func (tx *memTx) LockPayment(ctx context.Context, paymentID int) (*models.Payment, error) {
	p, ok := tx.s.payments[paymentID]
	if !ok {
		return nil, models.ErrPaymentNotFound
	}
	c := *p
	return &c, nil
}

func (tx *memTx) SettlePayment(ctx context.Context, paymentID, ticketID int, amount decimal.Decimal) error {
	p, ok := tx.s.payments[paymentID]
	if !ok || p.Paid {
		return models.ErrAlreadySettled
	}
	p.Paid = true
	p.Amount = amount
	p.TicketID = &ticketID
	p.Quantity = 1
	return nil
}

func (tx *memTx) CreateTicket(ctx context.Context, ticket *models.Ticket) error {
	if tx.s.beforeTicketInsert != nil {
		tx.s.beforeTicketInsert(tx.s, ticket)
	}
	for _, t := range tx.s.tickets {
		if t.Reference == ticket.Reference {
			return models.ErrDuplicateReference
		}
		if ticket.SeatNumber != nil && t.SeatNumber != nil &&
			t.EventID == ticket.EventID && *t.SeatNumber == *ticket.SeatNumber {
			return models.ErrDuplicateSeat
		}
	}
	ticket.ID = tx.s.id()
	ticket.CreatedAt = time.Now()
	c := *ticket
	tx.s.tickets = append(tx.s.tickets, &c)
	return nil
}

func (tx *memTx) AppendTransactionLog(ctx context.Context, entry *models.TransactionLog) error {
	entry.ID = tx.s.id()
	c := *entry
	tx.s.logs = append(tx.s.logs, &c)
	return nil
}
