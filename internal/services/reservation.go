package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"eventhub/internal/models"
	"eventhub/internal/monitoring"
	"eventhub/internal/repositories"
	"eventhub/internal/utils"

	"github.com/shopspring/decimal"
)

// ReservationStore gives the engine transactional access to events, tickets and payments
type ReservationStore interface {
	WithinTx(ctx context.Context, fn func(tx repositories.ReservationTx) error) error
	MarkTicketUsed(ctx context.Context, reference string) (*models.Ticket, error)
}

// QRIssuer renders and stores a ticket's QR code, returning its location
type QRIssuer interface {
	Issue(ctx context.Context, ticket *models.Ticket) (string, error)
}

// Notifier delivers a plain-text message
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}

// ConfirmationPublisher announces confirmed purchases to internal consumers
type ConfirmationPublisher interface {
	PublishTicketsConfirmed(ctx context.Context, msg TicketsConfirmedMessage) error
}

// RecommendationInvalidator drops cached recommendations for a user
type RecommendationInvalidator interface {
	Invalidate(ctx context.Context, userID int) error
}

// ParticipationRecorder records that a ticket holder attended an event
type ParticipationRecorder interface {
	RecordParticipation(ctx context.Context, userID, eventID int) error
}

// TicketsConfirmedMessage is published after a confirmation commits
type TicketsConfirmedMessage struct {
	PaymentID   int       `json:"payment_id"`
	EventID     int       `json:"event_id"`
	EventTitle  string    `json:"event_title"`
	BuyerID     int       `json:"buyer_id"`
	Quantity    int       `json:"quantity"`
	References  []string  `json:"references"`
	Total       string    `json:"total"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// ReservationServiceConfig wires the engine. Only Store is required.
type ReservationServiceConfig struct {
	Store           ReservationStore
	References      ReferenceGenerator
	SessionTokens   func() (string, error)
	QRCodes         QRIssuer
	Notifier        Notifier
	Publisher       ConfirmationPublisher
	Recommendations RecommendationInvalidator
	Participation   ParticipationRecorder
	InternalEmail   string
}

// ReservationService turns purchase intents into tickets
type ReservationService struct {
	store           ReservationStore
	refs            ReferenceGenerator
	sessionTokens   func() (string, error)
	qr              QRIssuer
	notifier        Notifier
	publisher       ConfirmationPublisher
	recommendations RecommendationInvalidator
	participation   ParticipationRecorder
	internalEmail   string
}

// IntentResult is returned to the buyer when a payment intent is created
type IntentResult struct {
	PaymentID    int             `json:"payment_id"`
	Amount       decimal.Decimal `json:"amount"`
	SessionToken string          `json:"session_token"`
}

// ConfirmResult carries the minted tickets and any non-fatal delivery problems
type ConfirmResult struct {
	Tickets  []*models.Ticket `json:"tickets"`
	Warnings []string         `json:"warnings,omitempty"`
}

type confirmation struct {
	event   *models.Event
	payment *models.Payment
	tickets []*models.Ticket
	total   decimal.Decimal
}

// NewReservationService creates a new reservation service
func NewReservationService(cfg ReservationServiceConfig) *ReservationService {
	s := &ReservationService{
		store:           cfg.Store,
		refs:            cfg.References,
		sessionTokens:   cfg.SessionTokens,
		qr:              cfg.QRCodes,
		notifier:        cfg.Notifier,
		publisher:       cfg.Publisher,
		recommendations: cfg.Recommendations,
		participation:   cfg.Participation,
		internalEmail:   cfg.InternalEmail,
	}
	if s.refs == nil {
		s.refs = UUIDReferenceGenerator{}
	}
	if s.sessionTokens == nil {
		s.sessionTokens = utils.NewPaymentSessionToken
	}
	return s
}

// CreateIntent checks the purchase against current availability and records an
// unsettled payment for it. No tickets or seats are reserved.
func (s *ReservationService) CreateIntent(ctx context.Context, req *models.PurchaseIntentRequest) (*IntentResult, error) {
	if err := req.Validate(); err != nil {
		trackDecision(monitoring.PhaseIntent, err)
		return nil, err
	}

	token, err := s.sessionTokens()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	var payment *models.Payment
	err = s.store.WithinTx(ctx, func(tx repositories.ReservationTx) error {
		event, err := tx.GetEvent(ctx, req.EventID)
		if err != nil {
			return err
		}

		if err := s.decide(ctx, tx, event, req.BuyerID, req.Quantity); err != nil {
			return err
		}

		payment = &models.Payment{
			Amount:          event.Price.Mul(decimal.NewFromInt(int64(req.Quantity))),
			ProviderSession: &token,
			EventID:         &event.ID,
			BuyerID:         &req.BuyerID,
			Quantity:        req.Quantity,
		}
		return tx.CreatePayment(ctx, payment)
	})
	trackDecision(monitoring.PhaseIntent, err)
	if err != nil {
		return nil, err
	}

	return &IntentResult{
		PaymentID:    payment.ID,
		Amount:       payment.Amount,
		SessionToken: token,
	}, nil
}

// Confirm settles a payment intent and mints its tickets. Availability is
// re-checked under the event lock; the intent phase is only advisory.
func (s *ReservationService) Confirm(ctx context.Context, req *models.ConfirmPurchaseRequest) (*ConfirmResult, error) {
	started := time.Now()
	defer func() { monitoring.TrackConfirmDuration(time.Since(started)) }()

	if err := req.Validate(); err != nil {
		trackDecision(monitoring.PhaseConfirm, err)
		return nil, err
	}

	c, err := s.confirmTx(ctx, req)
	if errors.Is(err, models.ErrDuplicateSeat) {
		monitoring.TrackConfirmRetry()
		c, err = s.confirmTx(ctx, req)
		if errors.Is(err, models.ErrDuplicateSeat) {
			err = &RejectionError{Reason: ReasonInsufficientCapacity, Requested: req.Quantity, Conflict: true}
		}
	}
	trackDecision(monitoring.PhaseConfirm, err)
	if err != nil {
		return nil, err
	}

	monitoring.TrackTicketsMinted(len(c.tickets))
	log.Printf("Confirmed payment %d: %d tickets for event %d (buyer %d)",
		c.payment.ID, len(c.tickets), c.event.ID, req.BuyerID)

	warnings := s.afterConfirm(context.WithoutCancel(ctx), req, c)
	return &ConfirmResult{Tickets: c.tickets, Warnings: warnings}, nil
}

// Book is the single-step purchase of one ticket: an intent confirmed immediately.
func (s *ReservationService) Book(ctx context.Context, req *models.BookRequest) (*ConfirmResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	intent, err := s.CreateIntent(ctx, &models.PurchaseIntentRequest{
		EventID:  req.EventID,
		Quantity: 1,
		BuyerID:  req.BuyerID,
	})
	if err != nil {
		return nil, err
	}

	return s.Confirm(ctx, &models.ConfirmPurchaseRequest{
		PaymentID:  intent.PaymentID,
		EventID:    req.EventID,
		Quantity:   1,
		BuyerName:  req.BuyerName,
		BuyerEmail: req.BuyerEmail,
		BuyerID:    req.BuyerID,
	})
}

// Scan admits a ticket holder by moving the ticket from valid to used
func (s *ReservationService) Scan(ctx context.Context, scanned string) (*models.Ticket, error) {
	reference := models.ParseScannedReference(scanned)
	if reference == "" {
		return nil, fmt.Errorf("%w: reference is required", models.ErrInvalidInput)
	}

	ticket, err := s.store.MarkTicketUsed(ctx, reference)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrTicketNotFound):
			monitoring.TrackScan("not_found")
		case errors.Is(err, models.ErrInvalidTicketState):
			monitoring.TrackScan("invalid_state")
		}
		return nil, err
	}
	monitoring.TrackScan("used")

	if s.participation != nil {
		if err := s.participation.RecordParticipation(context.WithoutCancel(ctx), ticket.UserID, ticket.EventID); err != nil {
			log.Printf("Warning: failed to record participation for ticket %s: %v", ticket.Reference, err)
		}
	}
	return ticket, nil
}

// Availability reports the sold count and remaining capacity of an event
func (s *ReservationService) Availability(ctx context.Context, eventID int) (LedgerReading, error) {
	var reading LedgerReading
	err := s.store.WithinTx(ctx, func(tx repositories.ReservationTx) error {
		event, err := tx.GetEvent(ctx, eventID)
		if err != nil {
			return err
		}
		reading, err = ReadLedger(ctx, tx, event)
		return err
	})
	return reading, err
}

func (s *ReservationService) decide(ctx context.Context, tx repositories.ReservationTx, event *models.Event, buyerID, quantity int) error {
	ledger, err := ReadLedger(ctx, tx, event)
	if err != nil {
		return err
	}

	owned, err := tx.CountUserTickets(ctx, event.ID, buyerID)
	if err != nil {
		return err
	}

	return DecideAllocation(ledger.Left, owned, quantity).Err()
}

func (s *ReservationService) confirmTx(ctx context.Context, req *models.ConfirmPurchaseRequest) (*confirmation, error) {
	var c *confirmation
	err := s.store.WithinTx(ctx, func(tx repositories.ReservationTx) error {
		payment, err := tx.LockPayment(ctx, req.PaymentID)
		if err != nil {
			return err
		}
		if payment.BuyerID == nil || *payment.BuyerID != req.BuyerID {
			return models.ErrPaymentNotFound
		}
		if payment.Paid {
			return &RejectionError{Reason: ReasonAlreadySettled, Requested: req.Quantity}
		}
		if !payment.CoversPurchase(req.BuyerID, req.EventID, req.Quantity) {
			return fmt.Errorf("%w: intent %d is not for %d ticket(s) to event %d",
				models.ErrIntentMismatch, payment.ID, req.Quantity, req.EventID)
		}

		event, err := tx.LockEvent(ctx, req.EventID)
		if err != nil {
			return err
		}

		if err := s.decide(ctx, tx, event, req.BuyerID, req.Quantity); err != nil {
			return err
		}

		total := event.Price.Mul(decimal.NewFromInt(int64(req.Quantity)))
		if !payment.Amount.Equal(total) {
			return fmt.Errorf("%w: intent covers %s, purchase costs %s",
				models.ErrAmountMismatch, payment.Amount.StringFixed(2), total.StringFixed(2))
		}

		labels, err := tx.EventSeatLabels(ctx, event.ID)
		if err != nil {
			return err
		}

		tickets := make([]*models.Ticket, 0, req.Quantity)
		for _, seat := range NextSeats(labels, req.Quantity) {
			ticket := &models.Ticket{
				UserID:     req.BuyerID,
				EventID:    event.ID,
				SeatNumber: &seat,
				Status:     models.TicketValid,
			}
			if err := s.insertTicket(ctx, tx, ticket); err != nil {
				return err
			}
			tickets = append(tickets, ticket)
		}

		if err := settlePerTicket(ctx, tx, payment, event.Price, tickets); err != nil {
			return err
		}

		c = &confirmation{event: event, payment: payment, tickets: tickets, total: total}
		return appendConfirmationLog(ctx, tx, req, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// insertTicket assigns a reference and inserts the ticket, regenerating the
// reference once if it collides.
func (s *ReservationService) insertTicket(ctx context.Context, tx repositories.ReservationTx, ticket *models.Ticket) error {
	for attempt := 0; ; attempt++ {
		reference, err := s.refs.Generate()
		if err != nil {
			return err
		}
		ticket.Reference = reference

		err = tx.CreateTicket(ctx, ticket)
		if err == nil {
			return nil
		}
		if !errors.Is(err, models.ErrDuplicateReference) {
			return err
		}
		if attempt > 0 {
			return fmt.Errorf("failed to generate a unique ticket reference: %w", err)
		}
		monitoring.TrackReferenceRegeneration()
	}
}

// settlePerTicket pairs every ticket with one settled payment of the unit price.
// The intent payment becomes the first ticket's payment.
func settlePerTicket(ctx context.Context, tx repositories.ReservationTx, intent *models.Payment, unitPrice decimal.Decimal, tickets []*models.Ticket) error {
	if err := tx.SettlePayment(ctx, intent.ID, tickets[0].ID, unitPrice); err != nil {
		if errors.Is(err, models.ErrAlreadySettled) {
			return &RejectionError{Reason: ReasonAlreadySettled, Requested: len(tickets)}
		}
		return err
	}
	intent.Paid = true
	intent.Amount = unitPrice
	intent.TicketID = &tickets[0].ID
	intent.Quantity = 1

	for _, ticket := range tickets[1:] {
		payment := &models.Payment{
			TicketID:        &ticket.ID,
			Amount:          unitPrice,
			Paid:            true,
			ProviderSession: intent.ProviderSession,
			EventID:         intent.EventID,
			BuyerID:         intent.BuyerID,
			Quantity:        1,
		}
		if err := tx.CreatePayment(ctx, payment); err != nil {
			return err
		}
	}
	return nil
}

func appendConfirmationLog(ctx context.Context, tx repositories.ReservationTx, req *models.ConfirmPurchaseRequest, c *confirmation) error {
	references := make([]string, 0, len(c.tickets))
	for _, t := range c.tickets {
		references = append(references, t.Reference)
	}

	payload, err := json.Marshal(models.ConfirmationLogPayload{
		Kind:         models.LogKindConfirmation,
		PaymentID:    c.payment.ID,
		BuyerID:      req.BuyerID,
		EventID:      c.event.ID,
		Quantity:     req.Quantity,
		AltReference: req.AltReference,
		References:   references,
		Total:        c.total.StringFixed(2),
	})
	if err != nil {
		return fmt.Errorf("failed to encode transaction log: %w", err)
	}

	return tx.AppendTransactionLog(ctx, &models.TransactionLog{PaymentID: &c.payment.ID, Payload: payload})
}

// afterConfirm runs the post-commit side effects. Only a failed buyer email is
// reported back, as a warning.
func (s *ReservationService) afterConfirm(ctx context.Context, req *models.ConfirmPurchaseRequest, c *confirmation) []string {
	var warnings []string

	if s.qr != nil {
		for _, ticket := range c.tickets {
			location, err := s.qr.Issue(ctx, ticket)
			if err != nil {
				monitoring.TrackSideEffectFailure("qr")
				log.Printf("Warning: failed to issue QR code for ticket %s: %v", ticket.Reference, err)
				continue
			}
			ticket.QRCode = location
		}
	}

	if s.recommendations != nil {
		if err := s.recommendations.Invalidate(ctx, req.BuyerID); err != nil {
			log.Printf("Warning: failed to invalidate recommendations for user %d: %v", req.BuyerID, err)
		}
	}

	if req.BuyerEmail != "" && s.notifier != nil {
		subject, body := buyerConfirmationEmail(req, c)
		if err := s.notifier.Send(ctx, req.BuyerEmail, subject, body); err != nil {
			monitoring.TrackSideEffectFailure("buyer_email")
			log.Printf("Warning: failed to send confirmation to %s: %v", req.BuyerEmail, err)
			warnings = append(warnings, fmt.Sprintf("confirmation email to %s could not be sent: %v", req.BuyerEmail, err))
		}
	}

	s.notifyInternal(ctx, req, c)
	return warnings
}

func (s *ReservationService) notifyInternal(ctx context.Context, req *models.ConfirmPurchaseRequest, c *confirmation) {
	msg := TicketsConfirmedMessage{
		PaymentID:   c.payment.ID,
		EventID:     c.event.ID,
		EventTitle:  c.event.Title,
		BuyerID:     req.BuyerID,
		Quantity:    len(c.tickets),
		Total:       c.total.StringFixed(2),
		ConfirmedAt: time.Now().UTC(),
	}
	for _, t := range c.tickets {
		msg.References = append(msg.References, t.Reference)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishTicketsConfirmed(ctx, msg); err != nil {
			monitoring.TrackSideEffectFailure("publish")
			log.Printf("Warning: failed to publish confirmation for payment %d: %v", c.payment.ID, err)
		}
	}

	if s.internalEmail != "" && s.notifier != nil {
		subject := fmt.Sprintf("New booking: %s", c.event.Title)
		body := fmt.Sprintf("Buyer %d booked %d ticket(s) for %q (payment %d, total %s): %s\n",
			req.BuyerID, len(c.tickets), c.event.Title, c.payment.ID, msg.Total, strings.Join(msg.References, ", "))
		if err := s.notifier.Send(ctx, s.internalEmail, subject, body); err != nil {
			monitoring.TrackSideEffectFailure("internal_email")
			log.Printf("Warning: failed to send internal notification: %v", err)
		}
	}
}

func buyerConfirmationEmail(req *models.ConfirmPurchaseRequest, c *confirmation) (string, string) {
	name := strings.TrimSpace(req.BuyerName)
	if name == "" {
		name = "there"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", name)
	fmt.Fprintf(&b, "Your booking for %s on %s is confirmed.\n\n",
		c.event.Title, c.event.Date.Format("Monday 2 January 2006 at 15:04"))
	b.WriteString("Tickets:\n")
	for _, t := range c.tickets {
		fmt.Fprintf(&b, "  - %s (seat %s)\n", t.Reference, t.Seat())
	}
	fmt.Fprintf(&b, "\nTotal paid: %s\n", c.total.StringFixed(2))
	b.WriteString("\nPresent the QR code of each ticket at the entrance.\n")

	return fmt.Sprintf("Your tickets for %s", c.event.Title), b.String()
}

func trackDecision(phase string, err error) {
	var rejection *RejectionError
	switch {
	case err == nil:
		monitoring.TrackAllocation(phase, "admitted")
	case errors.As(err, &rejection):
		monitoring.TrackAllocation(phase, string(rejection.Reason))
	case errors.Is(err, models.ErrInvalidQuantity):
		monitoring.TrackAllocation(phase, string(ReasonInvalidQuantity))
	}
}
