package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

const (
	biDateLayout       = "2006-01-02"
	defaultBIRangeDays = 90
	occupancyEvents    = 10
	topEventsLimit     = 10
	statsEventsLimit   = 20
	statsMonths        = 6
)

// AnalyticsService computes the staff dashboards straight from the ticket and payment tables
type AnalyticsService struct {
	db  *sql.DB
	now func() time.Time
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(db *sql.DB) *AnalyticsService {
	return &AnalyticsService{db: db, now: time.Now}
}

// DateRange is an inclusive reporting window
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// EventOccupancy compares tickets sold with event capacity
type EventOccupancy struct {
	EventID  int    `json:"event_id"`
	Event    string `json:"event"`
	Capacity int    `json:"capacity"`
	Sold     int    `json:"sold"`
}

// LabelCount is a ticket count grouped under a label
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// PeriodTotal is a money total for a day or month
type PeriodTotal struct {
	Period string          `json:"period"`
	Total  decimal.Decimal `json:"total"`
}

// BIReport is the business intelligence dashboard payload
type BIReport struct {
	Range           DateRange         `json:"range"`
	Occupancy       []*EventOccupancy `json:"occupancy"`
	SalesByCategory []*LabelCount     `json:"sales_by_category"`
	TopEvents       []*LabelCount     `json:"top_events"`
	SalesByLocation []*LabelCount     `json:"sales_by_location"`
	DailySales      []*PeriodTotal    `json:"daily_sales"`
}

// AdminStats is the compact admin overview
type AdminStats struct {
	TicketsPerEvent []*LabelCount  `json:"tickets"`
	MonthlyPayments []*PeriodTotal `json:"payments"`
}

// ParseDateRange reads YYYY-MM-DD bounds. Missing or malformed bounds default
// to the last 90 days ending now.
func ParseDateRange(start, end string, now time.Time) DateRange {
	r := DateRange{
		Start: now.AddDate(0, 0, -defaultBIRangeDays),
		End:   now,
	}
	if t, err := time.ParseInLocation(biDateLayout, start, now.Location()); err == nil {
		r.Start = t
	}
	if t, err := time.ParseInLocation(biDateLayout, end, now.Location()); err == nil {
		// the whole end day is included
		r.End = t.Add(24*time.Hour - time.Nanosecond)
	}
	return r
}

// BIReport builds every BI dataset. The date range only applies to daily sales.
func (s *AnalyticsService) BIReport(ctx context.Context, r DateRange) (*BIReport, error) {
	report := &BIReport{Range: r}
	var err error

	report.Occupancy, err = s.occupancy(ctx, occupancyEvents)
	if err != nil {
		return nil, fmt.Errorf("failed to get occupancy: %w", err)
	}

	report.SalesByCategory, err = s.ticketCounts(ctx, `
		SELECT COALESCE(c.name, 'Uncategorized'), COUNT(t.id)
		FROM tickets t
		JOIN events e ON e.id = t.event_id
		LEFT JOIN event_categories c ON c.id = e.category_id
		GROUP BY 1
		ORDER BY 2 DESC, 1 ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get sales by category: %w", err)
	}

	report.TopEvents, err = s.topEvents(ctx, topEventsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top events: %w", err)
	}

	report.SalesByLocation, err = s.ticketCounts(ctx, `
		SELECT COALESCE(l.name, 'Unknown'), COUNT(t.id)
		FROM tickets t
		JOIN events e ON e.id = t.event_id
		LEFT JOIN locations l ON l.id = e.location_id
		GROUP BY 1
		ORDER BY 2 DESC, 1 ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to get sales by location: %w", err)
	}

	report.DailySales, err = s.periodTotals(ctx, `
		SELECT TO_CHAR(DATE_TRUNC('day', created_at), 'YYYY-MM-DD'), SUM(amount)
		FROM payments
		WHERE paid AND created_at >= $1 AND created_at <= $2
		GROUP BY 1
		ORDER BY 1`, r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily sales: %w", err)
	}

	return report, nil
}

// AdminStats returns tickets per event and paid totals per month
func (s *AnalyticsService) AdminStats(ctx context.Context) (*AdminStats, error) {
	stats := &AdminStats{}
	var err error

	stats.TicketsPerEvent, err = s.topEvents(ctx, statsEventsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get tickets per event: %w", err)
	}

	since := s.now().AddDate(0, -statsMonths, 0)
	stats.MonthlyPayments, err = s.periodTotals(ctx, `
		SELECT TO_CHAR(DATE_TRUNC('month', created_at), 'YYYY-MM'), SUM(amount)
		FROM payments
		WHERE paid AND created_at >= $1
		GROUP BY 1
		ORDER BY 1`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get monthly payments: %w", err)
	}

	return stats, nil
}

// ExportAttendees writes the tickets of an event as CSV
func (s *AnalyticsService) ExportAttendees(ctx context.Context, eventID int) ([]byte, error) {
	query := `
		SELECT t.reference, COALESCE(t.seat_number, ''), t.status, t.created_at,
			u.username, u.email, u.first_name, u.last_name
		FROM tickets t
		JOIN users u ON u.id = t.user_id
		WHERE t.event_id = $1
		ORDER BY t.created_at, t.id`

	rows, err := s.db.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendees: %w", err)
	}
	defer rows.Close()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"reference", "seat", "status", "purchased_at", "username", "email", "first_name", "last_name"}); err != nil {
		return nil, err
	}

	for rows.Next() {
		var reference, seat, status, username, email, firstName, lastName string
		var createdAt time.Time
		if err := rows.Scan(&reference, &seat, &status, &createdAt, &username, &email, &firstName, &lastName); err != nil {
			return nil, fmt.Errorf("failed to scan attendee: %w", err)
		}
		record := []string{reference, seat, status, createdAt.Format(time.RFC3339), username, email, firstName, lastName}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

func (s *AnalyticsService) occupancy(ctx context.Context, limit int) ([]*EventOccupancy, error) {
	query := `
		SELECT e.id, e.title, e.capacity, COUNT(t.id)
		FROM events e
		LEFT JOIN tickets t ON t.event_id = e.id
		GROUP BY e.id, e.title, e.capacity, e.date
		ORDER BY e.date DESC, e.id DESC
		LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	occupancy := []*EventOccupancy{}
	for rows.Next() {
		o := &EventOccupancy{}
		if err := rows.Scan(&o.EventID, &o.Event, &o.Capacity, &o.Sold); err != nil {
			return nil, err
		}
		occupancy = append(occupancy, o)
	}
	return occupancy, rows.Err()
}

func (s *AnalyticsService) topEvents(ctx context.Context, limit int) ([]*LabelCount, error) {
	return s.ticketCounts(ctx, `
		SELECT COALESCE(NULLIF(e.title, ''), 'Untitled'), COUNT(t.id)
		FROM tickets t
		JOIN events e ON e.id = t.event_id
		GROUP BY e.id, e.title
		ORDER BY 2 DESC, e.id ASC
		LIMIT `+strconv.Itoa(limit))
}

func (s *AnalyticsService) ticketCounts(ctx context.Context, query string, args ...any) ([]*LabelCount, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []*LabelCount{}
	for rows.Next() {
		c := &LabelCount{}
		if err := rows.Scan(&c.Label, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (s *AnalyticsService) periodTotals(ctx context.Context, query string, args ...any) ([]*PeriodTotal, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := []*PeriodTotal{}
	for rows.Next() {
		p := &PeriodTotal{}
		if err := rows.Scan(&p.Period, &p.Total); err != nil {
			return nil, err
		}
		totals = append(totals, p)
	}
	return totals, rows.Err()
}
