package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"eventhub/internal/models"
)

// MaxRecommendations caps the recommendation list
const MaxRecommendations = 10

// Score weights
const (
	scoreCategoryAffinity = 5
	scoreInterestCategory = 4
	scoreInterestTitle    = 3
	scoreInterestDesc     = 2
	scoreSameOrganizer    = 1
)

// RecommendationInput is everything the scorer looks at for one user
type RecommendationInput struct {
	Now       time.Time
	Upcoming  []*models.Event
	Ticketed  []*models.Event
	Attended  []*models.Event
	Interests []string
}

type scoredEvent struct {
	event *models.Event
	score int
}

// ScoreRecommendations ranks upcoming events the user holds no ticket for.
// It returns at most MaxRecommendations events with a positive score, or the
// soonest candidates when nothing scores.
func ScoreRecommendations(in RecommendationInput) []*models.Event {
	owned := make(map[int]bool, len(in.Ticketed))
	categories := make(map[int]bool)
	organizers := make(map[int]bool)
	for _, e := range in.Ticketed {
		owned[e.ID] = true
		if e.CategoryID != nil {
			categories[*e.CategoryID] = true
		}
		if e.CreatedBy != nil {
			organizers[*e.CreatedBy] = true
		}
	}
	for _, e := range in.Attended {
		if e.CategoryID != nil {
			categories[*e.CategoryID] = true
		}
	}

	keywords := make([]string, 0, len(in.Interests))
	for _, k := range in.Interests {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keywords = append(keywords, k)
		}
	}

	var candidates []scoredEvent
	for _, e := range in.Upcoming {
		if owned[e.ID] || e.Date.Before(in.Now) {
			continue
		}

		score := 0
		if e.CategoryID != nil && categories[*e.CategoryID] {
			score += scoreCategoryAffinity
		}
		if anyKeywordIn(keywords, e.CategoryName()) {
			score += scoreInterestCategory
		}
		if anyKeywordIn(keywords, e.Title) {
			score += scoreInterestTitle
		}
		if anyKeywordIn(keywords, e.Description) {
			score += scoreInterestDesc
		}
		if e.CreatedBy != nil && organizers[*e.CreatedBy] {
			score += scoreSameOrganizer
		}
		candidates = append(candidates, scoredEvent{event: e, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.score != b.score {
			return a.score > b.score
		}
		if !a.event.Date.Equal(b.event.Date) {
			return a.event.Date.Before(b.event.Date)
		}
		return a.event.ID < b.event.ID
	})

	var picked []*models.Event
	for _, c := range candidates {
		if c.score <= 0 || len(picked) == MaxRecommendations {
			break
		}
		picked = append(picked, c.event)
	}
	if len(picked) > 0 {
		return picked
	}
	return soonest(candidates, MaxRecommendations)
}

func anyKeywordIn(keywords []string, text string) bool {
	if text == "" {
		return false
	}
	text = strings.ToLower(text)
	for _, k := range keywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func soonest(candidates []scoredEvent, n int) []*models.Event {
	events := make([]*models.Event, 0, len(candidates))
	for _, c := range candidates {
		events = append(events, c.event)
	}
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].Date.Equal(events[j].Date) {
			return events[i].Date.Before(events[j].Date)
		}
		return events[i].ID < events[j].ID
	})
	if len(events) > n {
		events = events[:n]
	}
	return events
}

// RecommendationEvents loads the event lists the scorer needs
type RecommendationEvents interface {
	ListUpcoming(ctx context.Context, from time.Time, limit int) ([]*models.Event, error)
	ListTicketedByUser(ctx context.Context, userID int) ([]*models.Event, error)
	ListAttendedByUser(ctx context.Context, userID int) ([]*models.Event, error)
}

// RecommendationUsers loads the user and their interest tags
type RecommendationUsers interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetInterests(ctx context.Context, userID int) ([]string, error)
}

// RecommendationCache stores computed recommendation lists per user
type RecommendationCache interface {
	Get(ctx context.Context, userID int) ([]*models.Event, bool, error)
	Set(ctx context.Context, userID int, events []*models.Event) error
	Invalidate(ctx context.Context, userID int) error
}

// RecommendationService computes recommendations from stored history
type RecommendationService struct {
	events RecommendationEvents
	users  RecommendationUsers
	cache  RecommendationCache
	now    func() time.Time
}

// NewRecommendationService creates a recommendation service. cache may be nil.
func NewRecommendationService(events RecommendationEvents, users RecommendationUsers, cache RecommendationCache) *RecommendationService {
	return &RecommendationService{
		events: events,
		users:  users,
		cache:  cache,
		now:    time.Now,
	}
}

// Recommend returns up to ten upcoming events for the user
func (s *RecommendationService) Recommend(ctx context.Context, userID int) ([]*models.Event, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, userID)
		if err != nil {
			log.Printf("Warning: recommendation cache read failed for user %d: %v", userID, err)
		} else if ok {
			return cached, nil
		}
	}

	now := s.now()
	upcoming, err := s.events.ListUpcoming(ctx, now, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load upcoming events: %w", err)
	}
	ticketed, err := s.events.ListTicketedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load ticketed events: %w", err)
	}
	attended, err := s.events.ListAttendedByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attended events: %w", err)
	}
	interests, err := s.users.GetInterests(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load interests: %w", err)
	}

	events := ScoreRecommendations(RecommendationInput{
		Now:       now,
		Upcoming:  upcoming,
		Ticketed:  ticketed,
		Attended:  attended,
		Interests: interests,
	})

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, events); err != nil {
			log.Printf("Warning: recommendation cache write failed for user %d: %v", userID, err)
		}
	}
	return events, nil
}

// Invalidate drops any cached recommendations for the user
func (s *RecommendationService) Invalidate(ctx context.Context, userID int) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, userID)
}
