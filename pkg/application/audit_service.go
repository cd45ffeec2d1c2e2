package application

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/felixgeelhaar/goalgenie/pkg/domain"
	"github.com/google/uuid"
)

// AuditService appends hash-chained events to the workspace audit trail.
type AuditService struct {
	repo domain.AuditRepository
	mu   sync.Mutex
}

// Compile-time check that AuditService implements AuditLogger
var _ domain.AuditLogger = (*AuditService)(nil)

func NewAuditService(repo domain.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Log records an event. A "goal_id" string in metadata is lifted onto the
// event so timelines can be filtered per goal.
func (s *AuditService) Log(action string, actor string, metadata map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	events, _, err := s.loadEvents()
	if err != nil {
		return err
	}
	prevHash := ""
	if len(events) > 0 {
		prevHash = events[len(events)-1].Hash
	}

	event := domain.Event{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Action:    action,
		Actor:     actor,
		Metadata:  metadata,
		PrevHash:  prevHash,
	}
	if goalID, ok := metadata["goal_id"].(string); ok {
		event.GoalID = goalID
	}
	event.Hash = event.CalculateHash()

	return s.repo.AppendEvent(event)
}

// loadEvents returns the readable events and the lines that could not be
// decoded.
func (s *AuditService) loadEvents() ([]domain.Event, []int, error) {
	events, err := s.repo.LoadEvents()
	var corrupt *domain.CorruptEventsError
	if errors.As(err, &corrupt) {
		return events, corrupt.Lines, nil
	}
	return events, nil, err
}

// GetTimeline returns every readable event, oldest first.
func (s *AuditService) GetTimeline() ([]domain.Event, error) {
	events, _, err := s.loadEvents()
	return events, err
}

// GetGoalTimeline returns the events recorded for one goal.
func (s *AuditService) GetGoalTimeline(goalID string) ([]domain.Event, error) {
	events, _, err := s.loadEvents()
	if err != nil {
		return nil, err
	}
	var out []domain.Event
	for _, e := range events {
		if e.GoalID == goalID {
			out = append(out, e)
		}
	}
	return out, nil
}

// VerifyIntegrity walks the hash chain and reports every broken link,
// tampered event and unreadable line.
func (s *AuditService) VerifyIntegrity() ([]string, error) {
	events, corrupt, err := s.loadEvents()
	if err != nil {
		return nil, err
	}

	var violations []string
	for _, line := range corrupt {
		violations = append(violations, fmt.Sprintf("Line %d: unreadable event. Possible tampering.", line))
	}
	lastHash := ""

	for i, e := range events {
		if e.PrevHash != lastHash {
			violations = append(violations, fmt.Sprintf("Event %d (%s): PrevHash mismatch. Audit trail broken.", i, e.ID))
		}
		if e.Hash != e.CalculateHash() {
			violations = append(violations, fmt.Sprintf("Event %d (%s): Content hash mismatch. Possible tampering.", i, e.ID))
		}
		lastHash = e.Hash
	}

	return violations, nil
}
