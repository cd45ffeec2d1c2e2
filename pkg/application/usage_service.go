package application

import (
	"sync"
	"time"

	"github.com/felixgeelhaar/goalgenie/pkg/domain"
	"github.com/felixgeelhaar/goalgenie/pkg/domain/ai"
)

// UsageService tracks plan generations and token usage separately from audit logging.
type UsageService struct {
	repo domain.AuditRepository
	mu   sync.Mutex
}

func NewUsageService(repo domain.AuditRepository) *UsageService {
	return &UsageService{repo: repo}
}

// RecordGeneration records one generation call and its token usage.
func (s *UsageService) RecordGeneration(model string, usage ai.TokenUsage, failed bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := s.loadOrInitStats()
	stats.RecordGeneration(model, usage.InputTokens, usage.OutputTokens, failed, time.Now().UTC())
	return s.repo.UpdateUsage(*stats)
}

// GetUsage returns the current usage statistics.
func (s *UsageService) GetUsage() (*domain.UsageStats, error) {
	return s.loadOrInitStats(), nil
}

// GetTotalTokens returns the total token count across all models.
func (s *UsageService) GetTotalTokens() (int, error) {
	total := 0
	for _, count := range s.loadOrInitStats().ProviderStats {
		total += count
	}
	return total, nil
}

// loadOrInitStats treats a missing or unreadable usage file as empty stats.
func (s *UsageService) loadOrInitStats() *domain.UsageStats {
	stats, err := s.repo.LoadUsage()
	if err != nil || stats == nil {
		stats = &domain.UsageStats{}
	}
	if stats.ProviderStats == nil {
		stats.ProviderStats = make(map[string]int)
	}
	return stats
}
