package remote

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/travel-calendar/backend/internal/diff"
	"github.com/travel-calendar/backend/internal/share"
	"github.com/travel-calendar/backend/internal/storage"
	"github.com/travel-calendar/backend/internal/storage/models"
	"github.com/travel-calendar/backend/internal/websocket"
)

// Scheduler manages periodic refresh jobs for saved comparison
// subscriptions: fetch the shared link's token, decode it, diff it
// against the current itinerary and broadcast the outcome.
type Scheduler struct {
	cron           *cron.Cron
	fetcher        *Fetcher
	codec          *share.Codec
	eventRepo      *storage.EventRepository
	comparisonRepo *storage.ComparisonRepository
	broadcaster    *websocket.EventBroadcaster
	logger         *zap.Logger

	// Track jobs per comparison
	jobs   map[string]cron.EntryID
	jobsMu sync.RWMutex

	// Default refresh interval if a comparison doesn't specify
	defaultInterval time.Duration
}

// NewScheduler creates a new comparison refresh scheduler.
func NewScheduler(
	fetcher *Fetcher,
	codec *share.Codec,
	eventRepo *storage.EventRepository,
	comparisonRepo *storage.ComparisonRepository,
	hub *websocket.Hub,
	defaultIntervalMin int,
	logger *zap.Logger,
) *Scheduler {
	if defaultIntervalMin <= 0 {
		defaultIntervalMin = 60
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var broadcaster *websocket.EventBroadcaster
	if hub != nil {
		broadcaster = websocket.NewEventBroadcaster(hub, logger)
	}

	return &Scheduler{
		cron:            cron.New(),
		fetcher:         fetcher,
		codec:           codec,
		eventRepo:       eventRepo,
		comparisonRepo:  comparisonRepo,
		broadcaster:     broadcaster,
		logger:          logger,
		jobs:            make(map[string]cron.EntryID),
		defaultInterval: time.Duration(defaultIntervalMin) * time.Minute,
	}
}

// Start begins the scheduler and loads all enabled comparisons.
func (s *Scheduler) Start(ctx context.Context) error {
	comparisons, err := s.comparisonRepo.ListEnabled(ctx)
	if err != nil {
		return err
	}

	for _, cmp := range comparisons {
		s.ScheduleComparison(cmp)
	}

	// Pick up added, changed or removed subscriptions.
	s.cron.AddFunc("@every 5m", func() {
		s.refreshSchedules(context.Background())
	})

	s.cron.Start()
	s.logger.Info("Comparison scheduler started", zap.Int("comparisons", len(comparisons)))

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Comparison scheduler stopped")
}

// ScheduleComparison adds or updates a comparison's refresh schedule.
func (s *Scheduler) ScheduleComparison(cmp models.Comparison) {
	if !cmp.Enabled {
		s.UnscheduleComparison(cmp.ID)
		return
	}

	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	// Remove existing job if any
	if existingID, exists := s.jobs[cmp.ID]; exists {
		s.cron.Remove(existingID)
		delete(s.jobs, cmp.ID)
	}

	interval := time.Duration(cmp.RefreshIntervalMin) * time.Minute
	if interval < time.Minute {
		interval = s.defaultInterval
	}
	spec := "@every " + interval.String()

	entryID, err := s.cron.AddFunc(spec, func() {
		s.refresh(cmp.ID)
	})
	if err != nil {
		s.logger.Error("Failed to schedule comparison", zap.String("id", cmp.ID), zap.Error(err))
		return
	}

	s.jobs[cmp.ID] = entryID
	s.logger.Info("Scheduled comparison refresh",
		zap.String("id", cmp.ID),
		zap.String("name", cmp.Name),
		zap.Duration("interval", interval),
	)
}

// UnscheduleComparison removes a comparison from the refresh schedule.
func (s *Scheduler) UnscheduleComparison(comparisonID string) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	if entryID, exists := s.jobs[comparisonID]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, comparisonID)
		s.logger.Info("Unscheduled comparison", zap.String("id", comparisonID))
	}
}

// TriggerRefresh manually triggers an immediate refresh.
func (s *Scheduler) TriggerRefresh(comparisonID string) {
	go s.refresh(comparisonID)
}

// Refresh resolves, decodes and diffs one comparison synchronously.
func (s *Scheduler) Refresh(ctx context.Context, comparisonID string) (*models.ComparisonRefreshResult, error) {
	cmp, err := s.comparisonRepo.GetByID(ctx, comparisonID)
	if err != nil {
		return nil, err
	}
	if cmp == nil {
		return nil, fmt.Errorf("comparison %s not found", comparisonID)
	}

	token, err := s.fetcher.FetchToken(ctx, cmp.URL)
	if err != nil {
		s.recordError(ctx, cmp, err)
		return nil, err
	}

	comparisonEvents := s.codec.Decode(token)

	currentEvents, err := s.eventRepo.List(ctx)
	if err != nil {
		s.recordError(ctx, cmp, err)
		return nil, err
	}

	result := diff.Compare(currentEvents, comparisonEvents)
	if result == nil {
		err := fmt.Errorf("diff produced no result for comparison %s", comparisonID)
		s.recordError(ctx, cmp, err)
		return nil, err
	}

	if err := s.comparisonRepo.MarkRefreshSuccess(ctx, cmp.ID); err != nil {
		s.logger.Error("Failed to record refresh", zap.String("id", cmp.ID), zap.Error(err))
	}

	return &models.ComparisonRefreshResult{
		ComparisonID:   cmp.ID,
		ComparisonName: cmp.Name,
		EventsFound:    len(comparisonEvents),
		Added:          len(result.Added),
		Removed:        len(result.Removed),
		Modified:       len(result.Modified),
		Unchanged:      result.Unchanged,
		RefreshedAt:    time.Now().UTC(),
	}, nil
}

// refresh runs one scheduled refresh and broadcasts the outcome.
func (s *Scheduler) refresh(comparisonID string) {
	ctx := context.Background()

	result, err := s.Refresh(ctx, comparisonID)
	if err != nil {
		s.logger.Warn("Comparison refresh failed", zap.String("id", comparisonID), zap.Error(err))
		if s.broadcaster != nil {
			s.broadcaster.BroadcastComparisonRefreshError(comparisonID, "", err)
		}
		return
	}

	s.logger.Info("Comparison refreshed",
		zap.String("id", result.ComparisonID),
		zap.Int("events", result.EventsFound),
		zap.Int("added", result.Added),
		zap.Int("removed", result.Removed),
		zap.Int("modified", result.Modified),
	)

	if s.broadcaster != nil {
		s.broadcaster.BroadcastComparisonRefreshed(*result)
	}
}

func (s *Scheduler) recordError(ctx context.Context, cmp *models.Comparison, err error) {
	if markErr := s.comparisonRepo.MarkRefreshError(ctx, cmp.ID, err.Error()); markErr != nil {
		s.logger.Error("Failed to record refresh error", zap.String("id", cmp.ID), zap.Error(markErr))
	}
}

// refreshSchedules reloads comparison schedules from the database.
func (s *Scheduler) refreshSchedules(ctx context.Context) {
	comparisons, err := s.comparisonRepo.ListEnabled(ctx)
	if err != nil {
		s.logger.Error("Failed to refresh comparison schedules", zap.Error(err))
		return
	}

	currentIDs := make(map[string]bool)
	for _, cmp := range comparisons {
		currentIDs[cmp.ID] = true
		s.ScheduleComparison(cmp)
	}

	// Remove jobs for comparisons that no longer exist or are disabled
	s.jobsMu.Lock()
	for id := range s.jobs {
		if !currentIDs[id] {
			s.cron.Remove(s.jobs[id])
			delete(s.jobs, id)
			s.logger.Info("Removed schedule for comparison", zap.String("id", id))
		}
	}
	s.jobsMu.Unlock()
}

// ScheduledComparisons returns the IDs of currently scheduled comparisons.
func (s *Scheduler) ScheduledComparisons() []string {
	s.jobsMu.RLock()
	defer s.jobsMu.RUnlock()

	ids := make([]string, 0, len(s.jobs))
	for id := range s.jobs {
		ids = append(ids, id)
	}
	return ids
}
