/*
sweeper.go - Scheduled repair of missing sub-events

PURPOSE:
  The delete + regenerate + save sequence on event update and the holiday
  ripple are both best-effort: a crash or a failed save can leave a parent
  event with zero slices. The sweeper walks all events on a schedule and
  regenerates any parent whose slice set is missing.

SCHEDULE:
  Runs via robfig/cron. Default is 03:00 daily; the spec string is
  configurable. A manual trigger is exposed at POST /api/admin/sweep.

SEE ALSO:
  - calendar/service.go: Regenerate, the per-parent repair
  - calendar/ripple.go: One source of stale parents
*/
package api

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/warp/oncall-engine/calendar"
)

// DefaultSweepSchedule runs the sweep at 03:00 every day.
const DefaultSweepSchedule = "0 3 * * *"

// SweepReport summarizes one repair pass.
type SweepReport struct {
	Checked  int      `json:"checked"`
	Repaired int      `json:"repaired"`
	Failed   []string `json:"failed,omitempty"` // event ids
}

// Sweeper periodically regenerates missing slice sets.
type Sweeper struct {
	service  *calendar.Service
	schedule string
	cron     *cron.Cron
}

// NewSweeper creates a sweeper over the calendar service. An empty schedule
// selects DefaultSweepSchedule.
func NewSweeper(service *calendar.Service, schedule string) *Sweeper {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	return &Sweeper{service: service, schedule: schedule}
}

// Start schedules the sweep. Returns an error for an invalid cron spec.
func (s *Sweeper) Start() error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.schedule, func() {
		s.Sweep(context.Background())
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("[Sweeper] Scheduled with spec %q", s.schedule)
	return nil
}

// Stop halts the schedule, waiting for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
		log.Println("[Sweeper] Stopped")
	}
}

// Sweep regenerates slices for every event that has none. Failures on one
// event don't block the rest.
func (s *Sweeper) Sweep(ctx context.Context) SweepReport {
	var report SweepReport

	events, err := s.service.EventStore().GetAllEvents(ctx)
	if err != nil {
		log.Printf("[Sweeper] listing events failed: %v", err)
		return report
	}

	for _, ev := range events {
		report.Checked++
		subs, err := s.service.SubEventStore().GetByParentID(ctx, ev.ID)
		if err != nil {
			log.Printf("[Sweeper] loading sub-events for %s failed: %v", ev.ID, err)
			report.Failed = append(report.Failed, ev.ID)
			continue
		}
		if len(subs) > 0 {
			continue
		}
		if err := s.service.Regenerate(ctx, ev); err != nil {
			log.Printf("[Sweeper] regeneration for %s failed: %v", ev.ID, err)
			report.Failed = append(report.Failed, ev.ID)
			continue
		}
		report.Repaired++
	}

	if report.Repaired > 0 || len(report.Failed) > 0 {
		log.Printf("[Sweeper] checked %d, repaired %d, failed %d",
			report.Checked, report.Repaired, len(report.Failed))
	}
	return report
}
