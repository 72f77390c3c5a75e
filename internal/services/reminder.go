package services

import (
	"fmt"
	"time"

	"github.com/dissertrack/backend/internal/config"
	"github.com/dissertrack/backend/internal/models"
	"github.com/dissertrack/backend/pkg/logger"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// ReminderService nudges group members about milestones coming due.
// Reminders only go out on working days in the configured region.
type ReminderService struct {
	db        *gorm.DB
	cfg       *config.RemindersConfig
	calendar  *CalendarService
	scheduler *cron.Cron
}

func NewReminderService(db *gorm.DB, cfg *config.RemindersConfig) *ReminderService {
	return &ReminderService{
		db:       db,
		cfg:      cfg,
		calendar: NewCalendarService(),
	}
}

func (s *ReminderService) StartScheduler() {
	if !s.cfg.Enabled {
		logger.Infof("[Reminder] Scheduler disabled")
		return
	}

	s.scheduler = cron.New()

	hour := s.cfg.Hour
	if hour < 0 || hour > 23 {
		hour = 8
	}
	cronExpr := fmt.Sprintf("0 %d * * *", hour)

	if _, err := s.scheduler.AddFunc(cronExpr, func() {
		s.RunOnce(time.Now())
	}); err != nil {
		logger.Errorf("[Reminder] Failed to add cron job: %v", err)
		return
	}

	s.scheduler.Start()
	logger.Infof("[Reminder] Scheduler started (cron: %s, region: %s)", cronExpr, s.cfg.Region)
}

func (s *ReminderService) StopScheduler() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// RunOnce sends due-soon reminders for one day. Returns the number of
// milestones reminded about.
func (s *ReminderService) RunOnce(now time.Time) int {
	if !s.calendar.IsWorkday(now, s.cfg.Region) {
		logger.Debugf("[Reminder] Skipping run, %s is not a working day in %s",
			now.Format("2006-01-02"), s.cfg.Region)
		return 0
	}

	leadDays := s.cfg.LeadDays
	if leadDays <= 0 {
		leadDays = 3
	}

	milestones, err := NewMilestoneService(s.db).DueSoon(leadDays)
	if err != nil {
		logger.Errorf("[Reminder] Failed to load due milestones: %v", err)
		return 0
	}

	groupSvc := NewGroupService(s.db)
	reminded := 0
	for i := range milestones {
		m := &milestones[i]
		if m.Project == nil || m.Project.Status != models.ProjectAccepted {
			continue
		}

		memberIDs, err := groupSvc.MemberIDs(m.Project.GroupID)
		if err != nil || len(memberIDs) == 0 {
			continue
		}

		Notify(models.NotifyMilestoneDue, "Milestone due soon",
			fmt.Sprintf("Milestone %q is due on %s.", m.Title, m.DueDate.Format("2006-01-02")),
			&m.ProjectID, memberIDs...)
		reminded++
	}

	if reminded > 0 {
		logger.Infof("[Reminder] Sent reminders for %d milestones", reminded)
	}
	return reminded
}
