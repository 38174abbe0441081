package services

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/models"
	"github.com/sanjaroktamovrasmiy/uzbek-talim/internal/repository"
)

// tickInterval is how often the reminder job scans for upcoming lessons.
// The scan window equals the interval, so every lesson falls into
// exactly one tick and students are reminded once.
const tickInterval = time.Minute

// Scheduler sends lesson reminders to enrolled students ahead of each
// lesson's start time.
type Scheduler struct {
	cron     *gocron.Scheduler
	notifier *Notifier
	lead     time.Duration
	log      *zap.Logger
}

func NewScheduler(notifier *Notifier, leadMinutes int, log *zap.Logger) *Scheduler {
	if leadMinutes <= 0 {
		leadMinutes = 60
	}
	return &Scheduler{
		cron:     gocron.NewScheduler(time.UTC),
		notifier: notifier,
		lead:     time.Duration(leadMinutes) * time.Minute,
		log:      log,
	}
}

// Start runs the reminder job asynchronously until Stop is called.
func (s *Scheduler) Start() {
	s.cron.Every(1).Minute().Do(s.runReminderCheck)
	s.cron.StartAsync()
	s.log.Info("lesson reminder scheduler started", zap.Duration("lead", s.lead))
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) runReminderCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	from := time.Now().Add(s.lead)
	until := from.Add(tickInterval)

	lessons, err := repository.LessonsStartingBetween(ctx, from, until)
	if err != nil {
		s.log.Error("reminder scan failed", zap.Error(err))
		return
	}

	for i := range lessons {
		s.remindGroup(ctx, &lessons[i])
	}
}

func (s *Scheduler) remindGroup(ctx context.Context, lesson *models.Lesson) {
	enrollments, err := repository.GroupStudents(ctx, lesson.GroupID)
	if err != nil {
		s.log.Error("could not load group students for reminder",
			zap.String("lesson_id", lesson.ID),
			zap.Error(err),
		)
		return
	}

	body := fmt.Sprintf("%s starts at %s. Don't be late!", lesson.Title, lesson.StartTime)
	for _, enrollment := range enrollments {
		_, err := s.notifier.Notify(ctx, Message{
			UserID:  enrollment.StudentID,
			Type:    string(models.NotifyReminder),
			Title:   "Upcoming lesson",
			Message: body,
		})
		if err != nil {
			s.log.Warn("reminder delivery failed",
				zap.String("lesson_id", lesson.ID),
				zap.String("student_id", enrollment.StudentID),
				zap.Error(err),
			)
		}
	}

	s.log.Info("lesson reminders sent",
		zap.String("lesson_id", lesson.ID),
		zap.Int("students", len(enrollments)),
	)
}
