package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/civicwatch/crime-report-api/api"
	"github.com/civicwatch/crime-report-api/config"
	"github.com/civicwatch/crime-report-api/databases"
	"github.com/civicwatch/crime-report-api/models"
	templates "github.com/civicwatch/crime-report-api/templates/html"
)

// SLAThresholds is the maximum allowed dwell time per monitored status.
// Recomputed from these constants on every sweep, never persisted.
var SLAThresholds = map[models.CaseStatus]time.Duration{
	models.StatusFiled:              24 * time.Hour,
	models.StatusAssigned:           72 * time.Hour,
	models.StatusUnderInvestigation: 168 * time.Hour,
	models.StatusEvidenceCollected:  24 * time.Hour,
}

// MonitoredStatuses lists the statuses examined by the compliance sweep.
func MonitoredStatuses() []models.CaseStatus {
	statuses := make([]models.CaseStatus, 0, len(SLAThresholds))
	for s := range SLAThresholds {
		statuses = append(statuses, s)
	}
	return statuses
}

// defaultSweepSpec runs the compliance sweep at the top of every hour.
const defaultSweepSpec = "0 * * * *"

// Notifier pushes a freshly persisted notification to a connected user.
type Notifier func(userID string, n models.Notification)

// Scheduler runs the periodic SLA compliance sweep.
type Scheduler struct {
	cron      *cron.Cron
	CaseDB    databases.CaseDatabase
	UserDB    databases.UserDatabase
	NDB       databases.NotificationDatabase
	Notify    Notifier
	sweepSpec string
	sgKey     string
	fromEmail string
}

// New creates a scheduler wired to the case, user and notification stores.
func New(caseDB databases.CaseDatabase, userDB databases.UserDatabase, ndb databases.NotificationDatabase, conf *config.Config, notify Notifier) *Scheduler {
	spec := conf.SLASweepSpec
	if spec == "" {
		spec = defaultSweepSpec
	}
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		CaseDB:    caseDB,
		UserDB:    userDB,
		NDB:       ndb,
		Notify:    notify,
		sweepSpec: spec,
		sgKey:     conf.SendgridAPIKey,
		fromEmail: conf.AlertFromEmail,
	}
}

// Start registers the recurring sweep and fires one immediately.
func (s *Scheduler) Start() {
	_, err := s.cron.AddFunc(s.sweepSpec, s.RunComplianceSweep)
	if err != nil {
		zap.S().Errorw("failed to register SLA sweep job", "error", err)
	}

	s.cron.Start()
	zap.S().Infow("SLA compliance scheduler started", "spec", s.sweepSpec)

	go s.RunComplianceSweep()
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("SLA compliance scheduler stopped")
}

// RunComplianceSweep examines every case in a monitored status, flags the
// overdue ones and clears flags that no longer apply. Failures are logged
// and never propagate; the next scheduled run is the retry.
func (s *Scheduler) RunComplianceSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	now := time.Now()
	monitored := MonitoredStatuses()

	// the sweep reads statuses and timestamps, never the evidence bytes
	cases, err := s.CaseDB.Find(ctx,
		bson.M{"status": bson.M{"$in": monitored}},
		options.Find().SetProjection(bson.M{"evidence.data": 0}),
	)
	if err != nil {
		zap.S().Errorw("SLA sweep failed to fetch monitored cases", "error", err)
		return
	}

	checkedAt := primitive.NewDateTimeFromTime(now)
	overdue := 0
	cleared := 0

	for i := range cases {
		c := &cases[i]

		threshold, ok := SLAThresholds[c.Status]
		if !ok {
			continue
		}

		elapsed := now.Sub(c.CurrentStatusStart())
		if elapsed > threshold {
			overdueHours := (elapsed - threshold).Hours()
			_, err := s.CaseDB.UpdateOne(ctx,
				bson.M{"caseNumber": c.CaseNumber},
				bson.M{"$set": bson.M{
					"slaOverdue":      true,
					"slaOverdueHours": overdueHours,
					"slaCheckedAt":    checkedAt,
				}},
			)
			if err != nil {
				zap.S().Errorw("SLA sweep failed to flag case",
					"caseNumber", c.CaseNumber, "error", err)
				continue
			}
			overdue++

			// alert only on the transition into overdue
			if !c.SLAOverdue {
				s.alertAssignee(ctx, c, overdueHours)
			}
			continue
		}

		if c.SLAOverdue {
			_, err := s.CaseDB.UpdateOne(ctx,
				bson.M{"caseNumber": c.CaseNumber},
				bson.M{"$set": bson.M{
					"slaOverdue":      false,
					"slaOverdueHours": float64(0),
					"slaCheckedAt":    checkedAt,
				}},
			)
			if err != nil {
				zap.S().Errorw("SLA sweep failed to clear case flag",
					"caseNumber", c.CaseNumber, "error", err)
				continue
			}
			cleared++
		}
	}

	// flags on cases that have since left the monitored statuses are stale
	res, err := s.CaseDB.UpdateMany(ctx,
		bson.M{"slaOverdue": true, "status": bson.M{"$nin": monitored}},
		bson.M{"$set": bson.M{
			"slaOverdue":      false,
			"slaOverdueHours": float64(0),
			"slaCheckedAt":    checkedAt,
		}},
	)
	if err != nil {
		zap.S().Errorw("SLA sweep failed to clear stale flags", "error", err)
	} else if res != nil {
		cleared += int(res.ModifiedCount)
	}

	api.SLASweepsTotal.Inc()
	api.SLACasesChecked.Set(float64(len(cases)))
	api.SLACasesOverdue.Set(float64(overdue))
	api.SLAFlagsCleared.Set(float64(cleared))

	zap.S().Infow("SLA compliance sweep complete",
		"checked", len(cases),
		"overdue", overdue,
		"cleared", cleared,
	)
}

// ComplianceRate computes (active non-overdue / active) x 100, treating an
// empty active set as fully compliant.
func ComplianceRate(active, overdue int64) float64 {
	if active == 0 {
		return 100
	}
	return float64(active-overdue) / float64(active) * 100
}

// alertAssignee persists a notification for the assigned investigator and
// sends the alert email. Both are best effort.
func (s *Scheduler) alertAssignee(ctx context.Context, c *models.Case, overdueHours float64) {
	if c.AssignedTo == "" {
		return
	}

	n := models.Notification{
		UserID:     c.AssignedTo,
		CaseNumber: c.CaseNumber,
		Type:       models.NotificationSLABreach,
		Message:    c.CaseNumber + " has exceeded its allowed dwell time",
		CreatedAt:  primitive.NewDateTimeFromTime(time.Now()),
	}
	if _, err := s.NDB.InsertOne(ctx, n); err != nil {
		zap.S().Errorw("failed to store SLA breach notification",
			"caseNumber", c.CaseNumber, "error", err)
	} else if s.Notify != nil {
		s.Notify(c.AssignedTo, n)
	}

	s.sendAlertEmail(ctx, c, overdueHours)
}

func (s *Scheduler) sendAlertEmail(ctx context.Context, c *models.Case, overdueHours float64) {
	if s.sgKey == "" || s.fromEmail == "" {
		zap.S().Debugw("sendgrid not configured, skipping SLA alert email",
			"caseNumber", c.CaseNumber)
		return
	}

	staffID, err := primitive.ObjectIDFromHex(c.AssignedTo)
	if err != nil {
		zap.S().Errorw("invalid assignee id on overdue case",
			"caseNumber", c.CaseNumber, "assignedTo", c.AssignedTo)
		return
	}

	staff, err := s.UserDB.FindOne(ctx, bson.M{"_id": staffID})
	if err != nil {
		zap.S().Errorw("failed to look up assignee for SLA alert",
			"caseNumber", c.CaseNumber, "error", err)
		return
	}

	from := mail.NewEmail("Case Compliance", s.fromEmail)
	to := mail.NewEmail(staff.Name, staff.Email)
	subject := "Overdue case " + c.CaseNumber
	htmlBody := templates.RenderSLAAlertEmail(c.CaseNumber, c.Title, string(c.Status), overdueHours)
	message := mail.NewSingleEmail(from, subject, to, "", htmlBody)

	client := sendgrid.NewSendClient(s.sgKey)
	resp, err := client.Send(message)
	if err != nil {
		zap.S().Errorw("failed to send SLA alert email",
			"caseNumber", c.CaseNumber, "error", err)
		return
	}
	zap.S().Infow("SLA alert email sent",
		"caseNumber", c.CaseNumber,
		"statusCode", resp.StatusCode,
	)
}
