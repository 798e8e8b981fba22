package scheduler_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/civicwatch/crime-report-api/api/scheduler"
	"github.com/civicwatch/crime-report-api/config"
	mocksdb "github.com/civicwatch/crime-report-api/databases/mocks"
	"github.com/civicwatch/crime-report-api/models"
)

func newTestScheduler(caseDB *mocksdb.CaseDatabase, ndb *mocksdb.NotificationDatabase, notify scheduler.Notifier) *scheduler.Scheduler {
	return scheduler.New(caseDB, &mocksdb.UserDatabase{}, ndb, &config.Config{}, notify)
}

// monitoredCase builds a case whose current status started age ago.
func monitoredCase(caseNumber string, status models.CaseStatus, age time.Duration) models.Case {
	start := time.Now().Add(-age)
	return models.Case{
		CaseNumber: caseNumber,
		Status:     status,
		CreatedAt:  primitive.NewDateTimeFromTime(start),
		StatusHistory: []models.StatusHistoryEntry{
			{Status: status, Timestamp: primitive.NewDateTimeFromTime(start)},
		},
	}
}

func TestComplianceSweepFlagsOverdueCase(t *testing.T) {
	caseDB := &mocksdb.CaseDatabase{}
	ndb := &mocksdb.NotificationDatabase{}

	// Filed 25h ago against a 24h threshold, so roughly 1h overdue
	overdueCase := monitoredCase("CASE-20250901-0001", models.StatusFiled, 25*time.Hour)
	overdueCase.AssignedTo = ""

	caseDB.On("Find", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Case{overdueCase}, nil)
	caseDB.On("UpdateOne", mock.Anything,
		bson.M{"caseNumber": "CASE-20250901-0001"},
		mock.MatchedBy(func(update interface{}) bool {
			set, ok := update.(bson.M)["$set"].(bson.M)
			if !ok {
				return false
			}
			hours, ok := set["slaOverdueHours"].(float64)
			return set["slaOverdue"] == true && ok && hours > 0.9 && hours < 1.1
		})).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
	caseDB.On("UpdateMany", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{}, nil)

	s := newTestScheduler(caseDB, ndb, nil)
	s.RunComplianceSweep()

	caseDB.AssertExpectations(t)
	// unassigned overdue case produces no notification
	ndb.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestComplianceSweepLeavesCompliantCaseAlone(t *testing.T) {
	caseDB := &mocksdb.CaseDatabase{}

	// Assigned 23h ago against a 72h threshold
	compliant := monitoredCase("CASE-20250901-0002", models.StatusAssigned, 23*time.Hour)

	caseDB.On("Find", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Case{compliant}, nil)
	caseDB.On("UpdateMany", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{}, nil)

	s := newTestScheduler(caseDB, &mocksdb.NotificationDatabase{}, nil)
	s.RunComplianceSweep()

	caseDB.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestComplianceSweepClearsRecoveredCase(t *testing.T) {
	caseDB := &mocksdb.CaseDatabase{}

	// flagged on a previous sweep but no longer overdue
	recovered := monitoredCase("CASE-20250901-0003", models.StatusAssigned, time.Hour)
	recovered.SLAOverdue = true
	recovered.SLAOverdueHrs = 4

	caseDB.On("Find", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Case{recovered}, nil)
	caseDB.On("UpdateOne", mock.Anything,
		bson.M{"caseNumber": "CASE-20250901-0003"},
		mock.MatchedBy(func(update interface{}) bool {
			set, ok := update.(bson.M)["$set"].(bson.M)
			return ok && set["slaOverdue"] == false
		})).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
	caseDB.On("UpdateMany", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{}, nil)

	s := newTestScheduler(caseDB, &mocksdb.NotificationDatabase{}, nil)
	s.RunComplianceSweep()

	caseDB.AssertExpectations(t)
}

func TestComplianceSweepAlertsAssigneeOnce(t *testing.T) {
	caseDB := &mocksdb.CaseDatabase{}
	ndb := &mocksdb.NotificationDatabase{}
	insertRes := &mocksdb.InsertOneResultHelper{}
	insertRes.On("Decode").Return(primitive.NewObjectID())

	staffID := primitive.NewObjectID().Hex()
	overdueCase := monitoredCase("CASE-20250901-0004", models.StatusAssigned, 80*time.Hour)
	overdueCase.AssignedTo = staffID

	// second case was already flagged, so it must not alert again
	alreadyFlagged := monitoredCase("CASE-20250901-0005", models.StatusAssigned, 90*time.Hour)
	alreadyFlagged.AssignedTo = staffID
	alreadyFlagged.SLAOverdue = true

	caseDB.On("Find", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Case{overdueCase, alreadyFlagged}, nil)
	caseDB.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil)
	caseDB.On("UpdateMany", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{}, nil)
	ndb.On("InsertOne", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
		return n.UserID == staffID &&
			n.CaseNumber == "CASE-20250901-0004" &&
			n.Type == models.NotificationSLABreach
	})).Return(insertRes, nil)

	pushed := []models.Notification{}
	notify := func(userID string, n models.Notification) {
		pushed = append(pushed, n)
	}

	s := newTestScheduler(caseDB, ndb, notify)
	s.RunComplianceSweep()

	ndb.AssertNumberOfCalls(t, "InsertOne", 1)
	assert.Len(t, pushed, 1)
	assert.Equal(t, "CASE-20250901-0004", pushed[0].CaseNumber)
}

func TestComplianceSweepClearsStaleFlags(t *testing.T) {
	caseDB := &mocksdb.CaseDatabase{}

	caseDB.On("Find", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Case{}, nil)
	caseDB.On("UpdateMany", mock.Anything,
		mock.MatchedBy(func(filter interface{}) bool {
			f, ok := filter.(bson.M)
			return ok && f["slaOverdue"] == true
		}),
		mock.MatchedBy(func(update interface{}) bool {
			set, ok := update.(bson.M)["$set"].(bson.M)
			return ok && set["slaOverdue"] == false
		})).
		Return(&mongo.UpdateResult{ModifiedCount: 3}, nil)

	s := newTestScheduler(caseDB, &mocksdb.NotificationDatabase{}, nil)
	s.RunComplianceSweep()

	caseDB.AssertExpectations(t)
}

func TestComplianceSweepExcludesEvidenceBytes(t *testing.T) {
	caseDB := &mocksdb.CaseDatabase{}

	caseDB.On("Find", mock.Anything,
		mock.MatchedBy(func(filter interface{}) bool {
			status, ok := filter.(bson.M)["status"].(bson.M)
			return ok && status["$in"] != nil
		}),
		mock.MatchedBy(func(opts *options.FindOptions) bool {
			proj, ok := opts.Projection.(bson.M)
			return ok && proj["evidence.data"] == 0
		})).
		Return([]models.Case{}, nil)
	caseDB.On("UpdateMany", mock.Anything, mock.Anything, mock.Anything).
		Return(&mongo.UpdateResult{}, nil)

	s := newTestScheduler(caseDB, &mocksdb.NotificationDatabase{}, nil)
	s.RunComplianceSweep()

	caseDB.AssertExpectations(t)
}

func TestComplianceRate(t *testing.T) {
	assert.Equal(t, float64(100), scheduler.ComplianceRate(0, 0))
	assert.Equal(t, float64(100), scheduler.ComplianceRate(10, 0))
	assert.Equal(t, float64(75), scheduler.ComplianceRate(8, 2))
	assert.Equal(t, float64(0), scheduler.ComplianceRate(5, 5))
}

func TestMonitoredStatusesMatchThresholds(t *testing.T) {
	statuses := scheduler.MonitoredStatuses()
	assert.Len(t, statuses, len(scheduler.SLAThresholds))
	for _, s := range statuses {
		_, ok := scheduler.SLAThresholds[s]
		assert.True(t, ok)
	}
}
