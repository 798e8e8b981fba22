package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/civicwatch/crime-report-api/api"
	"github.com/civicwatch/crime-report-api/config"
	"github.com/civicwatch/crime-report-api/databases"
	"github.com/civicwatch/crime-report-api/models"
)

// Case exposes the case lifecycle endpoints: filing, listing, status
// transitions and staff assignment.
type Case struct {
	DB  databases.CaseDatabase
	UDB databases.UserDatabase
	CDB databases.CounterDatabase
	NDB databases.NotificationDatabase
}

// caseListProjection strips inline evidence bytes from list and detail
// responses. Bytes are only served by the dedicated evidence endpoint.
var caseListProjection = bson.M{"evidence.data": 0}

// CreateCaseHandler files a new case. The case number is minted from a
// per-day counter and the first audit entry is written in the same insert,
// so a case is never observable without its Filed history.
func (c Case) CreateCaseHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.ActorFromContext(r.Context())
	if !ok {
		config.ErrorStatus("missing actor", http.StatusUnauthorized, w, fmt.Errorf("no actor in context"))
		return
	}

	var req models.CreateCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if violations := models.Validate(req); violations != nil {
		config.ValidationErrorStatus(w, violations)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	now := time.Now()
	seq, err := c.CDB.NextSequence(ctx, "case-"+now.UTC().Format("20060102"))
	if err != nil {
		config.ErrorStatus("failed to allocate case number", http.StatusInternalServerError, w, err)
		return
	}

	reportedBy := actor.ID
	historyActor := actor.ID
	if req.Anonymous {
		reportedBy = ""
		historyActor = ""
	}

	crimeCase := models.Case{
		CaseNumber:  models.FormatCaseNumber(now, seq),
		Title:       req.Title,
		Description: req.Description,
		CrimeType:   req.CrimeType,
		Location:    req.Location,
		Priority:    req.Priority,
		Anonymous:   req.Anonymous,
		Tags:        req.Tags,
		ReportedBy:  reportedBy,
		Status:      models.StatusFiled,
		StatusHistory: []models.StatusHistoryEntry{
			models.NewHistoryEntry(models.StatusFiled, historyActor, "Case filed"),
		},
		Version:   1,
		CreatedAt: primitive.NewDateTimeFromTime(now),
		UpdatedAt: primitive.NewDateTimeFromTime(now),
	}

	res, err := c.DB.InsertOne(ctx, crimeCase)
	if err != nil {
		config.ErrorStatus("failed to insert case", http.StatusInternalServerError, w, err)
		return
	}
	if oid, ok := res.Decode().(primitive.ObjectID); ok {
		crimeCase.ID = oid
	}
	zap.S().Infow("case filed",
		"caseNumber", crimeCase.CaseNumber,
		"crimeType", crimeCase.CrimeType,
		"priority", crimeCase.Priority)

	b, err := json.Marshal(crimeCase)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// CasesHandler lists cases visible to the actor, newest first. Citizens see
// their own non-anonymous filings, staff see their assignments, admins and
// supervisors see everything (optionally filtered).
func (c Case) CasesHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.ActorFromContext(r.Context())
	if !ok {
		config.ErrorStatus("missing actor", http.StatusUnauthorized, w, fmt.Errorf("no actor in context"))
		return
	}

	limit := getLimit(r)
	page := getPage(r)

	filter := bson.M{}
	switch {
	case actor.IsElevated():
		if v := r.URL.Query().Get("assignedTo"); v != "" {
			filter["assignedTo"] = v
		}
	case actor.Role == models.RoleStaff:
		filter["assignedTo"] = actor.ID
	default:
		filter["reportedBy"] = actor.ID
		filter["anonymous"] = false
	}
	if v := r.URL.Query().Get("status"); v != "" {
		filter["status"] = v
	}
	if v := r.URL.Query().Get("priority"); v != "" {
		filter["priority"] = v
	}
	if v := r.URL.Query().Get("crimeType"); v != "" {
		filter["crimeType"] = v
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	opts := options.Find().
		SetProjection(caseListProjection).
		SetSort(bson.M{"createdAt": -1}).
		SetLimit(int64(limit)).
		SetSkip(int64(page * limit))
	cases, err := c.DB.Find(ctx, filter, opts)
	if err != nil {
		config.ErrorStatus("failed to get cases", http.StatusInternalServerError, w, err)
		return
	}
	if cases == nil {
		cases = []models.Case{}
	}

	b, err := json.Marshal(cases)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// CaseByCaseNumberHandler returns a single case, audit trail included.
func (c Case) CaseByCaseNumberHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.ActorFromContext(r.Context())
	if !ok {
		config.ErrorStatus("missing actor", http.StatusUnauthorized, w, fmt.Errorf("no actor in context"))
		return
	}
	caseNumber := mux.Vars(r)["case_number"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	crimeCase, err := c.DB.FindOne(ctx, bson.M{"caseNumber": caseNumber},
		options.FindOne().SetProjection(caseListProjection))
	if err != nil {
		config.ErrorStatus("failed to get case by case number", http.StatusNotFound, w, err)
		return
	}
	if !api.CanViewCase(actor, crimeCase) {
		config.ErrorStatus("not allowed to view this case", http.StatusForbidden, w, fmt.Errorf("actor %s denied on case %s", actor.ID, caseNumber))
		return
	}

	b, err := json.Marshal(crimeCase)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// UpdateCaseStatusHandler records a status transition. Illegal transitions
// and concurrent writers are both rejected with 409; the audit entry, the
// status change and the version bump land in a single update.
func (c Case) UpdateCaseStatusHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.ActorFromContext(r.Context())
	if !ok {
		config.ErrorStatus("missing actor", http.StatusUnauthorized, w, fmt.Errorf("no actor in context"))
		return
	}
	caseNumber := mux.Vars(r)["case_number"]

	var req models.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if violations := models.Validate(req); violations != nil {
		config.ValidationErrorStatus(w, violations)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	crimeCase, err := c.DB.FindOne(ctx, bson.M{"caseNumber": caseNumber},
		options.FindOne().SetProjection(caseListProjection))
	if err != nil {
		config.ErrorStatus("failed to get case by case number", http.StatusNotFound, w, err)
		return
	}
	if !api.CanManageCase(actor, crimeCase) {
		config.ErrorStatus("not allowed to update this case", http.StatusForbidden, w, fmt.Errorf("actor %s denied on case %s", actor.ID, caseNumber))
		return
	}
	if !models.CanTransition(crimeCase.Status, req.Status) {
		config.ErrorStatus("illegal status transition", http.StatusConflict, w,
			fmt.Errorf("cannot move case from %q to %q", crimeCase.Status, req.Status))
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	entry := models.NewHistoryEntry(req.Status, actor.ID, req.Note)
	set := bson.M{"status": req.Status, "updatedAt": now}
	if models.IsTerminal(req.Status) {
		set["closedAt"] = now
	}
	update := bson.M{
		"$set":  set,
		"$push": bson.M{"statusHistory": entry},
		"$inc":  bson.M{"version": 1},
	}

	res, err := c.DB.UpdateOne(ctx, bson.M{"caseNumber": caseNumber, "version": crimeCase.Version}, update)
	if err != nil {
		config.ErrorStatus("failed to update case status", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("case was modified concurrently, retry", http.StatusConflict, w,
			fmt.Errorf("version %d no longer current on case %s", crimeCase.Version, caseNumber))
		return
	}
	zap.S().Infow("case status updated",
		"caseNumber", caseNumber,
		"from", crimeCase.Status,
		"to", req.Status,
		"actor", actor.ID)

	c.notifyReporter(ctx, crimeCase, models.NotificationStatusChange,
		fmt.Sprintf("Case %s moved to %s", caseNumber, req.Status))

	crimeCase.Status = req.Status
	crimeCase.StatusHistory = append(crimeCase.StatusHistory, entry)
	crimeCase.UpdatedAt = now
	if models.IsTerminal(req.Status) {
		crimeCase.ClosedAt = &now
	}
	crimeCase.Version++

	b, err := json.Marshal(crimeCase)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// AssignStaffHandler assigns an active staff member to a case. Assignment
// always forces the case to Assigned regardless of its current non-terminal
// status, with an auto-generated audit note naming the assignee.
func (c Case) AssignStaffHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.ActorFromContext(r.Context())
	if !ok {
		config.ErrorStatus("missing actor", http.StatusUnauthorized, w, fmt.Errorf("no actor in context"))
		return
	}
	if !actor.IsElevated() {
		config.ErrorStatus("only admins and supervisors may assign cases", http.StatusForbidden, w,
			fmt.Errorf("actor %s has role %q", actor.ID, actor.Role))
		return
	}
	caseNumber := mux.Vars(r)["case_number"]

	var req models.AssignStaffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if violations := models.Validate(req); violations != nil {
		config.ValidationErrorStatus(w, violations)
		return
	}

	staffID, err := primitive.ObjectIDFromHex(req.StaffID)
	if err != nil {
		config.ErrorStatus("staffId is not a valid object id", http.StatusBadRequest, w, err)
		return
	}

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	staff, err := c.UDB.FindOne(ctx, bson.M{"_id": staffID})
	if err != nil {
		config.ErrorStatus("staff member not found", http.StatusNotFound, w, err)
		return
	}
	if staff.Role != models.RoleStaff || staff.Status != models.UserActive {
		config.ErrorStatus("assignee must be an active staff member", http.StatusConflict, w,
			fmt.Errorf("user %s is %s/%s", req.StaffID, staff.Role, staff.Status))
		return
	}

	crimeCase, err := c.DB.FindOne(ctx, bson.M{"caseNumber": caseNumber},
		options.FindOne().SetProjection(caseListProjection))
	if err != nil {
		config.ErrorStatus("failed to get case by case number", http.StatusNotFound, w, err)
		return
	}
	if models.IsTerminal(crimeCase.Status) {
		config.ErrorStatus("cannot assign a closed case", http.StatusConflict, w,
			fmt.Errorf("case %s is %s", caseNumber, crimeCase.Status))
		return
	}

	note := fmt.Sprintf("Assigned to %s", staff.Name)
	if req.Note != "" {
		note = note + ": " + req.Note
	}
	now := primitive.NewDateTimeFromTime(time.Now())
	entry := models.NewHistoryEntry(models.StatusAssigned, actor.ID, note)
	update := bson.M{
		"$set": bson.M{
			"status":     models.StatusAssigned,
			"assignedTo": req.StaffID,
			"assignedAt": now,
			"updatedAt":  now,
		},
		"$push": bson.M{"statusHistory": entry},
		"$inc":  bson.M{"version": 1},
	}

	res, err := c.DB.UpdateOne(ctx, bson.M{"caseNumber": caseNumber, "version": crimeCase.Version}, update)
	if err != nil {
		config.ErrorStatus("failed to assign case", http.StatusInternalServerError, w, err)
		return
	}
	if res.MatchedCount == 0 {
		config.ErrorStatus("case was modified concurrently, retry", http.StatusConflict, w,
			fmt.Errorf("version %d no longer current on case %s", crimeCase.Version, caseNumber))
		return
	}
	zap.S().Infow("case assigned",
		"caseNumber", caseNumber,
		"staff", req.StaffID,
		"actor", actor.ID)

	c.notify(ctx, req.StaffID, caseNumber, models.NotificationAssignment,
		fmt.Sprintf("You have been assigned case %s", caseNumber))

	crimeCase.Status = models.StatusAssigned
	crimeCase.AssignedTo = req.StaffID
	crimeCase.AssignedAt = &now
	crimeCase.UpdatedAt = now
	crimeCase.StatusHistory = append(crimeCase.StatusHistory, entry)
	crimeCase.Version++

	b, err := json.Marshal(crimeCase)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// notifyReporter persists and pushes a notification to the case reporter.
// Anonymous cases have no reporter to notify.
func (c Case) notifyReporter(ctx context.Context, crimeCase *models.Case, kind, message string) {
	if crimeCase.Anonymous || crimeCase.ReportedBy == "" {
		return
	}
	c.notify(ctx, crimeCase.ReportedBy, crimeCase.CaseNumber, kind, message)
}

func (c Case) notify(ctx context.Context, userID, caseNumber, kind, message string) {
	n := models.Notification{
		UserID:     userID,
		CaseNumber: caseNumber,
		Type:       kind,
		Message:    message,
		CreatedAt:  primitive.NewDateTimeFromTime(time.Now()),
	}
	if _, err := c.NDB.InsertOne(ctx, n); err != nil {
		zap.S().Errorw("failed to persist notification",
			"user", userID,
			"caseNumber", caseNumber,
			"error", err)
		return
	}
	NotifyUser(userID, n)
}
