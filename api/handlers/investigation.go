package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
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

// Investigation exposes the field-report endpoints.
type Investigation struct {
	DB     databases.InvestigationDatabase
	CaseDB databases.CaseDatabase
	NDB    databases.NotificationDatabase
}

// CreateInvestigationHandler files a field report against a case. When the
// report carries a status update, the parent case transitions through the
// same rules as a direct status change.
func (i Investigation) CreateInvestigationHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.ActorFromContext(r.Context())
	if !ok {
		config.ErrorStatus("missing actor", http.StatusUnauthorized, w, fmt.Errorf("no actor in context"))
		return
	}
	caseNumber := mux.Vars(r)["case_number"]

	var req models.CreateInvestigationRequest
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

	crimeCase, err := i.CaseDB.FindOne(ctx, bson.M{"caseNumber": caseNumber},
		options.FindOne().SetProjection(caseListProjection))
	if err != nil {
		config.ErrorStatus("failed to get case by case number", http.StatusNotFound, w, err)
		return
	}
	if !api.CanManageCase(actor, crimeCase) {
		config.ErrorStatus("not allowed to investigate this case", http.StatusForbidden, w,
			fmt.Errorf("actor %s denied on case %s", actor.ID, caseNumber))
		return
	}
	if req.Status != "" && !models.CanTransition(crimeCase.Status, req.Status) {
		config.ErrorStatus("illegal status transition", http.StatusConflict, w,
			fmt.Errorf("cannot move case from %q to %q", crimeCase.Status, req.Status))
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	inv := models.Investigation{
		CaseNumber:      caseNumber,
		Author:          actor.ID,
		Type:            req.Type,
		Notes:           req.Notes,
		HoursSpent:      req.HoursSpent,
		Witnesses:       req.Witnesses,
		Suspects:        req.Suspects,
		NextActions:     req.NextActions,
		LocationMarkers: req.LocationMarkers,
		Status:          req.Status,
		CreatedAt:       now,
	}
	for _, a := range req.Attachments {
		fileID := uuid.New().String()
		inv.Attachments = append(inv.Attachments, models.Evidence{
			FileID:       fileID,
			Filename:     fileID,
			OriginalName: a.OriginalName,
			MediaType:    a.MediaType,
			Size:         int64(len(a.Data)),
			Data:         primitive.Binary{Subtype: 0x00, Data: a.Data},
			Description:  a.Description,
			UploadedAt:   now,
			UploadedBy:   actor.ID,
		})
	}

	res, err := i.DB.InsertOne(ctx, inv)
	if err != nil {
		config.ErrorStatus("failed to insert investigation", http.StatusInternalServerError, w, err)
		return
	}
	if oid, ok := res.Decode().(primitive.ObjectID); ok {
		inv.ID = oid
	}
	zap.S().Infow("investigation filed",
		"caseNumber", caseNumber,
		"type", inv.Type,
		"author", actor.ID)

	if req.Status != "" {
		note := fmt.Sprintf("Updated during %s investigation", req.Type)
		entry := models.NewHistoryEntry(req.Status, actor.ID, note)
		set := bson.M{"status": req.Status, "updatedAt": now}
		if models.IsTerminal(req.Status) {
			set["closedAt"] = now
		}
		update := bson.M{
			"$set":  set,
			"$push": bson.M{"statusHistory": entry},
			"$inc":  bson.M{"version": 1},
		}
		upd, err := i.CaseDB.UpdateOne(ctx, bson.M{"caseNumber": caseNumber, "version": crimeCase.Version}, update)
		if err != nil {
			config.ErrorStatus("investigation saved but status update failed", http.StatusInternalServerError, w, err)
			return
		}
		if upd.MatchedCount == 0 {
			config.ErrorStatus("investigation saved but case was modified concurrently", http.StatusConflict, w,
				fmt.Errorf("version %d no longer current on case %s", crimeCase.Version, caseNumber))
			return
		}
		i.notifyReporter(ctx, crimeCase,
			fmt.Sprintf("Case %s moved to %s", caseNumber, req.Status))
	}

	b, err := json.Marshal(inv)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	w.Write(b)
}

// InvestigationsByCaseHandler lists a case's field reports, newest first.
// Visibility follows the parent case.
func (i Investigation) InvestigationsByCaseHandler(w http.ResponseWriter, r *http.Request) {
	actor, ok := api.ActorFromContext(r.Context())
	if !ok {
		config.ErrorStatus("missing actor", http.StatusUnauthorized, w, fmt.Errorf("no actor in context"))
		return
	}
	caseNumber := mux.Vars(r)["case_number"]

	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	crimeCase, err := i.CaseDB.FindOne(ctx, bson.M{"caseNumber": caseNumber},
		options.FindOne().SetProjection(caseListProjection))
	if err != nil {
		config.ErrorStatus("failed to get case by case number", http.StatusNotFound, w, err)
		return
	}
	if !api.CanViewCase(actor, crimeCase) {
		config.ErrorStatus("not allowed to view this case", http.StatusForbidden, w,
			fmt.Errorf("actor %s denied on case %s", actor.ID, caseNumber))
		return
	}

	investigations, err := i.DB.Find(ctx, bson.M{"caseNumber": caseNumber},
		options.Find().
			SetProjection(bson.M{"attachments.data": 0}).
			SetSort(bson.M{"createdAt": -1}))
	if err != nil {
		config.ErrorStatus("failed to get investigations", http.StatusInternalServerError, w, err)
		return
	}
	if investigations == nil {
		investigations = []models.Investigation{}
	}

	b, err := json.Marshal(investigations)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

func (i Investigation) notifyReporter(ctx context.Context, crimeCase *models.Case, message string) {
	if crimeCase.Anonymous || crimeCase.ReportedBy == "" {
		return
	}
	n := models.Notification{
		UserID:     crimeCase.ReportedBy,
		CaseNumber: crimeCase.CaseNumber,
		Type:       models.NotificationStatusChange,
		Message:    message,
		CreatedAt:  primitive.NewDateTimeFromTime(time.Now()),
	}
	if _, err := i.NDB.InsertOne(ctx, n); err != nil {
		zap.S().Errorw("failed to persist notification",
			"user", crimeCase.ReportedBy,
			"caseNumber", crimeCase.CaseNumber,
			"error", err)
		return
	}
	NotifyUser(crimeCase.ReportedBy, n)
}
