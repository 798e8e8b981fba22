package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/civicwatch/crime-report-api/api"
	"github.com/civicwatch/crime-report-api/api/scheduler"
	"github.com/civicwatch/crime-report-api/config"
	"github.com/civicwatch/crime-report-api/databases"
	"github.com/civicwatch/crime-report-api/models"
)

// Statistics exposes the aggregation reporting endpoints. All endpoints are
// restricted to admins and supervisors.
type Statistics struct {
	DB  databases.CaseDatabase
	UDB databases.UserDatabase
}

// requireElevated rejects non-admin, non-supervisor actors.
func requireElevated(w http.ResponseWriter, r *http.Request) bool {
	actor, ok := api.ActorFromContext(r.Context())
	if !ok {
		config.ErrorStatus("missing actor", http.StatusUnauthorized, w, fmt.Errorf("no actor in context"))
		return false
	}
	if !actor.IsElevated() {
		config.ErrorStatus("reporting requires admin or supervisor role", http.StatusForbidden, w,
			fmt.Errorf("actor %s has role %q", actor.ID, actor.Role))
		return false
	}
	return true
}

func (s Statistics) fieldCounts(ctx context.Context, field string) ([]models.FieldCount, error) {
	cursor, err := s.DB.Aggregate(ctx, []bson.M{
		{"$group": bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}},
		{"$sort": bson.M{"count": -1}},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := []models.FieldCount{}
	if err := cursor.All(ctx, &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

func (s Statistics) writeFieldCounts(w http.ResponseWriter, r *http.Request, field string) {
	if !requireElevated(w, r) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	counts, err := s.fieldCounts(ctx, field)
	if err != nil {
		config.ErrorStatus("failed to aggregate cases", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(counts)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// StatusDistributionHandler counts cases per status.
func (s Statistics) StatusDistributionHandler(w http.ResponseWriter, r *http.Request) {
	s.writeFieldCounts(w, r, "status")
}

// CategoryDistributionHandler counts cases per crime type.
func (s Statistics) CategoryDistributionHandler(w http.ResponseWriter, r *http.Request) {
	s.writeFieldCounts(w, r, "crimeType")
}

// PriorityDistributionHandler counts cases per priority.
func (s Statistics) PriorityDistributionHandler(w http.ResponseWriter, r *http.Request) {
	s.writeFieldCounts(w, r, "priority")
}

// MonthlyTrendHandler counts cases filed per calendar month, oldest first.
func (s Statistics) MonthlyTrendHandler(w http.ResponseWriter, r *http.Request) {
	if !requireElevated(w, r) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cursor, err := s.DB.Aggregate(ctx, []bson.M{
		{"$group": bson.M{
			"_id": bson.M{
				"year":  bson.M{"$year": "$createdAt"},
				"month": bson.M{"$month": "$createdAt"},
			},
			"count": bson.M{"$sum": 1},
		}},
		{"$project": bson.M{
			"year":  "$_id.year",
			"month": "$_id.month",
			"count": 1,
		}},
		{"$sort": bson.M{"year": 1, "month": 1}},
	})
	if err != nil {
		config.ErrorStatus("failed to aggregate cases", http.StatusInternalServerError, w, err)
		return
	}
	defer cursor.Close(ctx)

	trend := []models.MonthlyTrend{}
	if err := cursor.All(ctx, &trend); err != nil {
		config.ErrorStatus("failed to decode aggregation", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(trend)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ResolutionTimeHandler summarizes time-to-resolution over terminal cases.
func (s Statistics) ResolutionTimeHandler(w http.ResponseWriter, r *http.Request) {
	if !requireElevated(w, r) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cursor, err := s.DB.Aggregate(ctx, []bson.M{
		{"$match": bson.M{
			"status":   bson.M{"$in": models.TerminalStatuses},
			"closedAt": bson.M{"$type": "date"},
		}},
		{"$project": bson.M{
			"days": bson.M{"$divide": []interface{}{
				bson.M{"$subtract": []interface{}{"$closedAt", "$createdAt"}},
				86400000,
			}},
		}},
		{"$group": bson.M{
			"_id":         nil,
			"averageDays": bson.M{"$avg": "$days"},
			"minDays":     bson.M{"$min": "$days"},
			"maxDays":     bson.M{"$max": "$days"},
			"cases":       bson.M{"$sum": 1},
		}},
	})
	if err != nil {
		config.ErrorStatus("failed to aggregate cases", http.StatusInternalServerError, w, err)
		return
	}
	defer cursor.Close(ctx)

	var rows []models.ResolutionStats
	if err := cursor.All(ctx, &rows); err != nil {
		config.ErrorStatus("failed to decode aggregation", http.StatusInternalServerError, w, err)
		return
	}
	stats := models.ResolutionStats{}
	if len(rows) > 0 {
		stats = rows[0]
	}

	b, err := json.Marshal(stats)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

func (s Statistics) staffRollups(ctx context.Context) ([]models.AssignmentRollup, map[string]models.User, error) {
	cursor, err := s.DB.Aggregate(ctx, []bson.M{
		{"$match": bson.M{"assignedTo": bson.M{"$exists": true, "$ne": ""}}},
		{"$group": bson.M{
			"_id":      "$assignedTo",
			"assigned": bson.M{"$sum": 1},
			"completed": bson.M{"$sum": bson.M{"$cond": []interface{}{
				bson.M{"$eq": []interface{}{"$status", models.StatusCompleted}}, 1, 0,
			}}},
		}},
		{"$sort": bson.M{"assigned": -1}},
		{"$limit": 20},
	})
	if err != nil {
		return nil, nil, err
	}
	defer cursor.Close(ctx)

	var rollups []models.AssignmentRollup
	if err := cursor.All(ctx, &rollups); err != nil {
		return nil, nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(rollups))
	for _, row := range rollups {
		if oid, err := primitive.ObjectIDFromHex(row.StaffID); err == nil {
			ids = append(ids, oid)
		}
	}
	users := map[string]models.User{}
	if len(ids) > 0 {
		found, err := s.UDB.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
		if err != nil {
			return nil, nil, err
		}
		for _, u := range found {
			users[u.ID.Hex()] = u
		}
	}
	return rollups, users, nil
}

func completionRate(assigned, completed int64) float64 {
	if assigned == 0 {
		return 0
	}
	return float64(completed) / float64(assigned) * 100
}

// StaffPerformanceHandler is the staff leaderboard: per-member assignment
// and completion counts for the 20 busiest investigators.
func (s Statistics) StaffPerformanceHandler(w http.ResponseWriter, r *http.Request) {
	if !requireElevated(w, r) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	rollups, users, err := s.staffRollups(ctx)
	if err != nil {
		config.ErrorStatus("failed to aggregate staff performance", http.StatusInternalServerError, w, err)
		return
	}

	performance := []models.StaffPerformance{}
	for _, row := range rollups {
		p := models.StaffPerformance{
			StaffID:        row.StaffID,
			Assigned:       row.Assigned,
			Completed:      row.Completed,
			CompletionRate: completionRate(row.Assigned, row.Completed),
		}
		if u, ok := users[row.StaffID]; ok {
			p.Name = u.Name
			p.Department = u.Department
		}
		performance = append(performance, p)
	}

	b, err := json.Marshal(performance)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DepartmentPerformanceHandler rolls staff performance up to departments.
func (s Statistics) DepartmentPerformanceHandler(w http.ResponseWriter, r *http.Request) {
	if !requireElevated(w, r) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	rollups, users, err := s.staffRollups(ctx)
	if err != nil {
		config.ErrorStatus("failed to aggregate department performance", http.StatusInternalServerError, w, err)
		return
	}

	byDept := map[string]*models.DepartmentPerformance{}
	order := []string{}
	for _, row := range rollups {
		dept := "Unassigned"
		if u, ok := users[row.StaffID]; ok && u.Department != "" {
			dept = u.Department
		}
		d, ok := byDept[dept]
		if !ok {
			d = &models.DepartmentPerformance{Department: dept}
			byDept[dept] = d
			order = append(order, dept)
		}
		d.Assigned += row.Assigned
		d.Completed += row.Completed
	}

	departments := []models.DepartmentPerformance{}
	for _, dept := range order {
		d := byDept[dept]
		d.CompletionRate = completionRate(d.Assigned, d.Completed)
		departments = append(departments, *d)
	}

	b, err := json.Marshal(departments)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// HotspotsHandler buckets case locations to two decimal places (roughly a
// 1km grid) and returns the 50 busiest buckets.
func (s Statistics) HotspotsHandler(w http.ResponseWriter, r *http.Request) {
	if !requireElevated(w, r) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	// (0, 0) is the zero value of an unset location; a genuine equator or
	// prime-meridian coordinate still has the other axis set
	cursor, err := s.DB.Aggregate(ctx, []bson.M{
		{"$match": bson.M{"$or": []bson.M{
			{"location.latitude": bson.M{"$ne": 0}},
			{"location.longitude": bson.M{"$ne": 0}},
		}}},
		{"$group": bson.M{
			"_id": bson.M{
				"lat": bson.M{"$round": []interface{}{"$location.latitude", 2}},
				"lng": bson.M{"$round": []interface{}{"$location.longitude", 2}},
			},
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"count": -1}},
		{"$limit": 50},
		{"$project": bson.M{
			"_id":       0,
			"latitude":  "$_id.lat",
			"longitude": "$_id.lng",
			"count":     1,
		}},
	})
	if err != nil {
		config.ErrorStatus("failed to aggregate hotspots", http.StatusInternalServerError, w, err)
		return
	}
	defer cursor.Close(ctx)

	hotspots := []models.Hotspot{}
	if err := cursor.All(ctx, &hotspots); err != nil {
		config.ErrorStatus("failed to decode aggregation", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(hotspots)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// TopCrimeTypesHandler returns the 10 most reported crime types.
func (s Statistics) TopCrimeTypesHandler(w http.ResponseWriter, r *http.Request) {
	if !requireElevated(w, r) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	cursor, err := s.DB.Aggregate(ctx, []bson.M{
		{"$group": bson.M{"_id": "$crimeType", "count": bson.M{"$sum": 1}}},
		{"$sort": bson.M{"count": -1}},
		{"$limit": 10},
	})
	if err != nil {
		config.ErrorStatus("failed to aggregate cases", http.StatusInternalServerError, w, err)
		return
	}
	defer cursor.Close(ctx)

	counts := []models.FieldCount{}
	if err := cursor.All(ctx, &counts); err != nil {
		config.ErrorStatus("failed to decode aggregation", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(counts)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ComplianceHandler reports the current SLA compliance snapshot over active
// (non-terminal) cases.
func (s Statistics) ComplianceHandler(w http.ResponseWriter, r *http.Request) {
	if !requireElevated(w, r) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	active, err := s.DB.CountDocuments(ctx, bson.M{"status": bson.M{"$nin": models.TerminalStatuses}})
	if err != nil {
		config.ErrorStatus("failed to count active cases", http.StatusInternalServerError, w, err)
		return
	}
	overdue, err := s.DB.CountDocuments(ctx, bson.M{
		"status":     bson.M{"$nin": models.TerminalStatuses},
		"slaOverdue": true,
	})
	if err != nil {
		config.ErrorStatus("failed to count overdue cases", http.StatusInternalServerError, w, err)
		return
	}

	report := models.ComplianceReport{
		ActiveCases:    active,
		OverdueCases:   overdue,
		ComplianceRate: scheduler.ComplianceRate(active, overdue),
		GeneratedAt:    primitive.NewDateTimeFromTime(time.Now()),
	}

	b, err := json.Marshal(report)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// OverdueCasesHandler lists SLA-overdue cases joined with their assigned
// staff and reporter documents, most overdue first.
func (s Statistics) OverdueCasesHandler(w http.ResponseWriter, r *http.Request) {
	if !requireElevated(w, r) {
		return
	}
	ctx, cancel := api.WithQueryTimeout(r.Context())
	defer cancel()

	// assignedTo/reportedBy hold hex strings, so convert before the lookup.
	// onError/onNull keep unassigned and anonymous cases in the result.
	cursor, err := s.DB.Aggregate(ctx, []bson.M{
		{"$match": bson.M{"slaOverdue": true, "status": bson.M{"$nin": models.TerminalStatuses}}},
		{"$addFields": bson.M{
			"staffObjId": bson.M{"$convert": bson.M{
				"input": "$assignedTo", "to": "objectId", "onError": nil, "onNull": nil,
			}},
			"reporterObjId": bson.M{"$convert": bson.M{
				"input": "$reportedBy", "to": "objectId", "onError": nil, "onNull": nil,
			}},
		}},
		{"$lookup": bson.M{
			"from":         "users",
			"localField":   "staffObjId",
			"foreignField": "_id",
			"as":           "assignedStaff",
		}},
		{"$lookup": bson.M{
			"from":         "users",
			"localField":   "reporterObjId",
			"foreignField": "_id",
			"as":           "reporter",
		}},
		{"$project": bson.M{
			"evidence":               0,
			"staffObjId":             0,
			"reporterObjId":          0,
			"assignedStaff.password": 0,
			"reporter.password":      0,
		}},
		{"$sort": bson.M{"slaOverdueHours": -1}},
	})
	if err != nil {
		config.ErrorStatus("failed to aggregate overdue cases", http.StatusInternalServerError, w, err)
		return
	}
	defer cursor.Close(ctx)

	overdue := []models.CaseWithRelations{}
	if err := cursor.All(ctx, &overdue); err != nil {
		config.ErrorStatus("failed to decode aggregation", http.StatusInternalServerError, w, err)
		return
	}

	b, err := json.Marshal(overdue)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
