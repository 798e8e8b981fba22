package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// FieldCount is a generic group-count row (status, category or priority
// distributions).
type FieldCount struct {
	Value string `bson:"_id" json:"value"`
	Count int64  `bson:"count" json:"count"`
}

// MonthlyTrend is the number of cases filed in one calendar month.
type MonthlyTrend struct {
	Year  int   `bson:"year" json:"year"`
	Month int   `bson:"month" json:"month"`
	Count int64 `bson:"count" json:"count"`
}

// ResolutionStats summarizes time-to-resolution over terminal cases.
type ResolutionStats struct {
	AverageDays float64 `bson:"averageDays" json:"averageDays"`
	MinDays     float64 `bson:"minDays" json:"minDays"`
	MaxDays     float64 `bson:"maxDays" json:"maxDays"`
	Cases       int64   `bson:"cases" json:"cases"`
}

// AssignmentRollup is one grouped assignment/completion row keyed by the
// assignee's id, as produced by the staff performance pipeline.
type AssignmentRollup struct {
	StaffID   string `bson:"_id"`
	Assigned  int64  `bson:"assigned"`
	Completed int64  `bson:"completed"`
}

// StaffPerformance is one staff member's assignment/completion rollup.
type StaffPerformance struct {
	StaffID        string  `json:"staffId"`
	Name           string  `json:"name"`
	Department     string  `json:"department,omitempty"`
	Assigned       int64   `json:"assigned"`
	Completed      int64   `json:"completed"`
	CompletionRate float64 `json:"completionRate"`
}

// DepartmentPerformance is a department-level completion rollup.
type DepartmentPerformance struct {
	Department     string  `json:"department"`
	Assigned       int64   `json:"assigned"`
	Completed      int64   `json:"completed"`
	CompletionRate float64 `json:"completionRate"`
}

// Hotspot is a 2-decimal-place coordinate bucket with its case count.
type Hotspot struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
	Count     int64   `bson:"count" json:"count"`
}

// ComplianceReport is the SLA compliance snapshot returned by the
// statistics endpoint.
type ComplianceReport struct {
	ActiveCases    int64              `json:"activeCases"`
	OverdueCases   int64              `json:"overdueCases"`
	ComplianceRate float64            `json:"complianceRate"`
	GeneratedAt    primitive.DateTime `json:"generatedAt"`
}
