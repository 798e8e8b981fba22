package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CaseStatus is the lifecycle state of a filed case.
type CaseStatus string

// Case lifecycle statuses, in workflow order.
const (
	StatusFiled              CaseStatus = "Filed"
	StatusAssigned           CaseStatus = "Assigned"
	StatusUnderInvestigation CaseStatus = "Under Investigation"
	StatusEvidenceCollected  CaseStatus = "Evidence Collected"
	StatusSuspectIdentified  CaseStatus = "Suspect Identified"
	StatusReportSubmitted    CaseStatus = "Report Submitted"
	StatusCompleted          CaseStatus = "Completed"
	StatusClosed             CaseStatus = "Closed"
	StatusRejected           CaseStatus = "Rejected"
)

// Case priorities
const (
	PriorityLow      = "Low"
	PriorityMedium   = "Medium"
	PriorityHigh     = "High"
	PriorityCritical = "Critical"
)

// CrimeTypes is the fixed set of reportable crime categories.
var CrimeTypes = []string{
	"Theft",
	"Assault",
	"Burglary",
	"Vandalism",
	"Fraud",
	"Cybercrime",
	"Harassment",
	"Drug Offense",
	"Missing Person",
	"Other",
}

// AllowedTransitions maps each status to the statuses a case may move to
// next. Terminal statuses have no successors. Assignment bypasses this
// table (it always forces Assigned on a non-terminal case).
var AllowedTransitions = map[CaseStatus][]CaseStatus{
	StatusFiled:              {StatusAssigned, StatusRejected, StatusClosed},
	StatusAssigned:           {StatusUnderInvestigation, StatusRejected, StatusClosed},
	StatusUnderInvestigation: {StatusEvidenceCollected, StatusAssigned, StatusClosed},
	StatusEvidenceCollected:  {StatusSuspectIdentified, StatusUnderInvestigation, StatusClosed},
	StatusSuspectIdentified:  {StatusReportSubmitted, StatusUnderInvestigation, StatusClosed},
	StatusReportSubmitted:    {StatusCompleted, StatusUnderInvestigation, StatusClosed},
	StatusCompleted:          {},
	StatusClosed:             {},
	StatusRejected:           {},
}

// TerminalStatuses are the statuses a case never leaves.
var TerminalStatuses = []CaseStatus{StatusCompleted, StatusClosed, StatusRejected}

// ValidStatus reports whether s is a known case status.
func ValidStatus(s CaseStatus) bool {
	_, ok := AllowedTransitions[s]
	return ok
}

// IsTerminal reports whether s is a terminal status.
func IsTerminal(s CaseStatus) bool {
	for _, t := range TerminalStatuses {
		if s == t {
			return true
		}
	}
	return false
}

// CanTransition reports whether a case in status from may move to status to.
func CanTransition(from, to CaseStatus) bool {
	for _, next := range AllowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// FormatCaseNumber builds the human-readable case number for the nth case
// created on the given day, e.g. CASE-20250906-0001.
func FormatCaseNumber(createdAt time.Time, seq int64) string {
	return fmt.Sprintf("CASE-%s-%04d", createdAt.UTC().Format("20060102"), seq)
}

// StatusHistoryEntry is one immutable record in a case's audit trail.
type StatusHistoryEntry struct {
	Status    CaseStatus         `bson:"status" json:"status"`
	Timestamp primitive.DateTime `bson:"timestamp" json:"timestamp"`
	Actor     string             `bson:"actor,omitempty" json:"actor,omitempty"`
	Note      string             `bson:"note,omitempty" json:"note,omitempty"`
}

// NewHistoryEntry builds a history entry stamped with the current time.
func NewHistoryEntry(status CaseStatus, actor, note string) StatusHistoryEntry {
	return StatusHistoryEntry{
		Status:    status,
		Timestamp: primitive.NewDateTimeFromTime(time.Now()),
		Actor:     actor,
		Note:      note,
	}
}

// CaseLocation is where the reported incident happened.
type CaseLocation struct {
	Latitude  float64 `bson:"latitude" json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `bson:"longitude" json:"longitude" validate:"min=-180,max=180"`
	Address   string  `bson:"address,omitempty" json:"address,omitempty" validate:"max=300"`
}

// Evidence is a binary attachment stored inline on a case or investigation.
type Evidence struct {
	FileID       string             `bson:"fileId" json:"fileId"`
	Filename     string             `bson:"filename" json:"filename"`
	OriginalName string             `bson:"originalName" json:"originalName"`
	MediaType    string             `bson:"mediaType" json:"mediaType"`
	Size         int64              `bson:"size" json:"size"`
	Data         primitive.Binary   `bson:"data" json:"-"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	UploadedAt   primitive.DateTime `bson:"uploadedAt" json:"uploadedAt"`
	UploadedBy   string             `bson:"uploadedBy,omitempty" json:"uploadedBy,omitempty"`
}

// Case represents a filed complaint and its full audit trail.
type Case struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id,omitempty"`
	CaseNumber    string               `bson:"caseNumber" json:"caseNumber"`
	Title         string               `bson:"title" json:"title"`
	Description   string               `bson:"description" json:"description"`
	CrimeType     string               `bson:"crimeType" json:"crimeType"`
	Location      CaseLocation         `bson:"location" json:"location"`
	Priority      string               `bson:"priority" json:"priority"`
	Anonymous     bool                 `bson:"anonymous" json:"anonymous"`
	Tags          []string             `bson:"tags,omitempty" json:"tags,omitempty"`
	ReportedBy    string               `bson:"reportedBy,omitempty" json:"reportedBy,omitempty"`
	AssignedTo    string               `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	AssignedAt    *primitive.DateTime  `bson:"assignedAt,omitempty" json:"assignedAt,omitempty"`
	Status        CaseStatus           `bson:"status" json:"status"`
	StatusHistory []StatusHistoryEntry `bson:"statusHistory" json:"statusHistory"`
	Evidence      []Evidence           `bson:"evidence,omitempty" json:"evidence,omitempty"`
	SLAOverdue    bool                 `bson:"slaOverdue" json:"slaOverdue"`
	SLAOverdueHrs float64              `bson:"slaOverdueHours,omitempty" json:"slaOverdueHours,omitempty"`
	SLACheckedAt  *primitive.DateTime  `bson:"slaCheckedAt,omitempty" json:"slaCheckedAt,omitempty"`
	Version       int64                `bson:"version" json:"version"`
	CreatedAt     primitive.DateTime   `bson:"createdAt" json:"createdAt"`
	UpdatedAt     primitive.DateTime   `bson:"updatedAt" json:"updatedAt"`
	ClosedAt      *primitive.DateTime  `bson:"closedAt,omitempty" json:"closedAt,omitempty"`
}

// CurrentStatusStart returns the timestamp the case entered its current
// status, taken from the newest history entry. History is scanned rather
// than indexed because entries from concurrent writers are not guaranteed
// to arrive in timestamp order.
func (c *Case) CurrentStatusStart() time.Time {
	if len(c.StatusHistory) == 0 {
		return c.CreatedAt.Time()
	}
	latest := c.StatusHistory[0].Timestamp
	for _, e := range c.StatusHistory[1:] {
		if e.Timestamp > latest {
			latest = e.Timestamp
		}
	}
	return latest.Time()
}

// CaseWithRelations is a case joined with its assigned staff and reporter
// documents, as produced by the overdue-case lookup pipeline.
type CaseWithRelations struct {
	Case          `bson:",inline"`
	AssignedStaff []User `bson:"assignedStaff" json:"assignedStaff,omitempty"`
	Reporter      []User `bson:"reporter" json:"reporter,omitempty"`
}

// CreateCaseRequest is the payload for filing a new complaint.
type CreateCaseRequest struct {
	Title       string       `json:"title" validate:"required,min=5,max=200"`
	Description string       `json:"description" validate:"required,min=10,max=5000"`
	CrimeType   string       `json:"crimeType" validate:"required,crimetype"`
	Priority    string       `json:"priority" validate:"required,casepriority"`
	Anonymous   bool         `json:"anonymous"`
	Tags        []string     `json:"tags" validate:"max=20,dive,min=1,max=40"`
	Location    CaseLocation `json:"location"`
}

// UpdateStatusRequest is the payload for a status transition.
type UpdateStatusRequest struct {
	Status CaseStatus `json:"status" validate:"required,casestatus"`
	Note   string     `json:"note" validate:"max=1000"`
}

// AssignStaffRequest is the payload for assigning an investigator.
type AssignStaffRequest struct {
	StaffID string `json:"staffId" validate:"required,len=24,hexadecimal"`
	Note    string `json:"note" validate:"max=1000"`
}
