package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/wanbao-hr/agency-api/internal/service/compliance"
)

// Statutory filing deadlines in days from the entry date.
const (
	EntryReportDeadlineDays = 3
	InitialExamDeadlineDays = 3
	ArcDeadlineDays         = 15
	PermitDeadlineDays      = 15
)

type ExamResult string

const (
	ExamResultPass    ExamResult = "PASS"
	ExamResultFail    ExamResult = "FAIL"
	ExamResultPending ExamResult = "PENDING"
)

// EntryFiling tracks the post-arrival statutory submissions for one worker:
// entry notification, initial health exam, ARC application and work permit
// application. The per-item statuses and overall_compliance are derived on
// every write and never edited directly.
type EntryFiling struct {
	Base
	WorkerID  uuid.UUID  `db:"worker_id" json:"worker_id"`
	EntryDate *time.Time `db:"entry_date" json:"entry_date"`
	FlightNo  *string    `db:"flight_no" json:"flight_no,omitempty"`
	VisaNo    *string    `db:"visa_no" json:"visa_no,omitempty"`

	EntryReportDate   *time.Time        `db:"entry_report_date" json:"entry_report_date,omitempty"`
	EntryReportRefNo  *string           `db:"entry_report_ref_no" json:"entry_report_ref_no,omitempty"`
	EntryReportStatus compliance.Status `db:"entry_report_status" json:"entry_report_status"`

	InitialExamDate     *time.Time        `db:"initial_exam_date" json:"initial_exam_date,omitempty"`
	InitialExamHospital *string           `db:"initial_exam_hospital" json:"initial_exam_hospital,omitempty"`
	InitialExamResult   *string           `db:"initial_exam_result" json:"initial_exam_result,omitempty"`
	InitialExamStatus   compliance.Status `db:"initial_exam_status" json:"initial_exam_status"`

	ArcApplyDate *time.Time        `db:"arc_apply_date" json:"arc_apply_date,omitempty"`
	ArcReceiptNo *string           `db:"arc_receipt_no" json:"arc_receipt_no,omitempty"`
	ArcNo        *string           `db:"arc_no" json:"arc_no,omitempty"`
	ArcStatus    compliance.Status `db:"arc_status" json:"arc_status"`

	PermitApplyDate *time.Time        `db:"permit_apply_date" json:"permit_apply_date,omitempty"`
	PermitReceiptNo *string           `db:"permit_receipt_no" json:"permit_receipt_no,omitempty"`
	PermitNo        *string           `db:"permit_no" json:"permit_no,omitempty"`
	PermitStatus    compliance.Status `db:"permit_status" json:"permit_status"`

	OverallCompliance compliance.Status `db:"overall_compliance" json:"overall_compliance"`

	WorkerRef
}

// UpsertEntryFilingRequest is the PUT body for /entry-filings/:workerId.
// Dates travel as YYYY-MM-DD strings and are parsed before any write.
type UpsertEntryFilingRequest struct {
	EntryDate string  `json:"entry_date" binding:"required,datetime=2006-01-02"`
	FlightNo  *string `json:"flight_no"`
	VisaNo    *string `json:"visa_no"`

	EntryReportDate  *string `json:"entry_report_date" binding:"omitempty,datetime=2006-01-02"`
	EntryReportRefNo *string `json:"entry_report_ref_no"`

	InitialExamDate     *string `json:"initial_exam_date" binding:"omitempty,datetime=2006-01-02"`
	InitialExamHospital *string `json:"initial_exam_hospital"`
	InitialExamResult   *string `json:"initial_exam_result" binding:"omitempty,oneof=PASS FAIL PENDING"`

	ArcApplyDate *string `json:"arc_apply_date" binding:"omitempty,datetime=2006-01-02"`
	ArcReceiptNo *string `json:"arc_receipt_no"`
	ArcNo        *string `json:"arc_no"`

	PermitApplyDate *string `json:"permit_apply_date" binding:"omitempty,datetime=2006-01-02"`
	PermitReceiptNo *string `json:"permit_receipt_no"`
	PermitNo        *string `json:"permit_no"`
}

// EntryFilingFilters narrows the filing list.
type EntryFilingFilters struct {
	Status compliance.Status
	Search string
}

// ComplianceDashboard aggregates filing counts by overall compliance.
type ComplianceDashboard struct {
	Total          int `json:"total"`
	Compliant      int `json:"compliant"`
	Overdue        int `json:"overdue"`
	Pending        int `json:"pending"`
	ComplianceRate int `json:"compliance_rate"`
}
