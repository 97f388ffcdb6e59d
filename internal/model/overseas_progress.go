package model

import (
	"time"

	"github.com/google/uuid"
)

type MedicalExamResult string

const (
	MedicalExamPass    MedicalExamResult = "PASS"
	MedicalExamFail    MedicalExamResult = "FAIL"
	MedicalExamPending MedicalExamResult = "PENDING"
)

type PoliceCheckStatus string

const (
	PoliceCheckIssued   PoliceCheckStatus = "ISSUED"
	PoliceCheckPending  PoliceCheckStatus = "PENDING"
	PoliceCheckRejected PoliceCheckStatus = "REJECTED"
)

type ProgressStatus string

const (
	ProgressBlocked    ProgressStatus = "BLOCKED"
	ProgressCompleted  ProgressStatus = "COMPLETED"
	ProgressInProgress ProgressStatus = "IN_PROGRESS"
)

// OverseasProgress tracks the pre-arrival checkpoints for one candidate.
// passport_expiry_ok is derived from the candidate's passport expiry whenever
// passport_checked is set; a caller-supplied value is overridden.
type OverseasProgress struct {
	Base
	CandidateID uuid.UUID `db:"candidate_id" json:"candidate_id"`

	MedicalExamDate   *time.Time `db:"medical_exam_date" json:"medical_exam_date,omitempty"`
	MedicalExamResult *string    `db:"medical_exam_result" json:"medical_exam_result,omitempty"`
	MedicalExamRemark *string    `db:"medical_exam_remark" json:"medical_exam_remark,omitempty"`

	PoliceCheckDate   *time.Time `db:"police_check_date" json:"police_check_date,omitempty"`
	PoliceCheckStatus *string    `db:"police_check_status" json:"police_check_status,omitempty"`
	PoliceCheckRemark *string    `db:"police_check_remark" json:"police_check_remark,omitempty"`

	PassportChecked bool    `db:"passport_checked" json:"passport_checked"`
	PassportOk      *bool   `db:"passport_expiry_ok" json:"passport_expiry_ok,omitempty"`
	PassportRemark  *string `db:"passport_remark" json:"passport_remark,omitempty"`

	ArcChecked   bool    `db:"arc_checked" json:"arc_checked"`
	ArcHasIssues bool    `db:"arc_has_issues" json:"arc_has_issues"`
	ArcRemark    *string `db:"arc_remark" json:"arc_remark,omitempty"`

	OverallStatus ProgressStatus `db:"overall_status" json:"overall_status"`

	CandidateRef
}

// UpsertOverseasProgressRequest is the PUT body for
// /overseas-progress/:candidateId.
type UpsertOverseasProgressRequest struct {
	MedicalExamDate   *string `json:"medical_exam_date" binding:"omitempty,datetime=2006-01-02"`
	MedicalExamResult *string `json:"medical_exam_result" binding:"omitempty,oneof=PASS FAIL PENDING"`
	MedicalExamRemark *string `json:"medical_exam_remark"`

	PoliceCheckDate   *string `json:"police_check_date" binding:"omitempty,datetime=2006-01-02"`
	PoliceCheckStatus *string `json:"police_check_status" binding:"omitempty,oneof=ISSUED PENDING REJECTED"`
	PoliceCheckRemark *string `json:"police_check_remark"`

	PassportChecked *bool   `json:"passport_checked"`
	PassportOk      *bool   `json:"passport_expiry_ok"`
	PassportRemark  *string `json:"passport_remark"`

	ArcChecked   *bool   `json:"arc_checked"`
	ArcHasIssues *bool   `json:"arc_has_issues"`
	ArcRemark    *string `json:"arc_remark"`
}

// OverseasProgressFilters narrows the progress list.
type OverseasProgressFilters struct {
	Status ProgressStatus
	Search string
}

// ProgressCheckpoint is one line of a printable progress report.
type ProgressCheckpoint struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Remark string `json:"remark,omitempty"`
}

// ProgressReport is the fixed four-checkpoint summary for a candidate.
type ProgressReport struct {
	CandidateID   uuid.UUID            `json:"candidate_id"`
	CandidateName string               `json:"candidate_name"`
	PassportNo    string               `json:"passport_no,omitempty"`
	Checkpoints   []ProgressCheckpoint `json:"checkpoints"`
	OverallStatus ProgressStatus       `json:"overall_status"`
	GeneratedAt   time.Time            `json:"generated_at"`
}
