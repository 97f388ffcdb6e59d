package model

import (
	"time"

	"github.com/google/uuid"
)

type TreatmentStatus string

const (
	TreatmentPending     TreatmentStatus = "PENDING"
	TreatmentInTreatment TreatmentStatus = "IN_TREATMENT"
	TreatmentRecovered   TreatmentStatus = "RECOVERED"
	TreatmentDeported    TreatmentStatus = "DEPORTED"
)

// Reportable disease categories tracked by the agency.
const (
	DiseaseTuberculosis = "TUBERCULOSIS"
	DiseaseSyphilis     = "SYPHILIS"
	DiseaseHIV          = "HIV"
	DiseaseMalaria      = "MALARIA"
	DiseaseHansen       = "HANSEN"
	DiseaseOther        = "OTHER"
)

// MedicalException is one reportable-disease case for a worker. A worker can
// accumulate several cases over time. The health-department and employer
// notification flags are independent; treatment_status is the only field set
// explicitly by callers rather than derived.
type MedicalException struct {
	Base
	WorkerID      uuid.UUID  `db:"worker_id" json:"worker_id"`
	HealthCheckID *uuid.UUID `db:"health_check_id" json:"health_check_id,omitempty"`
	DiagnosisDate time.Time  `db:"diagnosis_date" json:"diagnosis_date"`
	DiseaseType   string     `db:"disease_type" json:"disease_type"`
	Description   *string    `db:"description" json:"description,omitempty"`

	HealthDeptNotified   bool       `db:"health_dept_notified" json:"health_dept_notified"`
	HealthDeptNotifyDate *time.Time `db:"health_dept_notify_date" json:"health_dept_notify_date,omitempty"`
	EmployerNotified     bool       `db:"employer_notified" json:"employer_notified"`
	EmployerNotifyDate   *time.Time `db:"employer_notify_date" json:"employer_notify_date,omitempty"`

	TreatmentStatus TreatmentStatus `db:"treatment_status" json:"treatment_status"`
	ResolutionDate  *time.Time      `db:"resolution_date" json:"resolution_date,omitempty"`
	Remarks         *string         `db:"remarks" json:"remarks,omitempty"`

	WorkerRef
}

// CreateMedicalExceptionRequest is the POST body for /medical-exceptions.
type CreateMedicalExceptionRequest struct {
	WorkerID        string  `json:"worker_id" binding:"required,uuid"`
	HealthCheckID   *string `json:"health_check_id" binding:"omitempty,uuid"`
	DiagnosisDate   string  `json:"diagnosis_date" binding:"required,datetime=2006-01-02"`
	DiseaseType     string  `json:"disease_type" binding:"required,oneof=TUBERCULOSIS SYPHILIS HIV MALARIA HANSEN OTHER"`
	Description     *string `json:"description"`
	TreatmentStatus *string `json:"treatment_status" binding:"omitempty,oneof=PENDING IN_TREATMENT RECOVERED DEPORTED"`
	Remarks         *string `json:"remarks"`
}

// UpdateMedicalExceptionRequest is the PUT body for /medical-exceptions/:id.
// All fields optional; only supplied fields are merged.
type UpdateMedicalExceptionRequest struct {
	DiseaseType     *string `json:"disease_type" binding:"omitempty,oneof=TUBERCULOSIS SYPHILIS HIV MALARIA HANSEN OTHER"`
	Description     *string `json:"description"`
	TreatmentStatus *string `json:"treatment_status" binding:"omitempty,oneof=PENDING IN_TREATMENT RECOVERED DEPORTED"`
	ResolutionDate  *string `json:"resolution_date" binding:"omitempty,datetime=2006-01-02"`
	Remarks         *string `json:"remarks"`
}

// MedicalExceptionFilters narrows the exception list.
type MedicalExceptionFilters struct {
	TreatmentStatus TreatmentStatus
	DiseaseType     string
	Search          string
}

// MedicalExceptionDashboard aggregates case counts by treatment status.
type MedicalExceptionDashboard struct {
	Total       int `json:"total"`
	Pending     int `json:"pending"`
	InTreatment int `json:"in_treatment"`
	Recovered   int `json:"recovered"`
	Deported    int `json:"deported"`
}
