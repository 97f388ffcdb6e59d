package model

import (
	"time"
)

// Worker is the placed migrant worker. Owned by the worker module; this
// subsystem only reads it for display joins.
type Worker struct {
	Base
	Name        string `db:"name" json:"name"`
	EnglishName string `db:"english_name" json:"english_name"`
	Nationality string `db:"nationality" json:"nationality"`
	Status      string `db:"status" json:"status"`
}

// Candidate is a pre-arrival recruit still overseas. Read-only here; the
// passport expiry feeds the overseas progress passport check.
type Candidate struct {
	Base
	Name           string     `db:"name" json:"name"`
	EnglishName    string     `db:"english_name" json:"english_name"`
	PassportNo     *string    `db:"passport_no" json:"passport_no,omitempty"`
	PassportExpiry *time.Time `db:"passport_expiry" json:"passport_expiry,omitempty"`
	Nationality    string     `db:"nationality" json:"nationality"`
}

// WorkerRef is the minimal worker identity joined onto compliance records.
type WorkerRef struct {
	WorkerName        string `db:"worker_name" json:"worker_name"`
	WorkerEnglishName string `db:"worker_english_name" json:"worker_english_name"`
}

// CandidateRef is the minimal candidate identity joined onto progress records.
type CandidateRef struct {
	CandidateName        string  `db:"candidate_name" json:"candidate_name"`
	CandidateEnglishName string  `db:"candidate_english_name" json:"candidate_english_name"`
	CandidatePassportNo  *string `db:"candidate_passport_no" json:"candidate_passport_no,omitempty"`
}
