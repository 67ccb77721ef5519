package models

// Domain models matching the database schema in db/migrations/0001_init.sql

// DateLayout is the calendar-date form accepted for application_date.
const DateLayout = "2006-01-02"

// Application status values.
const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusRejected  = "rejected"
	StatusInterview = "interview"
)

// ValidStatus reports whether s is one of the enumerated status values.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusInterview:
		return true
	}
	return false
}

// NormalizeStatus maps anything outside the enumerated set to pending.
func NormalizeStatus(s string) string {
	if !ValidStatus(s) {
		return StatusPending
	}
	return s
}

type User struct {
	ID           int64  `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	Email        string `json:"email" db:"email"`
	PasswordHash string `json:"-" db:"password_hash"`
	CreatedAt    string `json:"created_at" db:"created_at"`
}

// Application is a single job-application record owned by one user.
// The optional status-transition dates and cv_filename are pointers so a
// missing value round-trips as JSON null.
type Application struct {
	ID              int64   `json:"id" db:"id"`
	UserID          int64   `json:"-" db:"user_id"`
	Company         string  `json:"company" db:"company"`
	ApplicationDate string  `json:"application_date" db:"application_date"`
	CoverLetter     string  `json:"cover_letter" db:"cover_letter"`
	CVFilename      *string `json:"cv_filename" db:"cv_filename"`
	Status          string  `json:"status" db:"status"`
	AcceptedDate    *string `json:"accepted_date" db:"accepted_date"`
	RejectedDate    *string `json:"rejected_date" db:"rejected_date"`
	InterviewDate   *string `json:"interview_date" db:"interview_date"`
	CreatedAt       string  `json:"created_at" db:"created_at"`
}

// Stats holds per-user aggregate counts over applications.
type Stats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Accepted  int64 `json:"accepted"`
	Rejected  int64 `json:"rejected"`
	Interview int64 `json:"interview"`
	ThisMonth int64 `json:"this_month"`
}
