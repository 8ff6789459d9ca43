package medical

import "time"

const TypeVaccination = "vaccination"

// Record es una entrada de historia clínica.
type Record struct {
	ID     string
	UserID string
	PetID  string

	VisitDate    time.Time
	RecordType   string
	Veterinarian string
	Diagnosis    string

	Treatment   string
	Medications string
	Notes       string
	Clinic      string

	Weight       *float64
	Temperature  *float64
	FollowUpDate *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Stats es el resumen de /stats.
type Stats struct {
	TotalRecords      int            `json:"total_records"`
	RecordTypes       map[string]int `json:"record_types"`
	RecentVisits      int            `json:"recent_visits"`
	UpcomingFollowups int            `json:"upcoming_followups"`
}

// SearchFilter: todos opcionales. Query matchea sin distinguir mayúsculas.
type SearchFilter struct {
	Query      string
	RecordType string
	PetID      string
	StartDate  string
	EndDate    string
}
