package model

import "time"

const (
	EntityName = "report"
)

// StatusCount is one row of the per-status booking rollup.
type StatusCount struct {
	Status string `db:"status"`
	Total  int    `db:"total"`
}

// MonthlyCount is one month of the trailing-year booking trend.
type MonthlyCount struct {
	Month time.Time `db:"month"`
	Total int       `db:"total"`
}

// DepartmentStat aggregates bookings per requesting department. ApprovedCost
// sums the conference price of approved bookings only.
type DepartmentStat struct {
	Department   string  `db:"department"`
	Total        int     `db:"total"`
	Approved     int     `db:"approved"`
	ApprovedCost float64 `db:"approved_cost"`
}

// ExportRow is one booking flattened for the CSV export.
type ExportRow struct {
	UserName        string    `db:"user_name"`
	UserEmail       string    `db:"user_email"`
	Department      string    `db:"department"`
	ConferenceTitle string    `db:"conference_title"`
	Status          string    `db:"status"`
	BookedAt        time.Time `db:"booked_at"`
	Cost            float64   `db:"cost"`
	ApproverEmail   *string   `db:"approver_email"`
}
