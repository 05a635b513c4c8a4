package dto

import (
	"confbook/internal/domains/report/model"
)

const monthFormat = "2006-01"

type StatusSummary struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

type MonthlyTrend struct {
	Month string `json:"month"`
	Total int    `json:"total"`
}

type DepartmentSummary struct {
	Department   string  `json:"department"`
	Total        int     `json:"total"`
	Approved     int     `json:"approved"`
	ApprovedCost float64 `json:"approved_cost"`
}

type SummaryResponse struct {
	Bookings    StatusSummary       `json:"bookings"`
	Trend       []MonthlyTrend      `json:"trend"`
	Departments []DepartmentSummary `json:"departments"`
}

func (r *SummaryResponse) FromModels(statuses []model.StatusCount, months []model.MonthlyCount, departments []model.DepartmentStat) {
	for _, status := range statuses {
		r.Bookings.Total += status.Total

		switch status.Status {
		case "pending":
			r.Bookings.Pending = status.Total
		case "approved":
			r.Bookings.Approved = status.Total
		case "rejected":
			r.Bookings.Rejected = status.Total
		}
	}

	r.Trend = make([]MonthlyTrend, len(months))
	for i, month := range months {
		r.Trend[i] = MonthlyTrend{
			Month: month.Month.Format(monthFormat),
			Total: month.Total,
		}
	}

	r.Departments = make([]DepartmentSummary, len(departments))
	for i, department := range departments {
		r.Departments[i] = DepartmentSummary{
			Department:   department.Department,
			Total:        department.Total,
			Approved:     department.Approved,
			ApprovedCost: department.ApprovedCost,
		}
	}
}
