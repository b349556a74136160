// Package handler exposes the admin dashboard API over chi.
package handler

import (
	"github.com/go-chi/chi/v5"
)

// Handlers groups the admin API handlers
type Handlers struct {
	Attendance    *AttendanceHandler
	Employees     *EmployeeHandler
	MasterSheet   *MasterSheetHandler
	LineManagers  *LineManagerHandler
	CheckRequests *CheckRequestHandler
}

// Routes mounts the admin API, typically under /api/v1.
func (h *Handlers) Routes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.Get("/", h.Attendance.List)
		r.Get("/export", h.Attendance.Export)
	})

	r.Route("/employees", func(r chi.Router) {
		r.Get("/", h.Employees.List)
		r.Post("/", h.Employees.Create)
		r.Post("/import", h.Employees.Import)
		r.Get("/template", h.Employees.Template)
		r.Delete("/{id}", h.Employees.Delete)
	})

	r.Route("/mastersheet", func(r chi.Router) {
		r.Get("/", h.MasterSheet.List)
		r.Post("/import", h.MasterSheet.Import)
		r.Get("/template", h.MasterSheet.Template)
		r.Post("/overtime/import", h.MasterSheet.ImportOvertime)
		r.Get("/overtime/template", h.MasterSheet.OvertimeTemplate)
		r.Post("/overtime/mark", h.MasterSheet.MarkOvertime)
		r.Post("/{id}/overtime/toggle", h.MasterSheet.ToggleOvertime)
		r.Delete("/{id}", h.MasterSheet.Delete)
	})

	r.Route("/line-managers", func(r chi.Router) {
		r.Get("/", h.LineManagers.List)
		r.Post("/", h.LineManagers.Create)
		r.Get("/{id}/team", h.LineManagers.Team)
		r.Delete("/{id}", h.LineManagers.Delete)
	})

	r.Post("/check-requests", h.CheckRequests.Create)
	r.Patch("/check-requests/{id}/status", h.CheckRequests.UpdateStatus)
	r.Put("/fcm-tokens/{userId}", h.CheckRequests.StoreToken)
}
