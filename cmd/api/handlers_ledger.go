package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"estateops/installment"
)

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid JSON body")
		return
	}

	plan, err := s.plans.CreatePlan(r.Context(), installment.CreatePlanParams{
		Name:           req.Name,
		Months:         req.Months,
		DownPaymentPct: req.DownPaymentPct,
		MarkupPct:      req.MarkupPct,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, http.StatusCreated, toPlanResponse(plan), "plan registered")
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := s.plans.GetPlanByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, toPlanResponse(plan), "plan found")
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.plans.ListPlans(r.Context())
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	out := make([]planResponse, 0, len(plans))
	for _, p := range plans {
		out = append(out, toPlanResponse(p))
	}
	s.respond(w, http.StatusOK, out, "plans listed")
}

// handleSchedule previews the payment breakdown of a plan for a given price
// without touching any allotment.
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	price, err := decimal.NewFromString(r.URL.Query().Get("price"))
	if err != nil {
		s.badRequest(w, "price query parameter must be a decimal number")
		return
	}

	plan, err := s.plans.GetPlanByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	lines, err := installment.Schedule(price, plan)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	type lineResponse struct {
		Sequence int             `json:"sequence"`
		DueLabel string          `json:"dueLabel"`
		Amount   decimal.Decimal `json:"amount"`
	}
	out := make([]lineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, lineResponse{Sequence: l.Sequence, DueLabel: l.DueLabel, Amount: l.Amount})
	}
	s.respond(w, http.StatusOK, out, "schedule computed")
}

func (s *Server) handlePostEntry(w http.ResponseWriter, r *http.Request) {
	var req postEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid JSON body")
		return
	}

	params := installment.PostParams{
		AllotmentID: req.AllotmentID,
		Amount:      req.Amount,
		Method:      installment.Method(req.Method),
	}
	if req.PaidOn != "" {
		paidOn, err := parseDate(req.PaidOn)
		if err != nil {
			s.badRequest(w, err.Error())
			return
		}
		params.PaidOn = paidOn
	}

	entry, err := s.plans.Post(r.Context(), params)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, http.StatusCreated, toEntryResponse(entry), "payment recorded")
}

func (s *Server) handleStatement(w http.ResponseWriter, r *http.Request) {
	stmt, err := s.plans.Statement(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, toStatementResponse(stmt), "ledger statement computed")
}
