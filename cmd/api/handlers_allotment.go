package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"estateops/allotment"
)

func (s *Server) handleAllocate(w http.ResponseWriter, r *http.Request) {
	var req allocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid JSON body")
		return
	}

	params := allotment.AllocateParams{
		CustomerID: req.CustomerID,
		PropertyID: req.PropertyID,
		Remark:     req.Remark,
	}
	if req.AllotmentDate != "" {
		date, err := parseDate(req.AllotmentDate)
		if err != nil {
			s.badRequest(w, err.Error())
			return
		}
		params.AllotmentDate = date
	}

	rec, err := s.allotments.Allocate(r.Context(), params)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, http.StatusCreated, toAllotmentResponse(rec), "property allotted")
}

func (s *Server) handleListAllotments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := allotment.Filters{
		CustomerID: q.Get("customerId"),
		PropertyID: q.Get("propertyId"),
	}
	if v := q.Get("dateFrom"); v != "" {
		date, err := parseDate(v)
		if err != nil {
			s.badRequest(w, err.Error())
			return
		}
		filters.DateFrom = &date
	}
	if v := q.Get("dateTo"); v != "" {
		date, err := parseDate(v)
		if err != nil {
			s.badRequest(w, err.Error())
			return
		}
		filters.DateTo = &date
	}

	details, err := s.allotments.List(r.Context(), filters)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	out := make([]allotmentDetailResponse, 0, len(details))
	for _, d := range details {
		out = append(out, toAllotmentDetail(d))
	}
	s.respond(w, http.StatusOK, out, "allotments listed")
}

func (s *Server) handleGetAllotment(w http.ResponseWriter, r *http.Request) {
	detail, err := s.allotments.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, toAllotmentDetail(detail), "allotment found")
}

func (s *Server) handleUpdateAllotment(w http.ResponseWriter, r *http.Request) {
	var req updateAllotmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid JSON body")
		return
	}

	params := allotment.UpdateParams{
		CustomerID: req.CustomerID,
		PropertyID: req.PropertyID,
		Remark:     req.Remark,
	}
	if req.AllotmentDate != nil {
		date, err := parseDate(*req.AllotmentDate)
		if err != nil {
			s.badRequest(w, err.Error())
			return
		}
		params.AllotmentDate = &date
	}

	rec, err := s.allotments.Update(r.Context(), chi.URLParam(r, "id"), params)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, http.StatusOK, toAllotmentResponse(rec), "allotment updated")
}

func (s *Server) handleRelease(w http.ResponseWriter, r *http.Request) {
	rec, err := s.allotments.Release(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, toAllotmentResponse(rec), "allotment released, property is free again")
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	av, err := s.allotments.CheckAvailability(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, toAvailabilityResponse(av), "availability checked")
}
