package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"estateops/broker"
	"estateops/customer"
	"estateops/property"
)

const defaultListLimit = 100

func listLimit(r *http.Request) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultListLimit
}

func (s *Server) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	var req createPropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid JSON body")
		return
	}

	unit, err := s.properties.Create(r.Context(), property.CreateParams{
		UnitNo:       req.UnitNo,
		PropertyType: property.Type(req.PropertyType),
		Block:        req.Block,
		SizeSqft:     req.SizeSqft,
		Price:        req.Price,
		BrokerID:     req.BrokerID,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, http.StatusCreated, toPropertyResponse(unit), "property registered")
}

func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	unit, err := s.properties.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, toPropertyResponse(unit), "property found")
}

func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	units, err := s.properties.List(r.Context(), property.ListFilters{
		Status:       property.Status(q.Get("status")),
		PropertyType: property.Type(q.Get("type")),
		Block:        q.Get("block"),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	out := make([]propertyResponse, 0, len(units))
	for _, u := range units {
		out = append(out, toPropertyResponse(u))
	}
	s.respond(w, http.StatusOK, out, "properties listed")
}

func (s *Server) handleUpdateProperty(w http.ResponseWriter, r *http.Request) {
	var req updatePropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid JSON body")
		return
	}

	unit, err := s.properties.Update(r.Context(), chi.URLParam(r, "id"), property.UpdateParams{
		UnitNo:   req.UnitNo,
		Block:    req.Block,
		SizeSqft: req.SizeSqft,
		Price:    req.Price,
		BrokerID: req.BrokerID,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, http.StatusOK, toPropertyResponse(unit), "property updated")
}

func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req createCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid JSON body")
		return
	}

	c, err := s.customers.Create(r.Context(), customer.CreateParams{
		FullName: req.FullName,
		Phone:    req.Phone,
		Email:    req.Email,
		Address:  req.Address,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, http.StatusCreated, toCustomerResponse(c), "customer registered")
}

func (s *Server) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := s.customers.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, toCustomerResponse(c), "customer found")
}

func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.customers.List(r.Context(), listLimit(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	out := make([]customerResponse, 0, len(customers))
	for _, c := range customers {
		out = append(out, toCustomerResponse(c))
	}
	s.respond(w, http.StatusOK, out, "customers listed")
}

func (s *Server) handleCreateBroker(w http.ResponseWriter, r *http.Request) {
	var req createBrokerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.badRequest(w, "invalid JSON body")
		return
	}

	profile, err := s.brokers.Create(r.Context(), broker.CreateParams{
		Name:      req.Name,
		LicenseNo: req.LicenseNo,
		Phone:     req.Phone,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, http.StatusCreated, toBrokerResponse(profile), "broker registered")
}

func (s *Server) handleGetBroker(w http.ResponseWriter, r *http.Request) {
	profile, err := s.brokers.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, toBrokerResponse(profile), "broker found")
}

func (s *Server) handleListBrokers(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.brokers.List(r.Context(), listLimit(r))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	out := make([]brokerResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toBrokerResponse(p))
	}
	s.respond(w, http.StatusOK, out, "brokers listed")
}
