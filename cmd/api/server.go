package main

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"estateops/allotment"
	"estateops/auth"
	"estateops/broker"
	"estateops/customer"
	"estateops/installment"
	"estateops/property"
)

// Service interfaces consumed by the HTTP layer. Declared here so handler
// tests can substitute stubs without a database.

type allotmentService interface {
	Allocate(ctx context.Context, params allotment.AllocateParams) (allotment.Record, error)
	List(ctx context.Context, filters allotment.Filters) ([]allotment.Detail, error)
	GetByID(ctx context.Context, allotmentID string) (allotment.Detail, error)
	Update(ctx context.Context, allotmentID string, params allotment.UpdateParams) (allotment.Record, error)
	Release(ctx context.Context, allotmentID string) (allotment.Record, error)
	CheckAvailability(ctx context.Context, propertyID string) (allotment.Availability, error)
}

type propertyService interface {
	Create(ctx context.Context, params property.CreateParams) (property.Unit, error)
	GetByID(ctx context.Context, id string) (property.Unit, error)
	List(ctx context.Context, filters property.ListFilters) ([]property.Unit, error)
	Update(ctx context.Context, id string, params property.UpdateParams) (property.Unit, error)
}

type customerService interface {
	Create(ctx context.Context, params customer.CreateParams) (customer.Customer, error)
	GetByID(ctx context.Context, id string) (customer.Customer, error)
	List(ctx context.Context, limit int) ([]customer.Customer, error)
}

type brokerService interface {
	Create(ctx context.Context, params broker.CreateParams) (broker.Profile, error)
	GetByID(ctx context.Context, id string) (broker.Profile, error)
	List(ctx context.Context, limit int) ([]broker.Profile, error)
}

type planService interface {
	CreatePlan(ctx context.Context, params installment.CreatePlanParams) (installment.Plan, error)
	GetPlanByID(ctx context.Context, id string) (installment.Plan, error)
	ListPlans(ctx context.Context) ([]installment.Plan, error)
	Post(ctx context.Context, params installment.PostParams) (installment.Entry, error)
	Statement(ctx context.Context, allotmentID string) (installment.Statement, error)
}

type authService interface {
	Register(ctx context.Context, req auth.RegisterRequest) (*auth.User, error)
	Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResult, error)
	VerifyToken(tokenString string) (string, auth.Role, error)
}

// Server wires the domain services behind the REST surface.
type Server struct {
	logger     *slog.Logger
	allotments allotmentService
	properties propertyService
	customers  customerService
	brokers    brokerService
	plans      planService
	auth       authService
}

func NewServer(
	logger *slog.Logger,
	allotments allotmentService,
	properties propertyService,
	customers customerService,
	brokers brokerService,
	plans planService,
	authSvc authService,
) *Server {
	return &Server{
		logger:     logger,
		allotments: allotments,
		properties: properties,
		customers:  customers,
		brokers:    brokers,
		plans:      plans,
		auth:       authSvc,
	}
}

// Routes builds the router. Reads on the property catalog are public so the
// marketing site can render availability without a session. Everything else
// requires a token; mutations additionally require the operator or admin role.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Get("/properties", s.handleListProperties)
		r.Get("/properties/{id}", s.handleGetProperty)
		r.Get("/properties/{id}/allotment-status", s.handleAvailability)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/allotments", s.handleListAllotments)
			r.Get("/allotments/{id}", s.handleGetAllotment)
			r.Get("/allotments/{id}/ledger", s.handleStatement)
			r.Get("/customers", s.handleListCustomers)
			r.Get("/customers/{id}", s.handleGetCustomer)
			r.Get("/brokers", s.handleListBrokers)
			r.Get("/brokers/{id}", s.handleGetBroker)
			r.Get("/plans", s.handleListPlans)
			r.Get("/plans/{id}", s.handleGetPlan)
			r.Get("/plans/{id}/schedule", s.handleSchedule)

			r.Group(func(r chi.Router) {
				r.Use(s.requireRole(auth.RoleAdmin, auth.RoleOperator))

				r.Post("/allotments", s.handleAllocate)
				r.Put("/allotments/{id}", s.handleUpdateAllotment)
				r.Delete("/allotments/{id}", s.handleRelease)
				r.Post("/properties", s.handleCreateProperty)
				r.Put("/properties/{id}", s.handleUpdateProperty)
				r.Post("/customers", s.handleCreateCustomer)
				r.Post("/brokers", s.handleCreateBroker)
				r.Post("/plans", s.handleCreatePlan)
				r.Post("/ledger", s.handlePostEntry)
			})
		})
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"requestId", middleware.GetReqID(r.Context()),
		)
	})
}

type ctxKey int

const (
	ctxKeyUserID ctxKey = iota
	ctxKeyRole
)

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.unauthorized(w, "missing bearer token")
			return
		}

		userID, role, err := s.auth.VerifyToken(token)
		if err != nil {
			s.unauthorized(w, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUserID, userID)
		ctx = context.WithValue(ctx, ctxKeyRole, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) requireRole(roles ...auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, _ := r.Context().Value(ctxKeyRole).(auth.Role)
			for _, allowed := range roles {
				if role == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}
			s.forbidden(w)
		})
	}
}

func (s *Server) unauthorized(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: msg, Error: msg})
}

func (s *Server) forbidden(w http.ResponseWriter) {
	const msg = "insufficient role"
	writeJSON(w, http.StatusForbidden, envelope{Success: false, Message: msg, Error: msg})
}
