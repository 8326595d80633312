package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/grievance-service/internal/api/http/handlers"
	"github.com/spec-kit/grievance-service/internal/auth"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health     *handlers.HealthHandler
	Auth       *handlers.AuthHandler
	Agency     *handlers.AgencyHandler
	Department *handlers.DepartmentHandler
	Government *handlers.GovernmentHandler
	Complaints *handlers.ComplaintsHandler
	Sessions   *auth.SessionMiddleware
	Metrics    *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Metrics.Registry(), promhttp.HandlerOpts{})))
	}

	api := app.Group("/api")
	session := cfg.Sessions.Handle
	migrant := auth.RequireKind(domain.KindMigrant)
	agency := auth.RequireKind(domain.KindAgency)
	department := auth.RequireKind(domain.KindDepartment)
	government := auth.RequireKind(domain.KindGovernment)

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/session", session, auth.RequireKind(), cfg.Auth.Session)
	authGroup.Get("/user", session, migrant, cfg.Auth.Profile)
	authGroup.Post("/update-migrant", session, migrant, cfg.Auth.UpdateMigrant)
	authGroup.Post("/verify-migrant", session, migrant, cfg.Auth.VerifyMigrant)

	agencyGroup := api.Group("/agency")
	agencyGroup.Post("/signup", cfg.Agency.Signup)
	agencyGroup.Post("/login", cfg.Agency.Login)
	agencyGroup.Get("/agencies", cfg.Agency.ListAgencies)
	agencyGroup.Post("/request-verification", session, migrant, cfg.Agency.RequestVerification)
	agencyGroup.Get("/requests", session, agency, cfg.Agency.Requests)
	agencyGroup.Post("/update-verification", session, agency, cfg.Agency.UpdateVerification)
	agencyGroup.Get("/users", session, agency, cfg.Agency.Users)
	agencyGroup.Get("/stats", session, agency, cfg.Agency.Stats)
	agencyGroup.Get("/profile", session, agency, cfg.Agency.Profile)

	deptGroup := api.Group("/department")
	deptGroup.Post("/signup", cfg.Department.Signup)
	deptGroup.Post("/login", cfg.Department.Login)
	deptGroup.Post("/update-status", session, department, cfg.Department.UpdateStatus)
	deptGroup.Get("/complaints", session, department, cfg.Department.Complaints)
	deptGroup.Get("/profile", session, department, cfg.Department.Profile)

	govGroup := api.Group("/government")
	govGroup.Post("/signup", cfg.Government.Signup)
	govGroup.Post("/login", cfg.Government.Login)
	govProtected := govGroup.Group("", session, government)
	govProtected.Get("/profile", cfg.Government.Profile)
	govProtected.Get("/stats", cfg.Government.Stats)
	govProtected.Get("/agencies", cfg.Government.ListAgencies)
	govProtected.Get("/agencies/unverified", cfg.Government.ListUnverified)
	govProtected.Get("/agencies/:id", cfg.Government.GetAgency)
	govProtected.Put("/agencies/:id", cfg.Government.ReviewAgency)
	govProtected.Get("/complaints/unrouted", cfg.Government.UnroutedComplaints)
	govProtected.Put("/complaints/:id/route", cfg.Government.RouteComplaint)

	complaints := api.Group("/complaints")
	complaints.Post("/submit", session, migrant, cfg.Complaints.Submit)
	complaints.Get("/user-complaints", session, migrant, cfg.Complaints.UserComplaints)
	complaints.Get("/department/:departmentName", session, department, cfg.Complaints.DepartmentComplaints)
	complaints.Get("/:id", session, migrant, cfg.Complaints.GetComplaint)
}
