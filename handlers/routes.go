package handlers

import (
	"slices"
	"strings"

	"competition-system/metrics"
	"competition-system/middleware"
	"competition-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"
)

// Handler adapts HTTP requests to service calls.
type Handler struct {
	DB           *gorm.DB
	Auth         *services.AuthService
	Users        *services.UserService
	Competitions *services.CompetitionService
	Participants *services.ParticipantService
	Complexes    *services.ComplexService
	Rosters      *services.RosterService
	Metrics      *metrics.Metrics
}

// NewApp builds the fiber app with its middleware stack and all routes.
func NewApp(h *Handler, corsOrigins []string) *fiber.App {
	var recorder middleware.ErrorRecorder
	var observer middleware.RequestObserver
	if h.Metrics != nil {
		recorder = h.Metrics
		observer = h.Metrics
	}
	onError := middleware.ErrorHandler(recorder)

	app := fiber.New(fiber.Config{
		AppName:      "competition-system",
		ErrorHandler: onError,
		BodyLimit:    1 * 1024 * 1024,
	})

	app.Use(middleware.RequestLogger(observer, onError))
	app.Use(recover.New())
	if len(corsOrigins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins:     strings.Join(corsOrigins, ","),
			AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
			AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID",
			ExposeHeaders:    "Content-Disposition, X-Request-ID",
			AllowCredentials: !slices.Contains(corsOrigins, "*"),
			MaxAge:           86400,
		}))
	}

	SetupRoutes(app, h)
	return app
}

func SetupRoutes(app *fiber.App, h *Handler) {
	// Public routes. Registered before the secured group, whose middleware matches every path.
	app.Post("/token", h.Login)
	app.Get("/healthz", h.Health)
	if h.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(h.Metrics.Handler()))
	}

	secured := app.Group("/", middleware.RequireUser(h.Auth))

	secured.Post("/users", h.CreateUser)
	secured.Get("/users/me", h.Me)

	secured.Post("/competitions", h.CreateCompetition)
	secured.Get("/competitions", h.ListCompetitions)
	secured.Get("/competitions/:id", h.GetCompetition)
	secured.Put("/competitions/:id", h.UpdateCompetition)
	secured.Delete("/competitions/:id", h.DeleteCompetition)
	secured.Get("/competitions/:id/export", h.ExportCompetition)

	secured.Post("/contributions", h.CreateContribution)
	secured.Get("/contributions", h.GetContributions)
	secured.Put("/contributions", h.UpdateContribution)
	secured.Delete("/contributions", h.DeleteContribution)

	secured.Post("/complexes", h.CreateComplex)
	secured.Get("/complexes", h.ListComplexes)
	secured.Get("/complexes/:id", h.GetComplex)
	secured.Put("/complexes/:id", h.UpdateComplex)
	secured.Delete("/complexes/:id", h.DeleteComplex)

	secured.Post("/participants", h.RegisterParticipant)
	secured.Get("/participants", h.ListParticipants)
	secured.Get("/participants/:id", h.GetParticipant)
	secured.Delete("/participants/:id", h.DeleteParticipant)
	secured.Post("/participants/:id/payments", h.RecordPayment)
	secured.Get("/participants/:id/payments", h.ListPayments)

	secured.Post("/qualifying", h.RecordQualifyingVideo)
	secured.Get("/qualifying", h.GetQualifyingVideos)
	secured.Patch("/qualifying/status", h.SetQualifierStatus)

	secured.Post("/results", h.RecordResult)
	secured.Get("/results", h.ListResults)
}
