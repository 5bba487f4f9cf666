package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mateatletas/backend/internal/domain/shared"
	"github.com/mateatletas/backend/internal/infrastructure/auth"
	"github.com/mateatletas/backend/internal/infrastructure/logger"
	"github.com/mateatletas/backend/internal/interfaces/http/handler"
	"github.com/mateatletas/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Deps are the collaborators the HTTP API is built from
type Deps struct {
	Logger         *zap.Logger
	Tokens         middleware.TokenValidator
	TokenBlacklist auth.TokenBlacklist // optional
	Access         middleware.AccessChecker
	Verifier       handler.AccessVerifier
	Reports        handler.ReportBuilder
	DB             handler.Pinger
	Scans          handler.ScanController // optional, set when the daily scan is scheduled
	Snapshots      handler.SnapshotReader // optional, set when scan snapshots are stored

	// Metrics is optional; when set, requests are measured and /metrics is served
	Metrics interface {
		middleware.HTTPRecorder
		middleware.GateRecorder
		Handler() http.Handler
	}

	ServiceName    string
	TracingEnabled bool
	TracerProvider trace.TracerProvider
	TrustedProxies []string
}

// NewEngine builds the gin engine with middleware and every route of the service
func NewEngine(d Deps) (*gin.Engine, error) {
	engine := gin.New()
	if err := engine.SetTrustedProxies(d.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(
		logger.Recovery(d.Logger),
		middleware.Tracing(middleware.TracingConfig{
			ServiceName:    d.ServiceName,
			Enabled:        d.TracingEnabled,
			TracerProvider: d.TracerProvider,
		}),
		logger.GinMiddleware(d.Logger),
		middleware.Secure(),
	)

	var gateMetrics middleware.GateRecorder
	if d.Metrics != nil {
		engine.Use(middleware.Metrics(d.Metrics))
		engine.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
		gateMetrics = d.Metrics
	}

	health := handler.NewHealthHandler(d.DB)
	engine.GET("/health", health.Health)

	authn := middleware.JWTAuth(middleware.JWTMiddlewareConfig{
		Validator:      d.Tokens,
		TokenBlacklist: d.TokenBlacklist,
		Logger:         d.Logger,
	})

	delinquencyHandler := handler.NewDelinquencyHandler(d.Verifier, d.Reports)
	payments := NewDomainGroup("pagos", "/pagos").Use(authn, middleware.SpanEnricher())
	payments.Group("morosidad", "/morosidad").
		GET("/tutor/:tutorId",
			middleware.RequireRoles(shared.RoleAdmin, shared.RoleTutor),
			delinquencyHandler.GetTutorReport).
		GET("/estudiantes",
			middleware.RequireRoles(shared.RoleAdmin),
			delinquencyHandler.ListDelinquentStudents).
		GET("/estudiante/:estudianteId",
			middleware.RequireRoles(shared.RoleAdmin, shared.RoleTutor),
			delinquencyHandler.GetStudentAccess)

	scanHandler := handler.NewScanHandler(d.Scans, d.Snapshots)
	scans := payments.Group("escaneo", "/morosidad/escaneo").Use(middleware.RequireRoles(shared.RoleAdmin))
	if d.Scans != nil {
		scans.GET("", scanHandler.GetStatus).
			POST("", scanHandler.Trigger)
	}
	if d.Snapshots != nil {
		scans.GET("/snapshots/:fecha", scanHandler.GetSnapshot)
	}

	portalHandler := handler.NewPortalHandler()
	portal := NewDomainGroup("portal", "/portal").Use(
		authn,
		middleware.SpanEnricher(),
		middleware.PaymentGate(middleware.PaymentGateConfig{
			Access:  d.Access,
			Metrics: gateMetrics,
			Logger:  d.Logger,
		}),
	)
	portal.GET("/acceso", portalHandler.GetAccess)

	NewRouter(engine).
		Register(payments).
		Register(portal).
		Setup()

	return engine, nil
}
