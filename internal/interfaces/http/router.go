package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/medsalud/almacen-api/internal/application/auth"
	"github.com/medsalud/almacen-api/internal/application/salidas"
	"github.com/medsalud/almacen-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	SalidasUC *salidas.UseCase
	AuthUC    *auth.UseCase
	JWTSecret string
	Log       *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.AuthUC, deps.Log)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Salidas: lecturas para cualquier rol autenticado; mutaciones solo
	// admin y almacenista. El chequeo fino de folio_edit vive en el caso
	// de uso, delegado al colaborador de autorización.
	salidasGroup := protected.Group("/salidas")
	salidaHandler := NewSalidaHandler(deps.SalidasUC, deps.Log)
	salidasGroup.Get("/", salidaHandler.List)
	salidasGroup.Get("/:id", salidaHandler.Get)
	salidasGroup.Get("/:id/pdf", salidaHandler.PDF)
	salidasGroup.Post("/", RequireRole("admin", "almacenista"), salidaHandler.Create)
	salidasGroup.Put("/:id", RequireRole("admin", "almacenista"), salidaHandler.Replace)
	salidasGroup.Delete("/:id", RequireRole("admin", "almacenista"), salidaHandler.Delete)
}
