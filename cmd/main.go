package main

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/inmoportal/api-portal/internal/auth"
	"github.com/inmoportal/api-portal/internal/documentacion"
	"github.com/inmoportal/api-portal/internal/logger"
	"github.com/inmoportal/api-portal/internal/mantenimiento"
	"github.com/inmoportal/api-portal/internal/notificacion"
	"github.com/inmoportal/api-portal/internal/pago"
	"github.com/inmoportal/api-portal/internal/propiedad"
	"github.com/inmoportal/api-portal/internal/usuario"
	"github.com/inmoportal/api-portal/internal/utils/db"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	database, err := db.GetDB()
	if err != nil {
		log.Fatal("error al conectar a la base", zap.Error(err))
	}

	// AutoMigrate para todos los modelos
	if err := database.AutoMigrate(
		&usuario.Usuario{},
		&propiedad.Propiedad{},
		&pago.Pago{},
		&mantenimiento.Mantenimiento{},
		&documentacion.Documentacion{},
		&notificacion.Notificacion{},
	); err != nil {
		log.Fatal("error en AutoMigrate", zap.Error(err))
	}

	// Handlers
	notificador := notificacion.NewService(database, log)
	usuarioHandler := usuario.NewHandler(database)
	propiedadHandler := propiedad.NewHandler(database)
	pagoHandler := pago.NewHandler(database, notificador)
	mantenimientoHandler := mantenimiento.NewHandler(database, notificador)
	documentacionHandler := documentacion.NewHandler(database, notificador)
	notificacionHandler := notificacion.NewHandler(database)

	// Router
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Rutas públicas de autenticación
	r.HandleFunc("/api/auth/register", usuarioHandler.Registrar).Methods("POST")
	r.HandleFunc("/api/auth/login", usuarioHandler.Login).Methods("POST")

	// Rutas autenticadas
	api := r.PathPrefix("/api").Subrouter()
	api.Use(auth.MiddlewareAutenticacion(database))

	// Perfil
	api.HandleFunc("/profile", usuarioHandler.Perfil).Methods("GET")
	api.HandleFunc("/profile", usuarioHandler.ActualizarPerfil).Methods("PUT")

	// Administración de usuarios
	api.Handle("/admin/usuarios", auth.RequireAdmin(http.HandlerFunc(usuarioHandler.Listar))).Methods("GET")
	api.Handle("/admin/usuarios/{id}/aprobar", auth.RequireAdmin(http.HandlerFunc(usuarioHandler.Aprobar))).Methods("PUT")
	api.Handle("/admin/usuarios/{id}/rechazar", auth.RequireAdmin(http.HandlerFunc(usuarioHandler.Rechazar))).Methods("PUT")

	// Propiedades
	api.Handle("/properties", auth.RequireAdmin(http.HandlerFunc(propiedadHandler.Crear))).Methods("POST")
	api.HandleFunc("/properties", propiedadHandler.Listar).Methods("GET")
	api.HandleFunc("/properties/{id}", propiedadHandler.BuscarPorID).Methods("GET")
	api.Handle("/properties/{id}", auth.RequireAdmin(http.HandlerFunc(propiedadHandler.Actualizar))).Methods("PUT")
	api.Handle("/properties/{id}", auth.RequireAdmin(http.HandlerFunc(propiedadHandler.Eliminar))).Methods("DELETE")

	// Pagos
	api.HandleFunc("/payments", pagoHandler.Listar).Methods("GET")
	api.HandleFunc("/payments/stats", pagoHandler.Estadisticas).Methods("GET")
	api.HandleFunc("/payments/upcoming", pagoHandler.Proximos).Methods("GET")
	api.HandleFunc("/payments", pagoHandler.Crear).Methods("POST")
	api.HandleFunc("/payments/{id}", pagoHandler.BuscarPorID).Methods("GET")
	api.HandleFunc("/payments/{id}", pagoHandler.Actualizar).Methods("PUT")
	api.HandleFunc("/payments/{id}", pagoHandler.Eliminar).Methods("DELETE")
	api.HandleFunc("/payments/{id}/receipt", pagoHandler.SubirComprobante).Methods("POST")

	// Mantenimientos
	api.HandleFunc("/maintenance", mantenimientoHandler.Listar).Methods("GET")
	api.HandleFunc("/maintenance", mantenimientoHandler.Crear).Methods("POST")
	api.HandleFunc("/maintenance/{id}", mantenimientoHandler.BuscarPorID).Methods("GET")
	api.HandleFunc("/maintenance/{id}", mantenimientoHandler.Actualizar).Methods("PUT")
	api.HandleFunc("/maintenance/{id}", mantenimientoHandler.Eliminar).Methods("DELETE")

	// Documentación
	api.HandleFunc("/documentation", documentacionHandler.Crear).Methods("POST")
	api.HandleFunc("/documentation", documentacionHandler.Listar).Methods("GET")
	api.HandleFunc("/documentation/{id}", documentacionHandler.Eliminar).Methods("DELETE")

	// Notificaciones
	api.HandleFunc("/notifications", notificacionHandler.Listar).Methods("GET")
	api.HandleFunc("/notifications/unread-count", notificacionHandler.ContarNoLeidas).Methods("GET")
	api.HandleFunc("/notifications/read-all", notificacionHandler.MarcarTodasLeidas).Methods("PUT")
	api.HandleFunc("/notifications/{id}/read", notificacionHandler.MarcarLeida).Methods("PUT")

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000", "http://127.0.0.1:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Info("servidor escuchando", zap.String("puerto", port))
	if err := http.ListenAndServe(":"+port, c.Handler(r)); err != nil {
		log.Fatal("servidor detenido", zap.Error(err))
	}
}
