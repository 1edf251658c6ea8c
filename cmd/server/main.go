package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"gympoint/internal/api"
	"gympoint/internal/auth"
	"gympoint/internal/repository"
	"gympoint/internal/service"
)

func main() {
	godotenv.Load()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	reservationRepo := repository.NewReservationRepository(db)
	checkInRepo := repository.NewCheckInRepository(db)
	directoryRepo := repository.NewDirectoryRepository(db)
	jobRepo := repository.NewJobRepository(db)
	staffAuthRepo := repository.NewStaffAuthRepository(db)

	notifier := service.NewNotifyService()
	gate := newCooldownGate()

	reservationSvc := service.NewReservationService(reservationRepo, directoryRepo, notifier)
	checkInSvc := service.NewCheckInService(checkInRepo, directoryRepo, gate, notifier)
	occupancySvc := service.NewOccupancyService(checkInRepo)
	jobSvc := service.NewJobService(jobRepo, directoryRepo, notifier)
	staffAuthSvc := service.NewStaffAuthService(staffAuthRepo)

	reservationHandler := api.NewUserReservationHandler(reservationSvc)
	checkInHandler := api.NewCheckInHandler(checkInSvc)
	adminHandler := api.NewAdminHandler(reservationSvc, occupancySvc, directoryRepo)
	staffAuthHandler := api.NewStaffAuthHandler(staffAuthSvc)

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/reservations", reservationHandler.CreateReservation).Methods("POST")
	r.HandleFunc("/api/reservations/{code}", reservationHandler.GetReservation).Methods("GET")
	r.HandleFunc("/api/reservations/{code}", reservationHandler.CancelReservation).Methods("DELETE")
	r.HandleFunc("/api/reservations/{code}/attendance", reservationHandler.ConfirmAttendance).Methods("POST")
	r.HandleFunc("/api/routine-days/validate", reservationHandler.ValidateRoutineDay).Methods("POST")
	r.HandleFunc("/api/gyms/{id}/check-ins", checkInHandler.CheckIn).Methods("POST")
	r.HandleFunc("/api/gyms/{id}/check-ins", checkInHandler.CheckOut).Methods("DELETE")
	r.HandleFunc("/admin/login", staffAuthHandler.Login).Methods("POST")

	// Staff endpoints (protected)
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.StaffAuthMiddleware)
	admin.HandleFunc("/staff", staffAuthHandler.CreateStaff).Methods("POST")
	admin.HandleFunc("/reservations", adminHandler.ListReservations).Methods("GET")
	admin.HandleFunc("/gyms/{id}/capacity", adminHandler.UpdateGymCapacity).Methods("PUT")
	admin.HandleFunc("/gyms/{id}/occupancy", adminHandler.OccupancyReport).Methods("GET")

	// One sweep at a time: a tick that fires while the previous sweep is
	// still running is skipped, never run concurrently.
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))
	sweepCtx, cancelSweeps := context.WithCancel(context.Background())
	if _, err := c.AddFunc("@every 5m", func() {
		if err := jobSvc.SweepMissedReservations(sweepCtx); err != nil {
			log.Printf("Sweep: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to register sweep job: %v", err)
	}
	c.Start()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr: ":" + port,
		Handler: handlers.CORS(
			handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
			handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE"}),
		)(handlers.CombinedLoggingHandler(os.Stdout, r)),
	}

	go func() {
		log.Printf("Server running on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down...")
	<-c.Stop().Done()
	cancelSweeps()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
}

// newCooldownGate picks the shared Redis gate when REDIS_ADDR is set, the
// process-local gate otherwise. Multi-instance deployments need Redis or the
// cooldown resets per instance.
func newCooldownGate() service.CooldownGate {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return service.NewMemoryCooldownGate(service.DefaultCooldownWindow)
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	return service.NewRedisCooldownGate(client, service.DefaultCooldownWindow)
}
