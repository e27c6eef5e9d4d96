/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the on-call calendar server. Handles configuration,
  dependency wiring, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags and environment
  2. Initialize SQLite store
  3. Wire calendar + compensation services and the optional CalDAV mirror
  4. Start the repair sweeper
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: oncall.db)
           Use ":memory:" for an in-memory database
  -sweep   Cron spec for the repair sweep (default: "0 3 * * *")

ENVIRONMENT:
  CALDAV_URL        Remote CalDAV endpoint (mirror disabled when unset)
  CALDAV_USERNAME   Basic auth user
  CALDAV_PASSWORD   Basic auth password
  CALDAV_CALENDAR   Collection path for event objects

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the sweeper, close the database
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/oncall-engine/api"
	"github.com/warp/oncall-engine/calendar"
	"github.com/warp/oncall-engine/compensation"
	"github.com/warp/oncall-engine/store/caldav"
	"github.com/warp/oncall-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "oncall.db", "SQLite database path")
	sweepSpec := flag.String("sweep", api.DefaultSweepSchedule, "Cron spec for the repair sweep")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Wire services
	calService := calendar.NewService(store, store)
	compService := compensation.NewEventService(store, store, compensation.NewService())

	var mirror *caldav.Mirror
	if url := os.Getenv("CALDAV_URL"); url != "" {
		mirror = caldav.NewMirror(url,
			os.Getenv("CALDAV_USERNAME"),
			os.Getenv("CALDAV_PASSWORD"),
			os.Getenv("CALDAV_CALENDAR"))
		log.Printf("CalDAV mirror enabled: %s", url)
	}

	sweeper := api.NewSweeper(calService, *sweepSpec)
	if err := sweeper.Start(); err != nil {
		log.Fatalf("Failed to start sweeper: %v", err)
	}
	defer sweeper.Stop()

	// Create router
	handler := api.NewHandler(calService, compService, sweeper, mirror)
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
