/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the payout service. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (optional) and parse command-line flags
  2. Open the SQLite employee directory
  3. Build the Google Calendar client if credentials are configured
  4. Create the API handler and router
  5. Start the server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite directory path (default: payout.db)
           Use ":memory:" for an in-memory directory

ENVIRONMENT (via .env or the process environment):
  TZ                    IANA zone for event times (default America/Chicago)
  OPEN_TIME             business-day open, HH:MM (default 08:00)
  SWITCH_TIME           opening/closing boundary, HH:MM (default 14:00)
  CLOSE_TIME            business-day close, HH:MM (default 21:00)
  UNALLOCATED_POLICY    drop | report | split (default drop)
  CALENDAR_ID           Google calendar to read (default primary)
  GOOGLE_CLIENT_ID      OAuth2 client (calendar disabled when unset)
  GOOGLE_CLIENT_SECRET  OAuth2 client secret
  GOOGLE_TOKEN_PATH     stored token file (default token.json)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the directory database
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Directory implementation
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

	"github.com/joho/godotenv"

	"github.com/brewshift/payout/api"
	"github.com/brewshift/payout/gcal"
	"github.com/brewshift/payout/payroll"
	"github.com/brewshift/payout/store/sqlite"
)

func main() {
	// .env is optional; the process environment always wins.
	_ = godotenv.Load()

	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "payout.db", "SQLite directory path")
	flag.Parse()

	dir, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open employee directory: %v", err)
	}
	defer dir.Close()

	cfg := api.Config{
		Timezone:    envOr("TZ", "America/Chicago"),
		OpenTime:    envOr("OPEN_TIME", "08:00"),
		SwitchTime:  envOr("SWITCH_TIME", "14:00"),
		CloseTime:   envOr("CLOSE_TIME", "21:00"),
		Unallocated: unallocatedPolicy(os.Getenv("UNALLOCATED_POLICY")),
	}

	events := calendarSource()

	handler, err := api.NewHandler(dir, events, cfg)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

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

// calendarSource builds the Google Calendar client, or returns nil when no
// credentials are configured (payout requests must then carry events inline).
func calendarSource() api.EventSource {
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	if clientID == "" {
		log.Println("GOOGLE_CLIENT_ID not set; calendar fetch disabled")
		return nil
	}

	client, err := gcal.NewClient(context.Background(), gcal.Config{
		ClientID:     clientID,
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		TokenPath:    envOr("GOOGLE_TOKEN_PATH", "token.json"),
		CalendarID:   envOr("CALENDAR_ID", "primary"),
	})
	if err != nil {
		log.Printf("Warning: calendar client unavailable: %v", err)
		return nil
	}
	return client
}

func unallocatedPolicy(s string) payroll.UnallocatedPolicy {
	switch s {
	case "report":
		return payroll.UnallocatedReport
	case "split":
		return payroll.UnallocatedSplitEven
	default:
		return payroll.UnallocatedDrop
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
