package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"takk_server/config"
	"takk_server/routes"
	"takk_server/services"
	"takk_server/socket"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize DynamoDB client and service
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient(cfg.AWSRegion)
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	// Recent-pair avoidance is optional; without Redis every pair is fair game.
	var recentPairs services.RecentPairsCache = services.NoopRecentPairs{}
	if cfg.RedisAddr != "" {
		recentPairs = services.NewRedisRecentPairs(cfg.RedisAddr, cfg.RecentPairTTL)
		log.Printf("Recent-pair filter enabled (ttl %s)", cfg.RecentPairTTL)
	}

	var reportService *services.ReportService
	if cfg.ReportBucket != "" {
		reportService, err = services.NewReportService(cfg.AWSRegion, cfg.ReportBucket)
		if err != nil {
			log.Fatalf("Failed to initialize report service: %v", err)
		}
	}

	// Initialize Services
	eventService := &services.EventService{}
	userProfileService := &services.UserProfileService{Dynamo: dynamoService}
	matchService := &services.MatchService{Dynamo: dynamoService, Events: eventService}
	chatService := &services.ChatService{Dynamo: dynamoService, Matches: matchService, ChatGrace: cfg.ChatGrace}
	cycleService := &services.CycleService{
		Dynamo:      dynamoService,
		Eligibility: &services.EligibilityService{Dynamo: dynamoService},
		Pairing: &services.PairingService{
			TargetMin: cfg.TargetMinMatches,
			TargetMax: cfg.TargetMaxMatches,
			Recent:    recentPairs,
		},
		Recent:  recentPairs,
		Events:  eventService,
		Reports: reportService,
	}

	// Socket server doubles as the event side-channel transport.
	socketServer := socket.NewSocketServer(chatService)
	eventService.Socket = socketServer

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to Takk")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	// Register routes
	routes.RegisterUserProfileRoutes(r, userProfileService)
	routes.RegisterCycleRoutes(r, cycleService, matchService, cfg.Cadence)
	routes.RegisterMatchRoutes(r, matchService)
	routes.RegisterChatRoutes(r, chatService)
	r.Handle("/socket.io/", socketServer)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, corsHandler))
}
