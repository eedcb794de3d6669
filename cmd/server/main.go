package main

import (
	"context"
	"log"

	"github.com/labstack/echo/v4"
	"github.com/openldn/inbox/internal/repositories"
	"github.com/openldn/inbox/internal/router"
	"github.com/openldn/inbox/pkg/config"
	"github.com/openldn/inbox/pkg/firebase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize the selected store backend
	var messageRepo repositories.MessageRepository
	switch cfg.StoreBackend {
	case config.BackendMongo:
		client, err := config.InitMongo(cfg.MongoURI)
		if err != nil {
			log.Fatalf("Failed to initialize MongoDB: %v", err)
		}
		defer config.CloseMongo(client)
		messageRepo = repositories.NewMongoMessageRepository(client.Database(cfg.MongoDB), cfg.Collection)
	case config.BackendFirebase:
		firebaseApp, err := firebase.InitFirebase(context.Background(), cfg.FirebaseCredentialsPath, cfg.FirebaseDatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		messageRepo = repositories.NewFirebaseMessageRepository(firebaseApp.Database, cfg.Collection)
	}

	// Create Echo instance
	e := echo.New()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, messageRepo, cfg)

	log.Printf("ID_ROOT: %s", cfg.IDRoot)

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
