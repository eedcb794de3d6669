package firebase

import (
	"context"
	"fmt"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/db"
	"google.golang.org/api/option"
)

// App holds the initialized Firebase app and Realtime Database client
type App struct {
	FirebaseApp *firebase.App
	Database    *db.Client
}

// InitFirebase initializes the Firebase application and a Realtime Database
// client pointed at the given database URL.
func InitFirebase(ctx context.Context, credentialsPath, databaseURL string) (*App, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("Firebase credentials path not provided")
	}
	if databaseURL == "" {
		return nil, fmt.Errorf("Firebase database URL not provided")
	}

	// Check if the credentials file exists
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("Firebase credentials file not found at %s", credentialsPath)
	}

	opt := option.WithCredentialsFile(credentialsPath)

	firebaseApp, err := firebase.NewApp(ctx, &firebase.Config{DatabaseURL: databaseURL}, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	database, err := firebaseApp.Database(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase database client: %w", err)
	}

	log.Println("Firebase app and database client initialized successfully!")
	return &App{FirebaseApp: firebaseApp, Database: database}, nil
}
