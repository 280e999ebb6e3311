// Package firebase initializes the Firebase Admin SDK and the clients the server uses.
package firebase

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/luminher/luminher-api/internal/config"
)

// Clients bundles the process-lifetime Firebase clients.
type Clients struct {
	App       *firebase.App
	Auth      *auth.Client
	Firestore *firestore.Client
}

// Close releases the Firestore connection.
func (c *Clients) Close() error {
	if c.Firestore == nil {
		return nil
	}
	return c.Firestore.Close()
}

// credentialsOption picks the credential source: a file path wins over base64 JSON.
func credentialsOption(cfg *config.Config) (option.ClientOption, error) {
	if cfg.GoogleApplicationCredentials != "" {
		return option.WithCredentialsFile(cfg.GoogleApplicationCredentials), nil
	}
	if cfg.FirebaseServiceAccountJSONBase64 != "" {
		jsonKey, err := base64.StdEncoding.DecodeString(cfg.FirebaseServiceAccountJSONBase64)
		if err != nil {
			return nil, errors.New("FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 is not a valid base64 string")
		}
		return option.WithCredentialsJSON(jsonKey), nil
	}
	return nil, errors.New("either GOOGLE_APPLICATION_CREDENTIALS or FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 must be set")
}

// Init creates the Firebase app together with its Auth and Firestore clients.
func Init(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Clients, error) {
	if cfg.FirebaseProjectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID must be set")
	}
	opt, err := credentialsOption(cfg)
	if err != nil {
		return nil, err
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opt)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}

	authClient, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("app.Auth: %w", err)
	}

	fsClient, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("app.Firestore: %w", err)
	}

	logger.Info("Firebase Admin SDK initialized", zap.String("projectId", cfg.FirebaseProjectID))
	return &Clients{App: app, Auth: authClient, Firestore: fsClient}, nil
}
