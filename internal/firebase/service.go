package firebase

import (
	"context"
	"fmt"
	"path/filepath"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"maatram_portal_backend/internal/config"
)

// FirebaseService owns the Firebase Admin SDK app and hands out its clients.
type FirebaseService struct {
	app    *firebase.App
	logger *zap.Logger
}

// NewFirebaseService initializes the Admin SDK from the service account key.
// It returns nil when no configured backend needs Firebase.
func NewFirebaseService(cfg *config.Config, logger *zap.Logger) (*FirebaseService, error) {
	if !cfg.UsesFirebase() {
		logger.Info("No Firebase backend selected, skipping Admin SDK initialization.")
		return nil, nil
	}
	if cfg.FirebaseServiceAccountKeyPath == "" {
		logger.Error("Firebase service account key path is not configured.")
		return nil, fmt.Errorf("firebase service account key path is required")
	}

	cleanPath := filepath.Clean(cfg.FirebaseServiceAccountKeyPath)
	opt := option.WithCredentialsFile(cleanPath)

	var conf *firebase.Config
	if cfg.FirebaseProjectID != "" {
		conf = &firebase.Config{ProjectID: cfg.FirebaseProjectID}
	}
	app, err := firebase.NewApp(context.Background(), conf, opt)
	if err != nil {
		logger.Error("Failed to initialize Firebase Admin SDK app", zap.Error(err), zap.String("keyPath", cleanPath))
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	logger.Info("Firebase Admin SDK initialized successfully.")
	return &FirebaseService{app: app, logger: logger}, nil
}

// Auth returns the Firebase Auth client.
func (s *FirebaseService) Auth(ctx context.Context) (*auth.Client, error) {
	if s == nil {
		return nil, fmt.Errorf("firebase is not configured")
	}
	client, err := s.app.Auth(ctx)
	if err != nil {
		s.logger.Error("Failed to get Firebase Auth client", zap.Error(err))
		return nil, fmt.Errorf("error getting Firebase Auth client: %w", err)
	}
	return client, nil
}

// Firestore returns a Firestore client. The caller closes it.
func (s *FirebaseService) Firestore(ctx context.Context) (*firestore.Client, error) {
	if s == nil {
		return nil, fmt.Errorf("firebase is not configured")
	}
	client, err := s.app.Firestore(ctx)
	if err != nil {
		s.logger.Error("Failed to get Firestore client", zap.Error(err))
		return nil, fmt.Errorf("error getting Firestore client: %w", err)
	}
	return client, nil
}
