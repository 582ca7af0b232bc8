package app

import (
	"context"
	"fmt"
	"log"

	"maatram_portal_backend/internal/auth"
	"maatram_portal_backend/internal/broadcast"
	"maatram_portal_backend/internal/config"
	"maatram_portal_backend/internal/docstore"
	"maatram_portal_backend/internal/event"
	"maatram_portal_backend/internal/firebase"
	"maatram_portal_backend/internal/identity"
	"maatram_portal_backend/internal/jobs"
	"maatram_portal_backend/internal/middleware"
	"maatram_portal_backend/internal/notification"
	"maatram_portal_backend/internal/platform/database"
	platformElasticsearch "maatram_portal_backend/internal/platform/elasticsearch"
	"maatram_portal_backend/internal/platform/logger"
	"maatram_portal_backend/internal/registration"
	"maatram_portal_backend/internal/session"

	"go.uber.org/zap"
)

// ProvideLogger builds the application logger and flushes it on cleanup.
func ProvideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	l, err := logger.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing logger: %w", err)
	}
	cleanup := func() {
		if err := l.Sync(); err != nil {
			log.Printf("ERROR: Failed to sync logger during cleanup: %v", err)
		}
	}
	return l, cleanup, nil
}

// ProvideDocStore opens the backend selected by DOCSTORE_BACKEND.
func ProvideDocStore(ctx context.Context, cfg *config.Config, fb *firebase.FirebaseService, logger *zap.Logger) (docstore.Store, func(), error) {
	var (
		store docstore.Store
		err   error
	)
	switch cfg.DocStoreBackend {
	case config.DocStoreMemory:
		logger.Warn("Using in-memory document store. Data is lost on restart.")
		store = docstore.NewMemoryStore()
	case config.DocStoreGORM:
		db, dbErr := database.NewGORM(cfg)
		if dbErr != nil {
			return nil, nil, dbErr
		}
		store, err = docstore.NewGormStore(db)
	default:
		client, fsErr := fb.Firestore(ctx)
		if fsErr != nil {
			return nil, nil, fsErr
		}
		store = docstore.NewFirestoreStore(client)
	}
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Document store ready", zap.String("backend", cfg.DocStoreBackend))
	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Error("Closing document store failed", zap.Error(err))
		}
	}
	return store, cleanup, nil
}

// ProvideIdentityProvider builds the provider selected by IDENTITY_BACKEND and
// wraps it so session changes reach hub.
func ProvideIdentityProvider(ctx context.Context, cfg *config.Config, fb *firebase.FirebaseService, hub *identity.Hub, logger *zap.Logger) (*identity.NotifyingProvider, error) {
	var p identity.Provider
	switch cfg.IdentityBackend {
	case config.IdentityMemory:
		logger.Warn("Using in-memory identity provider. Accounts are lost on restart.")
		p = identity.NewMemoryProvider(logger.Named("MemoryIdentity"))
	default:
		client, err := fb.Auth(ctx)
		if err != nil {
			return nil, err
		}
		fp, err := identity.NewFirebaseProvider(ctx, client, cfg.FirebaseWebAPIKey, logger.Named("FirebaseIdentity"))
		if err != nil {
			return nil, err
		}
		p = fp
	}
	return identity.NewNotifyingProvider(p, hub), nil
}

// ProvideBlocklist keeps signed-out tokens for one ID-token lifetime.
func ProvideBlocklist() *auth.TokenBlocklist {
	return auth.NewTokenBlocklist(auth.BlocklistConfig{})
}

// ProvideSessionVerifier checks the logout blocklist before the provider.
func ProvideSessionVerifier(p *identity.NotifyingProvider, blocklist *auth.TokenBlocklist) middleware.SessionVerifier {
	return auth.NewBlocklistVerifier(p, blocklist)
}

// ProvideContextStore holds page-session contexts for SESSION_CONTEXT_TTL_MINUTES.
func ProvideContextStore(cfg *config.Config) *session.ContextStore {
	return session.NewContextStore(cfg.SessionContextTTL)
}

// ProvideEventIndex returns nil when search is disabled.
func ProvideEventIndex(client *platformElasticsearch.ESClientWrapper, logger *zap.Logger) *platformElasticsearch.EventIndex {
	return platformElasticsearch.NewEventIndex(client, logger)
}

// ProvideSearchIndex keeps a disabled index as a nil interface.
func ProvideSearchIndex(idx *platformElasticsearch.EventIndex) event.SearchIndex {
	if idx == nil {
		return nil
	}
	return idx
}

// ProvideMessageStamper exposes the registration repository to broadcast.
func ProvideMessageStamper(repo registration.Repository) broadcast.Stamper {
	return repo
}

// ProvideRegistrationCounter exposes the registration repository to notifications.
func ProvideRegistrationCounter(repo registration.Repository) notification.RegistrationCounter {
	return repo
}

// ProvideEventIndexSyncJob wires the resync job; without search it only logs at start.
func ProvideEventIndexSyncJob(events *event.ServiceImplementation, idx *platformElasticsearch.EventIndex, logger *zap.Logger, cfg *config.Config) *jobs.EventIndexSyncJob {
	var ensurer jobs.IndexEnsurer
	if idx != nil {
		ensurer = idx
	}
	return jobs.NewEventIndexSyncJob(events, ensurer, logger, cfg)
}
