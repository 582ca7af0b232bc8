//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"maatram_portal_backend/internal/app"
	"maatram_portal_backend/internal/auth"
	"maatram_portal_backend/internal/broadcast"
	"maatram_portal_backend/internal/config"
	"maatram_portal_backend/internal/event"
	"maatram_portal_backend/internal/filestorage"
	"maatram_portal_backend/internal/firebase"
	"maatram_portal_backend/internal/identity"
	"maatram_portal_backend/internal/middleware"
	"maatram_portal_backend/internal/notification"
	platformElasticsearch "maatram_portal_backend/internal/platform/elasticsearch"
	"maatram_portal_backend/internal/profile"
	"maatram_portal_backend/internal/registration"
	"maatram_portal_backend/internal/session"

	"github.com/google/wire"
)

// initializeServer is the main Wire injector.
func initializeServer(ctx context.Context, cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		// Platform Layer
		app.ProvideLogger,
		firebase.NewFirebaseService,
		app.ProvideDocStore,
		platformElasticsearch.NewClient,
		app.ProvideEventIndex,
		app.ProvideSearchIndex,
		filestorage.NewStorage,

		// Identity and sessions
		identity.NewHub,
		app.ProvideIdentityProvider,
		wire.Bind(new(identity.Provider), new(*identity.NotifyingProvider)),
		wire.Bind(new(session.SignOuter), new(*identity.NotifyingProvider)),
		wire.Bind(new(session.Subscriber), new(*identity.Hub)),
		app.ProvideBlocklist,
		app.ProvideSessionVerifier,
		app.ProvideContextStore,
		wire.Bind(new(auth.ContextRevoker), new(*session.ContextStore)),
		wire.Bind(new(registration.CacheResolver), new(*session.ContextStore)),

		// Profiles
		profile.NewDocRepository,
		profile.NewService,
		wire.Bind(new(profile.Service), new(*profile.ServiceImplementation)),
		wire.Bind(new(auth.ProfileCreator), new(*profile.ServiceImplementation)),
		wire.Bind(new(session.ProfileService), new(*profile.ServiceImplementation)),
		wire.Bind(new(registration.ProfileReader), new(*profile.ServiceImplementation)),
		wire.Bind(new(middleware.ProfileLoader), new(*profile.ServiceImplementation)),
		profile.NewHandler,

		// Auth
		auth.NewService,
		wire.Bind(new(auth.Service), new(*auth.ServiceImplementation)),
		auth.NewHandler,

		// Session router
		session.NewRouter,
		session.NewHandler,

		// Events
		event.NewDocRepository,
		event.NewService,
		wire.Bind(new(event.Service), new(*event.ServiceImplementation)),
		wire.Bind(new(registration.EventReader), new(*event.ServiceImplementation)),
		wire.Bind(new(broadcast.EventReader), new(*event.ServiceImplementation)),
		wire.Bind(new(notification.EventLister), new(*event.ServiceImplementation)),
		event.NewHandler,

		// Registrations
		registration.NewDocRepository,
		registration.NewService,
		wire.Bind(new(registration.Service), new(*registration.ServiceImplementation)),
		wire.Bind(new(broadcast.RegistrationSource), new(*registration.ServiceImplementation)),
		registration.NewHandler,

		// Broadcast
		broadcast.NewDocRepository,
		app.ProvideMessageStamper,
		broadcast.NewService,
		broadcast.NewHandler,

		// Notifications
		app.ProvideRegistrationCounter,
		notification.NewService,
		wire.Bind(new(notification.Service), new(*notification.ServiceImplementation)),
		notification.NewHandler,

		// Jobs
		app.ProvideEventIndexSyncJob,

		// Application Layer
		wire.Struct(new(app.Handlers), "*"),
		app.NewServer,
	)
	return nil, nil, nil
}
