package session

import (
	"context"
	"errors"

	"maatram_portal_backend/internal/identity"
	"maatram_portal_backend/internal/profile"

	"go.uber.org/zap"
)

// ProfileService is what the router needs from profiles.
type ProfileService interface {
	Get(ctx context.Context, uid string) (*profile.UserProfile, error)
	Repair(ctx context.Context, id identity.Identity) (*profile.UserProfile, error)
}

// SignOuter ends every session of a uid.
type SignOuter interface {
	SignOut(ctx context.Context, uid string) error
}

// Router runs the routing decision for one page. Each call performs at most
// one profile read, one profile write and one sign-out, and never retries.
type Router struct {
	profiles ProfileService
	auth     SignOuter
	contexts *ContextStore
	logger   *zap.Logger
}

// NewRouter creates a Router. contexts may be nil, in which case routed
// decisions carry no page session.
func NewRouter(profiles ProfileService, auth SignOuter, contexts *ContextStore, logger *zap.Logger) *Router {
	return &Router{profiles: profiles, auth: auth, contexts: contexts, logger: logger.Named("SessionRouter")}
}

// Route decides what page should do for state.
func (r *Router) Route(ctx context.Context, page Page, state identity.SessionState) Decision {
	if !state.SignedIn() {
		d := Decision{State: StateUnauthenticated, Page: page}
		if page == PageLanding {
			d.ShowAuth = true
		} else {
			d.Redirect = PageLanding
		}
		return d
	}

	id := *state.Identity
	log := r.logger.With(zap.String("uid", id.UID), zap.String("page", string(page)))

	p, err := r.profiles.Get(ctx, id.UID)
	switch {
	case err == nil:
		return r.routeByRole(ctx, page, id, p)
	case errors.Is(err, profile.ErrProfileNotFound):
		log.Info("Profile missing; repairing", zap.String("state", string(StateNoProfile)))
		repaired, repairErr := r.profiles.Repair(ctx, id)
		if repairErr != nil {
			log.Error("Profile repair failed", zap.Error(repairErr))
			return r.fail(ctx, page, id, StateProfileRepairFailed, NoticeRepairFailed)
		}
		d := Decision{State: StateRouted, Page: page, Role: repaired.Role, Repaired: true, Profile: repaired}
		if page != PageStudent {
			d.Redirect = PageStudent
		}
		r.attachContext(&d, id, repaired)
		return d
	default:
		log.Error("Loading profile failed", zap.Error(err))
		return r.fail(ctx, page, id, StateProfileRepairFailed, NoticeAuthError)
	}
}

func (r *Router) routeByRole(ctx context.Context, page Page, id identity.Identity, p *profile.UserProfile) Decision {
	d := Decision{State: StateRouted, Page: page, Role: p.Role, Profile: p}

	if page == PageLanding {
		switch p.Role {
		case profile.RoleOrganizer:
			d.Redirect = PageOrganizer
		case profile.RoleAnchor:
			d.Notice = NoticeAnchorComingSoon
			d.SignedOut = r.signOut(ctx, id)
			d.Profile = nil
			return d
		case profile.RoleSuperadmin:
			d.Notice = NoticeAdminComingSoon
			d.SignedOut = r.signOut(ctx, id)
			d.Profile = nil
			return d
		default:
			d.Redirect = PageStudent
		}
		r.attachContext(&d, id, p)
		return d
	}

	if !page.allows(p.Role) {
		r.logger.Info("Role not allowed on page", zap.String("uid", id.UID), zap.String("role", string(p.Role)), zap.String("page", string(page)))
		return Decision{
			State:  StateRoleMismatch,
			Page:   page,
			Role:   p.Role,
			Notice: "Not authorized for " + page.portalName() + " portal",
		}
	}
	r.attachContext(&d, id, p)
	return d
}

func (r *Router) fail(ctx context.Context, page Page, id identity.Identity, state State, notice string) Decision {
	return Decision{
		State:     state,
		Page:      page,
		Notice:    notice,
		Fatal:     true,
		SignedOut: r.signOut(ctx, id),
	}
}

// signOut reports whether a sign-out was issued. A failing sign-out is only logged.
func (r *Router) signOut(ctx context.Context, id identity.Identity) bool {
	if err := r.auth.SignOut(ctx, id.UID); err != nil {
		r.logger.Warn("Sign-out failed", zap.String("uid", id.UID), zap.Error(err))
	}
	if r.contexts != nil {
		r.contexts.DeleteForUID(id.UID)
	}
	return true
}

func (r *Router) attachContext(d *Decision, id identity.Identity, p *profile.UserProfile) {
	if r.contexts == nil {
		return
	}
	c := r.contexts.Create(d.Destination(), id, p)
	d.PageSession = c.ID
}

// Run routes every state received on states and hands each decision to emit,
// re-evaluating from scratch each time. It returns when states is closed or
// ctx is done.
func (r *Router) Run(ctx context.Context, page Page, states <-chan identity.SessionState, emit func(Decision)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case state, ok := <-states:
			if !ok {
				return nil
			}
			emit(r.Route(ctx, page, state))
		}
	}
}
