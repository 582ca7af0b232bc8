package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"maatram_portal_backend/internal/identity"

	"go.uber.org/zap"
)

// ErrNameRequired is returned when a completion form has no name.
var ErrNameRequired = errors.New("name is required")

// Edit holds the dashboard profile edit fields.
type Edit struct {
	Name    string `json:"name"`
	DOB     string `json:"dob"`
	Phone   string `json:"phone"`
	College string `json:"college"`
	Year    string `json:"year"`
}

// Completion holds the profile completion form. Achievements is a comma list
// and ContributionDetails has one entry per line.
type Completion struct {
	Name                string `json:"name"`
	Role                string `json:"role"`
	Phone               string `json:"phone"`
	RegisterNo          string `json:"registerNo"`
	Achievements        string `json:"achievements"`
	ContributionDetails string `json:"contributionDetails"`
}

// Service defines profile operations.
type Service interface {
	Get(ctx context.Context, uid string) (*UserProfile, error)
	// Repair creates the minimal student profile for an identity that has none.
	// It performs exactly one write and no reads.
	Repair(ctx context.Context, id identity.Identity) (*UserProfile, error)
	CreateOnSignUp(ctx context.Context, id identity.Identity, name string, role Role, registerNo string) (*UserProfile, error)
	UpdateProfile(ctx context.Context, uid string, edit Edit) (*UserProfile, error)
	CompleteProfile(ctx context.Context, id identity.Identity, c Completion) (*UserProfile, error)
	SkipCompletion(ctx context.Context, id identity.Identity) (*UserProfile, error)
	SetPhoto(ctx context.Context, uid, url string) (*UserProfile, error)
}

// ServiceImplementation implements Service.
type ServiceImplementation struct {
	repo   Repository
	logger *zap.Logger
}

var _ Service = (*ServiceImplementation)(nil)

// NewService creates a profile service.
func NewService(repo Repository, logger *zap.Logger) *ServiceImplementation {
	return &ServiceImplementation{repo: repo, logger: logger.Named("ProfileService")}
}

func (s *ServiceImplementation) Get(ctx context.Context, uid string) (*UserProfile, error) {
	return s.repo.FindByUID(ctx, uid)
}

func (s *ServiceImplementation) Repair(ctx context.Context, id identity.Identity) (*UserProfile, error) {
	p := &UserProfile{
		UID:                 id.UID,
		Name:                id.DisplayName,
		Email:               id.Email,
		Role:                RoleStudent,
		Achievements:        []string{},
		ContributionDetails: []string{},
	}
	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error("Profile repair write failed", zap.String("uid", id.UID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Missing profile repaired", zap.String("uid", id.UID))
	return p, nil
}

func (s *ServiceImplementation) CreateOnSignUp(ctx context.Context, id identity.Identity, name string, role Role, registerNo string) (*UserProfile, error) {
	if !role.SelfService() {
		role = RoleStudent
	}
	p := &UserProfile{
		UID:        id.UID,
		Name:       strings.TrimSpace(name),
		Email:      id.Email,
		Role:       role,
		RegisterNo: strings.TrimSpace(registerNo),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error("Sign-up profile write failed", zap.String("uid", id.UID), zap.Error(err))
		return nil, err
	}
	return s.repo.FindByUID(ctx, id.UID)
}

func (s *ServiceImplementation) UpdateProfile(ctx context.Context, uid string, edit Edit) (*UserProfile, error) {
	fields := map[string]interface{}{
		"name":    strings.TrimSpace(edit.Name),
		"dob":     strings.TrimSpace(edit.DOB),
		"phone":   strings.TrimSpace(edit.Phone),
		"college": strings.TrimSpace(edit.College),
		"year":    strings.TrimSpace(edit.Year),
	}
	if err := s.repo.Update(ctx, uid, fields); err != nil {
		s.logger.Warn("Profile update failed", zap.String("uid", uid), zap.Error(err))
		return nil, err
	}
	return s.repo.FindByUID(ctx, uid)
}

func (s *ServiceImplementation) CompleteProfile(ctx context.Context, id identity.Identity, c Completion) (*UserProfile, error) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	details := splitLines(c.ContributionDetails)

	existing, err := s.repo.FindByUID(ctx, id.UID)
	if err != nil && !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}

	role := ParseRole(c.Role)
	if !role.SelfService() {
		role = RoleStudent
	}
	if existing != nil && !existing.Role.SelfService() {
		role = existing.Role
	}

	if existing == nil {
		p := &UserProfile{
			UID:                 id.UID,
			Name:                name,
			Email:               id.Email,
			Role:                role,
			Phone:               strings.TrimSpace(c.Phone),
			RegisterNo:          strings.TrimSpace(c.RegisterNo),
			Achievements:        splitComma(c.Achievements),
			Contributions:       len(details),
			ContributionDetails: details,
		}
		if err := s.repo.Create(ctx, p); err != nil {
			return nil, err
		}
	} else {
		fields := map[string]interface{}{
			"uid":                 id.UID,
			"name":                name,
			"role":                string(role),
			"phone":               strings.TrimSpace(c.Phone),
			"registerNo":          strings.TrimSpace(c.RegisterNo),
			"achievements":        splitComma(c.Achievements),
			"contributions":       len(details),
			"contributionDetails": details,
		}
		if err := s.repo.Update(ctx, id.UID, fields); err != nil {
			return nil, err
		}
	}
	s.logger.Info("Profile completed", zap.String("uid", id.UID), zap.String("role", string(role)))
	return s.repo.FindByUID(ctx, id.UID)
}

func (s *ServiceImplementation) SkipCompletion(ctx context.Context, id identity.Identity) (*UserProfile, error) {
	existing, err := s.repo.FindByUID(ctx, id.UID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}
	if err := s.repo.Create(ctx, &UserProfile{UID: id.UID, Role: RoleStudent}); err != nil {
		return nil, fmt.Errorf("creating minimal profile: %w", err)
	}
	return s.repo.FindByUID(ctx, id.UID)
}

func (s *ServiceImplementation) SetPhoto(ctx context.Context, uid, url string) (*UserProfile, error) {
	if err := s.repo.Update(ctx, uid, map[string]interface{}{"photoUrl": url}); err != nil {
		return nil, err
	}
	return s.repo.FindByUID(ctx, uid)
}

func splitComma(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func splitLines(s string) []string {
	out := []string{}
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
