package profile

import (
	"strings"
	"time"

	"maatram_portal_backend/internal/docstore"
)

// Role is a portal role stored on the user profile.
type Role string

const (
	RoleStudent    Role = "student"
	RoleOrganizer  Role = "organizer"
	RoleAnchor     Role = "anchor"
	RoleSuperadmin Role = "superadmin"
)

// ParseRole maps a stored role string to a Role. Unknown or empty values are student.
func ParseRole(s string) Role {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleOrganizer:
		return RoleOrganizer
	case RoleAnchor:
		return RoleAnchor
	case RoleSuperadmin:
		return RoleSuperadmin
	default:
		return RoleStudent
	}
}

// SelfService reports whether users may pick this role themselves.
func (r Role) SelfService() bool {
	return r == RoleStudent || r == RoleOrganizer
}

// UserProfile is the users/{uid} document.
type UserProfile struct {
	UID                 string    `firestore:"uid" json:"uid"`
	Name                string    `firestore:"name" json:"name"`
	Email               string    `firestore:"email" json:"email"`
	Role                Role      `firestore:"role" json:"role"`
	RegisterNo          string    `firestore:"registerNo" json:"registerNo,omitempty"`
	Phone               string    `firestore:"phone" json:"phone,omitempty"`
	College             string    `firestore:"college" json:"college,omitempty"`
	Year                string    `firestore:"year" json:"year,omitempty"`
	DOB                 string    `firestore:"dob" json:"dob,omitempty"`
	PhotoURL            string    `firestore:"photoUrl" json:"photoUrl,omitempty"`
	Achievements        []string  `firestore:"achievements" json:"achievements"`
	Contributions       int       `firestore:"contributions" json:"contributions"`
	ContributionDetails []string  `firestore:"contributionDetails" json:"contributionDetails"`
	JoinedDate          time.Time `firestore:"joinedDate" json:"joinedDate"`
}

// FromDocument decodes a users document. Missing fields take their zero
// value, lists default to empty and the role defaults to student.
func FromDocument(doc docstore.Document) *UserProfile {
	p := &UserProfile{
		UID:                 doc.String("uid"),
		Name:                doc.String("name"),
		Email:               doc.String("email"),
		Role:                ParseRole(doc.String("role")),
		RegisterNo:          doc.String("registerNo"),
		Phone:               doc.String("phone"),
		College:             doc.String("college"),
		Year:                doc.String("year"),
		DOB:                 doc.String("dob"),
		PhotoURL:            doc.String("photoUrl"),
		Achievements:        doc.Strings("achievements"),
		Contributions:       doc.Int("contributions"),
		ContributionDetails: doc.Strings("contributionDetails"),
		JoinedDate:          doc.Time("joinedDate"),
	}
	if p.UID == "" {
		p.UID = doc.ID
	}
	if p.Achievements == nil {
		p.Achievements = []string{}
	}
	if p.ContributionDetails == nil {
		p.ContributionDetails = []string{}
	}
	return p
}

// Fields encodes the full profile for a whole-document write. A zero
// JoinedDate is stamped by the store.
func (p *UserProfile) Fields() map[string]interface{} {
	fields := map[string]interface{}{
		"uid":                 p.UID,
		"name":                p.Name,
		"email":               p.Email,
		"role":                string(p.Role),
		"registerNo":          p.RegisterNo,
		"phone":               p.Phone,
		"college":             p.College,
		"year":                p.Year,
		"dob":                 p.DOB,
		"photoUrl":            p.PhotoURL,
		"achievements":        nonNil(p.Achievements),
		"contributions":       p.Contributions,
		"contributionDetails": nonNil(p.ContributionDetails),
	}
	if p.JoinedDate.IsZero() {
		fields["joinedDate"] = docstore.ServerTimestamp
	} else {
		fields["joinedDate"] = p.JoinedDate
	}
	return fields
}

// Initials returns up to two upper-case initials of name.
func Initials(name string) string {
	var out []rune
	for _, part := range strings.Fields(name) {
		for _, r := range part {
			out = append(out, r)
			break
		}
		if len(out) == 2 {
			break
		}
	}
	return strings.ToUpper(string(out))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Dashboard names the page a user of this role lands on after sign-up or
// profile completion. Only organizers get the organizer dashboard.
func (r Role) Dashboard() string {
	if r == RoleOrganizer {
		return "organizer"
	}
	return "student"
}
