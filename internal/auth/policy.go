// Package auth covers caller identity: the session cookie carrying the
// caller's own OAuth tokens, verified userinfo lookup, and the admin
// allow-list policy.
package auth

import "strings"

// Roles assigned to authenticated callers.
const (
	RoleAdmin   = "admin"
	RolePatient = "patient"
)

// User is the verified identity of the caller.
type User struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture,omitempty"`
	Role    string `json:"role"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Policy decides who is an admin and which appointments a caller may see.
type Policy struct {
	admins map[string]struct{}
}

// NewPolicy builds the policy from the fixed admin allow-list.
func NewPolicy(adminEmails []string) *Policy {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			admins[email] = struct{}{}
		}
	}
	return &Policy{admins: admins}
}

// IsAdmin matches the verified email against the allow-list, case-insensitively.
func (p *Policy) IsAdmin(email string) bool {
	_, ok := p.admins[strings.ToLower(email)]
	return ok
}

// RoleFor returns the role implied by an email.
func (p *Policy) RoleFor(email string) string {
	if p.IsAdmin(email) {
		return RoleAdmin
	}
	return RolePatient
}

// CanView reports whether user may see an appointment with the given booker
// and patient emails. Admins see everything; patients only their own.
func (p *Policy) CanView(user User, bookedByEmail, patientEmail string) bool {
	if user.IsAdmin() {
		return true
	}
	caller := strings.ToLower(user.Email)
	if bookedByEmail != "" && strings.ToLower(bookedByEmail) == caller {
		return true
	}
	return strings.ToLower(patientEmail) == caller
}

// AdminEmails returns the configured allow-list (lower-cased), for status
// endpoints.
func (p *Policy) AdminEmails() []string {
	out := make([]string, 0, len(p.admins))
	for email := range p.admins {
		out = append(out, email)
	}
	return out
}
