package users

import "time"

// User is a platform account: a recruiter, admin, or applicant.
type User struct {
	ID        string    `json:"id"`
	OrgID     string    `json:"orgId,omitempty"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
