// Package authz decides whether an actor may perform an operation on a
// resource. Decisions are pure: callers translate a deny into their own
// not-found or access-denied result.
package authz

// Role is a closed set of platform roles.
type Role string

const (
	RoleOrgAdmin  Role = "org_admin"
	RoleSeniorHR  Role = "senior_hr"
	RoleRecruiter Role = "recruiter"
	RoleApplicant Role = "applicant"
)

// ParseRole maps a raw claim value to a known Role, defaulting to applicant.
func ParseRole(raw string) Role {
	switch Role(raw) {
	case RoleOrgAdmin, RoleSeniorHR, RoleRecruiter, RoleApplicant:
		return Role(raw)
	default:
		return RoleApplicant
	}
}

// Actor is the pre-validated identity attached to every mutating call.
type Actor struct {
	UserID string
	OrgID  string
	Role   Role
}

// Decision is the result of a capability check. It never carries an error;
// Reason is set only when Allowed is false.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// CanManageOrg reports whether the actor may mutate org-level resources
// (jobs, test templates) belonging to resourceOrgID.
func CanManageOrg(actor Actor, resourceOrgID string) Decision {
	if actor.OrgID == "" || actor.OrgID != resourceOrgID {
		return deny("organization mismatch")
	}
	switch actor.Role {
	case RoleOrgAdmin, RoleSeniorHR:
		return allow()
	default:
		return deny("role not permitted for org-level mutation")
	}
}

// CanActOnJob reports whether the actor may mutate applications and
// interviews under the given job. Assigned recruiters qualify alongside
// org admins and senior HR.
func CanActOnJob(actor Actor, jobOrgID string, assignedRecruiters []string) Decision {
	if actor.OrgID == "" || actor.OrgID != jobOrgID {
		return deny("organization mismatch")
	}
	switch actor.Role {
	case RoleOrgAdmin, RoleSeniorHR:
		return allow()
	case RoleRecruiter:
		for _, id := range assignedRecruiters {
			if id == actor.UserID {
				return allow()
			}
		}
		return deny("recruiter not assigned to job")
	default:
		return deny("role not permitted")
	}
}

// CanActAsApplicant reports whether the actor is the applicant owning the
// resource (test attempts, responses).
func CanActAsApplicant(actor Actor, applicantID string) Decision {
	if actor.UserID == "" || actor.UserID != applicantID {
		return deny("not the owning applicant")
	}
	return allow()
}
