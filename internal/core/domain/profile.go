package domain

// CandidateProfile holds the fields only candidate accounts carry.
type CandidateProfile struct {
	Skills          []string `json:"skills" bson:"skills"`
	ExperienceYears int      `json:"experience_years" bson:"experience_years"`
	Education       []string `json:"education" bson:"education"`
}

// RecruiterProfile holds the fields only recruiter accounts carry.
type RecruiterProfile struct {
	CompanyName        string `json:"company_name" bson:"company_name"`
	CompanyWebsite     string `json:"company_website,omitempty" bson:"company_website,omitempty"`
	CompanyDescription string `json:"company_description,omitempty" bson:"company_description,omitempty"`
}

// Profile is extended account information. The common fields apply to every
// role; exactly one of Candidate/Recruiter is populated depending on the
// account's role (admins carry neither).
type Profile struct {
	Bio       string            `json:"bio,omitempty" bson:"bio,omitempty"`
	Location  string            `json:"location,omitempty" bson:"location,omitempty"`
	Candidate *CandidateProfile `json:"candidate,omitempty" bson:"candidate,omitempty"`
	Recruiter *RecruiterProfile `json:"recruiter,omitempty" bson:"recruiter,omitempty"`
}

// NewProfile returns the empty profile shape matching the role.
func NewProfile(role Role) Profile {
	switch role {
	case RoleCandidate:
		return Profile{Candidate: &CandidateProfile{Skills: []string{}, Education: []string{}}}
	case RoleRecruiter:
		return Profile{Recruiter: &RecruiterProfile{}}
	case RoleAdmin:
		return Profile{}
	default:
		return Profile{}
	}
}

// MatchesRole reports whether the profile carries the variant the role
// requires and no other.
func (p Profile) MatchesRole(role Role) bool {
	switch role {
	case RoleCandidate:
		return p.Candidate != nil && p.Recruiter == nil
	case RoleRecruiter:
		return p.Recruiter != nil && p.Candidate == nil
	case RoleAdmin:
		return p.Candidate == nil && p.Recruiter == nil
	default:
		return false
	}
}
