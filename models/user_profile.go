package models

// UserProfile defines the structure for user profiles. The four flag fields
// are the consent gate read by the eligibility snapshot at cycle start; they
// are written by the consent screen and the onboarding flow.
type UserProfile struct {
	UserID             string   `dynamodbav:"userId" json:"userId"`
	FullName           string   `dynamodbav:"fullName,omitempty" json:"fullName,omitempty"`
	Bio                string   `dynamodbav:"bio,omitempty" json:"bio,omitempty"`
	Interests          []string `dynamodbav:"interests,omitempty" json:"interests,omitempty"`
	IsPublic           bool     `dynamodbav:"isPublic" json:"isPublic"`
	HasMatchingConsent bool     `dynamodbav:"hasMatchingConsent" json:"hasMatchingConsent"`
	MatchingEnabled    bool     `dynamodbav:"matchingEnabled" json:"matchingEnabled"`
	OnboardingComplete bool     `dynamodbav:"onboardingComplete" json:"onboardingComplete"`
}

// UserProfilesTable is the DynamoDB table name for user profiles
const UserProfilesTable = "UserProfiles"

// Eligible reports whether the profile can enter a matching cycle.
func (p *UserProfile) Eligible() bool {
	return p.IsPublic && p.HasMatchingConsent && p.MatchingEnabled && p.OnboardingComplete
}
