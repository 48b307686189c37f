package domain

import "time"

// Plan identifies an organization's subscription tier
type Plan string

const (
	PlanFree       Plan = "free"
	PlanHobby      Plan = "hobby"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// Project is the tenant-scoped container sources and chunks belong to.
// Projects are created and managed by an external collaborator; the core
// only reads the active flag and organization linkage.
type Project struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}

// Organization carries the billing state the retrain scheduler needs.
// Managed externally; read-only here.
type Organization struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Plan               Plan   `json:"plan"`
	SubscriptionActive bool   `json:"subscription_active"`
}

// RetrainPlans is the allow-list of plans eligible for scheduled retraining.
var RetrainPlans = []Plan{PlanPro, PlanEnterprise}

// PlanEligibleForRetrain reports whether a plan is in the retrain allow-list.
func PlanEligibleForRetrain(p Plan) bool {
	for _, allowed := range RetrainPlans {
		if p == allowed {
			return true
		}
	}
	return false
}
