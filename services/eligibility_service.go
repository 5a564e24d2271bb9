package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"takk_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// EligibilityService selects the candidate pool for a matching cycle.
type EligibilityService struct {
	Dynamo *DynamoService
}

// EligibleUsers takes one snapshot of the profile collection and returns the
// deduplicated, sorted set of users whose flags permit matching in cycleID.
// The snapshot is read exactly once per generation pass; consent changes made
// after it land in the next cycle. An empty pool is a valid result.
func (es *EligibilityService) EligibleUsers(ctx context.Context, cycleID string) ([]string, error) {
	if _, _, err := models.CycleWindow(cycleID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCycleID, err)
	}

	filter := "#isPublic = :true AND #hasConsent = :true AND #enabled = :true AND #onboarded = :true"
	names := map[string]string{
		"#isPublic":   "isPublic",
		"#hasConsent": "hasMatchingConsent",
		"#enabled":    "matchingEnabled",
		"#onboarded":  "onboardingComplete",
	}
	values := map[string]types.AttributeValue{
		":true": &types.AttributeValueMemberBOOL{Value: true},
	}

	items, err := es.Dynamo.ScanItems(ctx, models.UserProfilesTable, filter, values, names)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot eligible users: %w", err)
	}

	seen := make(map[string]struct{}, len(items))
	var users []string
	for _, item := range items {
		var profile models.UserProfile
		if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
			log.Printf("⚠️ Skipping unparseable profile: %v", err)
			continue
		}
		if !profile.Eligible() {
			continue
		}
		if profile.UserID == "" || strings.Contains(profile.UserID, "_") {
			// Underscores would make composite match ids ambiguous.
			log.Printf("⚠️ Skipping user with unusable id %q", profile.UserID)
			continue
		}
		if _, dup := seen[profile.UserID]; dup {
			continue
		}
		seen[profile.UserID] = struct{}{}
		users = append(users, profile.UserID)
	}

	// Scan order is not deterministic; the seeded shuffle needs a stable input.
	sort.Strings(users)

	log.Printf("✅ Eligible pool for cycle %s: %d users", cycleID, len(users))
	return users, nil
}
