package services

import (
	"context"
	"fmt"
	"log"

	"takk_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type UserProfileService struct {
	Dynamo *DynamoService
}

// AddUserProfile adds a new user profile to DynamoDB
func (ups *UserProfileService) AddUserProfile(ctx context.Context, profile models.UserProfile) (*models.UserProfile, error) {
	if err := ups.Dynamo.PutItem(ctx, models.UserProfilesTable, profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetUserProfile retrieves a user profile by ID
func (ups *UserProfileService) GetUserProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}

	item, err := ups.Dynamo.GetItem(ctx, models.UserProfilesTable, key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("profile not found for %s", userID)
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(item, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// SetMatchingConsent is the consent gate's write side: toggled by the
// consent screen, read by the next cycle's eligibility snapshot. Flipping
// consent mid-cycle never affects a generation pass already running.
func (ups *UserProfileService) SetMatchingConsent(ctx context.Context, userID string, consent, enabled bool) (*models.UserProfile, error) {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}

	updateExpression := "SET hasMatchingConsent = :consent, matchingEnabled = :enabled"
	values := map[string]types.AttributeValue{
		":consent": &types.AttributeValueMemberBOOL{Value: consent},
		":enabled": &types.AttributeValueMemberBOOL{Value: enabled},
	}

	updatedItem, err := ups.Dynamo.UpdateItem(ctx, models.UserProfilesTable, updateExpression, key, values, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to update consent for %s: %w", userID, err)
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(updatedItem, &profile); err != nil {
		return nil, err
	}

	log.Printf("✅ Consent updated for %s: consent=%v enabled=%v", userID, consent, enabled)
	return &profile, nil
}

// CompleteOnboarding marks a user's onboarding as finished.
func (ups *UserProfileService) CompleteOnboarding(ctx context.Context, userID string) (*models.UserProfile, error) {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}

	updateExpression := "SET onboardingComplete = :done"
	values := map[string]types.AttributeValue{
		":done": &types.AttributeValueMemberBOOL{Value: true},
	}

	updatedItem, err := ups.Dynamo.UpdateItem(ctx, models.UserProfilesTable, updateExpression, key, values, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to complete onboarding for %s: %w", userID, err)
	}

	var profile models.UserProfile
	if err := attributevalue.UnmarshalMap(updatedItem, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// DeleteUserProfile removes a user profile from DynamoDB
func (ups *UserProfileService) DeleteUserProfile(ctx context.Context, userID string) error {
	key := map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	}
	return ups.Dynamo.DeleteItem(ctx, models.UserProfilesTable, key)
}
