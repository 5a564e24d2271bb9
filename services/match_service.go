package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"takk_server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// MatchService drives match records through the acceptance state machine.
// Status only ever moves forward: pending → mutual, pending → expired.
type MatchService struct {
	Dynamo *DynamoService
	Events *EventService
}

// GetMatch loads a single match record by its composite id.
func (s *MatchService) GetMatch(ctx context.Context, matchID string) (*models.MatchRecord, error) {
	key := map[string]types.AttributeValue{
		"matchId": &types.AttributeValueMemberS{Value: matchID},
	}
	item, err := s.Dynamo.GetItem(ctx, models.MatchesTable, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load match %s: %w", matchID, err)
	}
	if item == nil {
		return nil, ErrMatchNotFound
	}

	var match models.MatchRecord
	if err := attributevalue.UnmarshalMap(item, &match); err != nil {
		return nil, fmt.Errorf("failed to parse match %s: %w", matchID, err)
	}
	return &match, nil
}

// Accept records userID's acceptance on both mirror records, promoting the
// pair to mutual once both sides have accepted. Re-accepting is a no-op
// returning the current record. The write is a compare-and-set over the
// state that was read, retried on interleaving, so two near-simultaneous
// accepts promote the pair exactly once.
func (s *MatchService) Accept(ctx context.Context, matchID, userID string) (*models.MatchRecord, error) {
	if _, _, _, err := models.ParseMatchKey(matchID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMatchNotFound, err)
	}

	const maxAttempts = 4
	for attempt := 0; ; attempt++ {
		match, err := s.GetMatch(ctx, matchID)
		if err != nil {
			return nil, err
		}
		if !match.HasParticipant(userID) {
			return nil, ErrNotParticipant
		}

		switch match.Status {
		case models.MatchStatusExpired:
			return nil, ErrMatchClosed
		case models.MatchStatusMutual:
			return match, nil
		}
		if match.AcceptedBy(userID) {
			return match, nil
		}

		updated := *match
		updated.ApplyAccept(userID, time.Now())
		mirror := updated.Mirror()

		err = s.writeMatchPair(ctx, &updated, &mirror, match)
		if err == nil {
			log.Printf("✅ %s accepted match %s (status: %s)", userID, matchID, updated.Status)
			if updated.Status == models.MatchStatusMutual && s.Events != nil {
				s.Events.MatchMutual(&updated)
			}
			return &updated, nil
		}
		if !IsConditionalCancellation(err) || attempt == maxAttempts-1 {
			return nil, fmt.Errorf("failed to record acceptance on %s: %w", matchID, err)
		}
		// Lost the race with the other participant's accept; reread and retry.
		log.Printf("🔁 Acceptance on %s raced, retrying", matchID)
	}
}

// writeMatchPair rewrites both mirror records in one transaction,
// conditioned on the state they were read in.
func (s *MatchService) writeMatchPair(ctx context.Context, updated, mirror, prev *models.MatchRecord) error {
	updatedItem, err := attributevalue.MarshalMap(updated)
	if err != nil {
		return fmt.Errorf("failed to marshal match record: %w", err)
	}
	mirrorItem, err := attributevalue.MarshalMap(mirror)
	if err != nil {
		return fmt.Errorf("failed to marshal mirror record: %w", err)
	}

	condition := "#status = :prevStatus AND user1Accepted = :prevU1 AND user2Accepted = :prevU2"
	names := map[string]string{"#status": "status"}
	conditionValues := func(status string, u1, u2 bool) map[string]types.AttributeValue {
		return map[string]types.AttributeValue{
			":prevStatus": &types.AttributeValueMemberS{Value: status},
			":prevU1":     &types.AttributeValueMemberBOOL{Value: u1},
			":prevU2":     &types.AttributeValueMemberBOOL{Value: u2},
		}
	}

	table := models.MatchesTable
	items := []types.TransactWriteItem{
		{Put: &types.Put{
			TableName:                 &table,
			Item:                      updatedItem,
			ConditionExpression:       aws.String(condition),
			ExpressionAttributeNames:  names,
			ExpressionAttributeValues: conditionValues(prev.Status, prev.User1Accepted, prev.User2Accepted),
		}},
		// The mirror's flags are cross-swapped relative to the record read.
		{Put: &types.Put{
			TableName:                 &table,
			Item:                      mirrorItem,
			ConditionExpression:       aws.String(condition),
			ExpressionAttributeNames:  names,
			ExpressionAttributeValues: conditionValues(prev.Status, prev.User2Accepted, prev.User1Accepted),
		}},
	}
	return s.Dynamo.TransactWriteItems(ctx, items)
}

// ExpirePending sweeps every still-pending record whose cycle window has
// closed — across all past cycles, so a skipped sweep self-heals — and
// transitions each mirror pair to expired. Mutual matches are never touched
// and finding nothing to expire is success.
func (s *MatchService) ExpirePending(ctx context.Context, now time.Time) (int, error) {
	filter := "#status = :pending"
	names := map[string]string{"#status": "status"}
	values := map[string]types.AttributeValue{
		":pending": &types.AttributeValueMemberS{Value: models.MatchStatusPending},
	}

	items, err := s.Dynamo.ScanItems(ctx, models.MatchesTable, filter, values, names)
	if err != nil {
		return 0, fmt.Errorf("failed to scan pending matches: %w", err)
	}

	expired := 0
	done := make(map[string]struct{})
	for _, item := range items {
		var match models.MatchRecord
		if err := attributevalue.UnmarshalMap(item, &match); err != nil {
			log.Printf("⚠️ Skipping unparseable match record during sweep: %v", err)
			continue
		}
		key := pairKey(match.UserID1, match.UserID2) + "|" + match.CycleID
		if _, seen := done[key]; seen {
			continue
		}

		_, end, err := models.CycleWindow(match.CycleID)
		if err != nil {
			log.Printf("⚠️ Match %s has an unparseable cycleId, skipping", match.MatchID)
			continue
		}
		if !now.After(end) {
			continue // cycle still open
		}

		if err := s.expirePair(ctx, &match); err != nil {
			if IsConditionalCancellation(err) {
				// Raced with an accept or another sweep; the record is no
				// longer pending, which is fine either way.
				continue
			}
			log.Printf("❌ Failed to expire %s: %v", match.MatchID, err)
			continue
		}
		done[key] = struct{}{}
		expired++
	}

	log.Printf("✅ Expiry sweep transitioned %d match pairs", expired)
	return expired, nil
}

// expirePair moves both mirror records of a pending pairing to expired.
func (s *MatchService) expirePair(ctx context.Context, match *models.MatchRecord) error {
	mirrorID := models.MatchKey(match.UserID2, match.UserID1, match.CycleID)

	table := models.MatchesTable
	update := "SET #status = :expired"
	condition := "#status = :pending"
	names := map[string]string{"#status": "status"}
	values := map[string]types.AttributeValue{
		":expired": &types.AttributeValueMemberS{Value: models.MatchStatusExpired},
		":pending": &types.AttributeValueMemberS{Value: models.MatchStatusPending},
	}

	expireItem := func(matchID string) types.TransactWriteItem {
		return types.TransactWriteItem{Update: &types.Update{
			TableName:                 &table,
			Key:                       map[string]types.AttributeValue{"matchId": &types.AttributeValueMemberS{Value: matchID}},
			UpdateExpression:          aws.String(update),
			ConditionExpression:       aws.String(condition),
			ExpressionAttributeNames:  names,
			ExpressionAttributeValues: values,
		}}
	}

	return s.Dynamo.TransactWriteItems(ctx, []types.TransactWriteItem{
		expireItem(match.MatchID),
		expireItem(mirrorID),
	})
}

// GetUserCycleSummary returns a user's aggregate for one cycle. A user with
// no matches in the cycle gets an empty summary, not an error.
func (s *MatchService) GetUserCycleSummary(ctx context.Context, userID, cycleID string) (*models.UserCycleSummary, error) {
	if _, _, err := models.CycleWindow(cycleID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCycleID, err)
	}

	item, err := s.Dynamo.GetItem(ctx, models.UserCycleSummariesTable, summaryKey(userID, cycleID))
	if err != nil {
		return nil, fmt.Errorf("failed to load summary for %s/%s: %w", userID, cycleID, err)
	}
	if item == nil {
		return &models.UserCycleSummary{UserID: userID, CycleID: cycleID, Matches: []string{}}, nil
	}

	var summary models.UserCycleSummary
	if err := attributevalue.UnmarshalMap(item, &summary); err != nil {
		return nil, fmt.Errorf("failed to parse summary for %s/%s: %w", userID, cycleID, err)
	}
	return &summary, nil
}

// GetUserSummaries lists a user's summaries across all cycles, most useful
// for the profile screen's match history.
func (s *MatchService) GetUserSummaries(ctx context.Context, userID string) ([]models.UserCycleSummary, error) {
	keyCondition := "userId = :userId"
	values := map[string]types.AttributeValue{
		":userId": &types.AttributeValueMemberS{Value: userID},
	}

	items, err := s.Dynamo.QueryItems(ctx, models.UserCycleSummariesTable, keyCondition, values, nil, 100)
	if err != nil {
		return nil, fmt.Errorf("failed to query summaries for %s: %w", userID, err)
	}

	var summaries []models.UserCycleSummary
	if err := attributevalue.UnmarshalListOfMaps(items, &summaries); err != nil {
		return nil, fmt.Errorf("failed to parse summaries for %s: %w", userID, err)
	}
	return summaries, nil
}
