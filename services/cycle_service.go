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

// CycleService runs the per-cycle batch job: snapshot the eligible pool,
// generate the pairing assignment, commit it, and publish the audit report.
// The scheduler computes the cycleId and passes it in; there is no ambient
// "current cycle" state.
type CycleService struct {
	Dynamo      *DynamoService
	Eligibility *EligibilityService
	Pairing     *PairingService
	Recent      RecentPairsCache
	Events      *EventService
	Reports     *ReportService
}

// RunCycle executes one full matching cycle and returns its statistics.
func (cs *CycleService) RunCycle(ctx context.Context, cycleID string) (*CycleStats, error) {
	eligible, err := cs.Eligibility.EligibleUsers(ctx, cycleID)
	if err != nil {
		return nil, err
	}

	pairs, stats := cs.Pairing.GeneratePairs(ctx, cycleID, eligible)

	committed, err := cs.CommitCycle(ctx, cycleID, pairs)
	if err != nil {
		return nil, err
	}
	stats.Committed = committed

	if cs.Reports != nil {
		if err := cs.Reports.PutCycleReport(ctx, cycleID, &stats); err != nil {
			log.Printf("⚠️ Failed to upload cycle report for %s: %v", cycleID, err)
		}
	}

	log.Printf("✅ Cycle %s complete: %d pairs generated, %d committed, %d users under target",
		cycleID, stats.Pairs, stats.Committed, stats.UnderTarget)
	return &stats, nil
}

// CommitCycle persists each pair as two mirrored match records plus both
// participants' cycle summaries. Each pair is one transaction: a pair lands
// completely or not at all, and one pair's failure never aborts the rest of
// the batch. Re-committing an already-committed pair is a no-op.
func (cs *CycleService) CommitCycle(ctx context.Context, cycleID string, pairs []Pair) (int, error) {
	if _, _, err := models.CycleWindow(cycleID); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidCycleID, err)
	}

	now := time.Now().UTC()
	committed := 0
	for _, pair := range pairs {
		if pair.UserA == pair.UserB {
			return committed, fmt.Errorf("%w: %s", ErrSelfPair, pair.UserA)
		}

		err := cs.commitPair(ctx, cycleID, pair, now)
		switch {
		case err == nil:
			committed++
			if cs.Recent != nil {
				if merr := cs.Recent.MarkPaired(ctx, pair.UserA, pair.UserB); merr != nil {
					log.Printf("⚠️ Failed to mark %s/%s as recently paired: %v", pair.UserA, pair.UserB, merr)
				}
			}
			if cs.Events != nil {
				cs.Events.MatchCreated(cycleID, pair.UserA, pair.UserB)
			}
		case IsConditionalCancellation(err):
			log.Printf("↩️ Pair %s/%s already committed for cycle %s, skipping", pair.UserA, pair.UserB, cycleID)
		default:
			log.Printf("❌ Failed to commit pair %s/%s for cycle %s: %v", pair.UserA, pair.UserB, cycleID, err)
		}
	}

	log.Printf("✅ Committed %d of %d pairs for cycle %s", committed, len(pairs), cycleID)
	return committed, nil
}

// commitPair writes one pair atomically: both mirror records (guarded
// against re-creation) and both summary upserts. Transient store errors are
// retried; a conditional cancellation means the pair already exists.
func (cs *CycleService) commitPair(ctx context.Context, cycleID string, pair Pair, now time.Time) error {
	record, mirror := models.NewMatchPair(pair.UserA, pair.UserB, cycleID, now)

	recordItem, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal match record: %w", err)
	}
	mirrorItem, err := attributevalue.MarshalMap(mirror)
	if err != nil {
		return fmt.Errorf("failed to marshal mirror record: %w", err)
	}

	matchesTable := models.MatchesTable
	summariesTable := models.UserCycleSummariesTable
	notExists := "attribute_not_exists(matchId)"
	appendMatch := "SET totalMatches = if_not_exists(totalMatches, :zero) + :one, matches = list_append(if_not_exists(matches, :empty), :matchId)"

	summaryValues := func(matchID string) map[string]types.AttributeValue {
		return map[string]types.AttributeValue{
			":zero":    &types.AttributeValueMemberN{Value: "0"},
			":one":     &types.AttributeValueMemberN{Value: "1"},
			":empty":   &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
			":matchId": &types.AttributeValueMemberL{Value: []types.AttributeValue{&types.AttributeValueMemberS{Value: matchID}}},
		}
	}

	items := []types.TransactWriteItem{
		{Put: &types.Put{TableName: &matchesTable, Item: recordItem, ConditionExpression: &notExists}},
		{Put: &types.Put{TableName: &matchesTable, Item: mirrorItem, ConditionExpression: &notExists}},
		{Update: &types.Update{
			TableName:                 &summariesTable,
			Key:                       summaryKey(pair.UserA, cycleID),
			UpdateExpression:          aws.String(appendMatch),
			ExpressionAttributeValues: summaryValues(record.MatchID),
		}},
		{Update: &types.Update{
			TableName:                 &summariesTable,
			Key:                       summaryKey(pair.UserB, cycleID),
			UpdateExpression:          aws.String(appendMatch),
			ExpressionAttributeValues: summaryValues(mirror.MatchID),
		}},
	}

	const maxAttempts = 3
	for attempt := 0; ; attempt++ {
		err = cs.Dynamo.TransactWriteItems(ctx, items)
		if err == nil || IsConditionalCancellation(err) || attempt == maxAttempts-1 {
			return err
		}
		time.Sleep(time.Duration(attempt+1) * 100 * time.Millisecond)
	}
}

// PurgeCycle deletes every match record and summary of one cycle. Match
// records are otherwise retained indefinitely for audit; this is the
// explicit cleanup tooling, not part of the normal lifecycle.
func (cs *CycleService) PurgeCycle(ctx context.Context, cycleID string) (int, error) {
	if _, _, err := models.CycleWindow(cycleID); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidCycleID, err)
	}

	filter := "cycleId = :cycleId"
	values := map[string]types.AttributeValue{
		":cycleId": &types.AttributeValueMemberS{Value: cycleID},
	}
	items, err := cs.Dynamo.ScanItems(ctx, models.MatchesTable, filter, values, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to scan cycle %s: %w", cycleID, err)
	}

	var matchDeletes []types.WriteRequest
	users := make(map[string]struct{})
	for _, item := range items {
		var match models.MatchRecord
		if err := attributevalue.UnmarshalMap(item, &match); err != nil {
			log.Printf("⚠️ Skipping unparseable match record during purge: %v", err)
			continue
		}
		matchDeletes = append(matchDeletes, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{Key: map[string]types.AttributeValue{
				"matchId": &types.AttributeValueMemberS{Value: match.MatchID},
			}},
		})
		users[match.UserID1] = struct{}{}
		users[match.UserID2] = struct{}{}
	}

	if len(matchDeletes) > 0 {
		if err := cs.Dynamo.BatchWriteItems(ctx, models.MatchesTable, matchDeletes); err != nil {
			return 0, fmt.Errorf("failed to purge matches for cycle %s: %w", cycleID, err)
		}
	}

	var summaryDeletes []types.WriteRequest
	for userID := range users {
		summaryDeletes = append(summaryDeletes, types.WriteRequest{
			DeleteRequest: &types.DeleteRequest{Key: summaryKey(userID, cycleID)},
		})
	}
	if len(summaryDeletes) > 0 {
		if err := cs.Dynamo.BatchWriteItems(ctx, models.UserCycleSummariesTable, summaryDeletes); err != nil {
			return 0, fmt.Errorf("failed to purge summaries for cycle %s: %w", cycleID, err)
		}
	}

	log.Printf("🧹 Purged %d match records and %d summaries for cycle %s", len(matchDeletes), len(summaryDeletes), cycleID)
	return len(matchDeletes), nil
}

// summaryKey builds the composite key of a user's per-cycle summary.
func summaryKey(userID, cycleID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"userId":  &types.AttributeValueMemberS{Value: userID},
		"cycleId": &types.AttributeValueMemberS{Value: cycleID},
	}
}
