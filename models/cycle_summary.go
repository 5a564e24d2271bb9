package models

// UserCycleSummary aggregates one user's matches for one cycle. It is
// created alongside the match records at commit time and is append-only
// within a cycle.
type UserCycleSummary struct {
	UserID       string   `dynamodbav:"userId" json:"userId"`
	CycleID      string   `dynamodbav:"cycleId" json:"cycleId"`
	TotalMatches int      `dynamodbav:"totalMatches" json:"totalMatches"`
	Matches      []string `dynamodbav:"matches" json:"matches"` // match ids, in commit order
}

// UserCycleSummariesTable is the DynamoDB table name for per-cycle summaries
const UserCycleSummariesTable = "UserCycleSummaries"
