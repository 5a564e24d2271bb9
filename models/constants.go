package models

// ✅ Match Statuses (lifecycle: pending → mutual → expired, or pending → expired)
const (
	MatchStatusPending = "pending"
	MatchStatusMutual  = "mutual"
	MatchStatusExpired = "expired"
)

// ✅ Matching Cadences (deployment-wide, picked via MATCH_CADENCE)
const (
	CadenceDaily  = "daily"
	CadenceWeekly = "weekly"
)

// ✅ Logical Event Types (consumed by the notification side-channel)
const (
	EventMatchCreated = "match_created"
	EventMatchMutual  = "match_mutual"
)
