package domain

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Action types accepted by the submission endpoint.
const (
	ActionQuestionAsk       = "QUESTION_ASK"
	ActionJournalWrite      = "JOURNAL_WRITE"
	ActionGratitudePractice = "GRATITUDE_PRACTICE"
	ActionPostCreate        = "POST_CREATE"
	ActionPostEngagement    = "POST_ENGAGEMENT"
	ActionCommentCreate     = "COMMENT_CREATE"
	ActionShareContent      = "SHARE_CONTENT"
	ActionDonateSupport     = "DONATE_SUPPORT"
	ActionDailyLogin        = "DAILY_LOGIN"
)

// Action status lifecycle. An action is created, then transitions to SCORED
// or REJECTED within the same request and is never mutated afterward.
const (
	ActionStatusPending  = "PENDING"
	ActionStatusScored   = "SCORED"
	ActionStatusRejected = "REJECTED"
)

// Daily-cap counter categories. Several action types share one category.
const (
	CategoryQuestions = "questions"
	CategoryJournals  = "journals"
	CategoryPosts     = "posts"
	CategoryComments  = "comments"
	CategoryShares    = "shares"
	CategoryLogins    = "logins"
)

// Machine-readable rejection reasons returned to callers.
const (
	ReasonNotEligibleTimeWindow = "not_eligible_time_window"
	ReasonDailyLimitReached     = "daily_limit_reached"
	ReasonTooShort              = "too_short"
	ReasonDuplicateContent      = "duplicate_content"
	ReasonSimilarContent        = "similar_content"
	ReasonTemplateContent       = "template_content"
	ReasonSuspended             = "suspended"
	ReasonFrozenRisk            = "frozen_risk"
	ReasonGreetingOrNoop        = "greeting_or_noop"
	ReasonLowQuality            = "low_quality"
)

// Risk levels produced by the anti-sybil gate.
const (
	RiskClear      = "clear"
	RiskMonitoring = "monitoring"
	RiskFrozen     = "frozen"
	RiskSuspended  = "suspended"
)

// Account-age gate levels.
const (
	GateNew       = "new"
	GateProbation = "probation"
	GateVerified  = "verified"
)

const (
	SignalTypeSybil = "SYBIL"
)

const (
	WalletTxTypeReward     = "ACTION_REWARD"
	WalletTxTypeWithdrawal = "WITHDRAWAL"
	WalletTxTypeAdjustment = "ADMIN_ADJUSTMENT"
)

const (
	EvidenceTypeContentHash = "CONTENT_HASH"
	EvidenceTypeWordSet     = "WORD_SET"
	EvidenceTypeTargetRef   = "TARGET_REF"
)

// ActionSpec is the static, policy-independent shape of an action type:
// which daily-cap category it counts against and whether text content is
// required at all. Policy-tunable numbers (caps, rewards, minimum length)
// live in the Policy ruleset, not here.
type ActionSpec struct {
	Category        string
	RequiresContent bool
}

var actionSpecs = map[string]ActionSpec{
	ActionQuestionAsk:       {Category: CategoryQuestions, RequiresContent: true},
	ActionJournalWrite:      {Category: CategoryJournals, RequiresContent: true},
	ActionGratitudePractice: {Category: CategoryJournals, RequiresContent: true},
	ActionPostCreate:        {Category: CategoryPosts, RequiresContent: true},
	ActionPostEngagement:    {Category: CategoryPosts, RequiresContent: false},
	ActionCommentCreate:     {Category: CategoryComments, RequiresContent: true},
	ActionShareContent:      {Category: CategoryShares, RequiresContent: false},
	ActionDonateSupport:     {Category: CategoryShares, RequiresContent: false},
	ActionDailyLogin:        {Category: CategoryLogins, RequiresContent: false},
}

// SpecFor returns the static spec for an action type, or ok=false for an
// unknown type. Adding an action type is one entry in actionSpecs plus a
// policy config; no call sites change.
func SpecFor(actionType string) (ActionSpec, bool) {
	s, ok := actionSpecs[actionType]
	return s, ok
}

// ActionTypes returns all known action types (for validation and admin UIs).
func ActionTypes() []string {
	out := make([]string, 0, len(actionSpecs))
	for t := range actionSpecs {
		out = append(out, t)
	}
	return out
}
