package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"merit/internal/domain"
	"merit/internal/models"
	"merit/internal/repository"
	"merit/pkg/fingerprint"
	"merit/pkg/quality"
)

var (
	ErrUnknownActionType = errors.New("unknown action type")
	ErrEmptyContent      = errors.New("content is required for this action type")
)

// RewardNotifier receives best-effort credit notifications after the
// transactional core commits. Implementations may drop events; they must
// never block or fail the submission.
type RewardNotifier interface {
	NotifyReward(userID uint, payload interface{})
}

// SubmitRequest is one user action packaged by a caller flow.
type SubmitRequest struct {
	ActorID           uint
	ActionType        string
	Content           string
	TargetID          string
	DeviceFingerprint string
	ClientIP          string // raw; hashed immediately, never persisted
	IdempotencyKey    string
}

// SubmitResult is the structured outcome. Rejections are outcomes, not
// errors: Reason is always set when Rewarded is false.
type SubmitResult struct {
	Rewarded       bool    `json:"rewarded"`
	Amount         int64   `json:"amount"`
	QualityScore   float64 `json:"quality_score"`
	Reason         string  `json:"reason,omitempty"`
	DailyRemaining int     `json:"daily_remaining"`
	ActionID       string  `json:"action_id"`
}

// SubmissionService runs the full pipeline: intake -> integrity -> risk gate
// -> policy -> reward computation -> daily cap -> ledger record -> credit.
type SubmissionService struct {
	actions  *repository.ActionRepository
	daily    *repository.DailyRepository
	wallets  *repository.WalletRepository
	policies *repository.PolicyRepository
	risk     *RiskGate
	sybil    *SybilService
	scorer   quality.Scorer
	notifier RewardNotifier

	loc            *time.Location
	fpSalt         string
	qualityTimeout time.Duration
	now            func() time.Time
}

func NewSubmissionService(
	actions *repository.ActionRepository,
	daily *repository.DailyRepository,
	wallets *repository.WalletRepository,
	policies *repository.PolicyRepository,
	risk *RiskGate,
	sybil *SybilService,
	scorer quality.Scorer,
	notifier RewardNotifier,
	loc *time.Location,
	fpSalt string,
	qualityTimeout time.Duration,
) *SubmissionService {
	return &SubmissionService{
		actions:        actions,
		daily:          daily,
		wallets:        wallets,
		policies:       policies,
		risk:           risk,
		sybil:          sybil,
		scorer:         scorer,
		notifier:       notifier,
		loc:            loc,
		fpSalt:         fpSalt,
		qualityTimeout: qualityTimeout,
		now:            time.Now,
	}
}

// SetClock overrides the clock; tests use it to pin the reward day.
func (s *SubmissionService) SetClock(now func() time.Time) { s.now = now }

// Submit processes one action submission end to end. Input validation
// failures return an error; every other non-reward outcome returns a result
// with a machine-readable reason.
func (s *SubmissionService) Submit(ctx context.Context, req SubmitRequest) (*SubmitResult, error) {
	spec, ok := domain.SpecFor(req.ActionType)
	if !ok {
		return nil, ErrUnknownActionType
	}
	if spec.RequiresContent && strings.TrimSpace(req.Content) == "" {
		return nil, ErrEmptyContent
	}

	// Replay: a known idempotency key returns the stored outcome without
	// touching any counter or balance.
	if prior, err := s.actions.GetByIdempotencyKey(req.IdempotencyKey); err != nil {
		return nil, err
	} else if prior != nil {
		return s.resultFromAction(prior)
	}

	now := s.now()
	date := domain.RewardDate(now, s.loc)

	// Fingerprint correlation is fire-and-forget; its failure never blocks
	// the reward flow, and the registry upsert is harmless even when the
	// submission is later rejected.
	s.dispatchFingerprints(req, now)

	policy, err := s.policies.Active()
	if err != nil {
		return nil, err
	}
	snap, ok := policy.Snapshot(req.ActionType)
	if !ok {
		return nil, fmt.Errorf("%w: %s has no policy config", ErrUnknownActionType, req.ActionType)
	}
	cfg := snap.Action

	// Cooldown.
	if cfg.CooldownSeconds > 0 {
		last, err := s.actions.LastOfType(req.ActorID, req.ActionType)
		if err != nil {
			return nil, err
		}
		if !last.IsZero() && now.Sub(last) < time.Duration(cfg.CooldownSeconds)*time.Second {
			return s.recordRejected(req, snap, IntegrityResult{}, domain.ReasonNotEligibleTimeWindow, date, cfg)
		}
	}

	// Content integrity.
	var integ IntegrityResult
	hasContent := strings.TrimSpace(req.Content) != ""
	if hasContent {
		windowDays := snap.Thresholds.DedupWindowDays
		if windowDays <= 0 {
			windowDays = 7
		}
		recent, err := s.actions.RecentFingerprints(req.ActorID, req.ActionType, now.AddDate(0, 0, -windowDays))
		if err != nil {
			return nil, err
		}
		integ = CheckIntegrity(req.Content, cfg.MinChars, snap.Thresholds, recent)
		if !integ.OK {
			return s.recordRejected(req, snap, integ, integ.Reason, date, cfg)
		}
	}

	// Anti-sybil risk gate.
	risk := s.risk.Evaluate(req.ActorID, policy.Rules, now)
	if risk.RiskLevel == domain.RiskSuspended {
		return s.recordRejected(req, snap, integ, domain.ReasonSuspended, date, cfg)
	}

	// Quality score, with policy-default fallback when the classifier is
	// slow or down.
	score := s.scoreQuality(ctx, req, policy.Rules.DefaultQualityScore, hasContent)

	track, err := s.daily.GetOrCreate(req.ActorID, date)
	if err != nil {
		return nil, err
	}

	amount := ComputeReward(snap, RewardInput{
		QualityScore:   score,
		ContentChars:   integ.Chars,
		IsGreeting:     hasContent && IsGreeting(req.Content),
		RewardedToday:  track.CategoryCount(spec.Category),
		RiskMultiplier: risk.Multiplier,
	})

	reason := ""
	switch {
	case risk.RiskLevel == domain.RiskFrozen:
		amount = 0
		reason = domain.ReasonFrozenRisk
	case hasContent && IsGreeting(req.Content):
		amount = 0
		reason = domain.ReasonGreetingOrNoop
	case score < cfg.MinQualityScore:
		amount = 0
		reason = domain.ReasonLowQuality
	}

	remaining := cfg.MaxDaily - track.CategoryCount(spec.Category)
	if remaining < 0 {
		remaining = 0
	}

	// Reserve a daily slot only when there is something to credit. The
	// reservation is the linearization point for per-actor cap decisions.
	if amount > 0 {
		res, err := s.daily.TryReserve(req.ActorID, date, spec.Category, cfg.MaxDaily, risk.MaxActionsPerDay)
		if err != nil {
			return nil, err
		}
		if !res.Granted {
			amount = 0
			reason = domain.ReasonDailyLimitReached
		}
		remaining = res.Remaining
	}

	action, err := s.recordAction(req, snap, integ, score, amount, reason, domain.ActionStatusPending)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateIdempotencyKey) {
			// Lost an insert race with a concurrent replay; undo our
			// reservation and serve the winner's outcome.
			if amount > 0 {
				if rerr := s.daily.Release(req.ActorID, date, spec.Category); rerr != nil {
					log.WithError(rerr).Errorf("[submit] release after replay race failed for actor %d", req.ActorID)
				}
			}
			prior, perr := s.actions.GetByIdempotencyKey(req.IdempotencyKey)
			if perr != nil || prior == nil {
				return nil, err
			}
			return s.resultFromAction(prior)
		}
		// Store failure: give back the reserved slot so a retry does not
		// burn a second one.
		if amount > 0 {
			if rerr := s.daily.Release(req.ActorID, date, spec.Category); rerr != nil {
				log.WithError(rerr).Errorf("[submit] reservation release failed for actor %d", req.ActorID)
			}
		}
		return nil, err
	}

	// Record first, then credit, keyed by the action UID: a retried credit
	// for the same action is a no-op on the ledger's unique reference.
	if amount > 0 {
		meta := fmt.Sprintf(`{"action_type":%q,"policy_version":%q}`, req.ActionType, snap.Version)
		err := s.wallets.Credit(req.ActorID, amount, domain.WalletTxTypeReward, action.UID, score, meta)
		if err != nil && !errors.Is(err, repository.ErrDuplicateReference) {
			// The action is recorded but not credited: surface a retryable
			// error; the caller can re-query the action status. The
			// reservation is released so the retry can take a fresh slot.
			if rerr := s.daily.Release(req.ActorID, date, spec.Category); rerr != nil {
				log.WithError(rerr).Errorf("[submit] reservation release failed for actor %d", req.ActorID)
			}
			return nil, fmt.Errorf("credit for action %s: %w", action.UID, err)
		}
		if err := s.daily.AddCoins(req.ActorID, date, amount); err != nil {
			log.WithError(err).Warnf("[submit] daily coin total update failed for actor %d", req.ActorID)
		}
	}

	if err := s.actions.UpdateStatus(action.ID, domain.ActionStatusScored); err != nil {
		log.WithError(err).Warnf("[submit] status update failed for action %s", action.UID)
	}

	if amount > 0 && s.notifier != nil {
		// Already-granted coin is never un-granted because a downstream
		// notification failed.
		go s.notifier.NotifyReward(req.ActorID, map[string]interface{}{
			"type":      "reward_minted",
			"action_id": action.UID,
			"amount":    amount,
		})
	}

	return &SubmitResult{
		Rewarded:       amount > 0,
		Amount:         amount,
		QualityScore:   score,
		Reason:         reason,
		DailyRemaining: remaining,
		ActionID:       action.UID,
	}, nil
}

func (s *SubmissionService) dispatchFingerprints(req SubmitRequest, now time.Time) {
	hashes := []string{
		fingerprint.Device(s.fpSalt, req.DeviceFingerprint),
		fingerprint.IP(s.fpSalt, req.ClientIP),
	}
	any := false
	for _, h := range hashes {
		if h != "" {
			any = true
		}
	}
	if !any || s.sybil == nil {
		return
	}
	go s.sybil.RecordFingerprints(req.ActorID, hashes, now)
}

func (s *SubmissionService) scoreQuality(ctx context.Context, req SubmitRequest, fallback float64, hasContent bool) float64 {
	if !hasContent || s.scorer == nil {
		return fallback
	}
	cctx, cancel := context.WithTimeout(ctx, s.qualityTimeout)
	defer cancel()
	score, err := s.scorer.Score(cctx, req.Content, req.ActionType)
	if err != nil || score < 0 || score > 1 {
		if err != nil {
			log.WithError(err).Warnf("[submit] quality scoring failed for actor %d, using default %.2f", req.ActorID, fallback)
		}
		return fallback
	}
	return score
}

func (s *SubmissionService) recordAction(req SubmitRequest, snap models.PolicySnapshot, integ IntegrityResult, score float64, amount int64, reason, status string) (*models.Action, error) {
	uid := uuid.NewString()
	key := req.IdempotencyKey
	if key == "" {
		// Self-keyed: satisfies the unique index without enabling replay.
		key = uid
	}
	action := &models.Action{
		UID:             uid,
		IdempotencyKey:  key,
		ActorID:         req.ActorID,
		ActionType:      req.ActionType,
		TargetID:        req.TargetID,
		ContentHash:     integ.ContentHash,
		WordFingerprint: strings.Join(integ.UniqueWords, " "),
		ContentChars:    integ.Chars,
		ContentWords:    integ.WordCount,
		QualityScore:    score,
		RewardAmount:    amount,
		Reason:          reason,
		Status:          status,
		PolicyVersion:   snap.Version,
		PolicySnapshot:  snap,
	}
	var evidences []models.Evidence
	if integ.ContentHash != "" {
		evidences = append(evidences, models.Evidence{
			EvidenceType: domain.EvidenceTypeContentHash,
			ContentHash:  integ.ContentHash,
		})
	}
	if req.TargetID != "" {
		evidences = append(evidences, models.Evidence{
			EvidenceType: domain.EvidenceTypeTargetRef,
			ContentHash:  ContentHash(req.TargetID),
			URI:          req.TargetID,
		})
	}
	if err := s.actions.Create(action, evidences); err != nil {
		return nil, err
	}
	return action, nil
}

// recordRejected stores the rejected attempt for audit (hash, metrics and
// word fingerprint, never raw text) and returns the structured rejection.
func (s *SubmissionService) recordRejected(req SubmitRequest, snap models.PolicySnapshot, integ IntegrityResult, reason, date string, cfg models.ActionConfig) (*SubmitResult, error) {
	action, err := s.recordAction(req, snap, integ, 0, 0, reason, domain.ActionStatusRejected)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateIdempotencyKey) {
			prior, perr := s.actions.GetByIdempotencyKey(req.IdempotencyKey)
			if perr == nil && prior != nil {
				return s.resultFromAction(prior)
			}
		}
		return nil, err
	}
	remaining := 0
	spec, _ := domain.SpecFor(req.ActionType)
	if track, terr := s.daily.GetOrCreate(req.ActorID, date); terr == nil {
		remaining = cfg.MaxDaily - track.CategoryCount(spec.Category)
		if remaining < 0 {
			remaining = 0
		}
	}
	return &SubmitResult{
		Rewarded:       false,
		Amount:         0,
		Reason:         reason,
		DailyRemaining: remaining,
		ActionID:       action.UID,
	}, nil
}

// resultFromAction reconstructs the stored outcome for a replayed key.
func (s *SubmissionService) resultFromAction(a *models.Action) (*SubmitResult, error) {
	remaining := 0
	spec, ok := domain.SpecFor(a.ActionType)
	if ok {
		date := domain.RewardDate(s.now(), s.loc)
		if track, err := s.daily.GetOrCreate(a.ActorID, date); err == nil {
			remaining = a.PolicySnapshot.Action.MaxDaily - track.CategoryCount(spec.Category)
			if remaining < 0 {
				remaining = 0
			}
		}
	}
	return &SubmitResult{
		Rewarded:       a.RewardAmount > 0,
		Amount:         a.RewardAmount,
		QualityScore:   a.QualityScore,
		Reason:         a.Reason,
		DailyRemaining: remaining,
		ActionID:       a.UID,
	}, nil
}
