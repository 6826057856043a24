package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks ProfileStore,Notifier

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	badgemetrics "insignia/internal/badge/metrics"
	"insignia/internal/badge/models"
	"insignia/internal/badge/tracer"
	"insignia/internal/sentinel"
	dErrors "insignia/pkg/domain-errors"
	"insignia/pkg/platform/audit"
)

// ProfileStore is the transactional boundary for badge state: the profile
// table, the holder reverse index, and the two monotonic allocators.
type ProfileStore interface {
	IssueBatch(ctx context.Context, drafts []models.Draft, now time.Time) ([]*models.Profile, error)
	FindByID(ctx context.Context, badgeID models.BadgeID) (*models.Profile, error)
	FindByHolder(ctx context.Context, holder models.Identity) (*models.Profile, error)
	Certify(ctx context.Context, badgeID models.BadgeID, grade string, now time.Time) (*models.Profile, error)
	Remove(ctx context.Context, badgeID models.BadgeID) (*models.Profile, error)
}

// Notifier receives lifecycle notifications for external observers.
type Notifier interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Config carries the process-wide content references. EnrolledRef is the
// reference served for uncertified students; CertifiedFolderRef is the folder
// certified-student documents are resolved under.
type Config struct {
	EnrolledRef        string
	CertifiedFolderRef string
}

// Service implements the badge lifecycle operations. Ownership gating for
// OnboardFaculty and SetCertifiedFolderRef is enforced by the transport's
// administrator check; everything else is gated here.
type Service struct {
	store    ProfileStore
	logger   *slog.Logger
	notifier Notifier
	metrics  *badgemetrics.Metrics
	tracer   tracer.Tracer
	now      func() time.Time

	mu                 sync.RWMutex
	enrolledRef        string
	certifiedFolderRef string
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithNotifier(notifier Notifier) Option {
	return func(s *Service) {
		s.notifier = notifier
	}
}

func WithMetrics(m *badgemetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func New(store ProfileStore, cfg Config, opts ...Option) *Service {
	s := &Service{
		store:              store,
		tracer:             tracer.NewNoop(),
		now:                time.Now,
		enrolledRef:        cfg.EnrolledRef,
		certifiedFolderRef: cfg.CertifiedFolderRef,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnboardFacultyCommand carries parallel sequences of recipients; element i of
// each slice describes one faculty badge.
type OnboardFacultyCommand struct {
	Identities  []models.Identity
	ContentRefs []string
	Roles       []models.Role
}

// OnboardFaculty batch-issues certified faculty badges. The whole batch is a
// single transaction: any invalid element aborts it with zero effect.
// Caller authorization (Owner) is the transport's administrator check.
func (s *Service) OnboardFaculty(ctx context.Context, cmd *OnboardFacultyCommand) (profiles []*models.Profile, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanOnboardFaculty,
		tracer.Int64(tracer.AttrBatchSize, int64(len(cmd.Identities))))
	defer func() { span.End(err) }()

	if len(cmd.Identities) != len(cmd.ContentRefs) || len(cmd.Identities) != len(cmd.Roles) {
		return nil, dErrors.New(dErrors.CodeLengthMismatch,
			"identities, content references, and roles must have equal length")
	}

	drafts := make([]models.Draft, len(cmd.Identities))
	for i, identity := range cmd.Identities {
		if !cmd.Roles[i].IsFaculty() {
			return nil, dErrors.New(dErrors.CodeInvalidRole,
				"faculty onboarding only accepts teaching_assistant or teacher roles")
		}
		drafts[i] = models.Draft{
			Holder:     identity,
			Role:       cmd.Roles[i],
			ContentRef: cmd.ContentRefs[i],
		}
	}

	profiles, err = s.store.IssueBatch(ctx, drafts, s.now())
	if err != nil {
		return nil, err
	}

	for _, p := range profiles {
		s.recordIssued(ctx, p, "")
	}
	return profiles, nil
}

// EnrollStudents batch-issues uncertified student badges. The caller must
// hold a faculty badge.
func (s *Service) EnrollStudents(ctx context.Context, caller models.Identity, identities []models.Identity) (profiles []*models.Profile, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanEnrollStudents,
		tracer.Int64(tracer.AttrBatchSize, int64(len(identities))))
	defer func() { span.End(err) }()

	if _, err = s.requireFaculty(ctx, caller); err != nil {
		return nil, err
	}

	drafts := make([]models.Draft, len(identities))
	for i, identity := range identities {
		drafts[i] = models.Draft{Holder: identity, Role: models.RoleStudent}
	}

	profiles, err = s.store.IssueBatch(ctx, drafts, s.now())
	if err != nil {
		return nil, err
	}

	for _, p := range profiles {
		s.recordIssued(ctx, p, caller)
	}
	return profiles, nil
}

// CertifyStudent marks a student badge certified exactly once, assigning the
// next certification sequence number and recording the grade. Repeated
// certification always fails after the first success.
func (s *Service) CertifyStudent(ctx context.Context, caller models.Identity, badgeID models.BadgeID, grade string) (profile *models.Profile, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanCertifyStudent,
		tracer.String(tracer.AttrBadgeID, badgeID.String()))
	defer func() { span.End(err) }()

	if _, err = s.requireFaculty(ctx, caller); err != nil {
		return nil, err
	}

	profile, err = s.store.Certify(ctx, badgeID, grade, s.now())
	if err != nil {
		// A missing target is not a student badge either.
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotAStudent, "badge "+badgeID.String()+" does not exist")
		}
		return nil, err
	}

	s.logAudit(ctx, audit.Event{
		Action:  audit.ActionBadgeCertified,
		BadgeID: profile.ID.String(),
		Holder:  profile.Holder.String(),
		Role:    string(profile.Role),
		Grade:   grade,
		Actor:   caller.String(),
	})
	if s.metrics != nil {
		s.metrics.IncrementCertified()
	}
	return profile, nil
}

// TerminateSelf burns the caller's own badge. The caller must be the current
// holder; any role may burn its own badge.
func (s *Service) TerminateSelf(ctx context.Context, caller models.Identity, badgeID models.BadgeID) (err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanTerminate,
		tracer.String(tracer.AttrBadgeID, badgeID.String()),
		tracer.String(tracer.AttrMode, "burn"))
	defer func() { span.End(err) }()

	profile, err := s.store.FindByID(ctx, badgeID)
	if err != nil {
		return wrapBadgeErr(err, "failed to load badge")
	}
	if profile.Holder != caller {
		return dErrors.New(dErrors.CodeNotOwner, "badge "+badgeID.String()+" is not held by the caller")
	}

	return s.terminate(ctx, badgeID, caller, "burn")
}

// TerminateByFaculty revokes any badge, including other faculty's. The caller
// must hold a faculty badge.
func (s *Service) TerminateByFaculty(ctx context.Context, caller models.Identity, badgeID models.BadgeID) (err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanTerminate,
		tracer.String(tracer.AttrBadgeID, badgeID.String()),
		tracer.String(tracer.AttrMode, "revoke"))
	defer func() { span.End(err) }()

	if _, err = s.requireFaculty(ctx, caller); err != nil {
		return err
	}

	return s.terminate(ctx, badgeID, caller, "revoke")
}

// terminate deletes the profile and its reverse-index entry atomically. The
// badge id is permanently retired; the allocator never hands it out again.
func (s *Service) terminate(ctx context.Context, badgeID models.BadgeID, actor models.Identity, mode string) error {
	removed, err := s.store.Remove(ctx, badgeID)
	if err != nil {
		return wrapBadgeErr(err, "failed to terminate badge")
	}

	s.logAudit(ctx, audit.Event{
		Action:  audit.ActionBadgeTerminated,
		BadgeID: removed.ID.String(),
		Holder:  removed.Holder.String(),
		Role:    string(removed.Role),
		Actor:   actor.String(),
	})
	if s.metrics != nil {
		s.metrics.IncrementTerminated(mode)
	}
	return nil
}

// Transfer rejects any attempt to move an existing badge between identities.
// Badges are soulbound: the only paths that change ownership records are
// issuance and termination.
func (s *Service) Transfer(ctx context.Context, badgeID models.BadgeID, to models.Identity) error {
	if _, err := s.store.FindByID(ctx, badgeID); err != nil {
		return wrapBadgeErr(err, "failed to load badge")
	}
	return dErrors.New(dErrors.CodeTransferRejected,
		"badge "+badgeID.String()+" is permanently bound to its holder")
}

// GetBadge returns the profile for a badge id.
func (s *Service) GetBadge(ctx context.Context, badgeID models.BadgeID) (*models.Profile, error) {
	profile, err := s.store.FindByID(ctx, badgeID)
	if err != nil {
		return nil, wrapBadgeErr(err, "failed to load badge")
	}
	return profile, nil
}

// SetCertifiedFolderRef updates the process-wide certified-folder reference.
// Caller authorization (Owner) is the transport's administrator check.
func (s *Service) SetCertifiedFolderRef(ctx context.Context, ref string) error {
	if ref == "" {
		return dErrors.New(dErrors.CodeValidation, "certified folder reference cannot be empty")
	}
	s.mu.Lock()
	s.certifiedFolderRef = ref
	s.mu.Unlock()

	s.logAudit(ctx, audit.Event{Action: audit.ActionCertifiedFolderUpdated})
	return nil
}

func (s *Service) recordIssued(ctx context.Context, p *models.Profile, actor models.Identity) {
	s.logAudit(ctx, audit.Event{
		Action:  audit.ActionBadgeIssued,
		BadgeID: p.ID.String(),
		Holder:  p.Holder.String(),
		Role:    string(p.Role),
		Actor:   actor.String(),
	})
	if s.metrics != nil {
		s.metrics.IncrementIssued(string(p.Role))
	}
}

// logAudit writes the structured audit line and fans the event out to the
// notifier. Notification failures are logged, never propagated: lifecycle
// effects have already committed by the time events are emitted.
func (s *Service) logAudit(ctx context.Context, event audit.Event) {
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event.Action),
			"log_type", "audit",
			"badge_id", event.BadgeID,
			"holder", event.Holder,
			"actor", event.Actor,
		)
	}
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit lifecycle notification",
			"action", string(event.Action),
			"badge_id", event.BadgeID,
			"error", err,
		)
	}
}

func wrapBadgeErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "badge not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}
