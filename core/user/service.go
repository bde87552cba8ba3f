package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/bths-repair/bths-repair-the-world/core"
)

var (
	// errors
	ErrNotFound     = errors.New("user not found")
	ErrEmailExists  = errors.New("a user with this email already exists")
	ErrResendTooHot = errors.New("a verification email was sent moments ago")
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		// QueryReferrals returns the emails of users whose referredBy equals email.
		QueryReferrals(ctx context.Context, email string) ([]string, error)
		SetEmailVerified(ctx context.Context, email string) error
		SetPosition(ctx context.Context, email string, pos Position) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		logger  core.Logger

		cooldown *resendCooldown
	}
)

func NewService(repo Repository, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{
		repo:     repo,
		mailSvc:  mailSvc,
		logger:   logger,
		cooldown: newResendCooldown(core.Conf.VerifyEmailResendTimeout),
	}
}

// Create registers a profile for email. PreferredName defaults to Name
// (applied in WriteUser.Validate); Position always starts as member.
// emailVerified carries the session's verification status so a verified
// identity does not have to re-confirm after registering.
func (svc *Service) Create(ctx context.Context, email string, emailVerified bool, wu WriteUser) (Profile, error) {
	now := time.Now().UTC()
	usr := User{
		Email:         email,
		Name:          wu.Name,
		PreferredName: wu.PreferredName,
		Pronouns:      wu.Pronouns,
		GradYear:      wu.GradYear,
		Prefect:       wu.Prefect,
		Birthday:      wu.Birthday,
		Position:      PositionMember,
		EmailVerified: emailVerified,
		ReferredBy:    wu.ReferredBy,
		SgoSticker:    *wu.SgoSticker,
		EventAlerts:   *wu.EventAlerts,
		CreatedAt:     now,
		LastUpdated:   now,
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return Profile{}, core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return Profile{}, err
	}
	return svc.withReferrals(ctx, usr)
}

// Update replaces a profile's mutable fields and stamps LastUpdated.
// It never creates a missing record.
func (svc *Service) Update(ctx context.Context, email string, wu WriteUser) (Profile, error) {
	usr, err := svc.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return Profile{}, err
	}
	usr.Name = wu.Name
	usr.PreferredName = wu.PreferredName
	usr.Pronouns = wu.Pronouns
	usr.GradYear = wu.GradYear
	usr.Prefect = wu.Prefect
	usr.Birthday = wu.Birthday
	usr.ReferredBy = wu.ReferredBy
	usr.SgoSticker = *wu.SgoSticker
	usr.EventAlerts = *wu.EventAlerts
	usr.LastUpdated = time.Now().UTC()

	usr, err = svc.repo.UpdateUser(ctx, usr)
	if err != nil {
		return Profile{}, err
	}
	return svc.withReferrals(ctx, usr)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

// GetProfile fetches a user along with their referral list. The list is
// recomputed on every call; a crash between a profile write and this read
// can never leave it stale.
func (svc *Service) GetProfile(ctx context.Context, email string) (Profile, error) {
	usr, err := svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
	if err != nil {
		return Profile{}, err
	}
	return svc.withReferrals(ctx, usr)
}

func (svc *Service) withReferrals(ctx context.Context, usr User) (Profile, error) {
	refs, err := svc.repo.QueryReferrals(ctx, usr.Email)
	if err != nil {
		return Profile{}, errors.Wrap(err, "querying referrals")
	}
	if refs == nil {
		refs = []string{}
	}
	return Profile{User: usr, Referrals: refs}, nil
}

// RequestVerification emails a fresh verification link, subject to the
// resend cooldown. The user need not have a profile yet; the session email
// is enough.
func (svc *Service) RequestVerification(ctx context.Context, email string) error {
	email = core.CleanString(email, true /* lower */)
	if !svc.cooldown.allow(email) {
		return ErrResendTooHot
	}

	token, err := MakeToken(email)
	if err != nil {
		return errors.Wrap(err, "making verification token")
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Address: email}},
		Subject:      "Verify your email",
		TemplateName: "verify-email",
		TemplateData: struct {
			UID   string
			Token string
		}{UID: EncodeUID(email), Token: token},
	})
	return nil
}

// ConfirmVerification validates a verification token and flips the
// emailVerified flag.
func (svc *Service) ConfirmVerification(ctx context.Context, uid, token string) error {
	email, err := decodeUID(uid)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	if err := verifyToken(email, token); err != nil {
		return core.NewValidationError(err)
	}
	if err := svc.repo.SetEmailVerified(ctx, email); err != nil {
		return errors.Wrap(err, "setting email verified")
	}
	return nil
}

// Promote sets a member's position. Operator CLI only.
func (svc *Service) Promote(ctx context.Context, email string, pos Position) error {
	if !pos.Valid() {
		return core.NewValidationError(nil, core.FieldError{Field: "position", Error: "invalid position"})
	}
	return svc.repo.SetPosition(ctx, core.CleanString(email, true /* lower */), pos)
}
