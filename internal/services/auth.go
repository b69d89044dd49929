package services

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/junoathena/gateway-backend/internal/clients/athena"
	"github.com/junoathena/gateway-backend/internal/clients/license"
	"github.com/junoathena/gateway-backend/internal/pkg/dbctx"
	"github.com/junoathena/gateway-backend/internal/platform/apierr"
	"github.com/junoathena/gateway-backend/internal/platform/logger"
	"github.com/junoathena/gateway-backend/internal/repos"
	"github.com/junoathena/gateway-backend/internal/requestdata"
	"github.com/junoathena/gateway-backend/internal/types"
)

type AuthClaims struct {
	jwt.RegisteredClaims
	Email    string `json:"email"`
	FullName string `json:"name"`
	Mentor   bool   `json:"mentor"`
}

// AuthenticateInput carries the login form. Passkey and LabCode are checked
// and discarded: they are never persisted, logged, or audited.
type AuthenticateInput struct {
	FullName string
	Email    string
	Passkey  string
	LabCode  string
	Consent  bool
}

// Session is the result of a successful login or refresh.
type Session struct {
	User         *types.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresAt    time.Time   `json:"expires_at"`
	ReadOnly     bool        `json:"read_only"`
}

type AuthService interface {
	Authenticate(ctx context.Context, in AuthenticateInput) (*Session, error)
	Refresh(ctx context.Context) (*Session, error)
	Logout(ctx context.Context) error
	// RefreshLicense re-queries the license oracle for the current principal
	// and flips the session's read-only flag to match. A lapsed result also
	// sends the mentor a renewal request.
	RefreshLicense(ctx context.Context) (license.Status, error)
	// SetContextFromToken validates an access token and installs the
	// request's principal snapshot into the context.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type AuthConfig struct {
	JWTSecretKey string
	// LabAccessCodeHash is a bcrypt hash of the shared lab access code.
	// Empty disables the check.
	LabAccessCodeHash string
	// MentorEmails are principals who get the mentor flag at first login.
	MentorEmails []string
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

type authService struct {
	db       *gorm.DB
	log      *logger.Logger
	cfg      AuthConfig
	users    repos.UserRepo
	tokens   repos.UserTokenRepo
	passkeys athena.Client
	licenses license.Client
	audit    AuditService
	notify   MentorNotifier
}

func NewAuthService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cfg AuthConfig,
	userRepo repos.UserRepo,
	tokenRepo repos.UserTokenRepo,
	passkeyClient athena.Client,
	licenseClient license.Client,
	auditSvc AuditService,
	notifier MentorNotifier,
) AuthService {
	return &authService{
		db:       db,
		log:      baseLog.With("service", "AuthService"),
		cfg:      cfg,
		users:    userRepo,
		tokens:   tokenRepo,
		passkeys: passkeyClient,
		licenses: licenseClient,
		audit:    auditSvc,
		notify:   notifier,
	}
}

func (s *authService) Authenticate(ctx context.Context, in AuthenticateInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	fullName := strings.TrimSpace(in.FullName)

	if fullName == "" || email == "" || in.Passkey == "" {
		return nil, apierr.Validation("full name, email, and passkey are required")
	}
	if !strings.Contains(email, "@") {
		return nil, apierr.Validation("email is not valid")
	}
	if !in.Consent {
		return nil, apierr.Validation("consent is required to proceed")
	}

	ok, err := s.passkeys.IsPasskeyValid(ctx, email, in.Passkey)
	if err != nil {
		s.log.Error("passkey verification unavailable", "email", email, "error", err)
		s.audit.LogEvent(ctx, email, types.AuditLoginFailed, map[string]any{
			"email":  email,
			"reason": "credential_source_error",
		})
		return nil, apierr.Auth("credential check failed, try again shortly")
	}
	if !ok {
		s.audit.LogEvent(ctx, email, types.AuditLoginFailed, map[string]any{
			"email":  email,
			"reason": "invalid_passkey",
		})
		return nil, apierr.Auth("invalid email or passkey")
	}

	if s.cfg.LabAccessCodeHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.LabAccessCodeHash), []byte(in.LabCode)); err != nil {
			s.audit.LogEvent(ctx, email, types.AuditLoginFailed, map[string]any{
				"email":  email,
				"reason": "invalid_lab_code",
			})
			return nil, apierr.Auth("invalid lab access code")
		}
	}

	// Snapshot the license at login. An unreachable oracle does not block
	// login, it just leaves the stored status standing: a lapsed user must
	// not regain writes because the oracle happens to be down.
	dbc := dbctx.Context{Ctx: ctx}
	licenseStatus := types.LicenseActive
	readOnly := false
	if st, lerr := s.licenses.Validate(ctx, email); lerr != nil {
		s.log.Warn("license oracle unreachable at login, keeping prior status", "email", email, "error", lerr)
		prior, perr := s.users.GetByEmails(dbc, []string{email})
		if perr != nil {
			return nil, perr
		}
		if len(prior) > 0 && prior[0].LicenseStatus == types.LicenseLapsed {
			licenseStatus = types.LicenseLapsed
			readOnly = true
		}
	} else if !st.Valid {
		licenseStatus = types.LicenseLapsed
		readOnly = true
	}

	mentor := false
	for _, m := range s.cfg.MentorEmails {
		if strings.EqualFold(strings.TrimSpace(m), email) {
			mentor = true
			break
		}
	}

	user, err := s.users.UpsertByEmail(dbc, &types.User{
		Email:         email,
		FullName:      fullName,
		Consent:       true,
		LicenseStatus: licenseStatus,
		Mentor:        mentor,
	})
	if err != nil {
		return nil, err
	}

	session, err := s.issueSession(ctx, user, readOnly)
	if err != nil {
		return nil, err
	}

	s.audit.LogEvent(ctx, email, types.AuditLogin, map[string]any{
		"email":          email,
		"full_name":      fullName,
		"consent":        true,
		"license_status": licenseStatus,
	})
	return session, nil
}

func (s *authService) issueSession(ctx context.Context, user *types.User, readOnly bool) (*Session, error) {
	expiresAt := time.Now().Add(s.cfg.AccessTTL)
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Email:    user.Email,
		FullName: user.FullName,
		Mentor:   user.Mentor,
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecretKey))
	if err != nil {
		return nil, err
	}
	refreshToken := uuid.NewString()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: ctx, Tx: tx}
		existing, terr := s.tokens.GetByUserIDs(txc, []uuid.UUID{user.ID})
		if terr != nil {
			return terr
		}
		var stale []uuid.UUID
		for _, t := range existing {
			if time.Now().After(t.ExpiresAt) {
				stale = append(stale, t.ID)
			}
		}
		if terr := s.tokens.DeleteByIDs(txc, stale); terr != nil {
			return terr
		}
		_, terr = s.tokens.Create(txc, []*types.UserToken{{
			UserID:       user.ID,
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			ReadOnly:     readOnly,
			ExpiresAt:    time.Now().Add(s.cfg.RefreshTTL),
		}})
		return terr
	})
	if err != nil {
		return nil, err
	}

	return &Session{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		ReadOnly:     readOnly,
	}, nil
}

func (s *authService) Refresh(ctx context.Context) (*Session, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.RefreshToken == "" {
		return nil, apierr.Auth("no session to refresh")
	}
	dbc := dbctx.Context{Ctx: ctx}
	rows, err := s.tokens.GetByRefreshTokens(dbc, []string{rd.RefreshToken})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apierr.Auth("refresh token not recognized")
	}
	row := rows[0]
	if time.Now().After(row.ExpiresAt) {
		return nil, apierr.Auth("refresh token expired, log in again")
	}
	users, err := s.users.GetByIDs(dbc, []uuid.UUID{row.UserID})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, apierr.Auth("account no longer exists")
	}
	if err := s.tokens.DeleteByIDs(dbc, []uuid.UUID{row.ID}); err != nil {
		return nil, err
	}
	return s.issueSession(ctx, users[0], row.ReadOnly)
}

func (s *authService) Logout(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return nil
	}
	dbc := dbctx.Context{Ctx: ctx}
	rows, err := s.tokens.GetByAccessTokens(dbc, []string{rd.TokenString})
	if err != nil {
		return err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, t := range rows {
		ids = append(ids, t.ID)
	}
	return s.tokens.DeleteByIDs(dbc, ids)
}

func (s *authService) RefreshLicense(ctx context.Context) (license.Status, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil {
		return license.Status{}, apierr.Auth("no active session")
	}
	st, err := s.licenses.Validate(ctx, rd.Email)
	if err != nil {
		return license.Status{}, err
	}
	status := types.LicenseActive
	if !st.Valid {
		status = types.LicenseLapsed
	}
	dbc := dbctx.Context{Ctx: ctx}
	if err := s.users.UpdateLicenseStatus(dbc, rd.Email, status); err != nil {
		return license.Status{}, err
	}
	if err := s.tokens.SetReadOnlyByUserID(dbc, rd.UserID, !st.Valid); err != nil {
		return license.Status{}, err
	}
	s.audit.LogEvent(ctx, rd.Email, types.AuditLicenseRefresh, map[string]any{
		"email":  rd.Email,
		"valid":  st.Valid,
		"reason": st.Reason,
	})
	// A lapsed result asks the mentor to arrange renewal on the student's
	// behalf. Best effort, like every mentor notification.
	if !st.Valid {
		s.notify.Notify(map[string]any{
			"type":      "renewal_request",
			"email":     rd.Email,
			"full_name": rd.FullName,
			"reason":    st.Reason,
		})
	}
	return st, nil
}

func (s *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, apierr.Auth("missing access token")
	}
	var claims AuthClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apierr.Auth("unexpected signing method")
		}
		return []byte(s.cfg.JWTSecretKey), nil
	})
	if err != nil || !token.Valid {
		return ctx, apierr.Auth("invalid or expired access token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apierr.Auth("malformed token subject")
	}

	// The token row carries revocation and the degraded-mode flag. A valid
	// signature with no row means the session was logged out.
	dbc := dbctx.Context{Ctx: ctx}
	rows, err := s.tokens.GetByAccessTokens(dbc, []string{tokenString})
	if err != nil {
		return ctx, err
	}
	if len(rows) == 0 {
		return ctx, apierr.Auth("session revoked, log in again")
	}
	row := rows[0]

	rd := &requestdata.RequestData{
		TokenString:  tokenString,
		RefreshToken: row.RefreshToken,
		UserID:       userID,
		Email:        claims.Email,
		FullName:     claims.FullName,
		Mentor:       claims.Mentor,
		ReadOnly:     row.ReadOnly,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}
