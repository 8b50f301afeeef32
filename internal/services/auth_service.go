package services

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	intconfig "github.com/mustafa2080/tourism-API/internal/config"
	"github.com/mustafa2080/tourism-API/internal/domain"
	"github.com/mustafa2080/tourism-API/internal/domain/models"
	"github.com/mustafa2080/tourism-API/internal/repositories"
	"github.com/mustafa2080/tourism-API/internal/utils"
)

const DefaultHashCost = 12

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

type AuthResult struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
}

type AuthService struct {
	DB       *sql.DB
	Env      intconfig.Env
	Tokens   TokenService
	Audit    AuditLogger
	Notifier Notifier
	// HashCost defaults to DefaultHashCost; tests lower it.
	HashCost int
	Now      func() time.Time
}

func (s AuthService) db() *sql.DB {
	if s.DB != nil {
		return s.DB
	}
	return intconfig.DB
}

func (s AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s AuthService) users() repositories.UserRepository {
	return repositories.UserRepository{DB: s.db()}
}

func (s AuthService) tokens() repositories.TokenRepository {
	return repositories.TokenRepository{DB: s.db()}
}

func (s AuthService) hash(password string) (string, error) {
	cost := s.HashCost
	if cost == 0 {
		cost = DefaultHashCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", domain.InternalError{Msg: "failed to hash password", Err: err}
	}
	return string(h), nil
}

func (s AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	return s.register(ctx, in, domain.RoleUser)
}

// RegisterAdmin creates a privileged account when secret matches ADMIN_SECRET.
func (s AuthService) RegisterAdmin(ctx context.Context, in RegisterInput, role domain.Role, secret string) (AuthResult, error) {
	expected := s.Env.AdminSecret
	if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(secret)) != 1 {
		return AuthResult{}, domain.UnauthorizedError{Msg: "Invalid admin secret"}
	}
	if role == "" {
		role = domain.RoleAdmin
	}
	if !role.Valid() {
		return AuthResult{}, domain.ValidationError{Field: "role", Msg: "Invalid role"}
	}
	return s.register(ctx, in, role)
}

func (s AuthService) register(ctx context.Context, in RegisterInput, role domain.Role) (AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	exists, err := s.users().EmailExists(ctx, email)
	if err != nil {
		return AuthResult{}, err
	}
	if exists {
		return AuthResult{}, domain.ConflictError{Resource: "User", Msg: "User with this email already exists"}
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return AuthResult{}, err
	}
	u := models.User{
		ID:           uuid.NewString(),
		Name:         utils.NormalizeSpace(in.Name),
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := s.users().Create(ctx, &u); err != nil {
		return AuthResult{}, err
	}

	res, err := s.issue(ctx, u)
	if err != nil {
		return AuthResult{}, err
	}
	s.audit(ctx, models.AuditEntry{
		ActorID:    u.ID,
		Action:     models.AuditUserRegistered,
		TargetType: models.TargetUser,
		TargetID:   u.ID,
		Metadata:   map[string]any{"email": u.Email, "role": string(u.Role)},
	})
	if s.Notifier != nil {
		summary := u.Summary()
		dispatch(ctx, "welcome", u.ID, func(ctx context.Context) (string, error) {
			return s.Notifier.SendWelcomeEmail(ctx, summary)
		})
	}
	return res, nil
}

func (s AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	u, err := s.users().GetByEmail(ctx, email)
	if domain.IsNotFound(err) {
		return AuthResult{}, domain.UnauthorizedError{Msg: "Invalid email or password"}
	}
	if err != nil {
		return AuthResult{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return AuthResult{}, domain.UnauthorizedError{Msg: "Invalid email or password"}
	}
	if !u.IsActive {
		return AuthResult{}, domain.UnauthorizedError{Msg: "Account is deactivated"}
	}
	res, err := s.issue(ctx, u)
	if err != nil {
		return AuthResult{}, err
	}
	s.audit(ctx, models.AuditEntry{
		ActorID:    u.ID,
		Action:     models.AuditUserLogin,
		TargetType: models.TargetUser,
		TargetID:   u.ID,
	})
	return res, nil
}

func (s AuthService) issue(ctx context.Context, u models.User) (AuthResult, error) {
	access, err := s.Tokens.IssueAccess(u.ID)
	if err != nil {
		return AuthResult{}, domain.InternalError{Msg: "failed to sign access token", Err: err}
	}
	value, exp, err := s.Tokens.NewRefresh()
	if err != nil {
		return AuthResult{}, domain.InternalError{Msg: "failed to generate refresh token", Err: err}
	}
	rt := models.RefreshToken{ID: uuid.NewString(), Token: value, UserID: u.ID, ExpiresAt: exp}
	if err := s.tokens().CreateRefresh(ctx, &rt); err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: u, AccessToken: access, RefreshToken: value}, nil
}

// Refresh exchanges a stored refresh token for a new access token. The
// refresh token itself stays valid until it expires or is revoked.
func (s AuthService) Refresh(ctx context.Context, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return "", domain.UnauthorizedError{Msg: "Refresh token required"}
	}
	rt, err := s.tokens().GetRefresh(ctx, token)
	if domain.IsNotFound(err) {
		return "", domain.UnauthorizedError{Msg: "Invalid refresh token"}
	}
	if err != nil {
		return "", err
	}
	if !rt.ExpiresAt.After(s.now()) {
		if err := s.tokens().DeleteRefresh(ctx, token); err != nil {
			return "", err
		}
		return "", domain.UnauthorizedError{Msg: "Refresh token expired"}
	}
	access, err := s.Tokens.IssueAccess(rt.UserID)
	if err != nil {
		return "", domain.InternalError{Msg: "failed to sign access token", Err: err}
	}
	return access, nil
}

func (s AuthService) Logout(ctx context.Context, userID, token string) error {
	if token != "" {
		if err := s.tokens().DeleteRefresh(ctx, token); err != nil {
			return err
		}
	}
	if userID != "" {
		s.audit(ctx, models.AuditEntry{
			ActorID:    userID,
			Action:     models.AuditUserLogout,
			TargetType: models.TargetUser,
			TargetID:   userID,
		})
	}
	return nil
}

func (s AuthService) Me(ctx context.Context, userID string) (models.User, error) {
	return s.users().GetByID(ctx, userID)
}

// Authenticate resolves an access token to an active user.
func (s AuthService) Authenticate(ctx context.Context, accessToken string) (models.User, error) {
	claims, err := s.Tokens.ParseAccess(accessToken)
	if err != nil {
		return models.User{}, err
	}
	u, err := s.users().GetByID(ctx, claims.UserID)
	if domain.IsNotFound(err) {
		return models.User{}, domain.UnauthorizedError{Msg: "User not found"}
	}
	if err != nil {
		return models.User{}, err
	}
	if !u.IsActive {
		return models.User{}, domain.UnauthorizedError{Msg: "Account is deactivated"}
	}
	return u, nil
}

// ChangePassword verifies the current password and revokes every session.
func (s AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.users().GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
		return domain.ValidationError{Field: "currentPassword", Msg: "Current password is incorrect"}
	}
	hash, err := s.hash(next)
	if err != nil {
		return err
	}
	if err := s.users().UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}
	if err := s.tokens().DeleteRefreshForUser(ctx, u.ID); err != nil {
		return err
	}
	s.audit(ctx, models.AuditEntry{
		ActorID:    u.ID,
		Action:     models.AuditPasswordChange,
		TargetType: models.TargetUser,
		TargetID:   u.ID,
	})
	return nil
}

// ForgotPassword issues a reset token when the email is known. Unknown
// emails are not reported. The token is returned so development builds can
// echo it.
func (s AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	u, err := s.users().GetByEmail(ctx, email)
	if domain.IsNotFound(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if err := s.tokens().DeleteResetsForEmail(ctx, u.Email); err != nil {
		return "", err
	}
	value, err := utils.RandomHex(resetTokenBytes)
	if err != nil {
		return "", domain.InternalError{Msg: "failed to generate reset token", Err: err}
	}
	pr := models.PasswordReset{ID: uuid.NewString(), Email: u.Email, Token: value, ExpiresAt: s.now().Add(resetTokenTTL)}
	if err := s.tokens().CreateReset(ctx, &pr); err != nil {
		return "", err
	}
	if s.Notifier != nil {
		summary := u.Summary()
		dispatch(ctx, "password_reset", u.ID, func(ctx context.Context) (string, error) {
			return s.Notifier.SendPasswordResetEmail(ctx, summary, value)
		})
	}
	return value, nil
}

func (s AuthService) ResetPassword(ctx context.Context, token, password string) error {
	pr, err := s.tokens().GetReset(ctx, token)
	if domain.IsNotFound(err) {
		return domain.ValidationError{Field: "token", Msg: "Invalid or expired reset token"}
	}
	if err != nil {
		return err
	}
	if pr.Used {
		return domain.ValidationError{Field: "token", Msg: "Reset token has already been used"}
	}
	if !pr.ExpiresAt.After(s.now()) {
		return domain.ValidationError{Field: "token", Msg: "Reset token has expired"}
	}
	u, err := s.users().GetByEmail(ctx, pr.Email)
	if domain.IsNotFound(err) {
		return domain.ValidationError{Field: "token", Msg: "Invalid or expired reset token"}
	}
	if err != nil {
		return err
	}
	hash, err := s.hash(password)
	if err != nil {
		return err
	}
	if err := s.tokens().MarkResetUsed(ctx, pr.ID); err != nil {
		return err
	}
	if err := s.users().UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}
	if err := s.tokens().DeleteRefreshForUser(ctx, u.ID); err != nil {
		return err
	}
	s.audit(ctx, models.AuditEntry{
		ActorID:    u.ID,
		Action:     models.AuditPasswordReset,
		TargetType: models.TargetUser,
		TargetID:   u.ID,
	})
	return nil
}

func (s AuthService) audit(ctx context.Context, e models.AuditEntry) {
	if s.Audit != nil {
		s.Audit.LogAction(ctx, e)
	}
}
