package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jobboard/internal/policy"
	"jobboard/internal/util"
	"jobboard/pkg/auth"
	"jobboard/pkg/domain"
	"jobboard/pkg/store"
)

// RegisterInput is the sign-up request.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      domain.UserRole
}

// ProfileUpdate carries the optional profile fields a user may change.
type ProfileUpdate struct {
	Email        *string
	FirstName    *string
	LastName     *string
	ProfileImage *string
}

// Register creates an account and returns it with a fresh token.
// The first account ever registered becomes admin.
func (a *App) Register(ctx context.Context, in RegisterInput) (domain.User, string, error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return domain.User{}, "", invalidInput("email is required")
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		return domain.User{}, "", invalidInput(err.Error())
	}
	role := in.Role
	switch role {
	case "":
		role = domain.RoleUser
	case domain.RoleUser, domain.RoleEmployer:
	default:
		return domain.User{}, "", invalidInput("role must be user or employer")
	}
	if a.reservedEmail(email) {
		return domain.User{}, "", ErrUserExists
	}
	_, exists, err := a.store.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.User{}, "", wrap("check email", err)
	}
	if exists {
		return domain.User{}, "", ErrUserExists
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, "", wrap("hash password", err)
	}
	user, err := a.createUser(ctx, domain.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         role,
	})
	if err != nil {
		return domain.User{}, "", err
	}
	token, err := a.sessions.NewSession(user.ID, user.Role)
	if err != nil {
		return domain.User{}, "", wrap("issue token", err)
	}
	return user, token, nil
}

// Login verifies credentials and issues a token. Demo accounts are accepted
// only when a demo directory is configured.
func (a *App) Login(ctx context.Context, email, password string) (domain.User, string, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.User{}, "", ErrInvalidCredentials
	}
	if demoUser, ok := a.demo.Authenticate(email, password); ok {
		token, err := a.sessions.NewSession(demoUser.ID, demoUser.Role)
		if err != nil {
			return domain.User{}, "", wrap("issue token", err)
		}
		return demoUser, token, nil
	}
	user, ok, err := a.store.GetUserByEmail(ctx, email)
	if err != nil {
		return domain.User{}, "", wrap("load user", err)
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", ErrInvalidCredentials
	}
	token, err := a.sessions.NewSession(user.ID, user.Role)
	if err != nil {
		return domain.User{}, "", wrap("issue token", err)
	}
	return user, token, nil
}

// Authenticate resolves a bearer token to the current user record. The role
// in the returned user is the stored one, not the role baked into the token.
func (a *App) Authenticate(ctx context.Context, token string) (domain.User, error) {
	sess, err := a.sessions.VerifySession(token)
	if err != nil {
		if errors.Is(err, store.ErrInvalidToken) {
			return domain.User{}, ErrTokenInvalid
		}
		return domain.User{}, wrap("verify token", err)
	}
	if auth.IsDemoID(sess.UserID) {
		u, ok := a.demo.Lookup(sess.UserID)
		if !ok {
			return domain.User{}, ErrTokenInvalid
		}
		return u, nil
	}
	user, ok, err := a.store.GetUserByID(ctx, sess.UserID)
	if err != nil {
		return domain.User{}, wrap("load user", err)
	}
	if !ok {
		return domain.User{}, ErrTokenInvalid
	}
	return user, nil
}

// Logout revokes the presented token.
func (a *App) Logout(token string) error {
	return a.sessions.DeleteSession(token)
}

// Profile returns the caller's current record.
func (a *App) Profile(ctx context.Context, actor domain.User) (domain.User, error) {
	if auth.IsDemoID(actor.ID) {
		return actor, nil
	}
	user, ok, err := a.store.GetUserByID(ctx, actor.ID)
	if err != nil {
		return domain.User{}, wrap("load user", err)
	}
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile applies the given profile fields to the caller's record.
func (a *App) UpdateProfile(ctx context.Context, actor domain.User, in ProfileUpdate) (domain.User, error) {
	user, err := a.Profile(ctx, actor)
	if err != nil {
		return domain.User{}, err
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		if email == "" {
			return domain.User{}, invalidInput("email cannot be empty")
		}
		if email != user.Email {
			if a.reservedEmail(email) {
				return domain.User{}, ErrEmailTaken
			}
			other, taken, err := a.store.GetUserByEmail(ctx, email)
			if err != nil {
				return domain.User{}, wrap("check email", err)
			}
			if taken && other.ID != user.ID {
				return domain.User{}, ErrEmailTaken
			}
			user.Email = email
		}
	}
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.ProfileImage != nil {
		user.ProfileImage = strings.TrimSpace(*in.ProfileImage)
	}
	user.UpdatedAt = a.now()
	if err := a.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrEmailTaken
		}
		return domain.User{}, wrap("update user", err)
	}
	return a.Profile(ctx, user)
}

// ChangePassword replaces the caller's password, revokes the presented token
// and every token issued before the change, and returns a fresh one.
func (a *App) ChangePassword(ctx context.Context, actor domain.User, presentedToken, currentPassword, newPassword string) (string, error) {
	if err := auth.ValidatePassword(newPassword); err != nil {
		return "", invalidInput(err.Error())
	}
	user, err := a.Profile(ctx, actor)
	if err != nil {
		return "", err
	}
	if !auth.CheckPassword(currentPassword, user.PasswordHash) {
		return "", invalidInput("current password is incorrect")
	}
	if auth.CheckPassword(newPassword, user.PasswordHash) {
		return "", invalidInput("new password must be different from the current one")
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return "", wrap("hash password", err)
	}
	changedAt := a.now()
	user.PasswordHash = hash
	user.UpdatedAt = changedAt
	if err := a.store.UpdateUser(ctx, user); err != nil {
		return "", wrap("update password", err)
	}
	if err := a.sessions.DeleteSession(presentedToken); err != nil {
		return "", wrap("revoke token", err)
	}
	if err := a.revokeAllUserTokens(user.ID, changedAt); err != nil {
		return "", err
	}
	token, err := a.sessions.NewSession(user.ID, user.Role)
	if err != nil {
		return "", wrap("issue token", err)
	}
	return token, nil
}

// SavedJobs lists the jobs the caller bookmarked, most recently saved first.
func (a *App) SavedJobs(ctx context.Context, actor domain.User) ([]domain.Job, error) {
	ids, err := a.store.ListSavedJobIDs(ctx, actor.ID)
	if err != nil {
		return nil, wrap("list saved jobs", err)
	}
	jobs, err := a.store.ListJobsByIDs(ctx, ids)
	if err != nil {
		return nil, wrap("load saved jobs", err)
	}
	byID := make(map[string]domain.Job, len(jobs))
	for _, j := range jobs {
		byID[j.ID] = j
	}
	out := make([]domain.Job, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		if j, ok := byID[ids[i]]; ok {
			out = append(out, a.withExcerpt(j))
		}
	}
	return out, nil
}

// ListUsers returns every account. Admin only.
func (a *App) ListUsers(ctx context.Context, actor domain.User) ([]domain.User, error) {
	if err := policy.RequireRole(policy.SubjectOf(actor), domain.RoleAdmin); err != nil {
		return nil, err
	}
	users, err := a.store.ListUsers(ctx)
	if err != nil {
		return nil, wrap("list users", err)
	}
	return users, nil
}

// UpdateUserRole changes another account's role. Admin only; an admin cannot
// change its own role.
func (a *App) UpdateUserRole(ctx context.Context, actor domain.User, userID string, role domain.UserRole) (domain.User, error) {
	if err := policy.RequireRole(policy.SubjectOf(actor), domain.RoleAdmin); err != nil {
		return domain.User{}, err
	}
	if !role.Valid() {
		return domain.User{}, invalidInput("role must be user, employer or admin")
	}
	if userID == actor.ID {
		return domain.User{}, ErrOwnRoleChange
	}
	target, ok, err := a.store.GetUserByID(ctx, userID)
	if err != nil {
		return domain.User{}, wrap("load user", err)
	}
	if !ok {
		return domain.User{}, ErrUserNotFound
	}
	if target.Role == role {
		return target, nil
	}
	target.Role = role
	target.UpdatedAt = a.now()
	if err := a.store.UpdateUser(ctx, target); err != nil {
		return domain.User{}, wrap("update role", err)
	}
	return target, nil
}

func (a *App) revokeAllUserTokens(userID string, since time.Time) error {
	revoker, ok := a.sessions.(store.UserSessionRevoker)
	if !ok {
		return nil
	}
	if err := revoker.RevokeUserSessions(userID, since); err != nil {
		return wrap("revoke user tokens", err)
	}
	return nil
}

func (a *App) createUser(ctx context.Context, u domain.User) (domain.User, error) {
	now := a.now()
	u.ID = util.NewID()
	u.SavedJobs = []string{}
	u.CreatedAt = now
	u.UpdatedAt = now
	stored, err := a.store.RegisterUser(ctx, u)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrUserExists
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return stored, nil
}

// reservedEmail reports whether email belongs to the demo domain while demo
// accounts are enabled.
func (a *App) reservedEmail(email string) bool {
	return a.demo != nil && strings.HasSuffix(email, "@"+auth.DemoEmailDomain)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
