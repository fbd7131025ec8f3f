// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/locafleet/rental-api/internal/audit"
	"github.com/locafleet/rental-api/internal/platform/apperr"
	"github.com/locafleet/rental-api/internal/platform/constants"
	"github.com/locafleet/rental-api/internal/platform/metrics"
	"github.com/locafleet/rental-api/internal/platform/sec"
	"github.com/locafleet/rental-api/internal/platform/validate"
	"github.com/locafleet/rental-api/pkg/pagination"
	"github.com/locafleet/rental-api/pkg/username"
	"github.com/locafleet/rental-api/pkg/uuid"
)

// # Contracts & Types

// Auditor defines the contract for recording security audit events.
// Implemented by [audit.Logger]; recording must never block or fail the caller.
type Auditor interface {
	Record(record audit.Record)
}

// Policy holds the tunable security thresholds, fixed at startup from
// configuration.
type Policy struct {
	// LockoutThreshold is the failed-attempt count at which an account locks.
	LockoutThreshold int
	// LockoutDuration is how long a triggered lockout lasts.
	LockoutDuration time.Duration
	// BcryptCost is the password hash work factor. Zero selects the default.
	BcryptCost int
}

// normalized fills zero-valued policy fields with the defaults.
func (policy Policy) normalized() Policy {
	if policy.LockoutThreshold <= 0 {
		policy.LockoutThreshold = DefaultLockoutThreshold
	}
	if policy.LockoutDuration <= 0 {
		policy.LockoutDuration = DefaultLockoutDuration
	}
	return policy
}

// Service implements the authentication and account administration use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to verification order,
// lockout accounting, or the failure taxonomy must be reviewed by the
// security team.
type Service struct {
	userRepository       UserRepository
	resetTokenRepository ResetTokenRepository
	sessions             *Sessions
	auditor              Auditor
	policy               Policy

	// now is injectable for tests; production uses time.Now.
	now func() time.Time

	// checkPassword is injectable so tests can observe that every login
	// path performs exactly one comparison; production uses bcrypt.
	checkPassword func(password, hash string) bool
}

// NewService constructs the authentication [Service] with its dependencies.
func NewService(
	userRepo UserRepository,
	resetRepo ResetTokenRepository,
	sessions *Sessions,
	auditor Auditor,
	policy Policy,
) *Service {
	return &Service{
		userRepository:       userRepo,
		resetTokenRepository: resetRepo,
		sessions:             sessions,
		auditor:              auditor,
		policy:               policy.normalized(),
		now:                  time.Now,
		checkPassword:        sec.CheckPasswordHash,
	}
}

// Sessions exposes the session manager for middleware wiring.
func (service *Service) Sessions() *Sessions {
	return service.sessions
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Username  string
	Password  string
	IPAddress string
	UserAgent string
}

// LoginResult represents a successfully established session.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}

/*
Login verifies credentials and establishes a new session.

Description: Runs the full authentication flow — account resolution, lockout
check, constant-work password verification, atomic failure accounting, and
session issuance.

# Enumeration Resistance

Unknown accounts, inactive accounts, locked accounts, and wrong passwords
all cost one bcrypt comparison and all surface the same client-facing
message. Only the internal error code and the audit trail distinguish them.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginResult: The session token, its expiry, and the account
  - err: InvalidCredentials, AccountLocked, or StoreUnavailable
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginResult, error) {

	flow := NewFlow()
	if err := flow.Begin(); err != nil {
		return nil, fmt.Errorf("auth_service_login_flow_failed: %w", err)
	}

	loginName := username.Canonical(input.Username)

	// ── 1. Resolve the account ──
	user, err := service.userRepository.FindByUsername(context, loginName)
	if err != nil {
		if apperr.IsCode(err, apperr.CodeStoreUnavailable) {
			metrics.LoginsTotal.WithLabelValues("store_unavailable").Inc()
			return nil, err
		}

		// Unknown account: burn one bcrypt comparison so the response time
		// matches the known-account path.
		_ = flow.Fail()
		service.checkPassword(input.Password, dummyPasswordHash)
		service.auditFailure(loginName, "", "unknown account", input.IPAddress)
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, apperr.InvalidCredentials()
	}

	// ── 2. Reject locked accounts before verifying anything ──
	if user.LockedAt(service.now()) {
		_ = flow.Fail()
		service.checkPassword(input.Password, dummyPasswordHash)
		service.auditFailure(user.Username, user.ID, "account locked", input.IPAddress)
		metrics.LoginsTotal.WithLabelValues("locked").Inc()
		return nil, apperr.AccountLocked()
	}

	// ── 3. Reject inactive accounts, indistinguishably ──
	if !user.IsActive {
		_ = flow.Fail()
		service.checkPassword(input.Password, dummyPasswordHash)
		service.auditFailure(user.Username, user.ID, "account inactive", input.IPAddress)
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return nil, apperr.InvalidCredentials()
	}

	// ── 4. Verify the password ──
	if !service.checkPassword(input.Password, user.PasswordHash) {
		_ = flow.Fail()
		return nil, service.recordFailedAttempt(context, user, input.IPAddress)
	}

	// ── 5. Success: reset accounting and establish the session ──
	if err := service.userRepository.RecordSuccess(context, user.ID, service.now()); err != nil {
		metrics.LoginsTotal.WithLabelValues("store_unavailable").Inc()
		return nil, err
	}

	token, session, err := service.sessions.Create(context, user, input.IPAddress, input.UserAgent)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("store_unavailable").Inc()
		return nil, err
	}

	if err := flow.Succeed(); err != nil {
		return nil, fmt.Errorf("auth_service_login_flow_failed: %w", err)
	}

	service.auditor.Record(audit.Record{
		ActorID:   user.ID,
		Username:  user.Username,
		Action:    audit.ActionLogin,
		Resource:  user.ID,
		IPAddress: input.IPAddress,
	})
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	return &LoginResult{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		User:      user,
	}, nil
}

// recordFailedAttempt runs the atomic failure accounting for a wrong password
// and emits the matching audit records. Always returns a client-safe error.
func (service *Service) recordFailedAttempt(context context.Context, user *User, ipAddress string) error {

	lockedUntil := service.now().Add(service.policy.LockoutDuration)
	attempts, lockedNow, err := service.userRepository.RecordFailure(
		context, user.ID, service.policy.LockoutThreshold, lockedUntil,
	)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("store_unavailable").Inc()
		return err
	}

	service.auditFailure(user.Username, user.ID, fmt.Sprintf("wrong password (attempt %d)", attempts), ipAddress)

	if lockedNow {
		// Exactly one lock event per transition, even under concurrent attempts.
		service.auditor.Record(audit.Record{
			ActorID:   user.ID,
			Username:  user.Username,
			Action:    audit.ActionAccountLocked,
			Resource:  user.ID,
			Detail:    fmt.Sprintf("locked until %s", lockedUntil.Format(time.RFC3339)),
			IPAddress: ipAddress,
		})
		metrics.LockoutsTotal.Inc()
	}

	// The attempt that trips the lock still reads as bad credentials; only
	// subsequent attempts observe the locked state.
	metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
	return apperr.InvalidCredentials()
}

// auditFailure records one failed-login audit entry. The resource is the
// targeted account's ID, empty when the login named an unknown account.
func (service *Service) auditFailure(loginName, resource, detail, ipAddress string) {
	service.auditor.Record(audit.Record{
		Username:  loginName,
		Action:    audit.ActionLoginFailed,
		Resource:  resource,
		Detail:    detail,
		IPAddress: ipAddress,
	})
}

/*
Logout destroys the caller's session.

Description: Idempotent — logging out an already-destroyed session succeeds.

Parameters:
  - context: context.Context
  - principal: *sec.Principal
  - token: string

Returns:
  - err: StoreUnavailable only
*/
func (service *Service) Logout(context context.Context, principal *sec.Principal, token string) error {

	if err := service.sessions.Destroy(context, token); err != nil {
		return err
	}

	service.auditor.Record(audit.Record{
		ActorID:  principal.UserID,
		Username: principal.Username,
		Action:   audit.ActionLogout,
		Resource: principal.UserID,
	})

	return nil
}

// # Bootstrap

/*
Bootstrap creates the initial administrator account if, and only if, the
user table is empty.

Description: Runs once at startup. The default credentials come from
configuration and must be rotated immediately in production.

Parameters:
  - context: context.Context
  - adminUsername: string
  - adminPassword: string

Returns:
  - bool: True if the bootstrap account was created
  - err: Persistence failures
*/
func (service *Service) Bootstrap(context context.Context, adminUsername, adminPassword string) (bool, error) {

	total, err := service.userRepository.CountAll(context)
	if err != nil {
		return false, err
	}
	if total > 0 {
		return false, nil
	}

	hashedPassword, err := sec.HashPassword(adminPassword, service.policy.BcryptCost)
	if err != nil {
		return false, fmt.Errorf("auth_service_bootstrap_hash_failed: %w", err)
	}

	admin := &User{
		ID:           uuid.New(),
		Username:     username.Canonical(adminUsername),
		PasswordHash: hashedPassword,
		Role:         sec.RoleAdmin,
		FullName:     "Administrator",
		IsActive:     true,
	}

	if err := service.userRepository.Create(context, admin); err != nil {
		return false, err
	}

	service.auditor.Record(audit.Record{
		ActorID:  audit.SystemActor,
		Username: admin.Username,
		Action:   audit.ActionUserCreated,
		Resource: admin.ID,
		Detail:   "bootstrap administrator",
	})

	return true, nil
}

// # Account Administration

// CreateUserInput holds the data required to enroll a new staff account.
type CreateUserInput struct {
	Username string
	Password string
	Role     sec.Role
	FullName string
	Email    string
}

/*
CreateUser validates, hashes, and persists a brand new staff account.

Parameters:
  - context: context.Context
  - actor: *sec.Principal (The administrator performing the operation)
  - input: CreateUserInput

Returns:
  - *User: Created entity
  - err: Validation, Conflict (if username exists), or storage errors
*/
func (service *Service) CreateUser(context context.Context, actor *sec.Principal, input CreateUserInput) (*User, error) {

	loginName := username.Canonical(input.Username)

	validator := &validate.Validator{}
	validator.
		Required(FieldUsername, loginName).
		Username(FieldUsername, loginName).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, constants.MinPasswordLength).
		Custom(FieldRole, !input.Role.Valid(), "Unknown role")
	if input.Email != "" {
		validator.Email(FieldEmail, input.Email)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Verify username uniqueness. Return a client-safe Conflict err.
	_, err := service.userRepository.FindByUsername(context, loginName)
	if err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}
	if apperr.IsCode(err, apperr.CodeStoreUnavailable) {
		return nil, err
	}

	// Prevent storing plain-text passwords.
	hashedPassword, err := sec.HashPassword(input.Password, service.policy.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("auth_service_create_user_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuid.New(),
		Username:     loginName,
		PasswordHash: hashedPassword,
		Role:         input.Role,
		FullName:     strings.TrimSpace(input.FullName),
		Email:        strings.TrimSpace(input.Email),
		IsActive:     true,
	}

	if err := service.userRepository.Create(context, user); err != nil {
		return nil, err
	}

	service.auditor.Record(audit.Record{
		ActorID:  actor.UserID,
		Username: actor.Username,
		Action:   audit.ActionUserCreated,
		Resource: user.ID,
		Detail:   fmt.Sprintf("created %q with role %s", user.Username, user.Role),
	})

	return user, nil
}

/*
GetUser returns a single account by ID.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *User: Hydrated entity
  - err: NotFound or retrieval failures
*/
func (service *Service) GetUser(context context.Context, userID string) (*User, error) {
	return service.userRepository.FindByID(context, userID)
}

/*
ListUsers returns a page of staff accounts.

Parameters:
  - context: context.Context
  - params: pagination.Params

Returns:
  - []User: Page of accounts
  - int: Total account count
  - err: Retrieval failures
*/
func (service *Service) ListUsers(context context.Context, params pagination.Params) ([]User, int, error) {
	return service.userRepository.List(context, params)
}

/*
ChangeRole replaces a user's role.

Description: Demoting the last active administrator is refused — the system
must always retain at least one account able to manage users. The target's
sessions are destroyed so the new permission set applies immediately.

Parameters:
  - context: context.Context
  - actor: *sec.Principal
  - userID: string
  - newRole: sec.Role

Returns:
  - err: Validation, Unprocessable (last admin), or storage errors
*/
func (service *Service) ChangeRole(context context.Context, actor *sec.Principal, userID string, newRole sec.Role) error {

	if !newRole.Valid() {
		return validate.RequiredError(FieldRole, "Unknown role")
	}

	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	if user.Role == newRole {
		return nil
	}

	// Last-admin safeguard: never demote the only remaining active admin.
	if user.Role == sec.RoleAdmin && user.IsActive {
		admins, err := service.userRepository.CountActiveAdmins(context)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return apperr.Unprocessable("Cannot demote the last active administrator")
		}
	}

	if err := service.userRepository.UpdateRole(context, userID, newRole); err != nil {
		return err
	}

	// Destroy the target's sessions so stale permissions die immediately.
	if err := service.sessions.DestroyAllForUser(context, userID); err != nil {
		return err
	}

	service.auditor.Record(audit.Record{
		ActorID:  actor.UserID,
		Username: actor.Username,
		Action:   audit.ActionRoleChanged,
		Resource: user.ID,
		Detail:   fmt.Sprintf("%q: %s -> %s", user.Username, user.Role, newRole),
	})

	return nil
}

/*
Deactivate disables a staff account and destroys all of its sessions.

Description: Deactivating the last active administrator is refused.
Deactivation is reversible via Activate; it never deletes data.

Parameters:
  - context: context.Context
  - actor: *sec.Principal
  - userID: string

Returns:
  - err: NotFound, Unprocessable (last admin), or storage errors
*/
func (service *Service) Deactivate(context context.Context, actor *sec.Principal, userID string) error {

	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	if !user.IsActive {
		return nil
	}

	// Last-admin safeguard: the system must retain a user manager.
	if user.Role == sec.RoleAdmin {
		admins, err := service.userRepository.CountActiveAdmins(context)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return apperr.Unprocessable("Cannot deactivate the last active administrator")
		}
	}

	if err := service.userRepository.SetActive(context, userID, false); err != nil {
		return err
	}

	// Immediate effect: no grace period for existing sessions.
	if err := service.sessions.DestroyAllForUser(context, userID); err != nil {
		return err
	}

	service.auditor.Record(audit.Record{
		ActorID:  actor.UserID,
		Username: actor.Username,
		Action:   audit.ActionUserDeactivated,
		Resource: user.ID,
		Detail:   fmt.Sprintf("deactivated %q", user.Username),
	})

	return nil
}

/*
Activate re-enables a previously deactivated account.

Parameters:
  - context: context.Context
  - actor: *sec.Principal
  - userID: string

Returns:
  - err: NotFound or storage errors
*/
func (service *Service) Activate(context context.Context, actor *sec.Principal, userID string) error {

	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	if user.IsActive {
		return nil
	}

	if err := service.userRepository.SetActive(context, userID, true); err != nil {
		return err
	}

	service.auditor.Record(audit.Record{
		ActorID:  actor.UserID,
		Username: actor.Username,
		Action:   audit.ActionUserActivated,
		Resource: user.ID,
		Detail:   fmt.Sprintf("activated %q", user.Username),
	})

	return nil
}

// # Password Management

/*
AdminResetPassword replaces a user's password on their behalf.

Description: Clears any lockout state (the failed attempts belonged to the
old password) and destroys all of the target's sessions.

Parameters:
  - context: context.Context
  - actor: *sec.Principal
  - userID: string
  - newPassword: string

Returns:
  - err: Validation, NotFound, or storage errors
*/
func (service *Service) AdminResetPassword(context context.Context, actor *sec.Principal, userID, newPassword string) error {

	validator := &validate.Validator{}
	validator.
		Required(FieldNewPassword, newPassword).
		MinLen(FieldNewPassword, newPassword, constants.MinPasswordLength)
	if err := validator.Err(); err != nil {
		return err
	}

	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	hashedPassword, err := sec.HashPassword(newPassword, service.policy.BcryptCost)
	if err != nil {
		return fmt.Errorf("auth_service_admin_reset_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return err
	}

	// The old password's failed attempts are meaningless against the new one.
	if err := service.userRepository.ResetLockout(context, userID); err != nil {
		return err
	}

	// Security cleanup: every outstanding session dies with the old password.
	if err := service.sessions.DestroyAllForUser(context, userID); err != nil {
		return err
	}

	service.auditor.Record(audit.Record{
		ActorID:  actor.UserID,
		Username: actor.Username,
		Action:   audit.ActionPasswordReset,
		Resource: user.ID,
		Detail:   fmt.Sprintf("reset password for %q", user.Username),
	})

	return nil
}

/*
ChangePassword allows an authenticated user to rotate their own password.

Description: Verifies the current password and then destroys all OTHER
sessions, so a stolen session cannot outlive a password rotation while the
caller stays logged in.

Parameters:
  - context: context.Context
  - principal: *sec.Principal
  - currentPassword: string
  - newPassword: string

Returns:
  - err: Unauthorized (wrong current password) or storage failures
*/
func (service *Service) ChangePassword(context context.Context, principal *sec.Principal, currentPassword, newPassword string) error {

	validator := &validate.Validator{}
	validator.
		Required(FieldCurrentPassword, currentPassword).
		Required(FieldNewPassword, newPassword).
		MinLen(FieldNewPassword, newPassword, constants.MinPasswordLength)
	if err := validator.Err(); err != nil {
		return err
	}

	user, err := service.userRepository.FindByID(context, principal.UserID)
	if err != nil {
		return err
	}

	// Verify the current password before allowing the change.
	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	hashedPassword, err := sec.HashPassword(newPassword, service.policy.BcryptCost)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, user.ID, hashedPassword); err != nil {
		return err
	}

	// Security side effect: force re-login on every other device.
	if err := service.sessions.DestroyOthers(context, user.ID, principal.SessionTokenHash); err != nil {
		return err
	}

	service.auditor.Record(audit.Record{
		ActorID:  user.ID,
		Username: user.Username,
		Action:   audit.ActionPasswordChanged,
		Resource: user.ID,
	})

	return nil
}

// # Password Recovery

/*
RequestPasswordReset initiates the forgot-password flow.

Description: Generates a secure token and saves it to Redis with a TTL.
Unknown usernames succeed silently to prevent enumeration; the caller
receives an empty token in that case.

Parameters:
  - context: context.Context
  - loginName: string

Returns:
  - string: The reset token, or empty for unknown accounts
  - err: Generation or storage failures
*/
func (service *Service) RequestPasswordReset(context context.Context, loginName string) (string, error) {

	user, err := service.userRepository.FindByUsername(context, username.Canonical(loginName))
	if err != nil {
		if apperr.IsCode(err, apperr.CodeStoreUnavailable) {
			return "", err
		}
		// Unknown account: succeed silently, no enumeration oracle.
		return "", nil
	}

	token, err := sec.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return "", fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	if err := service.resetTokenRepository.Set(context, token, user.ID, ResetTokenTTL); err != nil {
		return "", fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	service.auditor.Record(audit.Record{
		ActorID:  user.ID,
		Username: user.Username,
		Action:   audit.ActionResetRequested,
		Resource: user.ID,
	})

	return token, nil
}

/*
CompletePasswordReset finishes the forgot-password flow.

Description: Verifies the token, hashes the new password, updates the store,
clears lockout state, and destroys every active session for the account.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string

Returns:
  - err: Validation, NotFound (bad token), or update failures
*/
func (service *Service) CompletePasswordReset(context context.Context, token, newPassword string) error {

	validator := &validate.Validator{}
	validator.
		Required(FieldToken, token).
		Required(FieldNewPassword, newPassword).
		MinLen(FieldNewPassword, newPassword, constants.MinPasswordLength)
	if err := validator.Err(); err != nil {
		return err
	}

	userID, err := service.resetTokenRepository.Get(context, token)
	if err != nil {
		return err
	}

	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	hashedPassword, err := sec.HashPassword(newPassword, service.policy.BcryptCost)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}

	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return err
	}

	if err := service.userRepository.ResetLockout(context, userID); err != nil {
		return err
	}

	// Security cleanup: destroy EVERY active session for this user.
	_ = service.sessions.DestroyAllForUser(context, userID)

	// Delete the used token so it cannot be replayed.
	_ = service.resetTokenRepository.Delete(context, token)

	service.auditor.Record(audit.Record{
		ActorID:  user.ID,
		Username: user.Username,
		Action:   audit.ActionPasswordReset,
		Resource: user.ID,
		Detail:   "self-service reset",
	})

	return nil
}
