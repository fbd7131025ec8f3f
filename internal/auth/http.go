// Copyright (c) 2026 LocaFleet. All rights reserved.
// Author: dev@locafleet.app

/*
HTTP delivery layer for authentication and account administration.

# Architecture

The handler acts as a thin mediation layer between the web and domain services:
  - Protocol: Standard RESTful JSON interface.
  - Security: Session bearer tokens, delivered via Authorization header or
    an HttpOnly cookie.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes, headers, JSON).
*/
package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/locafleet/rental-api/internal/platform/constants"
	"github.com/locafleet/rental-api/internal/platform/middleware"
	requestutil "github.com/locafleet/rental-api/internal/platform/request"
	"github.com/locafleet/rental-api/internal/platform/respond"
	"github.com/locafleet/rental-api/internal/platform/sec"
	"github.com/locafleet/rental-api/internal/platform/validate"
	"github.com/locafleet/rental-api/pkg/pagination"
)

// # Definitions & Constructors

// Handler implements authentication and account administration HTTP endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with the authentication endpoints.
//
// # Endpoints
//   - POST /login           : Authenticates and returns a session token.
//   - POST /logout          : Destroys the current session.
//   - GET  /session         : Returns the authenticated identity.
//   - POST /change-password : Rotates the caller's own password.
//   - POST /forgot-password : Initiates password recovery.
//   - POST /reset-password  : Completes password recovery.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/login", handler.login)
	router.Post("/forgot-password", handler.forgotPassword)
	router.Post("/reset-password", handler.resetPassword)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/logout", handler.logout)
		r.Get("/session", handler.session)
		r.Post("/change-password", handler.changePassword)
	})

	return router
}

// UserRoutes returns a [chi.Router] with the account administration endpoints.
// Every route requires the manage_users permission.
func (handler *Handler) UserRoutes() chi.Router {
	router := chi.NewRouter()

	router.Use(middleware.RequirePermission(sec.PermissionManageUsers))

	router.Post("/", handler.createUser)
	router.Get("/", handler.listUsers)
	router.Get("/{userID}", handler.getUser)
	router.Put("/{userID}/role", handler.changeRole)
	router.Post("/{userID}/deactivate", handler.deactivateUser)
	router.Post("/{userID}/activate", handler.activateUser)
	router.Post("/{userID}/reset-password", handler.resetUserPassword)

	return router
}

// # Request Payloads

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Username string `json:"username"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

type changeRoleRequest struct {
	Role string `json:"role"`
}

type adminResetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// # Authentication Endpoints

/*
Login authenticates a staff member and establishes a session.

POST /api/v1/auth/login

Description: Verifies credentials, applies brute-force accounting, and
injects a secure session cookie alongside the JSON token.

Request:
  - Body: loginRequest (Username, Password)

Response:
  - 200: Session token, expiry, and User profile
  - 401: ErrUnauthorized: Invalid credentials (generic, never detailed)
  - 503: StoreUnavailable: Persistence layer unreachable
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Login(request.Context(), LoginInput{
		Username:  input.Username,
		Password:  input.Password,
		UserAgent: request.UserAgent(),
		IPAddress: request.RemoteAddr,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    result.Token,
		Path:     constants.SessionCookiePath,
		Expires:  result.ExpiresAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	respond.OK(writer, map[string]any{
		FieldSessionToken: result.Token,
		FieldExpiresAt:    result.ExpiresAt,
		FieldUser:         result.User,
	})
}

/*
Logout terminates the current session.

POST /api/v1/auth/logout

Description: Destroys the session row (idempotent) and clears the cookie.

Response:
  - 204: No Content: Session terminated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if token := sessionToken(request); token != "" {
		if err := handler.authService.Logout(request.Context(), principal, token); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     constants.SessionCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	respond.NoContent(writer)
}

/*
Session returns the authenticated identity behind the presented token.

GET /api/v1/auth/session

Response:
  - 200: Principal: UserID, Username, Role
  - 401: ErrUnauthorized: No valid session
*/
func (handler *Handler) session(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"user_id":     principal.UserID,
		FieldUsername: principal.Username,
		FieldRole:     principal.Role,
		"permissions": principal.Role.Permissions(),
	})
}

/*
ChangePassword updates the authenticated user's own password.

POST /api/v1/auth/change-password

Description: Verifies the current password before applying the new one, then
destroys every other session of the account.

Request:
  - Body: changePasswordRequest (CurrentPassword, NewPassword)

Response:
  - 200: Success: Password changed
  - 401: ErrUnauthorized: Wrong current password
  - 400: ErrInvalidJSON: Weak password or validation failure
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	err = handler.authService.ChangePassword(
		request.Context(),
		principal,
		input.CurrentPassword,
		input.NewPassword,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password changed successfully",
	})
}

/*
ForgotPassword initiates the password recovery flow.

POST /api/v1/auth/forgot-password

Description: Issues a short-lived reset token when the account exists.
The response is identical for unknown accounts.

Request:
  - Body: forgotPasswordRequest (Username)

Response:
  - 200: Success: Generic acknowledgement
*/
func (handler *Handler) forgotPassword(writer http.ResponseWriter, request *http.Request) {
	var input forgotPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldUsername, input.Username)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	// TODO: deliver the token out-of-band once the notification service lands.
	_, err := handler.authService.RequestPasswordReset(request.Context(), input.Username)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "If this account exists, a reset token has been issued.",
	})
}

/*
ResetPassword completes the password recovery flow.

POST /api/v1/auth/reset-password

Description: Validates the reset token and updates the user's password.

Request:
  - Body: resetPasswordRequest (Token, NewPassword)

Response:
  - 200: Success: Password updated
  - 404: ErrNotFound: Invalid or expired token
*/
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := handler.authService.CompletePasswordReset(request.Context(), input.Token, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password updated successfully",
	})
}

// # Account Administration Endpoints

/*
CreateUser enrolls a new staff account.

POST /api/v1/users

Request:
  - Body: createUserRequest (Username, Password, Role, FullName, Email)

Response:
  - 201: User: Created account
  - 409: ErrConflict: Username already exists
  - 400: ErrInvalidJSON: Validation failure
*/
func (handler *Handler) createUser(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createUserRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	user, err := handler.authService.CreateUser(request.Context(), principal, CreateUserInput{
		Username: input.Username,
		Password: input.Password,
		Role:     sec.Role(input.Role),
		FullName: input.FullName,
		Email:    input.Email,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
ListUsers returns a page of staff accounts.

GET /api/v1/users?page=&limit=

Response:
  - 200: Paginated list of users
*/
func (handler *Handler) listUsers(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	users, total, err := handler.authService.ListUsers(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
GetUser returns a single staff account by ID.

GET /api/v1/users/{userID}

Response:
  - 200: User
  - 404: ErrNotFound
*/
func (handler *Handler) getUser(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.Param(request, "userID")

	user, err := handler.authService.GetUser(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
ChangeRole replaces a user's role.

PUT /api/v1/users/{userID}/role

Request:
  - Body: changeRoleRequest (Role)

Response:
  - 200: Success
  - 422: ErrUnprocessable: Demoting the last active administrator
*/
func (handler *Handler) changeRole(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changeRoleRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	userID := requestutil.Param(request, "userID")
	if err := handler.authService.ChangeRole(request.Context(), principal, userID, sec.Role(input.Role)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Role updated successfully",
	})
}

/*
DeactivateUser disables an account and destroys its sessions.

POST /api/v1/users/{userID}/deactivate

Response:
  - 200: Success
  - 422: ErrUnprocessable: Deactivating the last active administrator
*/
func (handler *Handler) deactivateUser(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID := requestutil.Param(request, "userID")
	if err := handler.authService.Deactivate(request.Context(), principal, userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "User deactivated",
	})
}

/*
ActivateUser re-enables a previously deactivated account.

POST /api/v1/users/{userID}/activate

Response:
  - 200: Success
*/
func (handler *Handler) activateUser(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID := requestutil.Param(request, "userID")
	if err := handler.authService.Activate(request.Context(), principal, userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "User activated",
	})
}

/*
ResetUserPassword replaces a user's password on their behalf.

POST /api/v1/users/{userID}/reset-password

Request:
  - Body: adminResetPasswordRequest (NewPassword)

Response:
  - 200: Success
  - 404: ErrNotFound
*/
func (handler *Handler) resetUserPassword(writer http.ResponseWriter, request *http.Request) {
	principal, err := requestutil.RequiredPrincipal(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input adminResetPasswordRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	userID := requestutil.Param(request, "userID")
	if err := handler.authService.AdminResetPassword(request.Context(), principal, userID, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password reset successfully",
	})
}

// sessionToken extracts the bearer token the same way the middleware does,
// so logout destroys exactly the session that authenticated the request.
func sessionToken(request *http.Request) string {
	header := request.Header.Get(constants.HeaderAuthorization)
	if header != "" {
		const prefix = "Bearer "
		if len(header) > len(prefix) && header[:len(prefix)] == prefix {
			return header[len(prefix):]
		}
	}

	cookie, err := request.Cookie(constants.SessionCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return ""
}
