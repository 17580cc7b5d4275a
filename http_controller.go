package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
)

// AuthControllerRoutes holds the route suffixes mounted under the API
// prefix (default /api/auth).
type AuthControllerRoutes struct {
	Signup         string
	Login          string
	Logout         string
	VerifyEmail    string
	CheckAuth      string
	ForgotPassword string
	ResetPassword  string
	ChangePassword string
}

type AuthController struct {
	Debug     bool
	Logger    Logger
	Accounts  Accounts
	Notifier  Notifier
	Challenge ChallengeVerifier
	Auther    *RouteAuthenticator
	Tokens    TokenService
	Config    Config
	Routes    *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Signup:         "/signup",
			Login:          "/login",
			Logout:         "/logout",
			VerifyEmail:    "/verify-email",
			CheckAuth:      "/check-auth",
			ForgotPassword: "/forgot-password",
			ResetPassword:  "/reset-password",
			ChangePassword: "/change-password",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Accounts == nil {
		panic("Missing Accounts store in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing HTTP authenticator in auth controller...")
	}

	if c.Tokens == nil {
		panic("Missing TokenService in auth controller...")
	}

	if c.Config == nil {
		panic("Missing Config in auth controller...")
	}

	c.Notifier = normalizeNotifier(c.Notifier)
	c.Challenge = normalizeChallenge(c.Challenge)

	return c
}

// RegisterAuthRoutes mounts the JSON API on the given router group,
// typically app.Group("/api/auth").
func RegisterAuthRoutes(app fiber.Router, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Signup, controller.SignupPost)
	app.Post(controller.Routes.Login, controller.LoginPost)
	app.Post(controller.Routes.Logout, controller.LogoutPost)
	app.Post(controller.Routes.VerifyEmail, controller.VerifyEmailPost)
	app.Get(controller.Routes.CheckAuth,
		controller.Auther.RequireAuth(controller.respondError),
		controller.CheckAuthGet,
	)
	app.Post(controller.Routes.ForgotPassword, controller.ForgotPasswordPost)
	app.Post(controller.Routes.ResetPassword+"/:token", controller.ResetPasswordPost)
	app.Post(controller.Routes.ChangePassword,
		controller.Auther.RequireAuth(controller.respondError),
		controller.ChangePasswordPost,
	)

	return controller
}

// SignupPayload is the JSON body for POST /signup.
type SignupPayload struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	Name           string `json:"name"`
	Phone          string `json:"phone"`
	ChallengeToken string `json:"recaptchaToken"`
}

// Validate will run validation rules
func (r SignupPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Password, validation.Required, validation.By(StrongPassword())),
	)
}

func (a *AuthController) SignupPost(c *fiber.Ctx) error {
	payload := new(SignupPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.respondParseError(c, err)
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidationError(c, err)
	}

	var res *SignupResponse

	signup := NewSignupHandler(a.Accounts, a.Notifier).
		WithChallengeVerifier(a.Challenge).
		WithBcryptCost(a.Config.GetBcryptCost()).
		WithLogger(a.Logger)

	err := signup.Execute(c.Context(), SignupMessage{
		Email:          payload.Email,
		Name:           payload.Name,
		Phone:          payload.Phone,
		Password:       payload.Password,
		ChallengeToken: payload.ChallengeToken,
		OnResponse: func(resp *SignupResponse) {
			res = resp
		},
	})
	if err != nil {
		a.Logger.Error("signup error: ", "error", err)
		return a.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "account created, verification email sent",
		"user":    res.Account,
	})
}

// LoginPayload is the JSON body for POST /login.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.respondParseError(c, err)
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidationError(c, err)
	}

	account, err := a.Auther.Login(c, payload.Email, payload.Password)
	if err != nil {
		return a.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "logged in",
		"user":    account,
	})
}

func (a *AuthController) LogoutPost(c *fiber.Ctx) error {
	a.Auther.Logout(c)
	return c.JSON(fiber.Map{
		"success": true,
		"message": "logged out",
	})
}

// VerifyEmailPayload is the JSON body for POST /verify-email.
type VerifyEmailPayload struct {
	Code string `json:"code"`
}

// Validate will run validation rules
func (r VerifyEmailPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Code, validation.Required, validation.Length(6, 6), is.Digit),
	)
}

func (a *AuthController) VerifyEmailPost(c *fiber.Ctx) error {
	payload := new(VerifyEmailPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.respondParseError(c, err)
	}

	if err := payload.Validate(); err != nil {
		// malformed codes get the uniform failure, not a validation map
		return a.respondError(c, ErrInvalidOrExpiredCode)
	}

	var res *VerifyEmailResponse

	verify := NewVerifyEmailHandler(a.Accounts, a.Notifier).WithLogger(a.Logger)

	err := verify.Execute(c.Context(), VerifyEmailMessage{
		Code: payload.Code,
		OnResponse: func(resp *VerifyEmailResponse) {
			res = resp
		},
	})
	if err != nil {
		return a.respondError(c, err)
	}

	if err := a.Auther.IssueSession(c, res.Account, a.Tokens); err != nil {
		a.Logger.Error("verify email session issue failed: ", "error", err)
		return a.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "email verified",
		"user":    res.Account,
	})
}

func (a *AuthController) CheckAuthGet(c *fiber.Ctx) error {
	account, ok := AccountFromFiber(c)
	if !ok {
		return a.respondError(c, ErrUnauthenticated)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    account,
	})
}

// ForgotPasswordPayload is the JSON body for POST /forgot-password.
type ForgotPasswordPayload struct {
	Email string `json:"email"`
}

// Validate will run validation rules
func (r ForgotPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// forgotPasswordMessage is returned for every forgot-password request so
// the response never reveals whether the email exists.
const forgotPasswordMessage = "If an account exists for that email, a reset link has been sent"

func (a *AuthController) ForgotPasswordPost(c *fiber.Ctx) error {
	payload := new(ForgotPasswordPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.respondParseError(c, err)
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidationError(c, err)
	}

	initReset := NewInitializePasswordResetHandler(a.Accounts, a.Notifier, a.Config.GetClientURL()).
		WithLogger(a.Logger)

	err := initReset.Execute(c.Context(), InitializePasswordResetMessage{
		Email: payload.Email,
	})
	if err != nil {
		a.Logger.Error("forgot password error: ", "error", err)
		return a.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": forgotPasswordMessage,
	})
}

// ResetPasswordPayload is the JSON body for POST /reset-password/:token.
type ResetPasswordPayload struct {
	Password string `json:"password"`
}

// Validate will run validation rules
func (r ResetPasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required, validation.By(StrongPassword())),
	)
}

func (a *AuthController) ResetPasswordPost(c *fiber.Ctx) error {
	token := c.Params("token")
	payload := new(ResetPasswordPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.respondParseError(c, err)
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidationError(c, err)
	}

	finalize := NewFinalizePasswordResetHandler(a.Accounts, a.Notifier).
		WithBcryptCost(a.Config.GetBcryptCost()).
		WithLogger(a.Logger)

	err := finalize.Execute(c.Context(), FinalizePasswordResetMessage{
		Token:    token,
		Password: payload.Password,
	})
	if err != nil {
		return a.respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "password reset successful",
	})
}

// ChangePasswordPayload is the JSON body for POST /change-password.
type ChangePasswordPayload struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Validate will run validation rules
func (r ChangePasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.By(StrongPassword())),
	)
}

func (a *AuthController) ChangePasswordPost(c *fiber.Ctx) error {
	account, ok := AccountFromFiber(c)
	if !ok {
		return a.respondError(c, ErrUnauthenticated)
	}

	payload := new(ChangePasswordPayload)

	if err := c.BodyParser(payload); err != nil {
		return a.respondParseError(c, err)
	}

	if err := payload.Validate(); err != nil {
		return a.respondValidationError(c, err)
	}

	change := NewChangePasswordHandler(a.Accounts, a.Notifier).
		WithBcryptCost(a.Config.GetBcryptCost()).
		WithLogger(a.Logger)

	err := change.Execute(c.Context(), ChangePasswordMessage{
		AccountID:       account.ID.Hex(),
		CurrentPassword: payload.CurrentPassword,
		NewPassword:     payload.NewPassword,
	})
	if err != nil {
		return a.respondError(c, err)
	}

	// force a fresh login with the new credential
	a.Auther.Logout(c)

	return c.JSON(fiber.Map{
		"success": true,
		"message": "password changed, please log in again",
	})
}

func (a *AuthController) respondParseError(c *fiber.Ctx, err error) error {
	a.Logger.Error("request parse error: ", "error", err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   "BAD_REQUEST",
		"message": "Error parsing body",
	})
}

func (a *AuthController) respondValidationError(c *fiber.Ctx, err error) error {
	a.Logger.Debug("request validation error: ", "error", err)

	// a failed strength rule is part of the error taxonomy, not a
	// generic validation map entry
	if verrs, ok := err.(validation.Errors); ok {
		for _, ferr := range verrs {
			if errors.Is(ferr, ErrWeakCredential) {
				return a.respondError(c, ErrWeakCredential)
			}
		}
	}

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success":    false,
		"error":      "VALIDATION_ERROR",
		"message":    "Error validating payload",
		"validation": FormatValidationErrorToMap(err),
	})
}

func (a *AuthController) respondError(c *fiber.Ctx, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	if a.Debug {
		a.Logger.Debug(
			"request error",
			"text_code", richErr.TextCode,
			"category", richErr.Category,
			"details", print.MaybePrettyJSON(richErr.Metadata),
		)
	}

	status := richErr.Code
	if status < fiber.StatusBadRequest {
		status = fiber.StatusInternalServerError
	}

	message := richErr.Message
	textCode := richErr.TextCode
	if status >= fiber.StatusInternalServerError {
		// internal detail stays in logs
		a.Logger.Error("internal error: ", "error", err)
		message = "An unexpected server error occurred"
		textCode = "INTERNAL_ERROR"
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   textCode,
		"message": message,
	})
}

// FormatValidationErrorToMap flattens ozzo validation errors into a
// field -> message map for JSON responses.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	if verrs, ok := err.(validation.Errors); ok {
		for field, ferr := range verrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	out["payload"] = err.Error()
	return out
}
