package revalidate

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"solisview/internal/logger"
)

// AuthMode selects how the revalidation endpoint authenticates callers.
type AuthMode string

const (
	// AuthBearer accepts an Authorization: Bearer header.
	AuthBearer AuthMode = "bearer"
	// AuthBody accepts a JSON body with a "secret" field.
	AuthBody AuthMode = "body"
	// AuthAny accepts either.
	AuthAny AuthMode = "any"
)

// ErrInvalidSecret is returned when a caller fails the secret check.
var ErrInvalidSecret = errors.New("invalid secret")

var validate = validator.New()

// Config parameterizes the single revalidation handler. BearerSecret guards
// the bearer check, BodySecret the body check; an empty secret disables its
// check entirely.
type Config struct {
	Mode         AuthMode
	BearerSecret string
	BodySecret   string
}

// Handler authenticates revalidation triggers and regenerates the cached
// page data.
type Handler struct {
	cfg     Config
	refresh func(ctx context.Context) error
	log     zerolog.Logger
}

// NewHandler creates a Handler. refresh is called synchronously on every
// authorized trigger.
func NewHandler(cfg Config, refresh func(ctx context.Context) error) *Handler {
	if cfg.Mode == "" {
		cfg.Mode = AuthAny
	}
	return &Handler{
		cfg:     cfg,
		refresh: refresh,
		log:     logger.New("revalidate"),
	}
}

type bodyRequest struct {
	Secret string `json:"secret" validate:"required"`
}

// Handle processes one revalidation trigger.
func (h *Handler) Handle(c *fiber.Ctx) error {
	if err := h.authorize(c); err != nil {
		h.log.Warn().Str("ip", c.IP()).Msg("revalidation rejected")
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"revalidated": false,
			"message":     "invalid secret",
		})
	}

	if err := h.refresh(c.Context()); err != nil {
		h.log.Error().Err(err).Msg("revalidation refresh failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"revalidated": false,
			"message":     "failed to refresh",
		})
	}

	return c.JSON(fiber.Map{
		"revalidated": true,
		"now":         time.Now().Unix(),
	})
}

func (h *Handler) authorize(c *fiber.Ctx) error {
	switch h.cfg.Mode {
	case AuthBearer:
		return h.checkBearer(c)
	case AuthBody:
		return h.checkBody(c)
	default:
		if h.checkBearer(c) == nil {
			return nil
		}
		return h.checkBody(c)
	}
}

func (h *Handler) checkBearer(c *fiber.Ctx) error {
	if h.cfg.BearerSecret == "" {
		return ErrInvalidSecret
	}
	token, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	if !ok || !secretsEqual(token, h.cfg.BearerSecret) {
		return ErrInvalidSecret
	}
	return nil
}

func (h *Handler) checkBody(c *fiber.Ctx) error {
	if h.cfg.BodySecret == "" {
		return ErrInvalidSecret
	}
	var req bodyRequest
	if err := c.BodyParser(&req); err != nil {
		return ErrInvalidSecret
	}
	if err := validate.Struct(req); err != nil {
		return ErrInvalidSecret
	}
	if !secretsEqual(req.Secret, h.cfg.BodySecret) {
		return ErrInvalidSecret
	}
	return nil
}

func secretsEqual(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
