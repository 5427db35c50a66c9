package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"receitapress/internal/models"
)

// validate is the shared validator instance. Struct tags on the request
// payloads below drive all field-level validation.
var validate = validator.New(validator.WithRequiredStructEnabled())

// loginRequest is the POST /api/auth/login payload.
type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// twoFAVerifyRequest is the POST /api/auth/2fa/verify payload.
type twoFAVerifyRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// recipeInput is the admin create/update payload. Field names match the
// Recipe JSON the API serves back.
type recipeInput struct {
	Title           string   `json:"title" validate:"required,max=300"`
	Slug            string   `json:"slug" validate:"omitempty,max=300"`
	Description     string   `json:"description" validate:"max=1000"`
	Ingredients     []string `json:"ingredients" validate:"required,min=1,dive,required"`
	Instructions    []string `json:"instructions" validate:"required,min=1,dive,required"`
	Tips            []string `json:"tips"`
	CookTime        int      `json:"cookTime" validate:"gte=0"`
	Difficulty      string   `json:"difficulty" validate:"required"`
	Servings        int      `json:"servings" validate:"gte=0"`
	ImageURL        string   `json:"imageUrl" validate:"omitempty,url"`
	MetaTitle       string   `json:"metaTitle" validate:"max=300"`
	MetaDescription string   `json:"metaDescription" validate:"max=500"`
	MetaKeywords    string   `json:"metaKeywords" validate:"max=500"`
	Hashtags        []string `json:"hashtags"`
	Category        string   `json:"category" validate:"max=100"`
	Subcategory     string   `json:"subcategory" validate:"max=100"`
	Published       bool     `json:"published"`
}

// settingsInput is the PUT /api/admin/settings payload. The interval
// bounds mirror models.MinGenerationInterval / MaxGenerationInterval.
type settingsInput struct {
	Enabled         bool `json:"autoGenerationEnabled"`
	IntervalMinutes int  `json:"generationIntervalMinutes" validate:"required,gte=5,lte=1440"`
}

// generateRequest is the POST /api/admin/recipes/generate payload. All
// fields are optional; a missing idea picks a random one.
type generateRequest struct {
	Idea       string `json:"idea" validate:"omitempty,max=200"`
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=Fácil Médio Difícil"`
	CookTime   int    `json:"cookTime" validate:"gte=0,lte=600"`
}

// providerRequest is the PUT /api/admin/ai/provider payload.
type providerRequest struct {
	Provider string `json:"provider" validate:"required,oneof=openai gemini"`
}

// checkInput runs struct validation and returns a user-facing message
// for the first failure, or "" when the payload is valid.
func checkInput(v any) string {
	err := validate.Struct(v)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "invalid request"
	}
	return fieldMessage(verrs[0])
}

// fieldMessage turns one validation failure into a readable message.
func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field()[:1]) + fe.Field()[1:]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s needs at least %s items", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s is too long (max %s)", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "numeric":
		return fmt.Sprintf("%s must contain only digits", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// validDifficulty checks the difficulty label beyond what struct tags
// can express against the models constant set.
func validDifficulty(s string) bool {
	return models.Difficulty(s).Valid()
}
