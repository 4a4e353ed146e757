package validator

import (
	"errors"
	"fmt"
	"testing"

	"anoa.com/communityforum/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type changePassword struct {
	PlainPassword        string `form:"plainPassword" binding:"required,min=8,max=4096"`
	PlainPasswordConfirm string `form:"plainPasswordConfirm" binding:"eqfield=PlainPassword"`
}

type newSujet struct {
	Name     string `form:"name" binding:"notblank,max=255"`
	Category uint   `form:"category" binding:"required"`
}

func TestFieldErrorsUsesFormNames(t *testing.T) {
	v := New()

	err := v.Struct(newSujet{Name: "   "})
	require.Error(t, err)

	errs := FieldErrors(err)
	assert.Equal(t, "Le nom est obligatoire.", errs["name"])
	assert.Equal(t, "La catégorie est obligatoire.", errs["category"])
}

func TestFieldErrorsPasswordRules(t *testing.T) {
	v := New()

	errs := FieldErrors(v.Struct(changePassword{PlainPassword: "short", PlainPasswordConfirm: "short"}))
	assert.Equal(t, "Le mot de passe doit contenir au moins 8 caractères.", errs["plainPassword"])
	assert.NotContains(t, errs, "plainPasswordConfirm")

	errs = FieldErrors(v.Struct(changePassword{PlainPassword: "longenough", PlainPasswordConfirm: "different"}))
	assert.Equal(t, "Les deux champs de mot de passe doivent correspondre.", errs["plainPasswordConfirm"])
}

func TestFieldErrorsValid(t *testing.T) {
	v := New()
	assert.NoError(t, v.Struct(newSujet{Name: "Test", Category: 1}))
	assert.Empty(t, FieldErrors(nil))
}

func TestFieldErrorsNonValidationError(t *testing.T) {
	errs := FieldErrors(errors.New("strconv.ParseUint: parsing \"abc\": invalid syntax"))
	assert.Contains(t, errs, FormField)
}

func TestBusinessErrors(t *testing.T) {
	errs, ok := BusinessErrors(fmt.Errorf("register: %w", apperror.NewFieldError("email", "déjà pris", apperror.ErrConflict)))
	assert.True(t, ok)
	assert.Equal(t, map[string]string{"email": "déjà pris"}, errs)

	_, ok = BusinessErrors(errors.New("boom"))
	assert.False(t, ok)
}
