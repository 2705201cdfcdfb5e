package gradebook

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradebook/importer/internal/domain/shared"
)

type stubRegistry struct {
	violations []Violation
	err        error
	gotName    string
}

func (s *stubRegistry) Validate(name string, _ any) ([]Violation, error) {
	s.gotName = name
	return s.violations, s.err
}

func TestValidateDocument_NarrowsWithoutCopy(t *testing.T) {
	root := map[string]any{"user": map[string]any{"email": "a@b.c"}}
	reg := &stubRegistry{}

	export, err := ValidateDocument(reg, ExportSchema, NewDocument(root))
	require.NoError(t, err)
	assert.Equal(t, ExportSchema, reg.gotName)

	export.User()["created_at"] = "now"
	assert.Equal(t, "now", root["user"].(map[string]any)["created_at"])
}

func TestValidateDocument_DeduplicatesPaths(t *testing.T) {
	reg := &stubRegistry{violations: []Violation{
		{Path: "(root).user", Message: "email is required"},
		{Path: "(root).courses.0", Message: "semester is required"},
		{Path: "(root).user", Message: "settings is required"},
		{Path: "(root).courses.0", Message: "name is required"},
		{Path: "(root).courses.1.cut", Message: "Invalid type. Expected: string, given: integer"},
	}}

	_, err := ValidateDocument(reg, ExportSchema, NewDocument(map[string]any{}))
	require.Error(t, err)

	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)

	assert.Equal(t, "Export is invalid:"+
		"\n\t(root).user email is required"+
		"\n\t(root).courses.0 semester is required"+
		"\n\t(root).courses.1.cut Invalid type. Expected: string, given: integer",
		verr.Message)
	assert.Equal(t, 1, strings.Count(verr.Message, "(root).user "))
}

func TestValidateDocument_RootMustBeObject(t *testing.T) {
	_, err := ValidateDocument(&stubRegistry{}, ExportSchema, NewDocument([]any{}))
	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))
	assert.Contains(t, err.Error(), "(root)")
}

func TestValidateDocument_RegistryError(t *testing.T) {
	boom := errors.New("boom")

	_, err := ValidateDocument(&stubRegistry{err: boom}, "missing", NewDocument(map[string]any{}))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, shared.IsValidation(err))
}
