package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFileUpdate_Valid(t *testing.T) {
	err := ValidateFileUpdate([]byte(`{"filename": "index.html", "html": "<p>hi</p>"}`))
	assert.NoError(t, err)
}

func TestValidateFileUpdate_ExtraKeysAllowed(t *testing.T) {
	err := ValidateFileUpdate([]byte(`{"filename": "a.html", "html": "", "type": "html"}`))
	assert.NoError(t, err)
}

func TestValidateFileUpdate_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "missing html", doc: `{"filename": "a.html"}`},
		{name: "missing filename", doc: `{"html": "<p>A</p>"}`},
		{name: "null html", doc: `{"filename": "a.html", "html": null}`},
		{name: "null filename", doc: `{"filename": null, "html": "<p>A</p>"}`},
		{name: "empty filename", doc: `{"filename": "", "html": "<p>A</p>"}`},
		{name: "blank filename", doc: `{"filename": "   ", "html": "<p>A</p>"}`},
		{name: "numeric html", doc: `{"filename": "a.html", "html": 42}`},
		{name: "not an object", doc: `"a.html"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFileUpdate([]byte(tt.doc))
			require.Error(t, err)

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr), "error should be ValidationError type")
			assert.NotEmpty(t, validationErr.Errors)
			assert.NotEmpty(t, validationErr.Summary())
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Errors: []FieldError{
		{Field: "(root)", Message: "html is required"},
		{Field: "filename", Message: "Invalid type"},
	}}

	assert.Contains(t, err.Error(), "1. (root): html is required")
	assert.Contains(t, err.Error(), "2. filename: Invalid type")
	assert.Equal(t, "(root): html is required; filename: Invalid type", err.Summary())
}
