package errors

import (
	stdErrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapMatchesByCode(t *testing.T) {
	err := Wrap(CodeNotFound, fs.ErrNotExist, "broadcast log not found", WithPath("/tmp/run-latest.json"))

	assert.True(t, stdErrors.Is(err, ErrNotFound))
	assert.False(t, stdErrors.Is(err, ErrMalformedInput))
	assert.True(t, stdErrors.Is(err, fs.ErrNotExist))
	assert.Equal(t, "[NOT_FOUND] broadcast log not found (/tmp/run-latest.json): file does not exist", err.Error())
}

func TestCodeOfThroughFmtWrap(t *testing.T) {
	inner := New(CodeMissingField, "", WithMetadata("field", "transactions"))
	outer := fmt.Errorf("extract chain 137: %w", inner)

	assert.Equal(t, CodeMissingField, CodeOf(outer))
	assert.Equal(t, SeverityWarning, SeverityOf(outer))
	assert.Equal(t, CodeUnknown, CodeOf(stdErrors.New("plain")))

	e, ok := From(outer)
	require.True(t, ok)
	assert.Equal(t, "expected key missing", e.Message())
	assert.Equal(t, map[string]string{"field": "transactions"}, e.Metadata())
}

func TestLogAttrsSortedMetadata(t *testing.T) {
	err := New(CodeIOFailure, "boom", WithMetadata("path", "p"), WithMetadata("contract", "Token"))

	assert.Equal(t, []any{"code", "IO_FAILURE", "severity", "critical", "contract", "Token", "path", "p"}, err.LogAttrs())
}

func TestRegisterCustomCode(t *testing.T) {
	const code Code = "TEST_ONLY"
	assert.Equal(t, AttributesOf(CodeUnknown), AttributesOf(code))

	Register(code, Attributes{Message: "test only", Severity: SeverityInfo})
	assert.Equal(t, "[TEST_ONLY] test only", New(code, "").Error())
}
