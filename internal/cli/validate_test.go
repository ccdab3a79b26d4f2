package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/charsheet/internal/character"
	"github.com/roach88/charsheet/internal/rejection"
)

func TestValidateCommand_ValidDocuments(t *testing.T) {
	exalt := writeFile(t, "exalt.yaml", exaltDoc)
	single := writeFile(t, "single.json", `{"type": "set_name", "payload": {"name": "Swan"}}`)

	out, err := execute(t, "validate", exalt, single)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ "+exalt)
	assert.Contains(t, out, "✓ "+single)

	out, err = execute(t, "--format", "json", "validate", exalt)
	require.NoError(t, err)
	var result ValidationResult
	decodeData(t, out, &result)
	assert.True(t, result.Valid)
	require.Len(t, result.Files, 1)
	assert.Equal(t, 3, result.Files[0].Mutations)
}

func TestValidateCommand_InvalidDocument(t *testing.T) {
	good := writeFile(t, "good.yaml", "{type: remove_concept}")
	bad := writeFile(t, "bad.yaml", "{type: set_ability, payload: {ability: war, dots: 2, note: x}}")

	out, err := execute(t, "validate", good, bad)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✓ "+good)
	assert.Contains(t, out, "✗ "+bad)
	assert.Contains(t, out, "[PAYLOAD_INVALID]")

	out, err = execute(t, "--format", "json", "validate", bad)
	require.Error(t, err)
	var result ValidationResult
	decodeData(t, out, &result)
	assert.False(t, result.Valid)
	require.NotNil(t, result.Files[0].Error)
	assert.Equal(t, string(rejection.CodePayloadInvalid), result.Files[0].Error.Code)
}

func TestValidateCommand_UnknownType(t *testing.T) {
	doc := writeFile(t, "luck.yaml", "{type: set_luck}")
	out, err := execute(t, "validate", doc)
	require.Error(t, err)
	assert.Contains(t, out, "[UNKNOWN_MUTATION]")
}

func TestValidateCommand_Memo(t *testing.T) {
	data, err := yaml.Marshal(character.NewMortalMemo("Panther"))
	require.NoError(t, err)
	good := writeFile(t, "panther.yaml", string(data))
	bad := writeFile(t, "bad.yaml", "version: 1\nname: Panther\nluck: 3\n")

	_, err = execute(t, "validate", "--memo", good)
	require.NoError(t, err)

	out, err := execute(t, "validate", "--memo", bad)
	require.Error(t, err)
	assert.Contains(t, out, "[MEMO_INVALID]")
}

func TestValidateCommand_MissingFile(t *testing.T) {
	_, err := execute(t, "validate", "/nonexistent/doc.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "file not found")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateCommand_RequiresFile(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}
