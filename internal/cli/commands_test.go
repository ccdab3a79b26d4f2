package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/charsheet/internal/character"
	"github.com/roach88/charsheet/internal/rejection"
	"github.com/roach88/charsheet/internal/store"
)

const exaltDoc = `
- type: set_solar
  payload:
    solar:
      caste: dawn
      caste_abilities: [archery, awareness, brawl, dodge, melee]
      supernal: melee
      favored_abilities: [athletics, integrity, lore, occult, war]
- type: set_ability
  payload: {ability: war, dots: 3}
- type: add_solar_charm
  payload:
    charm: {name: Bolster, ability: war, ability_dots: 1, essence: 1}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// decodeData runs a JSON command and decodes the response data into v.
func decodeData(t *testing.T, out string, v any) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), "output: %s", out)
	if v != nil {
		data, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, v))
	}
	return resp
}

func newCharacter(t *testing.T, db string) {
	t.Helper()
	_, err := execute(t, "--db", db, "new", "--id", "jade", "--name", "Harmonious Jade", "--campaign", "dragon")
	require.NoError(t, err)
}

func TestNewCommand(t *testing.T) {
	db := testDB(t)
	out, err := execute(t, "--db", db, "--format", "json", "new", "--id", "jade", "--name", "Harmonious Jade")
	require.NoError(t, err)

	var result NewResult
	resp := decodeData(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "jade", result.ID)
	assert.Equal(t, "Harmonious Jade", result.Name)
	assert.Len(t, result.BaseHash, 64)

	_, err = execute(t, "--db", db, "new", "--id", "jade", "--name", "Other")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "character already exists: jade")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestNewCommand_GeneratedID(t *testing.T) {
	db := testDB(t)
	out, err := execute(t, "--db", db, "--format", "json", "new", "--name", "Swan")
	require.NoError(t, err)

	var result NewResult
	decodeData(t, out, &result)
	assert.Len(t, result.ID, 36)
	assert.Equal(t, "7", result.ID[14:15])
}

func TestNewCommand_FromMemo(t *testing.T) {
	db := testDB(t)
	memo, err := yaml.Marshal(character.NewMortalMemo("Panther"))
	require.NoError(t, err)
	path := writeFile(t, "panther.yaml", string(memo))

	out, err := execute(t, "--db", db, "new", "--id", "panther", "--from", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created panther (Panther)")

	bad := writeFile(t, "bad.yaml", "version: 1\nname: \"\"\n")
	_, err = execute(t, "--db", db, "new", "--id", "nobody", "--from", bad)
	require.Error(t, err)
	assert.True(t, rejection.Is(err, rejection.CodeNameEmpty))
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestNewCommand_NameOrFromRequired(t *testing.T) {
	_, err := execute(t, "--db", testDB(t), "new", "--id", "jade")
	require.Error(t, err)
}

func TestApplyShowHistoryWorkflow(t *testing.T) {
	db := testDB(t)
	newCharacter(t, db)
	doc := writeFile(t, "exalt.yaml", exaltDoc)

	out, err := execute(t, "--db", db, "--format", "json", "apply", "--id", "jade", doc)
	require.NoError(t, err)
	var applied ApplyResult
	decodeData(t, out, &applied)
	assert.False(t, applied.DryRun)
	assert.Equal(t, 3, applied.Cursor)
	require.Len(t, applied.Mutations, 3)
	assert.Equal(t, character.TypeAddSolarCharm, applied.Mutations[2].Type)

	drop := writeFile(t, "drop.yaml", "{type: set_ability, payload: {ability: war, dots: 0}}")
	out, err = execute(t, "--db", db, "apply", "--id", "jade", drop)
	require.NoError(t, err)
	assert.Contains(t, out, "removed: solar:Bolster")
	assert.Contains(t, out, "cursor 4")

	out, err = execute(t, "--db", db, "--format", "json", "show", "--id", "jade")
	require.NoError(t, err)
	var memo character.Memo
	decodeData(t, out, &memo)
	assert.Equal(t, "Harmonious Jade", memo.Name)
	require.NotNil(t, memo.Exaltation.Exalt)
	assert.NotContains(t, memo.Exaltation.Exalt.Charms.Solar, "Bolster")

	out, err = execute(t, "--db", db, "show", "--id", "jade")
	require.NoError(t, err)
	assert.Contains(t, out, "name: Harmonious Jade")

	out, err = execute(t, "--db", db, "--format", "json", "history", "--id", "jade")
	require.NoError(t, err)
	var history HistoryResult
	decodeData(t, out, &history)
	assert.Equal(t, 4, history.Cursor)
	require.Len(t, history.Entries, 4)
	assert.Equal(t, character.TypeSetSolar, history.Entries[0].Type)
	assert.Len(t, history.Entries[0].ID, 64)
	assert.True(t, history.Entries[3].Active)
}

func TestApplyCommand_RejectionSavesNothing(t *testing.T) {
	db := testDB(t)
	newCharacter(t, db)
	doc := writeFile(t, "bad.yaml", `
- type: set_concept
  payload: {concept: Exile}
- type: spend_motes
  payload: {first: peripheral, amount: 1}
`)

	out, err := execute(t, "--db", db, "--format", "json", "apply", "--id", "jade", doc)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	resp := decodeData(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, string(rejection.CodeExaltOnly), resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "mutation 1 (spend_motes) rejected")

	st, err := store.Open(db)
	require.NoError(t, err)
	defer st.Close()
	rec, err := st.ReadCharacter(context.Background(), "jade")
	require.NoError(t, err)
	assert.Equal(t, 0, rec.LogLength)
}

func TestApplyCommand_SchemaRejection(t *testing.T) {
	db := testDB(t)
	newCharacter(t, db)
	doc := writeFile(t, "bad.yaml", "{type: set_ability, payload: {ability: cooking, dots: 1}}")

	_, err := execute(t, "--db", db, "apply", "--id", "jade", doc)
	require.Error(t, err)
	assert.True(t, rejection.Is(err, rejection.CodePayloadInvalid))
}

func TestApplyCommand_FillsCommitmentIDs(t *testing.T) {
	db := testDB(t)
	newCharacter(t, db)
	doc := writeFile(t, "commit.yaml", exaltDoc+`
- type: commit_motes
  payload: {name: Ox-Body, first: personal, amount: 3}
`)

	_, err := execute(t, "--db", db, "apply", "--id", "jade", doc)
	require.NoError(t, err)

	out, err := execute(t, "--db", db, "--format", "json", "show", "--id", "jade")
	require.NoError(t, err)
	var memo character.Memo
	decodeData(t, out, &memo)
	commitments := memo.Exaltation.Exalt.Essence.Motes.Commitments
	require.Len(t, commitments, 1)
	for id, c := range commitments {
		assert.Len(t, id, 36)
		assert.Equal(t, "Ox-Body", c.Name)
	}
}

func TestApplyCommand_Stdin(t *testing.T) {
	db := testDB(t)
	newCharacter(t, db)

	cmd := NewRootCommand()
	cmd.SetIn(strings.NewReader("{type: set_concept, payload: {concept: Exile}}"))
	cmd.SetOut(&strings.Builder{})
	cmd.SetArgs([]string{"--db", db, "apply", "--id", "jade", "-"})
	require.NoError(t, cmd.Execute())

	out, err := execute(t, "--db", db, "--format", "json", "show", "--id", "jade")
	require.NoError(t, err)
	var memo character.Memo
	decodeData(t, out, &memo)
	assert.Equal(t, "Exile", memo.Concept)
}

func TestApplyCommand_UnknownCharacter(t *testing.T) {
	doc := writeFile(t, "doc.yaml", "{type: set_concept, payload: {concept: Exile}}")
	_, err := execute(t, "--db", testDB(t), "apply", "--id", "ghost", doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "character not found: ghost")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCheckCommand(t *testing.T) {
	db := testDB(t)
	newCharacter(t, db)
	doc := writeFile(t, "exalt.yaml", exaltDoc)

	out, err := execute(t, "--db", db, "--format", "json", "check", "--id", "jade", doc)
	require.NoError(t, err)
	var checked ApplyResult
	decodeData(t, out, &checked)
	assert.True(t, checked.DryRun)
	assert.Equal(t, 3, checked.Cursor)

	out, err = execute(t, "--db", db, "--format", "json", "history", "--id", "jade")
	require.NoError(t, err)
	var history HistoryResult
	decodeData(t, out, &history)
	assert.Empty(t, history.Entries)

	spend := writeFile(t, "spend.yaml", "{type: spend_motes, payload: {first: personal, amount: 1}}")
	_, err = execute(t, "--db", db, "check", "--id", "jade", spend)
	require.Error(t, err)
	assert.True(t, rejection.Is(err, rejection.CodeExaltOnly))
}

func TestUndoRedoCommands(t *testing.T) {
	db := testDB(t)
	newCharacter(t, db)
	doc := writeFile(t, "exalt.yaml", exaltDoc)
	_, err := execute(t, "--db", db, "apply", "--id", "jade", doc)
	require.NoError(t, err)

	out, err := execute(t, "--db", db, "--format", "json", "undo", "--id", "jade", "--steps", "2")
	require.NoError(t, err)
	var moved MoveResult
	decodeData(t, out, &moved)
	assert.Equal(t, 2, moved.Moved)
	assert.Equal(t, 1, moved.Cursor)
	assert.Equal(t, 3, moved.LogLength)

	out, err = execute(t, "--db", db, "history", "--id", "jade")
	require.NoError(t, err)
	assert.Contains(t, out, "---- cursor ----")

	out, err = execute(t, "--db", db, "redo", "--id", "jade", "--steps", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "redo 2, cursor 3/3")

	out, err = execute(t, "--db", db, "--format", "json", "redo", "--id", "jade")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	resp := decodeData(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNothingToDo, resp.Error.Code)

	_, err = execute(t, "--db", db, "undo", "--id", "jade", "--steps", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestUndoThenApplyTruncatesRedo(t *testing.T) {
	db := testDB(t)
	newCharacter(t, db)
	_, err := execute(t, "--db", db, "apply", "--id", "jade", writeFile(t, "exalt.yaml", exaltDoc))
	require.NoError(t, err)
	_, err = execute(t, "--db", db, "undo", "--id", "jade")
	require.NoError(t, err)
	_, err = execute(t, "--db", db, "apply", "--id", "jade", writeFile(t, "c.yaml", "{type: set_concept, payload: {concept: Exile}}"))
	require.NoError(t, err)

	out, err := execute(t, "--db", db, "--format", "json", "history", "--id", "jade")
	require.NoError(t, err)
	var history HistoryResult
	decodeData(t, out, &history)
	require.Len(t, history.Entries, 3)
	assert.Equal(t, character.TypeSetConcept, history.Entries[2].Type)
	assert.Equal(t, 3, history.Cursor)
}

func TestListCommand(t *testing.T) {
	db := testDB(t)
	newCharacter(t, db)
	_, err := execute(t, "--db", db, "new", "--id", "swan", "--name", "Swan")
	require.NoError(t, err)

	out, err := execute(t, "--db", db, "--format", "json", "list")
	require.NoError(t, err)
	var all []CharacterSummary
	decodeData(t, out, &all)
	require.Len(t, all, 2)
	assert.Equal(t, "jade", all[0].ID)

	out, err = execute(t, "--db", db, "list", "--campaign", "dragon")
	require.NoError(t, err)
	assert.Contains(t, out, "jade")
	assert.NotContains(t, out, "swan")

	out, err = execute(t, "--db", testDB(t), "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No characters found")
}
