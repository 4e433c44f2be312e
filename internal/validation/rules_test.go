package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/iso-gateway/internal/iso20022"
)

func TestDefaultRuleTableCoversBothMessageTypes(t *testing.T) {
	table := DefaultRuleTable()

	for _, mt := range []iso20022.MessageType{iso20022.Pacs008, iso20022.Pain001} {
		rules, ok := table.Rules(mt)
		require.True(t, ok, "missing rules for %s", mt)
		assert.NotEmpty(t, rules.RequiredFields)
		assert.NotEmpty(t, rules.RequiredElements)
		assert.Equal(t, 35, rules.MaxLength["MsgId"])
	}

	_, ok := table.Rules(iso20022.MessageType("camt.053"))
	assert.False(t, ok)
}

func writeRuleFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadRuleTableOverride(t *testing.T) {
	path := writeRuleFile(t, `
pacs.008:
  required_fields: [MsgId]
  max_length:
    MsgId: 16
  patterns:
    MsgId: "^[A-Z0-9]+$"
  required_elements: [GrpHdr]
`)

	table, err := LoadRuleTable(path)
	require.NoError(t, err)

	rules, ok := table.Rules(iso20022.Pacs008)
	require.True(t, ok)
	assert.Equal(t, []string{"MsgId"}, rules.RequiredFields)
	assert.Equal(t, 16, rules.MaxLength["MsgId"])
	assert.True(t, rules.Patterns["MsgId"].MatchString("ABC123"))
	assert.False(t, rules.Patterns["MsgId"].MatchString("abc"))

	// Unnamed message types keep the built-in defaults.
	painRules, ok := table.Rules(iso20022.Pain001)
	require.True(t, ok)
	assert.Contains(t, painRules.RequiredFields, "PmtInfId")
}

func TestLoadRuleTableRejectsUnknownMessageType(t *testing.T) {
	path := writeRuleFile(t, "camt.053:\n  required_fields: [MsgId]\n")

	_, err := LoadRuleTable(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "camt.053")
}

func TestLoadRuleTableRejectsBadPattern(t *testing.T) {
	path := writeRuleFile(t, "pacs.008:\n  patterns:\n    MsgId: \"[\"\n")

	_, err := LoadRuleTable(path)
	require.Error(t, err)
}

func TestLoadRuleTableMissingFile(t *testing.T) {
	_, err := LoadRuleTable(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
