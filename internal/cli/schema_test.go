package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree() *cobra.Command {
	root := &cobra.Command{Use: "hirelensd"}
	AddHelpJSONFlag(root)

	segment := &cobra.Command{Use: "segment", Short: "Split a CV into chunks", Run: func(*cobra.Command, []string) {}}
	segment.Flags().StringP("file", "f", "-", "CV file to read")
	segment.Flags().Int("top-k", 5, "Number of ranked chunks")

	apikey := &cobra.Command{Use: "apikey", Short: "Manage API keys"}
	create := &cobra.Command{Use: "create", Run: func(*cobra.Command, []string) {}}
	create.Flags().String("owner", "", "Owner ID")
	_ = create.MarkFlagRequired("owner")
	apikey.AddCommand(create)

	hidden := &cobra.Command{Use: "debug", Hidden: true, Run: func(*cobra.Command, []string) {}}

	root.AddCommand(segment, apikey, hidden)
	return root
}

func TestGenerateSchema(t *testing.T) {
	schema := GenerateSchema(testTree())

	assert.Equal(t, "hirelensd", schema.Name)
	require.Len(t, schema.Subcommands, 2)

	var segment CommandSchema
	for _, sub := range schema.Subcommands {
		if sub.Name == "segment" {
			segment = sub
		}
		assert.NotEqual(t, "debug", sub.Name)
	}
	require.Len(t, segment.Flags, 2)
	assert.Equal(t, "file", segment.Flags[0].Name)
	assert.Equal(t, "f", segment.Flags[0].Shorthand)
	assert.Equal(t, "-", segment.Flags[0].Default)
	assert.Equal(t, "int", segment.Flags[1].Type)
	assert.False(t, segment.Flags[0].Required)
}

func TestGenerateSchema_RequiredFlag(t *testing.T) {
	root := testTree()
	create, _, err := root.Find([]string{"apikey", "create"})
	require.NoError(t, err)

	schema := GenerateSchema(create)
	require.Len(t, schema.Flags, 1)
	assert.Equal(t, "owner", schema.Flags[0].Name)
	assert.True(t, schema.Flags[0].Required)
}

func TestFindTargetCommand(t *testing.T) {
	root := testTree()

	assert.Equal(t, "create", findTargetCommand(root, []string{"apikey", "create", "--owner"}).Name())
	assert.Equal(t, "hirelensd", findTargetCommand(root, []string{"unknown"}).Name())
	assert.Equal(t, "hirelensd", findTargetCommand(root, nil).Name())
}

func TestWriteSchema(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSchema(&buf, testTree()))

	var out CommandSchema
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, "hirelensd", out.Name)
	assert.NotContains(t, buf.String(), "help-json")
}
