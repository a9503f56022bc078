package runner

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLibraryGroups(t *testing.T) {
	payload := `{
		"command_line_args": ["--bench"],
		"config": {},
		"default_tool": "Callgrind",
		"groups": [
			{
				"id": "group_one",
				"has_setup": true,
				"has_teardown": false,
				"library_benchmarks": [
					{"benches": [{"function_name": "bench_fast"}]}
				]
			}
		],
		"has_setup": false,
		"has_teardown": false
	}`

	groups, err := DecodeLibraryGroups(strings.NewReader(payload))

	require.NoError(t, err)
	require.Len(t, groups.Groups, 1)
	assert.Equal(t, "group_one", groups.Groups[0].ID)
	assert.True(t, groups.Groups[0].HasSetup)
	assert.Equal(t, ToolCallgrind, groups.DefaultTool)
	assert.Equal(t, "bench_fast", groups.Groups[0].LibraryBenchmarks[0].Benches[0].FunctionName)
}

func TestDecodeLibraryGroupsRejectsGarbage(t *testing.T) {
	_, err := DecodeLibraryGroups(strings.NewReader("not json"))

	assert.Error(t, err)
}

func TestDecodeBinaryGroups(t *testing.T) {
	payload := `{
		"command_line_args": [],
		"config": {},
		"groups": [
			{
				"id": "bin_group",
				"binary_benchmarks": [
					{"benches": [{"function_name": "run_cli", "command": {"path": "/bin/echo", "args": ["hi"]}}]}
				]
			}
		],
		"has_setup": false,
		"has_teardown": false
	}`

	groups, err := DecodeBinaryGroups(strings.NewReader(payload))

	require.NoError(t, err)
	require.Len(t, groups.Groups, 1)
	bench := groups.Groups[0].BinaryBenchmarks[0].Benches[0]
	assert.Equal(t, "/bin/echo", bench.Command.Path)
	assert.Equal(t, []string{"hi"}, bench.Command.Args)
}

func TestReadPayloadReadsExactLength(t *testing.T) {
	r := bytes.NewBufferString("hello world, trailing garbage")

	buf, err := ReadPayload(r, len("hello world"))

	require.NoError(t, err)
	assert.Equal(t, "hello world", string(buf))
}

func TestReadPayloadErrorsOnShortRead(t *testing.T) {
	r := bytes.NewBufferString("short")

	_, err := ReadPayload(r, 100)

	assert.Error(t, err)
}
