package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atinylittleshell/tars/internal/gate"
)

func TestExecuteCommandToolDefinition(t *testing.T) {
	allow := gate.NewAllowList("ls", "pwd")
	tool := ExecuteCommandToolDefinition(allow)

	assert.Equal(t, "execute_command", tool.Name)
	assert.NotEmpty(t, tool.Description)

	params, ok := tool.Parameters["properties"].(map[string]interface{})
	require.True(t, ok)

	command, ok := params["command"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "string", command["type"])
	assert.Equal(t, []string{"ls", "pwd"}, command["enum"])

	for _, name := range []string{"flags", "args"} {
		prop, ok := params[name].(map[string]interface{})
		require.True(t, ok, name)
		assert.Equal(t, "array", prop["type"])
	}

	sudo, ok := params["requiresSudo"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "boolean", sudo["type"])

	assert.Equal(t, []string{"command"}, tool.Parameters["required"])
}

func TestDecodeRequest(t *testing.T) {
	tests := []struct {
		name    string
		args    map[string]interface{}
		want    gate.Request
		wantErr string
	}{
		{
			name: "command only",
			args: map[string]interface{}{"command": "pwd"},
			want: gate.Request{Command: "pwd"},
		},
		{
			name: "json decoded arrays",
			args: map[string]interface{}{
				"command":      "ls",
				"flags":        []interface{}{"-l", "-a"},
				"args":         []interface{}{"/tmp"},
				"requiresSudo": true,
			},
			want: gate.Request{Command: "ls", Flags: []string{"-l", "-a"}, Args: []string{"/tmp"}, RequiresSudo: true},
		},
		{
			name: "typed arrays",
			args: map[string]interface{}{"command": "cat", "args": []string{"a", "b"}},
			want: gate.Request{Command: "cat", Args: []string{"a", "b"}},
		},
		{
			name: "explicit nulls",
			args: map[string]interface{}{"command": "ls", "flags": nil, "args": nil, "requiresSudo": nil},
			want: gate.Request{Command: "ls"},
		},
		{
			name:    "missing command",
			args:    map[string]interface{}{"flags": []interface{}{"-l"}},
			wantErr: "missing 'command'",
		},
		{
			name:    "empty command",
			args:    map[string]interface{}{"command": ""},
			wantErr: "non-empty string",
		},
		{
			name:    "command not a string",
			args:    map[string]interface{}{"command": 42.0},
			wantErr: "non-empty string",
		},
		{
			name:    "flags not an array",
			args:    map[string]interface{}{"command": "ls", "flags": "-la"},
			wantErr: "'flags' must be an array",
		},
		{
			name:    "args with non-string items",
			args:    map[string]interface{}{"command": "ls", "args": []interface{}{"/tmp", 3.0}},
			wantErr: "'args' must contain only strings",
		},
		{
			name:    "sudo not a bool",
			args:    map[string]interface{}{"command": "ls", "requiresSudo": "yes"},
			wantErr: "'requiresSudo' must be a boolean",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeRequest(tt.args)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExecuteCommandTool_InvalidArgumentsNeverRun(t *testing.T) {
	runner := &recordingRunner{}
	g := gate.New(gate.Options{AllowList: gate.DefaultAllowList(), Runner: runner})

	out := ExecuteCommandTool(context.Background(), g, map[string]interface{}{"command": "ls", "flags": "-la"})

	assert.Contains(t, out, "Error: invalid execute_command call")
	assert.Empty(t, runner.calls)
}

func TestExecuteCommandTool_RevalidatesCommand(t *testing.T) {
	runner := &recordingRunner{}
	g := gate.New(gate.Options{AllowList: gate.NewAllowList("ls"), Runner: runner})

	out := ExecuteCommandTool(context.Background(), g, map[string]interface{}{"command": "bash", "args": []interface{}{"-c", "id"}})

	assert.Contains(t, out, "Error: Command 'bash' is not allowed.")
	assert.Empty(t, runner.calls)
}
