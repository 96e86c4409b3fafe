package agent

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/atinylittleshell/tars/internal/gate"
	"github.com/atinylittleshell/tars/internal/provider"
)

// ExecuteCommandToolName is the function name advertised to the model.
const ExecuteCommandToolName = "execute_command"

// ExecuteCommandToolDefinition returns the tool definition for the
// execute_command tool. The command parameter is an enum of the allow-list
// so the model only ever sees names the gate would accept.
func ExecuteCommandToolDefinition(allow gate.AllowList) provider.ChatTool {
	return provider.ChatTool{
		Name:        ExecuteCommandToolName,
		Description: "Execute a Linux command from the allowed list and return its output.",
		Parameters: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"command": map[string]interface{}{
					"type":        "string",
					"description": "Name of the Linux command to run",
					"enum":        allow.Names(),
				},
				"flags": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Command flags, for example -l or -a",
				},
				"args": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Command arguments such as paths or patterns",
				},
				"requiresSudo": map[string]interface{}{
					"type":        "boolean",
					"description": "Whether the command must run with sudo",
				},
			},
			"required": []string{"command"},
		},
	}
}

// DecodeRequest turns the model's tool arguments into a gate.Request. Every
// field is checked for presence and type; nothing is coerced.
func DecodeRequest(args map[string]interface{}) (gate.Request, error) {
	var req gate.Request

	commandVal, ok := args["command"]
	if !ok {
		return req, fmt.Errorf("missing 'command' argument")
	}
	command, ok := commandVal.(string)
	if !ok || command == "" {
		return req, fmt.Errorf("'command' must be a non-empty string")
	}
	req.Command = command

	var err error
	if req.Flags, err = stringArray(args, "flags"); err != nil {
		return req, err
	}
	if req.Args, err = stringArray(args, "args"); err != nil {
		return req, err
	}

	if sudoVal, ok := args["requiresSudo"]; ok && sudoVal != nil {
		sudo, ok := sudoVal.(bool)
		if !ok {
			return req, fmt.Errorf("'requiresSudo' must be a boolean")
		}
		req.RequiresSudo = sudo
	}

	return req, nil
}

func stringArray(args map[string]interface{}, key string) ([]string, error) {
	val, ok := args[key]
	if !ok || val == nil {
		return nil, nil
	}

	switch v := val.(type) {
	case []string:
		return v, nil
	case []interface{}:
		if !lo.EveryBy(v, func(item interface{}) bool {
			_, isString := item.(string)
			return isString
		}) {
			return nil, fmt.Errorf("'%s' must contain only strings", key)
		}
		return lo.Map(v, func(item interface{}, _ int) string {
			return item.(string)
		}), nil
	default:
		return nil, fmt.Errorf("'%s' must be an array of strings", key)
	}
}

// ExecuteCommandTool decodes a tool call and runs it through the gate.
// Decoding problems are reported as text so the REPL can keep going.
func ExecuteCommandTool(ctx context.Context, g *gate.Gate, args map[string]interface{}) string {
	req, err := DecodeRequest(args)
	if err != nil {
		return fmt.Sprintf("Error: invalid %s call: %v", ExecuteCommandToolName, err)
	}
	return g.Execute(ctx, req)
}
