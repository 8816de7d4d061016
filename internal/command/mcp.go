package command

import (
	"github.com/corporealshift/driftwatcher/internal/mcpserver"
)

// Mcp serves the drift tools over MCP stdio. Logging stays on stderr so
// stdout carries only protocol frames.
func Mcp(env *Env, target string) error {
	return mcpserver.New(env.Engine(), target).ServeStdio()
}
