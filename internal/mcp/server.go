package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ksaito/kotoba/internal/config"
	"github.com/ksaito/kotoba/internal/engine"
	"github.com/ksaito/kotoba/internal/store"
	"github.com/ksaito/kotoba/internal/translate"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"translate": {
		def:     translateToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTranslate },
	},
	"vocab_save": {
		def:     vocabSaveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSave },
	},
	"vocab_list": {
		def:     vocabListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"vocab_delete": {
		def:     vocabDeleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
	"vocab_purge": {
		def:     vocabPurgeToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandlePurge },
	},
	"calendar_list": {
		def:     calendarListToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCalendar },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with Kotoba tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(eng *engine.Engine, st store.Store, tr translate.Translator, cfg *config.Config, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"kotoba",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(eng, st, tr, cfg)

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	// Register tools (skip disabled)
	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(eng *engine.Engine, st store.Store, tr translate.Translator, cfg *config.Config, version string) error {
	s := NewServer(eng, st, tr, cfg, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
