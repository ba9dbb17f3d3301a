package server

import (
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/graphkeep/graphkeep/internal/session"
	"github.com/graphkeep/graphkeep/internal/storage"
	"github.com/graphkeep/graphkeep/internal/tools"
)

// New creates a fully configured MCP server with all tools registered. The
// default bank is created if needed and pre-selected so the knowledge tools
// work on a fresh data directory without any bank-management call.
func New(meta *storage.MetaStore) *mcp.Server {
	sess := session.New()

	if _, err := meta.EnsureDefaultBank(); err != nil {
		slog.Warn("ensure default bank", "error", err)
	} else if _, err := sess.SwitchBank(meta, storage.DefaultBankName); err != nil {
		slog.Warn("select default bank", "error", err)
	}

	bt := &tools.BankTools{Meta: meta, Session: sess}
	kt := &tools.KnowledgeTools{Session: sess}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "graphkeep",
		Version: "0.1.0",
	}, nil)

	// Bank management tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_banks",
		Description: "List all memory banks with optional status filter (active, archived, all)",
	}, bt.ListBanks)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "create_bank",
		Description: "Create a new memory bank with its own isolated graph file",
	}, bt.CreateBank)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "switch_bank",
		Description: "Switch the active memory bank for the current session",
	}, bt.SwitchBank)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "get_current_bank",
		Description: "Get information about the currently active memory bank",
	}, bt.GetCurrentBank)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "archive_bank",
		Description: "Archive a memory bank (preserves data, makes it inactive)",
	}, bt.ArchiveBank)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "restore_bank",
		Description: "Restore an archived memory bank back to active status",
	}, bt.RestoreBank)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_bank",
		Description: "Permanently delete a memory bank and its graph file (irreversible)",
	}, bt.DeleteBank)

	// Knowledge graph tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "create_entities",
		Description: "Create multiple new entities in the knowledge graph; existing names are skipped",
	}, kt.CreateEntities)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "create_relations",
		Description: "Create directed relations between entities; duplicate triples are skipped",
	}, kt.CreateRelations)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "add_observations",
		Description: "Add new observations to existing entities",
	}, kt.AddObservations)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_entities",
		Description: "Delete entities and cascade to every relation referencing them",
	}, kt.DeleteEntities)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_observations",
		Description: "Delete specific observations from entities by exact match",
	}, kt.DeleteObservations)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_relations",
		Description: "Delete specific relations from the knowledge graph",
	}, kt.DeleteRelations)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "read_graph",
		Description: "Read the entire knowledge graph of the current bank",
	}, kt.ReadGraph)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "search_nodes",
		Description: "Search entities by case-insensitive substring match on name, type, and observations",
	}, kt.SearchNodes)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "open_nodes",
		Description: "Retrieve specific entities by exact name match",
	}, kt.OpenNodes)

	return srv
}
