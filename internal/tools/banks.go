package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/graphkeep/graphkeep/internal/models"
	"github.com/graphkeep/graphkeep/internal/session"
	"github.com/graphkeep/graphkeep/internal/storage"
)

// BankTools holds references needed by bank management tool handlers.
type BankTools struct {
	Meta    *storage.MetaStore
	Session *session.Session
}

// --- Input types ---

type ListBanksInput struct {
	Status string `json:"status" jsonschema:"Filter banks by status: active, archived, or all"`
}

type CreateBankInput struct {
	Name        string `json:"name" jsonschema:"Unique bank name (slug-friendly)"`
	Description string `json:"description,omitempty" jsonschema:"Optional bank description"`
}

type SwitchBankInput struct {
	Name string `json:"name" jsonschema:"Name of the bank to switch to"`
}

type ArchiveBankInput struct {
	Name string `json:"name" jsonschema:"Name of the bank to archive"`
}

type RestoreBankInput struct {
	Name string `json:"name" jsonschema:"Name of the archived bank to restore"`
}

type DeleteBankInput struct {
	Name string `json:"name" jsonschema:"Name of the bank to permanently delete"`
}

// --- Handlers ---

func (t *BankTools) ListBanks(_ context.Context, _ *mcp.CallToolRequest, input ListBanksInput) (*mcp.CallToolResult, any, error) {
	status := input.Status
	if status == "" {
		status = "active"
	}

	banks, err := t.Meta.ListBanks(status)
	if err != nil {
		return toolError("Failed to list banks: %v", err), nil, nil
	}
	if banks == nil {
		banks = []models.Bank{}
	}

	return toolJSON(banks)
}

func (t *BankTools) CreateBank(_ context.Context, _ *mcp.CallToolRequest, input CreateBankInput) (*mcp.CallToolResult, any, error) {
	if input.Name == "" {
		return toolError("Bank name is required"), nil, nil
	}

	bank, err := t.Meta.CreateBank(input.Name, input.Description)
	if err != nil {
		return toolError("Failed to create bank: %v", err), nil, nil
	}

	// Auto-switch to the new bank
	if _, err := t.Session.SwitchBank(t.Meta, bank.Name); err != nil {
		return toolError("Bank created but failed to switch: %v", err), nil, nil
	}

	return toolJSON(bank)
}

func (t *BankTools) SwitchBank(_ context.Context, _ *mcp.CallToolRequest, input SwitchBankInput) (*mcp.CallToolResult, any, error) {
	if input.Name == "" {
		return toolError("Bank name is required"), nil, nil
	}

	bank, err := t.Session.SwitchBank(t.Meta, input.Name)
	if err != nil {
		return toolError("Failed to switch bank: %v", err), nil, nil
	}

	return toolJSON(bank)
}

func (t *BankTools) GetCurrentBank(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, any, error) {
	id, name, ok := t.Session.GetCurrent()
	if !ok {
		return toolText("No bank is currently active. Use switch_bank to select one."), nil, nil
	}

	bank, err := t.Meta.GetBankByID(id)
	if err != nil {
		return toolText(fmt.Sprintf("Active bank: %s (details unavailable)", name)), nil, nil
	}

	return toolJSON(bank)
}

func (t *BankTools) ArchiveBank(_ context.Context, _ *mcp.CallToolRequest, input ArchiveBankInput) (*mcp.CallToolResult, any, error) {
	if input.Name == "" {
		return toolError("Bank name is required"), nil, nil
	}

	// If archiving the current bank, clear the session
	_, currentName, ok := t.Session.GetCurrent()
	if ok && currentName == input.Name {
		t.Session.Clear()
	}

	bank, err := t.Meta.ArchiveBank(input.Name)
	if err != nil {
		return toolError("Failed to archive bank: %v", err), nil, nil
	}

	return toolJSON(bank)
}

func (t *BankTools) RestoreBank(_ context.Context, _ *mcp.CallToolRequest, input RestoreBankInput) (*mcp.CallToolResult, any, error) {
	if input.Name == "" {
		return toolError("Bank name is required"), nil, nil
	}

	bank, err := t.Meta.RestoreBank(input.Name)
	if err != nil {
		return toolError("Failed to restore bank: %v", err), nil, nil
	}

	return toolJSON(bank)
}

func (t *BankTools) DeleteBank(_ context.Context, _ *mcp.CallToolRequest, input DeleteBankInput) (*mcp.CallToolResult, any, error) {
	if input.Name == "" {
		return toolError("Bank name is required"), nil, nil
	}

	// If deleting the current bank, clear the session
	_, currentName, ok := t.Session.GetCurrent()
	if ok && currentName == input.Name {
		t.Session.Clear()
	}

	if err := t.Meta.DeleteBank(input.Name); err != nil {
		return toolError("Failed to delete bank: %v", err), nil, nil
	}

	return toolText(fmt.Sprintf("Bank %q permanently deleted.", input.Name)), nil, nil
}

// --- Helpers ---

func toolText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func toolError(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf(format, args...)}},
		IsError: true,
	}
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError("Failed to marshal result: %v", err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil, nil
}
