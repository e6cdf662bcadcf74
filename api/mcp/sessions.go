package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/catalog/pkg/catalog"
	"github.com/papercomputeco/catalog/pkg/export"
)

var (
	listSessionsToolName    = "list_sessions"
	listSessionsDescription = "List captured conversation sessions, most recently active first. Each session carries its id, title, timestamps, and entry count."

	getSessionToolName    = "get_session"
	getSessionDescription = "Get a single captured session by id, including every captured entry in conversation order."

	exportSessionToolName    = "export_session"
	exportSessionDescription = "Render a captured session as a document. Formats: json, markdown, text. Optionally restrict to specific entry ids."
)

// SessionSummary is one row of the list_sessions output.
type SessionSummary struct {
	SessionID  string `json:"session_id"`
	Title      string `json:"title"`
	CreatedAt  int64  `json:"createdAt"`
	UpdatedAt  int64  `json:"updatedAt"`
	EntryCount int    `json:"entry_count"`
}

// ListSessionsInput represents the input arguments for the list_sessions tool.
type ListSessionsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of sessions to return (default: all)"`
}

// ListSessionsOutput represents the output of the list_sessions tool.
type ListSessionsOutput struct {
	Sessions []SessionSummary `json:"sessions"`
	Count    int              `json:"count"`
}

// GetSessionInput represents the input arguments for the get_session tool.
type GetSessionInput struct {
	SessionID string `json:"session_id" jsonschema:"the session id to fetch"`
}

// GetSessionOutput represents the output of the get_session tool.
type GetSessionOutput struct {
	SessionID string          `json:"session_id"`
	Title     string          `json:"title"`
	CreatedAt int64           `json:"createdAt"`
	UpdatedAt int64           `json:"updatedAt"`
	Entries   []catalog.Entry `json:"entries"`
}

// ExportSessionInput represents the input arguments for the export_session tool.
type ExportSessionInput struct {
	SessionID string   `json:"session_id" jsonschema:"the session id to export"`
	Format    string   `json:"format,omitempty" jsonschema:"output format: json, markdown, or text (default: markdown)"`
	EntryIDs  []string `json:"entry_ids,omitempty" jsonschema:"restrict the export to these entry ids"`
}

// ExportSessionOutput represents the output of the export_session tool.
type ExportSessionOutput struct {
	SessionID string `json:"session_id"`
	Format    string `json:"format"`
	Document  string `json:"document"`
}

// handleListSessions processes a list_sessions request.
func (s *Server) handleListSessions(ctx context.Context, _ *mcp.CallToolRequest, input ListSessionsInput) (*mcp.CallToolResult, ListSessionsOutput, error) {
	snap, err := s.config.Storer.Load(ctx)
	if err != nil {
		s.config.Logger.Error("failed to load snapshot", zap.Error(err))
		return toolError(fmt.Sprintf("Failed to load sessions: %v", err)), ListSessionsOutput{}, nil
	}

	summaries := make([]SessionSummary, 0, len(snap))
	for id, sess := range snap {
		summaries = append(summaries, SessionSummary{
			SessionID:  id,
			Title:      sess.Title,
			CreatedAt:  sess.CreatedAt,
			UpdatedAt:  sess.UpdatedAt,
			EntryCount: len(sess.Entries),
		})
	}
	sortSummaries(summaries)

	if input.Limit > 0 && input.Limit < len(summaries) {
		summaries = summaries[:input.Limit]
	}

	output := ListSessionsOutput{
		Sessions: summaries,
		Count:    len(summaries),
	}
	return toolResult(output)
}

// handleGetSession processes a get_session request.
func (s *Server) handleGetSession(ctx context.Context, _ *mcp.CallToolRequest, input GetSessionInput) (*mcp.CallToolResult, GetSessionOutput, error) {
	if input.SessionID == "" {
		return toolError("session_id is required"), GetSessionOutput{}, nil
	}

	snap, err := s.config.Storer.Load(ctx)
	if err != nil {
		s.config.Logger.Error("failed to load snapshot", zap.Error(err))
		return toolError(fmt.Sprintf("Failed to load sessions: %v", err)), GetSessionOutput{}, nil
	}

	sess, ok := snap[input.SessionID]
	if !ok {
		return toolError(fmt.Sprintf("Session not found: %s", input.SessionID)), GetSessionOutput{}, nil
	}

	output := GetSessionOutput{
		SessionID: input.SessionID,
		Title:     sess.Title,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
		Entries:   sess.Entries,
	}
	return toolResult(output)
}

// handleExportSession processes an export_session request.
func (s *Server) handleExportSession(ctx context.Context, _ *mcp.CallToolRequest, input ExportSessionInput) (*mcp.CallToolResult, ExportSessionOutput, error) {
	if input.SessionID == "" {
		return toolError("session_id is required"), ExportSessionOutput{}, nil
	}

	formatName := input.Format
	if formatName == "" {
		formatName = string(export.FormatMarkdown)
	}
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return toolError(err.Error()), ExportSessionOutput{}, nil
	}

	snap, err := s.config.Storer.Load(ctx)
	if err != nil {
		s.config.Logger.Error("failed to load snapshot", zap.Error(err))
		return toolError(fmt.Sprintf("Failed to load sessions: %v", err)), ExportSessionOutput{}, nil
	}

	sess, ok := snap[input.SessionID]
	if !ok {
		return toolError(fmt.Sprintf("Session not found: %s", input.SessionID)), ExportSessionOutput{}, nil
	}

	doc, err := export.Render(input.SessionID, sess, input.EntryIDs, format)
	if err != nil {
		return toolError(fmt.Sprintf("Failed to render session: %v", err)), ExportSessionOutput{}, nil
	}

	output := ExportSessionOutput{
		SessionID: input.SessionID,
		Format:    string(format),
		Document:  doc,
	}
	return toolResult(output)
}

func sortSummaries(summaries []SessionSummary) {
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].UpdatedAt != summaries[j].UpdatedAt {
			return summaries[i].UpdatedAt > summaries[j].UpdatedAt
		}
		return summaries[i].SessionID < summaries[j].SessionID
	})
}

func toolError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}

// toolResult serializes the structured output as JSON for the text field.
// Per MCP spec: tools returning structured content should also return
// serialized JSON in a TextContent block for backwards compatibility.
func toolResult[T any](output T) (*mcp.CallToolResult, T, error) {
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		var zero T
		return toolError(fmt.Sprintf("Failed to serialize results: %v", err)), zero, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
