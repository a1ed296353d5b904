package docs_tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/docsforge/google-docs-mcp/internal/docs"
	"github.com/docsforge/google-docs-mcp/internal/instrumentation"
	"github.com/docsforge/google-docs-mcp/internal/server"
	"github.com/docsforge/google-docs-mcp/internal/tools/common"
)

// Response format values accepted by the document tools.
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatText     = "text"
)

// RegisterDocsTools registers all Google Docs-related tools with the MCP server
func RegisterDocsTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	getDocumentTool := mcp.NewTool("google_docs_get_document",
		mcp.WithDescription("Get the content of a Google Doc by document ID"),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("The ID of the Google Doc"),
		),
		mcp.WithString("response_format",
			mcp.Description("Output format: 'markdown' (default), 'json' (structured outline), or 'text'"),
		),
	)

	s.AddTool(getDocumentTool, common.InstrumentedToolHandlerWithService(
		"google_docs_get_document", instrumentation.ServiceDocs, instrumentation.OperationGet, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetDocument(ctx, request, sc)
		}))

	updateDocumentTool := mcp.NewTool("google_docs_update_document",
		mcp.WithDescription("Apply an ordered batch of edit operations to a Google Doc. "+
			"Each operation is an object with exactly one of: "+
			"insert_text {text, index}, delete_content_range {start_index, end_index}, "+
			"replace_all_text {find_text, replace_text, match_case}. "+
			"The batch is applied atomically and in order; indices refer to the document "+
			"state after all preceding operations in the batch."),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("The ID of the Google Doc"),
		),
		mcp.WithArray("requests",
			mcp.Required(),
			mcp.Description("Ordered list of edit operation objects"),
		),
		mcp.WithString("response_format",
			mcp.Description("Format for the post-update document content: 'markdown' (default), 'json', or 'text'"),
		),
	)

	s.AddTool(updateDocumentTool, common.InstrumentedToolHandlerWithService(
		"google_docs_update_document", instrumentation.ServiceDocs, instrumentation.OperationBatchUpdate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleUpdateDocument(ctx, request, sc)
		}))

	createDocumentTool := mcp.NewTool("google_docs_create_document",
		mcp.WithDescription("Create a new, empty Google Doc with the given title"),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Title for the new document"),
		),
	)

	s.AddTool(createDocumentTool, common.InstrumentedToolHandlerWithService(
		"google_docs_create_document", instrumentation.ServiceDocs, instrumentation.OperationCreate, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCreateDocument(ctx, request, sc)
		}))

	getMetadataTool := mcp.NewTool("google_docs_get_document_metadata",
		mcp.WithDescription("Get Drive metadata (name, timestamps, owners) for a Google Doc"),
		mcp.WithString("document_id",
			mcp.Required(),
			mcp.Description("The ID of the Google Doc or Drive file"),
		),
	)

	s.AddTool(getMetadataTool, common.InstrumentedToolHandlerWithService(
		"google_docs_get_document_metadata", instrumentation.ServiceDrive, instrumentation.OperationMetadata, sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetMetadata(ctx, request, sc)
		}))

	return nil
}

func handleGetDocument(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	documentID, ok := args["document_id"].(string)
	if !ok || documentID == "" {
		return mcp.NewToolResultError("document_id is required"), nil
	}

	format, errResult := responseFormat(args)
	if errResult != nil {
		return errResult, nil
	}

	client, err := sc.DocsClient()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Docs client: %v", err)), nil
	}

	switch format {
	case FormatMarkdown:
		content, err := client.GetDocumentAsMarkdown(ctx, documentID)
		if err != nil {
			return toolError("get document", err)
		}
		return mcp.NewToolResultText(content), nil

	case FormatText:
		content, err := client.GetDocumentAsPlainText(ctx, documentID)
		if err != nil {
			return toolError("get document", err)
		}
		return mcp.NewToolResultText(content), nil

	case FormatJSON:
		doc, err := client.GetDocument(ctx, documentID)
		if err != nil {
			return toolError("get document", err)
		}
		data, err := json.MarshalIndent(docs.DocumentToOutline(doc), "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize document: %v", err)), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	}

	// Unreachable: responseFormat validated the value.
	return mcp.NewToolResultError(fmt.Sprintf("unsupported format %q", format)), nil
}

func handleUpdateDocument(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	documentID, ok := args["document_id"].(string)
	if !ok || documentID == "" {
		return mcp.NewToolResultError("document_id is required"), nil
	}

	format, errResult := responseFormat(args)
	if errResult != nil {
		return errResult, nil
	}

	ops, err := docs.DecodeOperations(args["requests"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	client, err := sc.DocsClient()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Docs client: %v", err)), nil
	}

	doc, err := client.UpdateDocument(ctx, documentID, ops)
	if err != nil {
		return toolError("update document", err)
	}

	var summary strings.Builder
	fmt.Fprintf(&summary, "Applied %d operation(s) to document %s:\n", len(ops), documentID)
	for i, op := range ops {
		fmt.Fprintf(&summary, "  %d. %s\n", i+1, op.Describe())
	}
	summary.WriteString("\n")

	switch format {
	case FormatMarkdown:
		content, err := docs.DocumentToMarkdown(doc)
		if err != nil {
			return toolError("render document", err)
		}
		summary.WriteString(content)

	case FormatText:
		content, err := docs.DocumentToPlainText(doc)
		if err != nil {
			return toolError("render document", err)
		}
		summary.WriteString(content)

	case FormatJSON:
		data, err := json.MarshalIndent(docs.DocumentToOutline(doc), "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize document: %v", err)), nil
		}
		summary.Write(data)
	}

	return mcp.NewToolResultText(summary.String()), nil
}

func handleCreateDocument(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	title, ok := args["title"].(string)
	if !ok || title == "" {
		return mcp.NewToolResultError("title is required"), nil
	}

	client, err := sc.DocsClient()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Docs client: %v", err)), nil
	}

	doc, err := client.CreateDocument(ctx, title)
	if err != nil {
		return toolError("create document", err)
	}

	return mcp.NewToolResultText(fmt.Sprintf("Created document %q with ID %s", doc.Title, doc.DocumentId)), nil
}

func handleGetMetadata(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	documentID, ok := args["document_id"].(string)
	if !ok || documentID == "" {
		return mcp.NewToolResultError("document_id is required"), nil
	}

	client, err := sc.DocsClient()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create Docs client: %v", err)), nil
	}

	metadata, err := client.GetFileMetadata(ctx, documentID)
	if err != nil {
		return toolError("get metadata", err)
	}

	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize metadata: %v", err)), nil
	}

	return mcp.NewToolResultText(string(data)), nil
}

// responseFormat extracts and validates the response_format argument.
// Returns the format, or a non-nil error result for an invalid value.
func responseFormat(args map[string]interface{}) (string, *mcp.CallToolResult) {
	format := FormatMarkdown
	if val, ok := args["response_format"].(string); ok && val != "" {
		format = val
	}

	switch format {
	case FormatMarkdown, FormatJSON, FormatText:
		return format, nil
	default:
		return "", mcp.NewToolResultError(
			fmt.Sprintf("Invalid response_format %q, must be 'markdown', 'json', or 'text'", format))
	}
}

// toolError maps a client error to a tool error result. Cancellation
// propagates as a handler error so the transport can abort the call.
func toolError(action string, err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}
	return mcp.NewToolResultError(fmt.Sprintf("Failed to %s: %v", action, err)), nil
}
