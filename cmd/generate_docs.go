package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"golang.org/x/oauth2"

	"github.com/docsforge/google-docs-mcp/internal/server"
	"github.com/docsforge/google-docs-mcp/internal/tools/docs_tools"
)

// staticDocProvider satisfies the token provider interface without any
// real credentials. Doc generation never calls the API.
type staticDocProvider struct{}

func (staticDocProvider) Token(ctx context.Context) (*oauth2.Token, error) {
	return &oauth2.Token{AccessToken: "doc-generation"}, nil
}

func newGenerateDocsCmd() *cobra.Command {
	var (
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for all available MCP tools.
This command introspects the registered tools and outputs their documentation
in markdown format, ensuring the documentation is always accurate and in sync
with the actual tool implementations.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerateDocs(outputFile)
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runGenerateDocs(outputFile string) error {
	// Doc generation only introspects tool schemas; no real
	// credentials are needed and no API calls are made.
	ctx := context.Background()
	serverContext, err := server.NewServerContext(ctx, staticDocProvider{}, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() {
		_ = serverContext.Shutdown()
	}()

	mcpSrv := mcpserver.NewMCPServer("google-docs-mcp", version,
		mcpserver.WithToolCapabilities(true),
	)

	if err := docs_tools.RegisterDocsTools(mcpSrv, serverContext); err != nil {
		return fmt.Errorf("failed to register Docs tools: %w", err)
	}

	tools := make([]mcp.Tool, 0, len(mcpSrv.ListTools()))
	for _, serverTool := range mcpSrv.ListTools() {
		tools = append(tools, serverTool.Tool)
	}

	markdown := generateToolsMarkdown(tools)

	if outputFile == "" {
		fmt.Print(markdown)
		return nil
	}
	if err := os.WriteFile(outputFile, []byte(markdown), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "Documentation written to: %s\n", outputFile)
	return nil
}

func generateToolsMarkdown(tools []mcp.Tool) string {
	sorted := slices.SortedFunc(slices.Values(tools), func(a, b mcp.Tool) int {
		return strings.Compare(a.Name, b.Name)
	})

	var sb strings.Builder
	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("This document provides a complete reference of all tools available when running google-docs-mcp as an MCP server.\n\n")
	sb.WriteString("**Note:** This documentation is automatically generated from the tool definitions.\n\n")

	sb.WriteString("## Table of Contents\n\n")
	for _, tool := range sorted {
		fmt.Fprintf(&sb, "- [%s](#%s)\n", tool.Name, strings.ToLower(tool.Name))
	}
	sb.WriteString("\n")

	sb.WriteString("## Authentication\n\n")
	sb.WriteString("All tools use the service account configured at server startup. ")
	sb.WriteString("Documents must be shared with the service account's email address:\n\n")
	sb.WriteString("- **Read tools** require at least Viewer access\n")
	sb.WriteString("- **Edit tools** require Editor access\n\n")

	for _, tool := range sorted {
		sb.WriteString(generateToolMarkdown(tool))
		sb.WriteString("\n")
	}
	return sb.String()
}

func generateToolMarkdown(tool mcp.Tool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "### %s\n\n", tool.Name)
	if tool.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", tool.Description)
	}

	schema := tool.InputSchema
	if len(schema.Properties) == 0 {
		return sb.String()
	}

	sb.WriteString("**Arguments:**\n")
	for _, name := range slices.Sorted(maps.Keys(schema.Properties)) {
		prop, ok := schema.Properties[name].(map[string]interface{})
		if !ok {
			continue
		}
		required := "optional"
		if slices.Contains(schema.Required, name) {
			required = "required"
		}
		fmt.Fprintf(&sb, "- `%s` (%s): %s\n", name, required, propertyDescription(prop))
	}
	sb.WriteString("\n")

	return sb.String()
}

// propertyDescription falls back to "<type> parameter" for schema
// properties declared without a description.
func propertyDescription(prop map[string]interface{}) string {
	if desc, ok := prop["description"].(string); ok {
		return desc
	}
	propType := "any"
	if t, ok := prop["type"].(string); ok {
		propType = t
	}
	return propType + " parameter"
}
