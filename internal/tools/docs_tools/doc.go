// Package docs_tools registers the Google Docs MCP tools: reading a
// document in Markdown, plain text or structured JSON form, applying
// ordered batches of edit operations, creating documents, and fetching
// Drive metadata.
package docs_tools
