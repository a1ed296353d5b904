// Package docs provides functionality for interacting with the Google
// Docs API using service account credentials.
//
// The package handles:
//   - Document retrieval and batch updates via the Google Docs API
//   - Translation of the stable wire operations (insert_text,
//     delete_content_range, replace_all_text) into ordered API request
//     batches
//   - Document conversion to Markdown, plain text, and a structured
//     JSON outline that preserves character indices
//   - Typed error mapping, bounded retry with exponential backoff, and
//     client-side rate limiting
//
// Example usage:
//
//	client, err := docs.NewClient(ctx, docs.ClientConfig{TokenProvider: provider})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	doc, err := client.GetDocument(ctx, "1ABC123xyz")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	markdown, err := docs.DocumentToMarkdown(doc)
//	if err != nil {
//	    log.Fatal(err)
//	}
package docs
