// Package report writes graded pages in human and machine formats.
//
//   - SimpleWriter: plain text for the terminal
//   - JSONWriter: JSON for other tools
//   - MarkdownWriter: Markdown with mermaid charts for sharing
//
// Every writer can write a single detailed report or a batch of entries.
package report
