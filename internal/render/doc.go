// Package render turns a layout.Document into concrete output.
//
// This package contains renderers for different output formats:
//   - MarkdownRenderer: GitHub-flavored markdown with a table of contents
//     and mermaid pie charts for frequency tables
//   - TextRenderer: plain text for terminals and pagers
//   - JSONRenderer: the raw instruction stream for other tools
//
// The markdown and text renderers implement layout.Surface and replay the
// document with layout.Replay. None of them needs anything beyond the
// document itself.
package render
