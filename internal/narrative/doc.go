// Package narrative turns authored overview and glossary files into
// codebook.Narrative sections.
//
// Markdown and HTML files are supported. Only structure survives: headings
// become subheadings and everything else becomes plain paragraphs, since
// the codebook layout is a single linear flow.
package narrative
