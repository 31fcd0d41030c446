package mcpserver

// SyntaxGuide describes the note syntax understood by the preview.
const SyntaxGuide = `# Kyuubi Note Syntax

Notes are standard Markdown (GFM tables, task lists, strikethrough,
footnotes, math between $ or $$) plus three Obsidian-style constructs.

## Wiki-links

- ` + "`[[Target]]`" + ` links to the in-page anchor ` + "`#target`" + `.
- ` + "`[[Target|Shown text]]`" + ` shows different text. Only the first ` + "`|`" + ` splits.
- The anchor is the target lowercased, with runs of whitespace replaced by ` + "`-`" + `.
- Links are not resolved against other notes.

## Tags

- ` + "`#tag`" + ` at the start of a line or after whitespace becomes a tag badge.
- Tag characters: ASCII letters, digits, ` + "`_`" + ` and CJK ideographs (U+4E00 to U+9FA5).
- ` + "`# Heading`" + ` (hash then space) is a heading, never a tag.
- ` + "`C#`" + ` or ` + "`issue#42`" + ` are not tags: the hash must follow whitespace.

## Embeds

- ` + "`![[file.png]]`" + ` shows a placeholder labelled "Embedded: file.png".
- Embedded content is never loaded.

## Code

Nothing inside fenced code blocks or inline code spans is rewritten.
`
