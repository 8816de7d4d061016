package mcpserver

// FrontmatterContract describes the canonical tracked-block format that
// LLM consumers should follow when reading or editing documents.
const FrontmatterContract = `# Driftwatcher Frontmatter Contract

Every tracked Markdown document carries a ` + "`" + `driftwatcher:` + "`" + ` key in its
YAML frontmatter.

## Structure

` + "```" + `markdown
---
title: Any sibling keys are preserved untouched
driftwatcher:
  - "../src/main.go": 3b6a6f7e9c1d...   # 64-char lowercase hex SHA-256
  - "src/**/*.go": 58bb119cd943...
---

Document body in standard Markdown.
` + "```" + `

## Rules

1. **The frontmatter fences must be the first thing in the file.** The
   block starts at byte 0 with ` + "```" + `---` + "```" + ` and ends at the next line that is
   exactly ` + "```" + `---` + "```" + `.
2. **Entries are single-key mappings** from a pattern to a hash, listed
   under ` + "`" + `driftwatcher:` + "`" + `. Quote patterns so YAML never misreads them.
3. **Patterns resolve relative to the document's directory.** ` + "`" + `../` + "`" + ` is
   allowed. A ` + "`" + `$ROOT/` + "`" + ` prefix resolves from the project root instead
   (the nearest ancestor directory containing ` + "`" + `.git` + "`" + `).
4. **Globs** use ` + "`" + `*` + "`" + `, ` + "`" + `?` + "`" + `, ` + "`" + `[` + "`" + ` and ` + "`" + `**` + "`" + `. Any other pattern is a
   literal path. Hidden path components (leading dot) never match.
5. **Hashes** are SHA-256 over the concatenated raw contents of every
   matched file, sorted by normalized path. A directory pattern hashes
   its visible files recursively.
6. **Statuses**: CURRENT (hash matches), DRIFTED (files changed),
   MISSING (pattern matches nothing), INVALID (no hash, bad pattern, or
   no project root for ` + "`" + `$ROOT/` + "`" + `).
7. **Do not edit hashes by hand.** Use the ` + "`" + `accept_drift` + "`" + ` tool (or
   ` + "`" + `drifty check` + "`" + `) so the recorded hash always reflects real file
   contents.

## Example

` + "```" + `markdown
---
driftwatcher:
  - "../internal/parser.go": 0a1b2c3d4e5f60718293a4b5c6d7e8f90a1b2c3d4e5f60718293a4b5c6d7e8f9
---

# Parser internals

This guide documents the recursive descent parser.
` + "```" + `
`
