// Package embedded provides the document templates and slash-command files
// compiled into the taskmcp binary.
package embedded

import "embed"

// TemplatesFS contains the text/template sources for every rendered document.
//
//go:embed templates/*.tmpl
var TemplatesFS embed.FS

// CommandsFS contains the slash-command markdown installed by
// "taskmcp commands install". Use fs.ReadDir to enumerate them.
//
//go:embed commands/*.md
var CommandsFS embed.FS
