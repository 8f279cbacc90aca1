package web

import "embed"

// Templates embeds the export print-layout templates.
//
//go:embed templates/export/*.html
var Templates embed.FS
