// Package dashboard embeds the status page served by the status API at "/".
//
// The page is a single html/template file. It renders the worker table from
// the /api/sse snapshot event and keeps it current through the per-state
// events that follow.
package dashboard

import "embed"

// Assets is an embedded filesystem containing the status page.
//
//	assets/
//	  index.html    - worker table with inline CSS and JavaScript
//
//go:embed assets/*
var Assets embed.FS
