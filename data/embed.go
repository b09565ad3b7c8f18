// Package data embeds the default item-bank reference documents.
package data

import "embed"

// FS holds the JSON documents read by a default import.
//
//go:embed *.json
var FS embed.FS
