// Package scripts holds the Risor scripts bundled with the installer.
package scripts

import "embed"

// AuditScript is the path of the post-import audit within FS.
const AuditScript = "audit.risor"

//go:embed *.risor
var FS embed.FS
