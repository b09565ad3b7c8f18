// Package itembank installs the item-bank ontology of an assessment
// platform: curriculum-standard trees, evidence-statement and task-model
// lists, and the item class hierarchy whose properties point at them.
//
// # Pipeline
//
// An import runs in two phases:
//
//  1. Reference data: subsets of the ELA and Math standard trees are
//     materialised as tree classes, and evidence statements and task models
//     are grouped by subject and grade into ordered lists.
//
//  2. Structure: the declarative item-bank map is walked to create (or
//     reuse, by label) item subclasses, attaching "Common Core State
//     Standard ID", "Evidence Statement", and "Task Model" properties whose
//     ranges are the trees and lists from phase 1.
//
// Every created resource carries a provenance tag (the generator identity)
// and the id of the run that created it. Teardown deletes by tag alone, so
// hand-made data under the same roots is never touched.
//
// # Usage
//
//	in, err := itembank.New("itembank.db")
//	if err != nil { ... }
//	defer in.Close()
//
//	ctx := context.Background()
//	applied, err := in.Migrate(ctx)
//	report, err := in.Audit(ctx)
//
// [Installer.Up], [Installer.Down], and [Installer.Reload] are available
// directly; [Installer.Migrate] and [Installer.Rollback] drive them through
// the versioned ledger in [Migrations].
//
// # Reference data
//
// The eight JSON source documents are embedded (see package data). Use
// [WithDataDir] or [WithDataFS] to import a different set; subject and grade
// values may be JSON strings or numbers.
//
// # Scripts
//
// [Installer.Audit] runs the bundled Risor script scripts/audit.risor with
// read-only repository host functions. [Installer.RunScript] runs any other
// script with the same globals. See the internal/runtime package for the
// full set.
package itembank
