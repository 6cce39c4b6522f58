// Package perm shares the healthperm state directory with a system group on
// Linux. On other platforms the SetGroup* functions are no-ops.
//
// Members of the sharing group (default "healthperm", see UseGroup) may
// review and change grants without root: the state directory is traversable
// by the group and the grants file is group-writable. The config file stays
// group-readable only.
//
//	Path                          Group        Mode   Set by
//	────────────────────────────  ───────────  ────   ─────────────────
//	~/.healthperm/                healthperm   0770   SetGroupDir
//	~/.healthperm/config.yaml     healthperm   0640   SetGroupReadable
//	~/.healthperm/grants.yaml     healthperm   0660   SetGroupWritable
//
// If the group does not exist, or sharing is off, files keep the mode they
// were created with.
package perm
