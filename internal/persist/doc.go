// Package persist saves and restores grids and preloads catalog reference
// data.
//
// A Gateway writes two keys under its namespace: "grid", a versioned JSON
// snapshot, and "counter", the id sequence that must travel with it so that
// ids minted after a restore never collide with restored ones. Restore
// reports false for missing or corrupt snapshots; callers start over with a
// fresh grid.
//
// Storage is any KV. DiskKV keeps one file per key using diskv; MemoryKV is
// used when nothing should outlive the process.
package persist
