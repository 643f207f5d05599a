// Package interpret derives synthetic BOM items from documents that
// carry no usable table: free-text callouts are parsed into entries, and
// vector shapes are clustered into pseudo-items. Both paths share a
// position allocator so their items never collide on a position.
package interpret
