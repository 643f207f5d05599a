// Package tables interprets raw table grids as bills of materials. It
// locates a header row by matching cell text against canonical field
// aliases and converts the rows below it into BOM items.
package tables
