// Package audit inspects a directory tree ahead of a bulk transfer.
//
// It walks the tree once, depth first and without following symlinks,
// flags files whose extensions mark uncompressed formats, finds directories
// holding too many files, and streams the permission bits and owner of every
// entry to a gzip-compressed ownership ledger.
package audit
