// SPDX-License-Identifier: EPL-2.0

// Package storage is the block-read boundary between the playback core and
// the storage stack.
//
// The core never touches a filesystem directly. It consumes a BlockDevice
// through one synchronous call:
//
//	ReadBlocks(start, count) -> bytes | error
//
// and turns extents of blocks into seekable files. A BlockFile issues at
// most one ReadBlocks per Read, so a decoder unit costs a bounded amount of
// storage latency on the main loop. Read errors are sticky and reported
// through Err, which lets the decoder layer tell storage failures apart
// from malformed files even when a codec library swallows the original
// error value.
//
// Catalog maps paths to extents on a device (the FAT layer is out of
// scope, so tests and tools build catalogs directly with Image). DirFS
// serves files from a host directory for the command-line harness.
package storage
