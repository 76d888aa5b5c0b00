//go:build !windows && !plan9

package audit

import (
	"io/fs"
	"syscall"
)

// ownerOf extracts the owning uid and gid from file info.
func ownerOf(info fs.FileInfo) (uid, gid int64) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return -1, -1
	}

	return int64(stat.Uid), int64(stat.Gid)
}
