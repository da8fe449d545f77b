package output

import (
	"os"
	"time"
)

// EntryType classifies a search result
type EntryType string

const (
	TypeFile      EntryType = "file"
	TypeDirectory EntryType = "directory"
	TypeSymlink   EntryType = "symlink"
	TypeOther     EntryType = "other"
)

// Entry is one search result with the metadata the formatters print
type Entry struct {
	Path    string    `json:"path" yaml:"path"`
	Type    EntryType `json:"type" yaml:"type"`
	Size    int64     `json:"size" yaml:"size"`
	ModTime time.Time `json:"modTime" yaml:"modTime"`
	Digest  string    `json:"digest,omitempty" yaml:"digest,omitempty"`
}

// NewEntry describes path from its file info. A nil info yields an entry of
// TypeOther, used for results that vanished or cannot be described.
func NewEntry(path string, info os.FileInfo) Entry {
	e := Entry{Path: path, Type: TypeOther}
	if info == nil {
		return e
	}

	e.Size = info.Size()
	e.ModTime = info.ModTime()

	mode := info.Mode()
	switch {
	case mode&os.ModeSymlink != 0:
		e.Type = TypeSymlink
	case mode.IsDir():
		e.Type = TypeDirectory
		e.Size = 0
	case mode.IsRegular():
		e.Type = TypeFile
	}

	return e
}
