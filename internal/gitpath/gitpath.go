// Package gitpath contains the constants describing the layout of the
// REPO directory (.mintvcs/ by default).
package gitpath

// REPO/ files and directories, relative to the repository directory.
const (
	DotVCSPath      = ".mintvcs"
	ConfigPath      = "config"
	DescriptionPath = "description"
	HEADPath        = "HEAD"
	IndexPath       = "index"
	ObjectsPath     = "objects"
	RefsPath        = "refs"
	RefsTagsPath    = RefsPath + "/tags"
	RefsHeadsPath   = RefsPath + "/heads"
)

// IgnoreFileName is the name of the ignore file at the repo root.
const IgnoreFileName = ".mintvcsignore"
