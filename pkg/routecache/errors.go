package routecache

import "errors"

var (
	ErrNotFound        = errors.New("routecache: manifest not found")
	ErrInvalidManifest = errors.New("routecache: invalid manifest")
	ErrSave            = errors.New("routecache: failed to save manifest")
	ErrBuild           = errors.New("routecache: failed to build manifest")
)
