package audio

import (
	"os"
	"sync"

	"github.com/pkg/errors"
)

// Resource is a temporary playable copy of an audio payload. Release removes
// it; only the first call has an effect.
type Resource struct {
	path      string
	once      sync.Once
	err       error
	onRelease func(path string)
}

func newResource(dir, pattern string, data []byte) (*Resource, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, errors.Wrap(err, "create temporary audio file")
	}
	path := f.Name()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, errors.Wrap(err, "write temporary audio file")
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, errors.Wrap(err, "close temporary audio file")
	}
	return &Resource{path: path}, nil
}

// Path is the location handed to the player process.
func (r *Resource) Path() string {
	return r.path
}

// Release deletes the temporary file.
func (r *Resource) Release() error {
	r.once.Do(func() {
		if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
			r.err = errors.Wrap(err, "remove temporary audio file")
		}
		if r.onRelease != nil {
			r.onRelease(r.path)
		}
	})
	return r.err
}
