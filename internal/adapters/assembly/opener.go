package assembly

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/cicd/internal/core/domain"
	"go.trai.ch/cicd/internal/core/ports"
	"go.trai.ch/zerr"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob" // driver for mem://
	_ "gocloud.dev/blob/s3blob"  // driver for s3://
)

// Opener implements ports.AssemblyStoreOpener.
type Opener struct{}

// NewOpener creates a new Opener.
func NewOpener() *Opener {
	return &Opener{}
}

// Open opens the store at location. A location with a URL scheme (file://, s3://, mem://)
// is opened through the default blob URL mux. Anything else is a local directory, which
// is created when missing.
func (*Opener) Open(ctx context.Context, location string) (ports.AssemblyStore, error) {
	if location == "" {
		location = domain.DefaultAssemblyDir
	}

	if strings.Contains(location, "://") {
		bucket, err := blob.OpenBucket(ctx, location)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreOpenFailed.Error()), "location", location)
		}
		return NewStore(bucket), nil
	}

	dir, err := filepath.Abs(location)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreOpenFailed.Error()), "location", location)
	}
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreOpenFailed.Error()), "location", dir)
	}
	bucket, err := fileblob.OpenBucket(dir, nil)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreOpenFailed.Error()), "location", dir)
	}
	return NewStore(bucket), nil
}
