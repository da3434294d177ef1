package archive

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/afero"
	"google.golang.org/api/option"

	"github.com/digione/xnatsync/pkg/domain/interfaces"
)

// GCS copies staging folders to a Cloud Storage bucket under prefix/label/
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
	fs     afero.Fs
}

var _ interfaces.Archiver = (*GCS)(nil)

// NewGCS creates an archiver writing into bucket. Files are read from fs.
func NewGCS(ctx context.Context, fs afero.Fs, bucket, prefix string, opts ...option.ClientOption) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.New("bucket is required")
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Cloud Storage client", goerr.V("bucket", bucket))
	}

	return &GCS{client: client, bucket: bucket, prefix: prefix, fs: fs}, nil
}

// Close closes the underlying client
func (g *GCS) Close() error {
	return g.client.Close()
}

// ObjectName returns the object name for a file of a staging folder
func (g *GCS) ObjectName(label, name string) string {
	return path.Join(g.prefix, label, name)
}

func (g *GCS) Archive(ctx context.Context, label, folder string) error {
	logger := ctxlog.From(ctx)
	bkt := g.client.Bucket(g.bucket)

	var uploaded int
	err := afero.Walk(g.fs, folder, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(folder, p)
		if err != nil {
			return goerr.Wrap(err, "failed to resolve staged file", goerr.V("path", p))
		}
		name := g.ObjectName(label, filepath.ToSlash(rel))

		if err := g.upload(ctx, bkt.Object(name), p); err != nil {
			return goerr.Wrap(err, "failed to upload staged file",
				goerr.V("bucket", g.bucket), goerr.V("object", name))
		}
		uploaded++
		return nil
	})
	if err != nil {
		return goerr.Wrap(err, "failed to archive staging folder", goerr.V("label", label), goerr.V("folder", folder))
	}

	logger.Info("Archived staging folder", "label", label, "bucket", g.bucket, "files", uploaded)
	return nil
}

func (g *GCS) upload(ctx context.Context, obj *storage.ObjectHandle, p string) error {
	src, err := g.fs.Open(p)
	if err != nil {
		return err
	}
	defer src.Close()

	w := obj.NewWriter(ctx)
	w.ContentType = "application/dicom"
	if _, err := io.Copy(w, src); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
