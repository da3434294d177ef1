package archive_test

import (
	"context"
	"io"
	"os"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/m-mizutani/gt"
	"github.com/spf13/afero"

	"github.com/digione/xnatsync/pkg/infra/archive"
)

func TestGCS_Archive(t *testing.T) {
	bucket, ok := os.LookupEnv("TEST_GCS_BUCKET")
	if !ok {
		t.Skip("TEST_GCS_BUCKET is not set")
	}
	ctx := context.Background()

	fs := afero.NewMemMapFs()
	gt.NoError(t, afero.WriteFile(fs, "/data/Exp001/1.dcm", []byte("a"), 0644)).Required()
	gt.NoError(t, afero.WriteFile(fs, "/data/Exp001/2.dcm", []byte("bb"), 0644)).Required()

	prefix := "test/" + uuid.NewString()
	g, err := archive.NewGCS(ctx, fs, bucket, prefix)
	gt.NoError(t, err).Required()
	defer g.Close()

	gt.NoError(t, g.Archive(ctx, "Exp001", "/data/Exp001")).Required()

	client, err := storage.NewClient(ctx)
	gt.NoError(t, err).Required()
	defer client.Close()

	obj := client.Bucket(bucket).Object(g.ObjectName("Exp001", "2.dcm"))
	r, err := obj.NewReader(ctx)
	gt.NoError(t, err).Required()
	defer r.Close()
	data, err := io.ReadAll(r)
	gt.NoError(t, err)
	gt.Equal(t, string(data), "bb")

	for _, name := range []string{"1.dcm", "2.dcm"} {
		_ = client.Bucket(bucket).Object(g.ObjectName("Exp001", name)).Delete(ctx)
	}
}

func TestNewGCS_RequiresBucket(t *testing.T) {
	_, err := archive.NewGCS(context.Background(), afero.NewMemMapFs(), "", "")
	gt.Error(t, err)
}
