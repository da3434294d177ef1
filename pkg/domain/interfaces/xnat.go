package interfaces

import (
	"context"
	"io"

	"github.com/digione/xnatsync/pkg/domain/model"
)

// XNATClient is the single retrieval primitive used against the XNAT server
type XNATClient interface {
	// BaseURL returns the server root that listing URLs are built from
	BaseURL() string

	// List performs an authenticated GET on url and decodes the ResultSet envelope
	List(ctx context.Context, url string) (*model.ResultSet, error)

	// Download streams the file at uri, resolved against BaseURL, into w
	Download(ctx context.Context, uri string, w io.Writer) error
}
