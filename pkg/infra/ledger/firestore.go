package ledger

import (
	"context"
	"errors"
	"net/url"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/digione/xnatsync/pkg/domain/interfaces"
	"github.com/digione/xnatsync/pkg/domain/model"
)

// Firestore keeps processed labels as documents of a collection
type Firestore struct {
	client     *firestore.Client
	collection string
}

var _ interfaces.LedgerStore = (*Firestore)(nil)

type entry struct {
	Label      string    `firestore:"label"`
	RecordedAt time.Time `firestore:"recorded_at"`
}

// NewFirestore connects to the database of projectID. An empty databaseID selects the default database.
func NewFirestore(ctx context.Context, projectID, databaseID, collection string, opts ...option.ClientOption) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Firestore client",
			goerr.V("project_id", projectID),
			goerr.V("database_id", databaseID),
		)
	}

	return &Firestore{client: client, collection: collection}, nil
}

// Close releases the Firestore client
func (f *Firestore) Close() error {
	return f.client.Close()
}

// Load reads every recorded label
func (f *Firestore) Load(ctx context.Context) (model.LabelSet, error) {
	iter := f.client.Collection(f.collection).Select("label").Documents(ctx)
	defer iter.Stop()

	var labels []string
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return model.LabelSet{}, goerr.Wrap(err, "failed to read ledger", goerr.V("collection", f.collection))
		}

		var e entry
		if err := doc.DataTo(&e); err != nil {
			return model.LabelSet{}, goerr.Wrap(err, "invalid ledger entry", goerr.V("doc_id", doc.Ref.ID))
		}
		labels = append(labels, e.Label)
	}

	return model.NewLabelSet(labels...), nil
}

// Append creates a document per label. Labels already recorded are left as they are.
func (f *Firestore) Append(ctx context.Context, labels []string) error {
	logger := ctxlog.From(ctx)
	now := time.Now().UTC()

	for _, label := range labels {
		doc := f.client.Collection(f.collection).Doc(url.PathEscape(label))
		_, err := doc.Create(ctx, entry{Label: label, RecordedAt: now})
		if status.Code(err) == codes.AlreadyExists {
			logger.Debug("Label already in ledger", "label", label)
			continue
		}
		if err != nil {
			return goerr.Wrap(err, "failed to record label",
				goerr.V("collection", f.collection),
				goerr.V("label", label),
			)
		}
	}

	return nil
}
