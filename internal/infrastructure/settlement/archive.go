package settlement

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"cloud.google.com/go/storage"

	"github.com/oksasatya/go-ddd-payments/internal/domain/entity"
	"github.com/oksasatya/go-ddd-payments/pkg/helpers"
)

// GCSArchiver keeps the verified payload of every settled event as
// gs://<bucket>/<prefix>/<type>/<id>.json.
type GCSArchiver struct {
	Client *storage.Client
	Bucket string
	Prefix string
}

func NewGCSArchiver(client *storage.Client, bucket, prefix string) *GCSArchiver {
	if prefix == "" {
		prefix = "events"
	}
	return &GCSArchiver{Client: client, Bucket: bucket, Prefix: prefix}
}

func ObjectPath(prefix string, ev *entity.WebhookEvent) string {
	return path.Join(prefix, ev.Type, ev.ID+".json")
}

func (a *GCSArchiver) Archive(ctx context.Context, ev *entity.WebhookEvent) (string, error) {
	if len(ev.Payload) == 0 {
		return "", fmt.Errorf("archive %s: empty payload", ev.ID)
	}
	return helpers.UploadObject(ctx, a.Client, a.Bucket, ObjectPath(a.Prefix, ev), "application/json", bytes.NewReader(ev.Payload))
}
