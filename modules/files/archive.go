package files

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Archive stores transferred file payloads for later retrieval. Archival is
// best-effort; chat fan-out never waits on it.
type Archive interface {
	Put(ctx context.Context, name string, data []byte) error
	Close()
}

// ObjectArchive implements Archive using a NATS JetStream Object Store.
type ObjectArchive struct {
	conn       *nats.Conn
	js         jetstream.JetStream
	store      jetstream.ObjectStore
	bucketName string
}

// NewObjectArchive connects to NATS and prepares a JetStream context.
func NewObjectArchive(natsURL, bucketName string) (*ObjectArchive, error) {
	conn, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &ObjectArchive{
		conn:       conn,
		js:         js,
		bucketName: bucketName,
	}, nil
}

// Init creates or binds the object store bucket.
func (a *ObjectArchive) Init(ctx context.Context) error {
	store, err := a.js.ObjectStore(ctx, a.bucketName)
	if err == nil {
		a.store = store
		return nil
	}

	store, err = a.js.CreateObjectStore(ctx, jetstream.ObjectStoreConfig{
		Bucket:      a.bucketName,
		Description: "Chat file transfer archive",
	})
	if err != nil {
		return fmt.Errorf("failed to create object store bucket: %w", err)
	}

	a.store = store
	return nil
}

// Put stores a file payload under name.
func (a *ObjectArchive) Put(ctx context.Context, name string, data []byte) error {
	meta := jetstream.ObjectMeta{Name: name}
	if _, err := a.store.Put(ctx, meta, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to store object: %w", err)
	}
	return nil
}

// Close releases the NATS connection.
func (a *ObjectArchive) Close() {
	if a.conn != nil {
		a.conn.Close()
	}
}

// objectName builds the archive key for one transferred file. The message
// ID keeps repeated transfers of the same filename distinct.
func objectName(room, messageID, filename string) string {
	return path.Join(room, messageID, path.Base(filename))
}
