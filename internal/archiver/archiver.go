// Package archiver mirrors completed job outputs to an S3-compatible bucket
// (spec.md §6.5 archiveBucket) — a supplemental feature: primary storage is
// the local filesystem via internal/fs, this is off-box durability only.
package archiver

import (
	"context"
	"log"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

// Mirror is the minio-backed implementation of port.Archiver. It is
// disabled (a no-op) when constructed with an empty endpoint, mirroring the
// rest of the config's optional-dependency pattern.
type Mirror struct {
	client  minioClient
	bucket  string
	enabled bool
}

var _ port.Archiver = (*Mirror)(nil)

// New connects to a minio/S3 endpoint and ensures bucket exists. Passing an
// empty endpoint yields a disabled Mirror whose Archive calls are no-ops.
func New(endpoint, accessKey, secretKey string, useSSL bool, bucket string) (*Mirror, error) {
	if endpoint == "" {
		return &Mirror{enabled: false}, nil
	}

	log.Println("initialising archival mirror client...")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, mapMinioErr(err)
	}

	ctx := context.Background()
	ok, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, mapMinioErr(err)
	}
	if !ok {
		log.Printf("archive bucket %q does not exist, creating it...", bucket)
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, mapMinioErr(err)
		}
	}

	return &Mirror{client: client, bucket: bucket, enabled: true}, nil
}

func (m *Mirror) Enabled() bool { return m.enabled }

// Archive uploads localPath under the job's ID plus its original extension.
// Called by the mux worker right before it transitions the job to complete
// (spec.md §4.D).
func (m *Mirror) Archive(ctx context.Context, jobID uuid.UUID, localPath string) error {
	if !m.enabled {
		return nil
	}
	key := jobID.String() + filepath.Ext(localPath)
	log.Printf("archiving job #%s output to %q...", jobID, key)

	_, err := m.client.FPutObject(ctx, m.bucket, key, localPath, minio.PutObjectOptions{})
	if err != nil {
		return mapMinioErr(err)
	}
	return nil
}
