package archiver

import (
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/vpikus/vdm-ai-dubbing/internal/joberr"
)

func mapMinioErr(err error) error {
	if err == nil {
		return nil
	}
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return joberr.Wrap(joberr.KindInternal, err, "archival mirror unauthorized")
	case "NoSuchBucket":
		return joberr.Wrap(joberr.KindInternal, err, "archive bucket missing")
	default:
		return fmt.Errorf("%w: %v", joberr.New(joberr.KindWorkerTransient, "archival upload failed"), err)
	}
}
