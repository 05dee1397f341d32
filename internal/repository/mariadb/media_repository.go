package mariadb

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/vpikus/vdm-ai-dubbing/internal/joberr"
	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

type MediaRepository struct {
	db *sql.DB
}

var _ port.MediaRepository = (*MediaRepository)(nil)

func NewMediaRepository(db *sql.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

func (r *MediaRepository) GetByJobID(ctx context.Context, jobID uuid.UUID) (*model.Media, error) {
	const query = `
      SELECT job_id, video_path, audio_original_path, audio_dubbed_path, audio_mixed_path, temp_dir,
             duration_sec, width, height, fps, video_codec, audio_codec, size_bytes,
             source_id, source_title, source_uploader, source_upload_date, source_description, source_thumbnail_url
      FROM media
      WHERE job_id = ?
    `
	row := r.db.QueryRowContext(ctx, query, jobID)
	var m model.Media
	if err := row.Scan(
		&m.JobID, &m.VideoPath, &m.AudioOriginal, &m.AudioDubbedPath, &m.AudioMixedPath, &m.TempDir,
		&m.DurationSec, &m.Width, &m.Height, &m.FPS, &m.VideoCodec, &m.AudioCodec, &m.SizeBytes,
		&m.SourceID, &m.SourceTitle, &m.SourceUploader, &m.SourceUploadDate, &m.SourceDescription, &m.SourceThumbURL,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, joberr.New(joberr.KindNotFound, "media not found")
		}
		return nil, err
	}
	return &m, nil
}

// ApplyPatch issues a single UPDATE covering every patchable column,
// COALESCE-ing untouched fields back to their current value so a partial
// metadata event never clobbers fields it didn't carry.
func (r *MediaRepository) ApplyPatch(ctx context.Context, jobID uuid.UUID, patch model.MetadataPatch) error {
	log.Printf("applying metadata patch to media for job #%s...", jobID)

	const query = `
      UPDATE media SET
        video_path           = COALESCE(?, video_path),
        audio_original_path  = COALESCE(?, audio_original_path),
        audio_dubbed_path    = COALESCE(?, audio_dubbed_path),
        audio_mixed_path     = COALESCE(?, audio_mixed_path),
        temp_dir              = COALESCE(?, temp_dir),
        duration_sec          = COALESCE(?, duration_sec),
        width                 = COALESCE(?, width),
        height                = COALESCE(?, height),
        fps                   = COALESCE(?, fps),
        video_codec           = COALESCE(?, video_codec),
        audio_codec           = COALESCE(?, audio_codec),
        size_bytes            = COALESCE(?, size_bytes),
        source_id             = COALESCE(?, source_id),
        source_title          = COALESCE(?, source_title),
        source_uploader       = COALESCE(?, source_uploader),
        source_upload_date    = COALESCE(?, source_upload_date),
        source_description    = COALESCE(?, source_description),
        source_thumbnail_url  = COALESCE(?, source_thumbnail_url)
      WHERE job_id = ?
    `
	_, err := r.db.ExecContext(ctx, query,
		patch.VideoPath, patch.AudioOriginal, patch.AudioDubbedPath, patch.AudioMixedPath, patch.TempDir,
		patch.DurationSec, patch.Width, patch.Height, patch.FPS, patch.VideoCodec, patch.AudioCodec, patch.SizeBytes,
		patch.SourceID, patch.SourceTitle, patch.SourceUploader, patch.SourceUploadDate, patch.SourceDescription, patch.SourceThumbURL,
		jobID,
	)
	if err != nil {
		return fmt.Errorf("apply metadata patch: %w", err)
	}
	return nil
}
