package services

import (
	"context"
	"errors"

	"paidlinks-api/internal/apperrors"
	"paidlinks-api/internal/database"
	"paidlinks-api/internal/models"
)

// MediaInput is the media part of a create-link request. Uploads carry the
// stored URL directly; feed and vault sources point at an existing asset.
type MediaInput struct {
	SourceType   models.MediaSource
	SourceID     *uint
	MediaURL     string
	ThumbnailURL string
	MediaKind    models.MediaKind
}

// ResolvedMedia is the concrete media a link will unlock
type ResolvedMedia struct {
	SourceType   models.MediaSource
	SourceID     *uint
	MediaURL     string
	ThumbnailURL string
	MediaKind    models.MediaKind
}

// MediaResolver turns a MediaInput into a concrete media reference
type MediaResolver struct {
	store *database.Store
}

// NewMediaResolver creates a resolver backed by the creator's assets
func NewMediaResolver(store *database.Store) *MediaResolver {
	return &MediaResolver{store: store}
}

// Resolve validates the input and fills in the media from the referenced
// asset when the source is feed or vault. The asset must belong to creatorID.
func (r *MediaResolver) Resolve(ctx context.Context, creatorID string, in MediaInput) (*ResolvedMedia, error) {
	switch in.SourceType {
	case "", models.SourceUpload:
		return resolveUpload(in)
	case models.SourceFeed, models.SourceVault:
		return r.resolveAsset(ctx, creatorID, in)
	default:
		return nil, apperrors.Invalid("source_type", "must be one of: upload feed vault")
	}
}

func resolveUpload(in MediaInput) (*ResolvedMedia, error) {
	fields := map[string]string{}
	if in.MediaURL == "" {
		fields["media_url"] = "is required"
	}
	if !in.MediaKind.Valid() {
		fields["media_type"] = "must be one of: image video audio"
	}
	if len(fields) > 0 {
		return nil, &apperrors.ValidationError{Fields: fields}
	}

	return &ResolvedMedia{
		SourceType:   models.SourceUpload,
		MediaURL:     in.MediaURL,
		ThumbnailURL: in.ThumbnailURL,
		MediaKind:    in.MediaKind,
	}, nil
}

func (r *MediaResolver) resolveAsset(ctx context.Context, creatorID string, in MediaInput) (*ResolvedMedia, error) {
	if in.SourceID == nil {
		return nil, apperrors.Invalid("source_id", "is required")
	}

	asset, err := r.store.GetMediaAsset(ctx, *in.SourceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Invalid("source_id", "does not name one of your "+string(in.SourceType)+" items")
		}
		return nil, err
	}
	// Someone else's asset reads the same as a missing one
	if asset.CreatorID != creatorID || asset.Source != in.SourceType {
		return nil, apperrors.Invalid("source_id", "does not name one of your "+string(in.SourceType)+" items")
	}

	thumbnail := asset.ThumbnailURL
	if in.ThumbnailURL != "" {
		thumbnail = in.ThumbnailURL
	}

	return &ResolvedMedia{
		SourceType:   in.SourceType,
		SourceID:     in.SourceID,
		MediaURL:     asset.MediaURL,
		ThumbnailURL: thumbnail,
		MediaKind:    asset.MediaKind,
	}, nil
}
