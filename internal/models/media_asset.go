package models

// MediaSource tells where a paid link's media comes from
type MediaSource string

const (
	SourceUpload MediaSource = "upload"
	SourceFeed   MediaSource = "feed"
	SourceVault  MediaSource = "vault"
)

// MediaAsset is a creator-owned media item already stored by the platform,
// either attached to a feed post or kept in the private vault
type MediaAsset struct {
	BaseModel

	CreatorID    string      `json:"creator_id" gorm:"not null;index;size:64"`
	Source       MediaSource `json:"source" gorm:"not null;size:10;index"`
	Title        string      `json:"title" gorm:"size:200"`
	MediaURL     string      `json:"media_url" gorm:"not null;size:1000"`
	ThumbnailURL string      `json:"thumbnail_url" gorm:"size:1000"`
	MediaKind    MediaKind   `json:"media_kind" gorm:"not null;size:10"`
}
