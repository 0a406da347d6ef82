package model

import "time"

// UploadKind separates profile photos from résumé documents.
type UploadKind string

const (
	UploadProfile UploadKind = "profile"
	UploadResume  UploadKind = "resume"
)

// Upload is the metadata record of a stored file. The bytes live in object storage under StorageKey.
type Upload struct {
	StorageID    string     `bson:"_id,omitempty" json:"_id,omitempty"`
	Kind         UploadKind `bson:"kind" json:"kind"`
	Filename     string     `bson:"filename" json:"filename"`
	OriginalName string     `bson:"originalName" json:"originalName"`
	ContentType  string     `bson:"contentType" json:"contentType"`
	Size         int64      `bson:"size" json:"size"`
	StorageKey   string     `bson:"storageKey" json:"storageKey"`
	UploadedAt   time.Time  `bson:"uploadedAt" json:"uploadedAt"`
}

// UploadResponse is returned to clients after a successful upload.
type UploadResponse struct {
	FileID       string    `json:"fileId"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	ContentType  string    `json:"contentType"`
	Size         int64     `json:"size"`
	URL          string    `json:"url"`
	UploadedAt   time.Time `json:"uploadedAt"`
}
