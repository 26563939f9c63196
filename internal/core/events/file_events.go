package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	FileUploadedEventType = "file.uploaded"
	FileReviewedEventType = "file.reviewed"
)

// NewFileUploadedEvent fires after a drawing revision is persisted.
func NewFileUploadedEvent(fileID, projectID, uploaderID int64, name string, version int) Event {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      FileUploadedEventType,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"file_id":     fileID,
			"project_id":  projectID,
			"uploader_id": uploaderID,
			"name":        name,
			"version":     version,
		},
	}
}

// NewFileReviewedEvent fires after a reviewer changes a file's status.
func NewFileReviewedEvent(fileID, projectID, reviewerID int64, status string) Event {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      FileReviewedEventType,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"file_id":     fileID,
			"project_id":  projectID,
			"reviewer_id": reviewerID,
			"status":      status,
		},
	}
}
