package file

import "io"

// UploadPart is one file from a multipart upload batch.
type UploadPart struct {
	Filename    string
	Size        int64
	ContentType string
	Reader      io.Reader
}

// UploadRejection reports why one file in a batch was refused. Rejections do
// not abort the batch; accepted siblings are still stored.
type UploadRejection struct {
	FileName string `json:"file_name"`
	Reason   string `json:"reason"`
}

// UploadResult is the per-batch outcome returned to the client.
type UploadResult struct {
	Uploaded []*File           `json:"uploaded"`
	Rejected []UploadRejection `json:"rejected,omitempty"`
}

type UpdateStatusDTO struct {
	Status      Status  `json:"status"`
	ReviewNotes *string `json:"review_notes,omitempty"`
}

func (d UpdateStatusDTO) Validate() error {
	if !ValidReviewTarget(d.Status) {
		return NewValidationError("status must be aprovado, rejeitado or revisao")
	}
	return nil
}

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}
