package document

import "time"

// Document is the stored metadata of one uploaded file. The binary itself
// lives in a Store under the document id.
type Document struct {
	Id          string
	FileName    string
	ContentType string
	Size        int64
	UploadedAt  time.Time
}
