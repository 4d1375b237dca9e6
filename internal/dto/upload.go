package dto

import "io"

// FileUpload is an optional image attached to a form submission.
type FileUpload struct {
	Filename string
	Size     int64
	Body     io.Reader
}
