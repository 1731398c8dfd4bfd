package dto

import "io"

// FileUpload carries an uploaded file from the handler layer into a service.
// The service decides the stored name; Filename is only used for its
// extension.
type FileUpload struct {
	Filename string
	Content  io.Reader
}
