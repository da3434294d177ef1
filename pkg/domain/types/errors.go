package types

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrTagRetrieval marks a failed or non-2xx request to the XNAT server
	ErrTagRetrieval = goerr.NewTag("retrieval")

	// ErrTagInvalidFile marks a file entry that can not be staged (missing name, path traversal)
	ErrTagInvalidFile = goerr.NewTag("invalid_file")

	// ErrTagPassInProgress is returned when a pass is requested while another one is running
	ErrTagPassInProgress = goerr.NewTag("pass_in_progress")
)
