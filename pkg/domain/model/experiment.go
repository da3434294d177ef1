package model

// Project is a non-empty XNAT project discovered during a crawl
type Project struct {
	ID          string
	Name        string
	SubjectsURL string
}

// ExperimentRef points at the scan listing of one experiment. Label is the sync key and is
// assumed to be unique across projects and subjects.
type ExperimentRef struct {
	Project  string
	Label    string
	ScansURL string
}

// ProjectExperiments holds the experiments of a project in crawl order
type ProjectExperiments struct {
	Project     string
	Experiments []ExperimentRef
}

// CountExperiments returns the total number of experiments across projects
func CountExperiments(projects []ProjectExperiments) int {
	var n int
	for _, p := range projects {
		n += len(p.Experiments)
	}
	return n
}

const (
	// XSITypeCTScan is the scan data type of CT acquisitions
	XSITypeCTScan = "xnat:ctScanData"
	// XSITypeRTImageScan is the scan data type of RT images
	XSITypeRTImageScan = "xnat:rtImageScanData"
)

// DefaultRequiredTypes is the completeness policy used when nothing else is configured
func DefaultRequiredTypes() []string {
	return []string{XSITypeCTScan, XSITypeRTImageScan}
}
