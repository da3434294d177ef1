package model

import "time"

// Outcome is the result of examining a single experiment in a pass
type Outcome string

const (
	// OutcomeDownloaded means every file of the experiment is in its staging folder
	OutcomeDownloaded Outcome = "downloaded"
	// OutcomeIncomplete means required scan types are missing; nothing was downloaded
	OutcomeIncomplete Outcome = "incomplete"
	// OutcomeFailed means the download failed and the staging folder was removed
	OutcomeFailed Outcome = "failed"
)

// ExperimentResult describes what happened to one examined experiment
type ExperimentResult struct {
	Project      string   `json:"project"`
	Label        string   `json:"label"`
	Folder       string   `json:"folder"`
	Outcome      Outcome  `json:"outcome"`
	Files        []string `json:"files,omitempty"`
	MissingTypes []string `json:"missing_types,omitempty"`
	Error        string   `json:"error,omitempty"`
}

// PassResult is the output of one crawl-filter-download sequence
type PassResult struct {
	ID         string             `json:"id"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt time.Time          `json:"finished_at"`
	Results    []ExperimentResult `json:"results"`
}

// Examined returns labels of every experiment examined in the pass, whatever the outcome
func (p *PassResult) Examined() []string {
	out := make([]string, 0, len(p.Results))
	for _, r := range p.Results {
		out = append(out, r.Label)
	}
	return out
}

// Downloaded returns labels whose files were fully staged
func (p *PassResult) Downloaded() []string {
	var out []string
	for _, r := range p.Results {
		if r.Outcome == OutcomeDownloaded {
			out = append(out, r.Label)
		}
	}
	return out
}

// Count returns the number of results with the given outcome
func (p *PassResult) Count(outcome Outcome) int {
	var n int
	for _, r := range p.Results {
		if r.Outcome == outcome {
			n++
		}
	}
	return n
}

// PassReport records how the listener handled a pass
type PassReport struct {
	Pass     *PassResult `json:"pass,omitempty"`
	Recorded []string    `json:"recorded"`
	Notified []string    `json:"notified"`
	Error    string      `json:"error,omitempty"`
}
