package report

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/raphi011/gitls/internal/pipeline"
)

// Document is the machine-readable report.
type Document struct {
	Root         string       `json:"root" yaml:"root"`
	Operation    string       `json:"operation,omitempty" yaml:"operation,omitempty"`
	SwitchBranch string       `json:"switch_branch,omitempty" yaml:"switch_branch,omitempty"`
	Repositories []Repository `json:"repositories" yaml:"repositories"`
	Summary      Totals       `json:"summary" yaml:"summary"`
}

// Repository is one record of a Document.
type Repository struct {
	Path       string     `json:"path" yaml:"path"`
	Name       string     `json:"name" yaml:"name"`
	Opened     bool       `json:"opened" yaml:"opened"`
	Branch     string     `json:"branch" yaml:"branch"`
	Commit     string     `json:"commit,omitempty" yaml:"commit,omitempty"`
	Staged     int        `json:"staged" yaml:"staged"`
	Modified   int        `json:"modified" yaml:"modified"`
	Untracked  int        `json:"untracked" yaml:"untracked"`
	Ahead      int        `json:"ahead" yaml:"ahead"`
	Behind     int        `json:"behind" yaml:"behind"`
	HasRemote  bool       `json:"has_remote" yaml:"has_remote"`
	LastCommit *time.Time `json:"last_commit,omitempty" yaml:"last_commit,omitempty"`
	Switch     string     `json:"switch,omitempty" yaml:"switch,omitempty"`
	Sync       string     `json:"sync,omitempty" yaml:"sync,omitempty"`
}

// Totals holds the summary counts. Outcomes is keyed by operation, then by
// outcome name.
type Totals struct {
	Total    int                       `json:"total" yaml:"total"`
	Clean    int                       `json:"clean" yaml:"clean"`
	Dirty    int                       `json:"dirty" yaml:"dirty"`
	Behind   int                       `json:"behind" yaml:"behind"`
	Unusable int                       `json:"unusable" yaml:"unusable"`
	Outcomes map[string]map[string]int `json:"outcomes,omitempty" yaml:"outcomes,omitempty"`
}

// NewDocument builds the machine-readable report.
func NewDocument(records []pipeline.Record, sum pipeline.Summary, opts Options) Document {
	doc := Document{
		Root:         opts.Root,
		SwitchBranch: opts.Request.SwitchTo,
		Repositories: make([]Repository, len(records)),
		Summary: Totals{
			Total:    sum.Total,
			Clean:    sum.Clean,
			Dirty:    sum.Dirty,
			Behind:   sum.Behind,
			Unusable: sum.Unusable,
		},
	}
	if opts.Request.Action != pipeline.NoAction {
		doc.Operation = opts.Request.Action.String()
	}

	for i := range records {
		r := &records[i]
		repo := Repository{
			Path:      r.Path,
			Name:      Name(r),
			Opened:    r.Opened,
			Branch:    BranchLabel(r),
			Commit:    r.Commit,
			Staged:    r.Staged,
			Modified:  r.Modified,
			Untracked: r.Untracked,
			Ahead:     r.Ahead,
			Behind:    r.Behind,
			HasRemote: r.HasRemote,
		}
		if !r.LastCommit.IsZero() {
			t := r.LastCommit.UTC()
			repo.LastCommit = &t
		}
		if r.Switch != nil {
			repo.Switch = r.Switch.String()
		}
		if r.Sync != nil {
			repo.Sync = r.Sync.String()
		}
		doc.Repositories[i] = repo
	}

	for o, n := range sum.Outcomes {
		if doc.Summary.Outcomes == nil {
			doc.Summary.Outcomes = make(map[string]map[string]int)
		}
		op := operation(o)
		if doc.Summary.Outcomes[op] == nil {
			doc.Summary.Outcomes[op] = make(map[string]int)
		}
		doc.Summary.Outcomes[op][o.String()] += n
	}
	return doc
}

// operation names the bulk operation an outcome belongs to.
func operation(o pipeline.Outcome) string {
	switch o.(type) {
	case pipeline.SwitchOutcome:
		return "switch"
	case pipeline.FetchOutcome:
		return pipeline.FetchAction.String()
	case pipeline.PullOutcome:
		return pipeline.PullAction.String()
	default:
		return "unknown"
	}
}

// Encode writes doc in format ("json" or "yaml").
func Encode(w io.Writer, doc Document, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}
