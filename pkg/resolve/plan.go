package resolve

import (
	"context"

	"github.com/AnClark/cygpm-prototype/pkg/catalog"
	"github.com/AnClark/cygpm-prototype/pkg/errors"
)

// Plan lists what installing a set of root packages would download.
type Plan struct {
	Roots      []string   `json:"roots" yaml:"roots"`
	Items      []PlanItem `json:"items" yaml:"items"`
	External   []string   `json:"external,omitempty" yaml:"external,omitempty"`
	TotalBytes int64      `json:"total_bytes" yaml:"total_bytes"`
}

// PlanItem is one package to install at its newest version.
type PlanItem struct {
	Name    string           `json:"name" yaml:"name"`
	Version string           `json:"version" yaml:"version"`
	Install catalog.Artifact `json:"install" yaml:"install"`
}

// Plan resolves roots, merges their closures, and looks up the install
// artifact of every package. Dependencies with no catalog record are listed
// in External. Artifacts without a readable size do not count towards
// TotalBytes.
func (r *Resolver) Plan(ctx context.Context, roots ...string) (*Plan, error) {
	if len(roots) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "at least one package is required")
	}

	closures, err := r.ResolveAll(ctx, roots)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Roots: roots}
	for _, name := range Union(closures) {
		p, err := r.Catalog.Package(ctx, name)
		if errors.IsNotFound(err) {
			plan.External = append(plan.External, name)
			continue
		}
		if err != nil {
			return nil, err
		}

		plan.Items = append(plan.Items, PlanItem{Name: p.Name, Version: p.Version, Install: p.Install})
		if n, ok := p.Install.Bytes(); ok {
			plan.TotalBytes += n
		}
	}

	r.Logger.Debug("built install plan", "roots", len(roots), "items", len(plan.Items), "bytes", plan.TotalBytes)
	return plan, nil
}
