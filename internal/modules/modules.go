// Package modules maps externally visible module slugs to the canonical
// resource names the permission matrix understands.
//
// The slug set is generated from an external configuration source and is
// larger and differently named than the fixed resource vocabulary; this
// table is the only place the two meet. It is validated at daemon start so
// a drifted slug fails the boot, not a request.
package modules

import (
	"errors"
	"fmt"
	"sort"
)

// ErrUnknownModule is returned for a slug with no resource mapping.
// Requests for unknown modules fail before any authorization check runs.
var ErrUnknownModule = errors.New("unknown module")

// slugResources is the hand-maintained slug to resource table.
var slugResources = map[string]string{
	"crm-leads":              "crm",
	"project-requirements":   "requirements",
	"design-configurator":    "design",
	"quoting-contracts":      "quotes",
	"approval-workflow":      "approvals",
	"job-confirmation":       "jobs",
	"work-orders":            "work_orders",
	"bom-materials-planning": "bom",
	"procurement":            "procurement",
	"production-scheduling":  "production_schedule",
	"manufacturing":          "manufacturing",
	"quality-control":        "quality",
	"packaging":              "packaging",
	"delivery-installation":  "delivery",
	"billing-invoicing":      "finance",
	"closure":                "closure",
}

// ResourceFor resolves a module slug to its canonical resource name.
func ResourceFor(slug string) (string, error) {
	resource, ok := slugResources[slug]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownModule, slug)
	}

	return resource, nil
}

// Slugs returns every known module slug, sorted.
func Slugs() []string {
	out := make([]string, 0, len(slugResources))
	for slug := range slugResources {
		out = append(out, slug)
	}

	sort.Strings(out)

	return out
}

// Validate checks that every slug resolves to a resource the permission
// matrix knows. known is the resource vocabulary membership test; keeping it
// a parameter avoids an import cycle with the authz package.
func Validate(known func(string) bool) error {
	for slug, resource := range slugResources {
		if !known(resource) {
			return fmt.Errorf("module slug %q maps to unknown resource %q", slug, resource)
		}
	}

	return nil
}
