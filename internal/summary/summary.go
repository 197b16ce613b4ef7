// Package summary describes projects for authors and translators.
package summary

import (
	"fmt"
	"io"
	"strings"

	"github.com/geotagx/gtx-builder/internal/project"
)

// Text writes a human-readable overview of p to w.
func Text(w io.Writer, p *project.Project) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n", p.Name, strings.Repeat("-", len([]rune(p.Name))))
	fmt.Fprintf(&b, "Short name: %s\n", p.ShortName)
	fmt.Fprintf(&b, "Description: %s\n", p.Description)
	fmt.Fprintf(&b, "Why: %s\n", p.Localize(p.Why))
	fmt.Fprintf(&b, "Subject type: %s\n", p.Subject.Name())

	codes := p.Locale.Codes()
	names := make([]string, len(codes))
	for i, code := range codes {
		names[i] = fmt.Sprintf("%s (%s)", p.Locale.Available[code], code)
	}
	fmt.Fprintf(&b, "Locales: %s\n", strings.Join(names, ", "))
	fmt.Fprintf(&b, "Asset bundles: %s\n", strings.Join(p.AssetBundles(), ", "))

	tutorial := "No"
	if n := p.Tutorial.Len(); n > 0 {
		tutorial = fmt.Sprintf("Yes (%d exercises)", n)
	}
	fmt.Fprintf(&b, "Tutorial included: %s\n", tutorial)

	fmt.Fprintf(&b, "Questionnaire:\n%s\n", p.Questionnaire)

	var branches []string
	for _, key := range p.Questionnaire.Keys() {
		if br := p.Questionnaire.Branch(key); br != nil {
			branches = append(branches, fmt.Sprintf("  %s: %s", key, br))
		}
	}
	if len(branches) > 0 {
		fmt.Fprintf(&b, "Branches:\n%s\n", strings.Join(branches, "\n"))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
