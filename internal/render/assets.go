package render

import (
	"fmt"
	"strings"

	"github.com/geotagx/gtx-builder/internal/project"
)

// BundleTutorial is added to the asset bundles of tutorial pages.
const BundleTutorial = "tutorial"

// Assets are the stylesheet and script inlined into a page.
type Assets struct {
	CSS string
	JS  string
}

// CollectAssets concatenates the theme bundles named by bundles, in order,
// followed by the project's own stylesheet and script. Every bundle must
// provide a stylesheet, a script or both.
func CollectAssets(theme Theme, p *project.Project, bundles []string) (Assets, error) {
	var css, js []string
	for _, name := range bundles {
		c, err := theme.bundle(name, "css")
		if err != nil {
			return Assets{}, err
		}
		j, err := theme.bundle(name, "js")
		if err != nil {
			return Assets{}, err
		}
		if c == "" && j == "" {
			return Assets{}, fmt.Errorf("theme %s has no '%s' bundle", theme.Name, name)
		}
		css = appendNonEmpty(css, c)
		js = appendNonEmpty(js, j)
	}
	css = appendNonEmpty(css, p.CSS)
	js = appendNonEmpty(js, p.JS)

	return Assets{CSS: strings.Join(css, "\n"), JS: strings.Join(js, "\n")}, nil
}

func appendNonEmpty(parts []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		return append(parts, s)
	}
	return parts
}
