package project

import "github.com/geotagx/gtx-builder/internal/questionnaire"

// Asset bundles provided by a theme.
const (
	BundleCore          = "core"
	BundleGeolocation   = "geolocation"
	BundleDateTime      = "datetime"
	BundleMultilanguage = "multilanguage"
)

// AssetBundles returns the names of the asset bundles the project's task
// presenter requires. The core bundle always comes first.
func (p *Project) AssetBundles() []string {
	bundles := []string{BundleCore}
	q := p.Questionnaire
	if q.HasType(questionnaire.Geotagging) {
		bundles = append(bundles, BundleGeolocation)
	}
	if q.HasType(questionnaire.Date) || q.HasType(questionnaire.DateTime) {
		bundles = append(bundles, BundleDateTime)
	}
	if p.Locale.IsMultilingual() {
		bundles = append(bundles, BundleMultilanguage)
	}
	return bundles
}
