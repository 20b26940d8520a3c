package verify

import (
	"sort"
	"strings"

	"github.com/abadojack/whatlanggo"
)

// RegionPrior is the result of mapping detected language to the set of
// country codes where that language is commonly written.
type RegionPrior struct {
	Language   string
	Regions    []string
	Confidence float32
}

// languageRegions maps ISO 639-3 language codes to country codes. Coverage
// follows the languages the OCR collaborator actually emits; unlisted
// languages yield no prior.
var languageRegions = map[string][]string{
	"cmn": {"CN", "TW", "HK", "SG"},
	"jpn": {"JP"},
	"kor": {"KR", "KP"},
	"eng": {"US", "GB", "CA", "AU", "NZ", "IE"},
	"spa": {"ES", "MX", "AR", "CO", "PE", "CL"},
	"fra": {"FR", "CA", "BE", "CH"},
	"deu": {"DE", "AT", "CH"},
	"ita": {"IT", "CH"},
	"por": {"PT", "BR"},
	"rus": {"RU", "BY", "KZ"},
	"arb": {"SA", "EG", "AE", "MA"},
	"hin": {"IN"},
	"tha": {"TH"},
	"vie": {"VN"},
	"ind": {"ID"},
	"tur": {"TR"},
	"pol": {"PL"},
	"nld": {"NL", "BE"},
	"swe": {"SE"},
	"nob": {"NO"},
	"dan": {"DK"},
	"fin": {"FI"},
	"ell": {"GR"},
	"heb": {"IL"},
	"ukr": {"UA"},
	"ces": {"CZ"},
	"hun": {"HU"},
	"ron": {"RO"},
}

// countryNames maps country codes to names as they appear at the end of
// geocoded addresses.
var countryNames = map[string]string{
	"CN": "china", "TW": "taiwan", "HK": "hong kong", "SG": "singapore",
	"JP": "japan", "KR": "south korea", "KP": "north korea",
	"US": "united states", "GB": "united kingdom", "CA": "canada",
	"AU": "australia", "NZ": "new zealand", "IE": "ireland",
	"ES": "spain", "MX": "mexico", "AR": "argentina", "CO": "colombia",
	"PE": "peru", "CL": "chile",
	"FR": "france", "BE": "belgium", "CH": "switzerland",
	"DE": "germany", "AT": "austria", "IT": "italy",
	"PT": "portugal", "BR": "brazil",
	"RU": "russia", "BY": "belarus", "KZ": "kazakhstan",
	"SA": "saudi arabia", "EG": "egypt", "AE": "united arab emirates",
	"MA": "morocco", "IN": "india", "TH": "thailand", "VN": "vietnam",
	"ID": "indonesia", "TR": "turkey", "PL": "poland", "NL": "netherlands",
	"SE": "sweden", "NO": "norway", "DK": "denmark", "FI": "finland",
	"GR": "greece", "IL": "israel", "UA": "ukraine", "CZ": "czechia",
	"HU": "hungary", "RO": "romania",
}

// LanguageToRegionPrior detects the dominant language of text and returns
// the regions it implies. Returns false when the text is too short or the
// detected language carries no regional signal.
func LanguageToRegionPrior(text string) (RegionPrior, bool) {
	if strings.TrimSpace(text) == "" {
		return RegionPrior{}, false
	}
	info := whatlanggo.Detect(text)
	code := whatlanggo.LangToString(info.Lang)
	regions, ok := languageRegions[code]
	if !ok {
		return RegionPrior{}, false
	}
	conf := float32(info.Confidence)
	if !info.IsReliable() && conf > 0.5 {
		conf = 0.5
	}
	return RegionPrior{Language: code, Regions: regions, Confidence: conf}, true
}

type countryMatch struct {
	code string
	name string
}

// countryMatchOrder lists countries longest name first so that the more
// specific name wins containment, e.g. "united kingdom" over "ireland" in
// "Belfast, Northern Ireland, United Kingdom".
var countryMatchOrder = func() []countryMatch {
	out := make([]countryMatch, 0, len(countryNames))
	for code, name := range countryNames {
		out = append(out, countryMatch{code: code, name: name})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].name) != len(out[j].name) {
			return len(out[i].name) > len(out[j].name)
		}
		return out[i].name < out[j].name
	})
	return out
}()

// CountryOfAddress guesses the country code from a geocoded address or
// region string, which by Nominatim convention ends with the country name.
// A suffix match beats bare containment.
func CountryOfAddress(address string) (string, bool) {
	norm := NormalizeText(address)
	if norm == "" {
		return "", false
	}
	for _, c := range countryMatchOrder {
		if strings.HasSuffix(norm, c.name) {
			return c.code, true
		}
	}
	for _, c := range countryMatchOrder {
		if strings.Contains(norm, c.name) {
			return c.code, true
		}
	}
	return "", false
}

// PriorCovers reports whether the prior's region set includes the country.
func (p RegionPrior) PriorCovers(country string) bool {
	for _, r := range p.Regions {
		if r == country {
			return true
		}
	}
	return false
}
