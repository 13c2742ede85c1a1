// AngelaMos | 2026
// catalog.go

package progress

// PathTemplate describes a curriculum path and its fixed section set.
// Section keys are a closed set; progress writes against unknown keys
// are rejected rather than silently creating orphan entries.
type PathTemplate struct {
	ID       string
	Name     string
	Sections []string
}

const DefaultPathID = "cybersecurity"

var pathCatalog = map[string]PathTemplate{
	"cybersecurity": {
		ID:   "cybersecurity",
		Name: "Cybersecurity Fundamentals",
		Sections: []string{
			"intro-to-security",
			"networking-basics",
			"linux-essentials",
			"cryptography",
			"web-security",
			"network-defense",
			"threat-intelligence",
			"incident-response",
			"penetration-testing",
			"security-operations",
		},
	},
	"ai": {
		ID:   "ai",
		Name: "AI Foundations",
		Sections: []string{
			"ml-fundamentals",
			"neural-networks",
			"llm-applications",
			"ai-security",
		},
	},
}

func GetPathTemplate(pathID string) (PathTemplate, bool) {
	t, ok := pathCatalog[pathID]
	return t, ok
}

func ListPathTemplates() []PathTemplate {
	templates := make([]PathTemplate, 0, len(pathCatalog))
	for _, id := range []string{"cybersecurity", "ai"} {
		templates = append(templates, pathCatalog[id])
	}
	return templates
}

func (t PathTemplate) HasSection(key string) bool {
	for _, s := range t.Sections {
		if s == key {
			return true
		}
	}
	return false
}
