package console

import (
	"github.com/panyam/templar"

	"github.com/panyam/connectus/services"
)

// SetupTemplates initializes the Templar template group
func SetupTemplates(templatesDir string) (*templar.TemplateGroup, error) {
	if templatesDir == "" {
		templatesDir = "./web/templates"
	}

	group := templar.NewTemplateGroup()
	group.Loader = templar.NewFileSystemLoader(
		templatesDir,
		templatesDir+"/shared",
	)

	// Preload common templates to ensure they're available
	commonTemplates := []string{
		"base.html",
		"diagrams/listing.html",
		"diagrams/editor.html",
	}

	for _, tmpl := range commonTemplates {
		// MustLoad panics on a missing template
		func() {
			defer func() {
				if r := recover(); r != nil {
					services.Debug("Template not found (will create): %s", tmpl)
				}
			}()
			group.MustLoad(tmpl, "")
		}()
	}

	return group, nil
}
