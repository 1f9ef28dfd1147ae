package catalog

import "github.com/sakif/ncps/internal/model"

// DefaultServices is the portal's built-in taxonomy.
func DefaultServices() []model.Service {
	return []model.Service{
		{
			ID:   "life-saving",
			Name: "Life Saving",
			Categories: []model.Category{
				{Key: "child_girl_harassment", Label: "Child & Girl Harassment"},
				{Key: model.AmberAlertKey, Label: "Amber Alert"},
				{Key: "emergency_help", Label: "Emergency Help (999)"},
			},
		},
		{
			ID:   "defence-corruption",
			Name: "Defence Corruption",
			Categories: []model.Category{
				{Key: "govt_sector", Label: "Corruption in Govt Sector"},
				{Key: "social_sector", Label: "Corruption in Social Sector"},
				{Key: "other_corruption", Label: "Corruption in Other"},
			},
		},
		{
			ID:   "harassment-cheating",
			Name: "Harassment & Cheating",
			Categories: []model.Category{
				{Key: "food_sector", Label: "Food Sector"},
				{Key: "medical_sector", Label: "Medical Sector"},
				{Key: "education_sector", Label: "Education Sector"},
				{Key: "agriculture_sector", Label: "Agriculture Sector"},
				{Key: "other_harass", Label: "Other"},
			},
		},
		{
			ID:   "land-property",
			Name: "Land & Property",
			Categories: []model.Category{
				{Key: "land_problem", Label: "Land Problem"},
				{Key: "property", Label: "Property"},
				{Key: "land_vat", Label: "Land VAT"},
				{Key: "other_land", Label: "Other"},
			},
		},
		{
			ID:   "cyber-security",
			Name: "Cyber Security",
			Categories: []model.Category{
				{Key: "cyber_bullying", Label: "Cyber Bullying"},
				{Key: "cyber_harassment", Label: "Cyber Harassment"},
				{Key: "hacking", Label: "Hacking"},
				{Key: "other_cyber", Label: "Other"},
			},
		},
		{
			ID:   "ai-help",
			Name: "AI Help",
			Categories: []model.Category{
				{Key: "legal_guidance", Label: "Legal Guidance"},
				{Key: "safety_plan", Label: "Safety Plan"},
				{Key: "reporting_tips", Label: "Reporting Tips"},
			},
		},
	}
}

// Default returns a Catalog built from DefaultServices.
func Default() *Catalog {
	c, err := New(DefaultServices())
	if err != nil {
		// The built-in table is a literal; failing here is a programming error.
		panic(err)
	}
	return c
}
