package model

// AmberAlertKey is the category key that triggers the Amber Alert sub-form.
const AmberAlertKey = "amber_alert"

// Service is the top level of the complaint taxonomy.
type Service struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Categories []Category `json:"items"`
}

// Category is a leaf of the taxonomy; Key is unique within its service.
type Category struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

func (c Category) IsAmberAlert() bool {
	return c.Key == AmberAlertKey
}
