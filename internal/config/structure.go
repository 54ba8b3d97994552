package config

// Structure is display metadata for one molecule. Only PDBID feeds rendering.
type Structure struct {
	Name            string  `yaml:"name"`
	Description     string  `yaml:"description"`
	PDBID           string  `yaml:"pdbId,omitempty"`
	FrameCount      int     `yaml:"frameCount"`
	DefaultRotation float64 `yaml:"defaultRotation,omitempty"`
}

// Catalog is the list of structures shown on the site.
type Catalog struct {
	Version    string      `yaml:"version"`
	Structures []Structure `yaml:"structures"`
}

func DefaultStructure() Structure {
	return Structure{
		Name:        "Antimicrobial Peptide LL-37",
		Description: "Human cathelicidin with broad-spectrum antimicrobial activity",
		PDBID:       "2K6O",
		FrameCount:  180,
	}
}

func DefaultCatalog() *Catalog {
	return &Catalog{
		Version: "1.0",
		Structures: []Structure{
			DefaultStructure(),
			{
				Name:        "De Novo Designed Protein",
				Description: "A Computationally Designed Binder",
				PDBID:       "8KCK",
				FrameCount:  180,
			},
			{
				Name:        "Protein Placeholder",
				Description: "Synthetic helix shown until a structure is assigned",
				FrameCount:  180,
			},
		},
	}
}

// Find returns the structure with the given PDB id (case-sensitive) or name.
func (c *Catalog) Find(key string) (Structure, bool) {
	for _, s := range c.Structures {
		if s.PDBID == key || s.Name == key {
			return s, true
		}
	}
	return Structure{}, false
}
