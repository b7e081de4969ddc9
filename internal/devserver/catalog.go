package devserver

import "github.com/mmcdole/atelier/internal/domain"

// seedArtworks is the catalog served by the development backend
func seedArtworks() []domain.Artwork {
	return []domain.Artwork{
		{
			ID: 1, Title: "La Joconde", Artist: "Léonard de Vinci", Year: "1503",
			Category: "Portrait", Technique: "Huile sur panneau de peuplier", Dimensions: "77 × 53 cm",
			Image:       "images/joconde.jpg",
			Description: "Portrait de Lisa Gherardini, peint entre 1503 et 1519.",
		},
		{
			ID: 2, Title: "La Nuit étoilée", Artist: "Vincent van Gogh", Year: "1889",
			Category: "Paysage", Technique: "Huile sur toile", Dimensions: "73,7 × 92,1 cm",
			Image:       "images/nuit-etoilee.jpg",
			Description: "Vue de la fenêtre de la chambre de Saint-Rémy-de-Provence, juste avant l'aube.",
		},
		{
			ID: 3, Title: "La Jeune Fille à la perle", Artist: "Johannes Vermeer", Year: "1665",
			Category: "Portrait", Technique: "Huile sur toile", Dimensions: "44,5 × 39 cm",
			Image:       "images/jeune-fille-perle.jpg",
			Description: "Tronie d'une jeune fille portant un turban et une grande perle.",
		},
		{
			ID: 4, Title: "Impression, soleil levant", Artist: "Claude Monet", Year: "1872",
			Category: "Paysage", Technique: "Huile sur toile", Dimensions: "48 × 63 cm",
			Image:       "images/impression.jpg",
			Description: "Le port du Havre au lever du soleil, tableau qui donna son nom à l'impressionnisme.",
		},
		{
			ID: 5, Title: "Guernica", Artist: "Pablo Picasso", Year: "1937",
			Category: "Histoire", Technique: "Huile sur toile", Dimensions: "349 × 776 cm",
			Image:       "images/guernica.jpg",
			Description: "Réponse au bombardement de la ville basque de Guernica.",
		},
		{
			ID: 6, Title: "La Naissance de Vénus", Artist: "Sandro Botticelli", Year: "1485",
			Category: "Mythologie", Technique: "Tempera sur toile", Dimensions: "172,5 × 278,5 cm",
			Image:       "images/naissance-venus.jpg",
			Description: "La déesse Vénus arrivant sur le rivage après sa naissance.",
		},
		{
			ID: 7, Title: "Le Radeau de La Méduse", Artist: "Théodore Géricault", Year: "1818",
			Category: "Histoire", Technique: "Huile sur toile", Dimensions: "491 × 716 cm",
			Image:       "images/radeau-meduse.jpg",
			Description: "Les survivants du naufrage de la frégate Méduse.",
		},
		{
			ID: 8, Title: "Les Nymphéas", Artist: "Claude Monet", Year: "1914",
			Category: "Paysage", Technique: "Huile sur toile", Dimensions: "200 × 1275 cm",
			Image:       "images/nympheas.jpg",
			Description: "Cycle de grands panneaux peints dans le jardin de Giverny.",
		},
		{
			ID: 9, Title: "Le Penseur", Artist: "Auguste Rodin", Year: "1880",
			Category: "Sculpture", Technique: "Bronze", Dimensions: "189 × 98 × 140 cm",
			Image:       "images/penseur.jpg",
			Description: "Figure conçue pour le tympan de La Porte de l'Enfer.",
		},
		{
			ID: 10, Title: "Vénus de Milo", Artist: "Alexandros d'Antioche", Year: "inconnue",
			Category: "Sculpture", Technique: "Marbre de Paros", Dimensions: "202 cm",
			Image:       "images/venus-milo.jpg",
			Description: "Statue grecque découverte en 1820 sur l'île de Milos.",
		},
	}
}
