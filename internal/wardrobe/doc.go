// Package wardrobe defines garment categories, their layering ranks and the
// wardrobe item record shared by the layer stack, the studio session and the
// library store.
//
// # Ranks
//
// Each known category maps to a fixed rank; lower ranks sit closer to the body.
// Tops & Outerwear and Suits & Dresses share rank 1. A category outside the
// known set is accepted and ranks after every known one (RankCustom).
//
// # Catalogs
//
// LoadCatalog reads a catalog file of items in TOML, YAML or JSON, chosen by
// extension. ExportCatalog writes JSON that LoadCatalog accepts.
package wardrobe
