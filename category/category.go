// Package category holds the dashboard's category registry and the pill
// selection model.
package category

// Category is one content category as shown in the dashboard grid.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// Categories is the fixed registry the dashboard renders.
var Categories = []Category{
	{ID: "ai", Name: "AI", Icon: "🤖"},
	{ID: "ai_agents", Name: "AI Agents", Icon: "🧠"},
	{ID: "aptos", Name: "Aptos", Icon: "⚡"},
	{ID: "base", Name: "Base", Icon: "🔵"},
	{ID: "bitcoin", Name: "Bitcoin", Icon: "₿"},
	{ID: "crypto", Name: "Crypto", Icon: "💎"},
	{ID: "dats", Name: "Dats", Icon: "📊"},
	{ID: "defi", Name: "Defi", Icon: "🏦"},
	{ID: "eth", Name: "ETH", Icon: "Ξ"},
	{ID: "hyperliquid", Name: "HyperLiquid", Icon: "💧"},
	{ID: "machine_learning", Name: "Machine Learning", Icon: "🔬"},
	{ID: "macro", Name: "Macro", Icon: "🌍"},
	{ID: "whale_movement", Name: "On-chain whale wallet movement", Icon: "🐋"},
	{ID: "ondo", Name: "Ondo", Icon: "🏢"},
	{ID: "perp_dexs", Name: "Perp Dexs", Icon: "📈"},
	{ID: "rwa", Name: "RWA", Icon: "🏛️"},
	{ID: "ripple", Name: "Ripple", Icon: "🌊"},
	{ID: "solana", Name: "Solana", Icon: "◎"},
	{ID: "tech", Name: "Tech", Icon: "💻"},
	{ID: "virtuals", Name: "Virtuals", Icon: "🌐"},
	{ID: "token_listings", Name: "Token Listings", Icon: "🚀"},
}

// FreeCategories is the allow-list served without a payment header.
var FreeCategories = []string{"rwa", "macro", "virtuals"}

// IsFree reports whether a category is on the free allow-list.
func IsFree(id string) bool {
	for _, free := range FreeCategories {
		if free == id {
			return true
		}
	}
	return false
}

// ByID looks up a category in the registry.
func ByID(id string) (Category, bool) {
	for _, c := range Categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// Title returns the display name for a category id, falling back to the id
// itself for custom categories.
func Title(id string) string {
	if c, ok := ByID(id); ok {
		return c.Name
	}
	return id
}
