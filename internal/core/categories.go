package core

import "strings"

// Canonical product categories.
const (
	CategoryProduce   = "Produce"
	CategoryDairy     = "Dairy & Eggs"
	CategoryMeat      = "Meat & Seafood"
	CategoryBakery    = "Bakery"
	CategoryPantry    = "Pantry & Canned Goods"
	CategoryFrozen    = "Frozen Foods"
	CategoryBeverages = "Beverages"
	CategorySnacks    = "Snacks"
	CategoryHealth    = "Health & Beauty"
	CategoryHousehold = "Household Supplies"
	CategoryOther     = "Other"
)

type categoryKeywords struct {
	category string
	keywords []string
}

// categoryTable is ordered; the first keyword hit wins.
var categoryTable = []categoryKeywords{
	{CategoryProduce, []string{
		"banana", "apple", "avocado", "tomato", "lettuce", "onion", "potato",
		"carrot", "pepper", "strawberr", "blueberr", "orange", "lemon", "lime",
		"grape", "mango", "pear", "celery", "broccoli", "spinach", "kale",
		"cucumber", "garlic", "ginger", "mushroom", "corn", "bean", "pea",
	}},
	{CategoryDairy, []string{"milk", "cheese", "yogurt", "butter", "cream", "egg"}},
	{CategoryMeat, []string{
		"chicken", "beef", "pork", "turkey", "fish", "salmon", "shrimp",
		"steak", "bacon", "sausage", "ham",
	}},
	{CategoryBakery, []string{
		"bread", "bagel", "muffin", "roll", "cake", "donut", "croissant",
		"tortilla", "bun",
	}},
	{CategoryFrozen, []string{"frozen", "ice cream", "pizza"}},
	{CategoryBeverages, []string{"juice", "soda", "water", "coffee", "tea", "wine", "beer", "kombucha"}},
	{CategorySnacks, []string{
		"chips", "cookie", "cracker", "popcorn", "pretzel", "candy",
		"chocolate", "granola bar", "nut",
	}},
	{CategoryPantry, []string{
		"rice", "pasta", "sauce", "oil", "vinegar", "sugar", "flour", "salt",
		"spice", "cereal", "oat", "can", "soup", "broth",
	}},
}

// GuessCategory infers a category from an item name via keyword substring
// matching. Unknown names fall back to Other.
func GuessCategory(itemName string) string {
	name := strings.ToLower(itemName)
	for _, entry := range categoryTable {
		for _, kw := range entry.keywords {
			if strings.Contains(name, kw) {
				return entry.category
			}
		}
	}
	return CategoryOther
}
