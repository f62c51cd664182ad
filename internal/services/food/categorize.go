// Package food maps free-text food names to coarse categories.
package food

import "strings"

// Categories.
const (
	CategoryProtein   = "protein"
	CategoryVegetable = "vegetable"
	CategoryGrain     = "grain"
	CategoryDairy     = "dairy"
	CategoryFruit     = "fruit"
	CategoryCondiment = "condiment"
	CategoryOther     = "other"
)

type keyword struct {
	word     string
	category string
}

// keywords is scanned in order. The substring fallback returns the first hit,
// so "sweet potato fries" is a grain via "fries" before "sweet potato".
var keywords = []keyword{
	{"chicken", CategoryProtein},
	{"beef", CategoryProtein},
	{"pork", CategoryProtein},
	{"fish", CategoryProtein},
	{"salmon", CategoryProtein},
	{"tuna", CategoryProtein},
	{"shrimp", CategoryProtein},
	{"turkey", CategoryProtein},
	{"eggs", CategoryProtein},
	{"tofu", CategoryProtein},
	{"beans", CategoryProtein},
	{"lentils", CategoryProtein},

	{"broccoli", CategoryVegetable},
	{"carrots", CategoryVegetable},
	{"spinach", CategoryVegetable},
	{"lettuce", CategoryVegetable},
	{"tomatoes", CategoryVegetable},
	{"onions", CategoryVegetable},
	{"peppers", CategoryVegetable},
	{"mushrooms", CategoryVegetable},
	{"celery", CategoryVegetable},
	{"cucumber", CategoryVegetable},
	{"zucchini", CategoryVegetable},
	{"asparagus", CategoryVegetable},

	{"rice", CategoryGrain},
	{"pasta", CategoryGrain},
	{"bread", CategoryGrain},
	{"quinoa", CategoryGrain},
	{"oats", CategoryGrain},
	{"noodles", CategoryGrain},
	{"tortilla", CategoryGrain},
	{"fries", CategoryGrain},
	{"potatoes", CategoryGrain},
	{"sweet potato", CategoryGrain},

	{"cheese", CategoryDairy},
	{"milk", CategoryDairy},
	{"yogurt", CategoryDairy},
	{"butter", CategoryDairy},
	{"cream", CategoryDairy},
	{"sour cream", CategoryDairy},

	{"apple", CategoryFruit},
	{"banana", CategoryFruit},
	{"orange", CategoryFruit},
	{"berries", CategoryFruit},
	{"strawberries", CategoryFruit},
	{"grapes", CategoryFruit},
	{"watermelon", CategoryFruit},

	{"sauce", CategoryCondiment},
	{"dressing", CategoryCondiment},
	{"salsa", CategoryCondiment},
	{"guacamole", CategoryCondiment},
	{"toppings", CategoryCondiment},
}

var exact = func() map[string]string {
	m := make(map[string]string, len(keywords))
	for _, k := range keywords {
		m[k.word] = k.category
	}
	return m
}()

// Categorize returns the category of name: an exact keyword match first, then
// the first keyword (in table order) contained in name, else CategoryOther.
func Categorize(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	if c, ok := exact[n]; ok {
		return c
	}
	for _, k := range keywords {
		if strings.Contains(n, k.word) {
			return k.category
		}
	}
	return CategoryOther
}

// Categories lists every category Categorize can return.
func Categories() []string {
	return []string{
		CategoryProtein, CategoryVegetable, CategoryGrain, CategoryDairy,
		CategoryFruit, CategoryCondiment, CategoryOther,
	}
}
