package core

import "testing"

func TestGuessCategory(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Whole Milk 2%", CategoryDairy},
		{"Large Eggs", CategoryDairy},
		{"Organic Bananas", CategoryProduce},
		{"Chicken Breast", CategoryMeat},
		{"Sourdough Bread", CategoryBakery},
		{"Frozen Waffles", CategoryFrozen},
		{"Orange Juice", CategoryProduce}, // "orange" wins before "juice"
		{"Sparkling Water", CategoryBeverages},
		{"Tortilla Chips", CategoryBakery}, // "tortilla" wins before "chips"
		{"Dark Chocolate", CategorySnacks},
		{"Jasmine Rice", CategoryPantry},
		{"Dish Soap", CategoryOther},
		{"", CategoryOther},
	}
	for _, tc := range cases {
		if got := GuessCategory(tc.name); got != tc.want {
			t.Errorf("GuessCategory(%q) = %q, want %q", tc.name, got, tc.want)
		}
	}
}
