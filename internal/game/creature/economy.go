package creature

var baseValues = map[Rarity]int{
	Common:    10,
	Rare:      50,
	Epic:      200,
	Legendary: 1000,
}

// BaseValue returns the undoubled resell value of a tier. Unknown tiers are worth 0.
func BaseValue(r Rarity) int {
	return baseValues[r]
}

// ResellValue returns the credits refunded when c is released.
//
// Postcondition: result == BaseValue(c.Rarity) * (2 if c.Shiny else 1).
func ResellValue(c Creature) int {
	v := BaseValue(c.Rarity)
	if c.Shiny {
		v *= 2
	}
	return v
}
