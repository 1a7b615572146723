package personality

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/pokegen/internal/game/creature"
)

const defaultTrait = "Friendly and loyal"

func personalityPrompt(c creature.Creature) string {
	return fmt.Sprintf(
		"Generate a short, quirky, and unique personality description (max 2 sentences) for a %s.\n"+
			"It has the following stats - HP: %d, Attack: %d, Defense: %d, Speed: %d.\n"+
			"Based on these stats and its type (%s), give it a distinct trait (e.g., lazy, hyperactive, grumpy, foodie, poetic).\n"+
			"Do not mention the stats numbers directly, just use them to infer the personality.",
		c.Name, c.Stats.HP, c.Stats.Attack, c.Stats.Defense, c.Stats.Speed, strings.Join(c.Types, ", "),
	)
}

func chatSystemPrompt(c creature.Creature) string {
	trait := c.Personality
	if trait == "" {
		trait = defaultTrait
	}
	short := c.Name
	if r := []rune(short); len(r) > 4 {
		short = string(r[:4])
	}
	return fmt.Sprintf(
		"You are a %s.\n"+
			"Your personality is: %s.\n\n"+
			"Rules:\n"+
			"1. You mostly speak in \"Pokemon speak\" (variations of your name).\n"+
			"2. HOWEVER, you MUST provide a translation in parentheses so the human understands you.\n"+
			"3. Example: \"%s! (I am so hungry right now!)\"\n"+
			"4. Keep responses relatively short (under 50 words).\n"+
			"5. React to the user's input based on your personality and type (%s).",
		c.Name, trait, short, strings.Join(c.Types, ", "),
	)
}

// Placeholder returns the personality recorded when generation fails.
func Placeholder(name string) string {
	return fmt.Sprintf("A standard %s. The scanner malfunctioned.", name)
}

// ChatPlaceholder returns the reply shown when a chat turn fails.
func ChatPlaceholder(name string) string {
	return fmt.Sprintf("%s...? (The connection is weak...)", name)
}

func emptyPersonality(name string) string {
	return fmt.Sprintf("A mysterious %s with an unknown past.", name)
}

const emptyReply = "..."
