package stages

var defaultRegistry = MustNew([]Stage{
	{
		Slug:        "7f3a9c",
		Title:       "Hawa Hawa Ee Hawa Mujhko Udaalee~~",
		Description: "You Have found the beginning to a mystery, where shall this lead you",
		NextSlug:    "bd91e2",
		NextHint:    "18th January 2025",
	},
	{
		Slug:        "bd91e2",
		Title:       "Forbidden Doors",
		Description: "You found the place where our sould first touched, It's time to go further",
		NextSlug:    "k9m2x1",
		NextHint:    "Our Mythical Spot",
	},
	{
		Slug:        "k9m2x1",
		Title:       "Halfway There",
		Description: "Do you remember the shadow of the guard spawning behind us",
		NextSlug:    "p4n8q7",
		NextHint:    "Where i first experienced divinity and you couldn't hold yourself back",
	},
	{
		Slug:        "p4n8q7",
		Title:       "Utter Magnificence",
		Description: "You have come so far, only a short while remains",
		NextSlug:    "r6t3y8",
		NextHint:    "Jaha Aapne mujhe traumatise kiya tha",
	},
	{
		Slug:        "r6t3y8",
		Title:       "Definetly the best game ever",
		Description: "One more last hint ~",
		NextSlug:    "v2w5z0",
		NextHint:    "Where we met the last time, you need a long hug",
	},
	{
		Slug:        "v2w5z0",
		Title:       "Turn Around My Love",
		Description: "You've followed every clue. Now come find me, I'll be waiting where this all leads.",
		IsFinal:     true,
	},
})

// EntrySlug is the slug of the first stage of the built-in hunt.
var EntrySlug = defaultRegistry.EntrySlug()

// Default returns the built-in hunt registry.
func Default() *Registry {
	return defaultRegistry
}

// BySlug looks up a stage in the built-in hunt.
func BySlug(slug string) (Stage, bool) { return defaultRegistry.BySlug(slug) }

// Index returns the position of slug in the built-in hunt, or NotFound.
func Index(slug string) int { return defaultRegistry.Index(slug) }

// IsValid reports whether slug belongs to the built-in hunt.
func IsValid(slug string) bool { return defaultRegistry.IsValid(slug) }
