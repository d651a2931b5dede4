package main

import "math/rand"

type Category string

const (
	CategoryObject Category = "OBJECT"
	CategoryPerson Category = "PERSON"
	CategoryAction Category = "ACTION"
	CategoryWorld  Category = "WORLD"
	CategoryNature Category = "NATURE"
	CategoryRandom Category = "RANDOM"

	// Board sentinels, never present in the word bank.
	CategoryStart  Category = "START"
	CategoryFinish Category = "FINISH"
)

var playableCategories = []Category{
	CategoryObject,
	CategoryPerson,
	CategoryAction,
	CategoryWorld,
	CategoryNature,
	CategoryRandom,
}

var wordBank = map[Category][]string{
	CategoryObject: {
		"Umbrella", "Scissors", "Telephone", "Laptop", "Camera",
		"Bicycle", "Guitar", "Sunglasses", "Backpack", "Wallet",
		"Paintbrush", "Microphone", "Telescope", "Compass", "Flashlight",
		"Hammer", "Kettle", "Mirror", "Pillow", "Stapler",
		"Thermometer", "Toothbrush", "Umbrella", "Vase", "Whistle",
	},
	CategoryPerson: {
		"Astronaut", "Chef", "Detective", "Engineer", "Firefighter",
		"Journalist", "Lawyer", "Musician", "Nurse", "Pilot",
		"Scientist", "Teacher", "Veterinarian", "Architect", "Dentist",
		"Electrician", "Farmer", "Librarian", "Mechanic", "Photographer",
		"Plumber", "Programmer", "Surgeon", "Waiter", "Zookeeper",
	},
	CategoryAction: {
		"Dancing", "Swimming", "Cooking", "Running", "Singing",
		"Climbing", "Painting", "Reading", "Writing", "Jumping",
		"Sleeping", "Eating", "Driving", "Flying", "Laughing",
		"Crying", "Whispering", "Shouting", "Knitting", "Jogging",
		"Meditating", "Stretching", "Yawning", "Sneezing", "Hiccuping",
	},
	CategoryWorld: {
		"Mountain", "Ocean", "Desert", "Forest", "Beach",
		"Volcano", "Glacier", "Canyon", "Waterfall", "Island",
		"River", "Lake", "Cave", "Valley", "Cliff",
		"Jungle", "Swamp", "Meadow", "Prairie", "Tundra",
		"Reef", "Marsh", "Plateau", "Peninsula", "Archipelago",
	},
	CategoryNature: {
		"Butterfly", "Dolphin", "Eagle", "Elephant", "Tiger",
		"Giraffe", "Penguin", "Kangaroo", "Whale", "Octopus",
		"Spider", "Bee", "Snake", "Crocodile", "Parrot",
		"Wolf", "Bear", "Fox", "Deer", "Rabbit",
		"Owl", "Hawk", "Seal", "Otter", "Flamingo",
	},
	CategoryRandom: {
		"Rainbow", "Thunder", "Shadow", "Dream", "Miracle",
		"Mystery", "Adventure", "Memory", "Fortune", "Victory",
		"Treasure", "Secret", "Magic", "Legend", "Destiny",
		"Chaos", "Harmony", "Freedom", "Justice", "Courage",
		"Wisdom", "Peace", "Hope", "Faith", "Love",
	},
}

// WordSource hands out words from the category-indexed bank.
type WordSource struct{}

// RandomWord picks a uniform category, then a uniform word within it.
func (ws WordSource) RandomWord() (string, Category) {
	category := playableCategories[rand.Intn(len(playableCategories))]
	words := wordBank[category]
	return words[rand.Intn(len(words))], category
}

// WordForCategory picks a uniform word within the category. Unknown
// categories (including the START/FINISH sentinels) fall back to a
// fully random word, never an error.
func (ws WordSource) WordForCategory(category Category) (string, Category) {
	words, ok := wordBank[category]
	if !ok {
		return ws.RandomWord()
	}
	return words[rand.Intn(len(words))], category
}
