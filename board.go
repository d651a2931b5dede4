package main

type BoardSpace struct {
	Index    int      `json:"index"`
	Category Category `json:"category"`
	Color    string   `json:"color"`
	Label    string   `json:"label"`
}

var categoryColors = map[Category]string{
	CategoryObject: "#FF6B6B",
	CategoryPerson: "#4ECDC4",
	CategoryAction: "#95E1D3",
	CategoryWorld:  "#F38181",
	CategoryNature: "#AA96DA",
	CategoryRandom: "#FCBAD3",
}

// buildBoard lays out the fixed board: START, a repeating category
// cycle, FINISH. Generated once per room and immutable afterwards.
func buildBoard(size int) []BoardSpace {
	spaces := make([]BoardSpace, 0, size)
	for i := 0; i < size; i++ {
		switch {
		case i == 0:
			spaces = append(spaces, BoardSpace{Index: i, Category: CategoryStart, Color: "#FFD93D", Label: "START"})
		case i == size-1:
			spaces = append(spaces, BoardSpace{Index: i, Category: CategoryFinish, Color: "#FFD700", Label: "FINISH"})
		default:
			category := playableCategories[i%len(playableCategories)]
			spaces = append(spaces, BoardSpace{
				Index:    i,
				Category: category,
				Color:    categoryColors[category],
				Label:    string(category),
			})
		}
	}
	return spaces
}
