package opentdb

import (
	"fmt"
	"strconv"
	"strings"
)

// Category - числовой идентификатор категории OpenTDB
type Category int

const (
	CategoryGeneral             Category = 9
	CategoryBooks               Category = 10
	CategoryFilm                Category = 11
	CategoryMusic               Category = 12
	CategoryMusicalsAndTheatres Category = 13
	CategoryTelevision          Category = 14
	CategoryVideoGames          Category = 15
	CategoryBoardGames          Category = 16
	CategoryScienceAndNature    Category = 17
	CategoryComputers           Category = 18
	CategoryMathematics         Category = 19
	CategoryMythology           Category = 20
	CategorySports              Category = 21
	CategoryGeography           Category = 22
	CategoryHistory             Category = 23
	CategoryPolitics            Category = 24
	CategoryArt                 Category = 25
	CategoryCelebrities         Category = 26
	CategoryAnimals             Category = 27
	CategoryVehicles            Category = 28
	CategoryComics              Category = 29
	CategoryGadgets             Category = 30
	CategoryJapaneseCulture     Category = 31
	CategoryCartoon             Category = 32
)

var categoryNames = map[Category]string{
	CategoryGeneral:             "General",
	CategoryBooks:               "Books",
	CategoryFilm:                "Film",
	CategoryMusic:               "Music",
	CategoryMusicalsAndTheatres: "MusicalsAndTheatres",
	CategoryTelevision:          "Television",
	CategoryVideoGames:          "VideoGames",
	CategoryBoardGames:          "BoardGames",
	CategoryScienceAndNature:    "ScienceAndNature",
	CategoryComputers:           "Computers",
	CategoryMathematics:         "Mathematics",
	CategoryMythology:           "Mythology",
	CategorySports:              "Sports",
	CategoryGeography:           "Geography",
	CategoryHistory:             "History",
	CategoryPolitics:            "Politics",
	CategoryArt:                 "Art",
	CategoryCelebrities:         "Celebrities",
	CategoryAnimals:             "Animals",
	CategoryVehicles:            "Vehicles",
	CategoryComics:              "Comics",
	CategoryGadgets:             "Gadgets",
	CategoryJapaneseCulture:     "JapaneseCulture",
	CategoryCartoon:             "Cartoon",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return strconv.Itoa(int(c))
}

// ParseCategory принимает имя категории (без учета регистра) или ее номер.
// Пустая строка означает любую категорию и возвращает 0.
func ParseCategory(label string) (Category, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return 0, nil
	}

	if id, err := strconv.Atoi(label); err == nil {
		c := Category(id)
		if _, ok := categoryNames[c]; !ok {
			return 0, fmt.Errorf("%w: unknown category id %d", ErrInvalidParameter, id)
		}
		return c, nil
	}

	for c, name := range categoryNames {
		if strings.EqualFold(name, label) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown category %q", ErrInvalidParameter, label)
}

// Categories возвращает все известные категории по возрастанию номера
func Categories() []Category {
	out := make([]Category, 0, len(categoryNames))
	for c := CategoryGeneral; c <= CategoryCartoon; c++ {
		out = append(out, c)
	}
	return out
}
