package questionbank

import "learnplay/internal/game"

// gameBanks holds the authored content of games that have their own mechanics.
// Keys are game ids from the default catalogue.
var gameBanks = map[int64][]game.Question{
	// Letter Detective
	1: {
		letterDetective("Wheels, doors and a horn", "CAR", []string{"R", "A", "C"}, []string{"CAR", "ARC", "RAC", "CRA"}, 15),
		letterDetective("A red or green fruit", "APPLE", []string{"L", "P", "A", "E", "P"}, []string{"PAPLE", "APPLE", "APLPE", "LEAPP"}, 15),
		letterDetective("You sit at it to eat", "TABLE", []string{"B", "T", "E", "A", "L"}, []string{"TABLE", "BLEAT", "TALBE", "BATLE"}, 15),
		letterDetective("It says meow", "CAT", []string{"T", "C", "A"}, []string{"ACT", "TAC", "CAT", "CTA"}, 15),
		letterDetective("Pages full of words", "BOOK", []string{"K", "O", "B", "O"}, []string{"BOKO", "BOOK", "KOOB", "OBOK"}, 20),
		letterDetective("Where you live", "HOUSE", []string{"S", "U", "O", "H", "E"}, []string{"HOUSE", "SHOUE", "HOSUE", "EHOUS"}, 20),
		letterDetective("Yellow and shines in the sky", "SUN", []string{"N", "U", "S"}, []string{"NUS", "USN", "SNU", "SUN"}, 20),
		letterDetective("Grows tall with leaves", "TREE", []string{"E", "R", "T", "E"}, []string{"TREE", "RETE", "TEER", "ERET"}, 25),
		letterDetective("Where you learn with friends", "SCHOOL", []string{"O", "L", "S", "H", "C", "O"}, []string{"SCOHOL", "SCHOOL", "SHCOOL", "SCHOLO"}, 25),
		letterDetective("Fish swim in it", "WATER", []string{"T", "W", "R", "A", "E"}, []string{"WATER", "TAWER", "WAETR", "RATEW"}, 25),
	},

	// Focus Sprint
	4: {
		standard("Find the odd one out: 🍎🍎🍊🍎", []string{"1st", "2nd", "3rd", "4th"}, 2, 10),
		standard("How many ⭐ are there? ⭐🌟⭐⭐🌟", []string{"2", "3", "4", "5"}, 1, 15),
		standard("Count them: 🔴🔵🔴🔴🔵", []string{"🔴:2 🔵:3", "🔴:3 🔵:2", "🔴:4 🔵:1", "🔴:1 🔵:4"}, 1, 20),
		standard("How many differences? 🐶🐱🐭 vs 🐶🐰🐭", []string{"1", "2", "3", "None"}, 0, 20),
		standard("Which position is different? AAABAAA", []string{"3rd", "4th", "5th", "6th"}, 1, 25),
		standard("Complete the pattern: 🔺🔻🔺?", []string{"🔺", "🔻", "🔶", "◆"}, 1, 30),
		standard("Count only the red dots: 🔴ABC🔴XYZ🔴", []string{"2", "3", "4", "5"}, 1, 20),
		standard("Count only the numbers: A1B2C3D", []string{"2", "3", "4", "5"}, 1, 25),
		standard("Follow the rhythm: TAP-TAP-TOK", []string{"TAP-TAP-TOK", "TOK-TAP-TAP", "TAP-TOK-TAP", "TOK-TOK-TAP"}, 0, 15),
		standard("Complete the pattern: ⭐-❤️-⭐-❤️-?", []string{"⭐", "❤️", "💙", "🌟"}, 0, 20),
	},

	// Memory Cards
	5: {
		memory("Match the animals!", "🐶", "🐱", "🐭", "🐹"),
		memory("Match the fruit!", "🍎", "🍌", "🍇", "🍊"),
		memory("Match the numbers!", "1", "2", "3", "4"),
		memory("Match the shapes!", "▲", "■", "●", "◆"),
		memory("Match the weather!", "☀️", "🌧️", "❄️", "🌈"),
		memory("Match the vehicles!", "🚗", "🚌", "🚲", "✈️", "🚀"),
		memory("Match the letters!", "A", "B", "C", "D", "E"),
		memory("Match the sports balls!", "⚽", "🏀", "🎾", "🏈", "⚾", "🏐"),
	},

	// Letter Sounds
	11: {
		audioLetter("b", []string{"b", "d", "p", "q"}, 10),
		audioLetter("d", []string{"b", "d", "p", "q"}, 10),
		audioLetter("m", []string{"n", "m", "w", "u"}, 10),
		audioLetter("s", []string{"z", "c", "s", "x"}, 10),
		audioLetter("f", []string{"v", "f", "t", "th"}, 15),
		audioLetter("p", []string{"q", "b", "d", "p"}, 15),
		audioLetter("n", []string{"m", "n", "h", "u"}, 15),
		audioLetter("a", []string{"e", "a", "o", "u"}, 20),
		audioLetter("e", []string{"i", "a", "e", "o"}, 20),
		audioLetter("t", []string{"d", "f", "l", "t"}, 20),
	},

	// Color Match
	18: {
		colorMatch("RED", 0, 10),
		colorMatch("BLUE", 1, 10),
		colorMatch("GREEN", 2, 10),
		colorMatch("YELLOW", 3, 10),
		colorMatch("BLUE", 1, 15),
		colorMatch("RED", 0, 15),
		colorMatch("YELLOW", 3, 20),
		colorMatch("GREEN", 2, 20),
		colorMatch("RED", 0, 25),
		colorMatch("YELLOW", 3, 25),
	},

	// Sequence Master
	21: {
		sequence("Repeat the order: 1-2-3", []string{"1", "2", "3"}, nil, 15),
		sequence("Repeat the order: 2-4-1-3", []string{"2", "4", "1", "3"}, nil, 20),
		sequence("Repeat the order: 🔴-🔵-🟢", []string{"🔴", "🔵", "🟢"}, nil, 20),
		sequence("Repeat the order: A-C-B-D", []string{"A", "C", "B", "D"}, nil, 25),
		sequence("Repeat the order: 🔴-🔴-🔵-🟢", []string{"🔴", "🔵", "🟢", "🟡"}, []string{"🔴", "🔴", "🔵", "🟢"}, 25),
		sequence("Tricky one: 3-1-4-2-5", []string{"3", "1", "4", "2", "5"}, nil, 30),
	},
}

// categoryBanks back every game without content of its own.
var categoryBanks = map[string][]game.Question{
	"reading": {
		standard(`Which letter is "E"?`, []string{"A", "E", "I", "O"}, 1, 10),
		standard(`Which word is "ON"?`, []string{"NO", "ON", "IN", "AN"}, 1, 10),
		standard(`How many letters are in "FISH"?`, []string{"3", "4", "5", "6"}, 1, 10),
		standard("Which letter is a vowel?", []string{"K", "M", "A", "T"}, 2, 10),
		standard(`How many syllables does "TABLE" have?`, []string{"1", "2", "3", "4"}, 1, 10),
		standard("Which word is spelled correctly?", []string{"FRIEND", "FREIND", "FRIND", "FRENID"}, 0, 10),
		standard(`What is the first letter of "SCHOOL"?`, []string{"C", "S", "H", "O"}, 1, 10),
		standard("Which letter is a consonant?", []string{"A", "E", "I", "M"}, 3, 10),
	},
	"math": {
		standard("5 + 3 = ?", []string{"6", "7", "8", "9"}, 2, 10),
		standard("10 - 4 = ?", []string{"5", "6", "7", "8"}, 1, 10),
		standard("3 × 2 = ?", []string{"4", "5", "6", "7"}, 2, 10),
		standard("12 ÷ 3 = ?", []string{"3", "4", "5", "6"}, 1, 10),
		standard("7 + 8 = ?", []string{"14", "15", "16", "17"}, 1, 10),
		standard("20 - 5 = ?", []string{"13", "14", "15", "16"}, 2, 10),
		standard("4 × 3 = ?", []string{"10", "11", "12", "13"}, 2, 10),
		standard("15 ÷ 5 = ?", []string{"2", "3", "4", "5"}, 1, 10),
		standard("6 + 9 = ?", []string{"13", "14", "15", "16"}, 2, 10),
		standard("18 - 7 = ?", []string{"9", "10", "11", "12"}, 2, 10),
	},
	"writing": {
		standard("Which word is spelled correctly?", []string{"PENCIL", "PENSIL", "PINCIL", "PENCEL"}, 0, 10),
		standard(`Write "cat" in capital letters`, []string{"cat", "CAT", "Cat", "cAt"}, 1, 10),
		standard("Which mark ends a statement?", []string{",", ".", ";", ":"}, 1, 10),
		standard("How do you write a person's name?", []string{"all lowercase", "ALL CAPITALS", "Capital first letter", "random"}, 2, 10),
		standard("Which word needs a capital letter?", []string{"house", "table", "london", "book"}, 2, 10),
		standard(`How many letters are in "MOON"?`, []string{"3", "4", "5", "6"}, 1, 10),
	},
	"memory": {
		standard("Remember these numbers: 5, 8, 3. What was the first?", []string{"3", "5", "8", "2"}, 1, 10),
		standard("Remember these colors: Red, Blue, Green. What was second?", []string{"Red", "Blue", "Green", "Yellow"}, 1, 10),
		standard("Remember these words: Cat, Dog, Bird. What was last?", []string{"Cat", "Dog", "Bird", "Mouse"}, 2, 10),
		standard("Remember these shapes: Triangle, Square, Circle. What was first?", []string{"Triangle", "Square", "Circle", "Rectangle"}, 0, 10),
	},
	"attention": {
		standard(`How many "A"s are in ABACADA?`, []string{"2", "3", "4", "5"}, 2, 10),
		standard("Which number is different: 2, 4, 6, 7, 8", []string{"2", "4", "6", "7"}, 3, 10),
		standard("Which word is different: Apple, Pear, Banana, Table", []string{"Apple", "Pear", "Banana", "Table"}, 3, 10),
		standard("Which number is missing: 1, 2, _, 4, 5", []string{"2", "3", "4", "5"}, 1, 10),
		standard("Which shape repeats: ○△□○", []string{"○", "△", "□", "All"}, 0, 10),
	},
}

var palette = []struct{ name, hex string }{
	{"Red", "#ef4444"},
	{"Blue", "#3b82f6"},
	{"Green", "#22c55e"},
	{"Yellow", "#eab308"},
}

func standard(prompt string, options []string, correct, points int) game.Question {
	return game.Question{Prompt: prompt, Mode: game.ModeStandard, Options: options, CorrectIndex: correct, Points: points}
}

func letterDetective(hint, answer string, scrambled, options []string, points int) game.Question {
	correct := 0
	for i, o := range options {
		if o == answer {
			correct = i
		}
	}
	return game.Question{
		Prompt:       "Which word can you make from these letters?",
		Mode:         game.ModeLetterDetective,
		Options:      options,
		CorrectIndex: correct,
		Points:       points,
		Hint:         hint,
		Scrambled:    scrambled,
		Answer:       answer,
	}
}

func memory(prompt string, faces ...string) game.Question {
	items := append(append([]string{}, faces...), faces...)
	return game.Question{Prompt: prompt, Mode: game.ModeMemoryCards, Items: items, Points: len(faces) * game.MemoryPairPoints}
}

func audioLetter(letter string, options []string, points int) game.Question {
	correct := 0
	for i, o := range options {
		if o == letter {
			correct = i
		}
	}
	return game.Question{
		Prompt:       "Which letter did you hear?",
		Mode:         game.ModeAudioLetter,
		Options:      options,
		CorrectIndex: correct,
		Points:       points,
		Answer:       letter,
	}
}

func colorMatch(target string, correct, points int) game.Question {
	q := game.Question{Prompt: "Tap " + target + "!", Mode: game.ModeColorMatch, CorrectIndex: correct, Points: points}
	for _, c := range palette {
		q.Options = append(q.Options, c.name)
		q.Colors = append(q.Colors, c.hex)
	}
	return q
}

func sequence(prompt string, items, order []string, points int) game.Question {
	return game.Question{Prompt: prompt, Mode: game.ModeSequence, Items: items, Sequence: order, Points: points}
}
