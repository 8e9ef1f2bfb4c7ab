package credentials

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Word lists for memorable temporary passwords handed to new students
var adjectives = []string{
	"happy", "sunny", "brave", "bright", "swift", "clever", "jolly", "mighty",
	"lucky", "magic", "bouncy", "cheerful", "daring", "eager", "gentle", "jazzy",
	"lively", "merry", "noble", "perky", "quick", "royal", "snappy", "zippy",
	"bold", "cosmic", "epic", "groovy",
}

var nouns = []string{
	"dragon", "tiger", "eagle", "dolphin", "panda", "lion", "wolf", "bear",
	"fox", "hawk", "shark", "phoenix", "unicorn", "rocket", "wizard", "knight",
	"pirate", "robot", "astronaut", "hero", "explorer", "ranger", "captain", "comet",
	"thunder", "tornado", "racer", "owl",
}

// GenerateTemporaryPassword returns a password like "sunny-tiger-42". It is
// easy for a young student to type and always long enough to pass validation.
func GenerateTemporaryPassword() (string, error) {
	adjective, err := randomElement(adjectives)
	if err != nil {
		return "", err
	}
	noun, err := randomElement(nouns)
	if err != nil {
		return "", err
	}
	n, err := rand.Int(rand.Reader, big.NewInt(90))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%s-%d", adjective, noun, n.Int64()+10), nil
}

// randomElement picks a random element from a string slice
func randomElement(slice []string) (string, error) {
	if len(slice) == 0 {
		return "", nil
	}
	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(slice))))
	if err != nil {
		return "", err
	}
	return slice[num.Int64()], nil
}
