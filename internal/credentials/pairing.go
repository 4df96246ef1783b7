package credentials

import (
	"crypto/rand"
	"math/big"
)

// Word lists for generating kid-readable pairing codes
var adjectives = []string{
	"happy", "sunny", "brave", "bright", "cool", "swift", "clever", "jolly",
	"mighty", "super", "star", "wild", "funny", "lucky", "magic", "bouncy",
	"cheerful", "daring", "eager", "flying", "gentle", "jazzy", "kindly",
	"lively", "merry", "noble", "perky", "quick", "royal", "snappy", "turbo",
	"zippy", "bold", "cosmic", "epic", "groovy",
}

var nouns = []string{
	"dragon", "tiger", "eagle", "dolphin", "panda", "lion", "wolf", "bear",
	"fox", "hawk", "phoenix", "unicorn", "rocket", "ninja", "wizard",
	"knight", "pirate", "robot", "astronaut", "hero", "explorer", "ranger",
	"comet", "thunder", "lightning", "tornado", "flame", "storm", "racer",
}

const suffixChars = "abcdefghjkmnpqrstuvwxyz23456789"

// GeneratePairingCode generates a code in the format "adjective-noun-xxxx".
// The suffix alphabet skips characters that are easy to misread when a
// child types the code from a parent's screen.
func GeneratePairingCode() (string, error) {
	adjective, err := randomElement(adjectives)
	if err != nil {
		return "", err
	}

	noun, err := randomElement(nouns)
	if err != nil {
		return "", err
	}

	suffix := make([]byte, 4)
	for i := range suffix {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(suffixChars))))
		if err != nil {
			return "", err
		}
		suffix[i] = suffixChars[num.Int64()]
	}

	return adjective + "-" + noun + "-" + string(suffix), nil
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
