package automatic

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
	"lukechampine.com/frand"
)

var ErrBadSeed = errors.New("seed must be 32 bytes of base64")

// Seed fixes every tile spawn of one game. Its text form is unpadded
// url-safe base64; the seeds file, the game log, the results db and the
// shell's `new -seed` all share it.
type Seed [32]byte

func (s Seed) String() string {
	return base64.RawURLEncoding.EncodeToString(s[:])
}

func (s Seed) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText also accepts the standard alphabet, for hand-edited files.
func (s *Seed) UnmarshalText(text []byte) error {
	decoded, err := base64.RawURLEncoding.DecodeString(string(text))
	if err != nil {
		decoded, err = base64.RawStdEncoding.DecodeString(string(text))
	}
	if err != nil || len(decoded) != len(s) {
		return fmt.Errorf("%w: %q", ErrBadSeed, text)
	}
	copy(s[:], decoded)
	return nil
}

// ParseSeed reads the text form of a seed.
func ParseSeed(text string) (Seed, error) {
	var s Seed
	err := s.UnmarshalText([]byte(text))
	return s, err
}

// seedDoc is one yaml document in either a seeds file (Seeds) or an autoplay
// log (Game and Seed, one document per game).
type seedDoc struct {
	Seeds []Seed `yaml:"seeds,omitempty"`
	Game  int    `yaml:"game,omitempty"`
	Seed  *Seed  `yaml:"seed,omitempty"`
}

// GenerateSeeds creates n random seeds.
func GenerateSeeds(n int) ([][32]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("cannot generate %d seeds", n)
	}
	seeds := make([][32]byte, n)
	for i := range seeds {
		frand.Read(seeds[i][:])
	}
	return seeds, nil
}

// SaveSeeds writes a yaml seeds file.
func SaveSeeds(seeds [][32]byte, path string) error {
	doc := seedDoc{Seeds: make([]Seed, len(seeds))}
	for i, s := range seeds {
		doc.Seeds[i] = Seed(s)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create seed file: %w", err)
	}
	enc := yaml.NewEncoder(f)
	if err := enc.Encode(doc); err != nil {
		f.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadSeeds reads a file written by SaveSeeds, or the yaml log of an earlier
// autoplay batch. A log gives back its seeds in game order, so the batch
// replays exactly.
func LoadSeeds(path string) ([][32]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	var listed []Seed
	logged := map[int]Seed{}
	dec := yaml.NewDecoder(f)
	for {
		var doc seedDoc
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		listed = append(listed, doc.Seeds...)
		if doc.Seed != nil {
			logged[doc.Game] = *doc.Seed
		}
	}

	games := make([]int, 0, len(logged))
	for g := range logged {
		games = append(games, g)
	}
	sort.Ints(games)
	for _, g := range games {
		listed = append(listed, logged[g])
	}
	if len(listed) == 0 {
		return nil, fmt.Errorf("no seeds in %s", path)
	}

	seeds := make([][32]byte, len(listed))
	for i, s := range listed {
		seeds[i] = s
	}
	return seeds, nil
}
