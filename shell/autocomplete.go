package shell

import (
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/domino14/tzfe/config"
)

// ShellCompleter provides context-aware autocomplete for shell commands
type ShellCompleter struct {
	sc *ShellController
}

func NewShellCompleter(sc *ShellController) *ShellCompleter {
	return &ShellCompleter{sc: sc}
}

// CommandMetadata holds autocomplete information for a command
type CommandMetadata struct {
	Options []string
	Args    []string
}

var commandMetadata = map[string]CommandMetadata{
	"new": {
		Options: []string{"-seed"},
	},
	"board": {
		Args: []string{"values"},
	},
	"move": {
		Args: []string{"up", "down", "left", "right"},
	},
	"aiplay": {
		Options: []string{"-moves"},
		Args:    []string{"all"},
	},
	"autoplay": {
		Options: []string{"-games", "-threads", "-log", "-seeds"},
		Args:    []string{"stop"},
	},
	"setconfig": {
		Args: []string{
			config.ConfigDebug, config.ConfigHeuristicWeightsPath,
			config.ConfigCprobThresh, config.ConfigCacheDepthLimit,
			config.ConfigSearchDepthLimit, config.ConfigTTFractionOfMem,
			config.ConfigAutoplayGames, config.ConfigAutoplayThreads,
			config.ConfigAutoplayLogPath, config.ConfigSeedsPath,
		},
	},
	"help": {
		Args: []string{"board", "autoplay", "setconfig", "script"},
	},
}

var commandNames = []string{
	"help", "new", "show", "board", "legal", "move", "best", "scores",
	"aiplay", "autoplay", "setconfig", "script", "exit",
}

// Do implements the readline.AutoComplete interface.
func (c *ShellCompleter) Do(line []rune, pos int) ([][]rune, int) {
	text := string(line[:pos])

	fields, err := shellquote.Split(text)
	if err != nil {
		// unterminated quote
		fields = strings.Fields(text)
	}

	endsWithSpace := len(text) > 0 && text[len(text)-1] == ' '

	var prefix string
	var completions []string

	if len(fields) == 0 || (len(fields) == 1 && !endsWithSpace) {
		if len(fields) == 1 {
			prefix = fields[0]
		}
		completions = commandNames
	} else {
		cmdName := fields[0]
		if !endsWithSpace {
			prefix = fields[len(fields)-1]
		}

		var lastCompleteField string
		if endsWithSpace {
			lastCompleteField = fields[len(fields)-1]
		} else if len(fields) > 1 {
			lastCompleteField = fields[len(fields)-2]
		}

		// after "setconfig debug" offer booleans
		if cmdName == "setconfig" && lastCompleteField == config.ConfigDebug {
			completions = []string{"true", "false"}
		}

		if completions == nil {
			if metadata, exists := commandMetadata[cmdName]; exists {
				if strings.HasPrefix(prefix, "-") || len(metadata.Args) == 0 {
					completions = metadata.Options
				} else {
					completions = metadata.Args
				}
			}
		}
	}

	var matches [][]rune
	for _, completion := range completions {
		if strings.HasPrefix(completion, prefix) {
			matches = append(matches, []rune(completion[len(prefix):]))
		}
	}
	return matches, len(prefix)
}
