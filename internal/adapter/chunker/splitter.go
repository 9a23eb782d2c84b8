package chunker

import (
	"strings"

	"docgen/internal/domain"
)

// SplitBlocks splits text on natural boundaries. Fenced code is kept
// whole, a blank line ends the current paragraph, and a heading line
// stands alone. Blocks are trimmed and empty blocks dropped. An
// unterminated fence is closed at end of input.
func SplitBlocks(text string) []domain.Block {
	var blocks []domain.Block
	var current []string
	inFence := false

	flush := func(fenced bool) {
		if len(current) == 0 {
			return
		}
		joined := strings.TrimSpace(strings.Join(current, "\n"))
		current = current[:0]
		if joined == "" {
			return
		}
		blocks = append(blocks, domain.Block{Text: joined, Fenced: fenced})
	}

	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)

		if strings.HasPrefix(stripped, "```") {
			if inFence {
				current = append(current, line)
				flush(true)
				inFence = false
			} else {
				flush(false)
				current = append(current, line)
				inFence = true
			}
			continue
		}
		if inFence {
			current = append(current, line)
			continue
		}
		if stripped == "" {
			flush(false)
			continue
		}
		if strings.HasPrefix(stripped, "#") {
			flush(false)
			blocks = append(blocks, domain.Block{Text: stripped})
			continue
		}
		current = append(current, line)
	}
	flush(inFence)

	return blocks
}
