package sift

import "strings"

// Chunking defaults.
const (
	DefaultChunkSize    = 512
	DefaultChunkOverlap = 50

	// MinChunkableLength is the shortest page content, in characters,
	// that is split into chunks.
	MinChunkableLength = 50
)

// Chunk is a window of words taken from one page. ID is unique and dense
// within a single load and is the only identity shared by the indexes.
type Chunk struct {
	ID          int    `json:"chunk_id"`
	Content     string `json:"content"`
	SourceURL   string `json:"source_url"`
	SourceTitle string `json:"source_title"`
}

// Chunker splits page content into overlapping fixed-size word windows.
type Chunker struct {
	// Size is the number of words per chunk.
	Size int

	// Overlap is the number of words shared by consecutive chunks.
	Overlap int
}

// NewChunker returns a Chunker with the default window.
func NewChunker() *Chunker {
	return &Chunker{Size: DefaultChunkSize, Overlap: DefaultChunkOverlap}
}

// Validate returns an error if the window would never advance.
func (c *Chunker) Validate() error {
	if c.Size <= 0 {
		return Errorf(EINVALID, "chunk size must be positive")
	}
	if c.Overlap < 0 {
		return Errorf(EINVALID, "chunk overlap must not be negative")
	}
	if c.Overlap >= c.Size {
		return Errorf(EINVALID, "chunk overlap (%d) must be smaller than chunk size (%d)", c.Overlap, c.Size)
	}
	return nil
}

// Chunk splits pages into chunks with sequential IDs starting at zero.
// Pages shorter than MinChunkableLength characters are skipped.
func (c *Chunker) Chunk(pages []*PageRecord) ([]*Chunk, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var chunks []*Chunk
	for _, page := range pages {
		if len(page.Content) < MinChunkableLength {
			continue
		}
		for _, window := range c.windows(strings.Fields(page.Content)) {
			chunks = append(chunks, &Chunk{
				ID:          len(chunks),
				Content:     strings.Join(window, " "),
				SourceURL:   page.URL,
				SourceTitle: page.Title(),
			})
		}
	}
	return chunks, nil
}

// windows returns the word windows for words. The last window is the first
// one that reaches the final word.
func (c *Chunker) windows(words []string) [][]string {
	step := c.Size - c.Overlap
	var out [][]string
	for start := 0; start < len(words); start += step {
		end := min(start+c.Size, len(words))
		out = append(out, words[start:end])
		if end == len(words) {
			break
		}
	}
	return out
}
