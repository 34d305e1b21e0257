package blocks

// Block represents one society block. The prefix is the first segment of
// every property number in the block.
type Block struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Prefix string `json:"prefix"`
}
